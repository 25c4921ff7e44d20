package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+15551234567", NormalizePhone(" +1 (555) 123-4567 "))
	assert.Equal(t, "5551234567", NormalizePhone("555.123.4567"))
	assert.Equal(t, "", NormalizePhone("  "))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+1 (555) 123-4567"))
	assert.True(t, ValidatePhone("5551234"))
	assert.False(t, ValidatePhone("123"))
	assert.False(t, ValidatePhone("call me maybe"))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("dana@example.com"))
	assert.True(t, ValidateEmail("dana+tag@mail.example.co"))
	assert.False(t, ValidateEmail("dana@example"))
	assert.False(t, ValidateEmail("not an email"))
	assert.False(t, ValidateEmail(""))
}
