package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpro-backend/models"
)

func TestAttributeManualBeatsExtracted(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer("")

	_, err := env.attributes.SetManual(env.ctx, customer.ID, "Gate_Code", "1234")
	require.NoError(t, err)

	// The extracted value must not clobber the operator's entry.
	attr, err := env.attributes.ApplyExtracted(env.ctx, customer.ID, "gate_code", "9999", 0.9, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AttributeManual, attr.Source)
	assert.JSONEq(t, `"1234"`, string(attr.Value))

	list, err := env.attributes.ListByCustomer(env.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1, "keys are case-normalized to one slot")
	assert.Equal(t, "gate_code", list[0].Key)
}

func TestAttributeExtractedThenManualOverwrite(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer("")

	first, err := env.attributes.ApplyExtracted(env.ctx, customer.ID, "dog_name", "Rex", 0.7, nil)
	require.NoError(t, err)
	assert.Equal(t, models.AttributeExtracted, first.Source)
	require.NotNil(t, first.Confidence)

	// Later extractions refresh the guess.
	second, err := env.attributes.ApplyExtracted(env.ctx, customer.ID, "dog_name", "Max", 0.9, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `"Max"`, string(second.Value))

	// And a manual write takes the key over for good.
	manual, err := env.attributes.SetManual(env.ctx, customer.ID, "dog_name", "Rexford")
	require.NoError(t, err)
	assert.Equal(t, models.AttributeManual, manual.Source)

	after, err := env.attributes.ApplyExtracted(env.ctx, customer.ID, "dog_name", "Rex", 0.99, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `"Rexford"`, string(after.Value))
}

func TestAttributeKeyValidation(t *testing.T) {
	env := newTestEnv(t)
	customer := env.createCustomer("")

	_, err := env.attributes.SetManual(env.ctx, customer.ID, "   ", "x")
	require.ErrorIs(t, err, models.ErrValidation)
}
