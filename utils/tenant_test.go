package utils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDFromContext(t *testing.T) {
	userID := uuid.New()
	ctx := WithUserID(context.Background(), userID)

	got, err := UserIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestUserIDFromContextFailsClosed(t *testing.T) {
	_, err := UserIDFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoUserContext)

	// A nil UUID is as bad as no UUID.
	ctx := WithUserID(context.Background(), uuid.Nil)
	_, err = UserIDFromContext(ctx)
	assert.ErrorIs(t, err, ErrNoUserContext)
}
