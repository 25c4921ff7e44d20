package utils

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "currentUserID"

// ErrNoUserContext is returned when a tenant-scoped operation runs
// without an authenticated user bound to the context.
var ErrNoUserContext = errors.New("no authenticated user in context")

// WithUserID binds the authenticated account to the context. Every
// request passes through here exactly once, in the auth middleware.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated account ID. It fails
// closed: callers get ErrNoUserContext rather than a zero ID, so a
// missed auth middleware can never widen a query to all tenants.
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrNoUserContext
	}
	return id, nil
}
