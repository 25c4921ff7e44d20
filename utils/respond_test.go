package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldpro-backend/models"
)

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrValidation, http.StatusBadRequest},
		{models.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{models.ErrConflict, http.StatusConflict},
		{ErrNoUserContext, http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
		// Wrapped errors map the same as their roots.
		{fmt.Errorf("%w: title is required", models.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("outer: %w", models.ErrNotFound), http.StatusNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFromError(tc.err), "error: %v", tc.err)
	}
}
