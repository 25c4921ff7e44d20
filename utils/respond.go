package utils

import (
	"errors"
	"net/http"

	"fieldpro-backend/models"

	"github.com/gin-gonic/gin"
)

// RespondWithError writes a JSON error body with the given status.
func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// StatusFromError maps service errors onto HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNoUserContext):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithServiceError maps the error and writes it in one step.
func RespondWithServiceError(c *gin.Context, err error) {
	RespondWithError(c, StatusFromError(err), err.Error())
}
