// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/hogarlab/despensa-backend/internal/services"
	"github.com/hogarlab/despensa-backend/internal/store"
	"github.com/hogarlab/despensa-backend/internal/utils"
)

// handleServiceError maps the service error taxonomy onto HTTP. Anything
// untyped is a 500 with no internals leaked.
func handleServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var stateErr *services.InvalidStateError
	var unavailableErr *store.UnavailableError

	switch {
	case errors.As(err, &validationErr):
		details := make([]utils.ValidationError, 0, len(validationErr.Violations))
		for _, v := range validationErr.Violations {
			details = append(details, utils.ValidationError{Field: v.Field, Message: v.Message})
		}
		utils.ValidationErrorResponse(c, details)
	case errors.As(err, &notFoundErr):
		utils.NotFoundResponse(c, notFoundErr.Resource)
	case errors.As(err, &stateErr):
		utils.ConflictResponse(c, stateErr.Reason)
	case errors.As(err, &unavailableErr):
		utils.ServiceUnavailableResponse(c, "")
	default:
		utils.InternalErrorResponse(c, "")
	}
}
