package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medcore/clinic-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondCreated sends a 201 response
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError maps the error taxonomy to HTTP statuses. Validation,
// transition and conflict failures surface their actionable message;
// not-found and access-denied collapse to a generic 404 so the existence
// of records outside the caller's scope is not leaked.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch errors.CodeOf(err) {
	case errors.ErrValidation, errors.ErrBadRequest:
		status = http.StatusBadRequest
		message = err.Error()
	case errors.ErrUnauthorized:
		status = http.StatusUnauthorized
		message = "unauthorized"
	case errors.ErrIncompleteProfile:
		status = http.StatusPreconditionFailed
		message = err.Error()
	case errors.ErrNotFound, errors.ErrAccessDenied:
		status = http.StatusNotFound
		message = "not available"
	case errors.ErrInvalidTransition, errors.ErrConflict, errors.ErrStaleState:
		status = http.StatusConflict
		message = err.Error()
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    status,
			Message: message,
		},
	})
}
