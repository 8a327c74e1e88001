package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storylingo/backend/internal/apperr"
)

type APIError struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAppError maps a service error onto its HTTP status through the
// error's kind. The response carries the message, not the wrapped cause.
func RespondAppError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	msg := err.Error()
	var details map[string]any
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
		details = ae.Details
	}
	c.JSON(apperr.HTTPStatus(kind), ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    string(kind),
			Details: details,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
