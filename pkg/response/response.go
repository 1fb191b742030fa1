// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maxviazov/tennis-players-service/internal/service"
)

const internalMessage = "Internal server error"

// ErrorPayload is the canonical error envelope returned by the API.
type ErrorPayload struct {
	Error       string               `json:"error"`
	Message     string               `json:"message,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
}

// MapError converts a domain / infrastructure error into an HTTP status and payload.
// Client-facing messages come from service.Error; internal failures never leak their cause.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}

	msg := ""
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Message
	}

	switch service.KindOf(err) {
	case service.KindValidation:
		if msg == "" {
			msg = "one or more fields are invalid"
		}
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     msg,
			FieldErrors: service.FieldErrors(err),
		}
	case service.KindNotFound:
		if msg == "" {
			msg = "resource not found"
		}
		return http.StatusNotFound, ErrorPayload{Error: "not_found", Message: msg}
	case service.KindConflict:
		if msg == "" {
			msg = "resource already exists"
		}
		return http.StatusConflict, ErrorPayload{Error: "already_exists", Message: msg}
	default:
		return http.StatusInternalServerError, ErrorPayload{Error: "internal_error", Message: internalMessage}
	}
}

// WriteError logs err on the request logger, writes the mapped response and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)

	log := zerolog.Ctx(c.Request.Context())
	var event *zerolog.Event
	switch status {
	case http.StatusBadRequest, http.StatusConflict:
		event = log.Warn()
	case http.StatusNotFound:
		event = log.Info()
	default:
		event = log.Error()
	}
	event.Err(err).Int("status", status).Str("error_code", payload.Error).Msg("request failed")

	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}
