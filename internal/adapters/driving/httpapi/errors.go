package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var verr *domain.ValidationError
	var ferr *fiber.Error
	switch {
	case errors.As(err, &verr), errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorizedRecipient):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, domain.ErrNoCredential),
		errors.Is(err, domain.ErrTokenRefreshFailed),
		errors.Is(err, domain.ErrProviderUnauthorized):
		return fiber.StatusBadGateway
	case errors.As(err, &ferr):
		return ferr.Code
	default:
		return fiber.StatusInternalServerError
	}
}

// messageFor returns the client-facing message for err.
// Google token problems all ask the user to reconnect.
func messageFor(err error, status int) string {
	switch {
	case errors.Is(err, domain.ErrTokenRefreshFailed),
		errors.Is(err, domain.ErrProviderUnauthorized):
		return domain.ErrNoCredential.Error()
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case status == fiber.StatusInternalServerError:
		return "internal server error"
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return "validation error"
	}
	return err.Error()
}

// errorHandler is the fiber error handler for the whole app.
func errorHandler(c fiber.Ctx, err error) error {
	status := statusFor(err)
	body := errorBody{Error: messageFor(err, status)}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Details = verr.Fields
	}

	if status >= fiber.StatusInternalServerError {
		logger.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	} else {
		logger.Debug("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}
	return c.Status(status).JSON(body)
}
