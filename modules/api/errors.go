package api

import (
	"errors"

	"github.com/example/task-todo-api/domain/apperror"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as an ErrorResponse with the status of its kind.
func (h *Handlers) writeError(c *fiber.Ctx, op string, err error) error {
	appErr := apperror.From(err)
	status := statusFor(appErr.Kind)

	if status >= fiber.StatusInternalServerError {
		h.logger.Error("Request failed",
			"operation", op,
			"kind", appErr.Kind,
			"error", err,
		)
	}

	return c.Status(status).JSON(ErrorResponse{
		Error:   string(appErr.Kind),
		Message: appErr.Message,
		Fields:  appErr.Fields,
	})
}

// errorHandler handles errors that escape route handlers, such as unknown
// routes or panics caught by the recover middleware.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := apperror.MsgUnexpected

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		m.logger.Error("Unhandled error", "path", c.Path(), "error", err)
	}

	kind := "server_error"
	if code < fiber.StatusInternalServerError {
		kind = "request_error"
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   kind,
		Message: message,
	})
}
