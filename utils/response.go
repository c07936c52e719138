package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse terminates the request with {"error": message}.
func ErrorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// Fail terminates the request with the status of the given failure class.
func Fail(c *fiber.Ctx, kind error, message string) error {
	return ErrorResponse(c, StatusCode(kind), message)
}

// MessageResponse answers with a plain text success message.
func MessageResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).SendString(message)
}

// ErrorHandler is the application-wide fallback for errors that escape a
// handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := StatusCode(err)
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		message = fe.Message
	} else if status != fiber.StatusInternalServerError {
		message = err.Error()
	}

	if status >= fiber.StatusInternalServerError {
		LogError("unhandled_request_error", err, map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		})
	}

	return ErrorResponse(c, status, message)
}
