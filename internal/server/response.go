package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushq/beacon/pkg/models"
)

// SendSuccess sends a success response envelope with the given payload.
func SendSuccess(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(models.APIResponse{
		Status: "success",
		Data:   data,
	})
}

// SendError sends an error response with the general error type.
func SendError(c *fiber.Ctx, status int, message string) error {
	return SendErrorWithType(c, status, message, models.GeneralErrorType)
}

// SendErrorWithType sends an error response with an explicit error type
// so clients can branch on the failure class.
func SendErrorWithType(c *fiber.Ctx, status int, message string, errorType models.APIErrorType) error {
	return c.Status(status).JSON(models.APIResponse{
		Status:    "error",
		Message:   message,
		ErrorType: errorType,
	})
}
