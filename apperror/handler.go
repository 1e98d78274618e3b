package apperror

import (
	"errors"

	"parcel-delivery/logger"
	"parcel-delivery/types"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the single boundary that maps errors to the response
// envelope. Wire it into fiber.Config so every handler can just return errors.
// Unrecognized errors become a generic 500: no internal detail leaks out.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.StatusCode).JSON(types.ErrorResponse{
			Success:      false,
			Message:      appErr.Message,
			ErrorDetails: appErr.Details,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(types.ErrorResponse{
			Success: false,
			Message: fiberErr.Message,
		})
	}

	logger.Error("Unhandled error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
		Success: false,
		Message: "Sorry, Something went wrong!",
	})
}
