package middleware

import (
	"parcel-delivery/logger"
	"parcel-delivery/utils"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger snapshots every request/response pair into the async logger
// after the handler chain finishes. Errors are rendered through the app's
// error handler first so the logged response matches what the client saw.
func RequestLogger(asyncLogger *logger.AsyncLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			if handlerErr := c.App().Config().ErrorHandler(c, err); handlerErr != nil {
				return handlerErr
			}
		}

		asyncLogger.Log(utils.CreateSanitizedLogEntry(c))
		return nil
	}
}
