package apperror

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is a domain rule violation carrying the HTTP status it maps to.
// Services raise it and it propagates unmodified to the fiber error handler.
type AppError struct {
	StatusCode int
	Message    string
	Details    []FieldError
}

func (e *AppError) Error() string {
	return e.Message
}

// New creates an AppError with the given status and message.
func New(statusCode int, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message}
}

func NotFound(message string) *AppError {
	return New(fiber.StatusNotFound, message)
}

func BadRequest(message string) *AppError {
	return New(fiber.StatusBadRequest, message)
}

func Forbidden(message string) *AppError {
	return New(fiber.StatusForbidden, message)
}

func Unauthorized(message string) *AppError {
	return New(fiber.StatusUnauthorized, message)
}

func Conflict(message string) *AppError {
	return New(fiber.StatusConflict, message)
}

func Internal(message string) *AppError {
	return New(fiber.StatusInternalServerError, message)
}

// Validation wraps field-level details into a 400 error.
func Validation(details []FieldError) *AppError {
	return &AppError{
		StatusCode: fiber.StatusBadRequest,
		Message:    "Validation Error",
		Details:    details,
	}
}

// FromValidationErrors converts validator.ValidationErrors into field details.
// Other errors become a plain 400 with the error text.
func FromValidationErrors(err error) *AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		return Validation(details)
	}
	return BadRequest(err.Error())
}
