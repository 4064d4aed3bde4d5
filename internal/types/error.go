package types

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// CustomError is an error with the HTTP status and error type reported to the client.
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// BadRequest reports a rejected request parameter.
func BadRequest(errorType, format string, args ...any) *CustomError {
	return &CustomError{Code: fiber.StatusBadRequest, Message: fmt.Sprintf(format, args...), Type: errorType}
}

// Unauthorized reports a missing or wrong credential.
func Unauthorized(errorType, message string) *CustomError {
	return &CustomError{Code: fiber.StatusUnauthorized, Message: message, Type: errorType}
}
