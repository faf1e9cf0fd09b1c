// FILE: internal/pkg/serverutils/response.go
package serverutils

import "github.com/gofiber/fiber/v2"

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{Code: code, Message: message}
}

// TypedErrorResponse carries the error taxonomy kind the client switches on
// (unknown_session, validation_error, internal_error).
func TypedErrorResponse(code int, kind, message string) ErrorBody {
	return ErrorBody{Code: code, Message: message, Kind: kind}
}

// ErrorHandlerMiddleware recovers panics into a clean 500 so one broken
// session cannot take the process down.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				_ = ctx.Status(fiber.StatusInternalServerError).
					JSON(TypedErrorResponse(500, "internal_error", "Internal server error"))
			}
		}()
		return ctx.Next()
	}
}
