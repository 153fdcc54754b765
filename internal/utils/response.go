package utils

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Machine-readable error codes carried in the response envelope. Handlers
// and middleware agree on these so clients can branch without parsing
// messages.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenReuse         = "TOKEN_REUSE_DETECTED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL"
)

// Envelope is the uniform response shape for every endpoint. Data is null
// on failure; Error is absent on success.
type Envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failure in the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK writes a success envelope with the given status and payload.
func OK(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope with the given status, code and message.
func Fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, Envelope{Success: false, Data: nil, Error: &ErrorBody{Code: code, Message: message}})
}

// Internal writes a generic 500 envelope. Infrastructure failures are
// reported without internal detail so store errors cannot leak schema or
// host information.
func Internal(c echo.Context) error {
	return Fail(c, http.StatusInternalServerError, CodeInternal, "internal error")
}
