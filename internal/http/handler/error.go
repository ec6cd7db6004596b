package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"podapi/internal/http/middleware"
	"podapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// messagePayload is the body of endpoints that only confirm an action.
type messagePayload struct {
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response. message must be safe
// to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	if status == fiber.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	target error
	status int
	code   string
}

var serviceErrors = []errorMapping{
	{service.ErrFileNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrJobNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrNoDocument, fiber.StatusNotFound, "NO_DOCUMENT"},

	{service.ErrUserExists, fiber.StatusConflict, "CONFLICT"},
	{service.ErrFileIDExists, fiber.StatusConflict, "CONFLICT"},
	{service.ErrSystemIDExists, fiber.StatusConflict, "CONFLICT"},

	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{service.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},

	{service.ErrPasswordTooLong, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	{service.ErrPasswordMismatch, fiber.StatusBadRequest, "PASSWORD_MISMATCH"},
	{service.ErrInactiveUser, fiber.StatusBadRequest, "INACTIVE_USER"},
	{service.ErrOTPExpired, fiber.StatusBadRequest, "OTP_EXPIRED"},
	{service.ErrInvalidOTP, fiber.StatusBadRequest, "INVALID_OTP"},
	{service.ErrInvalidResetToken, fiber.StatusBadRequest, "INVALID_TOKEN"},
	{service.ErrInvalidResetRequest, fiber.StatusBadRequest, "INVALID_RESET_REQUEST"},
	{service.ErrInvalidTimezone, fiber.StatusBadRequest, "INVALID_TIMEZONE"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED"},

	{service.ErrStorageAbsent, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	{service.ErrMailDelivery, fiber.StatusInternalServerError, "MAIL_DELIVERY_FAILED"},
}

// writeServiceError maps a service error to its HTTP response. Unknown errors
// become a generic 500 and are handed to the request logger.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			if m.status >= fiber.StatusInternalServerError {
				middleware.SetError(c, err)
			}
			return writeError(c, m.status, m.code, m.target.Error())
		}
	}
	middleware.SetError(c, err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "not authenticated")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			middleware.SetError(c, err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
