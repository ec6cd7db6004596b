package middleware

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"podapi/internal/logging"
)

// ErrorLocalKey holds an internal error for the request log line.
const ErrorLocalKey = "request_error"

// SetError attaches err to the request so Logger can report it. The error is
// never sent to the client.
func SetError(c *fiber.Ctx, err error) {
	c.Locals(ErrorLocalKey, err)
}

// Logger logs one JSON line per request with request_id, method, path,
// status and latency in milliseconds. Place it after RequestID.
func Logger(logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := statusOf(c, err)
		var fe *fiber.Error
		if err != nil && !errors.As(err, &fe) {
			SetError(c, err)
		}
		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("request_id", rid),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		}
		if cause, ok := c.Locals(ErrorLocalKey).(error); ok {
			attrs = append(attrs, logging.Err(cause))
		}
		logger.LogAttrs(c.UserContext(), level, "http_request", attrs...)
		return err
	}
}

// LoggerWithWriter is Logger over a fresh JSON logger writing to w.
func LoggerWithWriter(w io.Writer, loc *time.Location) fiber.Handler {
	return Logger(logging.New(w, loc))
}
