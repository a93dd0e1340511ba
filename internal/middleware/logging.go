// Package middleware contains HTTP middleware functions for the task status API.
// Middleware sits between the HTTP server and route handlers; it runs on every
// request that passes through it, making it the right place for cross-cutting
// concerns like request ids and access logging.
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// requestIDKey is where the requestid middleware stores the id in c.Locals.
const requestIDKey = "requestid"

// RequestID tags every request with a UUID, stored in c.Locals and echoed to the
// client in the X-Request-ID header. An id supplied by the caller is kept as-is.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	})
}

// AccessLog returns a middleware that writes one zap entry per request with the
// method, path, final status code, latency and request id.
//
// Errors returned further down the chain are passed to the app's ErrorHandler here,
// the same way Fiber's own logger middleware does it, so the logged status is the
// one the client actually receives.
func AccessLog(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		requestID, _ := c.Locals(requestIDKey).(string)

		level := zapcore.InfoLevel
		switch {
		case status >= fiber.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status >= fiber.StatusBadRequest:
			level = zapcore.WarnLevel
		}

		log.Check(level, "HTTP request").Write(
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID),
			zap.String("ip", c.IP()),
		)
		return nil
	}
}
