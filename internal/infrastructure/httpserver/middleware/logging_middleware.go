package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver/helpers"
)

type LoggingMiddleware struct {
	logger *logrus.Logger
}

func NewLoggingMiddleware(logger *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// RequestLogging logs each request once it completes, tagged with the
// same client key the rate limiter buckets on.
func (m *LoggingMiddleware) RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{
					"method":     c.Request().Method,
					"path":       c.Path(),
					"status":     c.Response().Status,
					"client_key": helpers.ClientKey(c),
					"latency_ms": time.Since(start).Milliseconds(),
				}).Debug("request completed")
			}
			return err
		}
	}
}
