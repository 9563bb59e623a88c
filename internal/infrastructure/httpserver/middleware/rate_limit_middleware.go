package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/ports"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver/helpers"
)

// RateLimitMiddleware admits or rejects requests before any other gatekeeping
// stage runs, bucketed by client key.
type RateLimitMiddleware struct {
	rateLimiter ports.RateLimiter
	rejections  *prometheus.CounterVec
	logger      *logrus.Logger
}

func NewRateLimitMiddleware(rateLimiter ports.RateLimiter, rejections *prometheus.CounterVec, logger *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter, rejections: rejections, logger: logger}
}

func (r *RateLimitMiddleware) Handler() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := helpers.ClientKey(c)
			if err := r.rateLimiter.Admit(c.Request().Context(), key); err != nil {
				if r.rejections != nil {
					r.rejections.WithLabelValues(c.Path()).Inc()
				}
				if r.logger != nil {
					r.logger.WithFields(logrus.Fields{"client_key": key, "path": c.Request().URL.Path}).Warn("request rate limited")
				}
				return err
			}
			return next(c)
		}
	}
}
