package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/ports"
	"github.com/keyfold/user-gatekeeper/internal/validation"
)

// MiddlewareCollection holds one instance of every gatekeeping stage.
type MiddlewareCollection struct {
	Body       *BodyMiddleware
	RateLimit  *RateLimitMiddleware
	Validation *ValidationMiddleware
	Auth       *AuthMiddleware
	Ownership  *OwnershipMiddleware
	Logging    *LoggingMiddleware
	Metrics    *MetricsMiddleware
}

// NewMiddlewareCollection creates a new collection of all middleware
func NewMiddlewareCollection(
	authService ports.AuthService,
	rateLimiter ports.RateLimiter,
	rules map[validation.Context]validation.RuleSet,
	cookieName string,
	logger *logrus.Logger,
	requestsTotal *prometheus.CounterVec,
	requestDuration *prometheus.HistogramVec,
	rateLimitRejections *prometheus.CounterVec,
) *MiddlewareCollection {
	return &MiddlewareCollection{
		Body:       NewBodyMiddleware(logger),
		RateLimit:  NewRateLimitMiddleware(rateLimiter, rateLimitRejections, logger),
		Validation: NewValidationMiddleware(rules, logger),
		Auth:       NewAuthMiddleware(authService, cookieName, logger),
		Ownership:  NewOwnershipMiddleware(logger),
		Logging:    NewLoggingMiddleware(logger),
		Metrics:    NewMetricsMiddleware(requestsTotal, requestDuration),
	}
}
