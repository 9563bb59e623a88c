package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/gate"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver/helpers"
	"github.com/keyfold/user-gatekeeper/internal/validation"
)

// ValidationMiddleware runs the declarative field rules of one operation
// context against the parsed payload, collecting every failure in rule order.
type ValidationMiddleware struct {
	registry map[validation.Context]validation.RuleSet
	logger   *logrus.Logger
}

func NewValidationMiddleware(registry map[validation.Context]validation.RuleSet, logger *logrus.Logger) *ValidationMiddleware {
	return &ValidationMiddleware{registry: registry, logger: logger}
}

func (m *ValidationMiddleware) Validate(ctx validation.Context) echo.MiddlewareFunc {
	rules := m.registry[ctx]
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, _ := helpers.GetParsedBodyRaw(c)
			if body == nil {
				body = map[string]any{}
			}

			if details := rules.Validate(body); len(details) > 0 {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"context": string(ctx), "failures": len(details)}).Debug("request failed validation")
				}
				return gate.BadRequest("Validation failed", details...)
			}
			return next(c)
		}
	}
}
