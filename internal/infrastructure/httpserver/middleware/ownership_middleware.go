package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/gate"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver/helpers"
)

// OwnershipMiddleware ensures a mutating request targets the caller's own
// account. The target identifier comes from the request body's id field or
// the :id route parameter.
//
// Malformed targets are rejected before the identity is inspected, so the
// response does not reveal whether a valid session exists when the request
// itself is malformed.
type OwnershipMiddleware struct {
	logger *logrus.Logger
}

func NewOwnershipMiddleware(logger *logrus.Logger) *OwnershipMiddleware {
	return &OwnershipMiddleware{logger: logger}
}

func (m *OwnershipMiddleware) RequireOwnership() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			targetID, ok := targetIDFromRequest(c)
			if !ok {
				return gate.Forbidden("Id is missing")
			}

			claims, ok := helpers.GetIdentityRaw(c)
			if !ok {
				return gate.Unauthorized("Token is invalid or missing")
			}

			if claims.UserID != targetID {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"user_id": claims.UserID, "target_id": targetID}).Warn("ownership check failed")
				}
				return gate.Forbidden("You not authorized to update this user.")
			}
			return next(c)
		}
	}
}

func targetIDFromRequest(c echo.Context) (int64, bool) {
	if body, ok := helpers.GetParsedBodyRaw(c); ok {
		if raw, exists := body["id"]; exists {
			return coerceID(raw)
		}
	}
	if param := c.Param("id"); param != "" {
		return coerceID(param)
	}
	return 0, false
}

// coerceID accepts the JSON encodings an id can arrive in; anything
// non-numeric is treated as missing.
func coerceID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
