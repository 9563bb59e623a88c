package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/auth"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/gate"
	"github.com/keyfold/user-gatekeeper/internal/core/ports"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver/helpers"
)

// AuthMiddleware is the token authentication stage. The credential is taken
// from the Authorization header first and the configured cookie second;
// missing, tampered and expired tokens each produce a distinct response.
type AuthMiddleware struct {
	authService ports.AuthService
	cookieName  string
	logger      *logrus.Logger
}

func NewAuthMiddleware(authService ports.AuthService, cookieName string, logger *logrus.Logger) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "token"
	}
	return &AuthMiddleware{authService: authService, cookieName: cookieName, logger: logger}
}

// RequireToken verifies the bearer credential and attaches the decoded
// identity to the request's typed identity slot.
func (m *AuthMiddleware) RequireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := helpers.TokenFromRequest(c, m.cookieName)
			if tokenString == "" {
				return gate.Unauthorized("No token provided")
			}

			claims, err := m.authService.VerifyToken(tokenString)
			if err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"path": c.Request().URL.Path, "error": err.Error()}).Warn("token verification failed")
				}
				if errors.Is(err, auth.ErrTokenExpired) {
					return gate.Unauthorized("Token expired")
				}
				return gate.Unauthorized("Invalid token")
			}

			helpers.SetIdentity(c, claims)
			return next(c)
		}
	}
}
