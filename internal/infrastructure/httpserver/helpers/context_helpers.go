package helpers

import (
	"net"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/auth"
	"github.com/keyfold/user-gatekeeper/internal/core/domain/gate"
)

// GetIdentityFromContext returns the identity attached by the auth middleware
// or an unauthorized gatekeeper error when none is present.
func GetIdentityFromContext(c echo.Context) (*auth.Claims, error) {
	claims, ok := GetIdentityRaw(c)
	if !ok {
		return nil, gate.Unauthorized("Token is invalid or missing")
	}
	return claims, nil
}

// ClientKey derives the rate-limit bucket key for a request: the first
// forwarded address when present, else the direct peer address, else empty.
// The limiter buckets an empty key under its sentinel rather than skipping.
func ClientKey(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	remote := strings.TrimSpace(c.Request().RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	return remote
}

// TokenFromRequest extracts the bearer credential, preferring the
// Authorization header over the named cookie when both are present.
func TokenFromRequest(c echo.Context, cookieName string) string {
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimPrefix(authHeader, "Bearer "); token != "" {
			return token
		}
	}

	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}
