package helpers

import (
	"github.com/labstack/echo/v4"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/auth"
)

type ctxKey string

const (
	keyIdentity ctxKey = "identity"
	keyBody     ctxKey = "parsed_body"
)

// SetIdentity attaches the verified request identity to its typed slot.
func SetIdentity(c echo.Context, claims *auth.Claims) { c.Set(string(keyIdentity), claims) }

// GetIdentityRaw returns the request identity when one was attached.
func GetIdentityRaw(c echo.Context) (*auth.Claims, bool) {
	v := c.Get(string(keyIdentity))
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

// SetParsedBody stores the decoded JSON payload for downstream stages.
func SetParsedBody(c echo.Context, body map[string]any) { c.Set(string(keyBody), body) }

// GetParsedBodyRaw returns the decoded JSON payload when one was stored.
func GetParsedBodyRaw(c echo.Context) (map[string]any, bool) {
	v := c.Get(string(keyBody))
	body, ok := v.(map[string]any)
	return body, ok
}
