package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver/helpers"
)

// NormalizeFields trims and lowercases the named string fields of the parsed
// payload. Absent or non-string fields are left untouched; the stage never
// fails. The request body is re-serialized so handlers bind the normalized
// values.
func NormalizeFields(fields ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, ok := helpers.GetParsedBodyRaw(c)
			if !ok || len(body) == 0 {
				return next(c)
			}

			changed := false
			for _, field := range fields {
				value, isString := body[field].(string)
				if !isString || value == "" {
					continue
				}
				body[field] = strings.ToLower(strings.TrimSpace(value))
				changed = true
			}

			if changed {
				if raw, err := json.Marshal(body); err == nil {
					c.Request().Body = io.NopCloser(bytes.NewReader(raw))
					c.Request().ContentLength = int64(len(raw))
				}
				helpers.SetParsedBody(c, body)
			}
			return next(c)
		}
	}
}
