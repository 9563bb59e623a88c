package middleware

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/gate"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver/helpers"
)

// BodyMiddleware is the malformed-body detection stage. It decodes the JSON
// payload once, upstream of normalization and validation, and converts a
// parse failure into the pipeline's structured bad-request error instead of
// the framework default. The decoded payload is stored for downstream stages
// and the raw bytes restored for handler binding.
type BodyMiddleware struct {
	logger *logrus.Logger
}

func NewBodyMiddleware(logger *logrus.Logger) *BodyMiddleware {
	return &BodyMiddleware{logger: logger}
}

func (m *BodyMiddleware) ParseJSON() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil {
				helpers.SetParsedBody(c, map[string]any{})
				return next(c)
			}

			raw, err := io.ReadAll(req.Body)
			if err != nil {
				return gate.BadRequest("Invalid JSON payload")
			}
			req.Body = io.NopCloser(bytes.NewReader(raw))

			if len(bytes.TrimSpace(raw)) == 0 {
				helpers.SetParsedBody(c, map[string]any{})
				return next(c)
			}

			var body map[string]any
			if err := json.Unmarshal(raw, &body); err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"path": req.URL.Path}).Debug("rejected malformed request body")
				}
				return gate.BadRequest("Invalid JSON payload")
			}

			helpers.SetParsedBody(c, body)
			return next(c)
		}
	}
}
