package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/domain/gate"
)

// errorEnvelope is the single failure shape every aborted request produces,
// regardless of which pipeline stage rejected it.
type errorEnvelope struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Errors  []gate.Detail `json:"errors,omitempty"`
}

// respondError is the terminal responder: the one place any pipeline abort or
// stray failure is translated into a client response. Unstructured errors are
// logged with their raw message and surfaced as a generic internal failure so
// nothing leaks to the client.
func (s *Server) respondError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if ge, ok := gate.As(err); ok {
		s.writeEnvelope(c, ge.Class.HTTPStatus(), errorEnvelope{
			Status:  "error",
			Message: ge.Message,
			Errors:  ge.Details,
		})
		return
	}

	if he, ok := err.(*echo.HTTPError); ok {
		s.writeEnvelope(c, he.Code, errorEnvelope{
			Status:  "error",
			Message: httpErrorMessage(he),
		})
		return
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Request().URL.Path,
		}).WithError(err).Error("unhandled error reached the responder")
	}
	s.writeEnvelope(c, http.StatusInternalServerError, errorEnvelope{
		Status:  "error",
		Message: "Internal server error",
	})
}

func (s *Server) writeEnvelope(c echo.Context, status int, envelope errorEnvelope) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, envelope)
	}
	if err != nil && s.logger != nil {
		s.logger.WithError(err).Error("failed to write error response")
	}
}

// httpErrorMessage maps framework-raised failures onto the fixed messages of
// the error taxonomy.
func httpErrorMessage(he *echo.HTTPError) string {
	switch he.Code {
	case http.StatusRequestEntityTooLarge:
		return "Payload too large"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusMethodNotAllowed:
		return "Method not allowed"
	}
	if msg, ok := he.Message.(string); ok && msg != "" {
		return msg
	}
	return http.StatusText(he.Code)
}
