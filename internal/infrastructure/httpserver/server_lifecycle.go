package httpserver

import (
	"context"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func (s *Server) Start() error {
	s.LogMetricsInitialization()

	addr := net.JoinHostPort(s.config.Host, s.config.Port)
	fields := logrus.Fields{"addr": addr, "environment": s.config.Environment}

	if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
		s.logger.WithFields(fields).Info("starting HTTPS server")
		return s.echo.StartTLS(addr, s.config.TLSCertFile, s.config.TLSKeyFile)
	}

	s.logger.WithFields(fields).Info("starting HTTP server")
	if s.config.Environment == "production" {
		s.logger.Warn("running in production without TLS certificates")
	}
	return s.echo.StartServer(&http.Server{
		Addr:         addr,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	})
}

// Shutdown stops accepting new connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for in-process tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
