package httpserver

import (
	customMiddleware "github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver/middleware"
	"github.com/keyfold/user-gatekeeper/internal/validation"
)

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	// Every /auth endpoint shares the same leading stages: a single JSON
	// parse that later stages read from, then client rate limiting.
	// Malformed bodies are rejected before they touch the client's quota.
	auth := s.echo.Group("/auth",
		s.middleware.Body.ParseJSON(),
		s.middleware.RateLimit.Handler(),
	)

	auth.POST("/register", s.register,
		customMiddleware.NormalizeFields(s.config.NormalizedFields...),
		s.middleware.Validation.Validate(validation.ContextRegister),
	)

	auth.POST("/login", s.login,
		customMiddleware.NormalizeFields("username"),
		s.middleware.Validation.Validate(validation.ContextLogin),
	)

	auth.PUT("/edit", s.editUser,
		customMiddleware.NormalizeFields(s.config.NormalizedFields...),
		s.middleware.Auth.RequireToken(),
		s.middleware.Validation.Validate(validation.ContextEdit),
		s.middleware.Ownership.RequireOwnership(),
	)

	auth.DELETE("/delete", s.deleteUser,
		s.middleware.Auth.RequireToken(),
		s.middleware.Ownership.RequireOwnership(),
	)

	auth.GET("/verify-email", s.verifyEmail)
}
