package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/keyfold/user-gatekeeper/internal/core/ports"
	customMiddleware "github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver/middleware"
	"github.com/keyfold/user-gatekeeper/internal/validation"
)

type ServerConfig struct {
	Host             string
	Port             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	TLSCertFile      string
	TLSKeyFile       string
	Environment      string
	BodyLimit        string
	CookieName       string
	NormalizedFields []string
	TokenTTL         time.Duration
}

type ServerDeps struct {
	UserService    ports.UserService
	AuthService    ports.AuthService
	RateLimiter    ports.RateLimiter
	HealthCheckers []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	userService    ports.UserService
	authSvc        ports.AuthService
	rateLimiter    ports.RateLimiter
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		userService:    deps.UserService,
		authSvc:        deps.AuthService,
		rateLimiter:    deps.RateLimiter,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.AuthService,
			deps.RateLimiter,
			validation.Registry(),
			serverConfig.CookieName,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
			GetRateLimitRejections(),
		),
	}

	e.HTTPErrorHandler = server.respondError

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
