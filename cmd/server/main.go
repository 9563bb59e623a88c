package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/keyfold/user-gatekeeper/configs"
	"github.com/keyfold/user-gatekeeper/internal/application/services"
	"github.com/keyfold/user-gatekeeper/internal/core/ports"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/db"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/email"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/health"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/httpserver"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/redis"
	"github.com/keyfold/user-gatekeeper/internal/infrastructure/repositories"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting user gatekeeper service...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(database, logger)
	emailTokenRepo := repositories.NewEmailTokenRedisRepository(redisClient, logger)

	// Rate limit counters live in memory by default; the Redis store keeps
	// buckets shared across replicas.
	var rateLimitStore ports.RateLimitStore
	switch cfg.RateLimit.Backend {
	case "redis":
		rateLimitStore = repositories.NewRateLimitRedisRepository(redisClient, cfg.RateLimit.KeyPrefix)
		logger.Info("Rate limiting backed by Redis")
	default:
		rateLimitStore = repositories.NewRateLimitMemoryRepository()
		logger.Info("Rate limiting backed by in-process memory")
	}

	// Services. Without a SendGrid key the service still runs; accounts just
	// never receive verification mail.
	var emailService ports.EmailService
	if cfg.Email.SendGridAPIKey != "" {
		emailConfig := &email.EmailConfig{
			SendGridAPIKey: cfg.Email.SendGridAPIKey,
			FromEmail:      cfg.Email.FromEmail,
			FromName:       cfg.Email.FromName,
			CompanyName:    cfg.Email.CompanyName,
			BaseURL:        cfg.Email.BaseURL,
		}
		emailService, err = email.NewEmailService(emailConfig, logger)
		if err != nil {
			logger.Fatal("Failed to initialize email service:", err)
		}
	} else {
		logger.Warn("SENDGRID_API_KEY not set - verification emails disabled")
	}

	userService := services.NewUserService(userRepo, emailService, emailTokenRepo, logger)
	authService := services.NewAuthService(userRepo, &cfg.JWT, logger)
	rateLimiter := services.NewRateLimiterService(rateLimitStore, &services.RateLimiterConfig{
		Window:      cfg.RateLimit.Window,
		MaxRequests: cfg.RateLimit.MaxRequests,
	}, logger)

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewRedisHealthChecker(redisClient)}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		IdleTimeout:      cfg.Server.IdleTimeout,
		TLSCertFile:      cfg.Server.TLSCertFile,
		TLSKeyFile:       cfg.Server.TLSKeyFile,
		Environment:      cfg.Server.Environment,
		BodyLimit:        cfg.Server.BodyLimit,
		CookieName:       cfg.Server.CookieName,
		NormalizedFields: cfg.Server.NormalizedFields,
		TokenTTL:         cfg.JWT.TokenTTL,
	}

	// Initialize HTTP server using ServerDeps for clearer wiring
	deps := httpserver.ServerDeps{
		UserService:    userService,
		AuthService:    authService,
		RateLimiter:    rateLimiter,
		HealthCheckers: hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
