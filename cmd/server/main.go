package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()
	level := logging.Level(cfg.AppEnv)

	// Structured logging (JSON to stdout)
	logging.Setup(level)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if !cfg.UsesSQLite() && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// DB log sink (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	logging.SetupWithDB(level, dbLogHandler)

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	cat, err := catalog.Load()
	if err != nil {
		slog.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	// Services
	authService := services.NewAuthService(database.DB, cfg)
	storyService := services.NewStoryService(database.DB)
	interactionService := services.NewInteractionService(database.DB, services.NewContentFilter())
	eventService := services.NewEventService(database.DB)
	searchService := services.NewSearchService(database.DB)
	recommendationService := services.NewRecommendationService(database.DB)
	achievementService := services.NewAchievementService(database.DB)
	userService := services.NewUserService(database.DB)
	analyticsService := services.NewAnalyticsService(database.DB, achievementService)

	aiClient := ai.NewClient(cfg.AIAPIURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout)
	if !aiClient.IsConfigured() {
		slog.Warn("AI_API_KEY not set, generation will return placeholder text")
	}
	generationService := services.NewGenerationService(aiClient, cat, storyService, achievementService)

	// Seed catalog data
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := achievementService.SeedCatalog(seedCtx, cat.Achievements); err != nil {
		slog.Error("failed to seed achievements", "error", err)
	}
	if err := eventService.Seed(seedCtx, cat.Events); err != nil {
		slog.Error("failed to seed historical events", "error", err)
	}
	cancelSeed()

	// Rate limiter storage: Redis when configured, process memory otherwise
	var limiterStorage fiber.Storage
	var redisPinger handlers.Pinger
	if cfg.RedisURL != "" {
		store, err := ratelimit.NewRedisStorage(cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, rate limiting in memory", "error", err)
		} else {
			limiterStorage = store
			redisPinger = store
			defer store.Close()
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	healthHandler := handlers.NewHealthHandler(database.DB, redisPinger)
	storyHandler := handlers.NewStoryHandler(storyService, interactionService)
	discoveryHandler := handlers.NewDiscoveryHandler(eventService, searchService, recommendationService)
	userHandler := handlers.NewUserHandler(userService, achievementService, analyticsService)
	generateHandler := handlers.NewGenerateHandler(generationService)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, limiterStorage, authHandler, healthHandler, storyHandler, discoveryHandler, userHandler, generateHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
