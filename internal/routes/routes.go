package routes

import (
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
)

// authRateLimit is the stricter per-IP budget for credential endpoints.
const authRateLimit = 10

func Setup(
	app *fiber.App,
	cfg *config.Config,
	limiterStorage fiber.Storage,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	storyHandler *handlers.StoryHandler,
	discoveryHandler *handlers.DiscoveryHandler,
	userHandler *handlers.UserHandler,
	generateHandler *handlers.GenerateHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: per IP, RATE_LIMIT_PER_MINUTE req/min
	api.Use(ratelimit.PerIP(cfg.RateLimitPerMinute, limiterStorage))

	api.Get("/health", healthHandler.Check)

	protected := middleware.JWTProtected(cfg)
	optional := middleware.OptionalAuth(cfg)

	// Auth: public, stricter limit
	auth := api.Group("/auth")
	auth.Use(ratelimit.PerIP(authRateLimit, limiterStorage))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// JWT middleware is attached per route so public routes stay anonymous.
	api.Post("/auth/logout", protected, authHandler.Logout)
	api.Post("/auth/change-password", protected, authHandler.ChangePassword)
	api.Delete("/auth/account", protected, authHandler.DeleteAccount)

	// Stories
	api.Get("/stories", optional, storyHandler.List)
	api.Get("/stories/:id", optional, storyHandler.Get)
	api.Post("/stories/:id/rate", protected, storyHandler.Rate)
	api.Post("/stories/:id/bookmark", protected, storyHandler.ToggleBookmark)
	api.Get("/stories/:id/comments", optional, storyHandler.ListComments)
	api.Post("/stories/:id/comments", protected, storyHandler.AddComment)

	// Discovery
	api.Get("/historical-events", discoveryHandler.HistoricalEvents)
	api.Get("/search", discoveryHandler.Search)
	api.Get("/recommendations", protected, discoveryHandler.Recommendations)

	// Account data
	api.Get("/achievements", protected, userHandler.Achievements)
	api.Get("/user/status", optional, userHandler.Status)
	api.Get("/user/preferences", protected, userHandler.GetPreferences)
	api.Post("/user/preferences", protected, userHandler.SetPreferences)
	api.Post("/user/profile", protected, userHandler.UpdateProfile)
	api.Post("/analytics/track", protected, userHandler.Track)
	api.Get("/analytics/dashboard", protected, userHandler.Dashboard)

	api.Post("/generate", optional, generateHandler.Generate)
}
