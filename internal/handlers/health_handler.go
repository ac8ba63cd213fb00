package handlers

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/chronicles-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Pinger is satisfied by the Redis limiter storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    *gorm.DB
	redis Pinger
}

// NewHealthHandler accepts a nil redis when the limiter runs in memory.
func NewHealthHandler(db *gorm.DB, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        "ok",
	}

	if sqlDB, err := h.db.DB(); err != nil {
		resp.DB = "unhealthy: " + err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		resp.DB = "unhealthy: " + err.Error()
	}
	if h.redis != nil {
		resp.Redis = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			resp.Redis = "unhealthy: " + err.Error()
		}
	}

	if resp.DB != "ok" {
		resp.Status = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
