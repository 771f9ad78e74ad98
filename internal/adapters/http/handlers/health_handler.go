package handlers

import (
	"outsized-identity/internal/config"
	"outsized-identity/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db          *gorm.DB
	rdb         *redis.Client
	userService *services.UserService
	cfg         *config.Config
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, rdb *redis.Client, userService *services.UserService, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		db:          db,
		rdb:         rdb,
		userService: userService,
		cfg:         cfg,
	}
}

// Root handles root endpoint
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 Outsized Identity API is running",
		"mode":    h.cfg.AppMode,
	})
}

// HealthCheck reports on the relational store, the counter store, and the
// identity provider
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	dbStatus := "healthy"
	if err := config.HealthCheck(h.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if err := h.rdb.Ping(c.Context()).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	providerStatus := "healthy"
	if err := h.userService.CheckProvider(c.Context()); err != nil {
		providerStatus = "unhealthy"
	}

	status := fiber.StatusOK
	if dbStatus != "healthy" {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"api":      "healthy",
			"database": dbStatus,
			"redis":    redisStatus,
			"provider": providerStatus,
		},
	})
}
