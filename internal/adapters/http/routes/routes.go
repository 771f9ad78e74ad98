package routes

import (
	"outsized-identity/internal/adapters/cache"
	"outsized-identity/internal/adapters/http/handlers"
	"outsized-identity/internal/adapters/http/middleware"
	"outsized-identity/internal/adapters/persistence/repositories"
	"outsized-identity/internal/adapters/provider"
	"outsized-identity/internal/config"
	"outsized-identity/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, rdb *redis.Client, logSyncService *services.LogSyncService, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	userRoleRepo := repositories.NewUserRoleRepository(db)

	// Identity provider client (created once, shared)
	supabase := provider.NewSupabaseClient(cfg)

	// Shared counter store adapters
	limiterStore := cache.NewRedisLimiterStore(rdb, cfg.RateLimit.Points, cfg.RateLimit.WindowSeconds)
	logBuffer := cache.NewRedisRequestLogBuffer(rdb)

	// Initialize services
	authService := services.NewAuthService(userRepo, userRoleRepo, supabase, cfg)
	userService := services.NewUserService(userRepo, userRoleRepo, supabase)
	rateLimitService := services.NewRateLimitService(limiterStore, cfg)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, rdb, userService, cfg)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, authService)
	logSyncHandler := handlers.NewLogSyncHandler(logSyncService)

	// Health check & root routes (not admission-controlled)
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// API v1 group: every request passes the admission controller first
	apiV1 := app.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(rateLimitService, logBuffer))

	// Auth routes
	auth := apiV1.Group("/auth")
	auth.Post("/signup", authHandler.SignUp)
	auth.Post("/signin", authHandler.SignIn)
	auth.Get("/verify-email", authHandler.VerifyEmail)
	auth.Post("/password-reset/request", authHandler.RequestPasswordReset)
	auth.Post("/password-reset", authHandler.ResetPassword)

	// User routes (authenticated)
	users := apiV1.Group("/users")
	users.Get("/me", middleware.AuthMiddleware(authService), userHandler.Me)
	users.Post("/", middleware.AuthMiddleware(authService), middleware.AdminOnly(), userHandler.CreateUser)
	users.Delete("/", middleware.AuthMiddleware(authService), middleware.AdminOnly(), userHandler.DeleteUser)

	// Admin routes
	admin := apiV1.Group("/admin", middleware.AuthMiddleware(authService), middleware.AdminOnly())
	admin.Post("/request-logs/sync", logSyncHandler.SyncNow)
}
