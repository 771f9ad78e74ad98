package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"outsized-identity/internal/adapters/cache"
	"outsized-identity/internal/adapters/http/middleware"
	"outsized-identity/internal/adapters/http/routes"
	"outsized-identity/internal/adapters/persistence/models"
	"outsized-identity/internal/adapters/persistence/repositories"
	"outsized-identity/internal/config"
	"outsized-identity/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Connect to the shared counter store
	rdb, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed the role catalog
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Fatalf("❌ Failed to seed roles: %v", err)
	}

	// Start request log sync job
	logBuffer := cache.NewRedisRequestLogBuffer(rdb)
	logRepo := repositories.NewRequestLogRepository(db)
	logSyncService := services.NewLogSyncService(logBuffer, logRepo, cfg.LogSync.Schedule)
	if err := logSyncService.Start(); err != nil {
		log.Fatalf("❌ Failed to start log sync service: %v", err)
	}
	defer logSyncService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Outsized Identity API",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, redis and cfg for dependency injection)
	routes.Setup(app, db, rdb, logSyncService, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
