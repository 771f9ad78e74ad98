package handlers

import (
	"log"

	"outsized-identity/internal/core/services"
	"outsized-identity/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LogSyncHandler exposes the request log sync to admins, on top of the
// scheduled job
type LogSyncHandler struct {
	logSyncService *services.LogSyncService
}

// NewLogSyncHandler creates a new log sync handler
func NewLogSyncHandler(logSyncService *services.LogSyncService) *LogSyncHandler {
	return &LogSyncHandler{logSyncService: logSyncService}
}

// SyncNow drains buffered request logs into the database on demand
func (h *LogSyncHandler) SyncNow(c *fiber.Ctx) error {
	count, err := h.logSyncService.Sync(c.Context())
	if err != nil {
		log.Printf("❌ Manual request log sync failed: %v", err)
		return response.InternalServerError(c, "Failed to sync request logs")
	}

	return response.Success(c, "Synced logs from Redis to DB", fiber.Map{
		"syncedCount": count,
	})
}
