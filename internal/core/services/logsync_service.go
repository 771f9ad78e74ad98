package services

import (
	"context"
	"log"
	"time"

	"outsized-identity/internal/adapters/persistence/models"
	"outsized-identity/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// LogSyncService periodically drains the buffered request logs into the
// relational store. Runs on a cron schedule; a manual sync is also
// exposed to admins for draining on demand.
type LogSyncService struct {
	buffer   RequestLogBuffer
	logRepo  repositories.RequestLogRepository
	schedule string
	cron     *cron.Cron
}

// NewLogSyncService creates a new log sync service
func NewLogSyncService(buffer RequestLogBuffer, logRepo repositories.RequestLogRepository, schedule string) *LogSyncService {
	return &LogSyncService{
		buffer:   buffer,
		logRepo:  logRepo,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start schedules the sync job
func (s *LogSyncService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		count, err := s.Sync(ctx)
		if err != nil {
			log.Printf("⚠️ Request log sync failed: %v", err)
			return
		}
		if count > 0 {
			log.Printf("✅ Synced %d request logs", count)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("🚀 LogSyncService started [schedule: %s]", s.schedule)
	return nil
}

// Stop stops the scheduled job
func (s *LogSyncService) Stop() {
	s.cron.Stop()
	log.Println("🛑 LogSyncService stopped")
}

// Sync drains the buffer and bulk-inserts the entries. Returns how many
// entries were written.
func (s *LogSyncService) Sync(ctx context.Context) (int, error) {
	entries, err := s.buffer.Drain(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	logs := make([]*models.RequestLog, 0, len(entries))
	for _, entry := range entries {
		record := &models.RequestLog{
			IPAddress: entry.IP,
			Path:      entry.Path,
			Method:    entry.Method,
			Timestamp: entry.Timestamp,
		}
		if entry.Extra != "" {
			extra := entry.Extra
			record.Extra = &extra
		}
		logs = append(logs, record)
	}

	if err := s.logRepo.BulkCreate(ctx, logs); err != nil {
		return 0, err
	}

	return len(logs), nil
}
