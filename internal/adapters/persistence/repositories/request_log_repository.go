package repositories

import (
	"context"

	"outsized-identity/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// requestLogRepository implements RequestLogRepository interface
type requestLogRepository struct {
	db *gorm.DB
}

// NewRequestLogRepository creates a new request log repository
func NewRequestLogRepository(db *gorm.DB) RequestLogRepository {
	return &requestLogRepository{db: db}
}

// BulkCreate inserts a batch of request logs in a single statement
func (r *requestLogRepository) BulkCreate(ctx context.Context, logs []*models.RequestLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 500).Error
}

// CountByIP counts logged requests for an IP
func (r *requestLogRepository) CountByIP(ctx context.Context, ip string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RequestLog{}).
		Where("ip_address = ?", ip).
		Count(&count).Error
	return count, err
}
