package repositories

import (
	"context"

	"outsized-identity/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUUID(ctx context.Context, uuid string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetActiveByUUID returns the user only when active and verified,
	// with role assignments preloaded.
	GetActiveByUUID(ctx context.Context, uuid string) (*models.User, error)
	// GetActiveByEmail returns the user only when active (and verified,
	// when requireVerified is set), with role assignments preloaded.
	GetActiveByEmail(ctx context.Context, email string, requireVerified bool) (*models.User, error)
	SetVerified(ctx context.Context, id uint) error
	SetPassword(ctx context.Context, id uint, hashedPassword string) error
	Deactivate(ctx context.Context, id uint) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUUID(ctx context.Context, uuid string) (bool, error)
}

// UserRoleRepository defines role assignment repository interface
type UserRoleRepository interface {
	Create(ctx context.Context, userRole *models.UserRole) error
	GetActiveByUserID(ctx context.Context, userID uint) (*models.UserRole, error)
}

// RequestLogRepository defines request log repository interface
type RequestLogRepository interface {
	BulkCreate(ctx context.Context, logs []*models.RequestLog) error
	CountByIP(ctx context.Context, ip string) (int64, error)
}
