package repositories

import (
	"context"

	"outsized-identity/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userRoleRepository implements UserRoleRepository interface
type userRoleRepository struct {
	db *gorm.DB
}

// NewUserRoleRepository creates a new role assignment repository
func NewUserRoleRepository(db *gorm.DB) UserRoleRepository {
	return &userRoleRepository{db: db}
}

// Create creates a new role assignment. The unique (user_id, role_id)
// index rejects duplicates at the store level.
func (r *userRoleRepository) Create(ctx context.Context, userRole *models.UserRole) error {
	return r.db.WithContext(ctx).Create(userRole).Error
}

// GetActiveByUserID gets a user's active role assignment
func (r *userRoleRepository) GetActiveByUserID(ctx context.Context, userID uint) (*models.UserRole, error) {
	var userRole models.UserRole
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		First(&userRole).Error
	if err != nil {
		return nil, err
	}
	return &userRole, nil
}
