package repositories

import (
	"context"

	"outsized-identity/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUUID gets a user by provider UUID
func (r *userRepository) GetByUUID(ctx context.Context, uuid string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("UserRoles").Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetActiveByUUID gets an active, verified user by provider UUID
func (r *userRepository) GetActiveByUUID(ctx context.Context, uuid string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("UserRoles").
		Where("uuid = ? AND active = ? AND verified = ?", uuid, true, true).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetActiveByEmail gets an active user by email
func (r *userRepository) GetActiveByEmail(ctx context.Context, email string, requireVerified bool) (*models.User, error) {
	var user models.User
	query := r.db.WithContext(ctx).Preload("UserRoles").
		Where("email = ? AND active = ?", email, true)
	if requireVerified {
		query = query.Where("verified = ?", true)
	}
	err := query.First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetVerified marks a user's email as verified
func (r *userRepository) SetVerified(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("verified", true).Error
}

// SetPassword updates a user's password hash
func (r *userRepository) SetPassword(ctx context.Context, id uint, hashedPassword string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("password", hashedPassword).Error
}

// Deactivate soft deletes a user (row retained, active flipped)
func (r *userRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("active", false).Error
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ExistsByUUID checks if provider UUID exists
func (r *userRepository) ExistsByUUID(ctx context.Context, uuid string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("uuid = ?", uuid).Count(&count).Error
	return count > 0, err
}
