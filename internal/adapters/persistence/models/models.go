package models

import (
	"time"

	"outsized-identity/internal/core/domain"

	"gorm.io/gorm"
)

// User represents the outsized_users table. The UUID column holds the
// identity-provider credential ID and links the local record to the
// provider's. Rows are never physically removed; deactivation flips
// Active to false.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UUID      string     `gorm:"uniqueIndex;size:255;not null" json:"uuid"`
	Email     string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string     `gorm:"size:100" json:"name,omitempty"`
	Password  string     `gorm:"size:255;not null" json:"-"`
	Verified  bool       `gorm:"not null;default:false" json:"verified"`
	Active    bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time  `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
	UserRoles []UserRole `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "outsized_users"
}

// RoleName resolves the user's role from its first active role assignment,
// falling back to the default role when none exists.
func (u *User) RoleName() string {
	for _, ur := range u.UserRoles {
		if ur.Active {
			return domain.RoleName(ur.RoleID)
		}
	}
	return domain.DefaultRole
}

// UserResponse DTO
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse exposes the provider UUID as the public ID; the numeric
// primary key stays internal.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.UUID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.RoleName(),
		Verified:  u.Verified,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// Role represents the outsized_roles table (small fixed catalog)
type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Role) TableName() string {
	return "outsized_roles"
}

// UserRole represents the outsized_user_roles table. The (user, role) pair
// is unique; AssignedBy records who performed the assignment (the user
// itself on self-serve sign-up, an admin otherwise).
type UserRole struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"column:user_id;uniqueIndex:idx_user_role;not null" json:"user_id"`
	RoleID     uint      `gorm:"column:role_id;uniqueIndex:idx_user_role;index;not null" json:"role_id"`
	AssignedBy *uint     `gorm:"column:assigned_by;index" json:"assigned_by,omitempty"`
	Active     bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	Role       Role      `gorm:"foreignKey:RoleID" json:"-"`
}

func (UserRole) TableName() string {
	return "outsized_user_roles"
}

// RequestLog represents the outsized_request_logs table. Rows are written
// in bulk by the log sync job draining the Redis buffer.
type RequestLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IPAddress string    `gorm:"column:ip_address;size:45;not null" json:"ip_address"`
	Path      string    `gorm:"type:text;not null" json:"path"`
	Method    string    `gorm:"size:10;not null" json:"method"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	Extra     *string   `gorm:"type:json" json:"extra,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (RequestLog) TableName() string {
	return "outsized_request_logs"
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Role{},
		&UserRole{},
		&RequestLog{},
	)
}
