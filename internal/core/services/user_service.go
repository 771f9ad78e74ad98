package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"outsized-identity/internal/adapters/persistence/models"
	"outsized-identity/internal/adapters/persistence/repositories"
	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/pkg/password"

	"gorm.io/gorm"
)

// UserService handles user management outside the self-serve lifecycle:
// admin-created accounts and profile reads.
type UserService struct {
	userRepo     repositories.UserRepository
	userRoleRepo repositories.UserRoleRepository
	provider     IdentityProvider
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	userRoleRepo repositories.UserRoleRepository,
	provider IdentityProvider,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		userRoleRepo: userRoleRepo,
		provider:     provider,
	}
}

// CreateUserInput represents admin user creation input
type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	// CreatedBy is the local ID of the admin performing the creation
	CreatedBy uint `json:"-"`
}

// CreateUser creates a pre-verified account on behalf of an admin. Same
// provider-first ordering as self-serve sign-up, but the account skips
// email verification, carries the requested role, and no token is issued.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	// 1. Reject emails that already have a local account
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// 2. Create the provider credential
	providerUser, err := s.provider.SignUp(ctx, input.Email, input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	// 3. Hash the password for the local record
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	// 4. Create the local account, already verified
	user := &models.User{
		UUID:     providerUser.ID,
		Email:    input.Email,
		Password: hashedPassword,
		Verified: true,
		Active:   true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		log.Printf("⚠️ Local account create failed after provider sign-up (uuid=%s): %v", providerUser.ID, err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	// 5. Assign the requested role, recorded against the admin
	role := input.Role
	if !domain.IsKnownRole(role) {
		role = domain.DefaultRole
	}
	createdBy := input.CreatedBy
	userRole := &models.UserRole{
		UserID:     user.ID,
		RoleID:     domain.RoleID(role),
		AssignedBy: &createdBy,
		Active:     true,
	}
	if err := s.userRoleRepo.Create(ctx, userRole); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}
	user.UserRoles = append(user.UserRoles, *userRole)

	log.Printf("✅ User created by admin %d: %s (%s)", input.CreatedBy, user.Email, role)

	return user.ToResponse(), nil
}

// FetchUser returns the profile of an active, verified account
func (s *UserService) FetchUser(ctx context.Context, uuid string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetActiveByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}
	return user.ToResponse(), nil
}

// CheckProvider pings the identity provider (health checks)
func (s *UserService) CheckProvider(ctx context.Context) error {
	return s.provider.Ping(ctx)
}
