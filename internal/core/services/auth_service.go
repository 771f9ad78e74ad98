package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"outsized-identity/internal/adapters/persistence/models"
	"outsized-identity/internal/adapters/persistence/repositories"
	"outsized-identity/internal/config"
	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/pkg/jwt"
	"outsized-identity/internal/pkg/password"

	"gorm.io/gorm"
)

// AuthService is the identity lifecycle manager. It owns all writes to
// users and role assignments, and keeps the local store consistent with
// the identity provider by always calling the provider first: a failed
// provider call leaves local state untouched, a failed local write after
// provider success is the one inconsistency window we accept.
type AuthService struct {
	userRepo     repositories.UserRepository
	userRoleRepo repositories.UserRoleRepository
	provider     IdentityProvider
	cfg          *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	userRoleRepo repositories.UserRoleRepository,
	provider IdentityProvider,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		userRoleRepo: userRoleRepo,
		provider:     provider,
		cfg:          cfg,
	}
}

// SignUpInput represents sign-up input
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User  *models.UserResponse `json:"user"`
	Token string               `json:"token,omitempty"`
}

// AuthUser is the re-validated caller attached to authenticated requests.
// Role is resolved fresh from the current role assignment, never taken
// from the token's snapshot.
type AuthUser struct {
	ID    uint   `json:"id"`
	UUID  string `json:"uuid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// DeactivateResult represents the outcome of an account deactivation
type DeactivateResult struct {
	DeletedUserEmail string    `json:"deleted_user_email"`
	DeactivatedBy    string    `json:"deleted_by"`
	DeactivatedAt    time.Time `json:"deleted_at"`
}

// SignUp registers a new self-serve account. The provider credential is
// created first; the local record only exists once the provider accepted
// the email/password pair.
func (s *AuthService) SignUp(ctx context.Context, input *SignUpInput) (*AuthResponse, error) {
	// 1. Reject emails that already have a local account
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// 2. Create the provider credential (also triggers the verification email)
	providerUser, err := s.provider.SignUp(ctx, input.Email, input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	// 3. Hash the password for the local record
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	// 4. A local account already linked to this provider identity means a
	// previous sign-up; never silently reuse it
	exists, err = s.userRepo.ExistsByUUID(ctx, providerUser.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	// 5. Create the local account (unverified until the email webhook fires)
	user := &models.User{
		UUID:     providerUser.ID,
		Email:    input.Email,
		Password: hashedPassword,
		Verified: false,
		Active:   true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// The provider credential is now orphaned; surfaced for manual
		// reconciliation, not compensated.
		log.Printf("⚠️ Local account create failed after provider sign-up (uuid=%s): %v", providerUser.ID, err)
		if isDuplicateErr(err) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	// 6. Assign the default role, self-assigned
	userRole := &models.UserRole{
		UserID:     user.ID,
		RoleID:     domain.RoleIDCustomer,
		AssignedBy: &user.ID,
		Active:     true,
	}
	if err := s.userRoleRepo.Create(ctx, userRole); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}
	user.UserRoles = append(user.UserRoles, *userRole)

	// 7. Issue a token carrying the resolved role
	token, err := jwt.GenerateToken(user.UUID, domain.RoleCustomer, s.cfg.JWT.Secret, s.cfg.JWT.TokenExpiryMins)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	log.Printf("✅ User signed up: %s", user.Email)

	return &AuthResponse{
		User:  user.ToResponse(),
		Token: token,
	}, nil
}

// SignIn authenticates a user and issues a token. Unknown email and wrong
// password return the same error so callers cannot enumerate accounts.
func (s *AuthService) SignIn(ctx context.Context, email, plainPassword string) (*AuthResponse, error) {
	// 1. Find user with role assignments
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	// 2. Verify password
	if !password.Verify(plainPassword, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Credentials are right but the account is not usable yet
	if !user.Active || !user.Verified {
		return nil, domain.ErrAccountNotReady
	}

	// 4. Resolve role fresh and issue a token
	role := user.RoleName()
	token, err := jwt.GenerateToken(user.UUID, role, s.cfg.JWT.Secret, s.cfg.JWT.TokenExpiryMins)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	log.Printf("✅ User signed in: %s", user.Email)

	return &AuthResponse{
		User:  user.ToResponse(),
		Token: token,
	}, nil
}

// VerifyEmail completes the provider's email verification webhook. The
// session pair proves the caller owns the address; the email inside the
// access token tells us which local account to flip.
func (s *AuthService) VerifyEmail(ctx context.Context, accessToken, refreshToken string) (*models.UserResponse, error) {
	// 1. Extract the email claim (trust comes from step 2, not this decode)
	email, err := jwt.DecodeEmail(accessToken)
	if err != nil {
		return nil, domain.ErrInvalidSession
	}

	// 2. Have the provider establish the session
	if _, err := s.provider.SetSession(ctx, accessToken, refreshToken); err != nil {
		if errors.Is(err, domain.ErrInvalidSession) {
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	// 3. Find the active local account (verification may be repeated; an
	// already-verified account just flips true again)
	user, err := s.userRepo.GetActiveByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	// 4. Flip verified
	if err := s.userRepo.SetVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}
	user.Verified = true

	log.Printf("✅ Email verified: %s", user.Email)
	return user.ToResponse(), nil
}

// RequestPasswordReset asks the provider to deliver a reset link. No local
// state changes; the link leads the user to ResetPassword.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	log.Printf("✅ Password reset email requested: %s", email)
	return nil
}

// ResetPassword completes a password reset: provider session established,
// provider password updated, then the local hash is brought in line.
func (s *AuthService) ResetPassword(ctx context.Context, accessToken, refreshToken, newPassword string) (*models.UserResponse, error) {
	// 1. Establish the provider session from the reset link tokens
	session, err := s.provider.SetSession(ctx, accessToken, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSession) {
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	// 2. Update the credential password at the provider
	updated, err := s.provider.UpdatePassword(ctx, session, newPassword)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSession) {
			return nil, domain.ErrInvalidSession
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	// 3. Find the local account. A miss here is the known inconsistency
	// window: the provider password already changed.
	user, err := s.userRepo.GetActiveByEmail(ctx, updated.Email, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	// 4. Bring the local hash in line
	hashedPassword, err := password.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}
	if err := s.userRepo.SetPassword(ctx, user.ID, hashedPassword); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	log.Printf("✅ Password reset completed: %s", user.Email)
	return user.ToResponse(), nil
}

// DeactivateUser soft deletes an account (admin only). The provider
// credential is deleted first; local state stays untouched unless that
// succeeds, so a failed provider call can simply be retried. Repeating a
// successful deactivation returns ErrUserNotFound, never a second delete.
func (s *AuthService) DeactivateUser(ctx context.Context, email, deactivatedBy string) (*DeactivateResult, error) {
	// 1. Only an active, verified account can be deactivated
	user, err := s.userRepo.GetActiveByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	// 2. Delete the provider credential
	if err := s.provider.DeleteUser(ctx, user.UUID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}

	// 3. Soft delete locally (row retained)
	if err := s.userRepo.Deactivate(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	log.Printf("✅ User deactivated: %s (by %s)", user.Email, deactivatedBy)

	return &DeactivateResult{
		DeletedUserEmail: user.Email,
		DeactivatedBy:    deactivatedBy,
		DeactivatedAt:    time.Now(),
	}, nil
}

// ValidateToken verifies a bearer token and re-validates the account
// behind it. Signature and expiry alone are not authorization: a token
// for a since-deactivated account is rejected, and the role comes from
// the current role assignment, not the token.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*AuthUser, error) {
	// 1. Verify signature, expiry, and payload shape
	claims, err := jwt.ValidateToken(token, s.cfg.JWT.Secret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, domain.ErrTokenMalformed
		default:
			return nil, domain.ErrTokenInvalid
		}
	}

	// 2. Re-check the account on every use so deactivation takes effect
	// immediately even for outstanding tokens
	user, err := s.userRepo.GetActiveByUUID(ctx, claims.UUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInternalServer, err)
	}

	// 3. Resolve the role fresh
	return &AuthUser{
		ID:    user.ID,
		UUID:  user.UUID,
		Email: user.Email,
		Role:  user.RoleName(),
	}, nil
}

// isDuplicateErr reports whether a store error is a uniqueness violation
func isDuplicateErr(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
