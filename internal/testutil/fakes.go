// Package testutil provides in-memory fakes for the repository, provider
// and counter store interfaces, so service and handler tests run without
// MySQL, Redis, or a live identity provider.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outsized-identity/internal/adapters/persistence/models"
	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/core/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FakeUserRepository is an in-memory UserRepository
type FakeUserRepository struct {
	Users  []*models.User
	Roles  *FakeUserRoleRepository
	FailDB bool
	nextID uint
}

// NewFakeUserRepository creates a fake user repository wired to a fake
// role assignment repository (role preloads read from it).
func NewFakeUserRepository() (*FakeUserRepository, *FakeUserRoleRepository) {
	roles := &FakeUserRoleRepository{}
	return &FakeUserRepository{Roles: roles}, roles
}

var errFakeDB = errors.New("fake store failure")

func (r *FakeUserRepository) Create(ctx context.Context, user *models.User) error {
	if r.FailDB {
		return errFakeDB
	}
	for _, u := range r.Users {
		if u.Email == user.Email || u.UUID == user.UUID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.Users = append(r.Users, user)
	return nil
}

func (r *FakeUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	if r.FailDB {
		return nil, errFakeDB
	}
	for _, u := range r.Users {
		if match(u) {
			copied := *u
			copied.UserRoles = r.Roles.rolesFor(u.ID)
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *FakeUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *FakeUserRepository) GetByUUID(ctx context.Context, uid string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.UUID == uid })
}

func (r *FakeUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *FakeUserRepository) GetActiveByUUID(ctx context.Context, uid string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.UUID == uid && u.Active && u.Verified
	})
}

func (r *FakeUserRepository) GetActiveByEmail(ctx context.Context, email string, requireVerified bool) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		if u.Email != email || !u.Active {
			return false
		}
		return !requireVerified || u.Verified
	})
}

func (r *FakeUserRepository) update(id uint, apply func(*models.User)) error {
	if r.FailDB {
		return errFakeDB
	}
	for _, u := range r.Users {
		if u.ID == id {
			apply(u)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *FakeUserRepository) SetVerified(ctx context.Context, id uint) error {
	return r.update(id, func(u *models.User) { u.Verified = true })
}

func (r *FakeUserRepository) SetPassword(ctx context.Context, id uint, hashedPassword string) error {
	return r.update(id, func(u *models.User) { u.Password = hashedPassword })
}

func (r *FakeUserRepository) Deactivate(ctx context.Context, id uint) error {
	return r.update(id, func(u *models.User) { u.Active = false })
}

func (r *FakeUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.FailDB {
		return false, errFakeDB
	}
	for _, u := range r.Users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *FakeUserRepository) ExistsByUUID(ctx context.Context, uid string) (bool, error) {
	if r.FailDB {
		return false, errFakeDB
	}
	for _, u := range r.Users {
		if u.UUID == uid {
			return true, nil
		}
	}
	return false, nil
}

// FakeUserRoleRepository is an in-memory UserRoleRepository
type FakeUserRoleRepository struct {
	Assignments []*models.UserRole
	nextID      uint
}

func (r *FakeUserRoleRepository) Create(ctx context.Context, userRole *models.UserRole) error {
	for _, ur := range r.Assignments {
		if ur.UserID == userRole.UserID && ur.RoleID == userRole.RoleID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	userRole.ID = r.nextID
	r.Assignments = append(r.Assignments, userRole)
	return nil
}

func (r *FakeUserRoleRepository) GetActiveByUserID(ctx context.Context, userID uint) (*models.UserRole, error) {
	for _, ur := range r.Assignments {
		if ur.UserID == userID && ur.Active {
			return ur, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *FakeUserRoleRepository) rolesFor(userID uint) []models.UserRole {
	var out []models.UserRole
	for _, ur := range r.Assignments {
		if ur.UserID == userID {
			out = append(out, *ur)
		}
	}
	return out
}

// FakeProvider is an in-memory services.IdentityProvider. Sessions map
// access tokens to the credential they belong to.
type FakeProvider struct {
	Credentials map[string]string // uuid -> email
	Sessions    map[string]string // access token -> uuid

	FailSignUp        bool
	FailDelete        bool
	FailReset         bool
	FailUpdate        bool
	DeleteCalls       []string
	ResetEmails       []string
	lastUUID          string
	SignUpCallCount   int
	SessionsValidated int
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		Credentials: map[string]string{},
		Sessions:    map[string]string{},
	}
}

var errFakeProvider = errors.New("fake provider failure")

func (p *FakeProvider) SignUp(ctx context.Context, email, password string) (*services.ProviderUser, error) {
	p.SignUpCallCount++
	if p.FailSignUp {
		return nil, errFakeProvider
	}
	id := uuid.New().String()
	p.Credentials[id] = email
	p.lastUUID = id
	return &services.ProviderUser{ID: id, Email: email}, nil
}

// LastUUID returns the credential ID minted by the most recent SignUp
func (p *FakeProvider) LastUUID() string {
	return p.lastUUID
}

// GrantSession registers a valid access token for a credential
func (p *FakeProvider) GrantSession(accessToken, uid string) {
	p.Sessions[accessToken] = uid
}

func (p *FakeProvider) SetSession(ctx context.Context, accessToken, refreshToken string) (*services.ProviderSession, error) {
	uid, ok := p.Sessions[accessToken]
	if !ok {
		return nil, fmt.Errorf("%w: access token rejected", domain.ErrInvalidSession)
	}
	p.SessionsValidated++
	return &services.ProviderSession{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         services.ProviderUser{ID: uid, Email: p.Credentials[uid]},
	}, nil
}

func (p *FakeProvider) UpdatePassword(ctx context.Context, session *services.ProviderSession, newPassword string) (*services.ProviderUser, error) {
	if p.FailUpdate {
		return nil, errFakeProvider
	}
	return &session.User, nil
}

func (p *FakeProvider) DeleteUser(ctx context.Context, uid string) error {
	p.DeleteCalls = append(p.DeleteCalls, uid)
	if p.FailDelete {
		return errFakeProvider
	}
	delete(p.Credentials, uid)
	return nil
}

func (p *FakeProvider) SendPasswordReset(ctx context.Context, email string) error {
	if p.FailReset {
		return errFakeProvider
	}
	p.ResetEmails = append(p.ResetEmails, email)
	return nil
}

func (p *FakeProvider) Ping(ctx context.Context) error {
	return nil
}

// FakeLimiterStore is an in-memory services.LimiterStore with a simple
// decrementing budget (no continuous refill; enough to exercise the
// admission policy).
type FakeLimiterStore struct {
	Blocklist map[string]bool
	Allowlist map[string]bool
	Budget    map[string]int
	Cooldowns map[string]time.Time
	Capacity  int

	// Err simulates a counter store outage on every call
	Err error
}

func NewFakeLimiterStore(capacity int) *FakeLimiterStore {
	return &FakeLimiterStore{
		Blocklist: map[string]bool{},
		Allowlist: map[string]bool{},
		Budget:    map[string]int{},
		Cooldowns: map[string]time.Time{},
		Capacity:  capacity,
	}
}

func (s *FakeLimiterStore) IsBlocklisted(ctx context.Context, ip string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	return s.Blocklist[ip], nil
}

func (s *FakeLimiterStore) IsAllowlisted(ctx context.Context, ip string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	return s.Allowlist[ip], nil
}

func (s *FakeLimiterStore) InCooldown(ctx context.Context, ip string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	until, ok := s.Cooldowns[ip]
	return ok && time.Now().Before(until), nil
}

func (s *FakeLimiterStore) Consume(ctx context.Context, ip string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	remaining, ok := s.Budget[ip]
	if !ok {
		remaining = s.Capacity
	}
	if remaining <= 0 {
		return false, nil
	}
	s.Budget[ip] = remaining - 1
	return true, nil
}

func (s *FakeLimiterStore) PlaceCooldown(ctx context.Context, ip string, duration time.Duration) error {
	if s.Err != nil {
		return s.Err
	}
	s.Cooldowns[ip] = time.Now().Add(duration)
	return nil
}

// FakeLogBuffer is an in-memory services.RequestLogBuffer
type FakeLogBuffer struct {
	Entries []services.RequestLogEntry
	Err     error
}

func (b *FakeLogBuffer) Append(ctx context.Context, entry services.RequestLogEntry) error {
	if b.Err != nil {
		return b.Err
	}
	b.Entries = append(b.Entries, entry)
	return nil
}

func (b *FakeLogBuffer) Drain(ctx context.Context) ([]services.RequestLogEntry, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	entries := b.Entries
	b.Entries = nil
	return entries, nil
}

// FakeRequestLogRepository is an in-memory RequestLogRepository
type FakeRequestLogRepository struct {
	Logs []*models.RequestLog
}

func (r *FakeRequestLogRepository) BulkCreate(ctx context.Context, logs []*models.RequestLog) error {
	r.Logs = append(r.Logs, logs...)
	return nil
}

func (r *FakeRequestLogRepository) CountByIP(ctx context.Context, ip string) (int64, error) {
	var count int64
	for _, l := range r.Logs {
		if l.IPAddress == ip {
			count++
		}
	}
	return count, nil
}
