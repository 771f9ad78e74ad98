package services

import (
	"context"
	"time"
)

// Note: AuthService implementation is in auth_service.go
// Note: UserService implementation is in user_service.go
// Note: RateLimitService implementation is in ratelimit_service.go

// ProviderUser is the provider's view of a credential
type ProviderUser struct {
	ID    string
	Email string
}

// ProviderSession is a provider-issued session pair
type ProviderSession struct {
	AccessToken  string
	RefreshToken string
	User         ProviderUser
}

// IdentityProvider is the external system of record for credential
// existence and password verification. Every call must be bounded by the
// caller's context; implementations never retry on their own.
type IdentityProvider interface {
	// SignUp creates a credential and triggers the verification email.
	SignUp(ctx context.Context, email, password string) (*ProviderUser, error)
	// SetSession establishes a session from an access/refresh token pair
	// and returns the user it belongs to.
	SetSession(ctx context.Context, accessToken, refreshToken string) (*ProviderSession, error)
	// UpdatePassword changes the credential password for the session's user.
	UpdatePassword(ctx context.Context, session *ProviderSession, newPassword string) (*ProviderUser, error)
	// DeleteUser removes the credential identified by the provider UUID.
	DeleteUser(ctx context.Context, uuid string) error
	// SendPasswordReset asks the provider to email a reset link.
	SendPasswordReset(ctx context.Context, email string) error
	// Ping verifies provider reachability (health checks).
	Ping(ctx context.Context) error
}

// LimiterStore is the shared counter store behind the admission
// controller. Consume must be atomic at the store level so concurrent
// callers cannot jointly exceed the budget.
type LimiterStore interface {
	IsBlocklisted(ctx context.Context, ip string) (bool, error)
	IsAllowlisted(ctx context.Context, ip string) (bool, error)
	InCooldown(ctx context.Context, ip string) (bool, error)
	// Consume takes one unit from the IP's budget in a single round
	// trip. Returns false when the budget is exhausted.
	Consume(ctx context.Context, ip string) (bool, error)
	PlaceCooldown(ctx context.Context, ip string, duration time.Duration) error
}

// RequestLogEntry is one admitted request, buffered per IP
type RequestLogEntry struct {
	IP        string    `json:"-"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Timestamp time.Time `json:"timestamp"`
	Extra     string    `json:"extra,omitempty"`
}

// RequestLogBuffer buffers request logs between the hot path and the
// relational store. Drain removes what it returns, so a crash mid-sync
// loses at most one batch.
type RequestLogBuffer interface {
	Append(ctx context.Context, entry RequestLogEntry) error
	Drain(ctx context.Context) ([]RequestLogEntry, error)
}
