package services

import (
	"context"
	"log"

	"outsized-identity/internal/config"
	"outsized-identity/internal/core/domain"
)

// RateLimitService is the admission controller: per-IP allow/block list
// checks plus a shared sliding-window budget. Every mutating request goes
// through Admit before any other work.
type RateLimitService struct {
	store LimiterStore
	cfg   *config.Config
}

// NewRateLimitService creates a new admission controller
func NewRateLimitService(store LimiterStore, cfg *config.Config) *RateLimitService {
	return &RateLimitService{
		store: store,
		cfg:   cfg,
	}
}

// Admit decides whether a request from the given IP proceeds.
// Precedence: block-list, then allow-list, then cooldown, then budget.
// An IP on both lists is rejected.
func (s *RateLimitService) Admit(ctx context.Context, ip string) error {
	// 1. Block-list is a hard stop, counter untouched
	blocked, err := s.store.IsBlocklisted(ctx, ip)
	if err != nil {
		return s.storeFailure("blocklist check", err)
	}
	if blocked {
		return domain.ErrIPBlocked
	}

	// 2. Allow-list bypasses the counter entirely
	allowed, err := s.store.IsAllowlisted(ctx, ip)
	if err != nil {
		return s.storeFailure("allowlist check", err)
	}
	if allowed {
		return nil
	}

	// 3. An exhausted IP serves its full cooldown regardless of refill
	cooling, err := s.store.InCooldown(ctx, ip)
	if err != nil {
		return s.storeFailure("cooldown check", err)
	}
	if cooling {
		return domain.ErrTooManyRequests
	}

	// 4. Consume one unit from the budget
	ok, err := s.store.Consume(ctx, ip)
	if err != nil {
		return s.storeFailure("budget consume", err)
	}
	if !ok {
		if err := s.store.PlaceCooldown(ctx, ip, s.cfg.RateLimit.CooldownDuration()); err != nil {
			log.Printf("⚠️ Rate limiter: failed to place cooldown for %s: %v", ip, err)
		}
		return domain.ErrTooManyRequests
	}

	return nil
}

// storeFailure applies the fail-open/fail-closed policy when the counter
// store itself errors. The store error is logged, never surfaced.
func (s *RateLimitService) storeFailure(op string, err error) error {
	log.Printf("⚠️ Rate limiter %s failed: %v", op, err)
	if s.cfg.RateLimit.FailClosed {
		return domain.ErrTooManyRequests
	}
	return nil
}
