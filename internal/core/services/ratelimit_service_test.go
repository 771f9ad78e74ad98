package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"outsized-identity/internal/config"
	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/core/services"
	"outsized-identity/internal/testutil"
)

func limiterConfig(failClosed bool) *config.Config {
	return &config.Config{
		RateLimit: config.RateLimitConfig{
			Points:          100,
			WindowSeconds:   60,
			CooldownMinutes: 15,
			FailClosed:      failClosed,
		},
	}
}

func TestAdmitBlocklist(t *testing.T) {
	store := testutil.NewFakeLimiterStore(100)
	store.Blocklist["203.0.113.7"] = true
	svc := services.NewRateLimitService(store, limiterConfig(false))

	err := svc.Admit(context.Background(), "203.0.113.7")
	if !errors.Is(err, domain.ErrIPBlocked) {
		t.Errorf("expected ErrIPBlocked, got %v", err)
	}
}

// An IP on both lists is rejected: the block-list wins.
func TestAdmitBlocklistBeatsAllowlist(t *testing.T) {
	store := testutil.NewFakeLimiterStore(100)
	store.Blocklist["203.0.113.7"] = true
	store.Allowlist["203.0.113.7"] = true
	svc := services.NewRateLimitService(store, limiterConfig(false))

	err := svc.Admit(context.Background(), "203.0.113.7")
	if !errors.Is(err, domain.ErrIPBlocked) {
		t.Errorf("expected ErrIPBlocked, got %v", err)
	}
}

func TestAdmitAllowlistBypassesBudget(t *testing.T) {
	store := testutil.NewFakeLimiterStore(1)
	store.Allowlist["198.51.100.4"] = true
	svc := services.NewRateLimitService(store, limiterConfig(false))

	// Far more requests than the budget holds
	for i := 0; i < 10; i++ {
		if err := svc.Admit(context.Background(), "198.51.100.4"); err != nil {
			t.Fatalf("request %d: expected admission, got %v", i, err)
		}
	}
	if remaining, ok := store.Budget["198.51.100.4"]; ok {
		t.Errorf("allow-listed IP should never touch the budget, remaining=%d", remaining)
	}
}

func TestAdmitBudgetExhaustion(t *testing.T) {
	store := testutil.NewFakeLimiterStore(3)
	svc := services.NewRateLimitService(store, limiterConfig(false))
	ip := "192.0.2.10"

	for i := 0; i < 3; i++ {
		if err := svc.Admit(context.Background(), ip); err != nil {
			t.Fatalf("request %d: expected admission, got %v", i, err)
		}
	}

	err := svc.Admit(context.Background(), ip)
	if !errors.Is(err, domain.ErrTooManyRequests) {
		t.Fatalf("expected ErrTooManyRequests after exhaustion, got %v", err)
	}

	// Exhaustion places a cooldown
	until, ok := store.Cooldowns[ip]
	if !ok {
		t.Fatal("expected a cooldown to be placed on exhaustion")
	}
	if time.Until(until) < 14*time.Minute {
		t.Errorf("cooldown shorter than configured: %v", time.Until(until))
	}
}

// A cooling-down IP stays rejected even when the budget would admit it.
func TestAdmitCooldownOutlastsRefill(t *testing.T) {
	store := testutil.NewFakeLimiterStore(100)
	svc := services.NewRateLimitService(store, limiterConfig(false))
	ip := "192.0.2.11"
	store.Cooldowns[ip] = time.Now().Add(10 * time.Minute)

	err := svc.Admit(context.Background(), ip)
	if !errors.Is(err, domain.ErrTooManyRequests) {
		t.Fatalf("expected ErrTooManyRequests during cooldown, got %v", err)
	}
	if remaining := store.Budget[ip]; remaining != 0 {
		t.Errorf("cooldown check must not touch the budget, remaining=%d", remaining)
	}
}

func TestAdmitExpiredCooldown(t *testing.T) {
	store := testutil.NewFakeLimiterStore(100)
	svc := services.NewRateLimitService(store, limiterConfig(false))
	ip := "192.0.2.12"
	store.Cooldowns[ip] = time.Now().Add(-time.Minute)

	if err := svc.Admit(context.Background(), ip); err != nil {
		t.Errorf("expected admission after cooldown expiry, got %v", err)
	}
}

func TestAdmitStoreOutage(t *testing.T) {
	t.Run("fail open by default", func(t *testing.T) {
		store := testutil.NewFakeLimiterStore(100)
		store.Err = errors.New("connection refused")
		svc := services.NewRateLimitService(store, limiterConfig(false))

		if err := svc.Admit(context.Background(), "192.0.2.13"); err != nil {
			t.Errorf("fail-open should admit on store outage, got %v", err)
		}
	})

	t.Run("fail closed when configured", func(t *testing.T) {
		store := testutil.NewFakeLimiterStore(100)
		store.Err = errors.New("connection refused")
		svc := services.NewRateLimitService(store, limiterConfig(true))

		err := svc.Admit(context.Background(), "192.0.2.13")
		if !errors.Is(err, domain.ErrTooManyRequests) {
			t.Errorf("fail-closed should reject on store outage, got %v", err)
		}
	})
}
