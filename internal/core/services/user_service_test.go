package services_test

import (
	"context"
	"errors"
	"testing"

	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/core/services"
	"outsized-identity/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("admin-created account is pre-verified", func(t *testing.T) {
		userRepo, roleRepo := testutil.NewFakeUserRepository()
		provider := testutil.NewFakeProvider()
		svc := services.NewUserService(userRepo, roleRepo, provider)

		resp, err := svc.CreateUser(context.Background(), &services.CreateUserInput{
			Email:     "ops@example.com",
			Password:  "Secret123",
			Role:      domain.RoleAdmin,
			CreatedBy: 7,
		})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if !resp.Verified {
			t.Error("admin-created account must skip email verification")
		}
		if resp.Role != domain.RoleAdmin {
			t.Errorf("expected ADMIN role, got %q", resp.Role)
		}

		assignment, err := roleRepo.GetActiveByUserID(context.Background(), 1)
		if err != nil {
			t.Fatalf("role assignment missing: %v", err)
		}
		if assignment.AssignedBy == nil || *assignment.AssignedBy != 7 {
			t.Error("assignment must record the creating admin")
		}
	})

	t.Run("unknown role downgrades to the default", func(t *testing.T) {
		userRepo, roleRepo := testutil.NewFakeUserRepository()
		provider := testutil.NewFakeProvider()
		svc := services.NewUserService(userRepo, roleRepo, provider)

		resp, err := svc.CreateUser(context.Background(), &services.CreateUserInput{
			Email:     "typo@example.com",
			Password:  "Secret123",
			Role:      "SUPERUSER",
			CreatedBy: 7,
		})
		if err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
		if resp.Role != domain.DefaultRole {
			t.Errorf("expected default role, got %q", resp.Role)
		}
	})

	t.Run("duplicate email rejected before the provider", func(t *testing.T) {
		userRepo, roleRepo := testutil.NewFakeUserRepository()
		provider := testutil.NewFakeProvider()
		svc := services.NewUserService(userRepo, roleRepo, provider)
		input := &services.CreateUserInput{
			Email:     "dup@example.com",
			Password:  "Secret123",
			Role:      domain.RoleCustomer,
			CreatedBy: 7,
		}

		if _, err := svc.CreateUser(context.Background(), input); err != nil {
			t.Fatalf("first CreateUser: %v", err)
		}
		calls := provider.SignUpCallCount

		_, err := svc.CreateUser(context.Background(), input)
		if !errors.Is(err, domain.ErrUserAlreadyExists) {
			t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
		}
		if provider.SignUpCallCount != calls {
			t.Error("duplicate creation must not reach the provider")
		}
	})
}

func TestFetchUser(t *testing.T) {
	userRepo, roleRepo := testutil.NewFakeUserRepository()
	provider := testutil.NewFakeProvider()
	svc := services.NewUserService(userRepo, roleRepo, provider)

	resp, err := svc.CreateUser(context.Background(), &services.CreateUserInput{
		Email:     "profile@example.com",
		Password:  "Secret123",
		Role:      domain.RoleCustomer,
		CreatedBy: 7,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	t.Run("active account resolves", func(t *testing.T) {
		profile, err := svc.FetchUser(context.Background(), resp.ID)
		if err != nil {
			t.Fatalf("FetchUser: %v", err)
		}
		if profile.Email != "profile@example.com" {
			t.Errorf("expected profile@example.com, got %q", profile.Email)
		}
	})

	t.Run("unknown uuid", func(t *testing.T) {
		_, err := svc.FetchUser(context.Background(), "00000000-0000-0000-0000-000000000000")
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("deactivated account is gone", func(t *testing.T) {
		user, err := userRepo.GetByUUID(context.Background(), resp.ID)
		if err != nil {
			t.Fatalf("GetByUUID: %v", err)
		}
		if err := userRepo.Deactivate(context.Background(), user.ID); err != nil {
			t.Fatalf("Deactivate: %v", err)
		}

		_, err = svc.FetchUser(context.Background(), resp.ID)
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}
