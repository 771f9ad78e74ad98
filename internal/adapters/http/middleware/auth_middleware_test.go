package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"outsized-identity/internal/adapters/http/middleware"
	"outsized-identity/internal/config"
	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/core/services"
	"outsized-identity/internal/testutil"

	"github.com/gofiber/fiber/v2"
)

type authFixture struct {
	app      *fiber.App
	svc      *services.AuthService
	userRepo *testutil.FakeUserRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	userRepo, roleRepo := testutil.NewFakeUserRepository()
	provider := testutil.NewFakeProvider()
	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", TokenExpiryMins: 3},
	}
	svc := services.NewAuthService(userRepo, roleRepo, provider, cfg)

	app := fiber.New()
	app.Get("/protected", middleware.AuthMiddleware(svc), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"email": c.Locals("email"),
			"role":  c.Locals("role"),
		})
	})
	app.Get("/admin", middleware.AuthMiddleware(svc), middleware.AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return &authFixture{app: app, svc: svc, userRepo: userRepo}
}

// signIn registers a verified account and returns a fresh token for it.
func (f *authFixture) signIn(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.SignUp(ctx, &services.SignUpInput{Email: email, Password: "Secret123"}); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	user, err := f.userRepo.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if err := f.userRepo.SetVerified(ctx, user.ID); err != nil {
		t.Fatalf("SetVerified: %v", err)
	}
	resp, err := f.svc.SignIn(ctx, email, "Secret123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	return resp.Token
}

func (f *authFixture) request(t *testing.T, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("valid bearer token passes", func(t *testing.T) {
		f := newAuthFixture(t)
		token := f.signIn(t, "caller@example.com")

		resp := f.request(t, "/protected", "Bearer "+token)
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("missing header gets 401", func(t *testing.T) {
		f := newAuthFixture(t)
		resp := f.request(t, "/protected", "")
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("non-bearer scheme gets 401", func(t *testing.T) {
		f := newAuthFixture(t)
		resp := f.request(t, "/protected", "Basic dXNlcjpwYXNz")
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("garbage token gets 401", func(t *testing.T) {
		f := newAuthFixture(t)
		resp := f.request(t, "/protected", "Bearer not-a-token")
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("token outlives its account", func(t *testing.T) {
		f := newAuthFixture(t)
		token := f.signIn(t, "shortlived@example.com")
		if _, err := f.svc.DeactivateUser(context.Background(), "shortlived@example.com", "admin-uuid"); err != nil {
			t.Fatalf("DeactivateUser: %v", err)
		}

		resp := f.request(t, "/protected", "Bearer "+token)
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("deactivated account must be rejected, got %d", resp.StatusCode)
		}
	})
}

func TestAdminOnly(t *testing.T) {
	f := newAuthFixture(t)
	token := f.signIn(t, "customer@example.com")

	// Self-serve accounts carry the customer role
	resp := f.request(t, "/admin", "Bearer "+token)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403 for %s, got %d", domain.RoleCustomer, resp.StatusCode)
	}
}
