package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"outsized-identity/internal/adapters/http/middleware"
	"outsized-identity/internal/config"
	"outsized-identity/internal/core/services"
	"outsized-identity/internal/testutil"

	"github.com/gofiber/fiber/v2"
)

func newRateLimitedApp(t *testing.T, store *testutil.FakeLimiterStore, buffer *testutil.FakeLogBuffer) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{
			Points:          100,
			WindowSeconds:   60,
			CooldownMinutes: 15,
		},
	}
	svc := services.NewRateLimitService(store, cfg)

	app := fiber.New()
	app.Use(middleware.RateLimit(svc, buffer))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	return app
}

func get(t *testing.T, app *fiber.App, forwardedFor string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("admitted request is buffered and passed through", func(t *testing.T) {
		store := testutil.NewFakeLimiterStore(100)
		buffer := &testutil.FakeLogBuffer{}
		app := newRateLimitedApp(t, store, buffer)

		resp := get(t, app, "203.0.113.9")
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if len(buffer.Entries) != 1 {
			t.Fatalf("expected 1 buffered entry, got %d", len(buffer.Entries))
		}
		entry := buffer.Entries[0]
		if entry.IP != "203.0.113.9" || entry.Path != "/ping" || entry.Method != "GET" {
			t.Errorf("unexpected entry: %+v", entry)
		}
	})

	t.Run("block-listed IP gets 403", func(t *testing.T) {
		store := testutil.NewFakeLimiterStore(100)
		store.Blocklist["203.0.113.9"] = true
		buffer := &testutil.FakeLogBuffer{}
		app := newRateLimitedApp(t, store, buffer)

		resp := get(t, app, "203.0.113.9")
		if resp.StatusCode != fiber.StatusForbidden {
			t.Errorf("expected 403, got %d", resp.StatusCode)
		}
		if len(buffer.Entries) != 0 {
			t.Error("rejected requests must not be buffered")
		}
	})

	t.Run("exhausted budget gets 429", func(t *testing.T) {
		store := testutil.NewFakeLimiterStore(2)
		buffer := &testutil.FakeLogBuffer{}
		app := newRateLimitedApp(t, store, buffer)

		for i := 0; i < 2; i++ {
			if resp := get(t, app, "203.0.113.10"); resp.StatusCode != fiber.StatusOK {
				t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
			}
		}
		resp := get(t, app, "203.0.113.10")
		if resp.StatusCode != fiber.StatusTooManyRequests {
			t.Errorf("expected 429, got %d", resp.StatusCode)
		}
	})

	t.Run("buffer failure never rejects the request", func(t *testing.T) {
		store := testutil.NewFakeLimiterStore(100)
		buffer := &testutil.FakeLogBuffer{Err: http.ErrHandlerTimeout}
		app := newRateLimitedApp(t, store, buffer)

		resp := get(t, app, "203.0.113.11")
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("expected 200 despite buffer failure, got %d", resp.StatusCode)
		}
	})
}

func TestClientIP(t *testing.T) {
	app := fiber.New()
	app.Get("/ip", func(c *fiber.Ctx) error {
		return c.SendString(middleware.ClientIP(c))
	})

	cases := []struct {
		name         string
		forwardedFor string
		expected     string
	}{
		{"single forwarded hop", "198.51.100.7", "198.51.100.7"},
		{"first hop of a chain", "198.51.100.7, 10.0.0.1, 10.0.0.2", "198.51.100.7"},
		{"chain with spaces", " 198.51.100.7 ,10.0.0.1", "198.51.100.7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ip", nil)
			req.Header.Set("X-Forwarded-For", tc.forwardedFor)
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			body := make([]byte, 64)
			n, _ := resp.Body.Read(body)
			if got := string(body[:n]); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}

	t.Run("falls back to the transport source", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ip", nil)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		body := make([]byte, 64)
		n, _ := resp.Body.Read(body)
		if got := string(body[:n]); got == "" || got == "unknown" {
			t.Errorf("expected the transport source IP, got %q", got)
		}
	})
}
