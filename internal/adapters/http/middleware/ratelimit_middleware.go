package middleware

import (
	"errors"
	"log"
	"strings"
	"time"

	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/core/services"
	"outsized-identity/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ClientIP derives the caller identity for admission control: the first
// hop of X-Forwarded-For when a trusted proxy set it, else the transport
// source, else a shared "unknown" bucket. "unknown" cannot be blocklisted
// individually and shares one window globally.
func ClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}

// RateLimit creates admission control middleware. Every request passes
// the admission controller first; admitted requests are appended to the
// request log buffer.
func RateLimit(rateLimitService *services.RateLimitService, buffer services.RequestLogBuffer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := ClientIP(c)

		if err := rateLimitService.Admit(c.Context(), ip); err != nil {
			switch {
			case errors.Is(err, domain.ErrIPBlocked):
				return response.Forbidden(c, "Your IP is blocked")
			case errors.Is(err, domain.ErrTooManyRequests):
				return response.TooManyRequests(c, "Too Many Requests")
			default:
				return response.InternalServerError(c, "Admission check failed")
			}
		}

		// Buffer the admitted request; failures here never reject the request
		entry := services.RequestLogEntry{
			IP:        ip,
			Path:      c.Path(),
			Method:    c.Method(),
			Timestamp: time.Now(),
		}
		if err := buffer.Append(c.Context(), entry); err != nil {
			log.Printf("⚠️ Request log append failed for %s: %v", ip, err)
		}

		return c.Next()
	}
}
