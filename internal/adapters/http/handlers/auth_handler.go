package handlers

import (
	"errors"
	"log"
	"strings"
	"unicode"

	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/core/services"
	"outsized-identity/internal/pkg/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// passwordPolicy requires at least one uppercase letter, one lowercase
// letter, and one digit. Length is checked separately.
func passwordPolicy(value interface{}) error {
	s, _ := value.(string)
	var hasUpper, hasLower, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("must contain at least one uppercase letter, one lowercase letter, and one number")
	}
	return nil
}

// SignUpRequest represents sign-up request body
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates sign-up input
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72), validation.By(passwordPolicy)),
	)
}

// SignInRequest represents sign-in request body
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates sign-in input
func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// PasswordResetRequest represents password reset request body
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// Validate validates password reset request input
func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ResetPasswordRequest represents password reset completion body
type ResetPasswordRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	NewPassword  string `json:"newPassword"`
}

// Validate validates password reset completion input
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AccessToken, validation.Required),
		validation.Field(&r.RefreshToken, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 72), validation.By(passwordPolicy)),
	)
}

// SignUp handles self-serve user registration
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return response.BadRequest(c, err.Error())
	}

	input := &services.SignUpInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}

	result, err := h.authService.SignUp(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			return response.Conflict(c, "User already exists. Please try SignIn")
		case errors.Is(err, domain.ErrProvider):
			log.Printf("❌ Sign-up provider failure: %v", err)
			return response.BadGateway(c, "Identity provider error")
		default:
			log.Printf("❌ Sign-up failed: %v", err)
			return response.InternalServerError(c, "Failed to sign up")
		}
	}

	return response.Created(c, "User signed up successfully. Verification Email Sent.", result)
}

// SignIn handles user authentication
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.authService.SignIn(c.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid email or password")
		case errors.Is(err, domain.ErrAccountNotReady):
			return response.Forbidden(c, "Account is not active or verified")
		default:
			log.Printf("❌ Sign-in failed: %v", err)
			return response.InternalServerError(c, "Failed to sign in")
		}
	}

	return response.Success(c, "User signed in successfully.", result)
}

// VerifyEmail handles the provider's email verification webhook. The
// session pair arrives in query parameters, sent by the verification page.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	accessToken := c.Query("access_token")
	refreshToken := c.Query("refresh_token")

	if accessToken == "" {
		return response.BadRequest(c, "Access token is required")
	}

	result, err := h.authService.VerifyEmail(c.Context(), accessToken, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSession):
			return response.Unauthorized(c, "Invalid or expired verification token")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found or account deactivated")
		case errors.Is(err, domain.ErrProvider):
			log.Printf("❌ Email verification provider failure: %v", err)
			return response.BadGateway(c, "Identity provider error")
		default:
			log.Printf("❌ Email verification failed: %v", err)
			return response.InternalServerError(c, "Failed to verify email")
		}
	}

	return response.Success(c, "Email verified successfully.", result)
}

// RequestPasswordReset handles password reset link requests
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return response.BadRequest(c, err.Error())
	}

	email := strings.TrimSpace(req.Email)
	if err := h.authService.RequestPasswordReset(c.Context(), email); err != nil {
		log.Printf("❌ Password reset request failed: %v", err)
		return response.BadGateway(c, "Failed to send reset password email")
	}

	return response.Success(c, "Password reset email sent successfully. Please check your email.", fiber.Map{
		"email": email,
	})
}

// ResetPassword handles password reset completion
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.authService.ResetPassword(c.Context(), req.AccessToken, req.RefreshToken, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSession):
			return response.Unauthorized(c, "Invalid or expired reset token")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found or account deactivated")
		case errors.Is(err, domain.ErrProvider):
			log.Printf("❌ Password reset provider failure: %v", err)
			return response.BadGateway(c, "Identity provider error")
		default:
			log.Printf("❌ Password reset failed: %v", err)
			return response.InternalServerError(c, "Failed to reset password")
		}
	}

	return response.Success(c, "Password reset successfully.", result)
}
