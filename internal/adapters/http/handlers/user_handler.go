package handlers

import (
	"errors"
	"log"
	"strings"

	"outsized-identity/internal/core/domain"
	"outsized-identity/internal/core/services"
	"outsized-identity/internal/pkg/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

// CreateUserRequest represents admin user creation body
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate validates admin user creation input
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72), validation.By(passwordPolicy)),
		validation.Field(&r.Role, validation.In(domain.RoleAdmin, domain.RoleCustomer)),
	)
}

// DeleteUserRequest represents admin deactivation body
type DeleteUserRequest struct {
	Email string `json:"email"`
}

// Validate validates deactivation input
func (r DeleteUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// Me returns the authenticated caller's profile
func (h *UserHandler) Me(c *fiber.Ctx) error {
	uuid, ok := c.Locals("uuid").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.userService.FetchUser(c.Context(), uuid)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found or account deactivated")
		}
		log.Printf("❌ Fetch user failed: %v", err)
		return response.InternalServerError(c, "Failed to fetch user")
	}

	return response.Success(c, "User details fetched successfully", result)
}

// CreateUser handles admin user creation
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return response.BadRequest(c, err.Error())
	}

	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	role := req.Role
	if role == "" {
		role = domain.DefaultRole
	}

	input := &services.CreateUserInput{
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		Role:      role,
		CreatedBy: adminID,
	}

	result, err := h.userService.CreateUser(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			return response.Conflict(c, "User with this email already exists")
		case errors.Is(err, domain.ErrProvider):
			log.Printf("❌ Create user provider failure: %v", err)
			return response.BadGateway(c, "Identity provider error")
		default:
			log.Printf("❌ Create user failed: %v", err)
			return response.InternalServerError(c, "Failed to create user")
		}
	}

	return response.Created(c, "User created successfully", result)
}

// DeleteUser handles admin account deactivation (soft delete)
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	var req DeleteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return response.BadRequest(c, err.Error())
	}

	adminUUID, ok := c.Locals("uuid").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.authService.DeactivateUser(c.Context(), strings.TrimSpace(req.Email), adminUUID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found or account already deactivated")
		case errors.Is(err, domain.ErrProvider):
			log.Printf("❌ Deactivation provider failure: %v", err)
			return response.BadGateway(c, "Identity provider error")
		default:
			log.Printf("❌ Deactivation failed: %v", err)
			return response.InternalServerError(c, "Failed to delete user")
		}
	}

	return response.Success(c, "User account deleted successfully.", result)
}
