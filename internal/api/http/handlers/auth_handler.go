package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// AuthHandler serves registration, login and account endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Register(c.Context(), service.RegisterInput{
		Mobile:   req.Mobile,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		FCMToken: req.FCMToken,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"user": dto.UserFromDomain(result.User, result.Token)})
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.auth.Login(c.Context(), req.Mobile, req.Password, req.Role, req.FCMToken)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": dto.UserFromDomain(result.User, result.Token)})
}

// UpdatePassword POST /api/auth/password/update.
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	var req dto.PasswordUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.UpdatePassword(c.Context(), req.Mobile, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated successfully"})
}

// ListUsers GET /api/auth/all-users.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	users, err := h.auth.ListUsers(c.Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"totalCount": len(users),
		"users":      dto.UserListFromDomain(users),
	})
}
