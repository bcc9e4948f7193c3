package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/service"
	"github.com/spec-kit/marketplace-service/internal/storage"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// UsersHandler serves profile updates for the authenticated user.
type UsersHandler struct {
	auth    *service.AuthService
	uploads *storage.LocalStorage
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, uploads *storage.LocalStorage) *UsersHandler {
	return &UsersHandler{auth: authService, uploads: uploads}
}

// UpdateProfile PUT /api/user/update-profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.UpdateName(c.Context(), principal.User.Mobile, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    dto.UserFromDomain(user, ""),
	})
}

// UpdateProfileImage PUT /api/user/update-profile-image (multipart: image).
func (h *UsersHandler) UpdateProfileImage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("no image file provided", nil)
	}
	imageURL, err := h.uploads.Save("avatars", "image", file)
	if err != nil {
		return apperrors.MapError(err)
	}

	user, err := h.auth.UpdateImage(c.Context(), principal.User.Mobile, imageURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Profile image updated",
		"user":    dto.UserFromDomain(user, ""),
	})
}
