package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// DevicesHandler serves the push-token registry endpoints.
type DevicesHandler struct {
	devices *service.DeviceService
}

// NewDevicesHandler constructs handler.
func NewDevicesHandler(deviceService *service.DeviceService) *DevicesHandler {
	return &DevicesHandler{devices: deviceService}
}

// SaveToken POST /api/fcm/save-fcm.
func (h *DevicesHandler) SaveToken(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	var req dto.SaveFCMRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.devices.SaveToken(c.Context(), principal.User.Mobile, req.Token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "FCM token updated successfully"})
}

// Subscribe POST /api/fcm/subscribe.
func (h *DevicesHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.TopicSubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.devices.Subscribe(c.Context(), req.Token, req.Topic); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Subscribed successfully"})
}
