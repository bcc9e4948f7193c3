package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// NotificationsHandler serves the admin notification console.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notificationService}
}

// Send POST /api/notification/send.
func (h *NotificationsHandler) Send(c *fiber.Ctx) error {
	var req dto.SendNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.notifications.Send(c.Context(), req.Type, req.Target, req.Title, req.Body); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Notification sent"})
}

// History GET /api/notification/history?limit=.
func (h *NotificationsHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	logs, err := h.notifications.History(c.Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.NotificationLogsFromDomain(logs))
}
