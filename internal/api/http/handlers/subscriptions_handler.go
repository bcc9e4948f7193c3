package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// SubscriptionsHandler serves the browser-push registry endpoints.
type SubscriptionsHandler struct {
	subs *service.SubscriptionService
}

// NewSubscriptionsHandler constructs handler.
func NewSubscriptionsHandler(subService *service.SubscriptionService) *SubscriptionsHandler {
	return &SubscriptionsHandler{subs: subService}
}

// Subscribe POST /api/admin/subscribe.
func (h *SubscriptionsHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if _, err := h.subs.Subscribe(c.Context(), req.Endpoint, req.Keys.P256dh, req.Keys.Auth); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "Subscribed successfully"})
}

// List GET /api/admin/subscriptions.
func (h *SubscriptionsHandler) List(c *fiber.Ctx) error {
	subs, err := h.subs.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.SubscriptionsFromDomain(subs))
}
