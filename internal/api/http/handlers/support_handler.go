package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/service"
	"github.com/spec-kit/marketplace-service/internal/storage"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// SupportHandler serves the support-query endpoints.
type SupportHandler struct {
	support *service.SupportService
	uploads *storage.LocalStorage
}

// NewSupportHandler constructs handler.
func NewSupportHandler(supportService *service.SupportService, uploads *storage.LocalStorage) *SupportHandler {
	return &SupportHandler{support: supportService, uploads: uploads}
}

// Create POST /api/support/create (multipart: optional photo + fields).
func (h *SupportHandler) Create(c *fiber.Ctx) error {
	var photoURL string
	if file, err := c.FormFile("photo"); err == nil {
		photoURL, err = h.uploads.Save("support", "photo", file)
		if err != nil {
			return apperrors.MapError(err)
		}
	}

	query, err := h.support.Create(c.Context(), service.SupportCreateInput{
		Mobile:      c.FormValue("mobile"),
		QueryType:   c.FormValue("queryType"),
		Description: c.FormValue("description"),
		PhotoURL:    photoURL,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Support query submitted",
		"query":   dto.SupportFromDomain(query),
	})
}

// List GET /api/support/all.
func (h *SupportHandler) List(c *fiber.Ctx) error {
	queries, err := h.support.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.SupportsFromDomain(queries))
}

// Resolve POST /api/support/resolve.
func (h *SupportHandler) Resolve(c *fiber.Ctx) error {
	var req dto.ResolveSupportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	query, err := h.support.Resolve(c.Context(), req.ID, req.Status, req.AdminReply)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Support query updated",
		"query":   dto.SupportFromDomain(query),
	})
}
