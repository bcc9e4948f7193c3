package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/dto"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/service"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// TokensHandler serves the pickup-token endpoints.
type TokensHandler struct {
	tokens *service.TokenService
}

// NewTokensHandler constructs handler.
func NewTokensHandler(tokenService *service.TokenService) *TokensHandler {
	return &TokensHandler{tokens: tokenService}
}

// Create POST /api/token/create.
func (h *TokensHandler) Create(c *fiber.Ctx) error {
	var req dto.TokenCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	token, err := h.tokens.RequestToken(c.Context(), service.TokenRequestInput{
		MobileNumber: req.MobileNumber,
		OrderNumber:  req.OrderNumber,
		OrderCode:    req.OrderCode,
		DeviceToken:  req.FCMToken,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token.TokenCode, "message": "success"})
}

// GetActive GET /api/token/:mobile.
func (h *TokensHandler) GetActive(c *fiber.Ctx) error {
	token, err := h.tokens.GetActive(c.Context(), c.Params("mobile"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token.TokenCode, "message": "success"})
}

// ListByMobile GET /api/token/list/:mobile.
func (h *TokensHandler) ListByMobile(c *fiber.Ctx) error {
	tokens, err := h.tokens.ListByMobile(c.Context(), c.Params("mobile"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TokensFromDomain(tokens))
}

// ListAll GET /api/token/all?page=&limit=&search=.
func (h *TokensHandler) ListAll(c *fiber.Ctx) error {
	tokens, err := h.tokens.ListAll(c.Context(), nil,
		c.QueryInt("page", 1), c.QueryInt("limit", 50), c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TokensFromDomain(tokens))
}

// ListByStatus GET /api/token/all/:status.
func (h *TokensHandler) ListByStatus(c *fiber.Ctx) error {
	status := domain.TokenStatus(c.Params("status"))
	if status != domain.TokenStatusRequested && status != domain.TokenStatusIssued {
		return apperrors.NewValidationError("unknown token status", map[string]any{"status": status})
	}
	tokens, err := h.tokens.ListAll(c.Context(), &status,
		c.QueryInt("page", 1), c.QueryInt("limit", 50), "")
	if err != nil {
		return err
	}
	return c.JSON(dto.TokensFromDomain(tokens))
}

// Issue PATCH /api/token/status/:quantity/:token?mobile=.
func (h *TokensHandler) Issue(c *fiber.Ctx) error {
	quantity, err := strconv.Atoi(c.Params("quantity"))
	if err != nil {
		return apperrors.NewValidationError("invalid quantity", nil)
	}

	if _, err := h.tokens.IssueToken(c.Context(), c.Params("token"), c.Query("mobile"), quantity); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Token status updated successfully"})
}
