package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// TokenCreateRequest payload.
type TokenCreateRequest struct {
	MobileNumber string `json:"mobileNumber"`
	OrderNumber  string `json:"orderNumber"`
	OrderCode    string `json:"orderCode"`
	FCMToken     string `json:"fcmToken"`
}

// TokenResponse is the full token shape for listings.
type TokenResponse struct {
	ID           int64              `json:"id"`
	TokenCode    string             `json:"tokenCode"`
	OrderNumber  string             `json:"orderNumber"`
	MobileNumber string             `json:"mobileNumber"`
	Quantity     int                `json:"quantity"`
	Status       domain.TokenStatus `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
	ReceivedAt   *time.Time         `json:"receivedAt"`
}

// TokenFromDomain maps one token.
func TokenFromDomain(token *domain.Token) TokenResponse {
	return TokenResponse{
		ID:           token.ID,
		TokenCode:    token.TokenCode,
		OrderNumber:  token.OrderNumber,
		MobileNumber: token.MobileNumber,
		Quantity:     token.Quantity,
		Status:       token.Status,
		CreatedAt:    token.CreatedAt,
		ReceivedAt:   token.ReceivedAt,
	}
}

// TokensFromDomain maps a listing.
func TokensFromDomain(tokens []domain.Token) []TokenResponse {
	items := make([]TokenResponse, 0, len(tokens))
	for i := range tokens {
		items = append(items, TokenFromDomain(&tokens[i]))
	}
	return items
}
