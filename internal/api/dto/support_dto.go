package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// ResolveSupportRequest payload.
type ResolveSupportRequest struct {
	ID         int64                `json:"id"`
	Status     domain.SupportStatus `json:"status"`
	AdminReply string               `json:"adminReply"`
}

// SupportResponse is one support query.
type SupportResponse struct {
	ID         int64                `json:"id"`
	Message    string               `json:"message"`
	QueryType  string               `json:"queryType"`
	Photo      *string              `json:"photo"`
	Mobile     string               `json:"mobile"`
	Status     domain.SupportStatus `json:"status"`
	AdminReply *string              `json:"adminReply"`
	CreatedAt  time.Time            `json:"createdAt"`
	ResolvedAt *time.Time           `json:"resolvedAt"`
	PostedBy   *domain.UserSummary  `json:"postedBy,omitempty"`
}

// SupportFromDomain maps one query.
func SupportFromDomain(q *domain.SupportQuery) SupportResponse {
	return SupportResponse{
		ID:         q.ID,
		Message:    q.Message,
		QueryType:  q.QueryType,
		Photo:      q.Photo,
		Mobile:     q.Mobile,
		Status:     q.Status,
		AdminReply: q.AdminReply,
		CreatedAt:  q.CreatedAt,
		ResolvedAt: q.ResolvedAt,
		PostedBy:   q.PostedBy,
	}
}

// SupportsFromDomain maps a listing.
func SupportsFromDomain(queries []domain.SupportQuery) []SupportResponse {
	items := make([]SupportResponse, 0, len(queries))
	for i := range queries {
		items = append(items, SupportFromDomain(&queries[i]))
	}
	return items
}
