package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// SupportService handles user support queries and their resolution.
type SupportService struct {
	supports repository.SupportRepository
	notifier Notifier
}

// SupportCreateInput describes a filed query.
type SupportCreateInput struct {
	Mobile      string
	QueryType   string
	Description string
	PhotoURL    string
}

// NewSupportService constructs the service.
func NewSupportService(supports repository.SupportRepository, notifier Notifier) *SupportService {
	return &SupportService{supports: supports, notifier: notifier}
}

// Create files a support query and acknowledges it on the user's topic.
func (s *SupportService) Create(ctx context.Context, input SupportCreateInput) (*domain.SupportQuery, error) {
	if strings.TrimSpace(input.Mobile) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("mobile and description are required", nil)
	}

	query := &domain.SupportQuery{
		Message:    strings.TrimSpace(input.Description),
		QueryType:  input.QueryType,
		Mobile:     input.Mobile,
		PostedByID: input.Mobile,
		Status:     domain.SupportStatusOpen,
	}
	if input.PhotoURL != "" {
		photo := input.PhotoURL
		query.Photo = &photo
	}

	if err := s.supports.Create(ctx, query); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.notifier.SupportReceived(query.Mobile)
	return query, nil
}

// List returns recent support queries for the admin console.
func (s *SupportService) List(ctx context.Context) ([]domain.SupportQuery, error) {
	queries, err := s.supports.ListRecent(ctx, 100)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return queries, nil
}

// Resolve updates a query and notifies the user of the outcome.
func (s *SupportService) Resolve(ctx context.Context, id int64, status domain.SupportStatus, adminReply string) (*domain.SupportQuery, error) {
	switch status {
	case domain.SupportStatusResolved, domain.SupportStatusRejected, domain.SupportStatusOpen:
	default:
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}

	var reply *string
	if adminReply != "" {
		reply = &adminReply
	}

	query, err := s.supports.Resolve(ctx, id, status, reply)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("support query", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	s.notifier.SupportResolved(query.Mobile, query.Status)
	return query, nil
}
