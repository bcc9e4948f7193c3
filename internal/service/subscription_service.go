package service

import (
	"context"
	"strings"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// SubscriptionService manages the browser-push registry. Rows leave the
// registry either explicitly or when the dispatcher prunes a dead endpoint.
type SubscriptionService struct {
	subs repository.SubscriptionRepository
}

// NewSubscriptionService constructs the service.
func NewSubscriptionService(subs repository.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{subs: subs}
}

// Subscribe upserts a browser subscription keyed on its endpoint.
func (s *SubscriptionService) Subscribe(ctx context.Context, endpoint, p256dh, authKey string) (*domain.Subscription, error) {
	if strings.TrimSpace(endpoint) == "" || p256dh == "" || authKey == "" {
		return nil, apperrors.NewValidationError("endpoint and keys are required", nil)
	}
	sub := &domain.Subscription{Endpoint: endpoint, P256dh: p256dh, Auth: authKey}
	if err := s.subs.Upsert(ctx, sub); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sub, nil
}

// List returns all registered subscriptions.
func (s *SubscriptionService) List(ctx context.Context) ([]domain.Subscription, error) {
	subs, err := s.subs.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return subs, nil
}
