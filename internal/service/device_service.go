package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/notify"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// DeviceService maintains the push-token registry: which device token belongs
// to which account and which topic that device listens on.
type DeviceService struct {
	users  repository.UserRepository
	push   notify.PushSender
	logger *zap.Logger
	cfg    config.PushConfig
}

// NewDeviceService constructs the service. push may be nil when FCM is not
// configured; topic subscription is then skipped.
func NewDeviceService(users repository.UserRepository, push notify.PushSender, logger *zap.Logger, cfg config.PushConfig) *DeviceService {
	return &DeviceService{users: users, push: push, logger: logger, cfg: cfg}
}

// SaveToken stores the device token on the account and subscribes the device
// to the role topic so collectors hear about new jobs immediately.
func (s *DeviceService) SaveToken(ctx context.Context, mobile, token string) error {
	if token == "" {
		return apperrors.NewValidationError("token is required", nil)
	}

	user, err := s.users.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	if err := s.users.UpdateFCMToken(ctx, mobile, token, user.Role); err != nil {
		return apperrors.MapError(err)
	}

	if s.push != nil {
		topic := s.cfg.VisitorTopic
		if user.Role == domain.RoleCollector {
			topic = s.cfg.CollectorTopic
		}
		if err := s.push.SubscribeToTopic(ctx, token, topic); err != nil {
			s.logger.Warn("topic auto-subscribe failed",
				zap.String("mobile", mobile), zap.String("topic", topic), zap.Error(err))
		}
	}
	return nil
}

// Subscribe adds the device token to an arbitrary topic.
func (s *DeviceService) Subscribe(ctx context.Context, token, topic string) error {
	if token == "" || topic == "" {
		return apperrors.NewValidationError("token and topic are required", nil)
	}
	if s.push == nil {
		return apperrors.NewInternalError(errors.New("push channel not configured"))
	}
	if err := s.push.SubscribeToTopic(ctx, token, topic); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
