package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/notify"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// NotificationService backs the admin console: manual sends and the audit
// trail. Unlike lifecycle fan-out, a manual send is synchronous so the
// operator sees the real outcome.
type NotificationService struct {
	notifier Notifier
	logs     repository.NotificationLogRepository
}

// NewNotificationService constructs the service.
func NewNotificationService(notifier Notifier, logs repository.NotificationLogRepository) *NotificationService {
	return &NotificationService{notifier: notifier, logs: logs}
}

// Send delivers one push to a topic or a device token.
func (s *NotificationService) Send(ctx context.Context, targetType, target, title, body string) error {
	if targetType == "" || target == "" || title == "" || body == "" {
		return apperrors.NewValidationError("type, target, title and body are required", nil)
	}

	var pushTarget notify.PushTarget
	switch targetType {
	case "topic":
		pushTarget = notify.TopicTarget(target)
	case "token":
		pushTarget = notify.TokenTarget(target)
	default:
		return apperrors.NewValidationError("invalid type, must be 'topic' or 'token'", nil)
	}

	if err := s.notifier.SendPushNow(ctx, pushTarget, title, body); err != nil {
		if errors.Is(err, notify.ErrUnregistered) {
			return apperrors.NewDomainError("TOKEN_GONE",
				"token is no longer valid, remove it from your database",
				http.StatusGone, nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// History returns the most recent delivery attempts.
func (s *NotificationService) History(ctx context.Context, limit int) ([]domain.NotificationLog, error) {
	logs, err := s.logs.ListRecent(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return logs, nil
}
