package service

import (
	"context"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/notify"
)

// Notifier is the slice of the dispatcher the lifecycle services call.
// Everything here except SendPushNow is fire-and-forget: the dispatcher owns
// delivery, the services never wait on it.
type Notifier interface {
	JobCreated(job *domain.Job, collectorTopic string)
	JobCompleted(job *domain.Job)
	TokenRequested(token *domain.Token, deviceToken string)
	TokenIssued(token *domain.Token)
	SupportReceived(mobile string)
	SupportResolved(mobile string, status domain.SupportStatus)
	Welcome(deviceToken, name string)
	SendPushNow(ctx context.Context, target notify.PushTarget, title, body string) error
}
