package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// SendNotificationRequest payload for the admin console.
type SendNotificationRequest struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// SubscribeRequest registers a browser push subscription.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// TopicSubscribeRequest adds a device to an FCM topic.
type TopicSubscribeRequest struct {
	Token string `json:"token"`
	Topic string `json:"topic"`
}

// SaveFCMRequest stores a device token.
type SaveFCMRequest struct {
	Token string `json:"token"`
}

// NotificationLogResponse is one audit row.
type NotificationLogResponse struct {
	ID      int64                      `json:"id"`
	Channel domain.NotificationChannel `json:"channel"`
	Target  string                     `json:"target"`
	Title   string                     `json:"title"`
	Body    string                     `json:"body"`
	Status  domain.NotificationStatus  `json:"status"`
	Error   *string                    `json:"error,omitempty"`
	SentAt  time.Time                  `json:"sentAt"`
}

// NotificationLogsFromDomain maps the audit listing.
func NotificationLogsFromDomain(logs []domain.NotificationLog) []NotificationLogResponse {
	items := make([]NotificationLogResponse, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		items = append(items, NotificationLogResponse{
			ID:      l.ID,
			Channel: l.Channel,
			Target:  l.Target,
			Title:   l.Title,
			Body:    l.Body,
			Status:  l.Status,
			Error:   l.Error,
			SentAt:  l.SentAt,
		})
	}
	return items
}

// SubscriptionResponse is one registered browser endpoint.
type SubscriptionResponse struct {
	ID        int64     `json:"id"`
	Endpoint  string    `json:"endpoint"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubscriptionsFromDomain maps the registry listing; keys stay private.
func SubscriptionsFromDomain(subs []domain.Subscription) []SubscriptionResponse {
	items := make([]SubscriptionResponse, 0, len(subs))
	for i := range subs {
		items = append(items, SubscriptionResponse{
			ID:        subs[i].ID,
			Endpoint:  subs[i].Endpoint,
			UpdatedAt: subs[i].UpdatedAt,
		})
	}
	return items
}
