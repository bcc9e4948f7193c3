package notify

import (
	"context"
	"errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/spec-kit/marketplace-service/internal/config"
)

// PushTarget selects exactly one of a device token or a topic.
type PushTarget struct {
	Token string
	Topic string
}

// TokenTarget addresses a single device.
func TokenTarget(token string) PushTarget { return PushTarget{Token: token} }

// TopicTarget addresses a topic subscription.
func TopicTarget(topic string) PushTarget { return PushTarget{Topic: topic} }

func (t PushTarget) String() string {
	if t.Topic != "" {
		return "topic:" + t.Topic
	}
	return "token:" + t.Token
}

// ErrInvalidTarget is returned when neither or both of token/topic are set.
var ErrInvalidTarget = errors.New("push target must be exactly one of token or topic")

// ErrUnregistered marks a device token FCM no longer knows.
var ErrUnregistered = errors.New("push token is not registered")

// PushSender delivers a mobile push message to a device or a topic.
type PushSender interface {
	Send(ctx context.Context, target PushTarget, title, body string, data map[string]string) error
	SubscribeToTopic(ctx context.Context, token, topic string) error
}

// fcmSender sends through Firebase Cloud Messaging.
type fcmSender struct {
	client *messaging.Client
}

// NewFCMSender builds the firebase messaging client from a service account
// file. An empty credentials path returns a disabled sender so unconfigured
// environments come up without push.
func NewFCMSender(ctx context.Context, cfg config.PushConfig) (PushSender, error) {
	if cfg.CredentialsFile == "" {
		return nil, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &fcmSender{client: client}, nil
}

func (s *fcmSender) Send(ctx context.Context, target PushTarget, title, body string, data map[string]string) error {
	message, err := buildPushMessage(target, title, body, data)
	if err != nil {
		return err
	}
	if _, err := s.client.Send(ctx, message); err != nil {
		if messaging.IsUnregistered(err) {
			return ErrUnregistered
		}
		return err
	}
	return nil
}

func (s *fcmSender) SubscribeToTopic(ctx context.Context, token, topic string) error {
	_, err := s.client.SubscribeToTopic(ctx, []string{token}, topic)
	return err
}

// buildPushMessage is the one place push payloads are assembled. Every caller
// shares the same platform blocks and click action so devices handle all
// lifecycle notifications uniformly.
func buildPushMessage(target PushTarget, title, body string, data map[string]string) (*messaging.Message, error) {
	if (target.Token == "") == (target.Topic == "") {
		return nil, ErrInvalidTarget
	}

	payload := map[string]string{
		"click_action": "FLUTTER_NOTIFICATION_CLICK",
		"sentAt":       nowISO(),
	}
	for k, v := range data {
		payload[k] = v
	}

	badge := 1
	message := &messaging.Message{
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         payload,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Icon:  "stock_ticker_update",
				Color: "#4D96FF",
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Badge: &badge, Sound: "default"},
			},
		},
		Token: target.Token,
		Topic: target.Topic,
	}
	return message, nil
}
