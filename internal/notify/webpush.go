package notify

import (
	"context"
	"encoding/json"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
)

// WebPushMessage is the JSON body delivered to browser subscriptions.
type WebPushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// WebPusher delivers a payload to one browser subscription. A SendResult with
// Gone=true means the endpoint answered 404/410 and must be pruned.
type WebPusher interface {
	Send(ctx context.Context, sub domain.Subscription, msg WebPushMessage) SendResult
}

// SendResult is the per-endpoint outcome of a browser push attempt.
type SendResult struct {
	Gone bool
	Err  error
}

type vapidPusher struct {
	cfg config.WebPushConfig
}

// NewWebPusher builds a VAPID-signed pusher. Missing keys return a nil pusher
// and the channel stays dark.
func NewWebPusher(cfg config.WebPushConfig) WebPusher {
	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil
	}
	return &vapidPusher{cfg: cfg}
}

func (p *vapidPusher) Send(ctx context.Context, sub domain.Subscription, msg WebPushMessage) SendResult {
	payload, err := json.Marshal(msg)
	if err != nil {
		return SendResult{Err: err}
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
	}, &webpush.Options{
		Subscriber:      p.cfg.Subscriber,
		VAPIDPublicKey:  p.cfg.PublicKey,
		VAPIDPrivateKey: p.cfg.PrivateKey,
		TTL:             60,
	})
	if err != nil {
		return SendResult{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return SendResult{Gone: true}
	}
	if resp.StatusCode >= 400 {
		return SendResult{Err: &statusError{code: resp.StatusCode}}
	}
	return SendResult{}
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return http.StatusText(e.code)
}
