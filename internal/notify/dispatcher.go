// Package notify fans a resource state change out to the delivery channels:
// mobile push, browser push, the realtime dashboard feed and the operations
// chat bot. Dispatch is fire-and-forget; a channel failing or hanging is a
// log line and a metric, never an error on the request that triggered it.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

// Metrics is the slice of observability the dispatcher reports into.
type Metrics interface {
	RecordNotification(channel, outcome string)
}

// Dispatcher coordinates the delivery channels. Any of push, web, hub or bot
// may be nil; a nil channel is simply skipped.
type Dispatcher struct {
	push    PushSender
	web     WebPusher
	hub     Broadcaster
	bot     BotSender
	subs    repository.SubscriptionRepository
	logs    repository.NotificationLogRepository
	logger  *zap.Logger
	metrics Metrics
	timeout time.Duration

	// wg tracks in-flight deliveries so tests and shutdown can drain them.
	wg sync.WaitGroup
}

// Deps bundles dispatcher collaborators.
type Deps struct {
	Push    PushSender
	Web     WebPusher
	Hub     Broadcaster
	Bot     BotSender
	Subs    repository.SubscriptionRepository
	Logs    repository.NotificationLogRepository
	Logger  *zap.Logger
	Metrics Metrics
	Timeout time.Duration
}

// NewDispatcher constructs the dispatcher.
func NewDispatcher(deps Deps) *Dispatcher {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		push:    deps.Push,
		web:     deps.Web,
		hub:     deps.Hub,
		bot:     deps.Bot,
		subs:    deps.Subs,
		logs:    deps.Logs,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		timeout: timeout,
	}
}

// Wait blocks until all in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// JobCreated notifies collectors about a fresh job.
func (d *Dispatcher) JobCreated(job *domain.Job, collectorTopic string) {
	title := "New Job Available! \U0001F69B"
	body := fmt.Sprintf("%s ₽ - \U0001F4CC Location : %s - %s", job.Cost, job.Location, truncate(job.Description, 30))
	data := map[string]string{"type": "NEW_JOB", "jobId": fmt.Sprintf("%d", job.ID)}

	d.pushAsync(TopicTarget(collectorTopic), title, body, data)
	d.broadcast(RealtimeEvent{Name: EventNewJob, Payload: NewJobPayload{
		Type:        "JOB",
		ID:          job.ID,
		Description: job.Description,
		Location:    job.Location,
		Cost:        job.Cost,
		PostedBy:    job.PostedByID,
		CreatedAt:   job.CreatedAt,
	}})
	d.botAsync(BotCardCreated, "Новая задача", job.Description, job.Location, job.Cost)
}

// JobCompleted notifies the poster that proof was submitted.
func (d *Dispatcher) JobCompleted(job *domain.Job) {
	title := "Job Completed! ✅"
	body := fmt.Sprintf("Job #%d is done. Please check the proof and release payment", job.ID)
	data := map[string]string{"type": "PAYMENT_REQUIRED", "jobId": fmt.Sprintf("%d", job.ID)}

	d.pushAsync(TopicTarget(UserTopic(job.PostedByID)), title, body, data)
}

// TokenRequested fans the new token out to the dashboard, browser
// subscriptions and the requesting device.
func (d *Dispatcher) TokenRequested(token *domain.Token, deviceToken string) {
	d.broadcast(RealtimeEvent{Name: EventNewToken, Payload: NewTokenPayload{
		Type:         "TOKEN",
		ID:           token.ID,
		TokenCode:    token.TokenCode,
		OrderNumber:  token.OrderNumber,
		MobileNumber: token.MobileNumber,
		Status:       string(token.Status),
		CreatedAt:    token.CreatedAt,
	}})
	d.webPushAllAsync(WebPushMessage{
		Title: "New Token Requested",
		Body:  fmt.Sprintf("%s requested token %s for order %s", token.MobileNumber, token.TokenCode, token.OrderNumber),
		URL:   "/dashboard/tokens",
	})
	if deviceToken != "" {
		d.pushAsync(TokenTarget(deviceToken),
			fmt.Sprintf("Your TOKEN NUMBER : %s", token.TokenCode),
			"The Token Number is valid for 48 hours only", nil)
	}
}

// TokenIssued notifies the owner that the pickup completed.
func (d *Dispatcher) TokenIssued(token *domain.Token) {
	d.pushAsync(TopicTarget(UserTopic(token.MobileNumber)),
		fmt.Sprintf("Token Number %s Issued", token.TokenCode),
		"Thank you for placing orders through our pickup point", nil)
}

// SupportReceived acknowledges a support query.
func (d *Dispatcher) SupportReceived(mobile string) {
	d.pushAsync(TopicTarget(UserTopic(mobile)),
		"Query received",
		"Thank you for contacting us, we will try to resolve your issue at utmost priority basis", nil)
}

// SupportResolved tells the user the outcome of their query.
func (d *Dispatcher) SupportResolved(mobile string, status domain.SupportStatus) {
	title := "Support Update \U0001F3A7"
	body := fmt.Sprintf("Your query status has been updated to: %s", status)
	switch status {
	case domain.SupportStatusResolved:
		title = "Query Resolved ✅"
		body = "Your support request has been resolved. Tap to view details."
	case domain.SupportStatusRejected:
		title = "Query Update ⚠️"
	}
	d.pushAsync(TopicTarget(UserTopic(mobile)), title, body, nil)
}

// Welcome greets a freshly registered device.
func (d *Dispatcher) Welcome(deviceToken, name string) {
	if deviceToken == "" {
		return
	}
	d.pushAsync(TokenTarget(deviceToken),
		fmt.Sprintf("Добро пожаловать %s", name),
		"Спасибо, что присоединились к приложению Яша !", nil)
}

// SendPushNow delivers one push synchronously for the admin console and
// reports the channel error to the caller. The audit row is still written.
func (d *Dispatcher) SendPushNow(ctx context.Context, target PushTarget, title, body string) error {
	if d.push == nil {
		return fmt.Errorf("push channel not configured")
	}
	err := d.push.Send(ctx, target, title, body, nil)
	d.audit(domain.ChannelPush, target.String(), title, body, err)
	d.record("push", err)
	return err
}

// UserTopic is the per-identity topic devices subscribe to.
func UserTopic(mobile string) string {
	return "user_" + mobile
}

func (d *Dispatcher) pushAsync(target PushTarget, title, body string, data map[string]string) {
	if d.push == nil {
		return
	}
	d.detach(func(ctx context.Context) {
		err := d.push.Send(ctx, target, title, body, data)
		if err != nil {
			d.logger.Warn("push delivery failed",
				zap.String("target", target.String()), zap.Error(err))
		}
		d.audit(domain.ChannelPush, target.String(), title, body, err)
		d.record("push", err)
	})
}

func (d *Dispatcher) broadcast(event RealtimeEvent) {
	if d.hub == nil {
		return
	}
	d.hub.Broadcast(event)
	d.record("realtime", nil)
}

// webPushAllAsync attempts every stored subscription independently and
// concurrently. An endpoint answering gone is pruned; any other failure is
// logged and the remaining endpoints are unaffected.
func (d *Dispatcher) webPushAllAsync(msg WebPushMessage) {
	if d.web == nil || d.subs == nil {
		return
	}
	d.detach(func(ctx context.Context) {
		subs, err := d.subs.List(ctx)
		if err != nil {
			d.logger.Warn("web push: listing subscriptions failed", zap.Error(err))
			return
		}

		var wg sync.WaitGroup
		for _, sub := range subs {
			wg.Add(1)
			go func(sub domain.Subscription) {
				defer wg.Done()
				result := d.web.Send(ctx, sub, msg)
				switch {
				case result.Gone:
					if err := d.subs.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
						d.logger.Warn("web push: pruning dead endpoint failed",
							zap.String("endpoint", sub.Endpoint), zap.Error(err))
					} else {
						d.logger.Info("web push: pruned dead endpoint", zap.String("endpoint", sub.Endpoint))
					}
					d.record("webpush", result.Err)
				case result.Err != nil:
					d.logger.Warn("web push delivery failed",
						zap.String("endpoint", sub.Endpoint), zap.Error(result.Err))
					d.audit(domain.ChannelWebPush, sub.Endpoint, msg.Title, msg.Body, result.Err)
					d.record("webpush", result.Err)
				default:
					d.record("webpush", nil)
				}
			}(sub)
		}
		wg.Wait()
	})
}

func (d *Dispatcher) botAsync(cardType BotCardType, title, description, location, cost string) {
	if d.bot == nil {
		return
	}
	d.detach(func(ctx context.Context) {
		err := d.bot.SendJobCard(ctx, cardType, title, description, location, cost)
		if err != nil {
			d.logger.Warn("bot delivery failed", zap.Error(err))
		}
		d.audit(domain.ChannelBot, "chat", title, description, err)
		d.record("bot", err)
	})
}

// detach runs fn on its own goroutine with a bounded deadline decoupled from
// the request context, so the response never waits on a channel.
func (d *Dispatcher) detach(fn func(context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		fn(ctx)
	}()
}

func (d *Dispatcher) audit(channel domain.NotificationChannel, target, title, body string, sendErr error) {
	if d.logs == nil {
		return
	}
	entry := &domain.NotificationLog{
		Channel: channel,
		Target:  target,
		Title:   title,
		Body:    body,
		Status:  domain.NotificationSent,
	}
	if sendErr != nil {
		entry.Status = domain.NotificationFailed
		detail := sendErr.Error()
		entry.Error = &detail
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.logs.Create(ctx, entry); err != nil {
		d.logger.Warn("notification audit write failed", zap.Error(err))
	}
}

func (d *Dispatcher) record(channel string, err error) {
	if d.metrics == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	d.metrics.RecordNotification(channel, outcome)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
