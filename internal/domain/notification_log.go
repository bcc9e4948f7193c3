package domain

import "time"

// NotificationChannel identifies a delivery channel.
type NotificationChannel string

const (
	ChannelPush     NotificationChannel = "push"
	ChannelWebPush  NotificationChannel = "webpush"
	ChannelRealtime NotificationChannel = "realtime"
	ChannelBot      NotificationChannel = "bot"
)

// NotificationStatus records the outcome of a single delivery attempt.
type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "SENT"
	NotificationFailed NotificationStatus = "FAILED"
)

// NotificationLog is an audit row for one dispatched message. It is operator
// visibility only, never authoritative for delivery.
type NotificationLog struct {
	ID      int64
	Channel NotificationChannel
	Target  string
	Title   string
	Body    string
	Status  NotificationStatus
	Error   *string
	SentAt  time.Time
}
