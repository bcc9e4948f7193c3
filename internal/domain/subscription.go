package domain

import "time"

// Subscription is a browser push endpoint registered by a dashboard client.
// A 404/410 response from the endpoint is the signal to drop the row.
type Subscription struct {
	ID        int64
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
