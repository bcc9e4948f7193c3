package notify

import "time"

// RealtimeEvent is the envelope broadcast to dashboard clients.
type RealtimeEvent struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

const (
	EventNewJob   = "new_job"
	EventNewToken = "new_token"
)

// NewJobPayload is broadcast when a job is posted.
type NewJobPayload struct {
	Type        string    `json:"type"`
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Cost        string    `json:"cost"`
	PostedBy    string    `json:"postedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTokenPayload is broadcast when a pickup token is requested.
type NewTokenPayload struct {
	Type         string    `json:"type"`
	ID           int64     `json:"id"`
	TokenCode    string    `json:"tokenCode"`
	OrderNumber  string    `json:"orderNumber"`
	MobileNumber string    `json:"mobileNumber"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Broadcaster pushes events to connected realtime clients.
type Broadcaster interface {
	Broadcast(event RealtimeEvent)
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
