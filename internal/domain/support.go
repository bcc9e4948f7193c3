package domain

import "time"

// SupportStatus enumerates support-query states.
type SupportStatus string

const (
	SupportStatusOpen     SupportStatus = "OPEN"
	SupportStatusResolved SupportStatus = "RESOLVED"
	SupportStatusRejected SupportStatus = "REJECTED"
)

// SupportQuery is a user-filed issue with an optional proof photo.
type SupportQuery struct {
	ID         int64
	Message    string
	QueryType  string
	Photo      *string
	Mobile     string
	PostedByID string
	Status     SupportStatus
	AdminReply *string
	CreatedAt  time.Time
	ResolvedAt *time.Time

	PostedBy *UserSummary
}
