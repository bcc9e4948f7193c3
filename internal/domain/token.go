package domain

import "time"

// TokenStatus enumerates pickup-code states.
type TokenStatus string

const (
	TokenStatusRequested TokenStatus = "REQUESTED"
	TokenStatusIssued    TokenStatus = "ISSUED"
)

// Token is a single-use pickup code tied to one mobile number and one order.
// At most one token per mobile number may be REQUESTED at a time; the store
// enforces this with a partial unique index.
type Token struct {
	ID           int64
	TokenCode    string
	OrderNumber  string
	OrderCode    string
	MobileNumber string
	Quantity     int
	Status       TokenStatus
	CreatedAt    time.Time
	ReceivedAt   *time.Time
}
