package domain

import "time"

// JobStatus enumerates lifecycle states for jobs.
type JobStatus string

const (
	JobStatusActive          JobStatus = "ACTIVE"
	JobStatusPaymentRequired JobStatus = "PAYMENT_REQUIRED"
	JobStatusCompleted       JobStatus = "COMPLETED"
)

// Job is a task posted by a visitor and completed by a collector.
// FinishedByID and FinishedAt are set together with the transition out of ACTIVE.
type Job struct {
	ID           int64
	Description  string
	Location     string
	Cost         string
	JobPhoto     *string
	JobPhotoDone *string
	Status       JobStatus
	PostedByID   string
	FinishedByID *string
	CreatedAt    time.Time
	FinishedAt   *time.Time

	// Poster/collector profile snippets joined into listings.
	PostedBy   *UserSummary
	FinishedBy *UserSummary
}

// UserSummary is the profile slice embedded in job listings.
type UserSummary struct {
	Name   string  `json:"name"`
	Mobile string  `json:"mobile"`
	Image  *string `json:"image"`
}

// Deletable reports whether the job may still be removed without losing history.
func (j *Job) Deletable() bool {
	return j.Status == JobStatusActive
}
