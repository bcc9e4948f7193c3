package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// JobResponse is the listing/detail shape for jobs.
type JobResponse struct {
	ID           int64               `json:"id"`
	Description  string              `json:"description"`
	Location     string              `json:"location"`
	Cost         string              `json:"cost"`
	JobPhoto     *string             `json:"jobPhoto"`
	JobPhotoDone *string             `json:"jobPhotoDone"`
	Status       domain.JobStatus    `json:"status"`
	PostedByID   string              `json:"postedById"`
	FinishedByID *string             `json:"finishedById"`
	CreatedAt    time.Time           `json:"createdAt"`
	FinishedAt   *time.Time          `json:"finishedAt"`
	PostedBy     *domain.UserSummary `json:"postedBy,omitempty"`
	FinishedBy   *domain.UserSummary `json:"finishedBy,omitempty"`
}

// JobFromDomain maps one job.
func JobFromDomain(job *domain.Job) JobResponse {
	return JobResponse{
		ID:           job.ID,
		Description:  job.Description,
		Location:     job.Location,
		Cost:         job.Cost,
		JobPhoto:     job.JobPhoto,
		JobPhotoDone: job.JobPhotoDone,
		Status:       job.Status,
		PostedByID:   job.PostedByID,
		FinishedByID: job.FinishedByID,
		CreatedAt:    job.CreatedAt,
		FinishedAt:   job.FinishedAt,
		PostedBy:     job.PostedBy,
		FinishedBy:   job.FinishedBy,
	}
}

// JobsFromDomain maps a listing.
func JobsFromDomain(jobs []domain.Job) []JobResponse {
	items := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, JobFromDomain(&jobs[i]))
	}
	return items
}
