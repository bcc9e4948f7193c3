package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/cache"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

// PhotoRemover deletes a stored upload behind a public URL.
type PhotoRemover interface {
	Remove(category, url string) error
}

// JobService owns the job lifecycle: create, complete, delete and the cached
// listings. Every mutation runs store-first, then invalidates exactly the
// affected cache keys, then hands notifications to the dispatcher without
// waiting on them.
type JobService struct {
	jobs           repository.JobRepository
	cache          *cache.Cache
	notifier       Notifier
	photos         PhotoRemover
	logger         *zap.Logger
	collectorTopic string
}

// JobDependencies bundles collaborators for the job service.
type JobDependencies struct {
	JobRepo        repository.JobRepository
	Cache          *cache.Cache
	Notifier       Notifier
	Photos         PhotoRemover
	Logger         *zap.Logger
	CollectorTopic string
}

// JobCreateInput describes a posted job.
type JobCreateInput struct {
	Description string
	Location    string
	Cost        string
	PhotoURL    string
	PostedBy    string
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	return &JobService{
		jobs:           deps.JobRepo,
		cache:          deps.Cache,
		notifier:       deps.Notifier,
		photos:         deps.Photos,
		logger:         deps.Logger,
		collectorTopic: deps.CollectorTopic,
	}
}

// CreateJob persists an ACTIVE job and fans out the announcement.
func (s *JobService) CreateJob(ctx context.Context, input JobCreateInput) (*domain.Job, error) {
	if strings.TrimSpace(input.Description) == "" ||
		strings.TrimSpace(input.Location) == "" ||
		strings.TrimSpace(input.Cost) == "" {
		return nil, apperrors.NewValidationError("description, location and cost are required", nil)
	}
	if input.PhotoURL == "" {
		return nil, apperrors.NewValidationError("job photo is required", nil)
	}

	photo := input.PhotoURL
	job := &domain.Job{
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		Cost:        strings.TrimSpace(input.Cost),
		JobPhoto:    &photo,
		Status:      domain.JobStatusActive,
		PostedByID:  input.PostedBy,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.cache.InvalidateKeys(ctx, jobCreationKeys(job.PostedByID)...)
	s.notifier.JobCreated(job, s.collectorTopic)
	return job, nil
}

// CompleteJob moves an ACTIVE job to PAYMENT_REQUIRED with the collector's
// proof. A job that is missing or already past ACTIVE fails the operation
// with no invalidation and no notification.
func (s *JobService) CompleteJob(ctx context.Context, jobID int64, collectorMobile, proofURL string) (*domain.Job, error) {
	if proofURL == "" {
		return nil, apperrors.NewValidationError("proof image is required", nil)
	}
	if collectorMobile == "" {
		return nil, apperrors.NewValidationError("collector mobile is required", nil)
	}

	job, err := s.jobs.Complete(ctx, jobID, collectorMobile, proofURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, s.completeConflict(ctx, jobID)
		}
		return nil, apperrors.MapError(err)
	}

	s.cache.InvalidateKeys(ctx, jobCompletionKeys(job.PostedByID, collectorMobile)...)
	s.notifier.JobCompleted(job)
	return job, nil
}

// completeConflict distinguishes "no such job" from "job not completable"
// after the conditional transition matched nothing.
func (s *JobService) completeConflict(ctx context.Context, jobID int64) error {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("job", map[string]any{"id": jobID})
		}
		return apperrors.MapError(err)
	}
	return apperrors.NewConflict("job is not open for completion", map[string]any{"id": jobID})
}

// DeleteJob removes a still-ACTIVE job, its cache keys and, best effort, its
// photo artifact.
func (s *JobService) DeleteJob(ctx context.Context, jobID int64) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("job", map[string]any{"id": jobID})
		}
		return apperrors.MapError(err)
	}
	if !job.Deletable() {
		return apperrors.NewConflict("job is already taken or completed", map[string]any{"id": jobID})
	}

	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return apperrors.MapError(err)
	}

	s.cache.InvalidateKeys(ctx, jobCreationKeys(job.PostedByID)...)

	if job.JobPhoto != nil && s.photos != nil {
		photo := *job.JobPhoto
		go func() {
			if err := s.photos.Remove("jobs", photo); err != nil {
				s.logger.Warn("job photo delete failed", zap.String("photo", photo), zap.Error(err))
			}
		}()
	}
	return nil
}

// ListOpen returns the ACTIVE listing through the cache.
func (s *JobService) ListOpen(ctx context.Context) ([]domain.Job, error) {
	jobs, err := cache.Fetch(ctx, s.cache, nsJobs, keyJobsActive, func(ctx context.Context) ([]domain.Job, error) {
		return s.jobs.ListActive(ctx)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return jobs, nil
}

// ListPostedBy returns a poster's jobs through the cache.
func (s *JobService) ListPostedBy(ctx context.Context, mobile string) ([]domain.Job, error) {
	if mobile == "" {
		return nil, apperrors.NewValidationError("mobile number required", nil)
	}
	jobs, err := cache.Fetch(ctx, s.cache, nsJobs, keyJobsPostedBy(mobile), func(ctx context.Context) ([]domain.Job, error) {
		return s.jobs.ListPostedBy(ctx, mobile)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return jobs, nil
}

// ListCollectedBy returns a collector's history through the cache.
func (s *JobService) ListCollectedBy(ctx context.Context, mobile string) ([]domain.Job, error) {
	if mobile == "" {
		return nil, apperrors.NewValidationError("mobile number required", nil)
	}
	jobs, err := cache.Fetch(ctx, s.cache, nsJobs, keyJobsCollectedBy(mobile), func(ctx context.Context) ([]domain.Job, error) {
		return s.jobs.ListCollectedBy(ctx, mobile)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return jobs, nil
}
