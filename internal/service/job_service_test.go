package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/cache"
	"github.com/spec-kit/marketplace-service/internal/domain"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

type fakePhotoRemover struct {
	done    chan struct{}
	removed []string
}

func newFakePhotoRemover() *fakePhotoRemover {
	return &fakePhotoRemover{done: make(chan struct{}, 16)}
}

func (f *fakePhotoRemover) Remove(category, url string) error {
	f.removed = append(f.removed, category+":"+url)
	f.done <- struct{}{}
	return nil
}

func newJobFixture(t *testing.T) (*JobService, *fakeJobRepo, *cache.MemoryStore, *fakeNotifier, *fakePhotoRemover) {
	t.Helper()
	repo := newFakeJobRepo()
	store := cache.NewMemoryStore()
	notifier := &fakeNotifier{}
	photos := newFakePhotoRemover()
	svc := NewJobService(JobDependencies{
		JobRepo:        repo,
		Cache:          cache.New(store, 0, zap.NewNop(), nil),
		Notifier:       notifier,
		Photos:         photos,
		Logger:         zap.NewNop(),
		CollectorTopic: "collectors",
	})
	return svc, repo, store, notifier, photos
}

func jobInput(poster string) JobCreateInput {
	return JobCreateInput{
		Description: "Вывоз мусора",
		Location:    "ул. Ленина 5",
		Cost:        "500",
		PhotoURL:    "/uploads/jobs/image-1.jpg",
		PostedBy:    poster,
	}
}

func TestCreateJobAnnouncesAndInvalidatesListings(t *testing.T) {
	svc, _, store, notifier, _ := newJobFixture(t)
	ctx := context.Background()

	// Warm the listings that creation must refresh.
	_, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	_, err = svc.ListPostedBy(ctx, "09120000000")
	require.NoError(t, err)

	job, err := svc.CreateJob(ctx, jobInput("09120000000"))
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusActive, job.Status)

	assert.NotContains(t, store.Keys(), "jobs:active")
	assert.NotContains(t, store.Keys(), "jobs:postedBy:09120000000")
	assert.Equal(t, []string{"job_created:collectors"}, notifier.Events())

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, job.ID, open[0].ID)
}

func TestCreateJobRequiresFields(t *testing.T) {
	svc, _, store, notifier, _ := newJobFixture(t)

	input := jobInput("09120000000")
	input.Cost = " "
	_, err := svc.CreateJob(context.Background(), input)
	require.Error(t, err)
	assert.Empty(t, store.Keys())
	assert.Empty(t, notifier.Events())
}

func TestCompleteJobLifecycle(t *testing.T) {
	svc, _, _, notifier, _ := newJobFixture(t)
	ctx := context.Background()
	poster, collector := "09120000000", "09121111111"

	job, err := svc.CreateJob(ctx, jobInput(poster))
	require.NoError(t, err)

	done, err := svc.CompleteJob(ctx, job.ID, collector, "/uploads/jobs/proof-1.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPaymentRequired, done.Status)
	require.NotNil(t, done.FinishedByID)
	assert.Equal(t, collector, *done.FinishedByID)

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open, "a completed job leaves the open listing")

	posted, err := svc.ListPostedBy(ctx, poster)
	require.NoError(t, err)
	require.Len(t, posted, 1)
	assert.Equal(t, domain.JobStatusPaymentRequired, posted[0].Status)

	collected, err := svc.ListCollectedBy(ctx, collector)
	require.NoError(t, err)
	require.Len(t, collected, 1)

	assert.Equal(t, []string{"job_created:collectors", "job_completed"}, notifier.Events())
}

func TestCompleteJobTwiceConflictsWithoutSideEffects(t *testing.T) {
	svc, _, store, notifier, _ := newJobFixture(t)
	ctx := context.Background()

	job, err := svc.CreateJob(ctx, jobInput("09120000000"))
	require.NoError(t, err)
	_, err = svc.CompleteJob(ctx, job.ID, "09121111111", "/uploads/jobs/proof-1.jpg")
	require.NoError(t, err)

	// Warm a listing so we can prove the failed attempt does not clear it.
	_, err = svc.ListOpen(ctx)
	require.NoError(t, err)
	eventsBefore := len(notifier.Events())

	_, err = svc.CompleteJob(ctx, job.ID, "09122222222", "/uploads/jobs/proof-2.jpg")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONFLICT", domainErr.Code)

	assert.Contains(t, store.Keys(), "jobs:active", "a failed transition must not invalidate")
	assert.Len(t, notifier.Events(), eventsBefore, "a failed transition must not notify")
}

func TestCompleteJobUnknownIsNotFound(t *testing.T) {
	svc, _, _, _, _ := newJobFixture(t)

	_, err := svc.CompleteJob(context.Background(), 404, "09121111111", "/uploads/jobs/proof.jpg")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestDeleteJobOnlyWhileActive(t *testing.T) {
	svc, repo, _, _, photos := newJobFixture(t)
	ctx := context.Background()

	job, err := svc.CreateJob(ctx, jobInput("09120000000"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteJob(ctx, job.ID))
	_, err = repo.GetByID(ctx, job.ID)
	require.Error(t, err)

	select {
	case <-photos.done:
	case <-time.After(time.Second):
		t.Fatal("photo cleanup never ran")
	}
	assert.Equal(t, []string{"jobs:/uploads/jobs/image-1.jpg"}, photos.removed)
}

func TestDeleteJobPastActiveConflicts(t *testing.T) {
	svc, _, _, _, _ := newJobFixture(t)
	ctx := context.Background()

	job, err := svc.CreateJob(ctx, jobInput("09120000000"))
	require.NoError(t, err)
	_, err = svc.CompleteJob(ctx, job.ID, "09121111111", "/uploads/jobs/proof.jpg")
	require.NoError(t, err)

	err = svc.DeleteJob(ctx, job.ID)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONFLICT", domainErr.Code)
}
