package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/cache"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

type sweepRepo struct {
	removed int64
	err     error
	cutoffs []time.Time
}

func (r *sweepRepo) DeleteExpiredRequested(ctx context.Context, cutoff time.Time) (int64, error) {
	r.cutoffs = append(r.cutoffs, cutoff)
	return r.removed, r.err
}

func (r *sweepRepo) Create(context.Context, *domain.Token) error { return nil }
func (r *sweepRepo) GetRequestedByMobile(context.Context, string) (*domain.Token, error) {
	return nil, pgx.ErrNoRows
}
func (r *sweepRepo) Issue(context.Context, string, string, int) (*domain.Token, error) {
	return nil, pgx.ErrNoRows
}
func (r *sweepRepo) ListByMobile(context.Context, string) ([]domain.Token, error) { return nil, nil }
func (r *sweepRepo) ListWithFilter(context.Context, repository.TokenFilter) ([]domain.Token, error) {
	return nil, nil
}
func (r *sweepRepo) CodeExists(context.Context, string) (bool, error) { return false, nil }

func newSweepFixture(repo *sweepRepo, store *cache.MemoryStore) *CleanupWorker {
	return NewCleanupWorker(repo, cache.New(store, 0, zap.NewNop(), nil), zap.NewNop(), config.CleanupConfig{
		Schedule: "@hourly",
		MaxAge:   48 * time.Hour,
	})
}

func TestSweepClearsTokenCachesWhenRowsExpire(t *testing.T) {
	store := cache.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "tokens:tokens_p1_l10_s", []byte("[]"), 0))
	require.NoError(t, store.Set(ctx, "token:09120000000", []byte("{}"), 0))
	require.NoError(t, store.Set(ctx, "jobs:active", []byte("[]"), 0))

	repo := &sweepRepo{removed: 3}
	newSweepFixture(repo, store).Sweep()

	require.Len(t, repo.cutoffs, 1)
	assert.WithinDuration(t, time.Now().Add(-48*time.Hour), repo.cutoffs[0], time.Minute)

	keys := store.Keys()
	assert.ElementsMatch(t, []string{"jobs:active"}, keys, "only token views are swept")
}

func TestSweepLeavesCacheAloneWhenNothingExpired(t *testing.T) {
	store := cache.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "token:09120000000", []byte("{}"), 0))

	newSweepFixture(&sweepRepo{removed: 0}, store).Sweep()

	assert.Contains(t, store.Keys(), "token:09120000000")
}

func TestSweepSurvivesStoreFailure(t *testing.T) {
	store := cache.NewMemoryStore()
	newSweepFixture(&sweepRepo{err: errors.New("db down")}, store).Sweep()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	w := NewCleanupWorker(&sweepRepo{}, cache.New(cache.NewMemoryStore(), 0, zap.NewNop(), nil), zap.NewNop(), config.CleanupConfig{
		Schedule: "not a schedule",
		MaxAge:   48 * time.Hour,
	})
	require.Error(t, w.Start())
}
