package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/cache"
	"github.com/spec-kit/marketplace-service/internal/domain"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

func newTokenFixture(t *testing.T) (*TokenService, *fakeTokenRepo, *cache.MemoryStore, *fakeNotifier) {
	t.Helper()
	repo := newFakeTokenRepo()
	store := cache.NewMemoryStore()
	notifier := &fakeNotifier{}
	svc := NewTokenService(TokenDependencies{
		TokenRepo: repo,
		Codes:     NewCodeGenerator(repo),
		Cache:     cache.New(store, 0, zap.NewNop(), nil),
		Notifier:  notifier,
		Logger:    zap.NewNop(),
	})
	return svc, repo, store, notifier
}

func requestInput(mobile string) TokenRequestInput {
	return TokenRequestInput{
		MobileNumber: mobile,
		OrderNumber:  "ORD-100",
		OrderCode:    "ABC123",
		DeviceToken:  "device-token",
	}
}

func TestRequestTokenCreatesRequested(t *testing.T) {
	svc, _, _, notifier := newTokenFixture(t)

	token, err := svc.RequestToken(context.Background(), requestInput("09120000000"))
	require.NoError(t, err)
	assert.Equal(t, domain.TokenStatusRequested, token.Status)
	assert.Len(t, token.TokenCode, 6)
	assert.Equal(t, []string{"token_requested:" + token.TokenCode}, notifier.Events())
}

func TestRequestTokenConflictCarriesExistingCode(t *testing.T) {
	svc, _, _, notifier := newTokenFixture(t)
	ctx := context.Background()

	first, err := svc.RequestToken(ctx, requestInput("09120000000"))
	require.NoError(t, err)

	_, err = svc.RequestToken(ctx, requestInput("09120000000"))
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, first.TokenCode, domainErr.Details["tokenCode"])

	assert.Len(t, notifier.Events(), 1, "the losing request must not notify")
}

func TestRequestTokenRaceLoserGetsWinnersCode(t *testing.T) {
	svc, repo, _, _ := newTokenFixture(t)

	// The existence check passes, then the insert collides with a request
	// that landed in between.
	repo.forceRaceOnCreate = true
	repo.raceWinnerCode = "WINNER"

	_, err := svc.RequestToken(context.Background(), requestInput("09120000000"))
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, "WINNER", domainErr.Details["tokenCode"])
}

func TestRequestTokenValidatesInput(t *testing.T) {
	svc, _, _, _ := newTokenFixture(t)

	_, err := svc.RequestToken(context.Background(), TokenRequestInput{MobileNumber: "0912"})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestIssueTokenThenReRequestSucceeds(t *testing.T) {
	svc, _, _, notifier := newTokenFixture(t)
	ctx := context.Background()
	mobile := "09120000000"

	first, err := svc.RequestToken(ctx, requestInput(mobile))
	require.NoError(t, err)

	issued, err := svc.IssueToken(ctx, first.TokenCode, mobile, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenStatusIssued, issued.Status)
	assert.Equal(t, 3, issued.Quantity)
	require.NotNil(t, issued.ReceivedAt)

	// The slot is free again.
	second, err := svc.RequestToken(ctx, requestInput(mobile))
	require.NoError(t, err)
	assert.NotEqual(t, first.TokenCode, second.TokenCode)

	history, err := svc.ListByMobile(ctx, mobile)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	events := notifier.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "token_issued:"+first.TokenCode, events[1])
}

func TestIssueTokenUnknownCodeIsNotFound(t *testing.T) {
	svc, _, _, _ := newTokenFixture(t)

	_, err := svc.IssueToken(context.Background(), "NOPE42", "09120000000", 1)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestIssueTokenAlreadyIssuedIsNotFound(t *testing.T) {
	svc, _, _, _ := newTokenFixture(t)
	ctx := context.Background()

	token, err := svc.RequestToken(ctx, requestInput("09120000000"))
	require.NoError(t, err)
	_, err = svc.IssueToken(ctx, token.TokenCode, "09120000000", 1)
	require.NoError(t, err)

	_, err = svc.IssueToken(ctx, token.TokenCode, "09120000000", 1)
	require.Error(t, err, "a token redeems exactly once")
}

func TestGetActiveIsCachedAndInvalidatedOnIssue(t *testing.T) {
	svc, _, store, _ := newTokenFixture(t)
	ctx := context.Background()
	mobile := "09120000000"

	token, err := svc.RequestToken(ctx, requestInput(mobile))
	require.NoError(t, err)

	active, err := svc.GetActive(ctx, mobile)
	require.NoError(t, err)
	assert.Equal(t, token.TokenCode, active.TokenCode)
	assert.Contains(t, store.Keys(), "token:"+mobile)

	_, err = svc.IssueToken(ctx, token.TokenCode, mobile, 1)
	require.NoError(t, err)
	assert.NotContains(t, store.Keys(), "token:"+mobile, "issuing must clear the active-token slot")

	_, err = svc.GetActive(ctx, mobile)
	require.Error(t, err, "no REQUESTED token remains")
}

func TestTokenMutationsClearListingFamilyOnly(t *testing.T) {
	svc, _, store, _ := newTokenFixture(t)
	ctx := context.Background()

	_, err := svc.RequestToken(ctx, requestInput("09121111111"))
	require.NoError(t, err)

	// Warm an admin listing, another user's active slot and the admin
	// status family.
	_, err = svc.ListAll(ctx, nil, 1, 10, "")
	require.NoError(t, err)
	otherActive, err := svc.GetActive(ctx, "09121111111")
	require.NoError(t, err)
	require.NotNil(t, otherActive)
	status := domain.TokenStatusRequested
	_, err = svc.ListAll(ctx, &status, 1, 10, "")
	require.NoError(t, err)

	_, err = svc.RequestToken(ctx, requestInput("09122222222"))
	require.NoError(t, err)

	keys := store.Keys()
	assert.Contains(t, keys, "token:09121111111", "other users' active slots survive a request")
	for _, key := range keys {
		assert.NotContains(t, key, "tokens:tokens", "paginated listings must be gone")
		assert.NotContains(t, key, "tokens:status", "status listings must be gone")
	}
}
