package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User), nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	stored := *user
	r.users[user.Mobile] = &stored
	return nil
}

func (r *fakeUserRepo) GetByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[mobile]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) CountByMobile(ctx context.Context, mobile string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[mobile]; ok {
		return 1, nil
	}
	return 0, nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, mobile, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[mobile]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Password = hashed
	return nil
}

func (r *fakeUserRepo) UpdateFCMToken(ctx context.Context, mobile, token string, role domain.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[mobile]
	if !ok {
		return pgx.ErrNoRows
	}
	if token != "" {
		user.FCMToken = &token
	}
	user.Role = role
	return nil
}

func (r *fakeUserRepo) UpdateName(ctx context.Context, mobile, name string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[mobile]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.Name = name
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) UpdateImage(ctx context.Context, mobile, imageURL string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[mobile]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.Image = &imageURL
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeNotifier) {
	t.Helper()
	repo := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}, AuthDependencies{
		UserRepo: repo,
		Notifier: notifier,
		Logger:   zap.NewNop(),
	})
	return svc, repo, notifier
}

func registerInput() RegisterInput {
	return RegisterInput{
		Mobile:   "09120000000",
		Name:     "Анна",
		Password: "s3cret",
		FCMToken: "device-1",
		Role:     domain.RoleVisitor,
	}
}

func TestRegisterHashesPasswordAndGreets(t *testing.T) {
	svc, repo, notifier := newAuthFixture(t)

	result, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	stored, err := repo.GetByMobile(context.Background(), "09120000000")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.Password, "the plaintext must never be stored")
	require.NoError(t, auth.ComparePassword(stored.Password, "s3cret"))
	require.NotNil(t, stored.Image, "a default profile image is assigned")

	assert.Equal(t, []string{"welcome:Анна"}, notifier.Events())
}

func TestRegisterDuplicateMobileConflicts(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerInput())
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestLoginIssuesParsableToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	result, err := svc.Login(ctx, "09120000000", "s3cret", domain.RoleVisitor, "device-2")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "09120000000", claims.Mobile)

	require.NotNil(t, result.User.FCMToken)
	assert.Equal(t, "device-2", *result.User.FCMToken)
}

func TestLoginWrongPasswordIsForbidden(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "09120000000", "wrong", domain.RoleVisitor, "")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestLoginUnknownMobileIsForbidden(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), "09129999999", "s3cret", domain.RoleVisitor, "")
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestUpdatePasswordReplacesHash(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePassword(ctx, "09120000000", "newpass"))

	stored, err := repo.GetByMobile(ctx, "09120000000")
	require.NoError(t, err)
	require.NoError(t, auth.ComparePassword(stored.Password, "newpass"))
	require.Error(t, auth.ComparePassword(stored.Password, "s3cret"))
}

func TestUpdateNameTrimsAndValidates(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	user, err := svc.UpdateName(ctx, "09120000000", "  Мария  ")
	require.NoError(t, err)
	assert.Equal(t, "Мария", user.Name)

	_, err = svc.UpdateName(ctx, "09120000000", "   ")
	require.Error(t, err)
}
