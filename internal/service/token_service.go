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

// TokenService owns the pickup-token lifecycle. The at-most-one-REQUESTED
// invariant is enforced by the store's partial unique index; the existence
// check here only shortcuts the common case and supplies the conflicting
// code for the error.
type TokenService struct {
	tokens   repository.TokenRepository
	codes    *CodeGenerator
	cache    *cache.Cache
	notifier Notifier
	logger   *zap.Logger
}

// TokenDependencies bundles collaborators for the token service.
type TokenDependencies struct {
	TokenRepo repository.TokenRepository
	Codes     *CodeGenerator
	Cache     *cache.Cache
	Notifier  Notifier
	Logger    *zap.Logger
}

// TokenRequestInput describes a pickup-token request.
type TokenRequestInput struct {
	MobileNumber string
	OrderNumber  string
	OrderCode    string
	DeviceToken  string
}

// NewTokenService constructs the service.
func NewTokenService(deps TokenDependencies) *TokenService {
	return &TokenService{
		tokens:   deps.TokenRepo,
		codes:    deps.Codes,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
}

// RequestToken reserves the REQUESTED slot for a mobile number. When the slot
// is already held, the caller gets a conflict carrying the holder's code so
// clients can behave idempotently without treating it as success.
func (s *TokenService) RequestToken(ctx context.Context, input TokenRequestInput) (*domain.Token, error) {
	if strings.TrimSpace(input.MobileNumber) == "" ||
		strings.TrimSpace(input.OrderNumber) == "" ||
		strings.TrimSpace(input.OrderCode) == "" {
		return nil, apperrors.NewValidationError("mobileNumber, orderNumber and orderCode are required", nil)
	}

	if existing, err := s.tokens.GetRequestedByMobile(ctx, input.MobileNumber); err == nil {
		return nil, activeTokenConflict(existing.TokenCode)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	token := &domain.Token{
		TokenCode:    code,
		OrderNumber:  input.OrderNumber,
		OrderCode:    input.OrderCode,
		MobileNumber: input.MobileNumber,
		Quantity:     1,
		Status:       domain.TokenStatusRequested,
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		if errors.Is(err, repository.ErrRequestedExists) {
			// Lost the race: another interleaved request claimed the slot
			// between our check and insert. The constraint kept the
			// invariant; report the winner's code.
			if winner, lookupErr := s.tokens.GetRequestedByMobile(ctx, input.MobileNumber); lookupErr == nil {
				return nil, activeTokenConflict(winner.TokenCode)
			}
			return nil, activeTokenConflict("")
		}
		return nil, apperrors.MapError(err)
	}

	s.invalidateTokenViews(ctx, token.MobileNumber)
	s.notifier.TokenRequested(token, input.DeviceToken)
	return token, nil
}

// IssueToken redeems a REQUESTED token at the pickup point.
func (s *TokenService) IssueToken(ctx context.Context, code, mobile string, quantity int) (*domain.Token, error) {
	if code == "" || mobile == "" {
		return nil, apperrors.NewValidationError("token code and mobile number are required", nil)
	}
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", nil)
	}

	token, err := s.tokens.Issue(ctx, code, mobile, quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("token", map[string]any{"tokenCode": code})
		}
		return nil, apperrors.MapError(err)
	}

	s.invalidateTokenViews(ctx, mobile)
	s.notifier.TokenIssued(token)
	return token, nil
}

// GetActive returns the REQUESTED token for a mobile number through the cache.
func (s *TokenService) GetActive(ctx context.Context, mobile string) (*domain.Token, error) {
	if mobile == "" {
		return nil, apperrors.NewValidationError("mobile number required", nil)
	}
	token, err := cache.Fetch(ctx, s.cache, nsToken, mobile, func(ctx context.Context) (*domain.Token, error) {
		return s.tokens.GetRequestedByMobile(ctx, mobile)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("active token", map[string]any{"mobileNumber": mobile})
		}
		return nil, apperrors.MapError(err)
	}
	return token, nil
}

// ListByMobile returns a mobile number's token history through the cache.
func (s *TokenService) ListByMobile(ctx context.Context, mobile string) ([]domain.Token, error) {
	if mobile == "" {
		return nil, apperrors.NewValidationError("mobile number required", nil)
	}
	tokens, err := cache.Fetch(ctx, s.cache, nsTokens, mobile, func(ctx context.Context) ([]domain.Token, error) {
		return s.tokens.ListByMobile(ctx, mobile)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tokens, nil
}

// ListAll serves the admin listing family through the cache.
func (s *TokenService) ListAll(ctx context.Context, status *domain.TokenStatus, page, limit int, search string) ([]domain.Token, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	key := tokenListKey(status, page, limit, search)
	filter := repository.TokenFilter{
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if search != "" {
		filter.SearchTerm = &search
	}

	tokens, err := cache.Fetch(ctx, s.cache, nsTokens, key, func(ctx context.Context) ([]domain.Token, error) {
		return s.tokens.ListWithFilter(ctx, filter)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tokens, nil
}

// invalidateTokenViews clears the identity-scoped keys exactly and the
// unbounded admin-listing families by pattern.
func (s *TokenService) invalidateTokenViews(ctx context.Context, mobile string) {
	s.cache.InvalidateKeys(ctx, tokenKeys(mobile)...)
	s.cache.InvalidatePattern(ctx, tokensListPattern)
	s.cache.InvalidatePattern(ctx, tokensStatusPattern)
}

func activeTokenConflict(code string) error {
	details := map[string]any{}
	if code != "" {
		details["tokenCode"] = code
	}
	return apperrors.NewConflict("an active token already exists for this mobile number", details)
}
