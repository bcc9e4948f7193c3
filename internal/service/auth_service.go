package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
	apperrors "github.com/spec-kit/marketplace-service/pkg/util/errorutil"
)

const defaultProfileImage = "https://res.cloudinary.com/dlywo5mxn/image/upload/v1689572976/afed80130a2682f1a428984ed8c84308_wscf7t.jpg"

// AuthService handles registration, login and profile maintenance.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	notifier Notifier
	logger   *zap.Logger
	cfg      config.AuthConfig
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Notifier Notifier
	Logger   *zap.Logger
}

// RegisterInput describes a signup payload.
type RegisterInput struct {
	Mobile   string
	Email    string
	Name     string
	Password string
	FCMToken string
	Role     domain.UserRole
}

// AuthResult pairs a user with their signed session token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:    deps.UserRepo,
		tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		notifier: deps.Notifier,
		logger:   deps.Logger,
		cfg:      cfg,
	}
}

// TokenManager exposes the JWT manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Register creates an account and greets the new device.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if strings.TrimSpace(input.Mobile) == "" || strings.TrimSpace(input.Name) == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("mobile, name and password are required", nil)
	}
	switch input.Role {
	case domain.RoleVisitor, domain.RoleCollector, domain.RoleAdmin:
	default:
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}

	count, err := s.users.CountByMobile(ctx, input.Mobile)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if count > 0 {
		return nil, apperrors.NewConflict("mobile number already in use", nil)
	}

	hashed, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	image := defaultProfileImage
	user := &domain.User{
		Mobile:   input.Mobile,
		Name:     input.Name,
		Password: hashed,
		Image:    &image,
		Role:     input.Role,
		Status:   domain.UserStatusActive,
	}
	if input.Email != "" {
		user.Email = &input.Email
	}
	if input.FCMToken != "" {
		user.FCMToken = &input.FCMToken
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	signed, _, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.notifier.Welcome(input.FCMToken, user.Name)
	return &AuthResult{User: user, Token: signed}, nil
}

// Login verifies credentials and refreshes the stored device token and role.
func (s *AuthService) Login(ctx context.Context, mobile, password string, role domain.UserRole, fcmToken string) (*AuthResult, error) {
	if mobile == "" || password == "" {
		return nil, apperrors.NewValidationError("mobile and password are required", nil)
	}

	user, err := s.users.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewForbidden("mobile number is not registered")
		}
		return nil, apperrors.MapError(err)
	}

	if err := auth.ComparePassword(user.Password, password); err != nil {
		return nil, apperrors.NewForbidden("wrong password")
	}

	if fcmToken != "" || role != user.Role {
		if err := s.users.UpdateFCMToken(ctx, mobile, fcmToken, role); err != nil {
			s.logger.Warn("storing device token failed", zap.String("mobile", mobile), zap.Error(err))
		} else {
			user.Role = role
			if fcmToken != "" {
				user.FCMToken = &fcmToken
			}
		}
	}

	signed, _, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &AuthResult{User: user, Token: signed}, nil
}

// UpdatePassword replaces a user's password by mobile number.
func (s *AuthService) UpdatePassword(ctx context.Context, mobile, password string) error {
	if mobile == "" || password == "" {
		return apperrors.NewValidationError("mobile and password are required", nil)
	}
	hashed, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.users.UpdatePassword(ctx, mobile, hashed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewForbidden("mobile number is not registered")
		}
		return apperrors.MapError(err)
	}
	return nil
}

// UpdateName changes the profile display name.
func (s *AuthService) UpdateName(ctx context.Context, mobile, name string) (*domain.User, error) {
	if mobile == "" {
		return nil, apperrors.NewValidationError("mobile number required", nil)
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name must be provided", nil)
	}
	user, err := s.users.UpdateName(ctx, mobile, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateImage stores a new profile image URL.
func (s *AuthService) UpdateImage(ctx context.Context, mobile, imageURL string) (*domain.User, error) {
	if mobile == "" || imageURL == "" {
		return nil, apperrors.NewValidationError("mobile and image are required", nil)
	}
	user, err := s.users.UpdateImage(ctx, mobile, imageURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers pages through accounts for the admin console.
func (s *AuthService) ListUsers(ctx context.Context, page, limit int) ([]domain.User, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	users, err := s.users.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}
