package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// UserRepository encapsulates account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByMobile(ctx context.Context, mobile string) (*domain.User, error)
	CountByMobile(ctx context.Context, mobile string) (int, error)
	UpdatePassword(ctx context.Context, mobile, hashed string) error
	UpdateFCMToken(ctx context.Context, mobile, token string, role domain.UserRole) error
	UpdateName(ctx context.Context, mobile, name string) (*domain.User, error)
	UpdateImage(ctx context.Context, mobile, imageURL string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, mobile, email, name, password, image, fcm_token, user_role, user_status, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (mobile, email, name, password, image, fcm_token, user_role, user_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.Mobile,
		user.Email,
		user.Name,
		user.Password,
		user.Image,
		user.FCMToken,
		user.Role,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile=$1`
	return r.fetchSingle(ctx, query, mobile)
}

func (r *userRepository) CountByMobile(ctx context.Context, mobile string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE mobile=$1`, mobile).Scan(&count)
	return count, err
}

func (r *userRepository) UpdatePassword(ctx context.Context, mobile, hashed string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE users SET password=$1, updated_at=NOW() WHERE mobile=$2`, hashed, mobile)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdateFCMToken(ctx context.Context, mobile, token string, role domain.UserRole) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE users SET fcm_token=$1, user_role=$2, updated_at=NOW() WHERE mobile=$3`, token, role, mobile)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdateName(ctx context.Context, mobile, name string) (*domain.User, error) {
	query := `UPDATE users SET name=$1, updated_at=NOW() WHERE mobile=$2 RETURNING ` + userColumns
	return r.fetchSingle(ctx, query, name, mobile)
}

func (r *userRepository) UpdateImage(ctx context.Context, mobile, imageURL string) (*domain.User, error) {
	query := `UPDATE users SET image=$1, updated_at=NOW() WHERE mobile=$2 RETURNING ` + userColumns
	return r.fetchSingle(ctx, query, imageURL, mobile)
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Mobile,
			&user.Email,
			&user.Name,
			&user.Password,
			&user.Image,
			&user.FCMToken,
			&user.Role,
			&user.Status,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Mobile,
		&user.Email,
		&user.Name,
		&user.Password,
		&user.Image,
		&user.FCMToken,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
