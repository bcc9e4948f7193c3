package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// ErrRequestedExists signals that the mobile number already holds a REQUESTED
// token. The unique partial index raises it on insert, which is what makes
// the at-most-one invariant hold under interleaved requests: the existence
// check alone cannot.
var ErrRequestedExists = errors.New("requested token already exists for mobile number")

// TokenFilter captures the admin listing parameters.
type TokenFilter struct {
	Status     *domain.TokenStatus
	SearchTerm *string
	Limit      int
	Offset     int
}

// TokenRepository encapsulates token persistence.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.Token) error
	GetRequestedByMobile(ctx context.Context, mobile string) (*domain.Token, error)
	// Issue performs REQUESTED -> ISSUED for the token identified by code and
	// mobile, recording quantity and the pickup time. Returns pgx.ErrNoRows
	// when no such REQUESTED token exists.
	Issue(ctx context.Context, code, mobile string, quantity int) (*domain.Token, error)
	ListByMobile(ctx context.Context, mobile string) ([]domain.Token, error)
	ListWithFilter(ctx context.Context, filter TokenFilter) ([]domain.Token, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// DeleteExpiredRequested drops REQUESTED tokens created before the cutoff
	// and returns how many rows went away.
	DeleteExpiredRequested(ctx context.Context, cutoff time.Time) (int64, error)
}

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository instantiates repository.
func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &tokenRepository{pool: pool}
}

const tokenColumns = `id, token_code, order_number, order_code, mobile_number, quantity, status, created_at, received_at`

func (r *tokenRepository) Create(ctx context.Context, token *domain.Token) error {
	const query = `
        INSERT INTO tokens (token_code, order_number, order_code, mobile_number, quantity, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		token.TokenCode,
		token.OrderNumber,
		token.OrderCode,
		token.MobileNumber,
		token.Quantity,
		token.Status,
	).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" &&
			pgErr.ConstraintName == "uniq_tokens_requested_per_mobile" {
			return ErrRequestedExists
		}
		return err
	}
	return nil
}

func (r *tokenRepository) GetRequestedByMobile(ctx context.Context, mobile string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE mobile_number=$1 AND status=$2`
	return r.fetchSingle(ctx, query, mobile, domain.TokenStatusRequested)
}

func (r *tokenRepository) Issue(ctx context.Context, code, mobile string, quantity int) (*domain.Token, error) {
	const query = `
        UPDATE tokens SET status=$1, received_at=NOW(), quantity=$2
        WHERE token_code=$3 AND mobile_number=$4 AND status=$5
        RETURNING ` + tokenColumns
	var token domain.Token
	if err := r.pool.QueryRow(ctx, query,
		domain.TokenStatusIssued,
		quantity,
		code,
		mobile,
		domain.TokenStatusRequested,
	).Scan(
		&token.ID,
		&token.TokenCode,
		&token.OrderNumber,
		&token.OrderCode,
		&token.MobileNumber,
		&token.Quantity,
		&token.Status,
		&token.CreatedAt,
		&token.ReceivedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) ListByMobile(ctx context.Context, mobile string) ([]domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE mobile_number=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, mobile)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTokens(rows)
}

func (r *tokenRepository) ListWithFilter(ctx context.Context, filter TokenFilter) ([]domain.Token, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(token_code) LIKE %s OR LOWER(mobile_number) LIKE %s OR LOWER(order_number) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tokens WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		tokenColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTokens(rows)
}

func (r *tokenRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tokens WHERE token_code=$1`, code).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *tokenRepository) DeleteExpiredRequested(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM tokens WHERE status=$1 AND created_at < $2`,
		domain.TokenStatusRequested, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *tokenRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Token, error) {
	var token domain.Token
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&token.ID,
		&token.TokenCode,
		&token.OrderNumber,
		&token.OrderCode,
		&token.MobileNumber,
		&token.Quantity,
		&token.Status,
		&token.CreatedAt,
		&token.ReceivedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func scanTokens(rows pgx.Rows) ([]domain.Token, error) {
	var result []domain.Token
	for rows.Next() {
		var token domain.Token
		if err := rows.Scan(
			&token.ID,
			&token.TokenCode,
			&token.OrderNumber,
			&token.OrderCode,
			&token.MobileNumber,
			&token.Quantity,
			&token.Status,
			&token.CreatedAt,
			&token.ReceivedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, token)
	}
	return result, rows.Err()
}
