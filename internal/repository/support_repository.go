package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// SupportRepository encapsulates support-query persistence.
type SupportRepository interface {
	Create(ctx context.Context, query *domain.SupportQuery) error
	ListRecent(ctx context.Context, limit int) ([]domain.SupportQuery, error)
	Resolve(ctx context.Context, id int64, status domain.SupportStatus, adminReply *string) (*domain.SupportQuery, error)
}

type supportRepository struct {
	pool *pgxpool.Pool
}

// NewSupportRepository instantiates repository.
func NewSupportRepository(pool *pgxpool.Pool) SupportRepository {
	return &supportRepository{pool: pool}
}

const supportColumns = `s.id, s.message, s.query_type, s.photo, s.mobile, s.posted_by_id, s.status, s.admin_reply, s.created_at, s.resolved_at`

func (r *supportRepository) Create(ctx context.Context, query *domain.SupportQuery) error {
	const sql = `
        INSERT INTO supports (message, query_type, photo, mobile, posted_by_id, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, sql,
		query.Message,
		query.QueryType,
		query.Photo,
		query.Mobile,
		query.PostedByID,
		query.Status,
	).Scan(&query.ID, &query.CreatedAt)
}

func (r *supportRepository) ListRecent(ctx context.Context, limit int) ([]domain.SupportQuery, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
        SELECT `+supportColumns+`, u.name, u.mobile, u.image
        FROM supports s JOIN users u ON u.mobile = s.posted_by_id
        ORDER BY s.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SupportQuery
	for rows.Next() {
		var q domain.SupportQuery
		var summary domain.UserSummary
		if err := rows.Scan(&q.ID, &q.Message, &q.QueryType, &q.Photo, &q.Mobile, &q.PostedByID,
			&q.Status, &q.AdminReply, &q.CreatedAt, &q.ResolvedAt,
			&summary.Name, &summary.Mobile, &summary.Image); err != nil {
			return nil, err
		}
		q.PostedBy = &summary
		result = append(result, q)
	}
	return result, rows.Err()
}

func (r *supportRepository) Resolve(ctx context.Context, id int64, status domain.SupportStatus, adminReply *string) (*domain.SupportQuery, error) {
	const sql = `
        UPDATE supports s SET status=$1, admin_reply=$2, resolved_at=NOW()
        WHERE s.id=$3
        RETURNING ` + supportColumns
	var q domain.SupportQuery
	if err := r.pool.QueryRow(ctx, sql, status, adminReply, id).Scan(
		&q.ID, &q.Message, &q.QueryType, &q.Photo, &q.Mobile, &q.PostedByID,
		&q.Status, &q.AdminReply, &q.CreatedAt, &q.ResolvedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	return &q, nil
}
