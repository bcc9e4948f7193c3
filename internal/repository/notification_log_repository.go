package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// NotificationLogRepository records delivery attempts for operator visibility.
type NotificationLogRepository interface {
	Create(ctx context.Context, log *domain.NotificationLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.NotificationLog, error)
}

type notificationLogRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationLogRepository instantiates repository.
func NewNotificationLogRepository(pool *pgxpool.Pool) NotificationLogRepository {
	return &notificationLogRepository{pool: pool}
}

func (r *notificationLogRepository) Create(ctx context.Context, log *domain.NotificationLog) error {
	const query = `
        INSERT INTO notification_logs (channel, target, title, body, status, error)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, sent_at`
	return r.pool.QueryRow(ctx, query,
		log.Channel,
		log.Target,
		log.Title,
		log.Body,
		log.Status,
		log.Error,
	).Scan(&log.ID, &log.SentAt)
}

func (r *notificationLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.NotificationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, channel, target, title, body, status, error, sent_at
         FROM notification_logs ORDER BY sent_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.NotificationLog
	for rows.Next() {
		var log domain.NotificationLog
		if err := rows.Scan(&log.ID, &log.Channel, &log.Target, &log.Title, &log.Body,
			&log.Status, &log.Error, &log.SentAt); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
