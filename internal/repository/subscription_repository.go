package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// SubscriptionRepository stores browser push subscriptions.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *domain.Subscription) error
	List(ctx context.Context) ([]domain.Subscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository instantiates repository.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

func (r *subscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	const query = `
        INSERT INTO subscriptions (endpoint, p256dh, auth)
        VALUES ($1,$2,$3)
        ON CONFLICT (endpoint) DO UPDATE SET p256dh=EXCLUDED.p256dh, auth=EXCLUDED.auth, updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, sub.Endpoint, sub.P256dh, sub.Auth).
		Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

func (r *subscriptionRepository) List(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, endpoint, p256dh, auth, created_at, updated_at FROM subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(&sub.ID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

// DeleteByEndpoint drops a dead endpoint. Deleting a row that is already gone
// is not an error; pruning is reactive and may race with itself.
func (r *subscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM subscriptions WHERE endpoint=$1`, endpoint)
	return err
}
