package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// JobRepository encapsulates job persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id int64) (*domain.Job, error)
	Delete(ctx context.Context, id int64) error
	// Complete performs the ACTIVE -> PAYMENT_REQUIRED transition atomically,
	// setting the proof photo, collector and finish time in one statement.
	// Returns pgx.ErrNoRows when the job is missing or not ACTIVE.
	Complete(ctx context.Context, id int64, collectorMobile, proofURL string) (*domain.Job, error)
	ListActive(ctx context.Context) ([]domain.Job, error)
	ListPostedBy(ctx context.Context, mobile string) ([]domain.Job, error)
	ListCollectedBy(ctx context.Context, mobile string) ([]domain.Job, error)
}

type jobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository instantiates repository.
func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

const jobColumns = `j.id, j.description, j.location, j.cost, j.job_photo, j.job_photo_done,
       j.status, j.posted_by_id, j.finished_by_id, j.created_at, j.finished_at`

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (description, location, cost, job_photo, status, posted_by_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		job.Description,
		job.Location,
		job.Cost,
		job.JobPhoto,
		job.Status,
		job.PostedByID,
	).Scan(&job.ID, &job.CreatedAt)
}

func (r *jobRepository) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.id=$1`
	var job domain.Job
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.Description,
		&job.Location,
		&job.Cost,
		&job.JobPhoto,
		&job.JobPhotoDone,
		&job.Status,
		&job.PostedByID,
		&job.FinishedByID,
		&job.CreatedAt,
		&job.FinishedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) Complete(ctx context.Context, id int64, collectorMobile, proofURL string) (*domain.Job, error) {
	const query = `
        UPDATE jobs j SET status=$1, job_photo_done=$2, finished_by_id=$3, finished_at=NOW()
        WHERE j.id=$4 AND j.status=$5
        RETURNING ` + jobColumns
	var job domain.Job
	if err := r.pool.QueryRow(ctx, query,
		domain.JobStatusPaymentRequired,
		proofURL,
		collectorMobile,
		id,
		domain.JobStatusActive,
	).Scan(
		&job.ID,
		&job.Description,
		&job.Location,
		&job.Cost,
		&job.JobPhoto,
		&job.JobPhotoDone,
		&job.Status,
		&job.PostedByID,
		&job.FinishedByID,
		&job.CreatedAt,
		&job.FinishedAt,
	); err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) ListActive(ctx context.Context) ([]domain.Job, error) {
	query := `
        SELECT ` + jobColumns + `, u.name, u.mobile, u.image
        FROM jobs j JOIN users u ON u.mobile = j.posted_by_id
        WHERE j.status=$1
        ORDER BY j.created_at DESC`
	return r.list(ctx, query, "posted_by", domain.JobStatusActive)
}

func (r *jobRepository) ListPostedBy(ctx context.Context, mobile string) ([]domain.Job, error) {
	query := `
        SELECT ` + jobColumns + `, u.name, u.mobile, u.image
        FROM jobs j LEFT JOIN users u ON u.mobile = j.finished_by_id
        WHERE j.posted_by_id=$1
        ORDER BY j.created_at DESC`
	return r.list(ctx, query, "finished_by", mobile)
}

func (r *jobRepository) ListCollectedBy(ctx context.Context, mobile string) ([]domain.Job, error) {
	query := `
        SELECT ` + jobColumns + `, u.name, u.mobile, u.image
        FROM jobs j JOIN users u ON u.mobile = j.posted_by_id
        WHERE j.finished_by_id=$1
        ORDER BY j.finished_at DESC`
	return r.list(ctx, query, "posted_by", mobile)
}

func (r *jobRepository) list(ctx context.Context, query, join string, arg any) ([]domain.Job, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Job
	for rows.Next() {
		var job domain.Job
		var name, mobile *string
		var image *string
		if err := rows.Scan(
			&job.ID,
			&job.Description,
			&job.Location,
			&job.Cost,
			&job.JobPhoto,
			&job.JobPhotoDone,
			&job.Status,
			&job.PostedByID,
			&job.FinishedByID,
			&job.CreatedAt,
			&job.FinishedAt,
			&name,
			&mobile,
			&image,
		); err != nil {
			return nil, err
		}
		if name != nil && mobile != nil {
			summary := &domain.UserSummary{Name: *name, Mobile: *mobile, Image: image}
			if join == "posted_by" {
				job.PostedBy = summary
			} else {
				job.FinishedBy = summary
			}
		}
		result = append(result, job)
	}
	return result, rows.Err()
}
