// internal/repository/job_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/database"
	"print-service/internal/model"
)

// jobRepository implements JobRepository interface
type jobRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewJobRepository creates a new print job repository
func NewJobRepository(db *database.DB, logger *zap.Logger) JobRepository {
	return &jobRepository{
		db:     db,
		logger: logger,
	}
}

// Create records a new print job
func (r *jobRepository) Create(ctx context.Context, job *model.PrintJob) error {
	query := `
		INSERT INTO print_jobs (
			id, order_number, role, target, copies, attempt, status, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.OrderNumber, job.Role, job.Target,
		job.Copies, job.Attempt, job.Status, job.Error, job.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create print job", zap.Error(err), zap.String("order_number", job.OrderNumber))
		return fmt.Errorf("failed to create print job: %w", err)
	}
	return nil
}

// UpdateStatus records the outcome of a job attempt
func (r *jobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.JobStatus, attempt int, jobErr string) error {
	query := `UPDATE print_jobs SET status = $2, attempt = $3, error = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, attempt, jobErr)
	if err != nil {
		r.logger.Error("Failed to update print job", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("failed to update print job: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("print job not found with id: %s", id)
	}
	return nil
}

// GetByID retrieves a print job by its UUID
func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	query := `
		SELECT id, order_number, role, target, copies, attempt, status, error, created_at
		FROM print_jobs WHERE id = $1
	`

	job := &model.PrintJob{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.OrderNumber, &job.Role, &job.Target,
		&job.Copies, &job.Attempt, &job.Status, &job.Error, &job.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("print job not found with id %s: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}
	return job, nil
}

// ListByOrder lists every job recorded for an order, oldest first
func (r *jobRepository) ListByOrder(ctx context.Context, orderNumber string) ([]*model.PrintJob, error) {
	query := `
		SELECT id, order_number, role, target, copies, attempt, status, error, created_at
		FROM print_jobs WHERE order_number = $1 ORDER BY created_at ASC
	`
	return r.list(ctx, query, orderNumber)
}

// ListRecent lists the most recent jobs, newest first
func (r *jobRepository) ListRecent(ctx context.Context, limit int) ([]*model.PrintJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, order_number, role, target, copies, attempt, status, error, created_at
		FROM print_jobs ORDER BY created_at DESC LIMIT $1
	`
	return r.list(ctx, query, limit)
}

func (r *jobRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.PrintJob, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list print jobs", zap.Error(err))
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.PrintJob
	for rows.Next() {
		job := &model.PrintJob{}
		if err := rows.Scan(
			&job.ID, &job.OrderNumber, &job.Role, &job.Target,
			&job.Copies, &job.Attempt, &job.Status, &job.Error, &job.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan print job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read print jobs: %w", err)
	}
	return jobs, nil
}

// GetJobStats summarizes outcomes since the given time
func (r *jobRepository) GetJobStats(ctx context.Context, since time.Time) (*JobStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3),
			COUNT(*) FILTER (WHERE status = $4)
		FROM print_jobs WHERE created_at >= $1
	`

	stats := &JobStats{}
	err := r.db.QueryRowContext(ctx, query, since,
		model.JobStatusPrinted, model.JobStatusFailed, model.JobStatusQueued,
	).Scan(&stats.Total, &stats.Printed, &stats.Failed, &stats.Queued)
	if err != nil {
		return nil, fmt.Errorf("failed to get job stats: %w", err)
	}
	return stats, nil
}

// DeleteOldJobs removes jobs older than the cutoff
func (r *jobRepository) DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM print_jobs WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old print jobs: %w", err)
	}

	removed, _ := result.RowsAffected()
	if removed > 0 {
		r.logger.Info("Old print jobs removed", zap.Int64("count", removed))
	}
	return removed, nil
}
