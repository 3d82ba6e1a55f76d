// internal/repository/interfaces.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"print-service/internal/model"
)

// SettingsRepository defines print settings data access operations
type SettingsRepository interface {
	Get(ctx context.Context) (*model.PrintSettings, error)
	Save(ctx context.Context, settings *model.PrintSettings) error
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
}

// JobRepository defines print job audit data access operations
type JobRepository interface {
	Create(ctx context.Context, job *model.PrintJob) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.JobStatus, attempt int, jobErr string) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PrintJob, error)
	ListByOrder(ctx context.Context, orderNumber string) ([]*model.PrintJob, error)
	ListRecent(ctx context.Context, limit int) ([]*model.PrintJob, error)
	GetJobStats(ctx context.Context, since time.Time) (*JobStats, error)
	DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error)
}

// JobStats summarizes job outcomes over a period
type JobStats struct {
	Total   int `json:"total"`
	Printed int `json:"printed"`
	Failed  int `json:"failed"`
	Queued  int `json:"queued"`
}
