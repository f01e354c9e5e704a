package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
)

type ExportJobRepository struct {
	db *sqlx.DB
}

func NewExportJobRepository(db *sqlx.DB) *ExportJobRepository {
	return &ExportJobRepository{db: db}
}

func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	const query = `
		INSERT INTO export_jobs (id, school_id, academic_year, format, status, created_at, updated_at)
		VALUES (:id, :school_id, :academic_year, :format, :status, :created_at, :updated_at)`

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportJobQueued
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

func (r *ExportJobRepository) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	const query = `
		SELECT id, school_id, academic_year, format, status, file_path,
		       download_token, error_message, expires_at, created_at, updated_at
		FROM export_jobs
		WHERE id = $1`

	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find export job by id: %w", err)
	}
	return &job, nil
}

// MarkProcessing flags the job as picked up by a worker.
func (r *ExportJobRepository) MarkProcessing(ctx context.Context, id string) error {
	const query = `
		UPDATE export_jobs
		SET status = $1, updated_at = $2
		WHERE id = $3`

	if _, err := r.db.ExecContext(ctx, query, models.ExportJobProcessing, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("mark export job processing: %w", err)
	}
	return nil
}

// MarkDone records the rendered file and its signed download token.
func (r *ExportJobRepository) MarkDone(ctx context.Context, id, filePath, token string, expiresAt time.Time) error {
	const query = `
		UPDATE export_jobs
		SET status = $1, file_path = $2, download_token = $3, expires_at = $4,
		    error_message = NULL, updated_at = $5
		WHERE id = $6`

	if _, err := r.db.ExecContext(ctx, query, models.ExportJobDone, filePath, token, expiresAt, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("mark export job done: %w", err)
	}
	return nil
}

// MarkFailed stores the failure reason for the job.
func (r *ExportJobRepository) MarkFailed(ctx context.Context, id, message string) error {
	const query = `
		UPDATE export_jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4`

	if _, err := r.db.ExecContext(ctx, query, models.ExportJobFailed, message, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("mark export job failed: %w", err)
	}
	return nil
}
