package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
)

func newExportJobMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestExportJobRepositoryCreateAssignsDefaults(t *testing.T) {
	db, mock, cleanup := newExportJobMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	mock.ExpectExec("INSERT INTO export_jobs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := &models.ExportJob{SchoolID: "school-1", AcademicYear: "2026-2027", Format: "csv"}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ExportJobQueued, job.Status)
	assert.False(t, job.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newExportJobMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "school_id", "academic_year", "format", "status", "file_path",
		"download_token", "error_message", "expires_at", "created_at", "updated_at",
	}).AddRow("job-1", "school-1", "2026-2027", "pdf", models.ExportJobQueued,
		nil, nil, nil, nil, created, created)

	mock.ExpectQuery("SELECT (.+) FROM export_jobs").
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := repo.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "school-1", job.SchoolID)
	assert.Equal(t, "pdf", job.Format)
	assert.Nil(t, job.FilePath)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newExportJobMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM export_jobs").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound.Code, apperrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryMarkDone(t *testing.T) {
	db, mock, cleanup := newExportJobMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	expires := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE export_jobs").
		WithArgs(models.ExportJobDone, "2026/timetable.csv", "token-1", expires, sqlmock.AnyArg(), "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkDone(context.Background(), "job-1", "2026/timetable.csv", "token-1", expires))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryMarkFailed(t *testing.T) {
	db, mock, cleanup := newExportJobMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	mock.ExpectExec("UPDATE export_jobs").
		WithArgs(models.ExportJobFailed, "render exploded", sqlmock.AnyArg(), "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), "job-1", "render exploded"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
