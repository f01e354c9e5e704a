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
)

func newAbsenceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAbsenceRepositoryExists(t *testing.T) {
	db, mock, cleanup := newAbsenceMock(t)
	defer cleanup()
	repo := NewAbsenceRepository(db)

	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("teacher-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.Exists(context.Background(), "teacher-1", date)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAbsenceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAbsenceMock(t)
	defer cleanup()
	repo := NewAbsenceRepository(db)

	mock.ExpectExec("INSERT INTO teacher_absences").
		WillReturnResult(sqlmock.NewResult(0, 1))

	absence := &models.TeacherAbsence{
		SchoolID:  "school-1",
		TeacherID: "teacher-1",
		Date:      time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Reason:    "sick leave",
	}
	require.NoError(t, repo.Create(context.Background(), db, absence))
	assert.NotEmpty(t, absence.ID)
	assert.False(t, absence.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAbsenceMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectExec("INSERT INTO substitution_records").
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.SubstitutionRecord{
		SchoolID:            "school-1",
		SlotID:              "slot-1",
		OriginalTeacherID:   "teacher-1",
		SubstituteTeacherID: "teacher-2",
		Date:                time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), db, record))
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
