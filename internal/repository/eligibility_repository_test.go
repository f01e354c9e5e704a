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

func newEligibilityMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEligibilityRepositoryListBySchool(t *testing.T) {
	db, mock, cleanup := newEligibilityMock(t)
	defer cleanup()
	repo := NewEligibilityRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "teacher_id", "subject_id", "is_primary", "max_periods_per_week",
		"created_at", "teacher_name", "subject_name",
	}).
		AddRow("elig-1", "teacher-1", "subject-1", true, 8, time.Now(), "Ayesha Khan", "Mathematics").
		AddRow("elig-2", "teacher-1", "subject-2", false, 8, time.Now(), "Ayesha Khan", "Islamiat")
	mock.ExpectQuery("FROM teacher_subject_eligibility e").
		WithArgs("school-1").
		WillReturnRows(rows)

	list, err := repo.ListBySchool(context.Background(), "school-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Mathematics", list[0].SubjectName)
	assert.True(t, list[0].IsPrimary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEligibilityRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newEligibilityMock(t)
	defer cleanup()
	repo := NewEligibilityRepository(db)

	mock.ExpectExec("INSERT INTO teacher_subject_eligibility").
		WillReturnResult(sqlmock.NewResult(0, 1))

	row := &models.TeacherSubjectEligibility{
		TeacherID: "teacher-1",
		SubjectID: "subject-1",
		IsPrimary: true,
	}
	require.NoError(t, repo.Upsert(context.Background(), row))
	assert.NotEmpty(t, row.ID)
	assert.False(t, row.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEligibilityRepositoryUpsertConflictIsSilent(t *testing.T) {
	db, mock, cleanup := newEligibilityMock(t)
	defer cleanup()
	repo := NewEligibilityRepository(db)

	// ON CONFLICT DO NOTHING reports zero rows affected, not an error.
	mock.ExpectExec("INSERT INTO teacher_subject_eligibility").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Upsert(context.Background(), &models.TeacherSubjectEligibility{
		TeacherID: "teacher-1",
		SubjectID: "subject-1",
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEligibilityRepositoryListTeachersForSubject(t *testing.T) {
	db, mock, cleanup := newEligibilityMock(t)
	defer cleanup()
	repo := NewEligibilityRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "school_id", "full_name", "email", "specialism", "is_class_teacher",
		"class_teacher_grade", "class_teacher_section", "active", "created_at", "updated_at",
	}).
		AddRow("teacher-1", "school-1", "Ayesha Khan", "ayesha@example.com", "Mathematics", false, nil, nil, true, now, now).
		AddRow("teacher-2", "school-1", "Bilal Ahmed", "bilal@example.com", "Math", true, 5, "A", true, now, now)
	mock.ExpectQuery("JOIN teacher_subject_eligibility e").
		WithArgs("school-1", "subject-1").
		WillReturnRows(rows)

	teachers, err := repo.ListTeachersForSubject(context.Background(), "school-1", "subject-1")
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	assert.Equal(t, "Ayesha Khan", teachers[0].FullName)
	assert.Equal(t, "Bilal Ahmed", teachers[1].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
