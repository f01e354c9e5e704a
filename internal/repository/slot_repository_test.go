package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
)

func newSlotMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSlotRepositoryDeleteByScope(t *testing.T) {
	db, mock, cleanup := newSlotMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectExec("DELETE FROM timetable_slots").
		WithArgs("school-1", "2026-2027").
		WillReturnResult(sqlmock.NewResult(0, 30))

	require.NoError(t, repo.DeleteByScope(context.Background(), db, "school-1", "2026-2027"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryBulkInsertAssignsIDs(t *testing.T) {
	db, mock, cleanup := newSlotMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectExec("INSERT INTO timetable_slots").
		WillReturnResult(sqlmock.NewResult(0, 2))

	subject := "subject-1"
	teacher := "teacher-1"
	slots := []models.TimetableSlot{
		{SchoolID: "school-1", ClassID: "class-1", SubjectID: &subject, TeacherID: &teacher,
			Day: "Monday", Period: 1, AcademicYear: "2026-2027"},
		{SchoolID: "school-1", ClassID: "class-1", Day: "Monday", Period: 2,
			AcademicYear: "2026-2027", IsBreak: true},
	}

	require.NoError(t, repo.BulkInsert(context.Background(), db, slots))
	for _, slot := range slots {
		assert.NotEmpty(t, slot.ID)
		assert.True(t, slot.Active)
		assert.False(t, slot.CreatedAt.IsZero())
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryBulkInsertSkipsEmptyBatch(t *testing.T) {
	db, mock, cleanup := newSlotMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	require.NoError(t, repo.BulkInsert(context.Background(), db, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryHasSlots(t *testing.T) {
	db, mock, cleanup := newSlotMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("school-1", "2026-2027").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasSlots(context.Background(), "school-1", "2026-2027")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListByTeacherDay(t *testing.T) {
	db, mock, cleanup := newSlotMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "school_id", "class_id", "subject_id", "teacher_id", "day", "period",
		"academic_year", "is_break", "break_name", "start_time", "end_time",
		"active", "created_at", "updated_at",
		"class_name", "section", "subject_name", "teacher_name",
	}).AddRow(
		"slot-1", "school-1", "class-1", "subject-1", "teacher-1", "Monday", 1,
		"2026-2027", false, nil, "08:15", "08:55",
		true, now, now,
		"Grade 5", "A", "Mathematics", "Ayesha Khan",
	)
	mock.ExpectQuery("FROM timetable_slots sl").
		WithArgs("school-1", "teacher-1", "Monday").
		WillReturnRows(rows)

	slots, err := repo.ListByTeacherDay(context.Background(), "school-1", "teacher-1", "Monday")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "Grade 5", slots[0].ClassName)
	require.NotNil(t, slots[0].SubjectName)
	assert.Equal(t, "Mathematics", *slots[0].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryListTeacherIDsAt(t *testing.T) {
	db, mock, cleanup := newSlotMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT teacher_id")).
		WithArgs("school-1", "Monday", 3).
		WillReturnRows(sqlmock.NewRows([]string{"teacher_id"}).
			AddRow("teacher-1").
			AddRow("teacher-2"))

	ids, err := repo.ListTeacherIDsAt(context.Background(), "school-1", "Monday", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"teacher-1", "teacher-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryCountByTeacher(t *testing.T) {
	db, mock, cleanup := newSlotMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("school-1", "teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(18))

	count, err := repo.CountByTeacher(context.Background(), "school-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 18, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryUpdateTeacher(t *testing.T) {
	db, mock, cleanup := newSlotMock(t)
	defer cleanup()
	repo := NewSlotRepository(db)

	mock.ExpectExec("UPDATE timetable_slots").
		WithArgs("teacher-2", sqlmock.AnyArg(), "slot-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateTeacher(context.Background(), db, "slot-1", "teacher-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
