package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
)

type AbsenceRepository struct {
	db *sqlx.DB
}

func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

// Exists reports whether the teacher is already marked absent on the date.
func (r *AbsenceRepository) Exists(ctx context.Context, teacherID string, date time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM teacher_absences
			WHERE teacher_id = $1 AND date = $2
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, teacherID, date); err != nil {
		return false, fmt.Errorf("check absence exists: %w", err)
	}
	return exists, nil
}

func (r *AbsenceRepository) Create(ctx context.Context, exec sqlx.ExtContext, absence *models.TeacherAbsence) error {
	const query = `
		INSERT INTO teacher_absences (id, school_id, teacher_id, date, reason, created_at)
		VALUES (:id, :school_id, :teacher_id, :date, :reason, :created_at)`

	if absence.ID == "" {
		absence.ID = uuid.NewString()
	}
	absence.CreatedAt = time.Now().UTC()

	if _, err := sqlx.NamedExecContext(ctx, exec, query, absence); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}
