package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
)

type EligibilityRepository struct {
	db *sqlx.DB
}

func NewEligibilityRepository(db *sqlx.DB) *EligibilityRepository {
	return &EligibilityRepository{db: db}
}

func (r *EligibilityRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.EligibilityDetail, error) {
	const query = `
		SELECT e.id, e.teacher_id, e.subject_id, e.is_primary, e.max_periods_per_week,
		       e.created_at, t.full_name AS teacher_name, s.name AS subject_name
		FROM teacher_subject_eligibility e
		JOIN teachers t ON t.id = e.teacher_id
		JOIN subjects s ON s.id = e.subject_id
		WHERE t.school_id = $1 AND t.active = TRUE
		ORDER BY t.full_name, s.name`

	rows := []models.EligibilityDetail{}
	if err := r.db.SelectContext(ctx, &rows, query, schoolID); err != nil {
		return nil, fmt.Errorf("list eligibility: %w", err)
	}
	return rows, nil
}

// Upsert inserts an eligibility row unless one already exists for the pair.
// Existing rows keep their configured flags.
func (r *EligibilityRepository) Upsert(ctx context.Context, row *models.TeacherSubjectEligibility) error {
	const query = `
		INSERT INTO teacher_subject_eligibility
			(id, teacher_id, subject_id, is_primary, max_periods_per_week, created_at)
		VALUES (:id, :teacher_id, :subject_id, :is_primary, :max_periods_per_week, :created_at)
		ON CONFLICT (teacher_id, subject_id) DO NOTHING`

	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert eligibility: %w", err)
	}
	return nil
}

// ListTeachersForSubject returns active teachers eligible for a subject,
// ordered by name so substitution picks are stable.
func (r *EligibilityRepository) ListTeachersForSubject(ctx context.Context, schoolID, subjectID string) ([]models.Teacher, error) {
	const query = `
		SELECT t.id, t.school_id, t.full_name, t.email, t.specialism, t.is_class_teacher,
		       t.class_teacher_grade, t.class_teacher_section, t.active, t.created_at, t.updated_at
		FROM teachers t
		JOIN teacher_subject_eligibility e ON e.teacher_id = t.id
		WHERE t.school_id = $1 AND e.subject_id = $2 AND t.active = TRUE
		ORDER BY t.full_name`

	teachers := []models.Teacher{}
	if err := r.db.SelectContext(ctx, &teachers, query, schoolID, subjectID); err != nil {
		return nil, fmt.Errorf("list teachers for subject: %w", err)
	}
	return teachers, nil
}
