package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
)

type ClassRepository struct {
	db *sqlx.DB
}

func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.ClassSection, error) {
	const query = `
		SELECT id, school_id, name, section, class_teacher_id, active, created_at, updated_at
		FROM class_sections
		WHERE school_id = $1 AND active = TRUE
		ORDER BY name, section`

	classes := []models.ClassSection{}
	if err := r.db.SelectContext(ctx, &classes, query, schoolID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListSubjects returns the subject ids attached to a class, insertion order.
func (r *ClassRepository) ListSubjects(ctx context.Context, classID string) ([]string, error) {
	const query = `
		SELECT subject_id
		FROM class_subjects
		WHERE class_id = $1
		ORDER BY created_at, subject_id`

	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, classID); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return ids, nil
}

// AddSubject attaches a subject to a class. Re-adding is a no-op.
func (r *ClassRepository) AddSubject(ctx context.Context, classID, subjectID string) error {
	const query = `
		INSERT INTO class_subjects (class_id, subject_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (class_id, subject_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, classID, subjectID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add class subject: %w", err)
	}
	return nil
}
