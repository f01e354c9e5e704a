package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
)

type TeacherRepository struct {
	db *sqlx.DB
}

func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

func (r *TeacherRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Teacher, error) {
	const query = `
		SELECT id, school_id, full_name, email, specialism, is_class_teacher,
		       class_teacher_grade, class_teacher_section, active, created_at, updated_at
		FROM teachers
		WHERE school_id = $1 AND active = TRUE
		ORDER BY full_name`

	teachers := []models.Teacher{}
	if err := r.db.SelectContext(ctx, &teachers, query, schoolID); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `
		SELECT id, school_id, full_name, email, specialism, is_class_teacher,
		       class_teacher_grade, class_teacher_section, active, created_at, updated_at
		FROM teachers
		WHERE id = $1`

	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find teacher by id: %w", err)
	}
	return &teacher, nil
}
