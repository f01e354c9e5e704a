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

type SubjectRepository struct {
	db *sqlx.DB
}

func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Subject, error) {
	const query = `
		SELECT id, school_id, name, code, active, created_at, updated_at
		FROM subjects
		WHERE school_id = $1 AND active = TRUE
		ORDER BY name`

	subjects := []models.Subject{}
	if err := r.db.SelectContext(ctx, &subjects, query, schoolID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

func (r *SubjectRepository) FindByName(ctx context.Context, schoolID, name string) (*models.Subject, error) {
	const query = `
		SELECT id, school_id, name, code, active, created_at, updated_at
		FROM subjects
		WHERE school_id = $1 AND LOWER(name) = LOWER($2)`

	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, schoolID, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find subject by name: %w", err)
	}
	return &subject, nil
}

func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	const query = `
		INSERT INTO subjects (id, school_id, name, code, active, created_at, updated_at)
		VALUES (:id, :school_id, :name, :code, :active, :created_at, :updated_at)`

	now := time.Now().UTC()
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	subject.Active = true
	subject.CreatedAt = now
	subject.UpdatedAt = now

	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}
