package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/HummaSaeed/TimeTableManager/internal/models"
)

type SubstitutionRepository struct {
	db *sqlx.DB
}

func NewSubstitutionRepository(db *sqlx.DB) *SubstitutionRepository {
	return &SubstitutionRepository{db: db}
}

func (r *SubstitutionRepository) Create(ctx context.Context, exec sqlx.ExtContext, record *models.SubstitutionRecord) error {
	const query = `
		INSERT INTO substitution_records
			(id, school_id, slot_id, original_teacher_id, substitute_teacher_id, date, reason, created_at)
		VALUES (:id, :school_id, :slot_id, :original_teacher_id, :substitute_teacher_id, :date, :reason, :created_at)`

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now().UTC()

	if _, err := sqlx.NamedExecContext(ctx, exec, query, record); err != nil {
		return fmt.Errorf("create substitution record: %w", err)
	}
	return nil
}
