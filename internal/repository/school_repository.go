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

type SchoolRepository struct {
	db *sqlx.DB
}

func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	const query = `
		SELECT id, name, code, academic_year, working_days, periods_per_day,
		       period_duration_minutes, assembly_start, assembly_duration_minutes,
		       break_periods, created_at, updated_at
		FROM schools
		WHERE id = $1`

	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find school by id: %w", err)
	}
	return &school, nil
}
