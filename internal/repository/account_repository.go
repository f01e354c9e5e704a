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

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.SchoolAccount, error) {
	const query = `
		SELECT id, school_id, email, password_hash, active, created_at, updated_at
		FROM school_accounts
		WHERE LOWER(email) = LOWER($1)`

	var account models.SchoolAccount
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &account, nil
}
