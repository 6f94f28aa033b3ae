package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/ports"
)

// ChoreRepositoryImpl implements the ChoreRepository interface
type ChoreRepositoryImpl struct {
	db *sqlx.DB
}

// NewChoreRepository creates a new chore repository
func NewChoreRepository(db *sqlx.DB) ports.ChoreRepository {
	return &ChoreRepositoryImpl{db: db}
}

func (r *ChoreRepositoryImpl) Create(ctx context.Context, chore *entities.Chore) error {
	query := `
		INSERT INTO chores (household_id, name, description, required_persons,
			recur_interval, recur_unit, monthly_mode, monthly_weekday, monthly_occurrence, anchor_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		chore.HouseholdID, chore.Name, chore.Description, chore.RequiredPersons,
		chore.Interval, chore.Unit, chore.MonthlyMode,
		chore.MonthlyWeekday, chore.MonthlyOccurrence, chore.AnchorDate,
	).Scan(&chore.ID, &chore.CreatedAt, &chore.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create chore: %w", err)
	}

	return nil
}

func (r *ChoreRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Chore, error) {
	query := `
		SELECT id, household_id, name, description, required_persons,
			recur_interval, recur_unit, monthly_mode, monthly_weekday, monthly_occurrence,
			anchor_date, created_at, updated_at, deleted_at
		FROM chores
		WHERE id = $1 AND deleted_at IS NULL`

	var chore entities.Chore
	err := r.db.GetContext(ctx, &chore, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrChoreNotFound
		}
		return nil, fmt.Errorf("get chore by id: %w", err)
	}

	return &chore, nil
}

func (r *ChoreRepositoryImpl) Update(ctx context.Context, chore *entities.Chore) error {
	query := `
		UPDATE chores
		SET name = $2, description = $3, required_persons = $4,
			recur_interval = $5, recur_unit = $6, monthly_mode = $7,
			monthly_weekday = $8, monthly_occurrence = $9, anchor_date = $10,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		chore.ID, chore.Name, chore.Description, chore.RequiredPersons,
		chore.Interval, chore.Unit, chore.MonthlyMode,
		chore.MonthlyWeekday, chore.MonthlyOccurrence, chore.AnchorDate,
	).Scan(&chore.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrChoreNotFound
		}
		return fmt.Errorf("update chore: %w", err)
	}

	return nil
}

func (r *ChoreRepositoryImpl) Delete(ctx context.Context, id int64) error {
	query := `UPDATE chores SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrChoreNotFound
	}

	return nil
}

func (r *ChoreRepositoryImpl) ListByHousehold(ctx context.Context, householdID int64, filter ports.ChoreFilter) ([]*entities.Chore, error) {
	query := `
		SELECT id, household_id, name, description, required_persons,
			recur_interval, recur_unit, monthly_mode, monthly_weekday, monthly_occurrence,
			anchor_date, created_at, updated_at, deleted_at
		FROM chores
		WHERE household_id = $1 AND deleted_at IS NULL
			AND ($2::text IS NULL OR recur_unit = $2)
			AND ($3::text IS NULL OR name ILIKE '%' || $3 || '%')
		ORDER BY id
		LIMIT $4 OFFSET $5`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var chores []*entities.Chore
	err := r.db.SelectContext(ctx, &chores, query, householdID, filter.Unit, filter.Search, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}

	return chores, nil
}
