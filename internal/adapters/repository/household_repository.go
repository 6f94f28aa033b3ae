package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/ports"
)

// HouseholdRepositoryImpl implements the HouseholdRepository interface
type HouseholdRepositoryImpl struct {
	db *sqlx.DB
}

// NewHouseholdRepository creates a new household repository
func NewHouseholdRepository(db *sqlx.DB) ports.HouseholdRepository {
	return &HouseholdRepositoryImpl{db: db}
}

func (r *HouseholdRepositoryImpl) Create(ctx context.Context, household *entities.Household) error {
	query := `
		INSERT INTO households (name, invite_code)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		household.Name, household.InviteCode,
	).Scan(&household.ID, &household.CreatedAt, &household.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create household: %w", err)
	}

	return nil
}

func (r *HouseholdRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Household, error) {
	query := `
		SELECT id, name, invite_code, created_at, updated_at
		FROM households
		WHERE id = $1`

	var household entities.Household
	err := r.db.GetContext(ctx, &household, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrHouseholdNotFound
		}
		return nil, fmt.Errorf("get household by id: %w", err)
	}

	return &household, nil
}

func (r *HouseholdRepositoryImpl) GetByInviteCode(ctx context.Context, code string) (*entities.Household, error) {
	query := `
		SELECT id, name, invite_code, created_at, updated_at
		FROM households
		WHERE invite_code = $1`

	var household entities.Household
	err := r.db.GetContext(ctx, &household, query, code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrHouseholdNotFound
		}
		return nil, fmt.Errorf("get household by invite code: %w", err)
	}

	return &household, nil
}

func (r *HouseholdRepositoryImpl) Update(ctx context.Context, household *entities.Household) error {
	query := `
		UPDATE households
		SET name = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		household.ID, household.Name,
	).Scan(&household.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrHouseholdNotFound
		}
		return fmt.Errorf("update household: %w", err)
	}

	return nil
}

func (r *HouseholdRepositoryImpl) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM households WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrHouseholdNotFound
	}

	return nil
}

func (r *HouseholdRepositoryImpl) List(ctx context.Context, filter ports.HouseholdFilter) ([]*entities.Household, error) {
	query := `
		SELECT id, name, invite_code, created_at, updated_at
		FROM households
		WHERE ($1::text IS NULL OR name ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var households []*entities.Household
	err := r.db.SelectContext(ctx, &households, query, filter.Search, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}

	return households, nil
}

func (r *HouseholdRepositoryImpl) Connect(ctx context.Context, householdID, connectedHouseholdID int64) error {
	// Connections are symmetric; one row per direction keeps lookups simple.
	query := `
		INSERT INTO household_connections (household_id, connected_household_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT (household_id, connected_household_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, householdID, connectedHouseholdID); err != nil {
		return fmt.Errorf("connect households: %w", err)
	}

	return nil
}

func (r *HouseholdRepositoryImpl) Disconnect(ctx context.Context, householdID, connectedHouseholdID int64) error {
	query := `
		DELETE FROM household_connections
		WHERE (household_id = $1 AND connected_household_id = $2)
		   OR (household_id = $2 AND connected_household_id = $1)`

	if _, err := r.db.ExecContext(ctx, query, householdID, connectedHouseholdID); err != nil {
		return fmt.Errorf("disconnect households: %w", err)
	}

	return nil
}

func (r *HouseholdRepositoryImpl) GetConnections(ctx context.Context, householdID int64) ([]entities.HouseholdConnection, error) {
	query := `
		SELECT id, household_id, connected_household_id, created_at
		FROM household_connections
		WHERE household_id = $1
		ORDER BY created_at`

	var connections []entities.HouseholdConnection
	err := r.db.SelectContext(ctx, &connections, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("get household connections: %w", err)
	}

	return connections, nil
}

func (r *HouseholdRepositoryImpl) AreConnected(ctx context.Context, householdID, otherHouseholdID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM household_connections
			WHERE household_id = $1 AND connected_household_id = $2
		)`

	var connected bool
	err := r.db.GetContext(ctx, &connected, query, householdID, otherHouseholdID)
	if err != nil {
		return false, fmt.Errorf("check household connection: %w", err)
	}

	return connected, nil
}
