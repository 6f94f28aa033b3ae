package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/ports"
)

// ItemRepositoryImpl implements the ItemRepository interface
type ItemRepositoryImpl struct {
	db *sqlx.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *sqlx.DB) ports.ItemRepository {
	return &ItemRepositoryImpl{db: db}
}

func (r *ItemRepositoryImpl) Create(ctx context.Context, item *entities.Item) error {
	query := `
		INSERT INTO items (household_id, name, description, is_lendable)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		item.HouseholdID, item.Name, item.Description, item.IsLendable,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	return nil
}

func (r *ItemRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Item, error) {
	query := `
		SELECT id, household_id, name, description, is_lendable, created_at, updated_at, deleted_at
		FROM items
		WHERE id = $1 AND deleted_at IS NULL`

	var item entities.Item
	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item by id: %w", err)
	}

	return &item, nil
}

func (r *ItemRepositoryImpl) Update(ctx context.Context, item *entities.Item) error {
	query := `
		UPDATE items
		SET name = $2, description = $3, is_lendable = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		item.ID, item.Name, item.Description, item.IsLendable,
	).Scan(&item.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrItemNotFound
		}
		return fmt.Errorf("update item: %w", err)
	}

	return nil
}

func (r *ItemRepositoryImpl) Delete(ctx context.Context, id int64) error {
	query := `UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrItemNotFound
	}

	return nil
}

func (r *ItemRepositoryImpl) ListByHousehold(ctx context.Context, householdID int64) ([]*entities.Item, error) {
	query := `
		SELECT id, household_id, name, description, is_lendable, created_at, updated_at, deleted_at
		FROM items
		WHERE household_id = $1 AND deleted_at IS NULL
		ORDER BY name`

	var items []*entities.Item
	err := r.db.SelectContext(ctx, &items, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return items, nil
}
