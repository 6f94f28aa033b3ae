package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/ports"
)

// ActivityRepositoryImpl implements the append-only ActivityRepository
type ActivityRepositoryImpl struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *sqlx.DB) ports.ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

func (r *ActivityRepositoryImpl) Append(ctx context.Context, entry *entities.ActivityEntry) error {
	query := `
		INSERT INTO activity_log (id, household_id, member_id, action, subject, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.HouseholdID, entry.MemberID, entry.Action, entry.Subject, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}

	return nil
}

func (r *ActivityRepositoryImpl) ListByHousehold(ctx context.Context, householdID int64, filter ports.ActivityFilter) ([]*entities.ActivityEntry, error) {
	query := `
		SELECT id, household_id, member_id, action, subject, created_at
		FROM activity_log
		WHERE household_id = $1
			AND ($2::bigint IS NULL OR member_id = $2)
			AND ($3::text IS NULL OR action = $3)
			AND ($4::timestamptz IS NULL OR created_at >= $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var entries []*entities.ActivityEntry
	err := r.db.SelectContext(ctx, &entries, query,
		householdID, filter.MemberID, filter.Action, filter.Since, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	return entries, nil
}
