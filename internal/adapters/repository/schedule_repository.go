package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/infrastructure/database"
	"github.com/choreboard/core/internal/ports"
)

// ScheduleRepositoryImpl implements the ScheduleRepository interface.
//
// A schedule is stored across three tables: occurrences, occurrence_members
// and occurrence_items. List order is chronological and not derivable from
// occurrence numbers, so each row carries an explicit sort_index. Replace
// rewrites all three tables for the chore in one transaction.
type ScheduleRepositoryImpl struct {
	db *database.DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *database.DB) ports.ScheduleRepository {
	return &ScheduleRepositoryImpl{db: db}
}

func (r *ScheduleRepositoryImpl) GetByChore(ctx context.Context, choreID int64) (entities.Schedule, error) {
	query := `
		SELECT occurrence_number, kind, notes, is_skipped, special_name, special_date
		FROM occurrences
		WHERE chore_id = $1
		ORDER BY sort_index`

	var occurrences []entities.Occurrence
	err := r.db.DB.SelectContext(ctx, &occurrences, query, choreID)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	memberQuery := `
		SELECT occurrence_number, position, member_id
		FROM occurrence_members
		WHERE chore_id = $1
		ORDER BY occurrence_number, position`

	var memberRows []struct {
		Number   int   `db:"occurrence_number"`
		Position int   `db:"position"`
		MemberID int64 `db:"member_id"`
	}
	if err := r.db.DB.SelectContext(ctx, &memberRows, memberQuery, choreID); err != nil {
		return nil, fmt.Errorf("get schedule members: %w", err)
	}

	itemQuery := `
		SELECT om.occurrence_number, om.item_id, i.name AS item_name
		FROM occurrence_items om
		JOIN items i ON i.id = om.item_id
		WHERE om.chore_id = $1
		ORDER BY om.occurrence_number, om.item_id`

	var itemRows []struct {
		Number   int    `db:"occurrence_number"`
		ItemID   int64  `db:"item_id"`
		ItemName string `db:"item_name"`
	}
	if err := r.db.DB.SelectContext(ctx, &itemRows, itemQuery, choreID); err != nil {
		return nil, fmt.Errorf("get schedule items: %w", err)
	}

	schedule := entities.Schedule(occurrences)
	for _, row := range memberRows {
		if occ := schedule.Find(row.Number); occ != nil {
			occ.Members = append(occ.Members, entities.MemberSlot{
				Position: row.Position,
				MemberID: row.MemberID,
			})
		}
	}
	for _, row := range itemRows {
		if occ := schedule.Find(row.Number); occ != nil {
			occ.Items = append(occ.Items, entities.OccurrenceItem{
				ItemID:   row.ItemID,
				ItemName: row.ItemName,
			})
		}
	}

	return schedule, nil
}

func (r *ScheduleRepositoryImpl) Replace(ctx context.Context, choreID int64, schedule entities.Schedule) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"occurrence_members", "occurrence_items", "occurrences"} {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE chore_id = $1", table), choreID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for i, occ := range schedule {
			if err := insertOccurrence(ctx, tx, choreID, i, occ); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *ScheduleRepositoryImpl) Append(ctx context.Context, choreID int64, occurrence entities.Occurrence) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var next int
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(sort_index) + 1, 0) FROM occurrences WHERE chore_id = $1`,
			choreID,
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("next sort index: %w", err)
		}

		return insertOccurrence(ctx, tx, choreID, next, occurrence)
	})
}

func (r *ScheduleRepositoryImpl) LinkItem(ctx context.Context, choreID int64, occurrenceNumber int, itemID int64) error {
	query := `
		INSERT INTO occurrence_items (chore_id, occurrence_number, item_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (chore_id, occurrence_number, item_id) DO NOTHING`

	if _, err := r.db.DB.ExecContext(ctx, query, choreID, occurrenceNumber, itemID); err != nil {
		return fmt.Errorf("link occurrence item: %w", err)
	}

	return nil
}

func (r *ScheduleRepositoryImpl) UnlinkItem(ctx context.Context, choreID int64, occurrenceNumber int, itemID int64) error {
	query := `
		DELETE FROM occurrence_items
		WHERE chore_id = $1 AND occurrence_number = $2 AND item_id = $3`

	if _, err := r.db.DB.ExecContext(ctx, query, choreID, occurrenceNumber, itemID); err != nil {
		return fmt.Errorf("unlink occurrence item: %w", err)
	}

	return nil
}

func insertOccurrence(ctx context.Context, tx *sqlx.Tx, choreID int64, sortIndex int, occ entities.Occurrence) error {
	query := `
		INSERT INTO occurrences (chore_id, occurrence_number, sort_index, kind, notes, is_skipped, special_name, special_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.ExecContext(ctx, query,
		choreID, occ.Number, sortIndex, occ.Kind, occ.Notes, occ.Skipped,
		occ.SpecialName, occ.SpecialDate,
	)
	if err != nil {
		return fmt.Errorf("insert occurrence %d: %w", occ.Number, err)
	}

	for _, slot := range occ.Members {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO occurrence_members (chore_id, occurrence_number, position, member_id)
			 VALUES ($1, $2, $3, $4)`,
			choreID, occ.Number, slot.Position, slot.MemberID,
		)
		if err != nil {
			return fmt.Errorf("insert occurrence member: %w", err)
		}
	}

	for _, item := range occ.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO occurrence_items (chore_id, occurrence_number, item_id)
			 VALUES ($1, $2, $3)`,
			choreID, occ.Number, item.ItemID,
		)
		if err != nil {
			return fmt.Errorf("insert occurrence item: %w", err)
		}
	}

	return nil
}
