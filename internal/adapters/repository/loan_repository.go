package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/ports"
)

// LoanRepositoryImpl implements the LoanRepository interface
type LoanRepositoryImpl struct {
	db *sqlx.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *sqlx.DB) ports.LoanRepository {
	return &LoanRepositoryImpl{db: db}
}

func (r *LoanRepositoryImpl) Create(ctx context.Context, loan *entities.Loan) error {
	query := `
		INSERT INTO loans (item_id, lender_household_id, borrower_household_id, status, notes, due_date, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		loan.ItemID, loan.LenderHouseholdID, loan.BorrowerHouseholdID,
		loan.Status, loan.Notes, loan.DueDate, loan.RequestedAt,
	).Scan(&loan.ID)

	if err != nil {
		return fmt.Errorf("create loan: %w", err)
	}

	return nil
}

func (r *LoanRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Loan, error) {
	query := `
		SELECT id, item_id, lender_household_id, borrower_household_id, status,
			notes, due_date, requested_at, accepted_at, returned_at
		FROM loans
		WHERE id = $1`

	var loan entities.Loan
	err := r.db.GetContext(ctx, &loan, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrLoanNotFound
		}
		return nil, fmt.Errorf("get loan by id: %w", err)
	}

	return &loan, nil
}

func (r *LoanRepositoryImpl) Update(ctx context.Context, loan *entities.Loan) error {
	query := `
		UPDATE loans
		SET status = $2, notes = $3, due_date = $4, accepted_at = $5, returned_at = $6
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		loan.ID, loan.Status, loan.Notes, loan.DueDate, loan.AcceptedAt, loan.ReturnedAt,
	)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrLoanNotFound
	}

	return nil
}

func (r *LoanRepositoryImpl) List(ctx context.Context, filter ports.LoanFilter) ([]*entities.Loan, error) {
	query := `
		SELECT id, item_id, lender_household_id, borrower_household_id, status,
			notes, due_date, requested_at, accepted_at, returned_at
		FROM loans
		WHERE ($1::bigint IS NULL OR lender_household_id = $1 OR borrower_household_id = $1)
			AND ($2::bigint IS NULL OR item_id = $2)
			AND ($3::text IS NULL OR status = $3)
			AND (NOT $4 OR status IN ('requested', 'accepted'))
		ORDER BY requested_at DESC
		LIMIT $5 OFFSET $6`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var loans []*entities.Loan
	err := r.db.SelectContext(ctx, &loans, query,
		filter.HouseholdID, filter.ItemID, filter.Status, filter.OpenOnly, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	return loans, nil
}

func (r *LoanRepositoryImpl) GetOpenLoanForItem(ctx context.Context, itemID int64) (*entities.Loan, error) {
	query := `
		SELECT id, item_id, lender_household_id, borrower_household_id, status,
			notes, due_date, requested_at, accepted_at, returned_at
		FROM loans
		WHERE item_id = $1 AND status IN ('requested', 'accepted')
		ORDER BY requested_at DESC
		LIMIT 1`

	var loan entities.Loan
	err := r.db.GetContext(ctx, &loan, query, itemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrLoanNotFound
		}
		return nil, fmt.Errorf("get open loan for item: %w", err)
	}

	return &loan, nil
}
