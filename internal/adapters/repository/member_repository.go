package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/ports"
)

// MemberRepositoryImpl implements the MemberRepository interface
type MemberRepositoryImpl struct {
	db *sqlx.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *sqlx.DB) ports.MemberRepository {
	return &MemberRepositoryImpl{db: db}
}

func (r *MemberRepositoryImpl) Create(ctx context.Context, member *entities.Member) error {
	query := `
		INSERT INTO members (household_id, name, color, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		member.HouseholdID, member.Name, member.Color, member.IsActive,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}

	return nil
}

func (r *MemberRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Member, error) {
	query := `
		SELECT id, household_id, name, color, is_active, created_at, updated_at, deleted_at
		FROM members
		WHERE id = $1 AND deleted_at IS NULL`

	var member entities.Member
	err := r.db.GetContext(ctx, &member, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrMemberNotFound
		}
		return nil, fmt.Errorf("get member by id: %w", err)
	}

	return &member, nil
}

func (r *MemberRepositoryImpl) Update(ctx context.Context, member *entities.Member) error {
	query := `
		UPDATE members
		SET name = $2, color = $3, is_active = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		member.ID, member.Name, member.Color, member.IsActive,
	).Scan(&member.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrMemberNotFound
		}
		return fmt.Errorf("update member: %w", err)
	}

	return nil
}

func (r *MemberRepositoryImpl) Delete(ctx context.Context, id int64) error {
	// Soft delete keeps the member visible in historic schedule slots.
	query := `UPDATE members SET deleted_at = CURRENT_TIMESTAMP WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrMemberNotFound
	}

	return nil
}

func (r *MemberRepositoryImpl) ListByHousehold(ctx context.Context, householdID int64) ([]*entities.Member, error) {
	query := `
		SELECT id, household_id, name, color, is_active, created_at, updated_at, deleted_at
		FROM members
		WHERE household_id = $1 AND deleted_at IS NULL
		ORDER BY id`

	var members []*entities.Member
	err := r.db.SelectContext(ctx, &members, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

func (r *MemberRepositoryImpl) AddRotationExclusion(ctx context.Context, choreID, memberID int64) error {
	query := `
		INSERT INTO rotation_exclusions (chore_id, member_id)
		VALUES ($1, $2)
		ON CONFLICT (chore_id, member_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, choreID, memberID); err != nil {
		return fmt.Errorf("add rotation exclusion: %w", err)
	}

	return nil
}

func (r *MemberRepositoryImpl) RemoveRotationExclusion(ctx context.Context, choreID, memberID int64) error {
	query := `DELETE FROM rotation_exclusions WHERE chore_id = $1 AND member_id = $2`

	if _, err := r.db.ExecContext(ctx, query, choreID, memberID); err != nil {
		return fmt.Errorf("remove rotation exclusion: %w", err)
	}

	return nil
}

func (r *MemberRepositoryImpl) ListExcludedMemberIDs(ctx context.Context, choreID int64) ([]int64, error) {
	query := `SELECT member_id FROM rotation_exclusions WHERE chore_id = $1 ORDER BY member_id`

	var ids []int64
	err := r.db.SelectContext(ctx, &ids, query, choreID)
	if err != nil {
		return nil, fmt.Errorf("list excluded member ids: %w", err)
	}

	return ids, nil
}
