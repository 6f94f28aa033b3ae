package ports

import (
	"context"
	"time"

	"github.com/choreboard/core/internal/domain/entities"
)

// HouseholdRepository defines the interface for household data operations
type HouseholdRepository interface {
	Create(ctx context.Context, household *entities.Household) error
	GetByID(ctx context.Context, id int64) (*entities.Household, error)
	GetByInviteCode(ctx context.Context, code string) (*entities.Household, error)
	Update(ctx context.Context, household *entities.Household) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter HouseholdFilter) ([]*entities.Household, error)
	Connect(ctx context.Context, householdID, connectedHouseholdID int64) error
	Disconnect(ctx context.Context, householdID, connectedHouseholdID int64) error
	GetConnections(ctx context.Context, householdID int64) ([]entities.HouseholdConnection, error)
	AreConnected(ctx context.Context, householdID, otherHouseholdID int64) (bool, error)
}

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *entities.Member) error
	GetByID(ctx context.Context, id int64) (*entities.Member, error)
	Update(ctx context.Context, member *entities.Member) error
	Delete(ctx context.Context, id int64) error
	ListByHousehold(ctx context.Context, householdID int64) ([]*entities.Member, error)
	AddRotationExclusion(ctx context.Context, choreID, memberID int64) error
	RemoveRotationExclusion(ctx context.Context, choreID, memberID int64) error
	ListExcludedMemberIDs(ctx context.Context, choreID int64) ([]int64, error)
}

// ChoreRepository defines the interface for chore data operations
type ChoreRepository interface {
	Create(ctx context.Context, chore *entities.Chore) error
	GetByID(ctx context.Context, id int64) (*entities.Chore, error)
	Update(ctx context.Context, chore *entities.Chore) error
	Delete(ctx context.Context, id int64) error
	ListByHousehold(ctx context.Context, householdID int64, filter ChoreFilter) ([]*entities.Chore, error)
}

// ScheduleRepository defines the interface for schedule persistence. The two
// write shapes mirror what the schedule storage supports: replace the whole
// schedule of a chore, or append a single occurrence.
type ScheduleRepository interface {
	GetByChore(ctx context.Context, choreID int64) (entities.Schedule, error)
	Replace(ctx context.Context, choreID int64, schedule entities.Schedule) error
	Append(ctx context.Context, choreID int64, occurrence entities.Occurrence) error
	LinkItem(ctx context.Context, choreID int64, occurrenceNumber int, itemID int64) error
	UnlinkItem(ctx context.Context, choreID int64, occurrenceNumber int, itemID int64) error
}

// ItemRepository defines the interface for inventory item data operations
type ItemRepository interface {
	Create(ctx context.Context, item *entities.Item) error
	GetByID(ctx context.Context, id int64) (*entities.Item, error)
	Update(ctx context.Context, item *entities.Item) error
	Delete(ctx context.Context, id int64) error
	ListByHousehold(ctx context.Context, householdID int64) ([]*entities.Item, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	Create(ctx context.Context, loan *entities.Loan) error
	GetByID(ctx context.Context, id int64) (*entities.Loan, error)
	Update(ctx context.Context, loan *entities.Loan) error
	List(ctx context.Context, filter LoanFilter) ([]*entities.Loan, error)
	GetOpenLoanForItem(ctx context.Context, itemID int64) (*entities.Loan, error)
}

// ActivityRepository defines the interface for the append-only activity log
type ActivityRepository interface {
	Append(ctx context.Context, entry *entities.ActivityEntry) error
	ListByHousehold(ctx context.Context, householdID int64, filter ActivityFilter) ([]*entities.ActivityEntry, error)
}

// Filter types for repository queries

type HouseholdFilter struct {
	Search *string
	Limit  int
	Offset int
}

type ChoreFilter struct {
	Unit   *string
	Search *string
	Limit  int
	Offset int
}

type LoanFilter struct {
	HouseholdID *int64
	ItemID      *int64
	Status      *entities.LoanStatus
	OpenOnly    bool
	Limit       int
	Offset      int
}

type ActivityFilter struct {
	MemberID *int64
	Action   *string
	Since    *time.Time
	Limit    int
	Offset   int
}
