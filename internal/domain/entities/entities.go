package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/choreboard/core/internal/domain/recurrence"
)

// Common errors
var (
	ErrHouseholdNotFound      = errors.New("household not found")
	ErrMemberNotFound         = errors.New("member not found")
	ErrChoreNotFound          = errors.New("chore not found")
	ErrOccurrenceNotFound     = errors.New("occurrence not found")
	ErrItemNotFound           = errors.New("item not found")
	ErrLoanNotFound           = errors.New("loan not found")
	ErrMemberAlreadyAssigned  = errors.New("member already assigned in this occurrence")
	ErrHouseholdsNotConnected = errors.New("households are not connected")
	ErrItemNotLendable        = errors.New("item is not lendable")
	ErrOwnHouseholdLoan       = errors.New("cannot borrow an item from the own household")
	ErrItemAlreadyLent        = errors.New("item is already lent out")
	ErrInvalidLoanTransition  = errors.New("invalid loan status transition")
	ErrInvalidRecurrence      = errors.New("invalid recurrence configuration")
)

// LoanStatus tracks the lifecycle of a borrowed item.
type LoanStatus string

const (
	LoanStatusRequested LoanStatus = "requested"
	LoanStatusAccepted  LoanStatus = "accepted"
	LoanStatusDeclined  LoanStatus = "declined"
	LoanStatusReturned  LoanStatus = "returned"
)

// Household represents one group of members sharing chores and inventory.
type Household struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	InviteCode uuid.UUID `json:"invite_code" db:"invite_code"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// HouseholdConnection links two households so they can borrow from each other.
type HouseholdConnection struct {
	ID                   int64     `json:"id" db:"id"`
	HouseholdID          int64     `json:"household_id" db:"household_id"`
	ConnectedHouseholdID int64     `json:"connected_household_id" db:"connected_household_id"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

// Member represents a person in a household. Member ID 0 is reserved as the
// "unassigned" sentinel in schedules and never refers to a stored member.
type Member struct {
	ID          int64      `json:"id" db:"id"`
	HouseholdID int64      `json:"household_id" db:"household_id"`
	Name        string     `json:"name" db:"name"`
	Color       *string    `json:"color" db:"color"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" db:"deleted_at"`
}

// Chore represents a recurring task owned by a household. The recurrence
// columns are flattened for storage; Recurrence() rebuilds the calculator
// config from them.
type Chore struct {
	ID                int64                  `json:"id" db:"id"`
	HouseholdID       int64                  `json:"household_id" db:"household_id"`
	Name              string                 `json:"name" db:"name"`
	Description       *string                `json:"description" db:"description"`
	RequiredPersons   int                    `json:"required_persons" db:"required_persons"`
	Interval          int                    `json:"interval" db:"recur_interval"`
	Unit              recurrence.Unit        `json:"unit" db:"recur_unit"`
	MonthlyMode       recurrence.MonthlyMode `json:"monthly_mode" db:"monthly_mode"`
	MonthlyWeekday    int                    `json:"monthly_weekday" db:"monthly_weekday"`
	MonthlyOccurrence int                    `json:"monthly_occurrence" db:"monthly_occurrence"`
	AnchorDate        *time.Time             `json:"anchor_date" db:"anchor_date"`
	CreatedAt         time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at" db:"updated_at"`
	DeletedAt         *time.Time             `json:"deleted_at" db:"deleted_at"`
}

// Item represents an inventory item owned by a household.
type Item struct {
	ID          int64      `json:"id" db:"id"`
	HouseholdID int64      `json:"household_id" db:"household_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	IsLendable  bool       `json:"is_lendable" db:"is_lendable"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" db:"deleted_at"`
}

// Loan represents one item lent from one household to a connected household.
type Loan struct {
	ID                  int64      `json:"id" db:"id"`
	ItemID              int64      `json:"item_id" db:"item_id"`
	LenderHouseholdID   int64      `json:"lender_household_id" db:"lender_household_id"`
	BorrowerHouseholdID int64      `json:"borrower_household_id" db:"borrower_household_id"`
	Status              LoanStatus `json:"status" db:"status"`
	Notes               *string    `json:"notes" db:"notes"`
	DueDate             *time.Time `json:"due_date" db:"due_date"`
	RequestedAt         time.Time  `json:"requested_at" db:"requested_at"`
	AcceptedAt          *time.Time `json:"accepted_at" db:"accepted_at"`
	ReturnedAt          *time.Time `json:"returned_at" db:"returned_at"`
}

// ActivityEntry is one append-only history record for a household.
type ActivityEntry struct {
	ID          uuid.UUID `json:"id" db:"id"`
	HouseholdID int64     `json:"household_id" db:"household_id"`
	MemberID    *int64    `json:"member_id" db:"member_id"`
	Action      string    `json:"action" db:"action"`
	Subject     string    `json:"subject" db:"subject"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Business logic methods for Chore

// Recurrence rebuilds the calculator config from the stored columns.
func (c *Chore) Recurrence() recurrence.Config {
	cfg := recurrence.Config{
		Interval:          c.Interval,
		Unit:              c.Unit,
		MonthlyMode:       c.MonthlyMode,
		MonthlyWeekday:    time.Weekday(c.MonthlyWeekday),
		MonthlyOccurrence: c.MonthlyOccurrence,
	}
	if c.AnchorDate != nil {
		cfg.AnchorDate = *c.AnchorDate
	}
	return cfg
}

// IsIrregular reports whether occurrence dates are stored rather than derived.
func (c *Chore) IsIrregular() bool {
	return c.Unit == recurrence.UnitIrregular
}

// ValidateRecurrence checks the stored recurrence columns for consistency.
// The calculator itself never validates; this is the gate callers use before
// handing a config to it.
func (c *Chore) ValidateRecurrence() error {
	if !c.Unit.IsValid() {
		return ErrInvalidRecurrence
	}
	if c.IsIrregular() {
		return nil
	}
	if c.Interval < 1 || c.AnchorDate == nil {
		return ErrInvalidRecurrence
	}
	if c.Unit == recurrence.UnitMonths {
		if !c.MonthlyMode.IsValid() {
			return ErrInvalidRecurrence
		}
		if c.MonthlyMode == recurrence.MonthlySameWeekday {
			if c.MonthlyWeekday < 0 || c.MonthlyWeekday > 6 {
				return ErrInvalidRecurrence
			}
			if c.MonthlyOccurrence < 1 || c.MonthlyOccurrence > 5 {
				return ErrInvalidRecurrence
			}
		}
	}
	return nil
}

// Business logic methods for Loan

func (l *Loan) IsOpen() bool {
	return l.Status == LoanStatusRequested || l.Status == LoanStatusAccepted
}

func (l *Loan) CanAccept() bool {
	return l.Status == LoanStatusRequested
}

func (l *Loan) CanDecline() bool {
	return l.Status == LoanStatusRequested
}

func (l *Loan) CanReturn() bool {
	return l.Status == LoanStatusAccepted
}

func (l *Loan) IsOverdue() bool {
	if l.DueDate == nil || l.Status != LoanStatusAccepted {
		return false
	}
	return time.Now().After(*l.DueDate)
}

func (l *Loan) Accept() error {
	if !l.CanAccept() {
		return ErrInvalidLoanTransition
	}
	now := time.Now()
	l.Status = LoanStatusAccepted
	l.AcceptedAt = &now
	return nil
}

func (l *Loan) Decline() error {
	if !l.CanDecline() {
		return ErrInvalidLoanTransition
	}
	l.Status = LoanStatusDeclined
	return nil
}

func (l *Loan) Return() error {
	if !l.CanReturn() {
		return ErrInvalidLoanTransition
	}
	now := time.Now()
	l.Status = LoanStatusReturned
	l.ReturnedAt = &now
	return nil
}

// Utility methods

func (ls LoanStatus) IsValid() bool {
	switch ls {
	case LoanStatusRequested, LoanStatusAccepted, LoanStatusDeclined, LoanStatusReturned:
		return true
	default:
		return false
	}
}
