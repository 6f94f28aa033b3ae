package ports

import (
	"context"
	"time"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/domain/rotation"
)

// HouseholdService manages households and the connections between them.
type HouseholdService interface {
	CreateHousehold(ctx context.Context, req CreateHouseholdRequest) (*entities.Household, error)
	GetHousehold(ctx context.Context, id int64) (*entities.Household, error)
	UpdateHousehold(ctx context.Context, id int64, req UpdateHouseholdRequest) (*entities.Household, error)
	DeleteHousehold(ctx context.Context, id int64) error
	ListHouseholds(ctx context.Context, filter HouseholdFilter) ([]*entities.Household, error)
	ConnectByInviteCode(ctx context.Context, householdID int64, inviteCode string) (*entities.Household, error)
	Disconnect(ctx context.Context, householdID, otherHouseholdID int64) error
	ListConnections(ctx context.Context, householdID int64) ([]entities.HouseholdConnection, error)
}

// MemberService manages household members and rotation exclusions.
type MemberService interface {
	CreateMember(ctx context.Context, req CreateMemberRequest) (*entities.Member, error)
	GetMember(ctx context.Context, id int64) (*entities.Member, error)
	UpdateMember(ctx context.Context, id int64, req UpdateMemberRequest) (*entities.Member, error)
	DeleteMember(ctx context.Context, id int64) error
	ListMembers(ctx context.Context, householdID int64) ([]*entities.Member, error)
	ExcludeFromRotation(ctx context.Context, choreID, memberID int64) error
	IncludeInRotation(ctx context.Context, choreID, memberID int64) error
}

// ChoreService manages recurring chores.
type ChoreService interface {
	CreateChore(ctx context.Context, req CreateChoreRequest) (*entities.Chore, error)
	GetChore(ctx context.Context, id int64) (*entities.Chore, error)
	UpdateChore(ctx context.Context, id int64, req UpdateChoreRequest) (*entities.Chore, error)
	DeleteChore(ctx context.Context, id int64) error
	ListChores(ctx context.Context, householdID int64, filter ChoreFilter) ([]*entities.Chore, error)
}

// ScheduleService exposes the rotation builder over persisted schedules.
// Every mutation loads the chore's schedule, applies one builder operation
// and replaces the stored schedule with the result.
type ScheduleService interface {
	GetSchedule(ctx context.Context, choreID int64) (*ScheduleView, error)
	InitializeSchedule(ctx context.Context, choreID int64, currentAssignees []int64) (*ScheduleView, error)
	AddOccurrence(ctx context.Context, choreID int64) (*ScheduleView, error)
	AddSpecialOccurrence(ctx context.Context, choreID int64, req AddSpecialOccurrenceRequest) (*ScheduleView, error)
	DeleteOccurrence(ctx context.Context, choreID int64, occurrenceNumber int) (*ScheduleView, error)
	MoveOccurrence(ctx context.Context, choreID int64, occurrenceNumber int, direction rotation.Direction) (*ScheduleView, error)
	SkipOccurrence(ctx context.Context, choreID int64, occurrenceNumber int) (*ScheduleView, error)
	SetMember(ctx context.Context, choreID int64, req SetMemberRequest) (*ScheduleView, error)
	SetNotes(ctx context.Context, choreID int64, occurrenceNumber int, notes string) (*ScheduleView, error)
	SetOccurrenceDate(ctx context.Context, choreID int64, occurrenceNumber int, date *time.Time) (*ScheduleView, error)
	ResetToRegular(ctx context.Context, choreID int64, occurrenceNumber int) (*ScheduleView, error)
	AutoFill(ctx context.Context, choreID int64) (*ScheduleView, error)
	LinkItem(ctx context.Context, choreID int64, occurrenceNumber int, itemID int64) (*ScheduleView, error)
	UnlinkItem(ctx context.Context, choreID int64, occurrenceNumber int, itemID int64) (*ScheduleView, error)
	CalendarFeed(ctx context.Context, choreID int64) (string, error)
}

// LoanService manages inventory items and loans between connected households.
type LoanService interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*entities.Item, error)
	GetItem(ctx context.Context, id int64) (*entities.Item, error)
	UpdateItem(ctx context.Context, id int64, req UpdateItemRequest) (*entities.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	ListItems(ctx context.Context, householdID int64) ([]*entities.Item, error)
	RequestLoan(ctx context.Context, req RequestLoanRequest) (*entities.Loan, error)
	AcceptLoan(ctx context.Context, loanID int64) (*entities.Loan, error)
	DeclineLoan(ctx context.Context, loanID int64) (*entities.Loan, error)
	ReturnLoan(ctx context.Context, loanID int64) (*entities.Loan, error)
	ListLoans(ctx context.Context, filter LoanFilter) ([]*entities.Loan, error)
}

// ActivityService records and queries the household history.
type ActivityService interface {
	Record(ctx context.Context, householdID int64, memberID *int64, action, subject string)
	ListActivity(ctx context.Context, householdID int64, filter ActivityFilter) ([]*entities.ActivityEntry, error)
}

// ScheduleView is a schedule with effective dates resolved for display.
type ScheduleView struct {
	ChoreID     int64                  `json:"chore_id"`
	Occurrences []OccurrenceView       `json:"occurrences"`
}

// OccurrenceView pairs one occurrence with its resolved date. Date is nil
// when no date is resolvable (undated irregular or special occurrence).
type OccurrenceView struct {
	entities.Occurrence
	Date *time.Time `json:"date"`
}

// Request types consumed by the services

type CreateHouseholdRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

type UpdateHouseholdRequest struct {
	Name *string `json:"name" validate:"omitempty,max=120"`
}

type CreateMemberRequest struct {
	HouseholdID int64   `json:"household_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=120"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

type UpdateMemberRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Color    *string `json:"color" validate:"omitempty,hexcolor"`
	IsActive *bool   `json:"is_active"`
}

type CreateChoreRequest struct {
	HouseholdID       int64      `json:"household_id" validate:"required"`
	Name              string     `json:"name" validate:"required,max=200"`
	Description       *string    `json:"description"`
	RequiredPersons   int        `json:"required_persons" validate:"required,min=1,max=10"`
	Interval          int        `json:"interval" validate:"omitempty,min=1"`
	Unit              string     `json:"unit" validate:"required,oneof=days weeks months irregular"`
	MonthlyMode       string     `json:"monthly_mode" validate:"omitempty,oneof=same_date same_weekday"`
	MonthlyWeekday    int        `json:"monthly_weekday" validate:"omitempty,min=0,max=6"`
	MonthlyOccurrence int        `json:"monthly_occurrence" validate:"omitempty,min=1,max=5"`
	AnchorDate        *time.Time `json:"anchor_date"`
}

type UpdateChoreRequest struct {
	Name              *string    `json:"name" validate:"omitempty,max=200"`
	Description       *string    `json:"description"`
	RequiredPersons   *int       `json:"required_persons" validate:"omitempty,min=1,max=10"`
	Interval          *int       `json:"interval" validate:"omitempty,min=1"`
	Unit              *string    `json:"unit" validate:"omitempty,oneof=days weeks months irregular"`
	MonthlyMode       *string    `json:"monthly_mode" validate:"omitempty,oneof=same_date same_weekday"`
	MonthlyWeekday    *int       `json:"monthly_weekday" validate:"omitempty,min=0,max=6"`
	MonthlyOccurrence *int       `json:"monthly_occurrence" validate:"omitempty,min=1,max=5"`
	AnchorDate        *time.Time `json:"anchor_date"`
}

type AddSpecialOccurrenceRequest struct {
	Name string     `json:"name" validate:"required,max=200"`
	Date *time.Time `json:"date"`
}

type SetMemberRequest struct {
	OccurrenceNumber int   `json:"occurrence_number" validate:"required"`
	Position         int   `json:"position" validate:"required,min=1"`
	MemberID         int64 `json:"member_id" validate:"min=0"`
}

type CreateItemRequest struct {
	HouseholdID int64   `json:"household_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
	IsLendable  bool    `json:"is_lendable"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	IsLendable  *bool   `json:"is_lendable"`
}

type RequestLoanRequest struct {
	ItemID              int64      `json:"item_id" validate:"required"`
	BorrowerHouseholdID int64      `json:"borrower_household_id" validate:"required"`
	DueDate             *time.Time `json:"due_date"`
	Notes               *string    `json:"notes"`
}
