package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

// LoanServiceImpl handles inventory items and loans between households
type LoanServiceImpl struct {
	itemRepo      ports.ItemRepository
	loanRepo      ports.LoanRepository
	householdRepo ports.HouseholdRepository
	activity      ports.ActivityService
	logger        *logger.Logger
}

// NewLoanService creates a new loan service
func NewLoanService(itemRepo ports.ItemRepository, loanRepo ports.LoanRepository, householdRepo ports.HouseholdRepository, activity ports.ActivityService, logger *logger.Logger) ports.LoanService {
	return &LoanServiceImpl{
		itemRepo:      itemRepo,
		loanRepo:      loanRepo,
		householdRepo: householdRepo,
		activity:      activity,
		logger:        logger,
	}
}

// CreateItem creates a new inventory item
func (s *LoanServiceImpl) CreateItem(ctx context.Context, req ports.CreateItemRequest) (*entities.Item, error) {
	if _, err := s.householdRepo.GetByID(ctx, req.HouseholdID); err != nil {
		return nil, fmt.Errorf("household not found: %w", err)
	}

	item := &entities.Item{
		HouseholdID: req.HouseholdID,
		Name:        req.Name,
		Description: req.Description,
		IsLendable:  req.IsLendable,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.activity.Record(ctx, item.HouseholdID, nil, "item.created", item.Name)
	s.logger.Info("Item created successfully", "item_id", item.ID, "name", item.Name)

	return item, nil
}

// GetItem retrieves an item by ID
func (s *LoanServiceImpl) GetItem(ctx context.Context, id int64) (*entities.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}
	return item, nil
}

// UpdateItem updates an item's information
func (s *LoanServiceImpl) UpdateItem(ctx context.Context, id int64, req ports.UpdateItemRequest) (*entities.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.IsLendable != nil {
		item.IsLendable = *req.IsLendable
	}
	item.UpdatedAt = time.Now()

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	s.logger.Info("Item updated successfully", "item_id", item.ID)

	return item, nil
}

// DeleteItem deletes an item
func (s *LoanServiceImpl) DeleteItem(ctx context.Context, id int64) error {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("item not found: %w", err)
	}

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	s.activity.Record(ctx, item.HouseholdID, nil, "item.deleted", item.Name)
	s.logger.Info("Item deleted successfully", "item_id", id)

	return nil
}

// ListItems retrieves all items of a household
func (s *LoanServiceImpl) ListItems(ctx context.Context, householdID int64) ([]*entities.Item, error) {
	items, err := s.itemRepo.ListByHousehold(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// RequestLoan opens a loan request for a lendable item of a connected household
func (s *LoanServiceImpl) RequestLoan(ctx context.Context, req ports.RequestLoanRequest) (*entities.Loan, error) {
	item, err := s.itemRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}
	if !item.IsLendable {
		return nil, entities.ErrItemNotLendable
	}
	if item.HouseholdID == req.BorrowerHouseholdID {
		return nil, entities.ErrOwnHouseholdLoan
	}

	connected, err := s.householdRepo.AreConnected(ctx, item.HouseholdID, req.BorrowerHouseholdID)
	if err != nil {
		return nil, fmt.Errorf("failed to check household connection: %w", err)
	}
	if !connected {
		return nil, entities.ErrHouseholdsNotConnected
	}

	open, err := s.loanRepo.GetOpenLoanForItem(ctx, req.ItemID)
	if err != nil && !errors.Is(err, entities.ErrLoanNotFound) {
		return nil, fmt.Errorf("failed to check open loans: %w", err)
	}
	if open != nil {
		return nil, entities.ErrItemAlreadyLent
	}

	loan := &entities.Loan{
		ItemID:              item.ID,
		LenderHouseholdID:   item.HouseholdID,
		BorrowerHouseholdID: req.BorrowerHouseholdID,
		Status:              entities.LoanStatusRequested,
		Notes:               req.Notes,
		DueDate:             req.DueDate,
		RequestedAt:         time.Now(),
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}

	s.activity.Record(ctx, item.HouseholdID, nil, "loan.requested", item.Name)
	s.activity.Record(ctx, req.BorrowerHouseholdID, nil, "loan.requested", item.Name)
	s.logger.Info("Loan requested", "loan_id", loan.ID, "item_id", item.ID)

	return loan, nil
}

// AcceptLoan accepts a pending loan request
func (s *LoanServiceImpl) AcceptLoan(ctx context.Context, loanID int64) (*entities.Loan, error) {
	return s.transition(ctx, loanID, "loan.accepted", (*entities.Loan).Accept)
}

// DeclineLoan declines a pending loan request
func (s *LoanServiceImpl) DeclineLoan(ctx context.Context, loanID int64) (*entities.Loan, error) {
	return s.transition(ctx, loanID, "loan.declined", (*entities.Loan).Decline)
}

// ReturnLoan marks an accepted loan as returned
func (s *LoanServiceImpl) ReturnLoan(ctx context.Context, loanID int64) (*entities.Loan, error) {
	return s.transition(ctx, loanID, "loan.returned", (*entities.Loan).Return)
}

// ListLoans retrieves loans matching the filter
func (s *LoanServiceImpl) ListLoans(ctx context.Context, filter ports.LoanFilter) ([]*entities.Loan, error) {
	loans, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

func (s *LoanServiceImpl) transition(ctx context.Context, loanID int64, action string, apply func(*entities.Loan) error) (*entities.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("loan not found: %w", err)
	}

	if err := apply(loan); err != nil {
		return nil, err
	}

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	s.activity.Record(ctx, loan.LenderHouseholdID, nil, action, fmt.Sprintf("loan %d", loan.ID))
	s.logger.Info("Loan status changed", "loan_id", loan.ID, "status", loan.Status)

	return loan, nil
}
