package services

import (
	"context"
	"fmt"
	"time"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/domain/recurrence"
	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

// ChoreServiceImpl handles chore-related operations
type ChoreServiceImpl struct {
	choreRepo     ports.ChoreRepository
	householdRepo ports.HouseholdRepository
	activity      ports.ActivityService
	logger        *logger.Logger
}

// NewChoreService creates a new chore service
func NewChoreService(choreRepo ports.ChoreRepository, householdRepo ports.HouseholdRepository, activity ports.ActivityService, logger *logger.Logger) ports.ChoreService {
	return &ChoreServiceImpl{
		choreRepo:     choreRepo,
		householdRepo: householdRepo,
		activity:      activity,
		logger:        logger,
	}
}

// CreateChore creates a new recurring chore
func (s *ChoreServiceImpl) CreateChore(ctx context.Context, req ports.CreateChoreRequest) (*entities.Chore, error) {
	if _, err := s.householdRepo.GetByID(ctx, req.HouseholdID); err != nil {
		return nil, fmt.Errorf("household not found: %w", err)
	}

	chore := &entities.Chore{
		HouseholdID:       req.HouseholdID,
		Name:              req.Name,
		Description:       req.Description,
		RequiredPersons:   req.RequiredPersons,
		Interval:          req.Interval,
		Unit:              recurrence.Unit(req.Unit),
		MonthlyMode:       recurrence.MonthlyMode(req.MonthlyMode),
		MonthlyWeekday:    req.MonthlyWeekday,
		MonthlyOccurrence: req.MonthlyOccurrence,
		AnchorDate:        req.AnchorDate,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	if err := chore.ValidateRecurrence(); err != nil {
		return nil, err
	}

	if err := s.choreRepo.Create(ctx, chore); err != nil {
		return nil, fmt.Errorf("failed to create chore: %w", err)
	}

	s.activity.Record(ctx, chore.HouseholdID, nil, "chore.created", chore.Name)
	s.logger.Info("Chore created successfully", "chore_id", chore.ID, "name", chore.Name)

	return chore, nil
}

// GetChore retrieves a chore by ID
func (s *ChoreServiceImpl) GetChore(ctx context.Context, id int64) (*entities.Chore, error) {
	chore, err := s.choreRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("chore not found: %w", err)
	}
	return chore, nil
}

// UpdateChore updates a chore's information and recurrence configuration
func (s *ChoreServiceImpl) UpdateChore(ctx context.Context, id int64, req ports.UpdateChoreRequest) (*entities.Chore, error) {
	chore, err := s.choreRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("chore not found: %w", err)
	}

	if req.Name != nil {
		chore.Name = *req.Name
	}
	if req.Description != nil {
		chore.Description = req.Description
	}
	if req.RequiredPersons != nil {
		chore.RequiredPersons = *req.RequiredPersons
	}
	if req.Interval != nil {
		chore.Interval = *req.Interval
	}
	if req.Unit != nil {
		chore.Unit = recurrence.Unit(*req.Unit)
	}
	if req.MonthlyMode != nil {
		chore.MonthlyMode = recurrence.MonthlyMode(*req.MonthlyMode)
	}
	if req.MonthlyWeekday != nil {
		chore.MonthlyWeekday = *req.MonthlyWeekday
	}
	if req.MonthlyOccurrence != nil {
		chore.MonthlyOccurrence = *req.MonthlyOccurrence
	}
	if req.AnchorDate != nil {
		chore.AnchorDate = req.AnchorDate
	}
	chore.UpdatedAt = time.Now()

	if err := chore.ValidateRecurrence(); err != nil {
		return nil, err
	}

	if err := s.choreRepo.Update(ctx, chore); err != nil {
		return nil, fmt.Errorf("failed to update chore: %w", err)
	}

	s.activity.Record(ctx, chore.HouseholdID, nil, "chore.updated", chore.Name)
	s.logger.Info("Chore updated successfully", "chore_id", chore.ID, "name", chore.Name)

	return chore, nil
}

// DeleteChore deletes a chore and its schedule
func (s *ChoreServiceImpl) DeleteChore(ctx context.Context, id int64) error {
	chore, err := s.choreRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("chore not found: %w", err)
	}

	if err := s.choreRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chore: %w", err)
	}

	s.activity.Record(ctx, chore.HouseholdID, nil, "chore.deleted", chore.Name)
	s.logger.Info("Chore deleted successfully", "chore_id", id)

	return nil
}

// ListChores retrieves chores for a household
func (s *ChoreServiceImpl) ListChores(ctx context.Context, householdID int64, filter ports.ChoreFilter) ([]*entities.Chore, error) {
	chores, err := s.choreRepo.ListByHousehold(ctx, householdID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list chores: %w", err)
	}
	return chores, nil
}
