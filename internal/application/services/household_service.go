package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

// HouseholdServiceImpl handles household-related operations
type HouseholdServiceImpl struct {
	householdRepo ports.HouseholdRepository
	activity      ports.ActivityService
	logger        *logger.Logger
}

// NewHouseholdService creates a new household service
func NewHouseholdService(householdRepo ports.HouseholdRepository, activity ports.ActivityService, logger *logger.Logger) ports.HouseholdService {
	return &HouseholdServiceImpl{
		householdRepo: householdRepo,
		activity:      activity,
		logger:        logger,
	}
}

// CreateHousehold creates a new household with a fresh invite code
func (s *HouseholdServiceImpl) CreateHousehold(ctx context.Context, req ports.CreateHouseholdRequest) (*entities.Household, error) {
	household := &entities.Household{
		Name:       req.Name,
		InviteCode: uuid.New(),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.householdRepo.Create(ctx, household); err != nil {
		return nil, fmt.Errorf("failed to create household: %w", err)
	}

	s.logger.Info("Household created successfully", "household_id", household.ID, "name", household.Name)

	return household, nil
}

// GetHousehold retrieves a household by ID
func (s *HouseholdServiceImpl) GetHousehold(ctx context.Context, id int64) (*entities.Household, error) {
	household, err := s.householdRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("household not found: %w", err)
	}
	return household, nil
}

// UpdateHousehold updates a household's information
func (s *HouseholdServiceImpl) UpdateHousehold(ctx context.Context, id int64, req ports.UpdateHouseholdRequest) (*entities.Household, error) {
	household, err := s.householdRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("household not found: %w", err)
	}

	if req.Name != nil {
		household.Name = *req.Name
	}
	household.UpdatedAt = time.Now()

	if err := s.householdRepo.Update(ctx, household); err != nil {
		return nil, fmt.Errorf("failed to update household: %w", err)
	}

	s.logger.Info("Household updated successfully", "household_id", household.ID)

	return household, nil
}

// DeleteHousehold deletes a household
func (s *HouseholdServiceImpl) DeleteHousehold(ctx context.Context, id int64) error {
	if _, err := s.householdRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("household not found: %w", err)
	}

	if err := s.householdRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete household: %w", err)
	}

	s.logger.Info("Household deleted successfully", "household_id", id)

	return nil
}

// ListHouseholds retrieves households with filtering
func (s *HouseholdServiceImpl) ListHouseholds(ctx context.Context, filter ports.HouseholdFilter) ([]*entities.Household, error) {
	households, err := s.householdRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list households: %w", err)
	}
	return households, nil
}

// ConnectByInviteCode connects a household to the household owning the
// invite code, enabling borrowing between the two.
func (s *HouseholdServiceImpl) ConnectByInviteCode(ctx context.Context, householdID int64, inviteCode string) (*entities.Household, error) {
	household, err := s.householdRepo.GetByID(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("household not found: %w", err)
	}

	other, err := s.householdRepo.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, fmt.Errorf("invite code not recognized: %w", err)
	}
	if other.ID == household.ID {
		return nil, fmt.Errorf("cannot connect a household to itself")
	}

	if err := s.householdRepo.Connect(ctx, household.ID, other.ID); err != nil {
		return nil, fmt.Errorf("failed to connect households: %w", err)
	}

	s.activity.Record(ctx, household.ID, nil, "household.connected", other.Name)
	s.logger.Info("Households connected", "household_id", household.ID, "connected_household_id", other.ID)

	return other, nil
}

// Disconnect removes the connection between two households
func (s *HouseholdServiceImpl) Disconnect(ctx context.Context, householdID, otherHouseholdID int64) error {
	if err := s.householdRepo.Disconnect(ctx, householdID, otherHouseholdID); err != nil {
		return fmt.Errorf("failed to disconnect households: %w", err)
	}

	s.logger.Info("Households disconnected", "household_id", householdID, "other_household_id", otherHouseholdID)

	return nil
}

// ListConnections retrieves all connections of a household
func (s *HouseholdServiceImpl) ListConnections(ctx context.Context, householdID int64) ([]entities.HouseholdConnection, error) {
	connections, err := s.householdRepo.GetConnections(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return connections, nil
}
