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

// ActivityServiceImpl records and queries the household history log
type ActivityServiceImpl struct {
	activityRepo ports.ActivityRepository
	logger       *logger.Logger
}

// NewActivityService creates a new activity service
func NewActivityService(activityRepo ports.ActivityRepository, logger *logger.Logger) ports.ActivityService {
	return &ActivityServiceImpl{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// Record appends one history entry. Recording is best effort: a failed write
// is logged but never fails the mutation that triggered it.
func (s *ActivityServiceImpl) Record(ctx context.Context, householdID int64, memberID *int64, action, subject string) {
	entry := &entities.ActivityEntry{
		ID:          uuid.New(),
		HouseholdID: householdID,
		MemberID:    memberID,
		Action:      action,
		Subject:     subject,
		CreatedAt:   time.Now(),
	}

	if err := s.activityRepo.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to record activity", "error", err, "action", action, "household_id", householdID)
	}
}

// ListActivity retrieves history entries for a household
func (s *ActivityServiceImpl) ListActivity(ctx context.Context, householdID int64, filter ports.ActivityFilter) ([]*entities.ActivityEntry, error) {
	entries, err := s.activityRepo.ListByHousehold(ctx, householdID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}
