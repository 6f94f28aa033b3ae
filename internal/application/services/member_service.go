package services

import (
	"context"
	"fmt"
	"time"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

// MemberServiceImpl handles member-related operations
type MemberServiceImpl struct {
	memberRepo    ports.MemberRepository
	householdRepo ports.HouseholdRepository
	choreRepo     ports.ChoreRepository
	activity      ports.ActivityService
	logger        *logger.Logger
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo ports.MemberRepository, householdRepo ports.HouseholdRepository, choreRepo ports.ChoreRepository, activity ports.ActivityService, logger *logger.Logger) ports.MemberService {
	return &MemberServiceImpl{
		memberRepo:    memberRepo,
		householdRepo: householdRepo,
		choreRepo:     choreRepo,
		activity:      activity,
		logger:        logger,
	}
}

// CreateMember creates a new household member
func (s *MemberServiceImpl) CreateMember(ctx context.Context, req ports.CreateMemberRequest) (*entities.Member, error) {
	if _, err := s.householdRepo.GetByID(ctx, req.HouseholdID); err != nil {
		return nil, fmt.Errorf("household not found: %w", err)
	}

	member := &entities.Member{
		HouseholdID: req.HouseholdID,
		Name:        req.Name,
		Color:       req.Color,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.activity.Record(ctx, member.HouseholdID, &member.ID, "member.created", member.Name)
	s.logger.Info("Member created successfully", "member_id", member.ID, "name", member.Name)

	return member, nil
}

// GetMember retrieves a member by ID
func (s *MemberServiceImpl) GetMember(ctx context.Context, id int64) (*entities.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("member not found: %w", err)
	}
	return member, nil
}

// UpdateMember updates a member's information
func (s *MemberServiceImpl) UpdateMember(ctx context.Context, id int64, req ports.UpdateMemberRequest) (*entities.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("member not found: %w", err)
	}

	if req.Name != nil {
		member.Name = *req.Name
	}
	if req.Color != nil {
		member.Color = req.Color
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	member.UpdatedAt = time.Now()

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.logger.Info("Member updated successfully", "member_id", member.ID)

	return member, nil
}

// DeleteMember deletes a member
func (s *MemberServiceImpl) DeleteMember(ctx context.Context, id int64) error {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("member not found: %w", err)
	}

	if err := s.memberRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	s.activity.Record(ctx, member.HouseholdID, nil, "member.deleted", member.Name)
	s.logger.Info("Member deleted successfully", "member_id", id)

	return nil
}

// ListMembers retrieves all members of a household
func (s *MemberServiceImpl) ListMembers(ctx context.Context, householdID int64) ([]*entities.Member, error) {
	members, err := s.memberRepo.ListByHousehold(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// ExcludeFromRotation removes a member from a chore's auto-fill candidates
func (s *MemberServiceImpl) ExcludeFromRotation(ctx context.Context, choreID, memberID int64) error {
	chore, err := s.choreRepo.GetByID(ctx, choreID)
	if err != nil {
		return fmt.Errorf("chore not found: %w", err)
	}
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("member not found: %w", err)
	}

	if err := s.memberRepo.AddRotationExclusion(ctx, choreID, memberID); err != nil {
		return fmt.Errorf("failed to exclude member from rotation: %w", err)
	}

	s.activity.Record(ctx, chore.HouseholdID, &member.ID, "rotation.excluded", chore.Name)
	s.logger.Info("Member excluded from rotation", "chore_id", choreID, "member_id", memberID)

	return nil
}

// IncludeInRotation restores a member as an auto-fill candidate for a chore
func (s *MemberServiceImpl) IncludeInRotation(ctx context.Context, choreID, memberID int64) error {
	if err := s.memberRepo.RemoveRotationExclusion(ctx, choreID, memberID); err != nil {
		return fmt.Errorf("failed to include member in rotation: %w", err)
	}

	s.logger.Info("Member included in rotation", "chore_id", choreID, "member_id", memberID)

	return nil
}
