package services

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/domain/rotation"
	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

// ScheduleServiceImpl exposes the rotation builder over persisted schedules.
// Each mutation loads the current schedule, applies one pure builder
// operation, and replaces the stored schedule with the result. Concurrent
// edits of the same chore resolve last-write-wins at the storage layer.
type ScheduleServiceImpl struct {
	choreRepo    ports.ChoreRepository
	scheduleRepo ports.ScheduleRepository
	memberRepo   ports.MemberRepository
	itemRepo     ports.ItemRepository
	activity     ports.ActivityService
	logger       *logger.Logger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(choreRepo ports.ChoreRepository, scheduleRepo ports.ScheduleRepository, memberRepo ports.MemberRepository, itemRepo ports.ItemRepository, activity ports.ActivityService, logger *logger.Logger) ports.ScheduleService {
	return &ScheduleServiceImpl{
		choreRepo:    choreRepo,
		scheduleRepo: scheduleRepo,
		memberRepo:   memberRepo,
		itemRepo:     itemRepo,
		activity:     activity,
		logger:       logger,
	}
}

// GetSchedule returns the chore's schedule with effective dates resolved.
func (s *ScheduleServiceImpl) GetSchedule(ctx context.Context, choreID int64) (*ports.ScheduleView, error) {
	chore, schedule, err := s.load(ctx, choreID)
	if err != nil {
		return nil, err
	}
	return s.view(chore, schedule), nil
}

// InitializeSchedule replaces whatever is stored with a fresh three-occurrence
// schedule, occurrence 1 pre-filled from currentAssignees.
func (s *ScheduleServiceImpl) InitializeSchedule(ctx context.Context, choreID int64, currentAssignees []int64) (*ports.ScheduleView, error) {
	chore, err := s.choreRepo.GetByID(ctx, choreID)
	if err != nil {
		return nil, fmt.Errorf("chore not found: %w", err)
	}

	schedule := rotation.Initialize(chore.RequiredPersons, currentAssignees)
	if err := s.scheduleRepo.Replace(ctx, choreID, schedule); err != nil {
		return nil, fmt.Errorf("failed to store schedule: %w", err)
	}

	s.activity.Record(ctx, chore.HouseholdID, nil, "schedule.initialized", chore.Name)
	s.logger.Info("Schedule initialized", "chore_id", choreID, "occurrences", len(schedule))

	return s.view(chore, schedule), nil
}

// AddOccurrence appends one regular occurrence at the tail. Appending leaves
// every existing number and list position untouched, so only the new row is
// written instead of replacing the whole schedule.
func (s *ScheduleServiceImpl) AddOccurrence(ctx context.Context, choreID int64) (*ports.ScheduleView, error) {
	chore, schedule, err := s.load(ctx, choreID)
	if err != nil {
		return nil, err
	}

	updated := rotation.AppendOccurrence(schedule, chore.RequiredPersons)
	if err := s.scheduleRepo.Append(ctx, choreID, updated[len(updated)-1]); err != nil {
		return nil, fmt.Errorf("failed to store occurrence: %w", err)
	}

	s.activity.Record(ctx, chore.HouseholdID, nil, "schedule.occurrence_added", chore.Name)
	s.logger.Info("Schedule updated", "chore_id", choreID, "action", "schedule.occurrence_added", "occurrences", len(updated))

	return s.view(chore, updated), nil
}

// AddSpecialOccurrence inserts an ad-hoc appointment; the schedule is
// re-sorted chronologically and renumbered with the regular/special partition.
func (s *ScheduleServiceImpl) AddSpecialOccurrence(ctx context.Context, choreID int64, req ports.AddSpecialOccurrenceRequest) (*ports.ScheduleView, error) {
	return s.mutate(ctx, choreID, "schedule.special_added", func(chore *entities.Chore, schedule entities.Schedule) (entities.Schedule, error) {
		return rotation.AddSpecialOccurrence(schedule, req.Name, req.Date, chore.RequiredPersons, s.resolver(chore)), nil
	})
}

// DeleteOccurrence removes one occurrence and renumbers the remainder.
func (s *ScheduleServiceImpl) DeleteOccurrence(ctx context.Context, choreID int64, occurrenceNumber int) (*ports.ScheduleView, error) {
	return s.mutate(ctx, choreID, "schedule.occurrence_deleted", func(chore *entities.Chore, schedule entities.Schedule) (entities.Schedule, error) {
		if schedule.IndexOf(occurrenceNumber) < 0 {
			return nil, entities.ErrOccurrenceNotFound
		}
		return rotation.DeleteOccurrence(schedule, occurrenceNumber), nil
	})
}

// MoveOccurrence swaps an occurrence with its list neighbor.
func (s *ScheduleServiceImpl) MoveOccurrence(ctx context.Context, choreID int64, occurrenceNumber int, direction rotation.Direction) (*ports.ScheduleView, error) {
	return s.mutate(ctx, choreID, "schedule.occurrence_moved", func(chore *entities.Chore, schedule entities.Schedule) (entities.Schedule, error) {
		return rotation.MoveOccurrence(schedule, occurrenceNumber, direction), nil
	})
}

// SkipOccurrence toggles the skipped flag of one occurrence.
func (s *ScheduleServiceImpl) SkipOccurrence(ctx context.Context, choreID int64, occurrenceNumber int) (*ports.ScheduleView, error) {
	return s.mutate(ctx, choreID, "schedule.occurrence_skipped", func(chore *entities.Chore, schedule entities.Schedule) (entities.Schedule, error) {
		if schedule.IndexOf(occurrenceNumber) < 0 {
			return nil, entities.ErrOccurrenceNotFound
		}
		return rotation.ToggleSkip(schedule, occurrenceNumber), nil
	})
}

// SetMember assigns a member to one position of one occurrence. A member
// already holding another position of the same occurrence is rejected.
func (s *ScheduleServiceImpl) SetMember(ctx context.Context, choreID int64, req ports.SetMemberRequest) (*ports.ScheduleView, error) {
	return s.mutate(ctx, choreID, "schedule.member_set", func(chore *entities.Chore, schedule entities.Schedule) (entities.Schedule, error) {
		return rotation.SetMember(schedule, req.OccurrenceNumber, req.Position, req.MemberID)
	})
}

// SetNotes replaces the notes of one occurrence.
func (s *ScheduleServiceImpl) SetNotes(ctx context.Context, choreID int64, occurrenceNumber int, notes string) (*ports.ScheduleView, error) {
	return s.mutate(ctx, choreID, "schedule.notes_set", func(chore *entities.Chore, schedule entities.Schedule) (entities.Schedule, error) {
		if schedule.IndexOf(occurrenceNumber) < 0 {
			return nil, entities.ErrOccurrenceNotFound
		}
		return rotation.SetNotes(schedule, occurrenceNumber, notes), nil
	})
}

// SetOccurrenceDate stores an explicit date on a special or irregular
// occurrence.
func (s *ScheduleServiceImpl) SetOccurrenceDate(ctx context.Context, choreID int64, occurrenceNumber int, date *time.Time) (*ports.ScheduleView, error) {
	return s.mutate(ctx, choreID, "schedule.date_set", func(chore *entities.Chore, schedule entities.Schedule) (entities.Schedule, error) {
		occ := schedule.Find(occurrenceNumber)
		if occ == nil {
			return nil, entities.ErrOccurrenceNotFound
		}
		if !occ.IsSpecial() && !chore.IsIrregular() {
			// Regular occurrences of a dated chore derive their date.
			return schedule.Clone(), nil
		}
		return rotation.SetSpecialDate(schedule, occurrenceNumber, date), nil
	})
}

// ResetToRegular reverts an ad-hoc appointment to a plain occurrence. Its
// number stays in the special range until the next renumber pass.
func (s *ScheduleServiceImpl) ResetToRegular(ctx context.Context, choreID int64, occurrenceNumber int) (*ports.ScheduleView, error) {
	return s.mutate(ctx, choreID, "schedule.reset_to_regular", func(chore *entities.Chore, schedule entities.Schedule) (entities.Schedule, error) {
		if schedule.IndexOf(occurrenceNumber) < 0 {
			return nil, entities.ErrOccurrenceNotFound
		}
		return rotation.ResetToRegular(schedule, occurrenceNumber), nil
	})
}

// AutoFill assigns every open slot from the household roster minus the
// chore's rotation exclusions.
func (s *ScheduleServiceImpl) AutoFill(ctx context.Context, choreID int64) (*ports.ScheduleView, error) {
	return s.mutate(ctx, choreID, "schedule.auto_filled", func(chore *entities.Chore, schedule entities.Schedule) (entities.Schedule, error) {
		eligible, err := s.eligibleMembers(ctx, chore)
		if err != nil {
			return nil, err
		}
		return rotation.AutoFill(schedule, eligible, chore.RequiredPersons), nil
	})
}

// LinkItem attaches an inventory item to one occurrence.
func (s *ScheduleServiceImpl) LinkItem(ctx context.Context, choreID int64, occurrenceNumber int, itemID int64) (*ports.ScheduleView, error) {
	chore, schedule, err := s.load(ctx, choreID)
	if err != nil {
		return nil, err
	}
	if schedule.IndexOf(occurrenceNumber) < 0 {
		return nil, entities.ErrOccurrenceNotFound
	}
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}

	if err := s.scheduleRepo.LinkItem(ctx, choreID, occurrenceNumber, itemID); err != nil {
		return nil, fmt.Errorf("failed to link item: %w", err)
	}

	s.activity.Record(ctx, chore.HouseholdID, nil, "schedule.item_linked", item.Name)
	s.logger.Info("Occurrence item linked", "chore_id", choreID, "occurrence", occurrenceNumber, "item_id", itemID)

	return s.GetSchedule(ctx, choreID)
}

// UnlinkItem detaches an inventory item from one occurrence.
func (s *ScheduleServiceImpl) UnlinkItem(ctx context.Context, choreID int64, occurrenceNumber int, itemID int64) (*ports.ScheduleView, error) {
	chore, schedule, err := s.load(ctx, choreID)
	if err != nil {
		return nil, err
	}
	if schedule.IndexOf(occurrenceNumber) < 0 {
		return nil, entities.ErrOccurrenceNotFound
	}

	if err := s.scheduleRepo.UnlinkItem(ctx, choreID, occurrenceNumber, itemID); err != nil {
		return nil, fmt.Errorf("failed to unlink item: %w", err)
	}

	s.activity.Record(ctx, chore.HouseholdID, nil, "schedule.item_unlinked", chore.Name)
	s.logger.Info("Occurrence item unlinked", "chore_id", choreID, "occurrence", occurrenceNumber, "item_id", itemID)

	return s.GetSchedule(ctx, choreID)
}

// CalendarFeed renders the chore's dated, unskipped occurrences as an
// iCalendar document of all-day events.
func (s *ScheduleServiceImpl) CalendarFeed(ctx context.Context, choreID int64) (string, error) {
	chore, schedule, err := s.load(ctx, choreID)
	if err != nil {
		return "", err
	}

	resolve := s.resolver(chore)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//choreboard//schedule//EN")

	for i := range schedule {
		occ := &schedule[i]
		if occ.Skipped {
			continue
		}
		date, ok := rotation.EffectiveDate(occ, resolve)
		if !ok {
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("chore-%d-occurrence-%d@choreboard", choreID, occ.Number))
		event.SetAllDayStartAt(date)
		event.SetAllDayEndAt(date.AddDate(0, 0, 1))
		if occ.IsSpecial() && occ.SpecialName != "" {
			event.SetSummary(fmt.Sprintf("%s: %s", chore.Name, occ.SpecialName))
		} else {
			event.SetSummary(chore.Name)
		}
		if occ.Notes != "" {
			event.SetDescription(occ.Notes)
		}
	}

	return cal.Serialize(), nil
}

// mutate runs one builder operation against the stored schedule and persists
// the result.
func (s *ScheduleServiceImpl) mutate(ctx context.Context, choreID int64, action string, op func(*entities.Chore, entities.Schedule) (entities.Schedule, error)) (*ports.ScheduleView, error) {
	chore, schedule, err := s.load(ctx, choreID)
	if err != nil {
		return nil, err
	}

	updated, err := op(chore, schedule)
	if err != nil {
		return nil, err
	}

	if err := s.scheduleRepo.Replace(ctx, choreID, updated); err != nil {
		return nil, fmt.Errorf("failed to store schedule: %w", err)
	}

	s.activity.Record(ctx, chore.HouseholdID, nil, action, chore.Name)
	s.logger.Info("Schedule updated", "chore_id", choreID, "action", action, "occurrences", len(updated))

	return s.view(chore, updated), nil
}

func (s *ScheduleServiceImpl) load(ctx context.Context, choreID int64) (*entities.Chore, entities.Schedule, error) {
	chore, err := s.choreRepo.GetByID(ctx, choreID)
	if err != nil {
		return nil, nil, fmt.Errorf("chore not found: %w", err)
	}
	schedule, err := s.scheduleRepo.GetByChore(ctx, choreID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return chore, schedule, nil
}

// eligibleMembers is the active household roster minus rotation exclusions,
// in roster order so the round-robin cursor stays deterministic.
func (s *ScheduleServiceImpl) eligibleMembers(ctx context.Context, chore *entities.Chore) ([]int64, error) {
	members, err := s.memberRepo.ListByHousehold(ctx, chore.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	excludedIDs, err := s.memberRepo.ListExcludedMemberIDs(ctx, chore.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rotation exclusions: %w", err)
	}

	excluded := make(map[int64]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}

	eligible := make([]int64, 0, len(members))
	for _, m := range members {
		if m.IsActive && !excluded[m.ID] {
			eligible = append(eligible, m.ID)
		}
	}
	return eligible, nil
}

func (s *ScheduleServiceImpl) resolver(chore *entities.Chore) rotation.DateResolver {
	return chore.Recurrence().OccurrenceDate
}

func (s *ScheduleServiceImpl) view(chore *entities.Chore, schedule entities.Schedule) *ports.ScheduleView {
	resolve := s.resolver(chore)

	view := &ports.ScheduleView{
		ChoreID:     chore.ID,
		Occurrences: make([]ports.OccurrenceView, len(schedule)),
	}
	for i := range schedule {
		view.Occurrences[i] = ports.OccurrenceView{Occurrence: schedule[i]}
		if date, ok := rotation.EffectiveDate(&schedule[i], resolve); ok {
			d := date
			view.Occurrences[i].Date = &d
		}
	}
	return view
}
