package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/domain/recurrence"
	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

// In-memory fakes for the repositories the schedule service touches.

type fakeChoreRepo struct {
	chores map[int64]*entities.Chore
}

func (f *fakeChoreRepo) Create(ctx context.Context, chore *entities.Chore) error { return nil }
func (f *fakeChoreRepo) GetByID(ctx context.Context, id int64) (*entities.Chore, error) {
	chore, ok := f.chores[id]
	if !ok {
		return nil, entities.ErrChoreNotFound
	}
	return chore, nil
}
func (f *fakeChoreRepo) Update(ctx context.Context, chore *entities.Chore) error { return nil }
func (f *fakeChoreRepo) Delete(ctx context.Context, id int64) error              { return nil }
func (f *fakeChoreRepo) ListByHousehold(ctx context.Context, householdID int64, filter ports.ChoreFilter) ([]*entities.Chore, error) {
	return nil, nil
}

type fakeScheduleRepo struct {
	schedules map[int64]entities.Schedule
	replaces  int
	appends   int
}

func (f *fakeScheduleRepo) GetByChore(ctx context.Context, choreID int64) (entities.Schedule, error) {
	return f.schedules[choreID].Clone(), nil
}
func (f *fakeScheduleRepo) Replace(ctx context.Context, choreID int64, schedule entities.Schedule) error {
	f.schedules[choreID] = schedule.Clone()
	f.replaces++
	return nil
}
func (f *fakeScheduleRepo) Append(ctx context.Context, choreID int64, occurrence entities.Occurrence) error {
	f.schedules[choreID] = append(f.schedules[choreID], occurrence.Clone())
	f.appends++
	return nil
}
func (f *fakeScheduleRepo) LinkItem(ctx context.Context, choreID int64, occurrenceNumber int, itemID int64) error {
	return nil
}
func (f *fakeScheduleRepo) UnlinkItem(ctx context.Context, choreID int64, occurrenceNumber int, itemID int64) error {
	return nil
}

type fakeMemberRepo struct {
	members  []*entities.Member
	excluded []int64
}

func (f *fakeMemberRepo) Create(ctx context.Context, member *entities.Member) error { return nil }
func (f *fakeMemberRepo) GetByID(ctx context.Context, id int64) (*entities.Member, error) {
	return nil, entities.ErrMemberNotFound
}
func (f *fakeMemberRepo) Update(ctx context.Context, member *entities.Member) error { return nil }
func (f *fakeMemberRepo) Delete(ctx context.Context, id int64) error                { return nil }
func (f *fakeMemberRepo) ListByHousehold(ctx context.Context, householdID int64) ([]*entities.Member, error) {
	return f.members, nil
}
func (f *fakeMemberRepo) AddRotationExclusion(ctx context.Context, choreID, memberID int64) error {
	return nil
}
func (f *fakeMemberRepo) RemoveRotationExclusion(ctx context.Context, choreID, memberID int64) error {
	return nil
}
func (f *fakeMemberRepo) ListExcludedMemberIDs(ctx context.Context, choreID int64) ([]int64, error) {
	return f.excluded, nil
}

type fakeItemRepo struct {
	items map[int64]*entities.Item
}

func (f *fakeItemRepo) Create(ctx context.Context, item *entities.Item) error { return nil }
func (f *fakeItemRepo) GetByID(ctx context.Context, id int64) (*entities.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, entities.ErrItemNotFound
	}
	return item, nil
}
func (f *fakeItemRepo) Update(ctx context.Context, item *entities.Item) error { return nil }
func (f *fakeItemRepo) Delete(ctx context.Context, id int64) error            { return nil }
func (f *fakeItemRepo) ListByHousehold(ctx context.Context, householdID int64) ([]*entities.Item, error) {
	return nil, nil
}

type fakeActivity struct {
	actions []string
}

func (f *fakeActivity) Record(ctx context.Context, householdID int64, memberID *int64, action, subject string) {
	f.actions = append(f.actions, action)
}
func (f *fakeActivity) ListActivity(ctx context.Context, householdID int64, filter ports.ActivityFilter) ([]*entities.ActivityEntry, error) {
	return nil, nil
}

func newTestScheduleService(chore *entities.Chore, members []*entities.Member, excluded []int64) (ports.ScheduleService, *fakeScheduleRepo, *fakeActivity) {
	choreRepo := &fakeChoreRepo{chores: map[int64]*entities.Chore{chore.ID: chore}}
	scheduleRepo := &fakeScheduleRepo{schedules: make(map[int64]entities.Schedule)}
	memberRepo := &fakeMemberRepo{members: members, excluded: excluded}
	itemRepo := &fakeItemRepo{items: map[int64]*entities.Item{}}
	activity := &fakeActivity{}

	svc := NewScheduleService(choreRepo, scheduleRepo, memberRepo, itemRepo, activity, logger.NewNop())
	return svc, scheduleRepo, activity
}

func weeklyChore() *entities.Chore {
	anchor := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	return &entities.Chore{
		ID:              1,
		HouseholdID:     1,
		Name:            "Kitchen cleaning",
		RequiredPersons: 2,
		Interval:        1,
		Unit:            recurrence.UnitWeeks,
		AnchorDate:      &anchor,
	}
}

func activeMember(id int64) *entities.Member {
	return &entities.Member{ID: id, HouseholdID: 1, IsActive: true}
}

func TestInitializeSchedule(t *testing.T) {
	svc, repo, activity := newTestScheduleService(weeklyChore(), nil, nil)

	view, err := svc.InitializeSchedule(context.Background(), 1, []int64{7, 8})
	require.NoError(t, err)

	require.Len(t, view.Occurrences, 3)
	assert.Equal(t, 1, view.Occurrences[0].Number)
	assert.Equal(t, int64(7), view.Occurrences[0].MemberAt(1))
	assert.Equal(t, int64(8), view.Occurrences[0].MemberAt(2))
	assert.Equal(t, 1, repo.replaces)
	assert.Contains(t, activity.actions, "schedule.initialized")

	// Occurrence 1 resolves to the anchor date itself.
	require.NotNil(t, view.Occurrences[0].Date)
	assert.Equal(t, time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC), *view.Occurrences[0].Date)
	require.NotNil(t, view.Occurrences[1].Date)
	assert.Equal(t, time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC), *view.Occurrences[1].Date)
}

func TestSetMemberConflict(t *testing.T) {
	svc, repo, _ := newTestScheduleService(weeklyChore(), nil, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)
	storedReplaces := repo.replaces

	_, err = svc.SetMember(context.Background(), 1, ports.SetMemberRequest{
		OccurrenceNumber: 2, Position: 1, MemberID: 5,
	})
	require.NoError(t, err)

	// Assigning the same member to a second position of the same occurrence
	// is rejected and nothing is written.
	writesBefore := repo.replaces
	_, err = svc.SetMember(context.Background(), 1, ports.SetMemberRequest{
		OccurrenceNumber: 2, Position: 2, MemberID: 5,
	})
	assert.ErrorIs(t, err, entities.ErrMemberAlreadyAssigned)
	assert.Equal(t, writesBefore, repo.replaces)
	assert.Greater(t, writesBefore, storedReplaces)
}

func TestSetMemberUnknownOccurrence(t *testing.T) {
	svc, _, _ := newTestScheduleService(weeklyChore(), nil, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)

	_, err = svc.SetMember(context.Background(), 1, ports.SetMemberRequest{
		OccurrenceNumber: 99, Position: 1, MemberID: 5,
	})
	assert.ErrorIs(t, err, entities.ErrOccurrenceNotFound)
}

func TestAutoFillUsesEligibleRoster(t *testing.T) {
	members := []*entities.Member{activeMember(1), activeMember(2), activeMember(3)}
	svc, _, _ := newTestScheduleService(weeklyChore(), members, []int64{2})

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)

	view, err := svc.AutoFill(context.Background(), 1)
	require.NoError(t, err)

	for _, occ := range view.Occurrences {
		for pos := 1; pos <= 2; pos++ {
			got := occ.MemberAt(pos)
			assert.NotEqual(t, entities.UnassignedMember, got)
			assert.NotEqual(t, int64(2), got, "excluded member must not be scheduled")
		}
	}
}

func TestAutoFillSkipsInactiveMembers(t *testing.T) {
	inactive := activeMember(2)
	inactive.IsActive = false
	members := []*entities.Member{activeMember(1), inactive, activeMember(3)}
	svc, _, _ := newTestScheduleService(weeklyChore(), members, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)

	view, err := svc.AutoFill(context.Background(), 1)
	require.NoError(t, err)

	for _, occ := range view.Occurrences {
		assert.False(t, occ.HasMember(2), "inactive member must not be scheduled")
	}
}

func TestAddOccurrenceAppendsSingleRow(t *testing.T) {
	svc, repo, activity := newTestScheduleService(weeklyChore(), nil, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)
	writesBefore := repo.replaces

	view, err := svc.AddOccurrence(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, view.Occurrences, 4)
	assert.Equal(t, 4, view.Occurrences[3].Number)

	// Only the new row hits storage; the existing rows are left alone.
	assert.Equal(t, 1, repo.appends)
	assert.Equal(t, writesBefore, repo.replaces)
	assert.Contains(t, activity.actions, "schedule.occurrence_added")

	stored, err := repo.GetByChore(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.Equal(t, 4, stored[3].Number)
}

func TestAddSpecialOccurrenceNumbering(t *testing.T) {
	svc, _, _ := newTestScheduleService(weeklyChore(), nil, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)

	date := time.Date(2026, time.January, 8, 0, 0, 0, 0, time.UTC)
	view, err := svc.AddSpecialOccurrence(context.Background(), 1, ports.AddSpecialOccurrenceRequest{
		Name: "Deep clean before visit",
		Date: &date,
	})
	require.NoError(t, err)

	require.Len(t, view.Occurrences, 4)

	// Sorted between occurrence 1 (Jan 5) and occurrence 2 (Jan 12),
	// numbered in the special range.
	special := view.Occurrences[1]
	assert.True(t, special.IsSpecial())
	assert.Equal(t, 1000, special.Number)
	assert.Equal(t, "Deep clean before visit", special.SpecialName)

	numbers := make([]int, 0, 4)
	for _, occ := range view.Occurrences {
		numbers = append(numbers, occ.Number)
	}
	assert.Equal(t, []int{1, 1000, 2, 3}, numbers)
}

func TestDeleteOccurrenceRenumbers(t *testing.T) {
	svc, _, _ := newTestScheduleService(weeklyChore(), nil, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)

	view, err := svc.DeleteOccurrence(context.Background(), 1, 2)
	require.NoError(t, err)

	require.Len(t, view.Occurrences, 2)
	assert.Equal(t, 1, view.Occurrences[0].Number)
	assert.Equal(t, 2, view.Occurrences[1].Number)
}

func TestDeleteOccurrenceNotFound(t *testing.T) {
	svc, _, _ := newTestScheduleService(weeklyChore(), nil, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)

	_, err = svc.DeleteOccurrence(context.Background(), 1, 42)
	assert.ErrorIs(t, err, entities.ErrOccurrenceNotFound)
}

func TestSkipOccurrenceToggle(t *testing.T) {
	svc, _, _ := newTestScheduleService(weeklyChore(), nil, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)

	view, err := svc.SkipOccurrence(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, view.Occurrences[1].Skipped)

	view, err = svc.SkipOccurrence(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, view.Occurrences[1].Skipped)
}

func TestSetOccurrenceDateOnRegularDatedChoreIsNoop(t *testing.T) {
	svc, _, _ := newTestScheduleService(weeklyChore(), nil, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)

	override := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	view, err := svc.SetOccurrenceDate(context.Background(), 1, 2, &override)
	require.NoError(t, err)

	// The date of a regular occurrence of a dated chore stays derived.
	require.NotNil(t, view.Occurrences[1].Date)
	assert.Equal(t, time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC), *view.Occurrences[1].Date)
	assert.Nil(t, view.Occurrences[1].SpecialDate)
}

func TestSetOccurrenceDateOnIrregularChore(t *testing.T) {
	chore := weeklyChore()
	chore.Unit = recurrence.UnitIrregular
	chore.AnchorDate = nil
	svc, _, _ := newTestScheduleService(chore, nil, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)

	date := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	view, err := svc.SetOccurrenceDate(context.Background(), 1, 1, &date)
	require.NoError(t, err)

	require.NotNil(t, view.Occurrences[0].Date)
	assert.Equal(t, date, *view.Occurrences[0].Date)

	// Undated occurrences of an irregular chore resolve to no date.
	assert.Nil(t, view.Occurrences[1].Date)
}

func TestCalendarFeed(t *testing.T) {
	svc, _, _ := newTestScheduleService(weeklyChore(), nil, nil)

	_, err := svc.InitializeSchedule(context.Background(), 1, nil)
	require.NoError(t, err)

	_, err = svc.SkipOccurrence(context.Background(), 1, 2)
	require.NoError(t, err)

	feed, err := svc.CalendarFeed(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(feed, "BEGIN:VCALENDAR"))
	assert.Contains(t, feed, "SUMMARY:Kitchen cleaning")
	// Two dated, unskipped occurrences remain.
	assert.Equal(t, 2, strings.Count(feed, "BEGIN:VEVENT"))
	assert.Contains(t, feed, "chore-1-occurrence-1@choreboard")
	assert.NotContains(t, feed, "chore-1-occurrence-2@choreboard")
}

func TestGetScheduleUnknownChore(t *testing.T) {
	svc, _, _ := newTestScheduleService(weeklyChore(), nil, nil)

	_, err := svc.GetSchedule(context.Background(), 99)
	assert.ErrorIs(t, err, entities.ErrChoreNotFound)
}
