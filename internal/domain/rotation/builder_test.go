package rotation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/domain/recurrence"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weeklyResolver derives dates one week apart starting Jan 5 2026.
func weeklyResolver() DateResolver {
	cfg := recurrence.Config{
		Interval:   1,
		Unit:       recurrence.UnitWeeks,
		AnchorDate: date(2026, time.January, 5),
	}
	return cfg.OccurrenceDate
}

func TestInitialize(t *testing.T) {
	s := Initialize(2, []int64{7, 8, 9})

	require.Len(t, s, 3)
	for i, occ := range s {
		assert.Equal(t, i+1, occ.Number)
		assert.Equal(t, entities.OccurrenceRegular, occ.Kind)
		assert.Len(t, occ.Members, 2)
	}

	// Occurrence 1 takes current assignees left to right, capped at positions.
	assert.Equal(t, int64(7), s[0].MemberAt(1))
	assert.Equal(t, int64(8), s[0].MemberAt(2))
	assert.Equal(t, entities.UnassignedMember, s[1].MemberAt(1))
	assert.Equal(t, entities.UnassignedMember, s[2].MemberAt(2))
}

func TestAddSpecialOccurrence_RenumberPartition(t *testing.T) {
	s := Initialize(1, nil)

	// Weekly chore: occurrences fall on Jan 5, 12, 19. Insert a special
	// appointment between the first two.
	d := date(2026, time.January, 8)
	s = AddSpecialOccurrence(s, "deep clean", &d, 1, weeklyResolver())

	require.Len(t, s, 4)

	// List order is chronological; numbers encode the partition.
	assert.Equal(t, 1, s[0].Number)
	assert.Equal(t, 1000, s[1].Number)
	assert.Equal(t, "deep clean", s[1].SpecialName)
	assert.Equal(t, 2, s[2].Number)
	assert.Equal(t, 3, s[3].Number)

	for _, occ := range s {
		if occ.IsSpecial() {
			assert.GreaterOrEqual(t, occ.Number, 1000)
		} else {
			assert.Less(t, occ.Number, 1000)
		}
	}
}

func TestAddSpecialOccurrence_TwoSpecials(t *testing.T) {
	s := Initialize(1, nil)
	resolve := weeklyResolver()

	d1 := date(2026, time.January, 20)
	d2 := date(2026, time.January, 8)
	s = AddSpecialOccurrence(s, "late", &d1, 1, resolve)
	s = AddSpecialOccurrence(s, "early", &d2, 1, resolve)

	require.Len(t, s, 5)
	// Chronological list order: Jan 5, Jan 8, Jan 12, Jan 19, Jan 20.
	assert.Equal(t, "early", s[1].SpecialName)
	assert.Equal(t, "late", s[4].SpecialName)
	// Special numbers count up in chronological order.
	assert.Equal(t, 1000, s[1].Number)
	assert.Equal(t, 1001, s[4].Number)
}

func TestDeleteOccurrence_RenumbersSequentially(t *testing.T) {
	s := Initialize(1, nil)
	s[2].Notes = "was number three"

	s = DeleteOccurrence(s, 2)

	require.Len(t, s, 2)
	assert.Equal(t, 1, s[0].Number)
	assert.Equal(t, 2, s[1].Number)
	assert.Equal(t, "was number three", s[1].Notes)
}

func TestDeleteOccurrence_UnknownNumberIsNoop(t *testing.T) {
	s := Initialize(1, nil)
	out := DeleteOccurrence(s, 99)
	assert.Equal(t, s, out)
}

func TestDeleteOccurrence_KeepsPartition(t *testing.T) {
	s := Initialize(1, nil)
	d := date(2026, time.January, 8)
	s = AddSpecialOccurrence(s, "extra", &d, 1, weeklyResolver())

	s = DeleteOccurrence(s, 1)

	require.Len(t, s, 3)
	assert.Equal(t, 1000, s[0].Number)
	assert.Equal(t, 1, s[1].Number)
	assert.Equal(t, 2, s[2].Number)
}

func TestMoveOccurrence(t *testing.T) {
	s := Initialize(1, nil)
	s[0].Notes = "a"
	s[1].Notes = "b"
	s[2].Notes = "c"

	s = MoveOccurrence(s, 3, DirectionUp)

	assert.Equal(t, []string{"a", "c", "b"}, notes(s))
	assert.Equal(t, []int{1, 2, 3}, numbers(s))

	// Boundary moves are no-ops.
	top := MoveOccurrence(s, 1, DirectionUp)
	assert.Equal(t, s, top)
	bottom := MoveOccurrence(s, 3, DirectionDown)
	assert.Equal(t, s, bottom)
}

func TestToggleSkip_IdempotentReversible(t *testing.T) {
	s := Initialize(2, []int64{5})
	before := s.Clone()

	once := ToggleSkip(s, 2)
	assert.True(t, once.Find(2).Skipped)

	twice := ToggleSkip(once, 2)
	assert.Equal(t, before, twice)
}

func TestSetMember(t *testing.T) {
	s := Initialize(2, nil)

	s, err := SetMember(s, 1, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.Find(1).MemberAt(1))

	// Duplicate member in the same occurrence is rejected.
	_, err = SetMember(s, 1, 2, 5)
	assert.ErrorIs(t, err, entities.ErrMemberAlreadyAssigned)

	// Re-setting the same position with the same member is fine.
	s, err = SetMember(s, 1, 1, 5)
	require.NoError(t, err)

	// Clearing a slot is always allowed.
	s, err = SetMember(s, 1, 1, entities.UnassignedMember)
	require.NoError(t, err)
	assert.Equal(t, entities.UnassignedMember, s.Find(1).MemberAt(1))

	_, err = SetMember(s, 42, 1, 5)
	assert.ErrorIs(t, err, entities.ErrOccurrenceNotFound)
}

func TestAutoFill_NoDuplicateWithinOccurrence(t *testing.T) {
	s := Initialize(3, nil)
	s = AppendOccurrence(s, 3)
	s = AppendOccurrence(s, 3)

	s = AutoFill(s, []int64{1, 2, 3, 4}, 3)

	for _, occ := range s {
		seen := map[int64]bool{}
		for _, slot := range occ.Members {
			if slot.MemberID == entities.UnassignedMember {
				continue
			}
			assert.False(t, seen[slot.MemberID], "member %d assigned twice in occurrence %d", slot.MemberID, occ.Number)
			seen[slot.MemberID] = true
		}
	}
}

func TestAutoFill_RoundRobinCoverage(t *testing.T) {
	// k eligible members over k single-position occurrences: everyone is
	// assigned exactly once before any repeat.
	members := []int64{10, 20, 30, 40}

	s := Initialize(1, nil)
	s = AppendOccurrence(s, 1)

	s = AutoFill(s, members, 1)

	got := map[int64]int{}
	for _, occ := range s {
		got[occ.MemberAt(1)]++
	}
	for _, id := range members {
		assert.Equal(t, 1, got[id], "member %d", id)
	}
}

func TestAutoFill_AvoidsConsecutiveRepeat(t *testing.T) {
	s := Initialize(1, nil)
	s = AppendOccurrence(s, 1)
	s = AppendOccurrence(s, 1)
	s = AppendOccurrence(s, 1)

	s = AutoFill(s, []int64{1, 2}, 1)

	for i := 1; i < len(s); i++ {
		assert.NotEqual(t, s[i-1].MemberAt(1), s[i].MemberAt(1),
			"occurrences %d and %d share position 1", i, i+1)
	}
}

func TestAutoFill_SingleMemberAcceptsRepeat(t *testing.T) {
	// The consecutive-repeat rule is soft: with one eligible member, every
	// slot still gets filled.
	s := Initialize(1, nil)

	s = AutoFill(s, []int64{9}, 1)

	for _, occ := range s {
		assert.Equal(t, int64(9), occ.MemberAt(1))
	}
}

func TestAutoFill_SkipsSkippedOccurrences(t *testing.T) {
	s := Initialize(1, nil)
	s = ToggleSkip(s, 2)

	s = AutoFill(s, []int64{1, 2, 3}, 1)

	assert.NotEqual(t, entities.UnassignedMember, s.Find(1).MemberAt(1))
	assert.Equal(t, entities.UnassignedMember, s.Find(2).MemberAt(1))
	assert.NotEqual(t, entities.UnassignedMember, s.Find(3).MemberAt(1))
}

func TestAutoFill_RespectsManualAssignments(t *testing.T) {
	s := Initialize(2, nil)
	s, err := SetMember(s, 1, 1, 3)
	require.NoError(t, err)

	s = AutoFill(s, []int64{1, 2, 3}, 2)

	assert.Equal(t, int64(3), s.Find(1).MemberAt(1))
	assert.NotEqual(t, int64(3), s.Find(1).MemberAt(2))
}

func TestAutoFill_FewerMembersThanPositions(t *testing.T) {
	s := Initialize(3, nil)

	s = AutoFill(s, []int64{1, 2}, 3)

	// Two positions filled, the third stays unassigned rather than
	// duplicating a member.
	occ := s.Find(1)
	assert.NotEqual(t, entities.UnassignedMember, occ.MemberAt(1))
	assert.NotEqual(t, entities.UnassignedMember, occ.MemberAt(2))
	assert.Equal(t, entities.UnassignedMember, occ.MemberAt(3))
}

func TestResetToRegular(t *testing.T) {
	s := Initialize(1, nil)
	d := date(2026, time.January, 8)
	s = AddSpecialOccurrence(s, "one-off", &d, 1, weeklyResolver())

	s = ResetToRegular(s, 1000)

	occ := s.Find(1000)
	require.NotNil(t, occ, "number is untouched until the next renumber pass")
	assert.Equal(t, entities.OccurrenceRegular, occ.Kind)
	assert.Empty(t, occ.SpecialName)
	assert.Nil(t, occ.SpecialDate)

	// The next renumber folds it into the regular range.
	s = Renumber(s)
	assert.Equal(t, []int{1, 2, 3, 4}, numbers(s))
}

func TestSortChronological_DatedSortBeforeUndated(t *testing.T) {
	s := Initialize(1, nil)
	resolve := weeklyResolver()

	// An undated special parks at the tail; a dated one added afterwards must
	// still bubble past it into chronological position.
	s = AddSpecialOccurrence(s, "someday", nil, 1, resolve)
	d := date(2026, time.January, 2)
	s = AddSpecialOccurrence(s, "before anchor", &d, 1, resolve)

	require.Len(t, s, 5)
	// Jan 2, Jan 5, Jan 12, Jan 19, then the undated one.
	assert.Equal(t, "before anchor", s[0].SpecialName)
	assert.Equal(t, "someday", s[4].SpecialName)
	assert.Equal(t, []int{1000, 1, 2, 3, 1001}, numbers(s))
}

func TestSortChronological_UndatedStayPut(t *testing.T) {
	s := entities.Schedule{
		{Number: 1000, Kind: entities.OccurrenceSpecial, SpecialName: "first undated"},
		{Number: 1001, Kind: entities.OccurrenceSpecial, SpecialName: "second undated"},
	}

	out := SortChronological(s, nil)

	assert.Equal(t, "first undated", out[0].SpecialName)
	assert.Equal(t, "second undated", out[1].SpecialName)
}

func TestEffectiveDate(t *testing.T) {
	resolve := weeklyResolver()

	regular := entities.Occurrence{Number: 2, Kind: entities.OccurrenceRegular}
	got, ok := EffectiveDate(&regular, resolve)
	require.True(t, ok)
	assert.Equal(t, date(2026, time.January, 12), got)

	d := date(2026, time.March, 1)
	override := entities.Occurrence{Number: 2, Kind: entities.OccurrenceRegular, SpecialDate: &d}
	got, ok = EffectiveDate(&override, resolve)
	require.True(t, ok)
	assert.Equal(t, d, got, "a stored date wins over the derived one")

	undated := entities.Occurrence{Number: 1000, Kind: entities.OccurrenceSpecial}
	_, ok = EffectiveDate(&undated, resolve)
	assert.False(t, ok)
}

func TestOperationsDoNotMutateInput(t *testing.T) {
	s := Initialize(2, []int64{1, 2})
	snapshot := s.Clone()

	d := date(2026, time.January, 8)
	_ = AddSpecialOccurrence(s, "x", &d, 2, weeklyResolver())
	_ = DeleteOccurrence(s, 1)
	_ = MoveOccurrence(s, 2, DirectionUp)
	_ = ToggleSkip(s, 1)
	_, _ = SetMember(s, 1, 2, 9)
	_ = AutoFill(s, []int64{1, 2, 3}, 2)

	assert.Equal(t, snapshot, s)
}

func notes(s entities.Schedule) []string {
	out := make([]string, len(s))
	for i, occ := range s {
		out[i] = occ.Notes
	}
	return out
}

func numbers(s entities.Schedule) []int {
	out := make([]int, len(s))
	for i, occ := range s {
		out[i] = occ.Number
	}
	return out
}
