// Package rotation maintains chore schedules: assignment, auto-fill,
// renumbering and chronological ordering.
//
// Every operation takes a schedule snapshot and returns a new one; inputs are
// never mutated. The package favors no-ops and fallbacks over errors; the one
// designed error is the duplicate-member conflict in SetMember.
package rotation

import (
	"sort"
	"time"

	"github.com/choreboard/core/internal/domain/entities"
)

const (
	// initialOccurrences is how many regular occurrences a fresh schedule gets.
	initialOccurrences = 3

	// specialNumberBase is the first number of the special range. Regular
	// occurrences live in [1, specialNumberBase).
	specialNumberBase = 1000
)

// Direction moves an occurrence toward the head (up) or tail (down) of the list.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// DateResolver resolves the derived date of a regular occurrence number.
// recurrence.Config.OccurrenceDate satisfies it.
type DateResolver func(occurrenceNumber int) (time.Time, bool)

// Initialize produces a fresh schedule of three regular occurrences numbered
// 1..3. Occurrence 1 is pre-filled left to right from currentAssignees; every
// other slot is unassigned.
func Initialize(requiredPersons int, currentAssignees []int64) entities.Schedule {
	if requiredPersons < 1 {
		requiredPersons = 1
	}

	s := make(entities.Schedule, 0, initialOccurrences)
	for n := 1; n <= initialOccurrences; n++ {
		occ := entities.Occurrence{
			Number:  n,
			Kind:    entities.OccurrenceRegular,
			Members: emptySlots(requiredPersons),
		}
		if n == 1 {
			for i, id := range currentAssignees {
				if i >= requiredPersons {
					break
				}
				occ.Members[i].MemberID = id
			}
		}
		s = append(s, occ)
	}
	return s
}

// AppendOccurrence adds one more regular occurrence at the tail of the list.
func AppendOccurrence(s entities.Schedule, requiredPersons int) entities.Schedule {
	if requiredPersons < 1 {
		requiredPersons = 1
	}
	out := append(s.Clone(), entities.Occurrence{
		Kind:    entities.OccurrenceRegular,
		Members: emptySlots(requiredPersons),
	})
	return Renumber(out)
}

// AddSpecialOccurrence appends an ad-hoc appointment with all positions
// unassigned, then restores chronological order and renumbers.
func AddSpecialOccurrence(s entities.Schedule, name string, date *time.Time, requiredPersons int, resolve DateResolver) entities.Schedule {
	if requiredPersons < 1 {
		requiredPersons = 1
	}

	occ := entities.Occurrence{
		Kind:        entities.OccurrenceSpecial,
		SpecialName: name,
		Members:     emptySlots(requiredPersons),
	}
	if date != nil {
		d := *date
		occ.SpecialDate = &d
	}

	out := append(s.Clone(), occ)
	out = SortChronological(out, resolve)
	return Renumber(out)
}

// DeleteOccurrence removes the matching occurrence and renumbers the
// remainder. Unknown numbers are a no-op.
func DeleteOccurrence(s entities.Schedule, number int) entities.Schedule {
	i := s.IndexOf(number)
	if i < 0 {
		return s.Clone()
	}
	out := s.Clone()
	out = append(out[:i], out[i+1:]...)
	return Renumber(out)
}

// MoveOccurrence swaps the occurrence with its neighbor in list order and
// renumbers. Moves past either boundary are a no-op. The list is deliberately
// not re-sorted: a manual move stands until the next structural change.
func MoveOccurrence(s entities.Schedule, number int, direction Direction) entities.Schedule {
	i := s.IndexOf(number)
	if i < 0 {
		return s.Clone()
	}

	j := i
	switch direction {
	case DirectionUp:
		j = i - 1
	case DirectionDown:
		j = i + 1
	}
	if j == i || j < 0 || j >= len(s) {
		return s.Clone()
	}

	out := s.Clone()
	out[i], out[j] = out[j], out[i]
	return Renumber(out)
}

// ToggleSkip flips the skipped flag of the matching occurrence. Numbering and
// order are untouched; toggling twice restores the original schedule.
func ToggleSkip(s entities.Schedule, number int) entities.Schedule {
	out := s.Clone()
	if occ := out.Find(number); occ != nil {
		occ.Skipped = !occ.Skipped
	}
	return out
}

// ResetToRegular clears the special fields of an occurrence, reverting it to
// a plain regular one. Its number stays in the special range until the next
// renumber pass.
func ResetToRegular(s entities.Schedule, number int) entities.Schedule {
	out := s.Clone()
	if occ := out.Find(number); occ != nil {
		occ.Kind = entities.OccurrenceRegular
		occ.SpecialName = ""
		occ.SpecialDate = nil
	}
	return out
}

// SetNotes replaces the free-text notes of the matching occurrence.
func SetNotes(s entities.Schedule, number int, notes string) entities.Schedule {
	out := s.Clone()
	if occ := out.Find(number); occ != nil {
		occ.Notes = notes
	}
	return out
}

// SetSpecialDate replaces the stored date of a special or irregular
// occurrence. Regular occurrences of a dated chore derive their date and are
// left alone.
func SetSpecialDate(s entities.Schedule, number int, date *time.Time) entities.Schedule {
	out := s.Clone()
	if occ := out.Find(number); occ != nil {
		if date == nil {
			occ.SpecialDate = nil
		} else {
			d := *date
			occ.SpecialDate = &d
		}
	}
	return out
}

// SetMember assigns memberID to the given position of the matching
// occurrence. Assigning a non-sentinel member that already holds a different
// position in the same occurrence returns ErrMemberAlreadyAssigned; the
// sentinel (0) always clears the slot.
func SetMember(s entities.Schedule, number, position int, memberID int64) (entities.Schedule, error) {
	out := s.Clone()
	occ := out.Find(number)
	if occ == nil {
		return out, entities.ErrOccurrenceNotFound
	}
	if memberID != entities.UnassignedMember && occ.HasMember(memberID) && occ.MemberAt(position) != memberID {
		return s.Clone(), entities.ErrMemberAlreadyAssigned
	}
	occ.SetSlot(position, memberID)
	return out, nil
}

// AutoFill assigns every empty position of every unskipped occurrence from
// eligibleMembers.
//
// A single cursor rotates over eligibleMembers for the whole fill. For each
// slot, candidates are scanned round-robin from the cursor; a candidate
// already used in the occurrence is skipped, and the member holding the same
// position in the immediately preceding occurrence is avoided as long as any
// other candidate remains. The cursor advances by one per successful
// assignment, regardless of how many candidates were passed over.
func AutoFill(s entities.Schedule, eligibleMembers []int64, requiredPersons int) entities.Schedule {
	out := s.Clone()
	if len(eligibleMembers) == 0 || requiredPersons < 1 {
		return out
	}

	cursor := 0
	for i := range out {
		if out[i].Skipped {
			continue
		}
		for pos := 1; pos <= requiredPersons; pos++ {
			if out[i].MemberAt(pos) != entities.UnassignedMember {
				continue
			}

			prev := entities.UnassignedMember
			if i > 0 {
				prev = out[i-1].MemberAt(pos)
			}

			id, ok := pickCandidate(&out[i], eligibleMembers, cursor, prev)
			if !ok {
				continue
			}
			out[i].SetSlot(pos, id)
			cursor++
		}
	}
	return out
}

// pickCandidate scans eligible members round-robin from the cursor. The
// consecutive-repeat avoidance is a soft preference: a second pass accepts
// the repeat rather than leaving the slot unassigned.
func pickCandidate(occ *entities.Occurrence, eligible []int64, cursor int, prev int64) (int64, bool) {
	for k := 0; k < len(eligible); k++ {
		cand := eligible[(cursor+k)%len(eligible)]
		if occ.HasMember(cand) {
			continue
		}
		if cand == prev && len(eligible) > 1 {
			continue
		}
		return cand, true
	}
	for k := 0; k < len(eligible); k++ {
		cand := eligible[(cursor+k)%len(eligible)]
		if occ.HasMember(cand) {
			continue
		}
		return cand, true
	}
	return entities.UnassignedMember, false
}

// Renumber rewrites occurrence numbers by list position: regular occurrences
// count up from 1, special ones from the special base. The same rule applies
// after every structural change, so the partition always survives.
func Renumber(s entities.Schedule) entities.Schedule {
	out := s.Clone()
	nextRegular, nextSpecial := 1, specialNumberBase
	for i := range out {
		if out[i].IsSpecial() {
			out[i].Number = nextSpecial
			nextSpecial++
		} else {
			out[i].Number = nextRegular
			nextRegular++
		}
	}
	return out
}

// SortChronological stable-sorts the schedule by effective date ascending.
// Occurrences without a resolvable date sort after every dated one; among
// themselves they compare equal, so the stable sort keeps their relative
// order intact.
func SortChronological(s entities.Schedule, resolve DateResolver) entities.Schedule {
	out := s.Clone()
	sort.SliceStable(out, func(a, b int) bool {
		da, oka := EffectiveDate(&out[a], resolve)
		db, okb := EffectiveDate(&out[b], resolve)
		if oka != okb {
			return oka
		}
		if !oka {
			return false
		}
		return da.Before(db)
	})
	return out
}

// EffectiveDate returns the date an occurrence actually happens on: the
// stored special date when present, otherwise the derived date of its number.
func EffectiveDate(o *entities.Occurrence, resolve DateResolver) (time.Time, bool) {
	if o.SpecialDate != nil {
		return *o.SpecialDate, true
	}
	if o.IsSpecial() || resolve == nil {
		return time.Time{}, false
	}
	return resolve(o.Number)
}

func emptySlots(requiredPersons int) []entities.MemberSlot {
	slots := make([]entities.MemberSlot, requiredPersons)
	for i := range slots {
		slots[i].Position = i + 1
	}
	return slots
}
