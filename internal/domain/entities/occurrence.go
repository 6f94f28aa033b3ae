package entities

import "time"

// OccurrenceKind distinguishes regular cadence occurrences from ad-hoc
// special appointments. It replaces the boolean-plus-optional-fields shape
// the web client used.
type OccurrenceKind string

const (
	OccurrenceRegular OccurrenceKind = "regular"
	OccurrenceSpecial OccurrenceKind = "special"
)

// UnassignedMember is the sentinel member ID for an empty schedule slot.
const UnassignedMember int64 = 0

// MemberSlot binds one position of an occurrence to a member.
// Positions are 1-based and unique within one occurrence.
type MemberSlot struct {
	Position int   `json:"position" db:"position"`
	MemberID int64 `json:"member_id" db:"member_id"`
}

// OccurrenceItem links an inventory item needed for one occurrence.
type OccurrenceItem struct {
	ItemID   int64  `json:"item_id" db:"item_id"`
	ItemName string `json:"item_name" db:"item_name"`
}

// Occurrence is one instance of a recurring chore within a schedule.
//
// Regular occurrences derive their date from the chore's recurrence config
// and their number; special occurrences store it in SpecialDate. A regular
// occurrence of an irregular chore also carries its date in SpecialDate
// (nil means the date has not been chosen yet).
type Occurrence struct {
	Number      int              `json:"occurrence_number" db:"occurrence_number"`
	Kind        OccurrenceKind   `json:"kind" db:"kind"`
	Members     []MemberSlot     `json:"members"`
	Notes       string           `json:"notes" db:"notes"`
	Skipped     bool             `json:"is_skipped" db:"is_skipped"`
	SpecialName string           `json:"special_name,omitempty" db:"special_name"`
	SpecialDate *time.Time       `json:"special_date,omitempty" db:"special_date"`
	Items       []OccurrenceItem `json:"items,omitempty"`
}

// Schedule is the ordered list of occurrences for one chore. List position
// carries chronological order; occurrence numbers encode the regular/special
// partition, not ordering.
type Schedule []Occurrence

// IsSpecial reports whether the occurrence is an ad-hoc appointment.
func (o *Occurrence) IsSpecial() bool {
	return o.Kind == OccurrenceSpecial
}

// MemberAt returns the member at the given position, or UnassignedMember
// when the position is empty or missing.
func (o *Occurrence) MemberAt(position int) int64 {
	for _, slot := range o.Members {
		if slot.Position == position {
			return slot.MemberID
		}
	}
	return UnassignedMember
}

// HasMember reports whether a non-sentinel member occupies any position.
func (o *Occurrence) HasMember(memberID int64) bool {
	if memberID == UnassignedMember {
		return false
	}
	for _, slot := range o.Members {
		if slot.MemberID == memberID {
			return true
		}
	}
	return false
}

// SetSlot sets or inserts the member at the given position, keeping slots
// ordered by position. It performs no uniqueness check; that belongs to the
// rotation builder.
func (o *Occurrence) SetSlot(position int, memberID int64) {
	for i := range o.Members {
		if o.Members[i].Position == position {
			o.Members[i].MemberID = memberID
			return
		}
	}
	o.Members = append(o.Members, MemberSlot{Position: position, MemberID: memberID})
	for i := len(o.Members) - 1; i > 0 && o.Members[i-1].Position > o.Members[i].Position; i-- {
		o.Members[i-1], o.Members[i] = o.Members[i], o.Members[i-1]
	}
}

// Clone returns a deep copy of the occurrence.
func (o Occurrence) Clone() Occurrence {
	out := o
	out.Members = make([]MemberSlot, len(o.Members))
	copy(out.Members, o.Members)
	if len(o.Items) > 0 {
		out.Items = make([]OccurrenceItem, len(o.Items))
		copy(out.Items, o.Items)
	}
	if o.SpecialDate != nil {
		d := *o.SpecialDate
		out.SpecialDate = &d
	}
	return out
}

// Clone returns a deep copy of the schedule.
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	for i, occ := range s {
		out[i] = occ.Clone()
	}
	return out
}

// IndexOf returns the list index of the occurrence with the given number,
// or -1 when absent.
func (s Schedule) IndexOf(number int) int {
	for i := range s {
		if s[i].Number == number {
			return i
		}
	}
	return -1
}

// Find returns the occurrence with the given number, or nil.
func (s Schedule) Find(number int) *Occurrence {
	if i := s.IndexOf(number); i >= 0 {
		return &s[i]
	}
	return nil
}
