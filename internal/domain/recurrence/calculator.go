// Package recurrence computes concrete calendar dates for recurring chores.
//
// All operations work on calendar fields (year, month, day) and preserve the
// wall-clock time and Location of their inputs. Nothing here assumes UTC.
package recurrence

import "time"

// Unit describes the cadence of a recurring chore.
type Unit string

const (
	UnitDays      Unit = "days"
	UnitWeeks     Unit = "weeks"
	UnitMonths    Unit = "months"
	UnitIrregular Unit = "irregular"
)

// MonthlyMode selects how a monthly chore advances from one month to the next.
type MonthlyMode string

const (
	// MonthlySameDate keeps the day-of-month (Jan 15 -> Feb 15).
	MonthlySameDate MonthlyMode = "same_date"
	// MonthlySameWeekday keeps the Nth-weekday pairing (3rd Thursday -> 3rd Thursday).
	MonthlySameWeekday MonthlyMode = "same_weekday"
)

// Config describes how a chore repeats.
//
// MonthlyWeekday and MonthlyOccurrence are the stored selectors for
// same_weekday mode; they are expected to be consistent with AnchorDate.
// The calculator itself derives the pairing from the date it advances, so an
// inconsistent pair is never validated here. AnchorDate is the date of
// occurrence #1 and is required for every unit except UnitIrregular.
type Config struct {
	Interval          int          `json:"interval"`
	Unit              Unit         `json:"unit"`
	MonthlyMode       MonthlyMode  `json:"monthly_mode,omitempty"`
	MonthlyWeekday    time.Weekday `json:"monthly_weekday,omitempty"`
	MonthlyOccurrence int          `json:"monthly_occurrence,omitempty"`
	AnchorDate        time.Time    `json:"anchor_date"`
}

// IsValid reports whether the unit is one of the known cadences.
func (u Unit) IsValid() bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths, UnitIrregular:
		return true
	default:
		return false
	}
}

// IsValid reports whether the mode is one of the known monthly modes.
func (m MonthlyMode) IsValid() bool {
	switch m {
	case MonthlySameDate, MonthlySameWeekday:
		return true
	default:
		return false
	}
}

// NthWeekdayOfMonth returns the date of the Nth given weekday in (year, month),
// at midnight in loc. ok is false when that occurrence does not exist, e.g.
// the 5th Monday of a four-Monday month. An out-of-range occurrence (< 1 or
// > 5) also reports false.
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, occurrence int, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	d := first.AddDate(0, 0, offset+(occurrence-1)*7)

	if d.Month() != month || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

// WeekdayOccurrence extracts the (weekday, Nth-of-month) pairing of a date.
// The 1st through 7th are occurrence 1, the 8th through 14th occurrence 2,
// and so on.
func WeekdayOccurrence(d time.Time) (time.Weekday, int) {
	return d.Weekday(), (d.Day()-1)/7 + 1
}

// NextMonthlyOccurrence advances current by monthsToAdd months under the
// given mode.
//
// same_date delegates to AddDate, so a day that does not exist in the target
// month normalizes forward (Jan 31 + 1 month lands in early March).
//
// same_weekday keeps the Nth-weekday pairing of current. When the Nth
// occurrence is missing from the target month it falls back to the
// (N-1)th, and failing that to the 1st of the month. The wall-clock time and
// Location of current are preserved in either mode.
func NextMonthlyOccurrence(current time.Time, monthsToAdd int, mode MonthlyMode) time.Time {
	if mode != MonthlySameWeekday {
		return current.AddDate(0, monthsToAdd, 0)
	}

	weekday, occurrence := WeekdayOccurrence(current)

	// Advance from the 1st so month arithmetic never overflows.
	base := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, current.Location())
	base = base.AddDate(0, monthsToAdd, 0)

	day := 1
	if d, ok := NthWeekdayOfMonth(base.Year(), base.Month(), weekday, occurrence, current.Location()); ok {
		day = d.Day()
	} else if d, ok := NthWeekdayOfMonth(base.Year(), base.Month(), weekday, occurrence-1, current.Location()); ok {
		day = d.Day()
	}

	return time.Date(base.Year(), base.Month(), day,
		current.Hour(), current.Minute(), current.Second(), current.Nanosecond(),
		current.Location())
}

// OccurrenceDate resolves the date of the 1-based occurrence n.
//
// Occurrence #1 is always exactly AnchorDate, never recalculated through the
// weekday logic; this keeps an anchor that is itself an atypical date for its
// pairing from drifting. ok is false for UnitIrregular (dates for irregular
// chores are stored per occurrence, not derived) and for n < 1.
func (c Config) OccurrenceDate(n int) (time.Time, bool) {
	if n < 1 || c.Unit == UnitIrregular {
		return time.Time{}, false
	}
	if n == 1 {
		return c.AnchorDate, true
	}

	steps := c.Interval * (n - 1)
	switch c.Unit {
	case UnitDays:
		return c.AnchorDate.AddDate(0, 0, steps), true
	case UnitWeeks:
		return c.AnchorDate.AddDate(0, 0, steps*7), true
	case UnitMonths:
		return NextMonthlyOccurrence(c.AnchorDate, steps, c.MonthlyMode), true
	default:
		return time.Time{}, false
	}
}
