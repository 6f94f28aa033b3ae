package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNthWeekdayOfMonth(t *testing.T) {
	tests := []struct {
		name       string
		year       int
		month      time.Month
		weekday    time.Weekday
		occurrence int
		want       time.Time
		wantOK     bool
	}{
		{
			name: "1st Thursday of February 2026",
			year: 2026, month: time.February, weekday: time.Thursday, occurrence: 1,
			want: date(2026, time.February, 5), wantOK: true,
		},
		{
			name: "3rd Thursday of February 2026",
			year: 2026, month: time.February, weekday: time.Thursday, occurrence: 3,
			want: date(2026, time.February, 19), wantOK: true,
		},
		{
			name: "5th Monday of March 2026 exists",
			year: 2026, month: time.March, weekday: time.Monday, occurrence: 5,
			want: date(2026, time.March, 30), wantOK: true,
		},
		{
			name: "5th Monday of April 2026 does not exist",
			year: 2026, month: time.April, weekday: time.Monday, occurrence: 5,
			wantOK: false,
		},
		{
			name: "occurrence zero is out of range",
			year: 2026, month: time.April, weekday: time.Monday, occurrence: 0,
			wantOK: false,
		},
		{
			name: "occurrence six is out of range",
			year: 2026, month: time.March, weekday: time.Monday, occurrence: 6,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NthWeekdayOfMonth(tt.year, tt.month, tt.weekday, tt.occurrence, time.UTC)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWeekdayOccurrence(t *testing.T) {
	wd, occ := WeekdayOccurrence(date(2026, time.February, 19))
	assert.Equal(t, time.Thursday, wd)
	assert.Equal(t, 3, occ)

	wd, occ = WeekdayOccurrence(date(2026, time.March, 30))
	assert.Equal(t, time.Monday, wd)
	assert.Equal(t, 5, occ)

	wd, occ = WeekdayOccurrence(date(2026, time.March, 1))
	assert.Equal(t, time.Sunday, wd)
	assert.Equal(t, 1, occ)

	_, occ = WeekdayOccurrence(date(2026, time.March, 7))
	assert.Equal(t, 1, occ)

	_, occ = WeekdayOccurrence(date(2026, time.March, 8))
	assert.Equal(t, 2, occ)
}

func TestNextMonthlyOccurrence_SameDate(t *testing.T) {
	tests := []struct {
		name    string
		current time.Time
		months  int
		want    time.Time
	}{
		{
			name:    "day preserved when it exists",
			current: date(2026, time.January, 15),
			months:  1,
			want:    date(2026, time.February, 15),
		},
		{
			name:    "multi-month interval",
			current: date(2026, time.January, 15),
			months:  3,
			want:    date(2026, time.April, 15),
		},
		{
			name:    "missing day normalizes forward",
			current: date(2026, time.January, 31),
			months:  1,
			want:    date(2026, time.March, 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextMonthlyOccurrence(tt.current, tt.months, MonthlySameDate))
		})
	}
}

func TestNextMonthlyOccurrence_SameWeekday(t *testing.T) {
	tests := []struct {
		name    string
		current time.Time
		months  int
		want    time.Time
	}{
		{
			name:    "3rd Thursday advances to 3rd Thursday",
			current: date(2026, time.February, 19),
			months:  1,
			want:    date(2026, time.March, 19),
		},
		{
			name:    "multi-month interval lands on 3rd Thursday of May",
			current: date(2026, time.February, 19),
			months:  3,
			want:    date(2026, time.May, 21),
		},
		{
			name:    "missing 5th Monday falls back to the 4th",
			current: date(2026, time.March, 30),
			months:  1,
			want:    date(2026, time.April, 27),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextMonthlyOccurrence(tt.current, tt.months, MonthlySameWeekday))
		})
	}
}

func TestNextMonthlyOccurrence_PreservesClockAndLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	current := time.Date(2026, time.February, 19, 18, 30, 0, 0, loc)

	got := NextMonthlyOccurrence(current, 1, MonthlySameWeekday)

	assert.Equal(t, 18, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.Equal(t, loc, got.Location())
	assert.Equal(t, date(2026, time.March, 19).Day(), got.Day())
}

func TestOccurrenceDate_AnchorInvariance(t *testing.T) {
	anchor := date(2026, time.March, 30) // 5th Monday, atypical for its pairing

	for _, mode := range []MonthlyMode{MonthlySameDate, MonthlySameWeekday} {
		cfg := Config{Interval: 1, Unit: UnitMonths, MonthlyMode: mode, AnchorDate: anchor}

		got, ok := cfg.OccurrenceDate(1)
		require.True(t, ok)
		assert.Equal(t, anchor, got, "occurrence #1 must equal the anchor for mode %s", mode)
	}
}

func TestOccurrenceDate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		n      int
		want   time.Time
		wantOK bool
	}{
		{
			name:   "daily interval 3, occurrence 4",
			cfg:    Config{Interval: 3, Unit: UnitDays, AnchorDate: date(2026, time.January, 1)},
			n:      4,
			want:   date(2026, time.January, 10),
			wantOK: true,
		},
		{
			name:   "biweekly, occurrence 3",
			cfg:    Config{Interval: 2, Unit: UnitWeeks, AnchorDate: date(2026, time.January, 5)},
			n:      3,
			want:   date(2026, time.February, 2),
			wantOK: true,
		},
		{
			name:   "monthly same date, occurrence 2",
			cfg:    Config{Interval: 1, Unit: UnitMonths, MonthlyMode: MonthlySameDate, AnchorDate: date(2026, time.January, 15)},
			n:      2,
			want:   date(2026, time.February, 15),
			wantOK: true,
		},
		{
			name:   "irregular derives no date",
			cfg:    Config{Unit: UnitIrregular},
			n:      1,
			wantOK: false,
		},
		{
			name:   "occurrence zero",
			cfg:    Config{Interval: 1, Unit: UnitDays, AnchorDate: date(2026, time.January, 1)},
			n:      0,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.cfg.OccurrenceDate(tt.n)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOccurrenceDate_MonthlySameWeekdaySequence(t *testing.T) {
	cfg := Config{
		Interval:    1,
		Unit:        UnitMonths,
		MonthlyMode: MonthlySameWeekday,
		AnchorDate:  date(2026, time.February, 19),
	}

	want := []time.Time{
		date(2026, time.February, 19),
		date(2026, time.March, 19),
		date(2026, time.April, 16),
	}

	for i, w := range want {
		got, ok := cfg.OccurrenceDate(i + 1)
		require.True(t, ok)
		assert.Equal(t, w, got, "occurrence %d", i+1)
	}
}
