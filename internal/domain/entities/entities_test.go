package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choreboard/core/internal/domain/recurrence"
)

func TestLoanTransitions(t *testing.T) {
	loan := &Loan{Status: LoanStatusRequested}

	require.NoError(t, loan.Accept())
	assert.Equal(t, LoanStatusAccepted, loan.Status)
	require.NotNil(t, loan.AcceptedAt)

	// Accepting twice is invalid.
	assert.ErrorIs(t, loan.Accept(), ErrInvalidLoanTransition)

	require.NoError(t, loan.Return())
	assert.Equal(t, LoanStatusReturned, loan.Status)
	require.NotNil(t, loan.ReturnedAt)

	// A returned loan is closed for good.
	assert.ErrorIs(t, loan.Return(), ErrInvalidLoanTransition)
	assert.ErrorIs(t, loan.Decline(), ErrInvalidLoanTransition)
}

func TestLoanDecline(t *testing.T) {
	loan := &Loan{Status: LoanStatusRequested}

	require.NoError(t, loan.Decline())
	assert.Equal(t, LoanStatusDeclined, loan.Status)

	// A declined loan cannot be accepted or returned.
	assert.ErrorIs(t, loan.Accept(), ErrInvalidLoanTransition)
	assert.ErrorIs(t, loan.Return(), ErrInvalidLoanTransition)
}

func TestLoanIsOverdue(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	assert.True(t, (&Loan{Status: LoanStatusAccepted, DueDate: &past}).IsOverdue())
	assert.False(t, (&Loan{Status: LoanStatusAccepted, DueDate: &future}).IsOverdue())
	assert.False(t, (&Loan{Status: LoanStatusAccepted}).IsOverdue())
	// Only an accepted loan can be overdue.
	assert.False(t, (&Loan{Status: LoanStatusRequested, DueDate: &past}).IsOverdue())
}

func TestChoreValidateRecurrence(t *testing.T) {
	anchor := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		chore   Chore
		wantErr bool
	}{
		{
			name:  "valid weekly",
			chore: Chore{Unit: recurrence.UnitWeeks, Interval: 1, AnchorDate: &anchor},
		},
		{
			name:  "irregular needs nothing else",
			chore: Chore{Unit: recurrence.UnitIrregular},
		},
		{
			name: "valid monthly same weekday",
			chore: Chore{
				Unit: recurrence.UnitMonths, Interval: 1, AnchorDate: &anchor,
				MonthlyMode: recurrence.MonthlySameWeekday, MonthlyWeekday: 4, MonthlyOccurrence: 3,
			},
		},
		{
			name:    "unknown unit",
			chore:   Chore{Unit: "fortnights", Interval: 1, AnchorDate: &anchor},
			wantErr: true,
		},
		{
			name:    "missing anchor",
			chore:   Chore{Unit: recurrence.UnitDays, Interval: 2},
			wantErr: true,
		},
		{
			name:    "zero interval",
			chore:   Chore{Unit: recurrence.UnitDays, Interval: 0, AnchorDate: &anchor},
			wantErr: true,
		},
		{
			name:    "monthly without mode",
			chore:   Chore{Unit: recurrence.UnitMonths, Interval: 1, AnchorDate: &anchor},
			wantErr: true,
		},
		{
			name: "same weekday occurrence out of range",
			chore: Chore{
				Unit: recurrence.UnitMonths, Interval: 1, AnchorDate: &anchor,
				MonthlyMode: recurrence.MonthlySameWeekday, MonthlyWeekday: 1, MonthlyOccurrence: 6,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.chore.ValidateRecurrence()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecurrence)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOccurrenceSetSlotKeepsOrder(t *testing.T) {
	occ := Occurrence{Kind: OccurrenceRegular}

	occ.SetSlot(3, 30)
	occ.SetSlot(1, 10)
	occ.SetSlot(2, 20)

	require.Len(t, occ.Members, 3)
	assert.Equal(t, []MemberSlot{{1, 10}, {2, 20}, {3, 30}}, occ.Members)

	// Overwriting an existing position does not grow the slice.
	occ.SetSlot(2, 25)
	require.Len(t, occ.Members, 3)
	assert.Equal(t, int64(25), occ.MemberAt(2))
}
