package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choreboard/core/internal/domain/entities"
	"github.com/choreboard/core/internal/infrastructure/logger"
	"github.com/choreboard/core/internal/ports"
)

type fakeHouseholdRepo struct {
	connected bool
}

func (f *fakeHouseholdRepo) Create(ctx context.Context, household *entities.Household) error {
	return nil
}
func (f *fakeHouseholdRepo) GetByID(ctx context.Context, id int64) (*entities.Household, error) {
	return &entities.Household{ID: id}, nil
}
func (f *fakeHouseholdRepo) GetByInviteCode(ctx context.Context, code string) (*entities.Household, error) {
	return nil, entities.ErrHouseholdNotFound
}
func (f *fakeHouseholdRepo) Update(ctx context.Context, household *entities.Household) error {
	return nil
}
func (f *fakeHouseholdRepo) Delete(ctx context.Context, id int64) error { return nil }
func (f *fakeHouseholdRepo) List(ctx context.Context, filter ports.HouseholdFilter) ([]*entities.Household, error) {
	return nil, nil
}
func (f *fakeHouseholdRepo) Connect(ctx context.Context, householdID, connectedHouseholdID int64) error {
	return nil
}
func (f *fakeHouseholdRepo) Disconnect(ctx context.Context, householdID, connectedHouseholdID int64) error {
	return nil
}
func (f *fakeHouseholdRepo) GetConnections(ctx context.Context, householdID int64) ([]entities.HouseholdConnection, error) {
	return nil, nil
}
func (f *fakeHouseholdRepo) AreConnected(ctx context.Context, householdID, otherHouseholdID int64) (bool, error) {
	return f.connected, nil
}

type fakeLoanRepo struct {
	loans  map[int64]*entities.Loan
	nextID int64
}

func (f *fakeLoanRepo) Create(ctx context.Context, loan *entities.Loan) error {
	f.nextID++
	loan.ID = f.nextID
	f.loans[loan.ID] = loan
	return nil
}
func (f *fakeLoanRepo) GetByID(ctx context.Context, id int64) (*entities.Loan, error) {
	loan, ok := f.loans[id]
	if !ok {
		return nil, entities.ErrLoanNotFound
	}
	return loan, nil
}
func (f *fakeLoanRepo) Update(ctx context.Context, loan *entities.Loan) error {
	f.loans[loan.ID] = loan
	return nil
}
func (f *fakeLoanRepo) List(ctx context.Context, filter ports.LoanFilter) ([]*entities.Loan, error) {
	return nil, nil
}
func (f *fakeLoanRepo) GetOpenLoanForItem(ctx context.Context, itemID int64) (*entities.Loan, error) {
	for _, loan := range f.loans {
		if loan.ItemID != itemID {
			continue
		}
		if loan.Status == entities.LoanStatusRequested || loan.Status == entities.LoanStatusAccepted {
			return loan, nil
		}
	}
	return nil, entities.ErrLoanNotFound
}

func newTestLoanService(items map[int64]*entities.Item, connected bool) (ports.LoanService, *fakeLoanRepo, *fakeActivity) {
	itemRepo := &fakeItemRepo{items: items}
	loanRepo := &fakeLoanRepo{loans: map[int64]*entities.Loan{}}
	householdRepo := &fakeHouseholdRepo{connected: connected}
	activity := &fakeActivity{}

	svc := NewLoanService(itemRepo, loanRepo, householdRepo, activity, logger.NewNop())
	return svc, loanRepo, activity
}

func lendableItem() *entities.Item {
	return &entities.Item{ID: 1, HouseholdID: 1, Name: "Pressure washer", IsLendable: true}
}

func TestRequestLoanOwnHousehold(t *testing.T) {
	svc, loanRepo, _ := newTestLoanService(map[int64]*entities.Item{1: lendableItem()}, true)

	_, err := svc.RequestLoan(context.Background(), ports.RequestLoanRequest{
		ItemID:              1,
		BorrowerHouseholdID: 1,
	})
	assert.ErrorIs(t, err, entities.ErrOwnHouseholdLoan)
	assert.Empty(t, loanRepo.loans)
}

func TestRequestLoanRequiresConnection(t *testing.T) {
	svc, loanRepo, _ := newTestLoanService(map[int64]*entities.Item{1: lendableItem()}, false)

	_, err := svc.RequestLoan(context.Background(), ports.RequestLoanRequest{
		ItemID:              1,
		BorrowerHouseholdID: 2,
	})
	assert.ErrorIs(t, err, entities.ErrHouseholdsNotConnected)
	assert.Empty(t, loanRepo.loans)
}

func TestRequestLoanNotLendable(t *testing.T) {
	item := lendableItem()
	item.IsLendable = false
	svc, _, _ := newTestLoanService(map[int64]*entities.Item{1: item}, true)

	_, err := svc.RequestLoan(context.Background(), ports.RequestLoanRequest{
		ItemID:              1,
		BorrowerHouseholdID: 2,
	})
	assert.ErrorIs(t, err, entities.ErrItemNotLendable)
}

func TestLoanLifecycle(t *testing.T) {
	svc, _, activity := newTestLoanService(map[int64]*entities.Item{1: lendableItem()}, true)

	loan, err := svc.RequestLoan(context.Background(), ports.RequestLoanRequest{
		ItemID:              1,
		BorrowerHouseholdID: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.LoanStatusRequested, loan.Status)

	// A second request while the first is open is rejected.
	_, err = svc.RequestLoan(context.Background(), ports.RequestLoanRequest{
		ItemID:              1,
		BorrowerHouseholdID: 2,
	})
	assert.ErrorIs(t, err, entities.ErrItemAlreadyLent)

	loan, err = svc.AcceptLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.LoanStatusAccepted, loan.Status)

	loan, err = svc.ReturnLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.LoanStatusReturned, loan.Status)

	// Once returned, the item can be requested again.
	_, err = svc.RequestLoan(context.Background(), ports.RequestLoanRequest{
		ItemID:              1,
		BorrowerHouseholdID: 2,
	})
	require.NoError(t, err)

	assert.Contains(t, activity.actions, "loan.requested")
	assert.Contains(t, activity.actions, "loan.accepted")
	assert.Contains(t, activity.actions, "loan.returned")
}
