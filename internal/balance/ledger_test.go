package balance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackson951/flexileave-app-sub001/internal/balance"
	balanceerrors "github.com/jackson951/flexileave-app-sub001/internal/balance/errors"
	"github.com/jackson951/flexileave-app-sub001/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeBalanceRepository struct {
	stored  map[uuid.UUID]balance.Balances
	saves   int
	saveErr error
}

func newFakeBalanceRepository() *fakeBalanceRepository {
	return &fakeBalanceRepository{stored: map[uuid.UUID]balance.Balances{}}
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository {
	return f
}

func (f *fakeBalanceRepository) LockBalances(ctx context.Context, userID uuid.UUID) (balance.Balances, error) {
	b, ok := f.stored[userID]
	if !ok {
		return nil, balanceerrors.ErrUserNotFound
	}
	return b.Clone().Normalize(), nil
}

func (f *fakeBalanceRepository) SaveBalances(ctx context.Context, userID uuid.UUID, b balance.Balances) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.stored[userID] = b.Clone()
	return nil
}

func TestLedger_Available(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBalanceRepository()
	ledger := balance.NewLedger(repo)
	userID := uuid.New()
	repo.stored[userID] = balance.Balances{balance.AnnualLeave: 3}

	t.Run("enough", func(t *testing.T) {
		got, err := ledger.Available(ctx, userID, balance.AnnualLeave, 3)
		assert.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("insufficient carries details", func(t *testing.T) {
		_, err := ledger.Available(ctx, userID, balance.AnnualLeave, 4)
		assert.True(t, errors.Is(err, balanceerrors.ErrInsufficientBalance))

		var appErr *apperror.AppError
		assert.True(t, errors.As(err, &appErr))
		details := appErr.Details.(map[string]any)
		assert.Equal(t, "AnnualLeave", details["leave_type"])
		assert.Equal(t, 3, details["available"])
		assert.Equal(t, 4, details["requested"])
	})

	t.Run("unpaid is never capped", func(t *testing.T) {
		_, err := ledger.Available(ctx, userID, balance.UnpaidLeave, 60)
		assert.NoError(t, err)
	})

	t.Run("zero days", func(t *testing.T) {
		_, err := ledger.Available(ctx, userID, balance.AnnualLeave, 0)
		assert.True(t, errors.Is(err, balanceerrors.ErrInvalidDays))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := ledger.Available(ctx, uuid.New(), balance.AnnualLeave, 1)
		assert.True(t, errors.Is(err, balanceerrors.ErrUserNotFound))
	})
}

func TestLedger_DebitCreditRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBalanceRepository()
	ledger := balance.NewLedger(repo)
	userID := uuid.New()
	repo.stored[userID] = balance.Balances{balance.AnnualLeave: 10, balance.SickLeave: 2}

	left, err := ledger.Debit(ctx, userID, balance.AnnualLeave, 5)
	assert.NoError(t, err)
	assert.Equal(t, 5, left)

	back, err := ledger.Credit(ctx, userID, balance.AnnualLeave, 5)
	assert.NoError(t, err)
	assert.Equal(t, 10, back)

	assert.Equal(t, 2, repo.stored[userID][balance.SickLeave])
	assert.Equal(t, 2, repo.saves)
}

func TestLedger_DebitInsufficientDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBalanceRepository()
	ledger := balance.NewLedger(repo)
	userID := uuid.New()
	repo.stored[userID] = balance.Balances{balance.SickLeave: 1}

	_, err := ledger.Debit(ctx, userID, balance.SickLeave, 2)
	assert.True(t, errors.Is(err, balanceerrors.ErrInsufficientBalance))
	assert.Equal(t, 0, repo.saves)
	assert.Equal(t, 1, repo.stored[userID][balance.SickLeave])
}

func TestLedger_UnpaidLeaveIsLeftAlone(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBalanceRepository()
	ledger := balance.NewLedger(repo)
	userID := uuid.New()
	repo.stored[userID] = balance.Balances{balance.UnpaidLeave: 0}

	got, err := ledger.Debit(ctx, userID, balance.UnpaidLeave, 7)
	assert.NoError(t, err)
	assert.Equal(t, 0, got)

	got, err = ledger.Credit(ctx, userID, balance.UnpaidLeave, 7)
	assert.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.Equal(t, 0, repo.saves)
}

func TestLedger_SaveFailure(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBalanceRepository()
	repo.saveErr = errors.New("db down")
	ledger := balance.NewLedger(repo)
	userID := uuid.New()
	repo.stored[userID] = balance.Balances{balance.AnnualLeave: 10}

	_, err := ledger.Credit(ctx, userID, balance.AnnualLeave, 1)
	assert.EqualError(t, err, "db down")
}
