package balance

import (
	"context"
	"database/sql"

	balanceerrors "github.com/jackson951/flexileave-app-sub001/internal/balance/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ledger is the only writer of users.leave_balances outside the admin edit
// path. Callers pass the transaction that also mutates the leave row.
type Ledger interface {
	WithTx(tx *sql.Tx) Ledger
	// Available returns the current balance, or InsufficientBalance when the
	// request would overdraw it.
	Available(ctx context.Context, userID uuid.UUID, lt LeaveType, days int) (int, error)
	Debit(ctx context.Context, userID uuid.UUID, lt LeaveType, days int) (int, error)
	Credit(ctx context.Context, userID uuid.UUID, lt LeaveType, days int) (int, error)
}

type ledger struct {
	repo   Repository
	logger *zap.Logger
}

func NewLedger(repo Repository, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("balance.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.ledger")
	}
	return &ledger{repo: repo, logger: l}
}

func (l *ledger) WithTx(tx *sql.Tx) Ledger {
	return &ledger{repo: l.repo.WithTx(tx), logger: l.logger}
}

func (l *ledger) Available(ctx context.Context, userID uuid.UUID, lt LeaveType, days int) (int, error) {
	balances, err := l.lock(ctx, userID, lt, days)
	if err != nil {
		return 0, err
	}
	current := balances[lt]
	if err := l.ensure(userID, lt, current, days); err != nil {
		return current, err
	}
	return current, nil
}

func (l *ledger) Debit(ctx context.Context, userID uuid.UUID, lt LeaveType, days int) (int, error) {
	balances, err := l.lock(ctx, userID, lt, days)
	if err != nil {
		return 0, err
	}
	current := balances[lt]
	if err := l.ensure(userID, lt, current, days); err != nil {
		return current, err
	}
	if !lt.Capped() {
		return current, nil
	}
	return l.save(ctx, userID, balances, lt, current-days, "debit")
}

func (l *ledger) Credit(ctx context.Context, userID uuid.UUID, lt LeaveType, days int) (int, error) {
	balances, err := l.lock(ctx, userID, lt, days)
	if err != nil {
		return 0, err
	}
	current := balances[lt]
	if !lt.Capped() {
		return current, nil
	}
	return l.save(ctx, userID, balances, lt, current+days, "credit")
}

func (l *ledger) lock(ctx context.Context, userID uuid.UUID, lt LeaveType, days int) (Balances, error) {
	if err := checkArgs(lt, days); err != nil {
		return nil, err
	}
	balances, err := l.repo.LockBalances(ctx, userID)
	if err != nil {
		l.logger.Error("lock leave balances failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return balances, nil
}

func (l *ledger) ensure(userID uuid.UUID, lt LeaveType, current, days int) error {
	if !lt.Capped() || current >= days {
		return nil
	}
	l.logger.Warn("insufficient leave balance",
		zap.String("user_id", userID.String()),
		zap.String("leave_type", lt.String()),
		zap.Int("available", current),
		zap.Int("requested", days),
	)
	return balanceerrors.InsufficientBalance(lt.String(), current, days)
}

func (l *ledger) save(ctx context.Context, userID uuid.UUID, balances Balances, lt LeaveType, next int, op string) (int, error) {
	balances[lt] = next
	if err := l.repo.SaveBalances(ctx, userID, balances); err != nil {
		l.logger.Error("save leave balance failed",
			zap.String("op", op),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return 0, err
	}
	l.logger.Info("leave balance updated",
		zap.String("op", op),
		zap.String("user_id", userID.String()),
		zap.String("leave_type", lt.String()),
		zap.Int("balance", next),
	)
	return next, nil
}

func checkArgs(lt LeaveType, days int) error {
	if !lt.Valid() {
		return balanceerrors.ErrUnknownLeaveType
	}
	if days <= 0 {
		return balanceerrors.ErrInvalidDays
	}
	return nil
}
