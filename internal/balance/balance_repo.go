package balance

import (
	"context"
	"database/sql"
	"errors"

	balanceerrors "github.com/jackson951/flexileave-app-sub001/internal/balance/errors"
	"github.com/jackson951/flexileave-app-sub001/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// LockBalances reads the user's balances and holds a row lock until the
	// surrounding transaction ends.
	LockBalances(ctx context.Context, userID uuid.UUID) (Balances, error)
	SaveBalances(ctx context.Context, userID uuid.UUID, b Balances) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

type balanceRow struct {
	LeaveBalances datatypes.JSON `gorm:"column:leave_balances"`
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return dbtx.Bind(r.db, r.tx).WithContext(ctx)
}

func (r *repository) LockBalances(ctx context.Context, userID uuid.UUID) (Balances, error) {
	var row balanceRow
	err := r.conn(ctx).
		Table("users").
		Select("leave_balances").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, balanceerrors.ErrUserNotFound
		}
		return nil, err
	}
	return Decode(row.LeaveBalances)
}

func (r *repository) SaveBalances(ctx context.Context, userID uuid.UUID, b Balances) error {
	raw, err := Encode(b)
	if err != nil {
		return err
	}
	res := r.conn(ctx).
		Table("users").
		Where("id = ?", userID).
		Update("leave_balances", raw)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return balanceerrors.ErrUserNotFound
	}
	return nil
}
