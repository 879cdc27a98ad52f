package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListQuery struct {
	UserID   *uuid.UUID
	Status   string
	Page     int
	PageSize int
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context, q ListQuery) ([]Leave, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	// FindByIDForUpdate row-locks the leave for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Leave, error)
	// FindOverlapping returns the first non-rejected leave of userID whose
	// range intersects [start, end], or nil when there is none.
	FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*Leave, error)
	Update(ctx context.Context, l *Leave) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
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

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *repository) FindAll(ctx context.Context, q ListQuery) ([]Leave, int64, error) {
	db := r.conn(ctx).Model(&Leave{})
	if q.UserID != nil {
		db = db.Where("user_id = ?", *q.UserID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leaves []Leave
	err := db.
		Preload("Files", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Order("submitted_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&leaves).Error
	return leaves, total, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).
		Preload("Files", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*Leave, error) {
	db := r.conn(ctx).
		Where("user_id = ?", userID).
		Where("status <> ?", StatusRejected).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != nil {
		db = db.Where("id <> ?", *excludeID)
	}

	var found []Leave
	if err := db.Order("start_date ASC").Limit(1).Find(&found).Error; err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *repository) Update(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Omit(clause.Associations).Save(l).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.conn(ctx).Delete(&Leave{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
