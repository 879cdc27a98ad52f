package notification

import (
	"context"
	"database/sql"

	"github.com/jackson951/flexileave-app-sub001/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, recipientID uuid.UUID, filter ListFilter) ([]Notification, int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, recipientID uuid.UUID) (int64, error)
	DeleteAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	ClearLeave(ctx context.Context, leaveID uuid.UUID) error
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

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.conn(ctx).Create(n).Error
}

func (r *repository) List(ctx context.Context, recipientID uuid.UUID, filter ListFilter) ([]Notification, int64, error) {
	q := r.conn(ctx).Model(&Notification{}).Where("recipient_id = ?", recipientID)
	if filter.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Notification
	err := q.Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&items).Error
	return items, total, err
}

func (r *repository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Notification{}).
		Where("recipient_id = ?", recipientID).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}

func (r *repository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (int64, error) {
	res := r.conn(ctx).
		Model(&Notification{}).
		Where("id = ?", id).
		Where("recipient_id = ?", recipientID).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *repository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	res := r.conn(ctx).
		Model(&Notification{}).
		Where("recipient_id = ?", recipientID).
		Where("is_read = ?", false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id, recipientID uuid.UUID) (int64, error) {
	res := r.conn(ctx).
		Where("recipient_id = ?", recipientID).
		Delete(&Notification{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	res := r.conn(ctx).
		Where("recipient_id = ?", recipientID).
		Where("is_read = ?", true).
		Delete(&Notification{})
	return res.RowsAffected, res.Error
}

func (r *repository) ClearLeave(ctx context.Context, leaveID uuid.UUID) error {
	return r.conn(ctx).
		Model(&Notification{}).
		Where("leave_id = ?", leaveID).
		Update("leave_id", nil).Error
}
