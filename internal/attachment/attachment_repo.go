package attachment

import (
	"context"
	"database/sql"
	"time"

	attachmenterrors "github.com/jackson951/flexileave-app-sub001/internal/attachment/errors"
	"github.com/jackson951/flexileave-app-sub001/internal/shared/dbtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=attachment_repo.go -destination=mock/attachment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, f *File) error
	FindByID(ctx context.Context, id uuid.UUID) (*File, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]File, error)
	FindByLeave(ctx context.Context, leaveID uuid.UUID) ([]File, error)
	// Attach links unattached files, or files already on leaveID, to leaveID.
	// It fails with ErrFileAttachedElsewhere when any id belongs to another leave.
	Attach(ctx context.Context, leaveID uuid.UUID, ids []uuid.UUID) error
	// Detach unlinks files that are currently attached to leaveID.
	Detach(ctx context.Context, leaveID uuid.UUID, ids []uuid.UUID) error
	DetachByLeave(ctx context.Context, leaveID uuid.UUID) ([]uuid.UUID, error)
	Release(ctx context.Context, id uuid.UUID) error
	ListOrphaned(ctx context.Context, olderThan time.Time, limit int) ([]File, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteIfOrphaned removes the row only while it is still unattached and
	// reports whether a row was removed.
	DeleteIfOrphaned(ctx context.Context, id uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, f *File) error {
	return r.conn(ctx).Create(f).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*File, error) {
	var f File
	err := r.conn(ctx).First(&f, "id = ?", id).Error
	return &f, err
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]File, error) {
	var files []File
	if len(ids) == 0 {
		return files, nil
	}
	err := r.conn(ctx).Where("id IN ?", ids).Find(&files).Error
	return files, err
}

func (r *repository) FindByLeave(ctx context.Context, leaveID uuid.UUID) ([]File, error) {
	var files []File
	err := r.conn(ctx).
		Where("leave_id = ?", leaveID).
		Order("created_at ASC").
		Find(&files).Error
	return files, err
}

func (r *repository) Attach(ctx context.Context, leaveID uuid.UUID, ids []uuid.UUID) error {
	ids = Distinct(ids)
	if len(ids) == 0 {
		return nil
	}

	res := r.conn(ctx).
		Model(&File{}).
		Where("id IN ?", ids).
		Where("leave_id IS NULL OR leave_id = ?", leaveID).
		Update("leave_id", leaveID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(ids)) {
		return attachmenterrors.ErrFileAttachedElsewhere
	}
	return nil
}

func (r *repository) Detach(ctx context.Context, leaveID uuid.UUID, ids []uuid.UUID) error {
	ids = Distinct(ids)
	if len(ids) == 0 {
		return nil
	}

	res := r.conn(ctx).
		Model(&File{}).
		Where("id IN ?", ids).
		Where("leave_id = ?", leaveID).
		Update("leave_id", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(ids)) {
		return attachmenterrors.ErrFileNotAttached
	}
	return nil
}

func (r *repository) DetachByLeave(ctx context.Context, leaveID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(ctx).
		Model(&File{}).
		Where("leave_id = ?", leaveID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}

	err := r.conn(ctx).
		Model(&File{}).
		Where("leave_id = ?", leaveID).
		Update("leave_id", nil).Error
	return ids, err
}

func (r *repository) Release(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).
		Model(&File{}).
		Where("id = ?", id).
		Where("leave_id IS NOT NULL").
		Update("leave_id", nil).Error
}

func (r *repository) ListOrphaned(ctx context.Context, olderThan time.Time, limit int) ([]File, error) {
	var files []File
	err := r.conn(ctx).
		Where("leave_id IS NULL").
		Where("created_at < ?", olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&files).Error
	return files, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).Delete(&File{}, "id = ?", id).Error
}

func (r *repository) DeleteIfOrphaned(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.conn(ctx).
		Where("id = ?", id).
		Where("leave_id IS NULL").
		Delete(&File{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Distinct drops duplicate and nil ids while keeping the first-seen order.
func Distinct(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
