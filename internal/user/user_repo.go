package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter ListUsersFilter) ([]User, int64, error)
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	FindActiveIDsByRoles(ctx context.Context, roles ...string) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) (int64, error)
	CountDependents(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindAll(ctx context.Context, filter ListUsersFilter) ([]User, int64, error) {
	q := r.db.WithContext(ctx).Model(&User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	err := q.Order("name ASC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&users).Error
	return users, total, err
}

func (r *repository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Where("is_active = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) FindActiveIDsByRoles(ctx context.Context, roles ...string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Where("is_active = ?", true).
		Where("role IN ?", roles).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", id).
		Update("is_active", isActive)
	return res.RowsAffected, res.Error
}

// CountDependents counts rows that reference the user and would block a
// hard delete.
func (r *repository) CountDependents(ctx context.Context, id uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Raw(`
SELECT
	(SELECT COUNT(*) FROM leaves WHERE user_id = @id OR actioned_by = @id) +
	(SELECT COUNT(*) FROM notifications WHERE recipient_id = @id OR triggered_by_id = @id) +
	(SELECT COUNT(*) FROM files WHERE uploaded_by = @id)
`, map[string]any{"id": id}).Scan(&total).Error
	return total, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	return res.RowsAffected, res.Error
}
