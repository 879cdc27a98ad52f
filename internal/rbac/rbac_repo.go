package rbac

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RolePermission grants one role one action on one resource.
type RolePermission struct {
	ID       uint   `gorm:"primaryKey"`
	Role     string `gorm:"size:32;not null;uniqueIndex:idx_role_permission"`
	Resource string `gorm:"size:64;not null;uniqueIndex:idx_role_permission"`
	Action   string `gorm:"size:32;not null;uniqueIndex:idx_role_permission"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	ListRolePermissions(ctx context.Context) ([]RolePermission, error)
	// Seed inserts missing rows and leaves existing ones untouched.
	Seed(ctx context.Context, perms []RolePermission) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListRolePermissions(ctx context.Context) ([]RolePermission, error) {
	var result []RolePermission
	err := r.db.WithContext(ctx).
		Order("role, resource, action").
		Find(&result).Error
	return result, err
}

func (r *repository) Seed(ctx context.Context, perms []RolePermission) error {
	if len(perms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&perms).Error
}
