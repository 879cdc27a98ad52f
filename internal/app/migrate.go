package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"
	"github.com/jackson951/flexileave-app-sub001/internal/domain"
	"github.com/jackson951/flexileave-app-sub001/internal/leave"
	"github.com/jackson951/flexileave-app-sub001/internal/messaging/kafka"
	"github.com/jackson951/flexileave-app-sub001/internal/notification"
	"github.com/jackson951/flexileave-app-sub001/internal/rbac"
	"github.com/jackson951/flexileave-app-sub001/internal/user"
	usererrors "github.com/jackson951/flexileave-app-sub001/internal/user/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type foreignKey struct {
	name     string
	table    string
	column   string
	ref      string
	onDelete string
}

// Leaves and notifications keep their users; a user with history cannot be
// removed. Deleting a leave unlinks its files and notifications.
var foreignKeys = []foreignKey{
	{"fk_leaves_user", "leaves", "user_id", "users(id)", "RESTRICT"},
	{"fk_leaves_actioned_by", "leaves", "actioned_by", "users(id)", "RESTRICT"},
	{"fk_files_leave", "files", "leave_id", "leaves(id)", "SET NULL"},
	{"fk_files_uploaded_by", "files", "uploaded_by", "users(id)", "RESTRICT"},
	{"fk_notifications_recipient", "notifications", "recipient_id", "users(id)", "RESTRICT"},
	{"fk_notifications_triggered_by", "notifications", "triggered_by_id", "users(id)", "RESTRICT"},
	{"fk_notifications_leave", "notifications", "leave_id", "leaves(id)", "SET NULL"},
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&leave.Leave{},
		&attachment.File{},
		&notification.Notification{},
		&kafka.OutboxRecord{},
		&rbac.RolePermission{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, fk := range foreignKeys {
		stmt := fmt.Sprintf(`DO $$ BEGIN
	ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s ON DELETE %s;
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;`, fk.table, fk.name, fk.column, fk.ref, fk.onDelete)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", fk.name, err)
		}
	}
	return nil
}

func seedRBAC(ctx context.Context, repo rbac.Repository, service rbac.Service) error {
	if err := repo.Seed(ctx, rbac.DefaultPermissions()); err != nil {
		return fmt.Errorf("seed role permissions: %w", err)
	}
	return service.Reload(ctx)
}

// seedAdmin provisions the first admin account when ADMIN_EMAIL is set.
func seedAdmin(ctx context.Context, service user.Service, admin AdminSeed, logger *zap.Logger) error {
	if admin.Email == "" || admin.Password == "" {
		return nil
	}
	_, err := service.Create(ctx, user.CreateUserRequest{
		Name:     admin.Name,
		Email:    admin.Email,
		Password: admin.Password,
		Role:     domain.RoleAdmin,
	})
	if errors.Is(err, usererrors.ErrUserAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("admin account created", zap.String("email", admin.Email))
	return nil
}
