package app

import (
	"context"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"
	"github.com/jackson951/flexileave-app-sub001/internal/auth"
	"github.com/jackson951/flexileave-app-sub001/internal/balance"
	"github.com/jackson951/flexileave-app-sub001/internal/leave"
	"github.com/jackson951/flexileave-app-sub001/internal/messaging/kafka"
	"github.com/jackson951/flexileave-app-sub001/internal/notification"
	"github.com/jackson951/flexileave-app-sub001/internal/rbac"
	"github.com/jackson951/flexileave-app-sub001/internal/rbac/infra"
	"github.com/jackson951/flexileave-app-sub001/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func loadPolicy(path string) (balance.Policy, error) {
	if path == "" {
		return balance.DefaultPolicy(), nil
	}
	return balance.LoadPolicy(path)
}

func registerModules(ctx context.Context, router *gin.Engine, in *resources, cfg Config) error {
	logger := zap.L()

	policy, err := loadPolicy(cfg.PolicyPath)
	if err != nil {
		return err
	}
	storage, err := attachment.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(in.gormDB)
	userRepo := user.NewRepository(in.gormDB)
	balanceRepo := balance.NewRepository(in.gormDB)
	leaveRepo := leave.NewRepository(in.gormDB)
	fileRepo := attachment.NewRepository(in.gormDB)
	notificationRepo := notification.NewRepository(in.gormDB)
	outboxRepo := kafka.NewOutboxRepository(in.sqlDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)
	if err := seedRBAC(ctx, rbacRepo, rbacService); err != nil {
		return err
	}

	// --- Services ---
	directory := user.NewDirectory(userRepo)
	ledger := balance.NewLedger(balanceRepo, logger)
	emitter := notification.NewEmitter(notificationRepo, outboxRepo, in.rdb, logger)

	userService := user.NewService(in.sqlDB, userRepo, balanceRepo, policy, logger)
	authService := auth.NewService(userRepo, auth.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}, logger)
	attachmentService := attachment.NewService(fileRepo, storage, cfg.Upload, logger)
	notificationService := notification.NewService(in.sqlDB, notificationRepo, emitter, directory, in.rdb, logger)
	leaveService := leave.NewService(
		in.sqlDB,
		leaveRepo,
		ledger,
		fileRepo,
		attachmentService,
		emitter,
		directory,
		logger,
	)

	if err := seedAdmin(ctx, userService, cfg.Admin, logger); err != nil {
		return err
	}

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, logger)
	userHandler := user.NewHandler(userService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	attachmentHandler := attachment.NewHandler(attachmentService, logger)
	notificationHandler := notification.NewHandler(notificationService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		user.RegisterRoutes(api, userHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService, in.rdb)
		attachment.RegisterRoutes(api, attachmentHandler, rbacService)
		notification.RegisterRoutes(api, notificationHandler, rbacService)
		rbac.RegisterRoutes(api, rbacHandler, rbacService)
	}

	return nil
}
