package rbac

import (
	"context"
	"sync"

	"github.com/jackson951/flexileave-app-sub001/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	// Reload replaces the enforcer policy with the rows in role_permissions.
	Reload(ctx context.Context) error
	Enforce(req domain.EnforceRequest) (bool, error)
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) Reload(ctx context.Context) error {
	rows, err := s.repo.ListRolePermissions(ctx)
	if err != nil {
		s.logger.Error("rbac load policy failed", zap.Error(err))
		return err
	}

	rules := make([][]string, 0, len(rows))
	for _, rp := range rows {
		rules = append(rules, []string{domain.NormalizeRole(rp.Role), rp.Resource, rp.Action})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()
	if len(rules) > 0 {
		if _, err := s.enforcer.AddPolicies(rules); err != nil {
			return err
		}
	}
	s.logger.Info("rbac policy loaded", zap.Int("rules", len(rules)))
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role := domain.NormalizeRole(req.Role)
	allowed, err := s.enforcer.Enforce(role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	rows, err := s.repo.ListRolePermissions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PermissionResponse, 0, len(rows))
	for _, rp := range rows {
		out = append(out, PermissionResponse{Role: rp.Role, Resource: rp.Resource, Action: rp.Action})
	}
	return out, nil
}
