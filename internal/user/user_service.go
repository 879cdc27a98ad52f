package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackson951/flexileave-app-sub001/internal/balance"
	"github.com/jackson951/flexileave-app-sub001/internal/domain"
	usererrors "github.com/jackson951/flexileave-app-sub001/internal/user/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	GetAll(ctx context.Context, filter ListUsersFilter) ([]UserResponse, int64, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	ToggleStatus(ctx context.Context, actor domain.Actor, id string, isActive bool) error
	UpdateBalances(ctx context.Context, id string, req UpdateBalancesRequest) (BalancesResponse, error)
	MyBalances(ctx context.Context, actor domain.Actor) (BalancesResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type service struct {
	db       *sql.DB
	repo     Repository
	balances balance.Repository
	policy   balance.Policy
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances balance.Repository,
	policy balance.Policy,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		balances: balances,
		policy:   policy,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.logger.Debug("create user requested", zap.String("email", email), zap.String("role", req.Role))

	role := normalizeRole(req.Role)
	if !domain.IsValidRole(role) {
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	initial := s.policy.InitialBalances()
	if len(req.LeaveBalances) > 0 {
		overrides, err := balance.FromMap(req.LeaveBalances)
		if err != nil {
			s.logger.Warn("create user invalid balances", zap.Error(err))
			return UserResponse{}, err
		}
		for lt, v := range overrides {
			initial[lt] = v
		}
	}
	raw, err := balance.Encode(initial)
	if err != nil {
		return UserResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		Name:          strings.TrimSpace(req.Name),
		Email:         email,
		Password:      string(hashed),
		Role:          role,
		IsActive:      true,
		LeaveBalances: raw,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("create user duplicate email", zap.String("email", email))
			return UserResponse{}, usererrors.ErrUserAlreadyExists
		}
		s.logger.Error("create user persist failed", zap.String("email", email), zap.Error(err))
		return UserResponse{}, err
	}

	s.logger.Info("create user success", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	return mapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context, filter ListUsersFilter) ([]UserResponse, int64, error) {
	if filter.Role != "" {
		filter.Role = domain.NormalizeRole(filter.Role)
		if !domain.IsValidRole(filter.Role) {
			return nil, 0, usererrors.ErrInvalidRole
		}
	}
	filter.Query = strings.TrimSpace(filter.Query)
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}

	users, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, mapToResponse(u))
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) ToggleStatus(ctx context.Context, actor domain.Actor, id string, isActive bool) error {
	uid, err := parseUserID(id)
	if err != nil {
		return err
	}
	if !isActive && actor.UserID == uid.String() {
		return usererrors.ErrCannotModifySelf
	}

	affected, err := s.repo.UpdateStatus(ctx, uid, isActive)
	if err != nil {
		s.logger.Error("update user status failed", zap.String("user_id", id), zap.Error(err))
		return err
	}
	if affected == 0 {
		return usererrors.ErrUserNotFound
	}

	s.logger.Info("update user status success", zap.String("user_id", id), zap.Bool("is_active", isActive))
	return nil
}

// UpdateBalances is the administrative correction path. It takes the same
// row lock as the ledger so it cannot interleave with an approval.
func (s *service) UpdateBalances(ctx context.Context, id string, req UpdateBalancesRequest) (BalancesResponse, error) {
	uid, err := parseUserID(id)
	if err != nil {
		return BalancesResponse{}, err
	}
	changes, err := balance.FromMap(req.LeaveBalances)
	if err != nil {
		s.logger.Warn("update balances validation failed", zap.String("user_id", id), zap.Error(err))
		return BalancesResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update balances begin tx failed", zap.Error(err))
		return BalancesResponse{}, err
	}
	defer tx.Rollback()

	qrepo := s.balances.WithTx(tx)
	current, err := qrepo.LockBalances(ctx, uid)
	if err != nil {
		return BalancesResponse{}, err
	}
	for lt, v := range changes {
		current[lt] = v
	}
	if err := qrepo.SaveBalances(ctx, uid, current); err != nil {
		s.logger.Error("update balances persist failed", zap.String("user_id", id), zap.Error(err))
		return BalancesResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update balances commit failed", zap.Error(err))
		return BalancesResponse{}, err
	}

	s.logger.Info("update balances success", zap.String("user_id", id), zap.Any("changes", changes.ToMap()))
	return BalancesResponse{UserID: uid.String(), LeaveBalances: current.Normalize().ToMap()}, nil
}

func (s *service) MyBalances(ctx context.Context, actor domain.Actor) (BalancesResponse, error) {
	u, err := s.find(ctx, actor.UserID)
	if err != nil {
		return BalancesResponse{}, err
	}
	b, err := balance.Decode(u.LeaveBalances)
	if err != nil {
		s.logger.Error("decode stored balances failed", zap.String("user_id", actor.UserID), zap.Error(err))
		return BalancesResponse{}, err
	}
	return BalancesResponse{UserID: u.ID.String(), LeaveBalances: b.ToMap()}, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	uid, err := parseUserID(id)
	if err != nil {
		return err
	}
	if actor.UserID == uid.String() {
		return usererrors.ErrCannotModifySelf
	}

	dependents, err := s.repo.CountDependents(ctx, uid)
	if err != nil {
		s.logger.Error("count user dependents failed", zap.String("user_id", id), zap.Error(err))
		return err
	}
	if dependents > 0 {
		s.logger.Warn("delete user blocked by dependents", zap.String("user_id", id), zap.Int64("dependents", dependents))
		return usererrors.ErrUserHasDependents
	}

	affected, err := s.repo.Delete(ctx, uid)
	if err != nil {
		if isForeignKeyViolation(err) {
			return usererrors.ErrUserHasDependents
		}
		s.logger.Error("delete user failed", zap.String("user_id", id), zap.Error(err))
		return err
	}
	if affected == 0 {
		return usererrors.ErrUserNotFound
	}

	s.logger.Info("delete user success", zap.String("user_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

func (s *service) find(ctx context.Context, id string) (*User, error) {
	uid, err := parseUserID(id)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		s.logger.Error("find user failed", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func parseUserID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, usererrors.ErrInvalidUserID
	}
	return uid, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func mapToResponse(u User) UserResponse {
	resp := UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if b, err := balance.Decode(u.LeaveBalances); err == nil {
		resp.LeaveBalances = b.ToMap()
	}
	return resp
}
