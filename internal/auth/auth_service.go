package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "github.com/jackson951/flexileave-app-sub001/internal/auth/errors"
	"github.com/jackson951/flexileave-app-sub001/internal/domain"
	"github.com/jackson951/flexileave-app-sub001/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DefaultTokenTTL = 24 * time.Hour

// UserLookup is the part of user.Repository the login flow reads.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
	TokenTTL() time.Duration
}

type service struct {
	users  UserLookup
	cfg    TokenConfig
	now    func() time.Time
	logger *zap.Logger
}

func NewService(users UserLookup, cfg TokenConfig, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	return &service{users: users, cfg: cfg, now: time.Now, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (string, AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.logger.Debug("login requested", zap.String("email", email))

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("login lookup failed", zap.Error(err))
			return "", AuthResponse{}, err
		}
		s.logger.Warn("login unknown email", zap.String("email", email))
		return "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Warn("login wrong password", zap.String("user_id", u.ID.String()))
		return "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}
	if !u.IsActive {
		s.logger.Warn("login account disabled", zap.String("user_id", u.ID.String()))
		return "", AuthResponse{}, autherrors.ErrAccountDisabled
	}

	token, err := s.generateToken(u.ID.String(), u.Role)
	if err != nil {
		s.logger.Error("sign token failed", zap.Error(err))
		return "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success", zap.String("user_id", u.ID.String()), zap.String("role", u.Role))
	return token, mapToResponse(u), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, autherrors.ErrUserNotFound
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, autherrors.ErrAccountDisabled
	}

	resp := mapToResponse(u)
	return &resp, nil
}

func (s *service) TokenTTL() time.Duration {
	return s.cfg.TTL
}

func (s *service) generateToken(userID, role string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    domain.NormalizeRole(role),
		"iat":     now.Unix(),
		"exp":     now.Add(s.cfg.TTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func mapToResponse(u *user.User) AuthResponse {
	return AuthResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  domain.NormalizeRole(u.Role),
	}
}
