package notification

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/domain"
	notificationerrors "github.com/jackson951/flexileave-app-sub001/internal/notification/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const unreadCountTTL = 5 * time.Minute

// RecipientDirectory resolves broadcast targets for system notifications.
type RecipientDirectory interface {
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	List(ctx context.Context, recipientID string, filter ListFilter) ([]NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id, recipientID string) error
	DeleteAllRead(ctx context.Context, recipientID string) (int64, error)
	SendSystem(ctx context.Context, actor domain.Actor, req SendSystemRequest) (SendSystemResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	emitter    Emitter
	recipients RecipientDirectory
	rdb        *redis.Client
	sf         *singleflight.Group
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	emitter Emitter,
	recipients RecipientDirectory,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		emitter:    emitter,
		recipients: recipients,
		rdb:        rdb,
		sf:         &singleflight.Group{},
		logger:     l,
	}
}

func (s *service) List(ctx context.Context, recipientID string, filter ListFilter) ([]NotificationResponse, int64, error) {
	rid, err := parseID(recipientID, notificationerrors.ErrInvalidRecipient)
	if err != nil {
		return nil, 0, err
	}
	if filter.Type != "" && !ValidType(filter.Type) {
		return nil, 0, notificationerrors.ErrInvalidType
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}

	items, total, err := s.repo.List(ctx, rid, filter)
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return nil, 0, err
	}
	return mapToListResponse(items), total, nil
}

func (s *service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	rid, err := parseID(recipientID, notificationerrors.ErrInvalidRecipient)
	if err != nil {
		return 0, err
	}
	cacheKey := UnreadCountKey(recipientID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return n, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		// Shared by every waiter, so one caller giving up must not fail the rest.
		return s.countAndCache(context.WithoutCancel(ctx), rid, recipientID)
	})
	if err != nil {
		s.logger.Error("count unread notifications failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, err
	}
	return v.(int64), nil
}

// countAndCache writes the count only if no invalidation bumped the version
// key while it was being computed.
func (s *service) countAndCache(ctx context.Context, rid uuid.UUID, recipientID string) (int64, error) {
	if s.rdb == nil {
		return s.repo.CountUnread(ctx, rid)
	}

	cacheKey := UnreadCountKey(recipientID)
	var (
		count    int64
		countErr error
		counted  bool
	)
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		count, countErr = s.repo.CountUnread(ctx, rid)
		counted = true
		if countErr != nil {
			return countErr
		}
		_, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, cacheKey, count, unreadCountTTL)
			return nil
		})
		return err
	}, UnreadVersionKey(recipientID))

	switch {
	case countErr != nil:
		return 0, countErr
	case !counted:
		s.logger.Warn("unread count cache unavailable", zap.String("key", cacheKey), zap.Error(err))
		return s.repo.CountUnread(ctx, rid)
	case errors.Is(err, redis.TxFailedErr):
		s.logger.Debug("unread count invalidated while counting, not cached", zap.String("key", cacheKey))
	case err != nil:
		s.logger.Warn("cache unread count failed", zap.String("key", cacheKey), zap.Error(err))
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, id, recipientID string) error {
	nid, rid, err := parseIDs(id, recipientID)
	if err != nil {
		return err
	}

	affected, err := s.repo.MarkRead(ctx, nid, rid)
	if err != nil {
		s.logger.Error("mark notification read failed", zap.String("notification_id", id), zap.Error(err))
		return err
	}
	if affected == 0 {
		return notificationerrors.ErrNotificationNotFound
	}

	s.emitter.Invalidate(ctx, rid)
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	rid, err := parseID(recipientID, notificationerrors.ErrInvalidRecipient)
	if err != nil {
		return 0, err
	}

	affected, err := s.repo.MarkAllRead(ctx, rid)
	if err != nil {
		s.logger.Error("mark all notifications read failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, err
	}

	s.emitter.Invalidate(ctx, rid)
	s.logger.Info("notifications marked read", zap.String("recipient_id", recipientID), zap.Int64("count", affected))
	return affected, nil
}

func (s *service) Delete(ctx context.Context, id, recipientID string) error {
	nid, rid, err := parseIDs(id, recipientID)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, nid, rid)
	if err != nil {
		s.logger.Error("delete notification failed", zap.String("notification_id", id), zap.Error(err))
		return err
	}
	if affected == 0 {
		return notificationerrors.ErrNotificationNotFound
	}

	s.emitter.Invalidate(ctx, rid)
	return nil
}

func (s *service) DeleteAllRead(ctx context.Context, recipientID string) (int64, error) {
	rid, err := parseID(recipientID, notificationerrors.ErrInvalidRecipient)
	if err != nil {
		return 0, err
	}

	affected, err := s.repo.DeleteAllRead(ctx, rid)
	if err != nil {
		s.logger.Error("delete read notifications failed", zap.String("recipient_id", recipientID), zap.Error(err))
		return 0, err
	}
	return affected, nil
}

func (s *service) SendSystem(ctx context.Context, actor domain.Actor, req SendSystemRequest) (SendSystemResponse, error) {
	s.logger.Debug("send system notification requested",
		zap.String("actor_id", actor.UserID),
		zap.Int("recipients", len(req.RecipientIDs)),
	)
	if !actor.IsAdmin() {
		return SendSystemResponse{}, notificationerrors.ErrSendForbidden
	}

	var senderID *uuid.UUID
	if id, err := uuid.Parse(actor.UserID); err == nil {
		senderID = &id
	}

	recipients, err := s.resolveRecipients(ctx, req.RecipientIDs)
	if err != nil {
		return SendSystemResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("send system notification begin tx failed", zap.Error(err))
		return SendSystemResponse{}, err
	}
	defer tx.Rollback()

	qemit := s.emitter.WithTx(tx)
	for _, rid := range recipients {
		if _, err := qemit.Emit(ctx, EmitRequest{
			RecipientID:   rid,
			TriggeredByID: senderID,
			Type:          TypeSystem,
			Title:         req.Title,
			Message:       req.Message,
		}); err != nil {
			return SendSystemResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("send system notification commit failed", zap.Error(err))
		return SendSystemResponse{}, err
	}
	s.emitter.Invalidate(ctx, recipients...)

	s.logger.Info("send system notification success",
		zap.String("actor_id", actor.UserID),
		zap.Int("sent", len(recipients)),
	)
	return SendSystemResponse{Sent: len(recipients)}, nil
}

func (s *service) resolveRecipients(ctx context.Context, raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		ids, err := s.recipients.FindActiveIDs(ctx)
		if err != nil {
			s.logger.Error("resolve system notification recipients failed", zap.Error(err))
			return nil, err
		}
		if len(ids) == 0 {
			return nil, notificationerrors.ErrNoRecipients
		}
		return ids, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		id, err := parseID(v, notificationerrors.ErrInvalidRecipient)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(v string, invalid error) (uuid.UUID, error) {
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, invalid
	}
	return id, nil
}

func parseIDs(id, recipientID string) (uuid.UUID, uuid.UUID, error) {
	nid, err := parseID(id, notificationerrors.ErrInvalidNotificationID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	rid, err := parseID(recipientID, notificationerrors.ErrInvalidRecipient)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return nid, rid, nil
}
