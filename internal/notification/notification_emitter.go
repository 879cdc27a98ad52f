package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/events"
	"github.com/jackson951/flexileave-app-sub001/internal/messaging/kafka"
	notificationerrors "github.com/jackson951/flexileave-app-sub001/internal/notification/errors"
	"github.com/jackson951/flexileave-app-sub001/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const UnreadCountKeyPrefix = "notifications:unread:"

func UnreadCountKey(recipientID string) string {
	return UnreadCountKeyPrefix + recipientID
}

// UnreadVersionKey is bumped on every invalidation so that a count computed
// before it is never cached after it.
func UnreadVersionKey(recipientID string) string {
	return UnreadCountKeyPrefix + "version:" + recipientID
}

const unreadVersionTTL = 24 * time.Hour

type EmitRequest struct {
	RecipientID   uuid.UUID
	TriggeredByID *uuid.UUID
	LeaveID       *uuid.UUID
	Type          string
	Title         string
	Message       string
	Metadata      map[string]any
}

// Emitter appends notifications inside the caller's transaction. Invalidate
// must be called after commit to refresh cached unread counts.
type Emitter interface {
	WithTx(tx *sql.Tx) Emitter
	Emit(ctx context.Context, req EmitRequest) (*Notification, error)
	Invalidate(ctx context.Context, recipientIDs ...uuid.UUID)
	// UnlinkLeave keeps notifications about a deleted leave but drops the
	// reference so the leave row can go.
	UnlinkLeave(ctx context.Context, leaveID uuid.UUID) error
}

type emitter struct {
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	now    func() time.Time
	tx     *sql.Tx
	logger *zap.Logger
}

func NewEmitter(repo Repository, outbox kafka.OutboxRepository, rdb *redis.Client, logger ...*zap.Logger) Emitter {
	l := zap.L().Named("notification.emitter")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.emitter")
	}
	return &emitter{repo: repo, outbox: outbox, rdb: rdb, now: time.Now, logger: l}
}

func (e *emitter) WithTx(tx *sql.Tx) Emitter {
	cp := *e
	cp.repo = e.repo.WithTx(tx)
	cp.tx = tx
	return &cp
}

func (e *emitter) Emit(ctx context.Context, req EmitRequest) (*Notification, error) {
	if req.RecipientID == uuid.Nil {
		return nil, notificationerrors.ErrInvalidRecipient
	}
	if !ValidType(req.Type) {
		return nil, notificationerrors.ErrInvalidType
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, notificationerrors.ErrTitleRequired
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, notificationerrors.ErrMessageRequired
	}

	n := &Notification{
		ID:            uuid.New(),
		RecipientID:   req.RecipientID,
		TriggeredByID: req.TriggeredByID,
		LeaveID:       req.LeaveID,
		Type:          req.Type,
		Title:         req.Title,
		Message:       req.Message,
		CreatedAt:     e.now(),
	}
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal notification metadata: %w", err)
		}
		n.Metadata = datatypes.JSON(raw)
	}

	if err := e.repo.Create(ctx, n); err != nil {
		e.logger.Error("create notification failed",
			zap.String("recipient_id", req.RecipientID.String()),
			zap.String("type", req.Type),
			zap.Error(err),
		)
		return nil, err
	}

	if err := e.enqueue(ctx, n); err != nil {
		return nil, err
	}

	e.logger.Debug("notification emitted",
		zap.String("notification_id", n.ID.String()),
		zap.String("recipient_id", n.RecipientID.String()),
		zap.String("type", n.Type),
	)
	return n, nil
}

func (e *emitter) enqueue(ctx context.Context, n *Notification) error {
	if e.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.NotificationCreatedEvent{
		EventType:      events.NotificationCreatedEventType,
		RequestID:      rid,
		NotificationID: n.ID.String(),
		RecipientID:    n.RecipientID.String(),
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		OccurredAt:     n.CreatedAt.UTC(),
	}
	if n.LeaveID != nil {
		event.LeaveID = n.LeaveID.String()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	outbox := e.outbox
	if e.tx != nil {
		outbox = outbox.WithTx(e.tx)
	}
	if err := outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "notification",
		AggregateID:   n.ID.String(),
		EventType:     event.EventType,
		Topic:         events.NotificationTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		e.logger.Error("create notification outbox persist failed",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (e *emitter) UnlinkLeave(ctx context.Context, leaveID uuid.UUID) error {
	if err := e.repo.ClearLeave(ctx, leaveID); err != nil {
		e.logger.Error("unlink leave notifications failed",
			zap.String("leave_id", leaveID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (e *emitter) Invalidate(ctx context.Context, recipientIDs ...uuid.UUID) {
	if e.rdb == nil || len(recipientIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		keys = append(keys, UnreadCountKey(id.String()))
	}
	_, err := e.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, keys...)
		for _, id := range recipientIDs {
			verKey := UnreadVersionKey(id.String())
			p.Incr(ctx, verKey)
			p.Expire(ctx, verKey, unreadVersionTTL)
		}
		return nil
	})
	if err != nil {
		e.logger.Error("failed to invalidate unread count cache",
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}
