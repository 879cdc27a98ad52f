package notification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/domain"
	"github.com/jackson951/flexileave-app-sub001/internal/notification"
	notificationerrors "github.com/jackson951/flexileave-app-sub001/internal/notification/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type notificationServiceDeps struct {
	sqlMock sqlmock.Sqlmock
	repo    *memRepo
	outbox  *memOutbox
	mr      *miniredis.Miniredis
	emitter notification.Emitter
	service notification.Service
}

func setupNotificationServiceTest(t *testing.T, dir staticDirectory) *notificationServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := newMemRepo()
	outbox := &memOutbox{}
	em := notification.NewEmitter(repo, outbox, rdb, zap.NewNop())
	svc := notification.NewService(db, repo, em, dir, rdb, zap.NewNop())

	return &notificationServiceDeps{sqlMock: sqlMock, repo: repo, outbox: outbox, mr: mr, emitter: em, service: svc}
}

func seed(repo *memRepo, recipient uuid.UUID, typ string, read bool, age time.Duration) uuid.UUID {
	id := uuid.New()
	repo.items[id] = &notification.Notification{
		ID:          id,
		RecipientID: recipient,
		Type:        typ,
		Title:       "t",
		Message:     "m",
		IsRead:      read,
		CreatedAt:   time.Now().Add(-age),
	}
	return id
}

func TestNotificationService_List(t *testing.T) {
	deps := setupNotificationServiceTest(t, staticDirectory{})
	me, other := uuid.New(), uuid.New()
	seed(deps.repo, me, notification.TypeLeaveApproved, false, time.Minute)
	seed(deps.repo, me, notification.TypeSystem, true, 2*time.Minute)
	seed(deps.repo, other, notification.TypeSystem, false, time.Minute)

	t.Run("only own notifications", func(t *testing.T) {
		items, total, err := deps.service.List(context.Background(), me.String(), notification.ListFilter{})
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
		assert.Equal(t, notification.TypeLeaveApproved, items[0].Type)
	})

	t.Run("unread filter", func(t *testing.T) {
		items, total, err := deps.service.List(context.Background(), me.String(), notification.ListFilter{UnreadOnly: true})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.False(t, items[0].IsRead)
	})

	t.Run("invalid type filter", func(t *testing.T) {
		_, _, err := deps.service.List(context.Background(), me.String(), notification.ListFilter{Type: "nope"})
		assert.ErrorIs(t, err, notificationerrors.ErrInvalidType)
	})

	t.Run("invalid recipient", func(t *testing.T) {
		_, _, err := deps.service.List(context.Background(), "not-a-uuid", notification.ListFilter{})
		assert.ErrorIs(t, err, notificationerrors.ErrInvalidRecipient)
	})
}

func TestNotificationService_UnreadCount(t *testing.T) {
	t.Run("caches the count and drops it on mark read", func(t *testing.T) {
		deps := setupNotificationServiceTest(t, staticDirectory{})
		me := uuid.New()
		id := seed(deps.repo, me, notification.TypeSystem, false, time.Minute)
		seed(deps.repo, me, notification.TypeSystem, false, time.Minute)

		n, err := deps.service.UnreadCount(context.Background(), me.String())
		assert.NoError(t, err)
		assert.Equal(t, int64(2), n)

		cached, err := deps.mr.Get(notification.UnreadCountKey(me.String()))
		assert.NoError(t, err)
		assert.Equal(t, "2", cached)
		assert.Equal(t, 5*time.Minute, deps.mr.TTL(notification.UnreadCountKey(me.String())))

		assert.NoError(t, deps.service.MarkRead(context.Background(), id.String(), me.String()))
		assert.False(t, deps.mr.Exists(notification.UnreadCountKey(me.String())))

		n, err = deps.service.UnreadCount(context.Background(), me.String())
		assert.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("cache hit skips the repository", func(t *testing.T) {
		me := uuid.New()
		rdb, rmock := redismock.NewClientMock()
		rmock.ExpectGet(notification.UnreadCountKey(me.String())).SetVal("9")

		repo := newMemRepo()
		repo.countFn = func(ctx context.Context, recipientID uuid.UUID) (int64, error) {
			t.Fatal("repository should not be queried on cache hit")
			return 0, nil
		}
		svc := notification.NewService(nil, repo, notification.NewEmitter(repo, nil, rdb, zap.NewNop()), staticDirectory{}, rdb, zap.NewNop())

		n, err := svc.UnreadCount(context.Background(), me.String())

		assert.NoError(t, err)
		assert.Equal(t, int64(9), n)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("count invalidated while computing is not cached", func(t *testing.T) {
		deps := setupNotificationServiceTest(t, staticDirectory{})
		me := uuid.New()
		deps.repo.countFn = func(ctx context.Context, recipientID uuid.UUID) (int64, error) {
			// a notification lands and is invalidated before the count is written
			deps.emitter.Invalidate(ctx, me)
			return 3, nil
		}

		n, err := deps.service.UnreadCount(context.Background(), me.String())

		assert.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.False(t, deps.mr.Exists(notification.UnreadCountKey(me.String())))
	})

	t.Run("cancelled caller does not cancel the shared count", func(t *testing.T) {
		deps := setupNotificationServiceTest(t, staticDirectory{})
		me := uuid.New()
		deps.repo.countFn = func(ctx context.Context, recipientID uuid.UUID) (int64, error) {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			return 4, nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		n, err := deps.service.UnreadCount(ctx, me.String())

		assert.NoError(t, err)
		assert.Equal(t, int64(4), n)
		cached, err := deps.mr.Get(notification.UnreadCountKey(me.String()))
		assert.NoError(t, err)
		assert.Equal(t, "4", cached)
	})

	t.Run("repository error", func(t *testing.T) {
		deps := setupNotificationServiceTest(t, staticDirectory{})
		deps.repo.countFn = func(ctx context.Context, recipientID uuid.UUID) (int64, error) {
			return 0, errors.New("db down")
		}

		_, err := deps.service.UnreadCount(context.Background(), uuid.NewString())
		assert.EqualError(t, err, "db down")
	})
}

func TestNotificationService_RecipientScoping(t *testing.T) {
	deps := setupNotificationServiceTest(t, staticDirectory{})
	owner, intruder := uuid.New(), uuid.New()
	id := seed(deps.repo, owner, notification.TypeSystem, false, time.Minute)

	err := deps.service.MarkRead(context.Background(), id.String(), intruder.String())
	assert.ErrorIs(t, err, notificationerrors.ErrNotificationNotFound)

	err = deps.service.Delete(context.Background(), id.String(), intruder.String())
	assert.ErrorIs(t, err, notificationerrors.ErrNotificationNotFound)
	assert.Contains(t, deps.repo.items, id)

	err = deps.service.Delete(context.Background(), "bad", owner.String())
	assert.ErrorIs(t, err, notificationerrors.ErrInvalidNotificationID)

	assert.NoError(t, deps.service.Delete(context.Background(), id.String(), owner.String()))
	assert.NotContains(t, deps.repo.items, id)
}

func TestNotificationService_BulkOperations(t *testing.T) {
	deps := setupNotificationServiceTest(t, staticDirectory{})
	me := uuid.New()
	seed(deps.repo, me, notification.TypeSystem, false, time.Minute)
	seed(deps.repo, me, notification.TypeSystem, false, time.Minute)
	seed(deps.repo, me, notification.TypeSystem, true, time.Minute)

	n, err := deps.service.MarkAllRead(context.Background(), me.String())
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = deps.service.DeleteAllRead(context.Background(), me.String())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Empty(t, deps.repo.items)
}

func TestNotificationService_SendSystem(t *testing.T) {
	admin := domain.Actor{UserID: uuid.NewString(), Role: domain.RoleAdmin}

	t.Run("employee is forbidden", func(t *testing.T) {
		deps := setupNotificationServiceTest(t, staticDirectory{})

		_, err := deps.service.SendSystem(context.Background(), domain.Actor{UserID: uuid.NewString(), Role: domain.RoleEmployee},
			notification.SendSystemRequest{Title: "t", Message: "m"})

		assert.ErrorIs(t, err, notificationerrors.ErrSendForbidden)
	})

	t.Run("broadcast to active users", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		deps := setupNotificationServiceTest(t, staticDirectory{ids: []uuid.UUID{a, b}})
		deps.mr.Set(notification.UnreadCountKey(a.String()), "0")
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.SendSystem(context.Background(), admin, notification.SendSystemRequest{Title: "Maintenance", Message: "Tonight 22:00"})

		assert.NoError(t, err)
		assert.Equal(t, 2, resp.Sent)
		assert.Len(t, deps.repo.items, 2)
		assert.Len(t, deps.outbox.events, 2)
		assert.False(t, deps.mr.Exists(notification.UnreadCountKey(a.String())))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("explicit recipients are deduplicated", func(t *testing.T) {
		a := uuid.New()
		deps := setupNotificationServiceTest(t, staticDirectory{})
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.SendSystem(context.Background(), admin, notification.SendSystemRequest{
			RecipientIDs: []string{a.String(), a.String()},
			Title:        "t",
			Message:      "m",
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.Sent)
	})

	t.Run("no active users", func(t *testing.T) {
		deps := setupNotificationServiceTest(t, staticDirectory{})

		_, err := deps.service.SendSystem(context.Background(), admin, notification.SendSystemRequest{Title: "t", Message: "m"})

		assert.ErrorIs(t, err, notificationerrors.ErrNoRecipients)
	})

	t.Run("emit failure rolls back", func(t *testing.T) {
		deps := setupNotificationServiceTest(t, staticDirectory{ids: []uuid.UUID{uuid.New()}})
		deps.repo.createErr = errors.New("insert failed")
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.SendSystem(context.Background(), admin, notification.SendSystemRequest{Title: "t", Message: "m"})

		assert.EqualError(t, err, "insert failed")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
