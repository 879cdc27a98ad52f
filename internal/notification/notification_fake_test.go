package notification_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/messaging/kafka"
	"github.com/jackson951/flexileave-app-sub001/internal/notification"

	"github.com/google/uuid"
)

type memRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*notification.Notification
	createErr error
	countFn   func(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[uuid.UUID]*notification.Notification{}}
}

func (r *memRepo) WithTx(tx *sql.Tx) notification.Repository { return r }

func (r *memRepo) Create(ctx context.Context, n *notification.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.items[n.ID] = &cp
	return nil
}

func (r *memRepo) forRecipient(recipientID uuid.UUID) []*notification.Notification {
	out := []*notification.Notification{}
	for _, n := range r.items {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memRepo) List(ctx context.Context, recipientID uuid.UUID, filter notification.ListFilter) ([]notification.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []notification.Notification
	for _, n := range r.forRecipient(recipientID) {
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		matched = append(matched, *n)
	}
	total := int64(len(matched))
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memRepo) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if r.countFn != nil {
		return r.countFn(ctx, recipientID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var c int64
	for _, n := range r.forRecipient(recipientID) {
		if !n.IsRead {
			c++
		}
	}
	return c, nil
}

func (r *memRepo) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.RecipientID != recipientID {
		return 0, nil
	}
	n.IsRead = true
	return 1, nil
}

func (r *memRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c int64
	for _, n := range r.forRecipient(recipientID) {
		if !n.IsRead {
			n.IsRead = true
			c++
		}
	}
	return c, nil
}

func (r *memRepo) Delete(ctx context.Context, id, recipientID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || n.RecipientID != recipientID {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

func (r *memRepo) DeleteAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c int64
	for _, n := range r.forRecipient(recipientID) {
		if n.IsRead {
			delete(r.items, n.ID)
			c++
		}
	}
	return c, nil
}

func (r *memRepo) ClearLeave(ctx context.Context, leaveID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.LeaveID != nil && *n.LeaveID == leaveID {
			n.LeaveID = nil
		}
	}
	return nil
}

type memOutbox struct {
	events    []kafka.OutboxEvent
	createErr error
	txBound   int
}

func (o *memOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	o.txBound++
	return o
}

func (o *memOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if o.createErr != nil {
		return o.createErr
	}
	o.events = append(o.events, event)
	return nil
}

func (o *memOutbox) Claim(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return o.events, nil
}

func (o *memOutbox) MarkSent(ctx context.Context, id string) error { return nil }

func (o *memOutbox) MarkFailed(ctx context.Context, id string, reason string, maxAttempts int) error {
	return nil
}

func (o *memOutbox) PurgeSent(ctx context.Context, before time.Time) (int64, error) { return 0, nil }

type staticDirectory struct {
	ids []uuid.UUID
	err error
}

func (d staticDirectory) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	return d.ids, d.err
}
