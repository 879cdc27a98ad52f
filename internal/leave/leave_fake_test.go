package leave_test

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"
	attachmenterrors "github.com/jackson951/flexileave-app-sub001/internal/attachment/errors"
	"github.com/jackson951/flexileave-app-sub001/internal/balance"
	balanceerrors "github.com/jackson951/flexileave-app-sub001/internal/balance/errors"
	"github.com/jackson951/flexileave-app-sub001/internal/leave"
	"github.com/jackson951/flexileave-app-sub001/internal/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memLeaveRepo hands out copies so unsaved mutations never leak into the
// stored rows, the same as a rolled back transaction.
type memLeaveRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]leave.Leave
	files     *memFiles
	createErr error
	updateErr error
}

func newMemLeaveRepo(files *memFiles) *memLeaveRepo {
	return &memLeaveRepo{rows: map[uuid.UUID]leave.Leave{}, files: files}
}

func (r *memLeaveRepo) WithTx(*sql.Tx) leave.Repository { return r }

func (r *memLeaveRepo) Create(_ context.Context, l *leave.Leave) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row := *l
	row.Files = nil
	r.rows[l.ID] = row
	return nil
}

func (r *memLeaveRepo) FindAll(_ context.Context, q leave.ListQuery) ([]leave.Leave, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []leave.Leave
	for _, l := range r.rows {
		if q.UserID != nil && l.UserID != *q.UserID {
			continue
		}
		if q.Status != "" && l.Status != q.Status {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	total := int64(len(out))
	start := (q.Page - 1) * q.PageSize
	if start > len(out) {
		start = len(out)
	}
	end := start + q.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *memLeaveRepo) FindByID(ctx context.Context, id uuid.UUID) (*leave.Leave, error) {
	r.mu.Lock()
	l, ok := r.rows[id]
	r.mu.Unlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	files, _ := r.files.FindByLeave(ctx, id)
	l.Files = files
	return &l, nil
}

func (r *memLeaveRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*leave.Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r *memLeaveRepo) FindOverlapping(_ context.Context, userID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (*leave.Leave, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.rows {
		if l.UserID != userID || l.Status == leave.StatusRejected {
			continue
		}
		if excludeID != nil && l.ID == *excludeID {
			continue
		}
		if !l.StartDate.After(end) && !l.EndDate.Before(start) {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memLeaveRepo) Update(_ context.Context, l *leave.Leave) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row := *l
	row.Files = nil
	r.rows[l.ID] = row
	return nil
}

func (r *memLeaveRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return 0, nil
	}
	delete(r.rows, id)
	return 1, nil
}

func (r *memLeaveRepo) get(id uuid.UUID) (leave.Leave, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	return l, ok
}

func (r *memLeaveRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type memBalanceRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]balance.Balances
	locks int
}

func newMemBalanceRepo() *memBalanceRepo {
	return &memBalanceRepo{rows: map[uuid.UUID]balance.Balances{}}
}

func (r *memBalanceRepo) WithTx(*sql.Tx) balance.Repository { return r }

func (r *memBalanceRepo) LockBalances(_ context.Context, userID uuid.UUID) (balance.Balances, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks++
	b, ok := r.rows[userID]
	if !ok {
		return nil, balanceerrors.ErrUserNotFound
	}
	return b.Clone(), nil
}

func (r *memBalanceRepo) SaveBalances(_ context.Context, userID uuid.UUID, b balance.Balances) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[userID] = b.Clone()
	return nil
}

func (r *memBalanceRepo) set(userID uuid.UUID, lt balance.LeaveType, days int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[userID]
	if !ok {
		b = balance.Balances{}.Normalize()
	}
	b[lt] = days
	r.rows[userID] = b
}

func (r *memBalanceRepo) get(userID uuid.UUID, lt balance.LeaveType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[userID][lt]
}

func (r *memBalanceRepo) lockCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locks
}

type memFiles struct {
	mu   sync.Mutex
	rows map[uuid.UUID]attachment.File
}

func newMemFiles() *memFiles {
	return &memFiles{rows: map[uuid.UUID]attachment.File{}}
}

func (m *memFiles) WithTx(*sql.Tx) attachment.Repository { return m }

func (m *memFiles) Create(_ context.Context, f *attachment.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[f.ID] = *f
	return nil
}

func (m *memFiles) FindByID(_ context.Context, id uuid.UUID) (*attachment.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &f, nil
}

func (m *memFiles) FindByIDs(_ context.Context, ids []uuid.UUID) ([]attachment.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attachment.File
	for _, id := range ids {
		if f, ok := m.rows[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFiles) FindByLeave(_ context.Context, leaveID uuid.UUID) ([]attachment.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attachment.File
	for _, f := range m.rows {
		if f.LeaveID != nil && *f.LeaveID == leaveID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memFiles) Attach(_ context.Context, leaveID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids = attachment.Distinct(ids)
	for _, id := range ids {
		f, ok := m.rows[id]
		if !ok || (f.LeaveID != nil && *f.LeaveID != leaveID) {
			return attachmenterrors.ErrFileAttachedElsewhere
		}
	}
	for _, id := range ids {
		f := m.rows[id]
		lid := leaveID
		f.LeaveID = &lid
		m.rows[id] = f
	}
	return nil
}

func (m *memFiles) Detach(_ context.Context, leaveID uuid.UUID, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids = attachment.Distinct(ids)
	for _, id := range ids {
		f, ok := m.rows[id]
		if !ok || f.LeaveID == nil || *f.LeaveID != leaveID {
			return attachmenterrors.ErrFileNotAttached
		}
	}
	for _, id := range ids {
		f := m.rows[id]
		f.LeaveID = nil
		m.rows[id] = f
	}
	return nil
}

func (m *memFiles) DetachByLeave(_ context.Context, leaveID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for id, f := range m.rows {
		if f.LeaveID != nil && *f.LeaveID == leaveID {
			f.LeaveID = nil
			m.rows[id] = f
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memFiles) Release(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.rows[id]; ok {
		f.LeaveID = nil
		m.rows[id] = f
	}
	return nil
}

func (m *memFiles) ListOrphaned(_ context.Context, olderThan time.Time, limit int) ([]attachment.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attachment.File
	for _, f := range m.rows {
		if f.LeaveID == nil && f.CreatedAt.Before(olderThan) && len(out) < limit {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFiles) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memFiles) DeleteIfOrphaned(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.rows[id]
	if !ok || f.LeaveID != nil {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *memFiles) upload(owner uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id] = attachment.File{
		ID:           id,
		UploadedBy:   owner,
		OriginalName: "note.pdf",
		StorageKey:   id.String() + ".pdf",
		MimeType:     "application/pdf",
		Size:         128,
		CreatedAt:    time.Now(),
	}
	return id
}

func (m *memFiles) leaveOf(id uuid.UUID) *uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].LeaveID
}

type recordingEmitter struct {
	mu          sync.Mutex
	emitted     []notification.EmitRequest
	invalidated []uuid.UUID
	unlinked    []uuid.UUID
	emitErr     error
}

func (e *recordingEmitter) WithTx(*sql.Tx) notification.Emitter { return e }

func (e *recordingEmitter) Emit(_ context.Context, req notification.EmitRequest) (*notification.Notification, error) {
	if e.emitErr != nil {
		return nil, e.emitErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitted = append(e.emitted, req)
	return &notification.Notification{ID: uuid.New(), RecipientID: req.RecipientID, Type: req.Type}, nil
}

func (e *recordingEmitter) Invalidate(_ context.Context, recipientIDs ...uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invalidated = append(e.invalidated, recipientIDs...)
}

func (e *recordingEmitter) UnlinkLeave(_ context.Context, leaveID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unlinked = append(e.unlinked, leaveID)
	return nil
}

func (e *recordingEmitter) ofType(typ string) []notification.EmitRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []notification.EmitRequest
	for _, req := range e.emitted {
		if req.Type == typ {
			out = append(out, req)
		}
	}
	return out
}

type fakePurger struct {
	purged []uuid.UUID
	err    error
}

func (p *fakePurger) PurgeOrphans(_ context.Context, ids []uuid.UUID) error {
	p.purged = append(p.purged, ids...)
	return p.err
}

type staticReviewers []uuid.UUID

func (s staticReviewers) FindReviewerIDs(context.Context) ([]uuid.UUID, error) {
	return s, nil
}
