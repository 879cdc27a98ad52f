package attachment_test

import (
	"bytes"
	"context"
	"database/sql"
	"mime/multipart"
	"sort"
	"testing"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"
	attachmenterrors "github.com/jackson951/flexileave-app-sub001/internal/attachment/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// memRepo keeps files in memory with the same attach/detach rules as the
// gorm repository.
type memRepo struct {
	files     map[uuid.UUID]attachment.File
	createErr error
	// attachBeforeDelete simulates a leave claiming the file between the
	// orphan listing and the guarded delete.
	attachBeforeDelete map[uuid.UUID]uuid.UUID
}

func newMemRepo(files ...attachment.File) *memRepo {
	r := &memRepo{files: map[uuid.UUID]attachment.File{}}
	for _, f := range files {
		r.files[f.ID] = f
	}
	return r
}

func (r *memRepo) WithTx(tx *sql.Tx) attachment.Repository { return r }

func (r *memRepo) Create(ctx context.Context, f *attachment.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.files[f.ID] = *f
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id uuid.UUID) (*attachment.File, error) {
	f, ok := r.files[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &f, nil
}

func (r *memRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]attachment.File, error) {
	var out []attachment.File
	for _, id := range ids {
		if f, ok := r.files[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memRepo) FindByLeave(ctx context.Context, leaveID uuid.UUID) ([]attachment.File, error) {
	var out []attachment.File
	for _, f := range r.files {
		if f.LeaveID != nil && *f.LeaveID == leaveID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memRepo) Attach(ctx context.Context, leaveID uuid.UUID, ids []uuid.UUID) error {
	ids = attachment.Distinct(ids)
	for _, id := range ids {
		f, ok := r.files[id]
		if !ok || (f.LeaveID != nil && *f.LeaveID != leaveID) {
			return attachmenterrors.ErrFileAttachedElsewhere
		}
	}
	for _, id := range ids {
		f := r.files[id]
		lid := leaveID
		f.LeaveID = &lid
		r.files[id] = f
	}
	return nil
}

func (r *memRepo) Detach(ctx context.Context, leaveID uuid.UUID, ids []uuid.UUID) error {
	ids = attachment.Distinct(ids)
	for _, id := range ids {
		f, ok := r.files[id]
		if !ok || f.LeaveID == nil || *f.LeaveID != leaveID {
			return attachmenterrors.ErrFileNotAttached
		}
	}
	for _, id := range ids {
		f := r.files[id]
		f.LeaveID = nil
		r.files[id] = f
	}
	return nil
}

func (r *memRepo) DetachByLeave(ctx context.Context, leaveID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, f := range r.files {
		if f.LeaveID != nil && *f.LeaveID == leaveID {
			f.LeaveID = nil
			r.files[id] = f
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memRepo) Release(ctx context.Context, id uuid.UUID) error {
	if f, ok := r.files[id]; ok {
		f.LeaveID = nil
		r.files[id] = f
	}
	return nil
}

func (r *memRepo) ListOrphaned(ctx context.Context, olderThan time.Time, limit int) ([]attachment.File, error) {
	var out []attachment.File
	for _, f := range r.files {
		if f.LeaveID == nil && f.CreatedAt.Before(olderThan) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.files, id)
	return nil
}

func (r *memRepo) DeleteIfOrphaned(ctx context.Context, id uuid.UUID) (bool, error) {
	f, ok := r.files[id]
	if !ok {
		return false, nil
	}
	if leaveID, claim := r.attachBeforeDelete[id]; claim {
		f.LeaveID = &leaveID
		r.files[id] = f
	}
	if f.LeaveID != nil {
		return false, nil
	}
	delete(r.files, id)
	return true, nil
}

func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = part.Write(content)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}
