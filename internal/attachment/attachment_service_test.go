package attachment_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"
	attachmenterrors "github.com/jackson951/flexileave-app-sub001/internal/attachment/errors"
	"github.com/jackson951/flexileave-app-sub001/internal/attachment/mock"
	"github.com/jackson951/flexileave-app-sub001/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

type serviceDeps struct {
	repo    *memRepo
	storage *mock.MockStorage
	service attachment.Service
}

func setupServiceTest(t *testing.T, files ...attachment.File) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := newMemRepo(files...)
	storage := mock.NewMockStorage(ctrl)
	svc := attachment.NewServiceWithClock(repo, storage, attachment.DefaultConfig(), func() time.Time { return fixedNow })
	return &serviceDeps{repo: repo, storage: storage, service: svc}
}

func TestAttachmentService_Upload(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{UserID: uuid.New().String(), Role: domain.RoleEmployee}

	t.Run("success stores bytes and an unattached record", func(t *testing.T) {
		deps := setupServiceTest(t)
		fh := newFileHeader(t, "medical note.pdf", []byte("%PDF-1.4"))

		deps.storage.EXPECT().
			Put(gomock.Any(), gomock.Any(), gomock.Any(), int64(8), "application/pdf").
			DoAndReturn(func(ctx context.Context, key string, r io.Reader, size int64, ct string) error {
				assert.True(t, strings.HasPrefix(key, "2024/01/"))
				assert.True(t, strings.HasSuffix(key, "-medical_note.pdf"))
				b, _ := io.ReadAll(r)
				assert.Equal(t, "%PDF-1.4", string(b))
				return nil
			})

		resp, err := deps.service.Upload(ctx, actor, fh)

		assert.NoError(t, err)
		assert.Nil(t, resp.LeaveID)
		assert.Equal(t, actor.UserID, resp.UploadedBy)
		assert.Equal(t, "application/pdf", resp.MimeType)
		assert.Len(t, deps.repo.files, 1)
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		deps := setupServiceTest(t)
		fh := newFileHeader(t, "script.exe", []byte("MZ"))

		_, err := deps.service.Upload(ctx, actor, fh)

		assert.True(t, errors.Is(err, attachmenterrors.ErrUnsupportedFileType))
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := attachment.NewService(newMemRepo(), mock.NewMockStorage(ctrl), attachment.Config{MaxBytes: 4})
		fh := newFileHeader(t, "scan.png", []byte("12345"))

		_, err := svc.Upload(ctx, actor, fh)

		assert.True(t, errors.Is(err, attachmenterrors.ErrFileTooLarge))
	})

	t.Run("removes bytes when the record cannot be saved", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.createErr = errors.New("db down")
		fh := newFileHeader(t, "scan.png", []byte("png"))

		deps.storage.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		deps.storage.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		_, err := deps.service.Upload(ctx, actor, fh)

		assert.EqualError(t, err, "db down")
	})
}

func TestAttachmentService_Delete(t *testing.T) {
	ctx := context.Background()
	uploader := uuid.New()
	leaveID := uuid.New()

	newFile := func() attachment.File {
		return attachment.File{ID: uuid.New(), UploadedBy: uploader, StorageKey: "k/" + uuid.NewString(), LeaveID: &leaveID}
	}

	t.Run("uploader removes an attached file", func(t *testing.T) {
		f := newFile()
		deps := setupServiceTest(t, f)
		deps.storage.EXPECT().Delete(gomock.Any(), f.StorageKey).Return(nil)

		err := deps.service.Delete(ctx, domain.Actor{UserID: uploader.String(), Role: domain.RoleEmployee}, f.ID.String())

		assert.NoError(t, err)
		assert.Empty(t, deps.repo.files)
	})

	t.Run("admin may remove any file", func(t *testing.T) {
		f := newFile()
		deps := setupServiceTest(t, f)
		deps.storage.EXPECT().Delete(gomock.Any(), f.StorageKey).Return(attachment.ErrObjectNotFound)

		err := deps.service.Delete(ctx, domain.Actor{UserID: uuid.NewString(), Role: domain.RoleAdmin}, f.ID.String())

		assert.NoError(t, err)
		assert.Empty(t, deps.repo.files)
	})

	t.Run("other users are refused", func(t *testing.T) {
		f := newFile()
		deps := setupServiceTest(t, f)

		err := deps.service.Delete(ctx, domain.Actor{UserID: uuid.NewString(), Role: domain.RoleManager}, f.ID.String())

		assert.True(t, errors.Is(err, attachmenterrors.ErrFileForbidden))
		assert.NotNil(t, deps.repo.files[f.ID].LeaveID)
	})

	t.Run("storage failure keeps the record for the sweeper", func(t *testing.T) {
		f := newFile()
		deps := setupServiceTest(t, f)
		deps.storage.EXPECT().Delete(gomock.Any(), f.StorageKey).Return(errors.New("s3 down"))

		err := deps.service.Delete(ctx, domain.Actor{UserID: uploader.String()}, f.ID.String())

		assert.Error(t, err)
		assert.Nil(t, deps.repo.files[f.ID].LeaveID)
	})

	t.Run("invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)
		err := deps.service.Delete(ctx, domain.Actor{UserID: uploader.String()}, "nope")
		assert.True(t, errors.Is(err, attachmenterrors.ErrInvalidFileID))
	})
}

func TestAttachmentService_Get(t *testing.T) {
	ctx := context.Background()
	f := attachment.File{ID: uuid.New(), UploadedBy: uuid.New(), StorageKey: "k", MimeType: "image/png"}
	deps := setupServiceTest(t, f)

	_, err := deps.service.Get(ctx, domain.Actor{UserID: f.UploadedBy.String(), Role: domain.RoleEmployee}, f.ID.String())
	assert.NoError(t, err)

	_, err = deps.service.Get(ctx, domain.Actor{UserID: uuid.NewString(), Role: domain.RoleManager}, f.ID.String())
	assert.NoError(t, err)

	_, err = deps.service.Get(ctx, domain.Actor{UserID: uuid.NewString(), Role: domain.RoleEmployee}, f.ID.String())
	assert.True(t, errors.Is(err, attachmenterrors.ErrFileNotFound))
}

func TestAttachmentService_Open(t *testing.T) {
	ctx := context.Background()
	f := attachment.File{ID: uuid.New(), UploadedBy: uuid.New(), StorageKey: "k", MimeType: "image/png"}
	actor := domain.Actor{UserID: f.UploadedBy.String(), Role: domain.RoleEmployee}

	t.Run("streams bytes", func(t *testing.T) {
		deps := setupServiceTest(t, f)
		deps.storage.EXPECT().Get(gomock.Any(), "k").Return(io.NopCloser(strings.NewReader("png")), nil)

		meta, rc, err := deps.service.Open(ctx, actor, f.ID.String())
		assert.NoError(t, err)
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		assert.Equal(t, "png", string(b))
		assert.Equal(t, "image/png", meta.MimeType)
	})

	t.Run("missing bytes", func(t *testing.T) {
		deps := setupServiceTest(t, f)
		deps.storage.EXPECT().Get(gomock.Any(), "k").Return(nil, attachment.ErrObjectNotFound)

		_, _, err := deps.service.Open(ctx, actor, f.ID.String())
		assert.True(t, errors.Is(err, attachmenterrors.ErrFileNotFound))
	})
}

func TestAttachmentService_PurgeOrphans(t *testing.T) {
	ctx := context.Background()
	leaveID := uuid.New()
	orphan := attachment.File{ID: uuid.New(), StorageKey: "orphan"}
	reattached := attachment.File{ID: uuid.New(), StorageKey: "kept", LeaveID: &leaveID}
	deps := setupServiceTest(t, orphan, reattached)

	deps.storage.EXPECT().Delete(gomock.Any(), "orphan").Return(nil)

	err := deps.service.PurgeOrphans(ctx, []uuid.UUID{orphan.ID, reattached.ID, uuid.New()})

	assert.NoError(t, err)
	assert.NotContains(t, deps.repo.files, orphan.ID)
	assert.Contains(t, deps.repo.files, reattached.ID)
}

func TestAttachmentService_PurgeOrphans_AttachedAfterLookup(t *testing.T) {
	ctx := context.Background()
	leaveID := uuid.New()
	f := attachment.File{ID: uuid.New(), StorageKey: "claimed"}
	deps := setupServiceTest(t, f)
	deps.repo.attachBeforeDelete = map[uuid.UUID]uuid.UUID{f.ID: leaveID}

	// no storage.Delete expectation: the bytes must survive
	err := deps.service.PurgeOrphans(ctx, []uuid.UUID{f.ID})

	assert.NoError(t, err)
	if assert.Contains(t, deps.repo.files, f.ID) {
		assert.Equal(t, &leaveID, deps.repo.files[f.ID].LeaveID)
	}
}

func TestAttachmentService_DeleteOrphaned_AttachedAfterListing(t *testing.T) {
	ctx := context.Background()
	leaveID := uuid.New()
	claimed := attachment.File{ID: uuid.New(), StorageKey: "claimed", CreatedAt: fixedNow.Add(-48 * time.Hour)}
	orphan := attachment.File{ID: uuid.New(), StorageKey: "orphan", CreatedAt: fixedNow.Add(-47 * time.Hour)}
	deps := setupServiceTest(t, claimed, orphan)
	deps.repo.attachBeforeDelete = map[uuid.UUID]uuid.UUID{claimed.ID: leaveID}

	deps.storage.EXPECT().Delete(gomock.Any(), "orphan").Return(nil)

	n, err := deps.service.DeleteOrphaned(ctx, fixedNow.Add(-24*time.Hour), 10)

	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, deps.repo.files, claimed.ID)
	assert.NotContains(t, deps.repo.files, orphan.ID)
}

func TestAttachmentService_DeleteOrphaned_StorageFailureAfterRowRemoved(t *testing.T) {
	ctx := context.Background()
	f := attachment.File{ID: uuid.New(), StorageKey: "old", CreatedAt: fixedNow.Add(-48 * time.Hour)}
	deps := setupServiceTest(t, f)

	deps.storage.EXPECT().Delete(gomock.Any(), "old").Return(errors.New("bucket unavailable"))

	n, err := deps.service.DeleteOrphaned(ctx, fixedNow.Add(-24*time.Hour), 10)

	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, deps.repo.files, f.ID)
}

func TestAttachmentService_DeleteOrphaned(t *testing.T) {
	ctx := context.Background()
	leaveID := uuid.New()
	old := attachment.File{ID: uuid.New(), StorageKey: "old", CreatedAt: fixedNow.Add(-48 * time.Hour)}
	fresh := attachment.File{ID: uuid.New(), StorageKey: "fresh", CreatedAt: fixedNow.Add(-time.Hour)}
	attached := attachment.File{ID: uuid.New(), StorageKey: "att", CreatedAt: fixedNow.Add(-48 * time.Hour), LeaveID: &leaveID}
	deps := setupServiceTest(t, old, fresh, attached)

	deps.storage.EXPECT().Delete(gomock.Any(), "old").Return(nil)

	n, err := deps.service.DeleteOrphaned(ctx, fixedNow.Add(-24*time.Hour), 10)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	// second run finds nothing left to do
	n, err = deps.service.DeleteOrphaned(ctx, fixedNow.Add(-24*time.Hour), 10)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, deps.repo.files, 2)
}
