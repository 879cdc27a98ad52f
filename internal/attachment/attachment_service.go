package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	attachmenterrors "github.com/jackson951/flexileave-app-sub001/internal/attachment/errors"
	"github.com/jackson951/flexileave-app-sub001/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultMaxBytes int64 = 10 << 20

// Config bounds what Upload accepts. AllowedTypes maps a lower-case file
// extension to the MIME type stored for it.
type Config struct {
	MaxBytes     int64
	AllowedTypes map[string]string
}

func DefaultConfig() Config {
	return Config{
		MaxBytes: DefaultMaxBytes,
		AllowedTypes: map[string]string{
			".pdf":  "application/pdf",
			".jpg":  "image/jpeg",
			".jpeg": "image/jpeg",
			".png":  "image/png",
			".doc":  "application/msword",
			".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
	}
}

//go:generate mockgen -source=attachment_service.go -destination=mock/attachment_service_mock.go -package=mock
type Service interface {
	Upload(ctx context.Context, actor domain.Actor, fh *multipart.FileHeader) (FileResponse, error)
	Get(ctx context.Context, actor domain.Actor, id string) (FileResponse, error)
	Open(ctx context.Context, actor domain.Actor, id string) (FileResponse, io.ReadCloser, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	// PurgeOrphans deletes bytes and records of the given files when they are
	// still unattached. Files re-attached in the meantime are left alone.
	PurgeOrphans(ctx context.Context, ids []uuid.UUID) error
	DeleteOrphaned(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

type service struct {
	repo    Repository
	storage Storage
	cfg     Config
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(repo Repository, storage Storage, cfg Config, logger ...*zap.Logger) Service {
	return NewServiceWithClock(repo, storage, cfg, time.Now, logger...)
}

func NewServiceWithClock(repo Repository, storage Storage, cfg Config, now func() time.Time, logger ...*zap.Logger) Service {
	l := zap.L().Named("attachment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attachment.service")
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = DefaultConfig().AllowedTypes
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, storage: storage, cfg: cfg, now: now, logger: l}
}

func (s *service) Upload(ctx context.Context, actor domain.Actor, fh *multipart.FileHeader) (FileResponse, error) {
	if fh == nil {
		return FileResponse{}, attachmenterrors.ErrFileRequired
	}
	s.logger.Debug("upload file requested",
		zap.String("actor_id", actor.UserID),
		zap.String("filename", fh.Filename),
		zap.Int64("size", fh.Size),
	)

	uploaderID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return FileResponse{}, attachmenterrors.ErrFileForbidden
	}
	if fh.Size <= 0 {
		return FileResponse{}, attachmenterrors.ErrFileRequired
	}
	if fh.Size > s.cfg.MaxBytes {
		s.logger.Warn("upload file too large",
			zap.String("filename", fh.Filename),
			zap.Int64("size", fh.Size),
			zap.Int64("max_bytes", s.cfg.MaxBytes),
		)
		return FileResponse{}, attachmenterrors.ErrFileTooLarge
	}

	mimeType, ok := s.cfg.AllowedTypes[strings.ToLower(filepath.Ext(fh.Filename))]
	if !ok {
		s.logger.Warn("upload file type rejected", zap.String("filename", fh.Filename))
		return FileResponse{}, attachmenterrors.ErrUnsupportedFileType
	}

	src, err := fh.Open()
	if err != nil {
		return FileResponse{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	now := s.now()
	f := &File{
		ID:           uuid.New(),
		UploadedBy:   uploaderID,
		OriginalName: fh.Filename,
		MimeType:     mimeType,
		Size:         fh.Size,
		CreatedAt:    now,
	}
	f.StorageKey = fmt.Sprintf("%s/%s-%s", now.UTC().Format("2006/01"), f.ID, safeFilename(fh.Filename))

	if err := s.storage.Put(ctx, f.StorageKey, src, fh.Size, mimeType); err != nil {
		s.logger.Error("upload file store failed", zap.String("storage_key", f.StorageKey), zap.Error(err))
		return FileResponse{}, err
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.logger.Error("upload file persist failed", zap.String("file_id", f.ID.String()), zap.Error(err))
		if delErr := s.storage.Delete(ctx, f.StorageKey); delErr != nil {
			s.logger.Warn("upload file cleanup failed", zap.String("storage_key", f.StorageKey), zap.Error(delErr))
		}
		return FileResponse{}, err
	}

	s.logger.Info("upload file success",
		zap.String("file_id", f.ID.String()),
		zap.String("actor_id", actor.UserID),
	)
	return MapToResponse(*f), nil
}

func (s *service) Get(ctx context.Context, actor domain.Actor, id string) (FileResponse, error) {
	f, err := s.findReadable(ctx, actor, id)
	if err != nil {
		return FileResponse{}, err
	}
	return MapToResponse(*f), nil
}

func (s *service) Open(ctx context.Context, actor domain.Actor, id string) (FileResponse, io.ReadCloser, error) {
	f, err := s.findReadable(ctx, actor, id)
	if err != nil {
		return FileResponse{}, nil, err
	}

	rc, err := s.storage.Get(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			s.logger.Warn("file bytes missing", zap.String("file_id", f.ID.String()))
			return FileResponse{}, nil, attachmenterrors.ErrFileNotFound
		}
		return FileResponse{}, nil, err
	}
	return MapToResponse(*f), rc, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	s.logger.Debug("delete file requested", zap.String("file_id", id), zap.String("actor_id", actor.UserID))

	f, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if f.UploadedBy.String() != actor.UserID && !actor.IsAdmin() {
		s.logger.Warn("delete file forbidden",
			zap.String("file_id", id),
			zap.String("actor_id", actor.UserID),
		)
		return attachmenterrors.ErrFileForbidden
	}

	if err := s.repo.Release(ctx, f.ID); err != nil {
		s.logger.Error("delete file detach failed", zap.String("file_id", id), zap.Error(err))
		return err
	}
	if err := s.purge(ctx, *f); err != nil {
		return err
	}

	s.logger.Info("delete file success", zap.String("file_id", id))
	return nil
}

func (s *service) PurgeOrphans(ctx context.Context, ids []uuid.UUID) error {
	var errs []error
	for _, id := range Distinct(ids) {
		f, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		if f.Attached() {
			continue
		}
		if _, err := s.purgeOrphan(ctx, *f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *service) DeleteOrphaned(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	files, err := s.repo.ListOrphaned(ctx, olderThan, limit)
	if err != nil {
		s.logger.Error("list orphaned files failed", zap.Error(err))
		return 0, err
	}

	var errs []error
	deleted := 0
	for _, f := range files {
		removed, err := s.purgeOrphan(ctx, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if removed {
			deleted++
		}
	}
	if deleted > 0 {
		s.logger.Info("orphaned files deleted", zap.Int("count", deleted))
	}
	return deleted, errors.Join(errs...)
}

func (s *service) purge(ctx context.Context, f File) error {
	if err := s.storage.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, ErrObjectNotFound) {
		s.logger.Error("delete file bytes failed",
			zap.String("file_id", f.ID.String()),
			zap.String("storage_key", f.StorageKey),
			zap.Error(err),
		)
		return err
	}
	if err := s.repo.Delete(ctx, f.ID); err != nil {
		s.logger.Error("delete file record failed", zap.String("file_id", f.ID.String()), zap.Error(err))
		return err
	}
	return nil
}

// purgeOrphan deletes the record first, guarded on leave_id IS NULL, so a file
// attached after it was listed keeps both its row and its bytes. Bytes whose
// removal fails after the row is gone are only logged.
func (s *service) purgeOrphan(ctx context.Context, f File) (bool, error) {
	removed, err := s.repo.DeleteIfOrphaned(ctx, f.ID)
	if err != nil {
		s.logger.Error("delete orphaned file record failed", zap.String("file_id", f.ID.String()), zap.Error(err))
		return false, err
	}
	if !removed {
		s.logger.Debug("file attached since listing, kept", zap.String("file_id", f.ID.String()))
		return false, nil
	}
	if err := s.storage.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, ErrObjectNotFound) {
		s.logger.Error("delete orphaned file bytes failed",
			zap.String("file_id", f.ID.String()),
			zap.String("storage_key", f.StorageKey),
			zap.Error(err),
		)
	}
	return true, nil
}

func (s *service) find(ctx context.Context, id string) (*File, error) {
	fileID, err := uuid.Parse(id)
	if err != nil {
		return nil, attachmenterrors.ErrInvalidFileID
	}
	f, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, attachmenterrors.ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *service) findReadable(ctx context.Context, actor domain.Actor, id string) (*File, error) {
	f, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.UploadedBy.String() != actor.UserID && !actor.CanReview() {
		return nil, attachmenterrors.ErrFileNotFound
	}
	return f, nil
}
