package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/platform/objectstore"
	"github.com/cleanapi/cleanapi/internal/redact"
	"github.com/cleanapi/cleanapi/internal/store"
	"github.com/google/uuid"
)

// UploadInput describes an incoming file.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileService manages the files uploaded by the calling user.
type FileService interface {
	Upload(ctx context.Context, owner uuid.UUID, in UploadInput) (*domain.UploadedFile, error)
	// Download returns the metadata and content of one of owner's files.
	// The caller closes the reader.
	Download(ctx context.Context, owner, id uuid.UUID) (*domain.UploadedFile, io.ReadCloser, error)
	ListFiles(ctx context.Context, owner uuid.UUID) ([]*domain.UploadedFile, error)
	DeleteFile(ctx context.Context, owner, id uuid.UUID) error
}

// FileServiceImpl implements FileService on a metadata store and an object
// store.
type FileServiceImpl struct {
	files    store.FileStore
	objects  objectstore.Store
	maxBytes int64
	logger   *slog.Logger
}

// NewFileService creates a FileService accepting uploads up to maxBytes.
func NewFileService(
	files store.FileStore,
	objects objectstore.Store,
	maxBytes int64,
	logger *slog.Logger,
) *FileServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileServiceImpl{
		files:    files,
		objects:  objects,
		maxBytes: maxBytes,
		logger:   logger.With("component", "file_service"),
	}
}

var _ FileService = (*FileServiceImpl)(nil)

// MaxBytes returns the upload size limit.
func (s *FileServiceImpl) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores the object first and the metadata second. If the metadata
// write fails the object is removed again.
func (s *FileServiceImpl) Upload(
	ctx context.Context,
	owner uuid.UUID,
	in UploadInput,
) (*domain.UploadedFile, error) {
	if in.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	file, err := domain.NewUploadedFile(owner, in.FileName, in.ContentType, in.Size)
	if err != nil {
		return nil, err
	}

	if err := s.objects.Put(ctx, file.StorageKey, in.Body, file.FileSize, file.ContentType); err != nil {
		s.logger.Error("failed to store object",
			"user_id", owner,
			"file_id", file.ID,
			"error", redact.Error(err))
		return nil, domain.WrapError(domain.KindUnavailable, "File storage is temporarily unavailable", err)
	}

	if err := s.files.Create(ctx, file); err != nil {
		logFailure(s.logger, "failed to save file metadata", err, "file_id", file.ID)
		if delErr := s.objects.Delete(context.WithoutCancel(ctx), file.StorageKey); delErr != nil {
			s.logger.Error("failed to remove orphaned object",
				"file_id", file.ID,
				"error", redact.Error(delErr))
		}
		return nil, translate(err, ErrUserNotFound)
	}

	s.logger.Info("file uploaded",
		"file_id", file.ID,
		"user_id", owner,
		"file_size", file.FileSize,
		"file_type", file.FileType)
	return file, nil
}

// Download implements FileService.
func (s *FileServiceImpl) Download(
	ctx context.Context,
	owner, id uuid.UUID,
) (*domain.UploadedFile, io.ReadCloser, error) {
	file, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, nil, err
	}

	body, err := s.objects.Open(ctx, file.StorageKey)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			s.logger.Error("file metadata without object", "file_id", id)
			return nil, nil, domain.WrapError(ErrFileNotFound.Kind, ErrFileNotFound.Message, err)
		}
		s.logger.Error("failed to open object", "file_id", id, "error", redact.Error(err))
		return nil, nil, domain.WrapError(domain.KindUnavailable, "File storage is temporarily unavailable", err)
	}
	return file, body, nil
}

// ListFiles implements FileService.
func (s *FileServiceImpl) ListFiles(ctx context.Context, owner uuid.UUID) ([]*domain.UploadedFile, error) {
	files, err := s.files.ListByUser(ctx, owner)
	if err != nil {
		logFailure(s.logger, "failed to list files", err, "user_id", owner)
		return nil, translate(err, nil)
	}
	if files == nil {
		files = []*domain.UploadedFile{}
	}
	return files, nil
}

// DeleteFile removes the metadata, then the object. A failed object delete
// is logged and does not fail the request.
func (s *FileServiceImpl) DeleteFile(ctx context.Context, owner, id uuid.UUID) error {
	file, err := s.owned(ctx, owner, id)
	if err != nil {
		return err
	}

	if err := s.files.Delete(ctx, id); err != nil {
		logFailure(s.logger, "failed to delete file metadata", err, "file_id", id)
		return translate(err, ErrFileNotFound)
	}

	if err := s.objects.Delete(ctx, file.StorageKey); err != nil {
		s.logger.Error("failed to delete object", "file_id", id, "error", redact.Error(err))
	}

	s.logger.Info("file deleted", "file_id", id, "user_id", owner)
	return nil
}

func (s *FileServiceImpl) owned(ctx context.Context, owner, id uuid.UUID) (*domain.UploadedFile, error) {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		logFailure(s.logger, "failed to retrieve file", err, "file_id", id)
		return nil, translate(err, ErrFileNotFound)
	}
	if !file.OwnedBy(owner) {
		s.logger.Debug("file access denied", "file_id", id, "user_id", owner)
		return nil, domain.ErrForbidden
	}
	return file, nil
}
