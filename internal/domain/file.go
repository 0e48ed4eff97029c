package domain

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileType is the coarse category of an uploaded file.
type FileType string

// Known file categories.
const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
)

// allowedContentTypes lists accepted upload MIME types by category.
var allowedContentTypes = map[string]FileType{
	"image/png":       FileTypeImage,
	"image/jpeg":      FileTypeImage,
	"image/gif":       FileTypeImage,
	"image/webp":      FileTypeImage,
	"application/pdf": FileTypeDocument,
	"text/plain":      FileTypeDocument,
	"text/csv":        FileTypeDocument,
}

// FileTypeFor returns the category for a MIME type and whether the type is
// accepted for upload.
func FileTypeFor(contentType string) (FileType, bool) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ft, ok := allowedContentTypes[mediaType]
	return ft, ok
}

// UploadedFile is the metadata of a stored object. The bytes live in an
// object store under StorageKey.
type UploadedFile struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uuid.UUID     `json:"user_id"`
	FileName       string        `json:"file_name"`
	OriginFileName string        `json:"origin_file_name"`
	StorageKey     string        `json:"-"`
	ContentType    string        `json:"content_type"`
	FileSize       int64         `json:"file_size"`
	FileType       FileType      `json:"file_type"`
	CreatedBy      uuid.NullUUID `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
	ModifiedBy     uuid.NullUUID `json:"modified_by"`
	ModifiedAt     time.Time     `json:"modified_at"`
}

// NewUploadedFile builds metadata for a file owned by userID. The stored
// file name is derived from the new id so client-supplied names never reach
// the storage key.
func NewUploadedFile(userID uuid.UUID, originName, contentType string, size int64) (*UploadedFile, error) {
	fileType, ok := FileTypeFor(contentType)
	if !ok {
		return nil, NewValidationError("file", "has an unsupported content type", ErrValidation)
	}

	now := time.Now().UTC()
	id := uuid.New()
	base := filepath.Base(strings.ReplaceAll(originName, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	fileName := id.String() + ext

	f := &UploadedFile{
		ID:             id,
		UserID:         userID,
		FileName:       fileName,
		OriginFileName: base,
		StorageKey:     path.Join("users", userID.String(), fmt.Sprintf("%04d/%02d", now.Year(), now.Month()), fileName),
		ContentType:    contentType,
		FileSize:       size,
		FileType:       fileType,
		CreatedBy:      nullUUID(userID),
		CreatedAt:      now,
		ModifiedBy:     nullUUID(userID),
		ModifiedAt:     now,
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks if the UploadedFile has valid data.
func (f *UploadedFile) Validate() error {
	if f.ID == uuid.Nil {
		return NewValidationError("id", "is required", ErrInvalidID)
	}
	if f.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrInvalidID)
	}
	if f.OriginFileName == "" || f.OriginFileName == "." || f.OriginFileName == "/" {
		return NewValidationError("file", "must have a file name", ErrValidation)
	}
	if len(f.OriginFileName) > 255 {
		return NewValidationError("file", "file name must be at most 255 characters", ErrValidation)
	}
	if f.FileSize <= 0 {
		return NewValidationError("file", "must not be empty", ErrValidation)
	}
	if f.StorageKey == "" {
		return NewValidationError("storage_key", "is required", ErrValidation)
	}
	return nil
}

// OwnedBy reports whether the file belongs to userID.
func (f *UploadedFile) OwnedBy(userID uuid.UUID) bool {
	return f.UserID == userID
}
