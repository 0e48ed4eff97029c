package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/cleanapi/cleanapi/internal/api/shared"
	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/platform/logger"
	"github.com/cleanapi/cleanapi/internal/redact"
	"github.com/cleanapi/cleanapi/internal/service"
)

const (
	// FormFileField is the multipart field holding the upload.
	FormFileField = "file"

	// multipartMemory is held in memory while parsing; larger parts spill
	// to temporary files.
	multipartMemory = 1 << 20

	// MultipartOverhead is added to the upload limit to allow for multipart
	// headers and boundaries.
	MultipartOverhead = 64 << 10
)

// FileService is the part of service.FileService the handler needs, plus the
// upload limit used to cap request bodies.
type FileService interface {
	service.FileService
	MaxBytes() int64
}

// FileHandler serves the /file routes.
type FileHandler struct {
	files FileService
}

// NewFileHandler creates a FileHandler.
func NewFileHandler(files FileService) *FileHandler {
	return &FileHandler{files: files}
}

// MaxRequestBytes is the body limit for upload requests.
func (h *FileHandler) MaxRequestBytes() int64 {
	return h.files.MaxBytes() + MultipartOverhead
}

// List handles GET /file.
func (h *FileHandler) List(r *http.Request) (*Result, error) {
	caller, err := identity(r)
	if err != nil {
		return nil, err
	}
	files, err := h.files.ListFiles(r.Context(), caller.UserID)
	if err != nil {
		return nil, err
	}
	return OK(files), nil
}

// Upload handles POST /file with a multipart body.
func (h *FileHandler) Upload(r *http.Request) (*Result, error) {
	caller, err := identity(r)
	if err != nil {
		return nil, err
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, service.ErrFileTooLarge
		}
		return nil, domain.WrapError(domain.KindValidationFailed, "Invalid multipart form", err)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	part, header, err := r.FormFile(FormFileField)
	if err != nil {
		return nil, domain.NewValidationError(FormFileField, "is required", err)
	}
	defer part.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			contentType = byExt
		}
	}

	file, err := h.files.Upload(r.Context(), caller.UserID, service.UploadInput{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        part,
	})
	if err != nil {
		return nil, err
	}
	return Created(file), nil
}

// Download handles GET /file/{id}. On success it streams the file instead of
// writing an envelope.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	caller, id, err := callerAndPathUUID(r)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}

	file, body, err := h.files.Download(r.Context(), caller.UserID, id)
	if err != nil {
		shared.RespondWithError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.FileSize, 10))
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": file.OriginFileName}))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		logger.FromContext(r.Context()).Error("failed to stream file",
			"file_id", id,
			"error", redact.Error(err))
	}
}

// Delete handles DELETE /file/{id}.
func (h *FileHandler) Delete(r *http.Request) (*Result, error) {
	caller, id, err := callerAndPathUUID(r)
	if err != nil {
		return nil, err
	}
	if err := h.files.DeleteFile(r.Context(), caller.UserID, id); err != nil {
		return nil, err
	}
	return &Result{Message: "deleted"}, nil
}
