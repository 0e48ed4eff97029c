package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/store"
	"github.com/google/uuid"
)

const fileColumns = `id, user_id, file_name, origin_file_name, storage_key, content_type,
	file_size, file_type, created_by, created_at, modified_by, modified_at`

// PostgresFileStore implements store.FileStore on the uploaded_files table.
type PostgresFileStore struct {
	db store.DBTX
}

// NewPostgresFileStore creates a file metadata store using db.
func NewPostgresFileStore(db store.DBTX) *PostgresFileStore {
	return &PostgresFileStore{db: db}
}

var _ store.FileStore = (*PostgresFileStore)(nil)

// WithTx implements store.FileStore.WithTx.
func (s *PostgresFileStore) WithTx(tx *sql.Tx) store.FileStore {
	return &PostgresFileStore{db: tx}
}

// Create implements store.FileStore.Create.
func (s *PostgresFileStore) Create(ctx context.Context, f *domain.UploadedFile) error {
	if err := f.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploaded_files (`+fileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		f.ID, f.UserID, f.FileName, f.OriginFileName, f.StorageKey, f.ContentType,
		f.FileSize, f.FileType, f.CreatedBy, f.CreatedAt, f.ModifiedBy, f.ModifiedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
		}
		return MapError(err)
	}
	return nil
}

// GetByID implements store.FileStore.GetByID.
func (s *PostgresFileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM uploaded_files WHERE id = $1`, id)

	f, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", MapError(err))
	}
	return f, nil
}

// ListByUser implements store.FileStore.ListByUser.
func (s *PostgresFileStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UploadedFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fileColumns+` FROM uploaded_files WHERE user_id = $1 ORDER BY created_at DESC, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var files []*domain.UploadedFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return files, nil
}

// Delete implements store.FileStore.Delete.
func (s *PostgresFileStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM uploaded_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrFileNotFound)
}

func scanFile(row rowScanner) (*domain.UploadedFile, error) {
	var (
		f        domain.UploadedFile
		fileType string
	)
	err := row.Scan(&f.ID, &f.UserID, &f.FileName, &f.OriginFileName, &f.StorageKey,
		&f.ContentType, &f.FileSize, &fileType,
		&f.CreatedBy, &f.CreatedAt, &f.ModifiedBy, &f.ModifiedAt)
	if err != nil {
		return nil, err
	}
	f.FileType = domain.FileType(fileType)
	return &f, nil
}
