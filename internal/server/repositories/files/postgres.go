package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/dbx"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// PostgresRepository implements the catalog over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, storage_key, original_name, content_type, size, uploaded_at`

// Create inserts a new record.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, storage_key, original_name, content_type, size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.StorageKey, file.OriginalName, file.ContentType, file.Size, file.UploadedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE ` + where + ` = $1`

	f := &models.File{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&f.ID, &f.StorageKey, &f.OriginalName, &f.ContentType, &f.Size, &f.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// GetByID returns the record with the given id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	return r.getOne(ctx, "id", id)
}

// GetByStorageKey returns the record naming the given blob.
func (r *PostgresRepository) GetByStorageKey(ctx context.Context, key string) (*models.File, error) {
	return r.getOne(ctx, "storage_key", key)
}

// List returns every record, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files ORDER BY uploaded_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := make([]*models.File, 0)
	for rows.Next() {
		var item models.File
		if err := rows.Scan(&item.ID, &item.StorageKey, &item.OriginalName, &item.ContentType, &item.Size, &item.UploadedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the record with the given id. Exactly one row must be affected.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		if dbx.IsInvalidText(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch ra {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
}
