// Package files holds the metadata catalog: one record per stored blob.
package files

import (
	"context"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// Repository persists file records.
//
// Create reports a duplicate id or storage key as common.ErrorAlreadyExists.
// Lookups and Delete of an absent record return common.ErrorNotFound.
// List returns records newest first, ties broken by id.
type Repository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id string) (*models.File, error)
	GetByStorageKey(ctx context.Context, key string) (*models.File, error)
	List(ctx context.Context) ([]*models.File, error)
	Delete(ctx context.Context, id string) error
}
