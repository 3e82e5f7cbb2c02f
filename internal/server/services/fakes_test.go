package services

import (
	"context"
	"io"

	"github.com/dmitrijs2005/filekeeper/internal/server/blob/core"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/files"
)

// faultyStore wraps a core.Store and injects errors per operation.
type faultyStore struct {
	core.Store
	putErr    error
	getErr    error
	deleteErr error
	deletes   []string
}

func (f *faultyStore) Put(ctx context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	if f.putErr != nil {
		return core.Info{}, f.putErr
	}
	return f.Store.Put(ctx, key, r, opts)
}

func (f *faultyStore) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	if f.getErr != nil {
		return core.Info{}, nil, f.getErr
	}
	return f.Store.Get(ctx, key)
}

func (f *faultyStore) Delete(ctx context.Context, key string) (bool, error) {
	f.deletes = append(f.deletes, key)
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	return f.Store.Delete(ctx, key)
}

// faultyFiles wraps a files.Repository and injects errors per operation.
type faultyFiles struct {
	files.Repository
	createErr error
	getErr    error
	listErr   error
	deleteErr error
}

func (f *faultyFiles) Create(ctx context.Context, file *models.File) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.Repository.Create(ctx, file)
}

func (f *faultyFiles) GetByID(ctx context.Context, id string) (*models.File, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Repository.GetByID(ctx, id)
}

func (f *faultyFiles) GetByStorageKey(ctx context.Context, key string) (*models.File, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Repository.GetByStorageKey(ctx, key)
}

func (f *faultyFiles) List(ctx context.Context) ([]*models.File, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Repository.List(ctx)
}

func (f *faultyFiles) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Repository.Delete(ctx, id)
}
