package files

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// MemoryRepository keeps the catalog in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.File
	byKey map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[string]*models.File),
		byKey: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, file *models.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[file.ID]; ok {
		return common.ErrorAlreadyExists
	}
	if _, ok := r.byKey[file.StorageKey]; ok {
		return common.ErrorAlreadyExists
	}
	cp := *file
	r.byID[file.ID] = &cp
	r.byKey[file.StorageKey] = file.ID
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *MemoryRepository) GetByStorageKey(ctx context.Context, key string) (*models.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	id, ok := r.byKey[key]
	r.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]*models.File, 0, len(r.byID))
	for _, f := range r.byID {
		cp := *f
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.byKey, f.StorageKey)
	delete(r.byID, id)
	return nil
}
