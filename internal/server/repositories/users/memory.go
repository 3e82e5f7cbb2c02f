package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
)

// MemoryRepository keeps users in process memory. Used for tests and the
// memory:// catalog.
type MemoryRepository struct {
	mu      sync.RWMutex
	byName  map[string]*models.User
	byEmail map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byName:  make(map[string]*models.User),
		byEmail: make(map[string]struct{}),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.Name]; ok {
		return nil, common.ErrorAlreadyExists
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	stored := *user
	stored.PasswordHash = append([]byte(nil), user.PasswordHash...)
	r.byName[user.Name] = &stored
	r.byEmail[user.Email] = struct{}{}
	return user, nil
}

func (r *MemoryRepository) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	out.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &out, nil
}
