package repomanager

import (
	"context"

	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/files"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps both catalogs in process memory.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
	files *files.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users: users.NewMemoryRepository(),
		files: files.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Setup(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Users() users.Repository     { return m.users }
func (m *MemoryRepositoryManager) Files() files.Repository     { return m.files }
func (m *MemoryRepositoryManager) Close() error                { return nil }
