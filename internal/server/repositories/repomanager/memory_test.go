package repomanager

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryManager_SharesState(t *testing.T) {
	m := NewMemoryRepositoryManager()
	ctx := context.Background()

	require.NoError(t, m.Files().Create(ctx, &models.File{ID: "a", StorageKey: "k"}))
	_, err := m.Files().GetByID(ctx, "a")
	require.NoError(t, err)

	_, err = m.Users().Create(ctx, &models.User{ID: "u", Name: "n", Email: "e"})
	require.NoError(t, err)
	_, err = m.Users().GetUserByName(ctx, "n")
	require.NoError(t, err)
}
