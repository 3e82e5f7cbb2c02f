package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/filekeeper/internal/server/blob/core"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	mem := afero.NewMemMapFs()
	s, err := New(mem, "/uploads")
	require.NoError(t, err)
	return s, mem
}

func listRoot(t *testing.T, fsys afero.Fs) []string {
	t.Helper()
	entries, err := afero.ReadDir(fsys, "/uploads")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestStore_PutGetDelete(t *testing.T) {
	s, mem := newStore(t)
	ctx := context.Background()
	assert.Equal(t, core.DriverFilesystem, s.Driver())

	info, err := s.Put(ctx, "k1.txt", strings.NewReader("hello"), core.PutOptions{ContentType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	assert.Equal(t, "text/plain", info.ContentType)
	assert.Len(t, info.ETag, 64)
	assert.Equal(t, []string{"k1.txt"}, listRoot(t, mem), "no temp files left behind")

	gi, rc, err := s.Get(ctx, "k1.txt")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, int64(5), gi.Size)

	removed, err := s.Delete(ctx, "k1.txt")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(ctx, "k1.txt")
	require.NoError(t, err)
	assert.False(t, removed)

	_, _, err = s.Get(ctx, "k1.txt")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_PutIsCreateOnly(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "k", strings.NewReader("a"), core.PutOptions{})
	require.NoError(t, err)
	_, err = s.Put(ctx, "k", strings.NewReader("b"), core.PutOptions{})
	assert.ErrorIs(t, err, core.ErrExists)

	_, rc, err := s.Get(ctx, "k")
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "a", string(b))
}

type failingReader struct{ after int }

func (f *failingReader) Read(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, errors.New("client went away")
	}
	n := min(len(p), f.after)
	f.after -= n
	return n, nil
}

func TestStore_FailedPutLeavesNothing(t *testing.T) {
	s, mem := newStore(t)

	_, err := s.Put(context.Background(), "k", &failingReader{after: 10}, core.PutOptions{})
	require.Error(t, err)
	assert.Empty(t, listRoot(t, mem))

	_, _, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_CancelledPutLeavesNothing(t *testing.T) {
	s, mem := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, "k", bytes.NewReader(make([]byte, 1024)), core.PutOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, listRoot(t, mem))
}

func TestStore_RejectsUnsafeKeys(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "../escape", strings.NewReader("x"), core.PutOptions{})
	assert.ErrorIs(t, err, core.ErrInvalidKey)

	_, _, err = s.Get(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, core.ErrNotFound)

	removed, err := s.Delete(ctx, "a/b")
	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestNew_CreatesRoot(t *testing.T) {
	mem := afero.NewMemMapFs()
	_, err := New(mem, "/data/blobs")
	require.NoError(t, err)

	ok, err := afero.DirExists(mem, "/data/blobs")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNew_ReadOnlyFsFails(t *testing.T) {
	_, err := New(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/nope")
	assert.Error(t, err)
}
