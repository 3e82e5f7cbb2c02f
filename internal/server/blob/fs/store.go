// Package fs stores blobs as files under one root directory of an afero
// filesystem.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/filekeeper/internal/filex"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob/core"
	"github.com/spf13/afero"
)

// Store implements core.Store on an afero.Fs. Writes go to a temp file in the
// root and are renamed into place once complete.
type Store struct {
	fs   afero.Fs
	root string
}

// New returns a store rooted at root on fsys, creating the directory if needed.
func New(fsys afero.Fs, root string) (*Store, error) {
	if root == "" {
		root = "./uploads"
	}
	if err := filex.EnsureDir(fsys, root); err != nil {
		return nil, err
	}
	return &Store{fs: fsys, root: root}, nil
}

// NewOS is New on the host filesystem.
func NewOS(root string) (*Store, error) {
	return New(afero.NewOsFs(), root)
}

func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

func (s *Store) pathFor(key string) (string, error) {
	if err := core.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, key), nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return core.Info{}, err
	}
	if ok, err := afero.Exists(s.fs, path); err != nil {
		return core.Info{}, err
	} else if ok {
		return core.Info{}, fmt.Errorf("%w: %s", core.ErrExists, key)
	}

	tmp, err := afero.TempFile(s.fs, s.root, ".tmp-*")
	if err != nil {
		return core.Info{}, err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = s.fs.Remove(tmpName)
		}
	}()

	h := sha256.New()
	size, copyErr := io.Copy(io.MultiWriter(tmp, h), core.ContextReader(ctx, r))
	if copyErr != nil {
		_ = tmp.Close()
		return core.Info{}, copyErr
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return core.Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return core.Info{}, err
	}

	if ok, err := afero.Exists(s.fs, path); err != nil {
		return core.Info{}, err
	} else if ok {
		return core.Info{}, fmt.Errorf("%w: %s", core.ErrExists, key)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		return core.Info{}, err
	}
	committed = true

	st, err := s.fs.Stat(path)
	if err != nil {
		return core.Info{}, err
	}
	return core.Info{
		Key:          key,
		Size:         size,
		ContentType:  opts.ContentType,
		ETag:         hex.EncodeToString(h.Sum(nil)),
		LastModified: st.ModTime().UTC(),
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return core.Info{}, nil, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return core.Info{}, nil, fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	f, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.Info{}, nil, fmt.Errorf("%w: %s", core.ErrNotFound, key)
		}
		return core.Info{}, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return core.Info{}, nil, err
	}
	return core.Info{Key: key, Size: st.Size(), LastModified: st.ModTime().UTC()}, f, nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return false, nil
	}
	if err := s.fs.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
