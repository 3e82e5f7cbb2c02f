// Package core defines the blob storage abstraction shared by every driver.
package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local or in-memory afero filesystem
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverGridFS     Driver = "gridfs" // MongoDB GridFS
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
}

// Info describes a stored blob.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the capability set every driver provides.
//
// Put is create-only and atomic: it returns ErrExists for a taken key, and a
// failed or cancelled Put leaves nothing behind under key. Get returns
// ErrNotFound for an absent key; the caller closes the body. Delete reports
// whether something was removed; an absent key is not an error.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) (bool, error)
	Driver() Driver
}

var (
	ErrNotFound   = errors.New("blobstore: not found")
	ErrExists     = errors.New("blobstore: already exists")
	ErrInvalidKey = errors.New("blobstore: invalid key")
)

// ValidateKey accepts flat keys only: no separators, no dot-prefixed names.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	case strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0):
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	case strings.HasPrefix(key, "."):
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// ContextReader fails reads with ctx.Err() once ctx is done.
func ContextReader(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}
