// Package gridfs stores blobs in MongoDB GridFS, next to the Mongo catalog.
package gridfs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/filekeeper/internal/server/blob/core"
	"github.com/juju/mgo/v3"
	"github.com/juju/mgo/v3/bson"
)

// Store implements core.Store on a GridFS bucket. The GridFS filename is the
// blob key.
type Store struct {
	session *mgo.Session
	dbName  string
	prefix  string
}

// New binds a store to the database and GridFS prefix ("fs" by default).
// session is copied per call and is not closed by the store.
func New(session *mgo.Session, dbName, prefix string) *Store {
	if prefix == "" {
		prefix = "fs"
	}
	return &Store{session: session, dbName: dbName, prefix: prefix}
}

func (s *Store) Driver() core.Driver { return core.DriverGridFS }

func (s *Store) gfs(sess *mgo.Session) *mgo.GridFS {
	return sess.DB(s.dbName).GridFS(s.prefix)
}

// EnsureIndexes makes filenames unique so that concurrent Puts of one key
// cannot both succeed.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess := s.session.Copy()
	defer sess.Close()
	return s.gfs(sess).Files.EnsureIndex(mgo.Index{Key: []string{"filename"}, Unique: true, Name: s.prefix + "_filename_key"})
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	if err := core.ValidateKey(key); err != nil {
		return core.Info{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Info{}, err
	}
	sess := s.session.Copy()
	defer sess.Close()
	gfs := s.gfs(sess)

	n, err := gfs.Find(bson.M{"filename": key}).Count()
	if err != nil {
		return core.Info{}, fmt.Errorf("gridfs lookup: %w", err)
	}
	if n > 0 {
		return core.Info{}, fmt.Errorf("%w: %s", core.ErrExists, key)
	}

	f, err := gfs.Create(key)
	if err != nil {
		return core.Info{}, fmt.Errorf("gridfs create: %w", err)
	}
	if opts.ContentType != "" {
		f.SetContentType(opts.ContentType)
	}

	size, err := io.Copy(f, core.ContextReader(ctx, r))
	if err != nil {
		f.Abort()
		_ = f.Close()
		return core.Info{}, err
	}
	if err := f.Close(); err != nil {
		if mgo.IsDup(err) {
			return core.Info{}, fmt.Errorf("%w: %s", core.ErrExists, key)
		}
		return core.Info{}, fmt.Errorf("gridfs close: %w", err)
	}

	return core.Info{
		Key:          key,
		Size:         size,
		ContentType:  opts.ContentType,
		ETag:         f.MD5(),
		LastModified: f.UploadDate().UTC(),
	}, nil
}

// gridReader closes the file and its session together.
type gridReader struct {
	*mgo.GridFile
	sess *mgo.Session
}

func (g *gridReader) Close() error {
	err := g.GridFile.Close()
	g.sess.Close()
	return err
}

func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return core.Info{}, nil, err
	}
	sess := s.session.Copy()
	f, err := s.gfs(sess).Open(key)
	if err != nil {
		sess.Close()
		if errors.Is(err, mgo.ErrNotFound) {
			return core.Info{}, nil, fmt.Errorf("%w: %s", core.ErrNotFound, key)
		}
		return core.Info{}, nil, fmt.Errorf("gridfs open: %w", err)
	}
	info := core.Info{
		Key:          key,
		Size:         f.Size(),
		ContentType:  f.ContentType(),
		ETag:         f.MD5(),
		LastModified: f.UploadDate().UTC(),
	}
	return info, &gridReader{GridFile: f, sess: sess}, nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	sess := s.session.Copy()
	defer sess.Close()
	gfs := s.gfs(sess)

	n, err := gfs.Find(bson.M{"filename": key}).Count()
	if err != nil {
		return false, fmt.Errorf("gridfs lookup: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if err := gfs.Remove(key); err != nil {
		return false, fmt.Errorf("gridfs remove: %w", err)
	}
	return true, nil
}
