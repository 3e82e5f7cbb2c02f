// Package blob selects and builds the configured blob store driver.
package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/server/blob/core"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob/fs"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob/gridfs"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob/memory"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob/s3"
	"github.com/juju/mgo/v3"
	"github.com/spf13/afero"
)

// Options carries what each driver needs; only the chosen driver's fields
// are read.
type Options struct {
	Driver core.Driver

	// fs
	FS   afero.Fs // defaults to the host filesystem
	Root string

	// s3
	S3 s3.Config

	// gridfs
	Mongo        *mgo.Session
	DatabaseName string
	GridFSPrefix string
}

// ErrGridFSNeedsMongo is returned when gridfs is chosen without a Mongo catalog.
var ErrGridFSNeedsMongo = errors.New("gridfs driver requires a mongo session")

// Open builds the store named by opts.Driver.
func Open(ctx context.Context, opts Options) (core.Store, error) {
	switch opts.Driver {
	case core.DriverFilesystem, "":
		fsys := opts.FS
		if fsys == nil {
			fsys = afero.NewOsFs()
		}
		return fs.New(fsys, opts.Root)
	case core.DriverS3:
		return s3.New(ctx, opts.S3)
	case core.DriverGridFS:
		if opts.Mongo == nil {
			return nil, ErrGridFSNeedsMongo
		}
		st := gridfs.New(opts.Mongo, opts.DatabaseName, opts.GridFSPrefix)
		if err := st.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("gridfs indexes: %w", err)
		}
		return st, nil
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", opts.Driver)
	}
}
