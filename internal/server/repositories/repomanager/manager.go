// Package repomanager opens the catalog backend named by a DSN and vends the
// user and file repositories bound to it.
package repomanager

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/files"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/users"
)

// RepositoryManager owns one backend connection.
//
// Setup prepares the schema (migrations or indexes) and must be called once
// before the repositories are used.
type RepositoryManager interface {
	Setup(ctx context.Context) error
	Users() users.Repository
	Files() files.Repository
	Close() error
}

// Backend names the kind of store behind a DSN.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendMongo    Backend = "mongo"
	BackendMemory   Backend = "memory"
)

// BackendOf picks the backend from the DSN scheme.
func BackendOf(dsn string) (Backend, error) {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return "", fmt.Errorf("database DSN %q has no scheme", redact(dsn))
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	case "memory":
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// Open connects to the backend named by dsn. dbName is used by backends that
// need a database name when the DSN does not carry one.
func Open(ctx context.Context, dsn, dbName string) (RepositoryManager, error) {
	backend, err := BackendOf(dsn)
	if err != nil {
		return nil, err
	}
	switch backend {
	case BackendPostgres:
		return OpenPostgres(ctx, dsn)
	case BackendMongo:
		return OpenMongo(ctx, dsn, dbName)
	default:
		return NewMemoryRepositoryManager(), nil
	}
}

// redact hides credentials in a DSN before it reaches an error message.
func redact(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at >= 0 {
		if i := strings.Index(dsn, "://"); i >= 0 && i < at {
			return dsn[:i+3] + "***" + dsn[at:]
		}
		return "***" + dsn[at:]
	}
	return dsn
}
