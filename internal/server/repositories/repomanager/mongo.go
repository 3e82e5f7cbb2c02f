package repomanager

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/files"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/users"
	"github.com/juju/mgo/v3"
)

const mongoDialTimeout = 10 * time.Second

// MongoRepositoryManager vends MongoDB-backed repositories sharing one root
// session. The session is also handed to the GridFS blob driver.
type MongoRepositoryManager struct {
	session *mgo.Session
	dbName  string
	users   *users.MongoRepository
	files   *files.MongoRepository
}

// dialMongo is a seam for tests.
var dialMongo = func(info *mgo.DialInfo) (*mgo.Session, error) {
	return mgo.DialWithInfo(info)
}

// OpenMongo dials the server. The database named in the URL wins over dbName.
func OpenMongo(ctx context.Context, dsn, dbName string) (*MongoRepositoryManager, error) {
	info, err := mgo.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mongo url: %w", err)
	}
	info.Timeout = mongoDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 && d < info.Timeout {
			info.Timeout = d
		}
	}
	if info.Database != "" {
		dbName = info.Database
	}

	session, err := dialMongo(info)
	if err != nil {
		return nil, fmt.Errorf("dial mongo: %w", err)
	}
	return NewMongoRepositoryManager(session, dbName), nil
}

func NewMongoRepositoryManager(session *mgo.Session, dbName string) *MongoRepositoryManager {
	return &MongoRepositoryManager{
		session: session,
		dbName:  dbName,
		users:   users.NewMongoRepository(session, dbName),
		files:   files.NewMongoRepository(session, dbName),
	}
}

func (m *MongoRepositoryManager) Users() users.Repository { return m.users }
func (m *MongoRepositoryManager) Files() files.Repository { return m.files }

// Session is the root session; callers must Copy it.
func (m *MongoRepositoryManager) Session() *mgo.Session { return m.session }

// DBName is the database holding the collections.
func (m *MongoRepositoryManager) DBName() string { return m.dbName }

// Setup creates the unique indexes that enforce name, email and storage key
// uniqueness.
func (m *MongoRepositoryManager) Setup(ctx context.Context) error {
	if err := m.users.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.files.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Close() error {
	m.session.Close()
	return nil
}
