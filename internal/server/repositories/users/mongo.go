package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/juju/mgo/v3"
	"github.com/juju/mgo/v3/bson"
)

// Collection is the Mongo collection holding users.
const Collection = "users"

// MongoRepository stores users in MongoDB. Each call works on a copy of the
// root session.
type MongoRepository struct {
	session *mgo.Session
	dbName  string
}

func NewMongoRepository(session *mgo.Session, dbName string) *MongoRepository {
	return &MongoRepository{session: session, dbName: dbName}
}

// EnsureIndexes creates the unique indexes on name and email.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.session.Copy()
	defer s.Close()

	c := s.DB(r.dbName).C(Collection)
	for _, key := range []string{"name", "email"} {
		if err := c.EnsureIndex(mgo.Index{Key: []string{key}, Unique: true, Name: "users_" + key + "_key"}); err != nil {
			return fmt.Errorf("ensure index %s: %w", key, err)
		}
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.session.Copy()
	defer s.Close()

	if err := s.DB(r.dbName).C(Collection).Insert(user); err != nil {
		if mgo.IsDup(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *MongoRepository) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.session.Copy()
	defer s.Close()

	user := &models.User{}
	if err := s.DB(r.dbName).C(Collection).Find(bson.M{"name": name}).One(user); err != nil {
		if errors.Is(err, mgo.ErrNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
