package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/juju/mgo/v3"
	"github.com/juju/mgo/v3/bson"
)

// Collection is the Mongo collection holding file records.
const Collection = "files"

// MongoRepository stores the catalog in MongoDB.
type MongoRepository struct {
	session *mgo.Session
	dbName  string
}

func NewMongoRepository(session *mgo.Session, dbName string) *MongoRepository {
	return &MongoRepository{session: session, dbName: dbName}
}

// EnsureIndexes creates the unique storage key index and the listing index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.session.Copy()
	defer s.Close()

	c := s.DB(r.dbName).C(Collection)
	if err := c.EnsureIndex(mgo.Index{Key: []string{"storage_key"}, Unique: true, Name: "files_storage_key_key"}); err != nil {
		return fmt.Errorf("ensure index storage_key: %w", err)
	}
	if err := c.EnsureIndex(mgo.Index{Key: []string{"-uploaded_at", "_id"}, Name: "files_uploaded_at_idx"}); err != nil {
		return fmt.Errorf("ensure index uploaded_at: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, file *models.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.session.Copy()
	defer s.Close()

	if err := s.DB(r.dbName).C(Collection).Insert(file); err != nil {
		if mgo.IsDup(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, q bson.M) (*models.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.session.Copy()
	defer s.Close()

	f := &models.File{}
	if err := s.DB(r.dbName).C(Collection).Find(q).One(f); err != nil {
		if errors.Is(err, mgo.ErrNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetByStorageKey(ctx context.Context, key string) (*models.File, error) {
	return r.findOne(ctx, bson.M{"storage_key": key})
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.session.Copy()
	defer s.Close()

	result := make([]*models.File, 0)
	if err := s.DB(r.dbName).C(Collection).Find(nil).Sort("-uploaded_at", "_id").All(&result); err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	return result, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.session.Copy()
	defer s.Close()

	if err := s.DB(r.dbName).C(Collection).RemoveId(id); err != nil {
		if errors.Is(err, mgo.ErrNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
