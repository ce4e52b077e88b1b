package repository

import (
	"context"
	"errors"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CollectionAdmins   = "admins"
	CollectionUsers    = "users"
	CollectionOrders   = "orders"
	CollectionProducts = "products"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrInvalidID = errors.New("invalid id")
)

type Store struct {
	DB      *mongo.Database
	metrics *metrics.Metrics
}

func NewStore(db *mongo.Database, m *metrics.Metrics) *Store {
	return &Store{DB: db, metrics: m}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.Client().Ping(ctx, readpref.Primary())
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.DB.Collection(name)
}

func (s *Store) observe(collection, operation string, start time.Time, err error) {
	s.metrics.RecordStoreQuery(collection, operation, time.Since(start), err)
}

// ParseID converts a hex string into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
