package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexes lists what the admin queries rely on: unique admin emails, and
// createdAt on every collection the dashboard windows scan.
var indexes = map[string][]mongo.IndexModel{
	CollectionAdmins: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	CollectionUsers: {
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	},
	CollectionOrders: {
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "paymentStatus", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	CollectionProducts: {
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	},
}

// EnsureIndexes creates any missing indexes. It is safe to run on every boot.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for coll, models := range indexes {
		if _, err := s.coll(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}
