package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const topCustomerLimit = 5

func (s *Store) FindUserByID(ctx context.Context, userID primitive.ObjectID) (user User, err error) {
	start := time.Now()
	defer func() { s.observe(CollectionUsers, "find_one", start, err) }()

	opts := options.FindOne().SetProjection(bson.M{"password": 0})
	err = s.coll(CollectionUsers).FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&user)
	if err != nil {
		return User{}, notFound(err)
	}
	return user, nil
}

// SetUserBlocked updates the blocked flag and returns the updated user.
func (s *Store) SetUserBlocked(ctx context.Context, userID primitive.ObjectID, blocked bool) (user User, err error) {
	start := time.Now()
	defer func() { s.observe(CollectionUsers, "update", start, err) }()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})
	update := bson.M{"$set": bson.M{"isBlocked": blocked, "updatedAt": time.Now().UTC()}}
	err = s.coll(CollectionUsers).FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&user)
	if err != nil {
		return User{}, notFound(err)
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID primitive.ObjectID) (err error) {
	start := time.Now()
	defer func() { s.observe(CollectionUsers, "delete", start, err) }()

	res, err := s.coll(CollectionUsers).DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UserStats summarizes the user base. monthStart bounds newUsersThisMonth.
func (s *Store) UserStats(ctx context.Context, monthStart time.Time) (stats UserStats, err error) {
	start := time.Now()
	defer func() { s.observe(CollectionUsers, "stats", start, err) }()

	users := s.coll(CollectionUsers)
	if stats.TotalUsers, err = users.CountDocuments(ctx, bson.M{}); err != nil {
		return UserStats{}, fmt.Errorf("count users: %w", err)
	}
	if stats.NewUsersThisMonth, err = users.CountDocuments(ctx, bson.M{createdAtField: bson.M{"$gte": monthStart}}); err != nil {
		return UserStats{}, fmt.Errorf("count new users: %w", err)
	}

	buyers, err := s.coll(CollectionOrders).Distinct(ctx, "user", bson.M{})
	if err != nil {
		return UserStats{}, fmt.Errorf("distinct buyers: %w", err)
	}
	stats.ActiveUsers = int64(len(buyers))

	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":        "$user",
			"totalSpent": bson.M{"$sum": "$totalAmount"},
			"orderCount": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"totalSpent": -1}},
		{"$limit": topCustomerLimit},
		{"$lookup": bson.M{
			"from":         CollectionUsers,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}},
		{"$unwind": "$user"},
		{"$project": bson.M{
			"_id":        1,
			"name":       "$user.name",
			"email":      "$user.email",
			"totalSpent": 1,
			"orderCount": 1,
		}},
	}
	cur, err := s.coll(CollectionOrders).Aggregate(ctx, pipeline)
	if err != nil {
		return UserStats{}, fmt.Errorf("aggregate top customers: %w", err)
	}
	stats.TopCustomers = []TopCustomer{}
	if err := cur.All(ctx, &stats.TopCustomers); err != nil {
		return UserStats{}, fmt.Errorf("decode top customers: %w", err)
	}
	return stats, nil
}
