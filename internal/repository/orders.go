package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecentOrders returns the newest orders with buyers and products resolved.
func (s *Store) RecentOrders(ctx context.Context, limit int) ([]OrderView, error) {
	orders, err := s.findOrders(ctx, bson.M{}, limit)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, orders, true)
}

// RecentOrdersForUser returns a user's newest orders with products resolved.
func (s *Store) RecentOrdersForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]OrderView, error) {
	orders, err := s.findOrders(ctx, bson.M{"user": userID}, limit)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, orders, false)
}

func (s *Store) findOrders(ctx context.Context, filter bson.M, limit int) (orders []Order, err error) {
	start := time.Now()
	defer func() { s.observe(CollectionOrders, "find", start, err) }()

	opts := options.Find().SetSort(bson.D{{Key: createdAtField, Value: -1}}).SetLimit(int64(limit))
	cur, err := s.coll(CollectionOrders).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (s *Store) populate(ctx context.Context, orders []Order, withUsers bool) ([]OrderView, error) {
	userIDs := make([]primitive.ObjectID, 0, len(orders))
	productIDs := make([]primitive.ObjectID, 0)
	for _, o := range orders {
		userIDs = append(userIDs, o.User)
		for _, line := range o.Products {
			productIDs = append(productIDs, line.Product)
		}
	}

	users := map[primitive.ObjectID]*UserRef{}
	if withUsers && len(userIDs) > 0 {
		var refs []UserRef
		if err := s.findRefs(ctx, CollectionUsers, userIDs, bson.M{"name": 1, "email": 1}, &refs); err != nil {
			return nil, err
		}
		for i := range refs {
			users[refs[i].ID] = &refs[i]
		}
	}

	products := map[primitive.ObjectID]*ProductRef{}
	if len(productIDs) > 0 {
		var refs []ProductRef
		if err := s.findRefs(ctx, CollectionProducts, productIDs, bson.M{"name": 1, "images": 1, "price": 1}, &refs); err != nil {
			return nil, err
		}
		for i := range refs {
			products[refs[i].ID] = &refs[i]
		}
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{
			ID:            o.ID,
			User:          users[o.User],
			UserID:        o.User,
			TotalAmount:   o.TotalAmount,
			PaymentStatus: o.PaymentStatus,
			OrderStatus:   o.OrderStatus,
			CreatedAt:     o.CreatedAt,
			Products:      make([]OrderLineView, 0, len(o.Products)),
		}
		for _, line := range o.Products {
			v.Products = append(v.Products, OrderLineView{
				Product:   products[line.Product],
				ProductID: line.Product,
				Quantity:  line.Quantity,
				Price:     line.Price,
			})
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Store) findRefs(ctx context.Context, collection string, ids []primitive.ObjectID, projection bson.M, out any) (err error) {
	start := time.Now()
	defer func() { s.observe(collection, "find", start, err) }()

	cur, err := s.coll(collection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(projection))
	if err != nil {
		return fmt.Errorf("find %s refs: %w", collection, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s refs: %w", collection, err)
	}
	return nil
}

// OrderStatsForUser totals a user's orders. A user without orders yields zeros.
func (s *Store) OrderStatsForUser(ctx context.Context, userID primitive.ObjectID) (stats OrderStats, err error) {
	start := time.Now()
	defer func() { s.observe(CollectionOrders, "aggregate", start, err) }()

	pipeline := []bson.M{
		{"$match": bson.M{"user": userID}},
		{"$group": bson.M{
			"_id":               nil,
			"totalOrders":       bson.M{"$sum": 1},
			"totalSpent":        bson.M{"$sum": "$totalAmount"},
			"averageOrderValue": bson.M{"$avg": "$totalAmount"},
		}},
	}
	cur, err := s.coll(CollectionOrders).Aggregate(ctx, pipeline)
	if err != nil {
		return OrderStats{}, fmt.Errorf("aggregate order stats: %w", err)
	}
	defer cur.Close(ctx)

	if cur.Next(ctx) {
		if err := cur.Decode(&stats); err != nil {
			return OrderStats{}, fmt.Errorf("decode order stats: %w", err)
		}
	}
	return stats, cur.Err()
}

func (s *Store) CountUserOrders(ctx context.Context, userID primitive.ObjectID) (n int64, err error) {
	start := time.Now()
	defer func() { s.observe(CollectionOrders, "count", start, err) }()

	n, err = s.coll(CollectionOrders).CountDocuments(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, fmt.Errorf("count user orders: %w", err)
	}
	return n, nil
}
