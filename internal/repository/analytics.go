package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/analytics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const createdAtField = "createdAt"

// Aggregate evaluates an analytics query. Ungrouped counts use
// CountDocuments; everything else runs an aggregation pipeline.
func (s *Store) Aggregate(ctx context.Context, q analytics.Query) (rows []analytics.Row, err error) {
	start := time.Now()
	op := "aggregate"
	if q.GroupBy == analytics.GroupNone && q.Sum == "" {
		op = "count"
	}
	defer func() { s.observe(q.Collection, op, start, err) }()

	coll := s.coll(q.Collection)
	if op == "count" {
		n, err := coll.CountDocuments(ctx, MatchFilter(q))
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", q.Collection, err)
		}
		return []analytics.Row{{Count: n}}, nil
	}

	cur, err := coll.Aggregate(ctx, BuildPipeline(q))
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", q.Collection, err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc struct {
			ID *struct {
				Year  int `bson:"year"`
				Month int `bson:"month"`
			} `bson:"_id"`
			Sum   float64 `bson:"sum"`
			Count int64   `bson:"count"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", q.Collection, err)
		}
		row := analytics.Row{Sum: doc.Sum, Count: doc.Count}
		if doc.ID != nil {
			row.Year, row.Month = doc.ID.Year, doc.ID.Month
		}
		rows = append(rows, row)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", q.Collection, err)
	}
	return rows, nil
}

// MatchFilter builds the $match document: the query's equality predicates
// plus a half-open createdAt range.
func MatchFilter(q analytics.Query) bson.M {
	filter := bson.M{}
	for k, v := range q.Match {
		filter[k] = v
	}
	window := bson.M{"$gte": q.Window.Start}
	if !q.Window.Open() {
		window["$lt"] = q.Window.End
	}
	filter[createdAtField] = window
	return filter
}

// BuildPipeline translates q into $match, $group and, for calendar grouping,
// an ascending $sort.
func BuildPipeline(q analytics.Query) mongo.Pipeline {
	group := bson.D{{Key: "_id", Value: nil}}
	if q.GroupBy == analytics.GroupCalendarMonth {
		group = bson.D{{Key: "_id", Value: bson.D{
			{Key: "year", Value: bson.D{{Key: "$year", Value: "$" + createdAtField}}},
			{Key: "month", Value: bson.D{{Key: "$month", Value: "$" + createdAtField}}},
		}}}
	}
	if q.Sum != "" {
		group = append(group, bson.E{Key: "sum", Value: bson.D{{Key: "$sum", Value: "$" + q.Sum}}})
	}
	group = append(group, bson.E{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}})

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: MatchFilter(q)}},
		{{Key: "$group", Value: group}},
	}
	if q.GroupBy == analytics.GroupCalendarMonth {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: 1},
			{Key: "_id.month", Value: 1},
		}}})
	}
	return pipeline
}
