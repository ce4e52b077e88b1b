package analytics

import (
	"context"
	"errors"
)

// GroupKey selects how matching records are grouped.
type GroupKey int

const (
	GroupNone GroupKey = iota
	GroupCalendarMonth
)

// Query describes an aggregation without tying it to a storage engine.
// Records are selected by Match plus Window on the createdAt timestamp.
// When Sum is empty each group carries only a count.
type Query struct {
	Collection string
	Match      map[string]any
	Window     TimeWindow
	Sum        string
	GroupBy    GroupKey
}

// WithWindow returns a copy of q restricted to w.
func (q Query) WithWindow(w TimeWindow) Query {
	q.Window = w
	return q
}

// Row is one aggregated group. Year and Month are zero for GroupNone.
type Row struct {
	Year  int
	Month int
	Sum   float64
	Count int64
}

// Value is the sum when the query sums a field and the count otherwise.
func (r Row) Value(q Query) float64 {
	if q.Sum != "" {
		return r.Sum
	}
	return float64(r.Count)
}

// Source evaluates queries. Grouped results are ordered ascending.
type Source interface {
	Aggregate(ctx context.Context, q Query) ([]Row, error)
}

var ErrInvalidHorizon = errors.New("horizon must be at least one month")
