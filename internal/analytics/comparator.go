package analytics

import (
	"context"
	"fmt"
)

// Comparator computes a metric over two windows.
type Comparator struct {
	src Source
}

func NewComparator(src Source) *Comparator {
	return &Comparator{src: src}
}

// Compare evaluates q once per window and returns the pair. The two windows
// are queried independently with the same predicate.
func (c *Comparator) Compare(ctx context.Context, q Query, windows WindowPair) (MetricPair, error) {
	q.GroupBy = GroupNone

	prev, err := c.total(ctx, q.WithWindow(windows.Previous))
	if err != nil {
		return MetricPair{}, fmt.Errorf("%s previous window: %w", q.Collection, err)
	}
	cur, err := c.total(ctx, q.WithWindow(windows.Current))
	if err != nil {
		return MetricPair{}, fmt.Errorf("%s current window: %w", q.Collection, err)
	}
	return NewMetricPair(cur, prev), nil
}

func (c *Comparator) total(ctx context.Context, q Query) (float64, error) {
	rows, err := c.src.Aggregate(ctx, q)
	if err != nil {
		return 0, err
	}
	var v float64
	for _, r := range rows {
		v += r.Value(q)
	}
	return v, nil
}
