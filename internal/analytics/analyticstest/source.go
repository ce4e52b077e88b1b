// Package analyticstest provides an in-memory analytics.Source for tests.
package analyticstest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/analytics"
)

// Record is one stored document.
type Record struct {
	CreatedAt time.Time
	Fields    map[string]any
}

// Source evaluates analytics queries against records held in memory.
type Source struct {
	mu      sync.Mutex
	records map[string][]Record
	// Err, when set, is returned by every Aggregate call.
	Err   error
	Calls []analytics.Query
}

func New() *Source {
	return &Source{records: map[string][]Record{}}
}

func (s *Source) Add(collection string, createdAt time.Time, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[collection] = append(s.records[collection], Record{CreatedAt: createdAt, Fields: fields})
}

func (s *Source) Aggregate(ctx context.Context, q analytics.Query) ([]analytics.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, q)
	if s.Err != nil {
		return nil, s.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type key struct{ year, month int }
	groups := map[key]*analytics.Row{}
	for _, rec := range s.records[q.Collection] {
		if !q.Window.Contains(rec.CreatedAt) || !matches(rec.Fields, q.Match) {
			continue
		}
		k := key{}
		if q.GroupBy == analytics.GroupCalendarMonth {
			t := rec.CreatedAt.UTC()
			k = key{t.Year(), int(t.Month())}
		}
		row, ok := groups[k]
		if !ok {
			row = &analytics.Row{Year: k.year, Month: k.month}
			groups[k] = row
		}
		row.Count++
		if q.Sum != "" {
			row.Sum += number(rec.Fields[q.Sum])
		}
	}

	rows := make([]analytics.Row, 0, len(groups))
	for _, r := range groups {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
	return rows, nil
}

func matches(fields, match map[string]any) bool {
	for k, want := range match {
		if fields[k] != want {
			return false
		}
	}
	return true
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
