package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// SalesBucket is one calendar month of the sales series.
type SalesBucket struct {
	PeriodKey  string  `json:"month"`
	TotalSales float64 `json:"sales"`
	OrderCount int64   `json:"orders"`
}

// Bucketizer groups records into calendar months.
type Bucketizer struct {
	src Source
}

func NewBucketizer(src Source) *Bucketizer {
	return &Bucketizer{src: src}
}

// Bucketize returns the monthly series from the start of the month
// horizonMonths before ref up to now. Months without records are omitted.
func (b *Bucketizer) Bucketize(ctx context.Context, q Query, horizonMonths int, ref time.Time) ([]SalesBucket, error) {
	if horizonMonths < 1 {
		return nil, ErrInvalidHorizon
	}

	q.Window = TimeWindow{Start: MonthStart(ref, horizonMonths)}
	q.GroupBy = GroupCalendarMonth

	rows, err := b.src.Aggregate(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("bucketize %s: %w", q.Collection, err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})

	out := make([]SalesBucket, 0, len(rows))
	for _, r := range rows {
		if r.Count == 0 {
			continue
		}
		key := PeriodKey(r.Year, r.Month)
		if n := len(out); n > 0 && out[n-1].PeriodKey == key {
			out[n-1].TotalSales += r.Sum
			out[n-1].OrderCount += r.Count
			continue
		}
		out = append(out, SalesBucket{PeriodKey: key, TotalSales: r.Sum, OrderCount: r.Count})
	}
	return out, nil
}

// PeriodKey formats a calendar month as YYYY-MM.
func PeriodKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
