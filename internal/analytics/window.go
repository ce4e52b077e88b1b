package analytics

import "time"

// TimeWindow is a half-open interval [Start, End). A zero End means the
// window is open-ended.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

func (w TimeWindow) Open() bool {
	return w.End.IsZero()
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	return w.Open() || t.Before(w.End)
}

// WindowPair is the current window and the one immediately preceding it.
type WindowPair struct {
	Current  TimeWindow
	Previous TimeWindow
}

// NewWindowPair splits the time before ref into two adjacent spans.
// Current is [ref-span, open) and Previous is [ref-2*span, ref-span).
func NewWindowPair(ref time.Time, span time.Duration) WindowPair {
	boundary := ref.Add(-span)
	return WindowPair{
		Current:  TimeWindow{Start: boundary},
		Previous: TimeWindow{Start: boundary.Add(-span), End: boundary},
	}
}

// MonthStart returns midnight UTC on the first day of the month that lies
// monthsBack months before ref's month.
func MonthStart(ref time.Time, monthsBack int) time.Time {
	ref = ref.UTC()
	return time.Date(ref.Year(), ref.Month()-time.Month(monthsBack), 1, 0, 0, 0, 0, time.UTC)
}
