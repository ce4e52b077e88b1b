package analytics

// MetricPair compares one metric across the current and previous windows.
type MetricPair struct {
	Current          float64 `json:"current"`
	Previous         float64 `json:"previous"`
	PercentageChange float64 `json:"percentageChange"`
}

func NewMetricPair(current, previous float64) MetricPair {
	return MetricPair{
		Current:          current,
		Previous:         previous,
		PercentageChange: PercentageChange(current, previous),
	}
}

// PercentageChange returns the relative change from previous to current.
// A zero previous value yields 0 when current is also zero and 100 otherwise.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}
