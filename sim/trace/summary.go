package trace

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary captures the statistical shape of a Monte Carlo finish-day
// distribution.
type Summary struct {
	Count int
	Mean  float64
	Min   int
	Max   int
	P50   float64
	P90   float64
	P95   float64
}

// NewSummary computes a Summary from raw finish days (any order).
// Returns a zero-value Summary for empty input.
func NewSummary(finishDays []int) Summary {
	if len(finishDays) == 0 {
		return Summary{}
	}
	sorted := make([]float64, len(finishDays))
	for i, d := range finishDays {
		sorted[i] = float64(d)
	}
	sort.Float64s(sorted)

	return Summary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Min:   int(sorted[0]),
		Max:   int(sorted[len(sorted)-1]),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:   stat.Quantile(0.90, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("trials=%d mean=%.1f min=%d max=%d p50=%.0f p90=%.0f p95=%.0f",
		s.Count, s.Mean, s.Min, s.Max, s.P50, s.P90, s.P95)
}
