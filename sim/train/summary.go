package train

import (
	"fmt"
	"io"
	"slices"

	"github.com/routesim/routesim/sim"
)

// RouteTimeSummary describes a set of per-packet route times.
type RouteTimeSummary struct {
	Count int
	Mean  float64
	P50   float64
	P90   float64
	P99   float64
	Max   float64
}

// SummarizeRouteTimes computes the summary of samples. An empty slice yields
// a zero summary.
func SummarizeRouteTimes(samples []float64) RouteTimeSummary {
	if len(samples) == 0 {
		return RouteTimeSummary{}
	}
	return RouteTimeSummary{
		Count: len(samples),
		Mean:  sim.CalculateMean(samples),
		P50:   sim.CalculatePercentile(samples, 50),
		P90:   sim.CalculatePercentile(samples, 90),
		P99:   sim.CalculatePercentile(samples, 99),
		Max:   slices.Max(samples),
	}
}

// Print writes the summary in the same layout as sim.Stats.Print.
func (s RouteTimeSummary) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Route Time ===\n")
	fmt.Fprintf(w, "Samples              : %d\n", s.Count)
	fmt.Fprintf(w, "Mean                 : %.3f\n", s.Mean)
	fmt.Fprintf(w, "P50                  : %.3f\n", s.P50)
	fmt.Fprintf(w, "P90                  : %.3f\n", s.P90)
	fmt.Fprintf(w, "P99                  : %.3f\n", s.P99)
	fmt.Fprintf(w, "Max                  : %.3f\n", s.Max)
}
