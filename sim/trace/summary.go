package trace

import "fmt"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalSteps       int
	TotalSends       int
	TotalDelivered   int
	TotalDropped     int
	MeanSendsPerStep float64
	PeakActive       int
	MeanQueueDelay   float64
	LinkUsage        map[string]int // "from->to" → number of forwarding decisions
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		LinkUsage: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalSteps = len(st.Steps)
	for _, s := range st.Steps {
		summary.TotalSends += s.Sent
		summary.TotalDelivered += s.Delivered
		summary.TotalDropped += s.Dropped
		if s.Active > summary.PeakActive {
			summary.PeakActive = s.Active
		}
	}
	if summary.TotalSteps > 0 {
		summary.MeanSendsPerStep = float64(summary.TotalSends) / float64(summary.TotalSteps)
	}

	if len(st.Decisions) > 0 {
		totalDelay := 0.0
		for _, d := range st.Decisions {
			summary.LinkUsage[fmt.Sprintf("%d->%d", d.Node, d.Action)]++
			totalDelay += d.QueueDelay
		}
		summary.MeanQueueDelay = totalDelay / float64(len(st.Decisions))
	}

	return summary
}
