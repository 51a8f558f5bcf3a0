// Tracks network-wide packet statistics: injected, delivered, dropped and
// active packet counts, plus hop and route-time totals of delivered packets.

package sim

import (
	"fmt"
	"io"
)

// Stats aggregates packet statistics since the last Network.Clean.
type Stats struct {
	Clock float64 // simulation time when the snapshot was taken

	AllPackets    int     // packets injected
	EndPackets    int     // packets delivered to their destination
	DropPackets   int     // packets dropped at the hop limit
	ActivePackets int     // packets queued or in flight
	Hops          int     // total hops of delivered packets
	RouteTime     float64 // total birth-to-delivery time of delivered packets
}

// AveHops returns the mean hop count of delivered packets, 0 if none.
func (s Stats) AveHops() float64 {
	if s.EndPackets == 0 {
		return 0
	}
	return float64(s.Hops) / float64(s.EndPackets)
}

// AveRouteTime returns the mean route time of delivered packets, 0 if none.
func (s Stats) AveRouteTime() float64 {
	if s.EndPackets == 0 {
		return 0
	}
	return s.RouteTime / float64(s.EndPackets)
}

// DropRate returns dropped/injected packets, 0 if nothing was injected.
func (s Stats) DropRate() float64 {
	if s.AllPackets == 0 {
		return 0
	}
	return float64(s.DropPackets) / float64(s.AllPackets)
}

// Print writes a human-readable summary to w.
func (s Stats) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Network Statistics ===")
	fmt.Fprintf(w, "Clock                : %g\n", s.Clock)
	fmt.Fprintf(w, "Injected Packets     : %d\n", s.AllPackets)
	fmt.Fprintf(w, "Delivered Packets    : %d\n", s.EndPackets)
	fmt.Fprintf(w, "Dropped Packets      : %d\n", s.DropPackets)
	fmt.Fprintf(w, "Active Packets       : %d\n", s.ActivePackets)
	if s.EndPackets > 0 {
		fmt.Fprintf(w, "Average Hops         : %.3f\n", s.AveHops())
		fmt.Fprintf(w, "Average Route Time   : %.3f\n", s.AveRouteTime())
	}
	if s.AllPackets > 0 {
		fmt.Fprintf(w, "Drop Rate            : %.4f\n", s.DropRate())
	}
}
