package sim

import "fmt"

// Reward context keys filled in by the environment.
// Single mode uses only the forward keys; dual mode fills both directions.
const (
	InfoQueueDelay     = "queue_delay"      // forward queuing delay (elapsed time, or next-hop occupancy in dual mode)
	InfoTransDelay     = "trans_delay"      // forward transmission units
	InfoQueueDelayBack = "queue_delay_back" // backward queuing delay, dual mode only
	InfoTransDelayBack = "trans_delay_back" // backward transmission units, dual mode only
)

// Reward is the feedback produced by one successful send.
// It is consumed once by Policy.Learn and then discarded.
type Reward struct {
	Source int     // node that forwarded the packet
	Dest   int     // packet's final destination
	Action int     // neighbor the packet was sent to
	Packet *Packet // the forwarded packet
	// Info carries policy lookahead values (from Policy.Info) merged with the
	// environment-observed delays keyed by the Info* constants.
	Info map[string]float64
}

func (r Reward) String() string {
	return fmt.Sprintf("Reward<%d->%d by %d>", r.Source, r.Dest, r.Action)
}
