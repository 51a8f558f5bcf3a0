// Package trace provides per-step and per-decision recording for routing analysis.
// This package has no dependencies on sim/ and stores pure data types.
package trace

// StepRecord captures the outcome of one training step.
type StepRecord struct {
	Clock     float64 // simulation time at the end of the step
	Injected  int     // packets injected before the step
	Sent      int     // successful sends (rewards) during the step
	Delivered int     // packets that reached their destination during the step
	Dropped   int     // packets dropped at the hop limit during the step
	Active    int     // packets queued or in flight after the step
}

// DecisionRecord captures a single forwarding decision.
type DecisionRecord struct {
	Clock      float64
	PacketID   int64
	Node       int     // forwarding node
	Dest       int     // packet destination
	Action     int     // chosen neighbor
	QueueDelay float64 // queuing delay reported to the policy
}
