package sim

// Mode selects how the environment fills reward context.
type Mode string

const (
	// ModeSingle reports the elapsed queuing time of the forwarded packet.
	ModeSingle Mode = "single"
	// ModeDual reports queue occupancy at both endpoints so a policy can learn
	// in both directions from one send.
	ModeDual Mode = "dual"
)

// LearningRates holds the step sizes passed to Policy.Learn.
// Q is used by single-sided updates, Forward and Backward by dual updates.
// Zero fields fall back to the policy's defaults.
type LearningRates struct {
	Q        float64 `yaml:"q"`
	Forward  float64 `yaml:"forward"`
	Backward float64 `yaml:"backward"`
}

// Policy decides which neighbor a node forwards a packet to and learns from
// the rewards produced by sends.
//
// Choose returns the neighbor ID for a packet at source bound for dest.
// available is nil when the caller wants the unconstrained best action;
// otherwise it is indexed like Topology.Neighbors(source) and the returned
// neighbor MUST be available. ok=false means the policy abstains.
type Policy interface {
	Choose(source, dest int, available []bool) (neighbor int, ok bool)
	// Info returns lookahead values merged into the reward for a send from
	// source to action. May return nil.
	Info(source, action int, p *Packet) map[string]float64
	// Learn applies one synchronous batch update. rewards may be empty.
	Learn(rewards []Reward, rates LearningRates)

	OnArrival(node, dest int) // a packet bound for dest entered node's queue
	OnSend(node, dest int)    // node forwarded a packet bound for dest
	OnDrop(e *Event)          // the packet carried by e was dropped; called once per drop

	Mode() Mode
}

// NopHooks provides no-op Policy hooks and single mode.
// Embed it in policies that do not need arrival, send or drop notifications.
type NopHooks struct{}

func (NopHooks) OnArrival(int, int) {}
func (NopHooks) OnSend(int, int)    {}
func (NopHooks) OnDrop(*Event)      {}
func (NopHooks) Mode() Mode         { return ModeSingle }
