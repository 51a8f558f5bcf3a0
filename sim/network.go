package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Network owns the nodes, the clock, the event queue and the bound policy,
// and advances the simulation one step at a time.
//
// Not safe for concurrent use. Independent networks may run in parallel.
type Network struct {
	cfg    Config
	topo   *Topology
	policy Policy
	nodes  []*Node // indexed by node ID

	clock  float64
	events *EventQueue
	stats  Stats

	nextPacketID int64
	onDeliver    func(p *Packet, routeTime float64)
}

// NewNetwork builds a network over topo bound to policy.
// An unknown send mode is accepted with a warning (every send round becomes a
// no-op); every other invalid parameter is an error.
func NewNetwork(topo *Topology, cfg Config, policy Policy) (*Network, error) {
	if topo == nil {
		return nil, errors.New("network: nil topology")
	}
	if policy == nil {
		return nil, errors.New("network: nil policy")
	}
	if err := cfg.Validate(); err != nil {
		if !errors.Is(err, ErrUnknownSendMode) {
			return nil, fmt.Errorf("network: %w", err)
		}
		logrus.Warnf("network: %v; nodes will not send", err)
	}

	net := &Network{
		cfg:    cfg,
		topo:   topo,
		policy: policy,
		events: NewEventQueue(),
	}
	net.nodes = make([]*Node, topo.NodeCount())
	for id := range net.nodes {
		net.nodes[id] = newNode(id, net)
	}
	return net, nil
}

// Clock returns the current simulation time.
func (net *Network) Clock() float64 { return net.clock }

// Topology returns the network's link structure.
func (net *Network) Topology() *Topology { return net.topo }

// Policy returns the bound routing policy.
func (net *Network) Policy() Policy { return net.policy }

// Config returns the construction parameters.
func (net *Network) Config() Config { return net.cfg }

// NodeCount returns the number of nodes.
func (net *Network) NodeCount() int { return len(net.nodes) }

// Node returns the node with the given ID.
func (net *Network) Node(id int) *Node { return net.nodes[id] }

// QueueLen returns the number of packets waiting at node.
func (net *Network) QueueLen(node int) int { return net.nodes[node].queue.Len() }

// Queue returns the packets waiting at node, in queue order.
// The returned slice MUST NOT be modified.
func (net *Network) Queue(node int) []*Packet { return net.nodes[node].queue.Items() }

// InFlight returns the number of packets in transit on the directed link from->to.
// Returns 0 if the nodes are not adjacent.
func (net *Network) InFlight(from, to int) int {
	idx, ok := net.topo.ActionIndex(from, to)
	if !ok {
		return 0
	}
	return net.nodes[from].inFlight[idx]
}

// PendingEvents returns the number of scheduled, undelivered arrivals.
func (net *Network) PendingEvents() int { return net.events.Len() }

// Stats returns a copy of the aggregate counters.
func (net *Network) Stats() Stats {
	s := net.stats
	s.Clock = net.clock
	return s
}

// SetDeliveryObserver registers fn to be called for every packet that reaches
// its destination. Pass nil to remove the observer.
func (net *Network) SetDeliveryObserver(fn func(p *Packet, routeTime float64)) {
	net.onDeliver = fn
}

// NewPacket creates a packet born now with a network-unique ID.
func (net *Network) NewPacket(source, dest int) *Packet {
	p := NewPacket(net.nextPacketID, source, dest, net.clock)
	net.nextPacketID++
	return p
}

// Inject delivers new packets to their source nodes.
func (net *Network) Inject(packets ...*Packet) {
	net.stats.AllPackets += len(packets)
	net.stats.ActivePackets += len(packets)
	for _, p := range packets {
		if p.source < 0 || p.source >= len(net.nodes) || p.dest < 0 || p.dest >= len(net.nodes) {
			panic(fmt.Sprintf("Network.Inject: %v references a node outside [0, %d)", p, len(net.nodes)))
		}
		net.nodes[p.source].receive(p)
	}
}

// Step runs the network forward by duration: every node sends (in ascending
// ID order), then every arrival due by clock+duration is delivered in arrival
// order. The clock always ends at clock+duration. The returned rewards are for
// the caller to pass to Policy.Learn. Panics if duration is negative or not
// finite.
func (net *Network) Step(duration float64) []Reward {
	if !(duration >= 0) || math.IsInf(duration, 1) {
		panic(fmt.Sprintf("Network.Step: duration must be non-negative and finite, got %g", duration))
	}
	var rewards []Reward
	for _, node := range net.nodes {
		rewards = append(rewards, node.send()...)
	}

	deadline := net.clock + duration
	for {
		e, ok := net.events.Peek()
		if !ok || e.ArriveAt > deadline {
			break
		}
		net.events.Pop()
		idx, _ := net.topo.ActionIndex(e.From, e.To)
		net.nodes[e.From].inFlight[idx]--

		if net.cfg.DropOnHopLimit && e.Packet.Hops >= len(net.nodes) {
			logrus.Debugf("[t %g] dropping %v after %d hops", e.ArriveAt, e.Packet, e.Packet.Hops)
			net.stats.DropPackets++
			net.stats.ActivePackets--
			net.policy.OnDrop(e)
			continue
		}
		net.clock = e.ArriveAt
		net.nodes[e.To].receive(e.Packet)
	}
	net.clock = deadline
	return rewards
}

// Clean restores the clock to 0 and clears queues, in-flight counters, pending
// events and statistics. Topology and the policy's learned state are kept.
func (net *Network) Clean() {
	net.clock = 0
	net.events.Reset()
	net.stats = Stats{}
	net.nextPacketID = 0
	for _, node := range net.nodes {
		node.reset()
	}
}

func (net *Network) endPacket(p *Packet) {
	routeTime := net.clock - p.birth
	logrus.Debugf("[t %g] %v ends at %d after %g", net.clock, p, p.dest, routeTime)
	net.stats.ActivePackets--
	net.stats.EndPackets++
	net.stats.RouteTime += routeTime
	net.stats.Hops += p.Hops
	if net.onDeliver != nil {
		net.onDeliver(p, routeTime)
	}
}
