package policy

import (
	"fmt"
	"math/rand"

	"github.com/routesim/routesim/sim"
)

// Reward context keys filled in by the table-driven policies.
const (
	InfoBestForward  = "best_q_forward"  // max_z Q[action][packet.dest][z]
	InfoBestBackward = "best_q_backward" // max_z Q[source][packet.source][z], dual mode
	InfoConfForward  = "conf_forward"    // confidence of the forward estimate, dual mode
	InfoConfBackward = "conf_backward"   // confidence of the backward estimate, dual mode
)

// DefaultQRate is the single-sided learning rate used when LearningRates.Q is zero.
const DefaultQRate = 0.1

// Qroute is single-sided Q-routing.
//
// Q[x][d][i] estimates the negative cost of delivering a packet for d from x
// through x's i-th neighbor; Choose picks the argmax, breaking exact ties at
// random. Rows for x itself and the
// cells Q[x][z][i(z)] for each neighbor z are fixed at construction and never
// learned.
type Qroute struct {
	sim.NopHooks
	topo       *sim.Topology
	rng        *rand.Rand
	tie        tieRule
	q          tables
	initQ      float64
	transDelay float64
}

// NewQroute creates a Q-routing policy with every learnable cell set to initQ.
// transDelay seeds the direct-neighbor cells so a packet adjacent to its
// destination goes straight there. rng drives tie-breaks.
func NewQroute(topo *sim.Topology, initQ, transDelay float64, rng *rand.Rand) *Qroute {
	p := &Qroute{
		topo:       topo,
		rng:        rng,
		tie:        exactTie,
		q:          newTables(topo, initQ),
		initQ:      initQ,
		transDelay: transDelay,
	}
	for x := 0; x < topo.NodeCount(); x++ {
		p.pinQ(x)
	}
	return p
}

// pinQ writes the fixed cells of node x: Q[x][x][*] = 0, and for every
// neighbor z, Q[x][z][*] = 0 except Q[x][z][i(z)] = transDelay.
func (p *Qroute) pinQ(x int) {
	for i := range p.q.row(x, x) {
		p.q.set(x, x, i, 0)
	}
	for zi, z := range p.topo.Neighbors(x) {
		for i := range p.q.row(x, z) {
			p.q.set(x, z, i, 0)
		}
		p.q.set(x, z, zi, p.transDelay)
	}
}

// Choose implements sim.Policy.
func (p *Qroute) Choose(source, dest int, available []bool) (int, bool) {
	idx, _, ok := bestIndex(p.q.row(source, dest), available, p.tie, p.rng)
	if !ok {
		return 0, false
	}
	return p.topo.Neighbors(source)[idx], true
}

// Info implements sim.Policy: the next hop's best estimate toward the packet's destination.
func (p *Qroute) Info(_ int, action int, pk *sim.Packet) map[string]float64 {
	return map[string]float64{InfoBestForward: rowMax(p.q.row(action, pk.Dest()))}
}

// Learn implements sim.Policy with a one-step TD update per reward:
//
//	Q[x][d][y] += lr * (-queue_delay - trans_delay + best_q_forward - Q[x][d][y])
//
// Rewards whose action is the destination carry no signal and are skipped.
func (p *Qroute) Learn(rewards []sim.Reward, rates sim.LearningRates) {
	lr := rates.Q
	if lr == 0 {
		lr = DefaultQRate
	}
	for _, r := range rewards {
		if r.Action == r.Dest {
			continue
		}
		idx := p.mustIndex(r.Source, r.Action)
		old := p.q.at(r.Source, r.Dest, idx)
		target := -r.Info[sim.InfoQueueDelay] - r.Info[sim.InfoTransDelay] + r.Info[InfoBestForward]
		p.q.set(r.Source, r.Dest, idx, old+lr*(target-old))
	}
}

// Q returns the current estimate for routing a packet for dest from node via neighbor.
func (p *Qroute) Q(node, dest, neighbor int) float64 {
	return p.q.at(node, dest, p.mustIndex(node, neighbor))
}

// Topology returns the topology the tables were built for.
func (p *Qroute) Topology() *sim.Topology { return p.topo }

func (p *Qroute) mustIndex(node, neighbor int) int {
	idx, ok := p.topo.ActionIndex(node, neighbor)
	if !ok {
		panic(fmt.Sprintf("policy: %d is not a neighbor of %d", neighbor, node))
	}
	return idx
}
