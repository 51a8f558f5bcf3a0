package policy

import (
	"math/rand"

	"github.com/routesim/routesim/sim"
)

// Default dual learning rates and confidence decay.
const (
	DefaultForwardRate  = 0.85
	DefaultBackwardRate = 0.95
	DefaultDecay        = 0.9
)

// CDRQ is confidence-weighted Dual Reinforcement Q-routing.
//
// Each Q cell carries a confidence in [0, 1]. A send from x to y updates x's
// estimate toward the packet's destination (forward) and y's estimate toward
// the packet's origin (backward). The step is scaled by
// eta = max(peer confidence, 1 - local confidence), so a weak peer estimate
// cannot move a well-established local one. Confidence of cells not updated
// in a round decays by the decay factor. Exact-destination cells
// C[x][z][i(z)] are pinned to 1 and self rows C[x][x][*] to 0. Unlike Qroute,
// estimates within a small tolerance of the maximum count as tied.
type CDRQ struct {
	*Qroute
	conf    tables
	touched [][]bool // touched[node][dest*degree+idx]
	decay   float64
}

// NewCDRQ creates a dual Q-routing policy. Confidence starts at 0 everywhere
// except the pinned exact-destination cells.
func NewCDRQ(topo *sim.Topology, initQ, transDelay, decay float64, rng *rand.Rand) *CDRQ {
	if decay == 0 {
		decay = DefaultDecay
	}
	p := &CDRQ{
		Qroute:  NewQroute(topo, initQ, transDelay, rng),
		conf:    newTables(topo, 0),
		touched: make([][]bool, topo.NodeCount()),
		decay:   decay,
	}
	p.tie = closeTie
	for x := range p.touched {
		p.touched[x] = make([]bool, topo.NodeCount()*topo.Degree(x))
		p.pinConfidence(x)
	}
	return p
}

func (p *CDRQ) pinConfidence(x int) {
	for i := range p.conf.row(x, x) {
		p.conf.set(x, x, i, 0)
	}
	for zi, z := range p.topo.Neighbors(x) {
		p.conf.set(x, z, zi, 1)
	}
}

// Mode implements sim.Policy; CDRQ learns from queue occupancy at both endpoints.
func (p *CDRQ) Mode() sim.Mode { return sim.ModeDual }

// Info implements sim.Policy. It looks up the best estimate and its confidence
// at the next hop toward the packet's destination, and at the sender toward
// the packet's origin.
func (p *CDRQ) Info(source, action int, pk *sim.Packet) map[string]float64 {
	info := make(map[string]float64, 4)
	if idx, best, ok := bestIndex(p.q.row(action, pk.Dest()), nil, p.tie, p.rng); ok {
		info[InfoBestForward] = best
		info[InfoConfForward] = p.conf.at(action, pk.Dest(), idx)
	}
	if idx, best, ok := bestIndex(p.q.row(source, pk.Source()), nil, p.tie, p.rng); ok {
		info[InfoBestBackward] = best
		info[InfoConfBackward] = p.conf.at(source, pk.Source(), idx)
	}
	return info
}

// Learn implements sim.Policy. For a send x→y of a packet s→d:
//
//	forward  (y != d):      Q[x][d][y] += lr.Forward  * eta * (best_q_forward  - queue_delay      - trans_delay      - Q[x][d][y])
//	backward (s != x, y):   Q[y][s][x] += lr.Backward * eta * (best_q_backward - queue_delay_back - trans_delay_back - Q[y][s][x])
//
// and each updated confidence moves toward the peer's by eta. Untouched
// confidences then decay and pinned cells are restored.
func (p *CDRQ) Learn(rewards []sim.Reward, rates sim.LearningRates) {
	lrF, lrB := rates.Forward, rates.Backward
	if lrF == 0 {
		lrF = DefaultForwardRate
	}
	if lrB == 0 {
		lrB = DefaultBackwardRate
	}

	for _, r := range rewards {
		x, y := r.Source, r.Action
		s, d := r.Packet.Source(), r.Packet.Dest()
		if y != d {
			target := r.Info[InfoBestForward] - r.Info[sim.InfoQueueDelay] - r.Info[sim.InfoTransDelay]
			p.update(x, d, p.mustIndex(x, y), target, r.Info[InfoConfForward], lrF)
		}
		if s != x && s != y {
			target := r.Info[InfoBestBackward] - r.Info[sim.InfoQueueDelayBack] - r.Info[sim.InfoTransDelayBack]
			p.update(y, s, p.mustIndex(y, x), target, r.Info[InfoConfBackward], lrB)
		}
	}

	for x, flags := range p.touched {
		degree := p.topo.Degree(x)
		for cell, hit := range flags {
			if !hit {
				dest, idx := cell/degree, cell%degree
				p.conf.set(x, dest, idx, p.conf.at(x, dest, idx)*p.decay)
			}
			flags[cell] = false
		}
		p.pinConfidence(x)
	}
}

func (p *CDRQ) update(node, dest, idx int, target, peerConf, lr float64) {
	oldQ := p.q.at(node, dest, idx)
	oldC := p.conf.at(node, dest, idx)
	eta := max(peerConf, 1-oldC)
	p.q.set(node, dest, idx, oldQ+lr*eta*(target-oldQ))
	p.conf.set(node, dest, idx, oldC+eta*(peerConf-oldC))
	p.touched[node][dest*p.topo.Degree(node)+idx] = true
}

// Confidence returns the confidence of the estimate for dest at node via neighbor.
func (p *CDRQ) Confidence(node, dest, neighbor int) float64 {
	return p.conf.at(node, dest, p.mustIndex(node, neighbor))
}
