package policy

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/routesim/routesim/sim"
)

// Shortest forwards every packet along a minimum-hop path. It does not learn.
//
// The topology is converted into a gonum graph and a shortest-path tree is
// computed from every destination; a neighbor is a next hop when it is one
// hop closer to the destination. Ties between equally short next hops are
// broken at random. Under an availability mask it falls back to the closest
// available neighbor.
type Shortest struct {
	sim.NopHooks
	topo *sim.Topology
	rng  *rand.Rand
	dist [][]float64 // dist[dest][node], +Inf when unreachable
}

// NewShortest precomputes hop distances for topo.
func NewShortest(topo *sim.Topology, rng *rand.Rand) *Shortest {
	n := topo.NodeCount()
	g := simple.NewUndirectedGraph()
	for id := 0; id < n; id++ {
		g.AddNode(simple.Node(id))
	}
	for a := 0; a < n; a++ {
		for _, b := range topo.Neighbors(a) {
			if a < b {
				g.SetEdge(g.NewEdge(simple.Node(a), simple.Node(b)))
			}
		}
	}

	dist := make([][]float64, n)
	for dest := 0; dest < n; dest++ {
		tree := path.DijkstraFrom(simple.Node(dest), g)
		dist[dest] = make([]float64, n)
		for node := 0; node < n; node++ {
			dist[dest][node] = tree.WeightTo(int64(node))
		}
	}
	return &Shortest{topo: topo, rng: rng, dist: dist}
}

// Distance returns the hop count from node to dest, +Inf if unreachable.
func (p *Shortest) Distance(node, dest int) float64 {
	return p.dist[dest][node]
}

// Choose implements sim.Policy.
func (p *Shortest) Choose(source, dest int, available []bool) (int, bool) {
	neighbors := p.topo.Neighbors(source)
	best := math.Inf(1)
	var candidates []int
	for idx, z := range neighbors {
		if available != nil && !available[idx] {
			continue
		}
		d := p.dist[dest][z]
		switch {
		case d < best:
			best = d
			candidates = append(candidates[:0], z)
		case d == best:
			candidates = append(candidates, z)
		}
	}
	if len(candidates) == 0 || math.IsInf(best, 1) {
		return 0, false
	}
	return candidates[p.rng.Intn(len(candidates))], true
}

// Info implements sim.Policy.
func (p *Shortest) Info(int, int, *sim.Packet) map[string]float64 { return nil }

// Learn implements sim.Policy. Shortest has nothing to learn.
func (p *Shortest) Learn([]sim.Reward, sim.LearningRates) {}

// Random forwards to a uniformly random (available) neighbor. It does not learn.
type Random struct {
	sim.NopHooks
	topo *sim.Topology
	rng  *rand.Rand
}

// NewRandom creates a Random policy.
func NewRandom(topo *sim.Topology, rng *rand.Rand) *Random {
	return &Random{topo: topo, rng: rng}
}

// Choose implements sim.Policy.
func (p *Random) Choose(source, _ int, available []bool) (int, bool) {
	neighbors := p.topo.Neighbors(source)
	candidates := make([]int, 0, len(neighbors))
	for idx, z := range neighbors {
		if available == nil || available[idx] {
			candidates = append(candidates, z)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[p.rng.Intn(len(candidates))], true
}

// Info implements sim.Policy.
func (p *Random) Info(int, int, *sim.Packet) map[string]float64 { return nil }

// Learn implements sim.Policy.
func (p *Random) Learn([]sim.Reward, sim.LearningRates) {}
