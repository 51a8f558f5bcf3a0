package policy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routesim/routesim/sim"
	"github.com/routesim/routesim/sim/topology"
)

func line(t *testing.T, n int) *sim.Topology {
	t.Helper()
	links := make([][]int, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			links[i] = append(links[i], i-1)
		}
		if i < n-1 {
			links[i] = append(links[i], i+1)
		}
	}
	topo, err := sim.NewTopology(links, nil)
	require.NoError(t, err)
	return topo
}

func grid(t *testing.T, rows, cols int) *sim.Topology {
	t.Helper()
	topo, err := topology.Grid(rows, cols)
	require.NoError(t, err)
	return topo
}

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// trainRandomTraffic runs net for steps with random traffic, learning after every step.
func trainRandomTraffic(t *testing.T, topo *sim.Topology, p sim.Policy, steps int) *sim.Network {
	t.Helper()
	net, err := sim.NewNetwork(topo, sim.DefaultConfig(), p)
	require.NoError(t, err)
	rng := newRNG(11)
	n := topo.NodeCount()
	for i := 0; i < steps; i++ {
		for k := 0; k < 2; k++ {
			s := rng.Intn(n)
			d := rng.Intn(n - 1)
			if d >= s {
				d++
			}
			net.Inject(net.NewPacket(s, d))
		}
		p.Learn(net.Step(1), sim.LearningRates{})
	}
	return net
}
