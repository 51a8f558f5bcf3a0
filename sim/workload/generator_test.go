package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routesim/routesim/sim"
	"github.com/routesim/routesim/sim/policy"
	"github.com/routesim/routesim/sim/topology"
)

func newNetwork(t *testing.T, rows, cols int) (*sim.Network, *sim.PartitionedRNG) {
	t.Helper()
	topo, err := topology.Grid(rows, cols)
	require.NoError(t, err)
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(42))
	net, err := sim.NewNetwork(topo, sim.DefaultConfig(), policy.NewRandom(topo, rng.ForSubsystem(sim.SubsystemRouter)))
	require.NoError(t, err)
	return net, rng
}

func TestGenerator_DestDiffersFromSource(t *testing.T) {
	net, rng := newNetwork(t, 3, 3)
	g := NewGenerator(net, rng)

	for i := 0; i < 200; i++ {
		for _, p := range g.Next(3) {
			assert.NotEqual(t, p.Source(), p.Dest())
			assert.GreaterOrEqual(t, p.Source(), 0)
			assert.Less(t, p.Dest(), net.NodeCount())
		}
	}
}

func TestGenerator_SameSeed_SameStream(t *testing.T) {
	netA, rngA := newNetwork(t, 3, 3)
	netB, rngB := newNetwork(t, 3, 3)
	a, b := NewGenerator(netA, rngA), NewGenerator(netB, rngB)

	for i := 0; i < 50; i++ {
		pa, pb := a.Next(2), b.Next(2)
		require.Len(t, pb, len(pa))
		for j := range pa {
			assert.Equal(t, pa[j].Source(), pb[j].Source())
			assert.Equal(t, pa[j].Dest(), pb[j].Dest())
			assert.Equal(t, pa[j].ID, pb[j].ID)
		}
	}
}

func TestGenerator_PoissonMean(t *testing.T) {
	net, rng := newNetwork(t, 2, 2)
	g := NewGenerator(net, rng)

	const slots, mean = 5000, 2.5
	total := 0
	for i := 0; i < slots; i++ {
		total += len(g.Next(mean))
	}
	assert.InDelta(t, mean, float64(total)/slots, 0.15)
}

func TestGenerator_ZeroMean_NoPackets(t *testing.T) {
	net, rng := newNetwork(t, 2, 2)
	g := NewGenerator(net, rng)
	assert.Empty(t, g.Next(0))
}

func TestGenerator_SingleNode_NoPackets(t *testing.T) {
	topo, err := sim.NewTopology([][]int{{}}, nil)
	require.NoError(t, err)
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(1))
	net, err := sim.NewNetwork(topo, sim.DefaultConfig(), policy.NewRandom(topo, rng.ForSubsystem(sim.SubsystemRouter)))
	require.NoError(t, err)

	assert.Nil(t, NewGenerator(net, rng).Next(5))
}

func TestGenerator_PacketIDsUnique(t *testing.T) {
	net, rng := newNetwork(t, 3, 3)
	g := NewGenerator(net, rng)
	seen := make(map[int64]bool)
	for i := 0; i < 100; i++ {
		for _, p := range g.Next(4) {
			assert.False(t, seen[p.ID], "duplicate packet ID %d", p.ID)
			seen[p.ID] = true
		}
	}
}

func TestConstantSampler(t *testing.T) {
	var s ConstantSampler
	assert.Equal(t, 3, s.SampleCount(2.6))
	assert.Equal(t, 0, s.SampleCount(-1))
}

func TestNewGeneratorWithSampler_Nil_Error(t *testing.T) {
	net, rng := newNetwork(t, 2, 2)
	_, err := NewGeneratorWithSampler(net, rng, nil)
	assert.Error(t, err)
}

func TestNewGeneratorWithSampler_UsesSampler(t *testing.T) {
	net, rng := newNetwork(t, 2, 2)
	g, err := NewGeneratorWithSampler(net, rng, ConstantSampler{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		assert.Len(t, g.Next(4), 4)
	}
}
