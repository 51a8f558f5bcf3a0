package policy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routesim/routesim/sim"
)

func TestShortest_GridDistances(t *testing.T) {
	topo := grid(t, 3, 3)
	p := NewShortest(topo, newRNG(1))

	assert.Equal(t, 0.0, p.Distance(4, 4))
	assert.Equal(t, 1.0, p.Distance(4, 5))
	assert.Equal(t, 4.0, p.Distance(0, 8))
	assert.Equal(t, 2.0, p.Distance(2, 8))
}

func TestShortest_Choose_RandomAmongShortest(t *testing.T) {
	topo := grid(t, 3, 3)
	p := NewShortest(topo, newRNG(1))

	seen := map[int]bool{}
	for i := 0; i < 100; i++ {
		next, ok := p.Choose(0, 8, nil)
		require.True(t, ok)
		seen[next] = true
	}
	assert.Equal(t, map[int]bool{1: true, 3: true}, seen)
}

func TestShortest_Choose_FallsBackUnderMask(t *testing.T) {
	topo := grid(t, 3, 3)
	p := NewShortest(topo, newRNG(1))

	// node 4 neighbors: up 1, left 3, right 5, down 7
	next, ok := p.Choose(4, 5, []bool{false, true, false, true})
	require.True(t, ok)
	assert.Contains(t, []int{3, 7}, next)

	_, ok = p.Choose(4, 5, []bool{false, false, false, false})
	assert.False(t, ok)
}

func TestShortest_Unreachable_Abstains(t *testing.T) {
	topo, err := sim.NewTopology([][]int{{1}, {0}, {3}, {2}}, nil)
	require.NoError(t, err)
	p := NewShortest(topo, newRNG(1))

	assert.True(t, math.IsInf(p.Distance(0, 3), 1))
	_, ok := p.Choose(0, 3, nil)
	assert.False(t, ok)
}

func TestShortest_NetworkRoutesMinimalHops(t *testing.T) {
	topo := grid(t, 4, 4)
	p := NewShortest(topo, newRNG(1))
	net, err := sim.NewNetwork(topo, sim.DefaultConfig(), p)
	require.NoError(t, err)

	net.Inject(net.NewPacket(0, 15))
	for i := 0; i < 6; i++ {
		net.Step(1)
	}

	s := net.Stats()
	assert.Equal(t, 1, s.EndPackets)
	assert.Equal(t, 6.0, s.AveHops())
}

func TestRandom_OnlyAvailableNeighbors(t *testing.T) {
	topo := grid(t, 3, 3)
	p := NewRandom(topo, newRNG(1))

	for i := 0; i < 50; i++ {
		next, ok := p.Choose(4, 0, []bool{false, true, false, false})
		require.True(t, ok)
		assert.Equal(t, 3, next)
	}
	_, ok := p.Choose(4, 0, []bool{false, false, false, false})
	assert.False(t, ok)
}

func TestRandom_CoversAllNeighbors(t *testing.T) {
	topo := grid(t, 3, 3)
	p := NewRandom(topo, newRNG(1))
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		next, _ := p.Choose(4, 0, nil)
		seen[next] = true
	}
	assert.Len(t, seen, 4)
}
