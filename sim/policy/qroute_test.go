package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routesim/routesim/sim"
)

func TestNewQroute_PinnedCells(t *testing.T) {
	// GIVEN a 4-node line with initQ -5 and transDelay 1
	topo := line(t, 4)
	p := NewQroute(topo, -5, 1, newRNG(1))

	// THEN self rows are 0, neighbor rows point straight at the neighbor,
	// and everything else holds initQ
	assert.Equal(t, 0.0, p.Q(1, 1, 0))
	assert.Equal(t, 0.0, p.Q(1, 1, 2))
	assert.Equal(t, 1.0, p.Q(1, 2, 2))
	assert.Equal(t, 0.0, p.Q(1, 2, 0))
	assert.Equal(t, 1.0, p.Q(1, 0, 0))
	assert.Equal(t, -5.0, p.Q(1, 3, 2))
	assert.Equal(t, -5.0, p.Q(0, 3, 1))
	assert.Same(t, topo, p.Topology())
}

func TestQroute_Choose_NeighborDestinationDirect(t *testing.T) {
	topo := grid(t, 3, 3)
	p := NewQroute(topo, 0, 1, newRNG(1))
	for i := 0; i < 20; i++ {
		next, ok := p.Choose(4, 5, nil)
		require.True(t, ok)
		assert.Equal(t, 5, next)
	}
}

func TestQroute_Choose_Availability(t *testing.T) {
	topo := line(t, 3)
	p := NewQroute(topo, 0, 1, newRNG(1))

	next, ok := p.Choose(1, 2, []bool{true, false})
	require.True(t, ok)
	assert.Equal(t, 0, next)

	_, ok = p.Choose(1, 2, []bool{false, false})
	assert.False(t, ok)
}

func TestQroute_Choose_NearlyEqualMaximaNotTied(t *testing.T) {
	// GIVEN node 4 of a 3x3 grid whose estimates toward 0 differ by 5e-4
	topo := grid(t, 3, 3)
	p := NewQroute(topo, 0, 1, newRNG(1))
	for i, v := range []float64{-100, -100.0005, -500, -500} {
		p.q.set(4, 0, i, v)
	}

	// WHEN choosing many times
	// THEN only the strictly better neighbor (1, index 0) is picked
	for i := 0; i < 1000; i++ {
		next, ok := p.Choose(4, 0, nil)
		require.True(t, ok)
		assert.Equal(t, 1, next)
	}
}

func TestCDRQ_Choose_NearlyEqualMaximaTied(t *testing.T) {
	topo := grid(t, 3, 3)
	p := NewCDRQ(topo, 0, 1, 0, newRNG(1))
	for i, v := range []float64{-100, -100.0005, -500, -500} {
		p.q.set(4, 0, i, v)
	}

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		next, _ := p.Choose(4, 0, nil)
		seen[next] = true
	}
	assert.Equal(t, map[int]bool{1: true, 3: true}, seen)
}

func TestQroute_Info_BestForward(t *testing.T) {
	topo := line(t, 4)
	p := NewQroute(topo, -2, 1, newRNG(1))
	p.q.set(1, 3, 0, -7)

	info := p.Info(0, 1, sim.NewPacket(0, 0, 3, 0))

	assert.Equal(t, map[string]float64{InfoBestForward: -2}, info)
}

func TestQroute_Learn_TDUpdate(t *testing.T) {
	// GIVEN a send 0 -> 1 of a packet for 3
	topo := line(t, 4)
	p := NewQroute(topo, 0, 1, newRNG(1))
	r := sim.Reward{
		Source: 0, Dest: 3, Action: 1,
		Packet: sim.NewPacket(0, 0, 3, 0),
		Info: map[string]float64{
			sim.InfoQueueDelay: 2, sim.InfoTransDelay: 1, InfoBestForward: -3,
		},
	}

	// WHEN learning with the default rate, then with an explicit one
	p.Learn([]sim.Reward{r}, sim.LearningRates{})
	assert.InDelta(t, 0.1*(-6), p.Q(0, 3, 1), 1e-12)

	p.Learn([]sim.Reward{r}, sim.LearningRates{Q: 0.5})
	assert.InDelta(t, -0.6+0.5*(-6+0.6), p.Q(0, 3, 1), 1e-12)
}

func TestQroute_Learn_SkipsActionEqualDest(t *testing.T) {
	topo := line(t, 3)
	p := NewQroute(topo, 0, 1, newRNG(1))
	r := sim.Reward{
		Source: 0, Dest: 1, Action: 1,
		Packet: sim.NewPacket(0, 0, 1, 0),
		Info:   map[string]float64{sim.InfoQueueDelay: 10, sim.InfoTransDelay: 1},
	}

	p.Learn([]sim.Reward{r}, sim.LearningRates{Q: 1})

	assert.Equal(t, 1.0, p.Q(0, 1, 1))
}

func TestQroute_Learn_NonNeighbor_Panics(t *testing.T) {
	topo := line(t, 4)
	p := NewQroute(topo, 0, 1, newRNG(1))
	r := sim.Reward{Source: 0, Dest: 3, Action: 2, Packet: sim.NewPacket(0, 0, 3, 0), Info: map[string]float64{}}
	assert.Panics(t, func() { p.Learn([]sim.Reward{r}, sim.LearningRates{}) })
}

func TestQroute_TrainedOnGrid_DeliversTraffic(t *testing.T) {
	topo := grid(t, 3, 3)
	p := NewQroute(topo, 0, 1, newRNG(3))
	net := trainRandomTraffic(t, topo, p, 300)
	for i := 0; i < 200 && net.Stats().ActivePackets > 0; i++ {
		p.Learn(net.Step(1), sim.LearningRates{})
	}

	s := net.Stats()
	assert.GreaterOrEqual(t, s.EndPackets, s.AllPackets*9/10)
	assert.Equal(t, s.AllPackets, s.EndPackets+s.ActivePackets)
}
