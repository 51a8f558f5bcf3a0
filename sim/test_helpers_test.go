package sim

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubPolicy is a scripted Policy that records every hook call.
type stubPolicy struct {
	mode   Mode
	choose func(source, dest int, available []bool) (int, bool)

	masks    [][]bool
	arrivals int
	sends    int
	drops    []*Event
}

func (p *stubPolicy) Choose(source, dest int, available []bool) (int, bool) {
	p.masks = append(p.masks, slices.Clone(available))
	return p.choose(source, dest, available)
}

func (p *stubPolicy) Info(int, int, *Packet) map[string]float64 {
	return map[string]float64{"probe": 7}
}

func (p *stubPolicy) Learn([]Reward, LearningRates) {}
func (p *stubPolicy) OnArrival(int, int)            { p.arrivals++ }
func (p *stubPolicy) OnSend(int, int)               { p.sends++ }
func (p *stubPolicy) OnDrop(e *Event)               { p.drops = append(p.drops, e) }

func (p *stubPolicy) Mode() Mode {
	if p.mode == "" {
		return ModeSingle
	}
	return p.mode
}

// lineTopology builds 0-1-...-(n-1).
func lineTopology(t *testing.T, n int) *Topology {
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
	topo, err := NewTopology(links, nil)
	require.NoError(t, err)
	return topo
}

// towardDest returns a Choose func for line topologies that steps toward the
// destination, falling back to the first available neighbor under a mask.
func towardDest(topo *Topology) func(int, int, []bool) (int, bool) {
	return func(source, dest int, available []bool) (int, bool) {
		next := source + 1
		if dest < source {
			next = source - 1
		}
		idx, _ := topo.ActionIndex(source, next)
		if available == nil || available[idx] {
			return next, true
		}
		for i, ok := range available {
			if ok {
				return topo.Neighbors(source)[i], true
			}
		}
		return 0, false
	}
}

func newTestNetwork(t *testing.T, topo *Topology, cfg Config, p Policy) *Network {
	t.Helper()
	net, err := NewNetwork(topo, cfg, p)
	require.NoError(t, err)
	return net
}
