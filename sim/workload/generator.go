// Package workload generates packet arrivals for a sim.Network.
package workload

import (
	"fmt"
	"math"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/routesim/routesim/sim"
)

// CountSampler draws the number of packets injected in one slot.
type CountSampler interface {
	// SampleCount returns a non-negative packet count for an expected value of mean.
	SampleCount(mean float64) int
}

// PoissonSampler draws Poisson-distributed counts.
type PoissonSampler struct {
	src exprand.Source
}

func (s *PoissonSampler) setSource(src exprand.Source) { s.src = src }

func (s *PoissonSampler) SampleCount(mean float64) int {
	if mean <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: mean, Src: s.src}.Rand())
}

// ConstantSampler always returns mean rounded to the nearest integer.
type ConstantSampler struct{}

func (ConstantSampler) SampleCount(mean float64) int {
	if mean <= 0 {
		return 0
	}
	return int(math.Round(mean))
}

// Generator creates packets with uniformly random, distinct source and
// destination nodes. Deterministic given the same seed.
type Generator struct {
	net     *sim.Network
	src     exprand.Source
	rnd     *exprand.Rand
	sampler CountSampler
}

// NewGenerator creates a Poisson packet generator for net seeded from the
// workload RNG subsystem.
func NewGenerator(net *sim.Network, rng *sim.PartitionedRNG) *Generator {
	src := exprand.NewSource(rng.Seed(sim.SubsystemWorkload))
	return &Generator{
		net:     net,
		src:     src,
		rnd:     exprand.New(src),
		sampler: &PoissonSampler{src: src},
	}
}

// NewGeneratorWithSampler is NewGenerator with a custom count sampler.
// Samplers that draw from a random source are bound to the generator's
// workload stream.
func NewGeneratorWithSampler(net *sim.Network, rng *sim.PartitionedRNG, sampler CountSampler) (*Generator, error) {
	if sampler == nil {
		return nil, fmt.Errorf("workload: nil sampler")
	}
	g := NewGenerator(net, rng)
	if s, ok := sampler.(sourcedSampler); ok {
		s.setSource(g.src)
	}
	g.sampler = sampler
	return g, nil
}

// sourcedSampler is a CountSampler that draws from an x/exp random source.
type sourcedSampler interface {
	CountSampler
	setSource(src exprand.Source)
}

// Next returns a batch of new packets whose size is drawn with the given mean
// (the arrival rate times the slot length). Packets are born at the network's
// current clock. Networks with fewer than two nodes yield no packets.
func (g *Generator) Next(mean float64) []*sim.Packet {
	n := g.net.NodeCount()
	if n < 2 {
		return nil
	}
	count := g.sampler.SampleCount(mean)
	packets := make([]*sim.Packet, 0, count)
	for i := 0; i < count; i++ {
		source := g.rnd.Intn(n)
		dest := g.rnd.Intn(n)
		for dest == source {
			dest = g.rnd.Intn(n)
		}
		packets = append(packets, g.net.NewPacket(source, dest))
	}
	return packets
}
