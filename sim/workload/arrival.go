package workload

import (
	"fmt"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/routesim/routesim/sim"
)

// Arrival process names.
const (
	ArrivalPoisson  = "poisson"
	ArrivalConstant = "constant"
	ArrivalBursty   = "bursty"
)

// validArrivals is the set of recognized arrival processes. "" defaults to poisson.
var validArrivals = map[string]bool{
	"":              true,
	ArrivalPoisson:  true,
	ArrivalConstant: true,
	ArrivalBursty:   true,
}

// IsValidArrival returns true if name is a recognized arrival process.
func IsValidArrival(name string) bool {
	return validArrivals[name]
}

// BurstySampler draws counts from a Poisson whose rate is itself Gamma
// distributed around the requested mean. CV is the coefficient of variation
// of that rate; CV > 1 produces bursty slots separated by quiet ones.
type BurstySampler struct {
	cv  float64
	src exprand.Source
}

func (s *BurstySampler) setSource(src exprand.Source) { s.src = src }

func (s *BurstySampler) SampleCount(mean float64) int {
	if mean <= 0 {
		return 0
	}
	shape := 1 / (s.cv * s.cv)
	rate := distuv.Gamma{Alpha: shape, Beta: shape / mean, Src: s.src}.Rand()
	if rate <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: rate, Src: s.src}.Rand())
}

// NewArrivalGenerator creates a generator for the named arrival process.
// cv is used by the bursty process only and must be positive there.
func NewArrivalGenerator(net *sim.Network, rng *sim.PartitionedRNG, arrival string, cv float64) (*Generator, error) {
	if !IsValidArrival(arrival) {
		return nil, fmt.Errorf("workload: unknown arrival process %q", arrival)
	}
	switch arrival {
	case ArrivalConstant:
		return NewGeneratorWithSampler(net, rng, ConstantSampler{})
	case ArrivalBursty:
		if !(cv > 0) {
			return nil, fmt.Errorf("workload: bursty arrivals need a positive cv, got %v", cv)
		}
		return NewGeneratorWithSampler(net, rng, &BurstySampler{cv: cv})
	default:
		return NewGenerator(net, rng), nil
	}
}
