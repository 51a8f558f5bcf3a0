// Package policy provides routing policy implementations for sim.Network:
// single-sided Q-routing, confidence-weighted dual Q-routing, and non-learning
// shortest-path and random baselines. Learned tables can be stored to and
// loaded from versioned snapshots.
package policy

import (
	"fmt"
	"math/rand"

	"github.com/routesim/routesim/sim"
)

// Policy names accepted by New.
const (
	NameQroute   = "qroute"
	NameCDRQ     = "cdrq"
	NameShortest = "shortest"
	NameRandom   = "random"
)

// validNames is the set of recognized policy names. "" defaults to qroute.
var validNames = map[string]bool{
	"":           true,
	NameQroute:   true,
	NameCDRQ:     true,
	NameShortest: true,
	NameRandom:   true,
}

// IsValidName returns true if name is a recognized policy name.
func IsValidName(name string) bool {
	return validNames[name]
}

// Params holds policy construction parameters. Fields a policy does not use are ignored.
type Params struct {
	InitQ      float64 `yaml:"init_q"`      // initial value of learnable Q cells
	TransDelay float64 `yaml:"trans_delay"` // value of the pinned direct-neighbor Q cells
	Decay      float64 `yaml:"decay"`       // CDRQ confidence decay (0 = DefaultDecay)
}

// New creates a policy by name.
// Empty string defaults to qroute. Panics on unrecognized names; callers
// validate user input with IsValidName first.
func New(name string, topo *sim.Topology, params Params, rng *rand.Rand) sim.Policy {
	if !IsValidName(name) {
		panic(fmt.Sprintf("unknown policy %q", name))
	}
	switch name {
	case "", NameQroute:
		return NewQroute(topo, params.InitQ, params.TransDelay, rng)
	case NameCDRQ:
		return NewCDRQ(topo, params.InitQ, params.TransDelay, params.Decay, rng)
	case NameShortest:
		return NewShortest(topo, rng)
	case NameRandom:
		return NewRandom(topo, rng)
	default:
		panic(fmt.Sprintf("unhandled policy %q", name))
	}
}
