package sim

import (
	"errors"
	"fmt"
	"math"
)

// SendMode selects how a node matches queued packets to outgoing links.
type SendMode string

const (
	// SendAlwaysBest asks the policy for its unconstrained best neighbor and
	// skips the packet if that link is saturated.
	SendAlwaysBest SendMode = "always_best"
	// SendAlwaysFIFO asks the policy for the best currently available neighbor,
	// serving the queue strictly in order.
	SendAlwaysFIFO SendMode = "always_fifo"
	// SendHybrid scans the queue like SendAlwaysBest, then makes one
	// availability-aware pass from the front if packets remain.
	SendHybrid SendMode = "hybrid"
)

// validSendModes is the set of recognized send modes.
var validSendModes = map[SendMode]bool{
	SendAlwaysBest: true,
	SendAlwaysFIFO: true,
	SendHybrid:     true,
}

// IsValidSendMode returns true if mode is a recognized send mode.
func IsValidSendMode(mode string) bool {
	return validSendModes[SendMode(mode)]
}

// ErrUnknownSendMode is reported by Config.Validate for unrecognized send modes.
// A network built with such a mode runs, but every send round is a no-op.
var ErrUnknownSendMode = errors.New("unknown send mode")

// Config groups network construction parameters.
type Config struct {
	Bandwidth  int      `yaml:"bandwidth"`   // max simultaneous in-flight packets per directed link (must be > 0)
	TransDelay float64  `yaml:"trans_delay"` // fixed per-hop transmission delay (must be > 0)
	SendMode   SendMode `yaml:"send_mode"`
	// DropOnHopLimit drops packets that arrive with hops >= node count.
	DropOnHopLimit bool `yaml:"drop_on_hop_limit"`
}

// DefaultConfig returns a 3-packet link bandwidth, unit delay and always_best sending.
func DefaultConfig() Config {
	return Config{
		Bandwidth:  3,
		TransDelay: 1,
		SendMode:   SendAlwaysBest,
	}
}

// Validate returns an error if the config is invalid.
// An unknown send mode wraps ErrUnknownSendMode.
func (c Config) Validate() error {
	if c.Bandwidth <= 0 {
		return fmt.Errorf("bandwidth must be positive, got %d", c.Bandwidth)
	}
	if c.TransDelay <= 0 || math.IsNaN(c.TransDelay) || math.IsInf(c.TransDelay, 0) {
		return fmt.Errorf("trans_delay must be a positive finite number, got %v", c.TransDelay)
	}
	if !validSendModes[c.SendMode] {
		return fmt.Errorf("%w %q", ErrUnknownSendMode, c.SendMode)
	}
	return nil
}
