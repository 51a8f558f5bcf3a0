// Package train drives a sim.Network with generated traffic while the bound
// policy learns from the rewards of every step.
package train

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/routesim/routesim/sim"
	"github.com/routesim/routesim/sim/trace"
	"github.com/routesim/routesim/sim/workload"
)

// DefaultMaxSlots bounds Sample when too few packets are ever delivered.
const DefaultMaxSlots = 1_000_000

var (
	// ErrInvalidSchedule is returned for non-positive durations, slots or frequencies.
	ErrInvalidSchedule = errors.New("invalid training schedule")
	// ErrSampleExhausted is returned when Sample hits its slot limit before
	// collecting the requested number of deliveries.
	ErrSampleExhausted = errors.New("sample slot limit reached")
)

// Result holds per-slot series of the network's cumulative statistics.
type Result struct {
	RouteTime []float64 // average route time after each slot
	DropRate  []float64 // drop rate after each slot
	Hops      []float64 // average hops after each slot
}

// Trainer runs the inject, step and learn loop.
type Trainer struct {
	net   *sim.Network
	gen   *workload.Generator
	rates sim.LearningRates
	trace *trace.SimulationTrace

	// MaxSlots bounds the number of slots Sample may run (0 = DefaultMaxSlots).
	MaxSlots int
	// OnSlot, when set, receives the network statistics after every slot.
	OnSlot func(sim.Stats)
}

// NewTrainer creates a trainer for net fed by gen. Zero rates select each
// policy's defaults.
func NewTrainer(net *sim.Network, gen *workload.Generator, rates sim.LearningRates) *Trainer {
	return &Trainer{net: net, gen: gen, rates: rates}
}

// SetTrace enables recording into st. A nil trace disables recording.
func (t *Trainer) SetTrace(st *trace.SimulationTrace) { t.trace = st }

// Network returns the trained network.
func (t *Trainer) Network() *sim.Network { return t.net }

// Train runs duration/slot slots. Each slot injects a Poisson(lambda*slot)
// batch, then steps the network freq times by slot, learning after every
// step. The returned series are sampled at the end of each slot.
func (t *Trainer) Train(duration, lambda, slot float64, freq int) (*Result, error) {
	if err := validateSchedule(lambda, slot, freq); err != nil {
		return nil, err
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w: duration must be positive and finite, got %g", ErrInvalidSchedule, duration)
	}

	slots := int(duration / slot)
	res := &Result{
		RouteTime: make([]float64, slots),
		DropRate:  make([]float64, slots),
		Hops:      make([]float64, slots),
	}
	for i := 0; i < slots; i++ {
		t.runSlot(lambda, slot, freq)
		stats := t.net.Stats()
		res.RouteTime[i] = stats.AveRouteTime()
		res.DropRate[i] = stats.DropRate()
		res.Hops[i] = stats.AveHops()
	}
	logrus.Debugf("train: %d slots done at t=%g", slots, t.net.Clock())
	return res, nil
}

// Sample runs slots as Train does until size packets have been delivered and
// returns the route times of the first size deliveries in delivery order.
func (t *Trainer) Sample(size int, lambda, slot float64, freq int) ([]float64, error) {
	if err := validateSchedule(lambda, slot, freq); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: sample size must be positive, got %d", ErrInvalidSchedule, size)
	}
	maxSlots := t.MaxSlots
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}

	samples := make([]float64, 0, size)
	t.net.SetDeliveryObserver(func(_ *sim.Packet, routeTime float64) {
		if len(samples) < size {
			samples = append(samples, routeTime)
		}
	})
	defer t.net.SetDeliveryObserver(nil)

	for slots := 0; len(samples) < size; slots++ {
		if slots == maxSlots {
			return samples, fmt.Errorf("%w: %d of %d deliveries after %d slots", ErrSampleExhausted, len(samples), size, slots)
		}
		t.runSlot(lambda, slot, freq)
	}
	return samples, nil
}

func (t *Trainer) runSlot(lambda, slot float64, freq int) {
	packets := t.gen.Next(lambda * slot)
	t.net.Inject(packets...)
	injected := len(packets)

	policy := t.net.Policy()
	for i := 0; i < freq; i++ {
		before := t.net.Stats()
		rewards := t.net.Step(slot)
		policy.Learn(rewards, t.rates)
		t.record(before, rewards, injected)
		injected = 0
	}
	if t.OnSlot != nil {
		t.OnSlot(t.net.Stats())
	}
}

func (t *Trainer) record(before sim.Stats, rewards []sim.Reward, injected int) {
	if !t.trace.Enabled() {
		return
	}
	after := t.net.Stats()
	t.trace.RecordStep(trace.StepRecord{
		Clock:     after.Clock,
		Injected:  injected,
		Sent:      len(rewards),
		Delivered: after.EndPackets - before.EndPackets,
		Dropped:   after.DropPackets - before.DropPackets,
		Active:    after.ActivePackets,
	})
	if !t.trace.RecordsDecisions() {
		return
	}
	for _, r := range rewards {
		t.trace.RecordDecision(trace.DecisionRecord{
			Clock:      before.Clock,
			PacketID:   r.Packet.ID,
			Node:       r.Source,
			Dest:       r.Dest,
			Action:     r.Action,
			QueueDelay: r.Info[sim.InfoQueueDelay],
		})
	}
}

func validateSchedule(lambda, slot float64, freq int) error {
	if !(slot > 0) || math.IsInf(slot, 0) {
		return fmt.Errorf("%w: slot must be positive and finite, got %g", ErrInvalidSchedule, slot)
	}
	if freq < 1 {
		return fmt.Errorf("%w: freq must be at least 1, got %d", ErrInvalidSchedule, freq)
	}
	if lambda < 0 || math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return fmt.Errorf("%w: lambda must be non-negative and finite, got %g", ErrInvalidSchedule, lambda)
	}
	return nil
}
