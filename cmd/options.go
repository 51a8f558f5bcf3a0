package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/routesim/routesim/sim"
	"github.com/routesim/routesim/sim/policy"
	"github.com/routesim/routesim/sim/topology"
	"github.com/routesim/routesim/sim/trace"
	"github.com/routesim/routesim/sim/train"
	"github.com/routesim/routesim/sim/workload"
)

// runOptions is the resolved configuration shared by run, sweep and sample.
type runOptions struct {
	configPath   string
	seed         int64
	topologyFile string
	grid         string
	network      sim.Config
	sendMode     string
	policyName   string
	params       policy.Params
	rates        sim.LearningRates
	arrival      string
	cv           float64
	lambda       float64
	slot         float64
	freq         int
	duration     float64
	traceLevel   string
}

func defaultOptions() runOptions {
	cfg := sim.DefaultConfig()
	return runOptions{
		seed:       42,
		grid:       "6x6",
		network:    cfg,
		sendMode:   string(cfg.SendMode),
		policyName: policy.NameQroute,
		rates: sim.LearningRates{
			Q:        policy.DefaultQRate,
			Forward:  policy.DefaultForwardRate,
			Backward: policy.DefaultBackwardRate,
		},
		params:     policy.Params{Decay: policy.DefaultDecay},
		arrival:    workload.ArrivalPoisson,
		cv:         1,
		lambda:     1,
		slot:       1,
		freq:       1,
		duration:   1000,
		traceLevel: string(trace.TraceLevelNone),
	}
}

// bindFlags registers the shared flags of cmd on o.
func (o *runOptions) bindFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML run configuration; flags given explicitly take precedence")
	f.Int64Var(&o.seed, "seed", o.seed, "Seed for packet generation and policy tie-breaks")

	// Topology
	f.StringVar(&o.topologyFile, "topology", "", "Topology description file (overrides --grid)")
	f.StringVar(&o.grid, "grid", o.grid, "Grid topology as ROWSxCOLS")

	// Network
	f.IntVar(&o.network.Bandwidth, "bandwidth", o.network.Bandwidth, "Maximum in-flight packets per directed link")
	f.Float64Var(&o.network.TransDelay, "trans-delay", o.network.TransDelay, "Per-hop transmission delay")
	f.StringVar(&o.sendMode, "send-mode", o.sendMode, "Send mode (always_best, always_fifo, hybrid)")
	f.BoolVar(&o.network.DropOnHopLimit, "drop-on-hop-limit", o.network.DropOnHopLimit, "Drop packets whose hop count reaches the node count")

	// Policy
	f.StringVar(&o.policyName, "policy", o.policyName, "Routing policy (qroute, cdrq, shortest, random)")
	f.Float64Var(&o.params.InitQ, "init-q", o.params.InitQ, "Initial value of learnable Q cells")
	f.Float64Var(&o.params.Decay, "decay", o.params.Decay, "CDRQ confidence decay")
	f.Float64Var(&o.rates.Q, "lr-q", o.rates.Q, "Q-routing learning rate")
	f.Float64Var(&o.rates.Forward, "lr-forward", o.rates.Forward, "CDRQ forward learning rate")
	f.Float64Var(&o.rates.Backward, "lr-backward", o.rates.Backward, "CDRQ backward learning rate")

	// Workload
	f.StringVar(&o.arrival, "arrival", o.arrival, "Arrival process (poisson, constant, bursty)")
	f.Float64Var(&o.cv, "cv", o.cv, "Coefficient of variation of the bursty arrival rate")
	f.Float64Var(&o.lambda, "lambda", o.lambda, "Packet arrival rate per unit time")
	f.Float64Var(&o.slot, "slot", o.slot, "Length of one arrival slot")
	f.IntVar(&o.freq, "freq", o.freq, "Network steps per slot")
	f.Float64Var(&o.duration, "duration", o.duration, "Training duration")
	f.StringVar(&o.traceLevel, "trace-level", o.traceLevel, "Trace verbosity (none, steps, decisions)")
}

// resolve applies the --config file, if any, to every option whose flag was
// not set explicitly, then validates the result.
func (o *runOptions) resolve(cmd *cobra.Command) error {
	if o.configPath != "" {
		rc, err := LoadRunConfig(o.configPath)
		if err != nil {
			return err
		}
		o.apply(rc, cmd.Flags().Changed)
	}
	o.network.SendMode = sim.SendMode(o.sendMode)
	return o.validate()
}

func (o *runOptions) apply(rc *RunConfig, changed func(string) bool) {
	setInt64 := func(flag string, dst *int64, v *int64) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}
	setInt := func(flag string, dst *int, v *int) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}
	setFloat := func(flag string, dst *float64, v *float64) {
		if v != nil && !changed(flag) {
			*dst = *v
		}
	}
	setString := func(flag string, dst *string, v string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}

	setInt64("seed", &o.seed, rc.Seed)
	if !changed("topology") && !changed("grid") {
		if rc.Topology.File != "" {
			o.topologyFile = rc.Topology.File
		}
		if rc.Topology.Grid != "" {
			o.grid = rc.Topology.Grid
			o.topologyFile = ""
		}
	}
	setInt("bandwidth", &o.network.Bandwidth, rc.Network.Bandwidth)
	setFloat("trans-delay", &o.network.TransDelay, rc.Network.TransDelay)
	setString("send-mode", &o.sendMode, rc.Network.SendMode)
	if rc.Network.DropOnHopLimit != nil && !changed("drop-on-hop-limit") {
		o.network.DropOnHopLimit = *rc.Network.DropOnHopLimit
	}
	setString("policy", &o.policyName, rc.Policy.Name)
	setFloat("init-q", &o.params.InitQ, rc.Policy.InitQ)
	setFloat("decay", &o.params.Decay, rc.Policy.Decay)
	setFloat("lr-q", &o.rates.Q, rc.Policy.LearningRate)
	setFloat("lr-forward", &o.rates.Forward, rc.Policy.ForwardRate)
	setFloat("lr-backward", &o.rates.Backward, rc.Policy.BackwardRate)
	setString("arrival", &o.arrival, rc.Workload.Arrival)
	setFloat("cv", &o.cv, rc.Workload.CV)
	setFloat("lambda", &o.lambda, rc.Workload.Lambda)
	setFloat("slot", &o.slot, rc.Workload.Slot)
	setInt("freq", &o.freq, rc.Workload.Freq)
	setFloat("duration", &o.duration, rc.Workload.Duration)
	setString("trace-level", &o.traceLevel, rc.Trace)
}

func (o *runOptions) validate() error {
	if err := o.network.Validate(); err != nil {
		return err
	}
	if !policy.IsValidName(o.policyName) {
		return fmt.Errorf("unknown policy %q; valid: qroute, cdrq, shortest, random", o.policyName)
	}
	if !trace.IsValidTraceLevel(o.traceLevel) {
		return fmt.Errorf("unknown trace level %q; valid: none, steps, decisions", o.traceLevel)
	}
	if !workload.IsValidArrival(o.arrival) {
		return fmt.Errorf("unknown arrival process %q; valid: poisson, constant, bursty", o.arrival)
	}
	if o.topologyFile == "" {
		if _, _, err := parseGrid(o.grid); err != nil {
			return err
		}
	}
	return nil
}

// env is one fully wired simulation.
type env struct {
	topo       *sim.Topology
	rows, cols int // grid shape, 0 for file topologies
	net        *sim.Network
	policy     sim.Policy
	trainer    *train.Trainer
}

// build wires a topology, policy, network and trainer for seed.
func (o *runOptions) build(seed int64) (*env, error) {
	e := &env{}
	if o.topologyFile != "" {
		parsed, err := topology.Load(o.topologyFile)
		if err != nil {
			return nil, err
		}
		e.topo = parsed.Topology
	} else {
		rows, cols, err := parseGrid(o.grid)
		if err != nil {
			return nil, err
		}
		if e.topo, err = topology.Grid(rows, cols); err != nil {
			return nil, err
		}
		e.rows, e.cols = rows, cols
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
	params := o.params
	params.TransDelay = o.network.TransDelay
	e.policy = policy.New(o.policyName, e.topo, params, rng.ForSubsystem(sim.SubsystemRouter))

	net, err := sim.NewNetwork(e.topo, o.network, e.policy)
	if err != nil {
		return nil, err
	}
	e.net = net
	gen, err := workload.NewArrivalGenerator(net, rng, o.arrival, o.cv)
	if err != nil {
		return nil, err
	}
	e.trainer = train.NewTrainer(net, gen, o.rates)
	return e, nil
}
