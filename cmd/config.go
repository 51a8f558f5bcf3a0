package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/routesim/routesim/sim"
	"github.com/routesim/routesim/sim/policy"
	"github.com/routesim/routesim/sim/trace"
	"github.com/routesim/routesim/sim/workload"
)

// RunConfig is the YAML form of a run. Nil pointer fields mean "not set in
// YAML" and leave the flag value in place; string fields use "" for not set.
type RunConfig struct {
	Seed     *int64         `yaml:"seed"`
	Topology TopologyConfig `yaml:"topology"`
	Network  NetworkConfig  `yaml:"network"`
	Policy   PolicyConfig   `yaml:"policy"`
	Workload WorkloadConfig `yaml:"workload"`
	Trace    string         `yaml:"trace"`
}

// TopologyConfig selects the topology: a description file or a grid such as "6x6".
type TopologyConfig struct {
	File string `yaml:"file"`
	Grid string `yaml:"grid"`
}

// NetworkConfig holds network construction parameters.
type NetworkConfig struct {
	Bandwidth      *int     `yaml:"bandwidth"`
	TransDelay     *float64 `yaml:"trans_delay"`
	SendMode       string   `yaml:"send_mode"`
	DropOnHopLimit *bool    `yaml:"drop_on_hop_limit"`
}

// PolicyConfig holds the policy name, its parameters and learning rates.
type PolicyConfig struct {
	Name         string   `yaml:"name"`
	InitQ        *float64 `yaml:"init_q"`
	Decay        *float64 `yaml:"decay"`
	LearningRate *float64 `yaml:"lr_q"`
	ForwardRate  *float64 `yaml:"lr_forward"`
	BackwardRate *float64 `yaml:"lr_backward"`
}

// WorkloadConfig holds the traffic schedule.
type WorkloadConfig struct {
	Arrival  string   `yaml:"arrival"`
	CV       *float64 `yaml:"cv"`
	Lambda   *float64 `yaml:"lambda"`
	Slot     *float64 `yaml:"slot"`
	Freq     *int     `yaml:"freq"`
	Duration *float64 `yaml:"duration"`
}

// LoadRunConfig reads and parses a YAML run configuration file.
// Unknown fields are errors so typos do not silently fall back to defaults.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	var rc RunConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rc); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	if err := rc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &rc, nil
}

// Validate checks names and parameter ranges set in the file.
func (rc *RunConfig) Validate() error {
	if rc.Topology.File != "" && rc.Topology.Grid != "" {
		return fmt.Errorf("topology: file and grid are mutually exclusive")
	}
	if rc.Topology.Grid != "" {
		if _, _, err := parseGrid(rc.Topology.Grid); err != nil {
			return err
		}
	}
	if rc.Network.SendMode != "" && !sim.IsValidSendMode(rc.Network.SendMode) {
		return fmt.Errorf("%w %q", sim.ErrUnknownSendMode, rc.Network.SendMode)
	}
	if !policy.IsValidName(rc.Policy.Name) {
		return fmt.Errorf("unknown policy %q", rc.Policy.Name)
	}
	if !workload.IsValidArrival(rc.Workload.Arrival) {
		return fmt.Errorf("unknown arrival process %q", rc.Workload.Arrival)
	}
	if rc.Workload.CV != nil && *rc.Workload.CV <= 0 {
		return fmt.Errorf("cv must be positive, got %v", *rc.Workload.CV)
	}
	if !trace.IsValidTraceLevel(rc.Trace) {
		return fmt.Errorf("unknown trace level %q", rc.Trace)
	}
	if rc.Network.Bandwidth != nil && *rc.Network.Bandwidth <= 0 {
		return fmt.Errorf("bandwidth must be positive, got %d", *rc.Network.Bandwidth)
	}
	if rc.Network.TransDelay != nil && *rc.Network.TransDelay <= 0 {
		return fmt.Errorf("trans_delay must be positive, got %v", *rc.Network.TransDelay)
	}
	if rc.Policy.Decay != nil && (*rc.Policy.Decay < 0 || *rc.Policy.Decay > 1) {
		return fmt.Errorf("decay must be in [0, 1], got %v", *rc.Policy.Decay)
	}
	for name, v := range map[string]*float64{
		"lr_q": rc.Policy.LearningRate, "lr_forward": rc.Policy.ForwardRate, "lr_backward": rc.Policy.BackwardRate,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be in [0, 1], got %v", name, *v)
		}
	}
	if rc.Workload.Lambda != nil && *rc.Workload.Lambda < 0 {
		return fmt.Errorf("lambda must be non-negative, got %v", *rc.Workload.Lambda)
	}
	if rc.Workload.Slot != nil && *rc.Workload.Slot <= 0 {
		return fmt.Errorf("slot must be positive, got %v", *rc.Workload.Slot)
	}
	if rc.Workload.Freq != nil && *rc.Workload.Freq < 1 {
		return fmt.Errorf("freq must be at least 1, got %d", *rc.Workload.Freq)
	}
	if rc.Workload.Duration != nil && *rc.Workload.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", *rc.Workload.Duration)
	}
	return nil
}

// parseGrid parses "RxC" (e.g. "6x6").
func parseGrid(s string) (rows, cols int, err error) {
	r, c, ok := strings.Cut(strings.ToLower(s), "x")
	if ok {
		rows, err = strconv.Atoi(r)
		if err == nil {
			cols, err = strconv.Atoi(c)
		}
	}
	if !ok || err != nil || rows <= 0 || cols <= 0 {
		return 0, 0, fmt.Errorf("invalid grid %q, want ROWSxCOLS", s)
	}
	return rows, cols, nil
}
