package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/routesim/routesim/sim"
	"github.com/routesim/routesim/sim/metrics"
	"github.com/routesim/routesim/sim/policy"
	"github.com/routesim/routesim/sim/topology"
	"github.com/routesim/routesim/sim/trace"
)

var (
	runOpts = defaultOptions()

	loadSnapshot string // Snapshot to load before training
	saveSnapshot string // Snapshot to store after training
	seriesOut    string // File for the per-slot average route time series
	metricsAddr  string // Prometheus listen address
	render       bool   // Print the grid view after training
	topologyOut  string // File to write the simulated topology to
)

// runCmd trains a policy on one network
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Train a routing policy on a simulated network",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runOpts.resolve(cmd); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		if err := runTraining(ctx, &runOpts, os.Stdout); err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// runTraining builds the network described by o, trains it for o.duration
// and writes the statistics to w.
func runTraining(ctx context.Context, o *runOptions, w io.Writer) error {
	e, err := o.build(o.seed)
	if err != nil {
		return err
	}
	logrus.Infof("Starting %s on %d nodes / %d links, lambda=%g, duration=%g, seed=%d",
		o.policyName, e.topo.NodeCount(), e.topo.LinkCount(), o.lambda, o.duration, o.seed)

	if loadSnapshot != "" {
		s, ok := e.policy.(policy.Snapshotter)
		if !ok {
			return fmt.Errorf("policy %q has no learned state to load", o.policyName)
		}
		if err := policy.Open(loadSnapshot, s); err != nil {
			return err
		}
		logrus.Infof("Loaded snapshot %s", loadSnapshot)
	}

	if topologyOut != "" {
		if err := writeTopology(topologyOut, e.topo); err != nil {
			return err
		}
		logrus.Infof("Wrote topology to %s", topologyOut)
	}

	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(o.traceLevel)})
	e.trainer.SetTrace(st)

	if metricsAddr != "" {
		latest := &metrics.Latest{}
		e.trainer.OnSlot = latest.Publish
		collector := metrics.NewCollector(latest, prometheus.Labels{"policy": o.policyName})
		go func() {
			if err := metrics.Serve(ctx, metricsAddr, collector); err != nil {
				logrus.Errorf("Metrics server: %v", err)
			}
		}()
	}

	res, err := e.trainer.Train(o.duration, o.lambda, o.slot, o.freq)
	if err != nil {
		return err
	}

	e.net.Stats().Print(w)
	if st.Enabled() {
		printTraceSummary(w, trace.Summarize(st))
	}
	if render {
		if e.rows == 0 {
			logrus.Warnf("--render needs a grid topology; skipping")
		} else if err := sim.RenderGrid(w, e.net, e.rows, e.cols); err != nil {
			return err
		}
	}
	if seriesOut != "" {
		if err := sim.SaveSeries(res.RouteTime, seriesOut); err != nil {
			return err
		}
	}
	if saveSnapshot != "" {
		s, ok := e.policy.(policy.Snapshotter)
		if !ok {
			return fmt.Errorf("policy %q has no learned state to store", o.policyName)
		}
		if err := policy.Save(saveSnapshot, s); err != nil {
			return err
		}
		logrus.Infof("Stored snapshot %s", saveSnapshot)
	}
	return nil
}

// writeTopology stores topo at path in the --topology file format.
func writeTopology(path string, topo *sim.Topology) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating topology file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing topology file: %w", closeErr)
		}
	}()
	return topology.Write(f, topo)
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Steps                : %d\n", s.TotalSteps)
	fmt.Fprintf(w, "Sends                : %d\n", s.TotalSends)
	fmt.Fprintf(w, "Sends per Step       : %.3f\n", s.MeanSendsPerStep)
	fmt.Fprintf(w, "Peak Active Packets  : %d\n", s.PeakActive)
	if len(s.LinkUsage) > 0 {
		fmt.Fprintf(w, "Links Used           : %d\n", len(s.LinkUsage))
		fmt.Fprintf(w, "Mean Queue Delay     : %.3f\n", s.MeanQueueDelay)
	}
}

func init() {
	runOpts.bindFlags(runCmd)
	runCmd.Flags().StringVar(&loadSnapshot, "load-snapshot", "", "Load learned tables before training (.zst for compressed)")
	runCmd.Flags().StringVar(&saveSnapshot, "save-snapshot", "", "Store learned tables after training (.zst for compressed)")
	runCmd.Flags().StringVar(&seriesOut, "series-out", "", "Write the per-slot average route time series to this file")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address while training")
	runCmd.Flags().StringVar(&topologyOut, "topology-out", "", "Write the simulated topology to this file (readable by --topology)")
	runCmd.Flags().BoolVar(&render, "render", false, "Print the grid view of queues and links after training")
}
