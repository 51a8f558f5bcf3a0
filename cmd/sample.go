package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/routesim/routesim/sim"
	"github.com/routesim/routesim/sim/train"
)

var (
	sampleOpts = defaultOptions()

	sampleSize int    // Deliveries to collect
	sampleOut  string // File for the raw route times
)

// sampleCmd trains until a fixed number of packets have been delivered
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Train until a number of packets are delivered and report route time percentiles",
	Run: func(cmd *cobra.Command, args []string) {
		if err := sampleOpts.resolve(cmd); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := runSample(&sampleOpts, sampleSize, os.Stdout); err != nil {
			logrus.Fatalf("Sample failed: %v", err)
		}
	},
}

func runSample(o *runOptions, size int, w io.Writer) error {
	e, err := o.build(o.seed)
	if err != nil {
		return err
	}
	samples, err := e.trainer.Sample(size, o.lambda, o.slot, o.freq)
	if err != nil {
		return err
	}
	train.SummarizeRouteTimes(samples).Print(w)
	fmt.Fprintf(w, "Clock                : %g\n", e.net.Clock())
	if sampleOut != "" {
		return sim.SaveSeries(samples, sampleOut)
	}
	return nil
}

func init() {
	sampleOpts.bindFlags(sampleCmd)
	sampleCmd.Flags().IntVar(&sampleSize, "size", 1000, "Number of delivered packets to sample")
	sampleCmd.Flags().StringVar(&sampleOut, "out", "", "Write the sampled route times to this file")
}
