// Package metrics exports network statistics in the Prometheus format.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/routesim/routesim/sim"
)

const (
	namespace = "routesim"
	subsystem = "network"
)

// StatsSource provides the statistics exported on every scrape.
// Implementations MUST be safe for concurrent use.
type StatsSource interface {
	Stats() sim.Stats
}

// Latest is a StatsSource holding the most recently published statistics.
// The training loop publishes into it so scrapes never touch the network.
type Latest struct {
	mu    sync.RWMutex
	stats sim.Stats
}

// Publish replaces the held statistics.
func (l *Latest) Publish(s sim.Stats) {
	l.mu.Lock()
	l.stats = s
	l.mu.Unlock()
}

// Stats implements StatsSource.
func (l *Latest) Stats() sim.Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// Collector is a prometheus.Collector over a StatsSource.
type Collector struct {
	source StatsSource

	clockDesc        *prometheus.Desc
	injectedDesc     *prometheus.Desc
	deliveredDesc    *prometheus.Desc
	droppedDesc      *prometheus.Desc
	activeDesc       *prometheus.Desc
	hopsDesc         *prometheus.Desc
	routeTimeDesc    *prometheus.Desc
	aveHopsDesc      *prometheus.Desc
	aveRouteTimeDesc *prometheus.Desc
	dropRateDesc     *prometheus.Desc
}

// NewCollector creates a collector for source. constLabels (e.g. the policy
// name) are attached to every metric and may be nil.
func NewCollector(source StatsSource, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, constLabels)
	}
	return &Collector{
		source:           source,
		clockDesc:        desc("clock", "Current simulation time"),
		injectedDesc:     desc("packets_injected_total", "Packets injected since the last reset"),
		deliveredDesc:    desc("packets_delivered_total", "Packets delivered to their destination"),
		droppedDesc:      desc("packets_dropped_total", "Packets dropped at the hop limit"),
		activeDesc:       desc("packets_active", "Packets queued or in flight"),
		hopsDesc:         desc("hops_total", "Total hops of delivered packets"),
		routeTimeDesc:    desc("route_time_total", "Total route time of delivered packets"),
		aveHopsDesc:      desc("average_hops", "Mean hop count of delivered packets"),
		aveRouteTimeDesc: desc("average_route_time", "Mean route time of delivered packets"),
		dropRateDesc:     desc("drop_rate", "Dropped over injected packets"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.clockDesc
	ch <- c.injectedDesc
	ch <- c.deliveredDesc
	ch <- c.droppedDesc
	ch <- c.activeDesc
	ch <- c.hopsDesc
	ch <- c.routeTimeDesc
	ch <- c.aveHopsDesc
	ch <- c.aveRouteTimeDesc
	ch <- c.dropRateDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.clockDesc, prometheus.GaugeValue, s.Clock)
	ch <- prometheus.MustNewConstMetric(c.injectedDesc, prometheus.CounterValue, float64(s.AllPackets))
	ch <- prometheus.MustNewConstMetric(c.deliveredDesc, prometheus.CounterValue, float64(s.EndPackets))
	ch <- prometheus.MustNewConstMetric(c.droppedDesc, prometheus.CounterValue, float64(s.DropPackets))
	ch <- prometheus.MustNewConstMetric(c.activeDesc, prometheus.GaugeValue, float64(s.ActivePackets))
	ch <- prometheus.MustNewConstMetric(c.hopsDesc, prometheus.CounterValue, float64(s.Hops))
	ch <- prometheus.MustNewConstMetric(c.routeTimeDesc, prometheus.CounterValue, s.RouteTime)
	ch <- prometheus.MustNewConstMetric(c.aveHopsDesc, prometheus.GaugeValue, s.AveHops())
	ch <- prometheus.MustNewConstMetric(c.aveRouteTimeDesc, prometheus.GaugeValue, s.AveRouteTime())
	ch <- prometheus.MustNewConstMetric(c.dropRateDesc, prometheus.GaugeValue, s.DropRate())
}
