// Package sim provides the discrete-event packet routing engine for routesim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - packet.go: Packet identity and per-hop accounting
//   - event.go: scheduled arrivals and the deterministic EventQueue
//   - node.go: the per-node send loop (send modes, link capacity, rewards)
//   - network.go: Step (send phase + event drain), Inject, Clean, statistics
//
// # Architecture
//
// The sim package defines the Policy interface and the data it exchanges with
// policies (Packet, Event, Reward); implementations live in sub-packages:
//   - sim/policy/: Q-routing, confidence-weighted dual Q-routing, baselines, snapshots
//   - sim/topology/: topology file parsing and grid builders
//   - sim/workload/: Poisson packet generation
//   - sim/train/: the training and sampling harness
//   - sim/trace/: per-step trace recording
//   - sim/metrics/: Prometheus export of network statistics
//
// # Time and ordering
//
// Time is virtual (float64). Within a step every node sends in ascending ID
// order before any arrival is delivered, and arrivals are delivered in
// non-decreasing arrival time, ties in scheduling order. A Network is driven
// by one goroutine; independent networks may run concurrently.
package sim
