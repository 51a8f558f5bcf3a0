// Defines the Packet struct that models a single packet routed through the network.
// Tracks identity (source, destination, birth time) and per-hop transit accounting.

package sim

import "fmt"

// Packet is owned by exactly one node queue or one in-flight Event at a time.
// Source, destination and birth time are fixed at construction; hop count and
// transmission delay change on every successful send.
type Packet struct {
	ID int64

	source int
	dest   int
	birth  float64

	Hops       int     // Successful forwards so far, incremented once per send
	TransDelay float64 // Transmission delay of the last hop

	enqueuedAt float64 // Clock value when the packet last entered a node queue
}

// NewPacket creates a packet born at time birth that travels from source to dest.
func NewPacket(id int64, source, dest int, birth float64) *Packet {
	return &Packet{
		ID:     id,
		source: source,
		dest:   dest,
		birth:  birth,
	}
}

// Source returns the node the packet was injected at.
func (p *Packet) Source() int { return p.source }

// Dest returns the packet's final destination.
func (p *Packet) Dest() int { return p.dest }

// Birth returns the clock value at which the packet was created.
func (p *Packet) Birth() float64 { return p.birth }

// EnqueuedAt returns the clock value when the packet last entered a node queue.
func (p *Packet) EnqueuedAt() float64 { return p.enqueuedAt }

func (p *Packet) String() string {
	return fmt.Sprintf("Packet<%d: %d->%d hops=%d>", p.ID, p.source, p.dest, p.Hops)
}
