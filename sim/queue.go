// Implements the PacketQueue, which holds packets waiting at a node to be forwarded.
// Packets are appended on arrival and may be removed from any position, since a
// send round can skip packets whose chosen link is saturated.

package sim

import (
	"fmt"
	"strings"
)

// PacketQueue is an arrival-ordered queue of packets waiting at a node.
type PacketQueue struct {
	queue []*Packet
}

// Enqueue adds a packet to the back of the queue.
func (pq *PacketQueue) Enqueue(p *Packet) {
	pq.queue = append(pq.queue, p)
}

// Len returns the number of waiting packets.
func (pq *PacketQueue) Len() int {
	return len(pq.queue)
}

// At returns the packet at position i.
func (pq *PacketQueue) At(i int) *Packet {
	return pq.queue[i]
}

// RemoveAt removes and returns the packet at position i, preserving the order
// of the remaining packets.
func (pq *PacketQueue) RemoveAt(i int) *Packet {
	if i < 0 || i >= len(pq.queue) {
		panic(fmt.Sprintf("RemoveAt: index %d out of range [0, %d)", i, len(pq.queue)))
	}
	p := pq.queue[i]
	copy(pq.queue[i:], pq.queue[i+1:])
	pq.queue[len(pq.queue)-1] = nil
	pq.queue = pq.queue[:len(pq.queue)-1]
	return p
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage; callers MUST NOT modify it.
func (pq *PacketQueue) Items() []*Packet {
	return pq.queue
}

// Clear empties the queue.
func (pq *PacketQueue) Clear() {
	for i := range pq.queue {
		pq.queue[i] = nil
	}
	pq.queue = pq.queue[:0]
}

func (pq *PacketQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range pq.queue {
		sb.WriteString(p.String())
		if i < len(pq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
