package sim

import (
	"container/heap"
	"fmt"
)

// Event is a scheduled arrival of a packet at node To, sent by node From.
type Event struct {
	Packet   *Packet
	From     int
	To       int
	ArriveAt float64

	seq uint64 // insertion order, breaks ArriveAt ties
}

func (e *Event) String() string {
	return fmt.Sprintf("Event<%d->%d at %g>", e.From, e.To, e.ArriveAt)
}

// EventQueue is a min-heap of events with deterministic ordering.
// Ordering: arrival time → insertion sequence (FIFO among equal arrival times).
// Events leave the queue only through Pop; there is no cancellation.
type EventQueue struct {
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{events: make(eventHeap, 0)}
}

// Push schedules e. The insertion sequence is assigned here.
func (q *EventQueue) Push(e *Event) {
	e.seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.events, e)
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() (*Event, bool) {
	if len(q.events) == 0 {
		return nil, false
	}
	return q.events[0], true
}

// Pop removes and returns the earliest event.
// Panics on an empty queue; callers check Peek or Len first.
func (q *EventQueue) Pop() *Event {
	if len(q.events) == 0 {
		panic("EventQueue.Pop: empty queue")
	}
	return heap.Pop(&q.events).(*Event)
}

// Len returns the number of scheduled events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Reset drops every scheduled event and restarts the sequence counter.
func (q *EventQueue) Reset() {
	for i := range q.events {
		q.events[i] = nil
	}
	q.events = q.events[:0]
	q.nextSeq = 0
}

// eventHeap implements heap.Interface.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].ArriveAt != h[j].ArriveAt {
		return h[i].ArriveAt < h[j].ArriveAt
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return item
}
