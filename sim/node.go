package sim

import (
	"fmt"
	"maps"

	"github.com/sirupsen/logrus"
)

// Node is a routing point with a local packet queue and per-neighbor in-flight
// counters. inFlight is indexed like Topology.Neighbors(ID) and each entry stays
// within [0, Config.Bandwidth].
type Node struct {
	ID       int
	queue    PacketQueue
	inFlight []int
	net      *Network
}

func newNode(id int, net *Network) *Node {
	return &Node{
		ID:       id,
		inFlight: make([]int, net.topo.Degree(id)),
		net:      net,
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("Node<%d, queue: %v, in-flight: %v>", n.ID, &n.queue, n.inFlight)
}

func (n *Node) isAvailable(idx int) bool {
	return n.inFlight[idx] < n.net.cfg.Bandwidth
}

func (n *Node) reset() {
	n.queue.Clear()
	for i := range n.inFlight {
		n.inFlight[i] = 0
	}
}

// receive either terminates p at its destination or queues it for forwarding.
func (n *Node) receive(p *Packet) {
	logrus.Debugf("[t %g] node %d receives %v", n.net.clock, n.ID, p)
	if p.dest == n.ID {
		n.net.endPacket(p)
		return
	}
	p.enqueuedAt = n.net.clock
	n.queue.Enqueue(p)
	n.net.policy.OnArrival(n.ID, p.dest)
}

// send forwards as many queued packets as link capacity and the send mode allow.
//
// The queue is scanned in order. In always_best mode the policy picks its
// unconstrained best neighbor and a packet whose chosen link is saturated is
// left in place. In always_fifo mode the policy is restricted to available
// links. Hybrid mode scans like always_best and, if packets remain when the
// scan reaches the end, makes a single always_fifo pass from the front.
// The round ends when the queue is exhausted, every outgoing link is full, or
// the policy abstains.
func (n *Node) send() []Reward {
	mode := n.net.cfg.SendMode
	if !validSendModes[mode] {
		logrus.Debugf("[t %g] node %d: unknown send mode %q, no sends this round", n.net.clock, n.ID, mode)
		return nil
	}

	neighbors := n.net.topo.Neighbors(n.ID)
	available := make([]bool, len(neighbors))
	free := 0
	for idx := range neighbors {
		available[idx] = n.isAvailable(idx)
		if available[idx] {
			free++
		}
	}

	var rewards []Reward
	retried := false
	i := 0
	for free > 0 {
		if i >= n.queue.Len() {
			if mode == SendHybrid && !retried && n.queue.Len() > 0 {
				retried = true
				i = 0
				continue
			}
			break
		}

		p := n.queue.At(i)
		constrained := mode == SendAlwaysFIFO || (mode == SendHybrid && retried)
		var mask []bool
		if constrained {
			mask = available
		}
		next, ok := n.net.policy.Choose(n.ID, p.dest, mask)
		if !ok {
			break
		}
		idx, adjacent := n.net.topo.ActionIndex(n.ID, next)
		if !adjacent {
			panic(fmt.Sprintf("Node.send: policy chose %d, which is not a neighbor of node %d", next, n.ID))
		}
		if !available[idx] {
			if constrained {
				panic(fmt.Sprintf("Node.send: policy chose saturated link %d->%d under an availability mask", n.ID, next))
			}
			i++
			continue
		}

		n.queue.RemoveAt(i)
		n.transmit(p, idx)
		n.net.policy.OnSend(n.ID, p.dest)
		if !n.isAvailable(idx) {
			available[idx] = false
			free--
		}
		rewards = append(rewards, n.buildReward(p, next))
	}
	return rewards
}

// transmit puts p on the link to neighbor index idx and schedules its arrival.
func (n *Node) transmit(p *Packet, idx int) {
	next := n.net.topo.Neighbors(n.ID)[idx]
	logrus.Debugf("[t %g] node %d sends %v to %d", n.net.clock, n.ID, p, next)
	p.Hops++
	p.TransDelay = n.net.cfg.TransDelay
	n.inFlight[idx]++
	n.net.events.Push(&Event{
		Packet:   p,
		From:     n.ID,
		To:       next,
		ArriveAt: n.net.clock + p.TransDelay,
	})
}

// buildReward merges the policy's lookahead values with the delays observed by
// the environment. Dual mode substitutes queue occupancy at both endpoints for
// elapsed time.
func (n *Node) buildReward(p *Packet, action int) Reward {
	info := make(map[string]float64)
	maps.Copy(info, n.net.policy.Info(n.ID, action, p))
	if n.net.policy.Mode() == ModeDual {
		info[InfoQueueDelay] = float64(max(1, n.net.nodes[action].queue.Len()))
		info[InfoTransDelay] = 0
		info[InfoQueueDelayBack] = float64(max(1, n.queue.Len()))
		info[InfoTransDelayBack] = 0
	} else {
		info[InfoQueueDelay] = n.net.clock - p.enqueuedAt
		info[InfoTransDelay] = 1
	}
	return Reward{
		Source: n.ID,
		Dest:   p.dest,
		Action: action,
		Packet: p,
		Info:   info,
	}
}
