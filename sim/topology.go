package sim

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrUnknownNode is returned when a link references a node that does not exist.
	ErrUnknownNode = errors.New("unknown node")
	// ErrAsymmetricLink is returned when a link is present in only one endpoint's neighbor list.
	ErrAsymmetricLink = errors.New("asymmetric link")
	// ErrInvalidLink is returned for self-links and duplicate links.
	ErrInvalidLink = errors.New("invalid link")
)

// Topology is the static link structure of a network.
// Node IDs are dense (0..N-1). Neighbor order is fixed at construction and
// defines the neighbor index used by policy tables.
type Topology struct {
	links     [][]int
	names     []string
	actionIdx []map[int]int // actionIdx[node][neighbor] -> neighbor index
}

// NewTopology validates links and builds a Topology.
// links[n] is the ordered neighbor list of node n; names may be nil, in which
// case nodes are named by their IDs. Every invalid reference is reported.
func NewTopology(links [][]int, names []string) (*Topology, error) {
	n := len(links)
	if names != nil && len(names) != n {
		return nil, fmt.Errorf("topology: %d names for %d nodes", len(names), n)
	}
	var errs error
	actionIdx := make([]map[int]int, n)
	for node, neighbors := range links {
		actionIdx[node] = make(map[int]int, len(neighbors))
		for idx, nb := range neighbors {
			switch {
			case nb < 0 || nb >= n:
				errs = multierr.Append(errs, fmt.Errorf("node %d links to %d: %w", node, nb, ErrUnknownNode))
				continue
			case nb == node:
				errs = multierr.Append(errs, fmt.Errorf("node %d links to itself: %w", node, ErrInvalidLink))
				continue
			}
			if _, dup := actionIdx[node][nb]; dup {
				errs = multierr.Append(errs, fmt.Errorf("node %d lists neighbor %d twice: %w", node, nb, ErrInvalidLink))
				continue
			}
			actionIdx[node][nb] = idx
		}
	}
	for node, neighbors := range links {
		for _, nb := range neighbors {
			if nb < 0 || nb >= n || nb == node {
				continue
			}
			if !contains(links[nb], node) {
				errs = multierr.Append(errs, fmt.Errorf("link %d->%d has no reverse: %w", node, nb, ErrAsymmetricLink))
			}
		}
	}
	if errs != nil {
		return nil, errs
	}

	if names == nil {
		names = make([]string, n)
		for i := range names {
			names[i] = fmt.Sprint(i)
		}
	}
	copied := make([][]int, n)
	for i, neighbors := range links {
		copied[i] = append([]int(nil), neighbors...)
	}
	return &Topology{links: copied, names: append([]string(nil), names...), actionIdx: actionIdx}, nil
}

// NodeCount returns the number of nodes.
func (t *Topology) NodeCount() int {
	return len(t.links)
}

// Neighbors returns the ordered neighbor list of node.
// The returned slice MUST NOT be modified.
func (t *Topology) Neighbors(node int) []int {
	return t.links[node]
}

// Degree returns the number of neighbors of node.
func (t *Topology) Degree(node int) int {
	return len(t.links[node])
}

// ActionIndex returns the neighbor index of neighbor in node's neighbor list.
func (t *Topology) ActionIndex(node, neighbor int) (int, bool) {
	if node < 0 || node >= len(t.actionIdx) {
		return 0, false
	}
	idx, ok := t.actionIdx[node][neighbor]
	return idx, ok
}

// Name returns the external identifier of node.
func (t *Topology) Name(node int) string {
	return t.names[node]
}

// Links returns a deep copy of the neighbor lists.
func (t *Topology) Links() [][]int {
	out := make([][]int, len(t.links))
	for i, neighbors := range t.links {
		out[i] = append([]int(nil), neighbors...)
	}
	return out
}

// LinkCount returns the number of undirected links.
func (t *Topology) LinkCount() int {
	total := 0
	for _, neighbors := range t.links {
		total += len(neighbors)
	}
	return total / 2
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
