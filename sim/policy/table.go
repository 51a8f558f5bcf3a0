package policy

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"

	"github.com/routesim/routesim/sim"
)

// Tie tolerances for closeTie, matching numpy's isclose defaults.
const (
	tieAbsTol = 1e-8
	tieRelTol = 1e-5
)

// tieRule reports whether v ties with the row maximum best.
type tieRule func(v, best float64) bool

// exactTie ties only equal values.
func exactTie(v, best float64) bool { return v == best }

// closeTie ties values within tieAbsTol or tieRelTol of each other.
func closeTie(v, best float64) bool {
	return scalar.EqualWithinAbsOrRel(v, best, tieAbsTol, tieRelTol)
}

// tables holds one dense matrix per node: rows are destinations, columns are
// neighbor indices in Topology.Neighbors order.
type tables []*mat.Dense

func newTables(topo *sim.Topology, fill float64) tables {
	n := topo.NodeCount()
	t := make(tables, n)
	for node := range t {
		data := make([]float64, n*topo.Degree(node))
		for i := range data {
			data[i] = fill
		}
		t[node] = newDense(n, topo.Degree(node), data)
	}
	return t
}

// newDense tolerates zero-degree nodes, which mat.NewDense rejects.
func newDense(r, c int, data []float64) *mat.Dense {
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(r, c, data)
}

// row returns the live row of node's table for dest.
func (t tables) row(node, dest int) []float64 {
	m := t[node]
	if m.IsEmpty() {
		return nil
	}
	return m.RawRowView(dest)
}

func (t tables) at(node, dest, idx int) float64 {
	return t[node].At(dest, idx)
}

func (t tables) set(node, dest, idx int, v float64) {
	t[node].Set(dest, idx, v)
}

// export copies the tables into nested slices: [node][dest][neighbor index].
func (t tables) export() [][][]float64 {
	out := make([][][]float64, len(t))
	for node, m := range t {
		if m.IsEmpty() {
			out[node] = [][]float64{}
			continue
		}
		r, _ := m.Dims()
		out[node] = make([][]float64, r)
		for dest := 0; dest < r; dest++ {
			out[node][dest] = append([]float64(nil), m.RawRowView(dest)...)
		}
	}
	return out
}

// bestIndex returns a uniformly random index among the maximal entries of row,
// restricted to available ones when available is non-nil. Entries within the
// maximum under tie count as maximal. ok is false when no entry is
// eligible.
func bestIndex(row []float64, available []bool, tie tieRule, rng *rand.Rand) (idx int, best float64, ok bool) {
	best = math.Inf(-1)
	for i, v := range row {
		if available != nil && !available[i] {
			continue
		}
		if !ok || v > best {
			best = v
			ok = true
		}
	}
	if !ok {
		return 0, 0, false
	}
	tied := make([]int, 0, len(row))
	for i, v := range row {
		if available != nil && !available[i] {
			continue
		}
		if tie(v, best) {
			tied = append(tied, i)
		}
	}
	return tied[rng.Intn(len(tied))], best, true
}

// rowMax returns the maximum of row, 0 for an empty row.
func rowMax(row []float64) float64 {
	if len(row) == 0 {
		return 0
	}
	return floats.Max(row)
}
