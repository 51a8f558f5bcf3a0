// Package topology builds sim.Topology values from network description files
// and from generated shapes.
//
// The file format is line oriented. Each record is whitespace separated:
//
//	1000 <name>          declares a node; IDs are assigned in declaration order
//	2000 <name> <name>   declares an undirected link between two declared nodes
//
// Extra fields after a record are ignored. Blank lines and lines starting with
// '#' are skipped.
package topology

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/routesim/routesim/sim"
)

// Record tags.
const (
	TagNode = "1000"
	TagLink = "2000"
)

// ErrMalformed is returned for records that cannot be parsed.
var ErrMalformed = errors.New("malformed record")

// Parsed is a parsed topology together with the projection from external
// node names to dense node IDs.
type Parsed struct {
	Topology   *sim.Topology
	Projection map[string]int
}

// Parse reads a topology description. Every malformed record and invalid
// reference is reported, each with its line number.
func Parse(r io.Reader) (*Parsed, error) {
	projection := make(map[string]int)
	var names []string
	var links [][]int
	var errs error

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case TagNode:
			if len(fields) < 2 {
				errs = multierr.Append(errs, fmt.Errorf("line %d: node record needs a name: %w", lineNo, ErrMalformed))
				continue
			}
			name := fields[1]
			if _, dup := projection[name]; dup {
				errs = multierr.Append(errs, fmt.Errorf("line %d: node %q declared twice: %w", lineNo, name, ErrMalformed))
				continue
			}
			projection[name] = len(names)
			names = append(names, name)
			links = append(links, nil)
		case TagLink:
			if len(fields) < 3 {
				errs = multierr.Append(errs, fmt.Errorf("line %d: link record needs two node names: %w", lineNo, ErrMalformed))
				continue
			}
			a, okA := projection[fields[1]]
			b, okB := projection[fields[2]]
			if !okA {
				errs = multierr.Append(errs, fmt.Errorf("line %d: link references %q: %w", lineNo, fields[1], sim.ErrUnknownNode))
			}
			if !okB {
				errs = multierr.Append(errs, fmt.Errorf("line %d: link references %q: %w", lineNo, fields[2], sim.ErrUnknownNode))
			}
			if !okA || !okB {
				continue
			}
			if a == b {
				errs = multierr.Append(errs, fmt.Errorf("line %d: self-link on %q: %w", lineNo, fields[1], sim.ErrInvalidLink))
				continue
			}
			if containsInt(links[a], b) {
				errs = multierr.Append(errs, fmt.Errorf("line %d: duplicate link %q-%q: %w", lineNo, fields[1], fields[2], sim.ErrInvalidLink))
				continue
			}
			links[a] = append(links[a], b)
			links[b] = append(links[b], a)
		default:
			errs = multierr.Append(errs, fmt.Errorf("line %d: unknown record tag %q: %w", lineNo, fields[0], ErrMalformed))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading topology: %w", err)
	}
	if errs != nil {
		return nil, errs
	}

	topo, err := sim.NewTopology(links, names)
	if err != nil {
		return nil, err
	}
	return &Parsed{Topology: topo, Projection: projection}, nil
}

// Load parses the topology file at path.
func Load(path string) (*Parsed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening topology: %w", err)
	}
	defer f.Close()
	parsed, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return parsed, nil
}

// Grid builds a rows×cols mesh with node ID row*cols+col, each node linked to
// its horizontal and vertical neighbors. Neighbor order is up, left, right, down.
func Grid(rows, cols int) (*sim.Topology, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid: dimensions must be positive, got %dx%d", rows, cols)
	}
	links := make([][]int, rows*cols)
	names := make([]string, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := r*cols + c
			names[id] = strconv.Itoa(id)
			if r > 0 {
				links[id] = append(links[id], id-cols)
			}
			if c > 0 {
				links[id] = append(links[id], id-1)
			}
			if c < cols-1 {
				links[id] = append(links[id], id+1)
			}
			if r < rows-1 {
				links[id] = append(links[id], id+cols)
			}
		}
	}
	return sim.NewTopology(links, names)
}

// Write emits topo in the record format accepted by Parse.
func Write(w io.Writer, topo *sim.Topology) error {
	bw := bufio.NewWriter(w)
	for id := 0; id < topo.NodeCount(); id++ {
		fmt.Fprintf(bw, "%s %s\n", TagNode, topo.Name(id))
	}
	for a := 0; a < topo.NodeCount(); a++ {
		for _, b := range topo.Neighbors(a) {
			if a < b {
				fmt.Fprintf(bw, "%s %s %s\n", TagLink, topo.Name(a), topo.Name(b))
			}
		}
	}
	return bw.Flush()
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
