package policy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// SnapshotVersion is the schema version written by Store.
const SnapshotVersion = 1

var (
	// ErrSnapshotVersion is returned when a snapshot has an unsupported schema version.
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
	// ErrSnapshotMismatch is returned when a snapshot was taken from a different
	// policy kind or topology than the one it is loaded into.
	ErrSnapshotMismatch = errors.New("snapshot does not match policy")
)

// Snapshot is the persisted learned state of a table-driven policy.
// Tables are indexed [node][dest][neighbor index], with neighbor indices in
// Links order.
type Snapshot struct {
	Version    int           `yaml:"version"`
	Policy     string        `yaml:"policy"`
	Links      [][]int       `yaml:"links"`
	QTable     [][][]float64 `yaml:"qtable"`
	Confidence [][][]float64 `yaml:"confidence,omitempty"`
}

// Snapshotter is implemented by policies whose learned state can be persisted.
type Snapshotter interface {
	Store(w io.Writer) error
	Load(r io.Reader) error
}

// Store writes the policy's links and Q table.
func (p *Qroute) Store(w io.Writer) error {
	return writeSnapshot(w, p.snapshot(NameQroute))
}

// Load replaces the Q table with one read from r. The snapshot must come from
// a qroute policy over the same topology.
func (p *Qroute) Load(r io.Reader) error {
	snap, err := p.readSnapshot(r, NameQroute)
	if err != nil {
		return err
	}
	p.q = tablesFrom(snap.QTable)
	return nil
}

// Store writes the policy's links, Q table and confidence table.
func (p *CDRQ) Store(w io.Writer) error {
	snap := p.snapshot(NameCDRQ)
	snap.Confidence = p.conf.export()
	return writeSnapshot(w, snap)
}

// Load replaces the Q and confidence tables with ones read from r. The
// snapshot must come from a cdrq policy over the same topology.
func (p *CDRQ) Load(r io.Reader) error {
	snap, err := p.readSnapshot(r, NameCDRQ)
	if err != nil {
		return err
	}
	if err := p.checkShape(snap.Confidence); err != nil {
		return fmt.Errorf("confidence: %w", err)
	}
	p.q = tablesFrom(snap.QTable)
	p.conf = tablesFrom(snap.Confidence)
	for _, flags := range p.touched {
		clear(flags)
	}
	return nil
}

func (p *Qroute) snapshot(kind string) *Snapshot {
	return &Snapshot{
		Version: SnapshotVersion,
		Policy:  kind,
		Links:   p.topo.Links(),
		QTable:  p.q.export(),
	}
}

func (p *Qroute) readSnapshot(r io.Reader, kind string) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	if snap.Policy != kind {
		return nil, fmt.Errorf("%w: snapshot policy %q, want %q", ErrSnapshotMismatch, snap.Policy, kind)
	}
	if !slices.EqualFunc(snap.Links, p.topo.Links(), slices.Equal[[]int]) {
		return nil, fmt.Errorf("%w: topology differs", ErrSnapshotMismatch)
	}
	if err := p.checkShape(snap.QTable); err != nil {
		return nil, fmt.Errorf("qtable: %w", err)
	}
	return &snap, nil
}

func (p *Qroute) checkShape(t [][][]float64) error {
	n := p.topo.NodeCount()
	if len(t) != n {
		return fmt.Errorf("%w: %d node tables, want %d", ErrSnapshotMismatch, len(t), n)
	}
	for node, rows := range t {
		if p.topo.Degree(node) == 0 {
			continue
		}
		if len(rows) != n {
			return fmt.Errorf("%w: node %d has %d rows, want %d", ErrSnapshotMismatch, node, len(rows), n)
		}
		for dest, row := range rows {
			if len(row) != p.topo.Degree(node) {
				return fmt.Errorf("%w: node %d dest %d has %d columns, want %d",
					ErrSnapshotMismatch, node, dest, len(row), p.topo.Degree(node))
			}
		}
	}
	return nil
}

func tablesFrom(t [][][]float64) tables {
	out := make(tables, len(t))
	for node, rows := range t {
		cols := 0
		if len(rows) > 0 {
			cols = len(rows[0])
		}
		data := make([]float64, 0, len(rows)*cols)
		for _, row := range rows {
			data = append(data, row...)
		}
		out[node] = newDense(len(rows), cols, data)
	}
	return out
}

func writeSnapshot(w io.Writer, snap *Snapshot) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return enc.Close()
}

// Save stores s to path. Paths ending in ".zst" are zstd-compressed.
func Save(path string, s Snapshotter) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing snapshot: %w", closeErr)
		}
	}()

	if !strings.HasSuffix(path, ".zst") {
		return s.Store(f)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if err := s.Store(zw); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Open loads s from path. Paths ending in ".zst" are zstd-decompressed.
func Open(path string, s Snapshotter) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return s.Load(f)
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating zstd reader: %w", err)
	}
	defer zr.Close()
	return s.Load(zr)
}
