package policy

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/routesim/routesim/sim"
)

func TestQroute_StoreLoad_RoundTrip(t *testing.T) {
	topo := grid(t, 3, 3)
	trained := NewQroute(topo, 0, 1, newRNG(1))
	trainRandomTraffic(t, topo, trained, 200)

	var buf bytes.Buffer
	require.NoError(t, trained.Store(&buf))

	restored := NewQroute(topo, 0, 1, newRNG(1))
	require.NoError(t, restored.Load(&buf))

	for x := 0; x < topo.NodeCount(); x++ {
		for d := 0; d < topo.NodeCount(); d++ {
			for _, z := range topo.Neighbors(x) {
				assert.Equal(t, trained.Q(x, d, z), restored.Q(x, d, z))
			}
		}
	}

	// Same tables and same tie-break seed choose the same hops.
	a := NewQroute(topo, 0, 1, newRNG(9))
	b := NewQroute(topo, 0, 1, newRNG(9))
	buf.Reset()
	require.NoError(t, trained.Store(&buf))
	snap := buf.Bytes()
	require.NoError(t, a.Load(bytes.NewReader(snap)))
	require.NoError(t, b.Load(bytes.NewReader(snap)))
	for x := 0; x < topo.NodeCount(); x++ {
		for d := 0; d < topo.NodeCount(); d++ {
			if x == d {
				continue
			}
			na, _ := a.Choose(x, d, nil)
			nb, _ := b.Choose(x, d, nil)
			assert.Equal(t, na, nb)
		}
	}
}

func TestCDRQ_StoreLoad_PersistsConfidence(t *testing.T) {
	topo := grid(t, 3, 3)
	trained := NewCDRQ(topo, 0, 1, 0, newRNG(1))
	trainRandomTraffic(t, topo, trained, 200)

	var buf bytes.Buffer
	require.NoError(t, trained.Store(&buf))

	var snap Snapshot
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &snap))
	assert.Equal(t, SnapshotVersion, snap.Version)
	assert.Equal(t, NameCDRQ, snap.Policy)
	assert.Len(t, snap.Confidence, topo.NodeCount())

	restored := NewCDRQ(topo, 0, 1, 0, newRNG(1))
	require.NoError(t, restored.Load(&buf))
	for x := 0; x < topo.NodeCount(); x++ {
		for d := 0; d < topo.NodeCount(); d++ {
			for _, z := range topo.Neighbors(x) {
				assert.Equal(t, trained.Confidence(x, d, z), restored.Confidence(x, d, z))
				assert.Equal(t, trained.Q(x, d, z), restored.Q(x, d, z))
			}
		}
	}
}

func TestSaveOpen_Compressed(t *testing.T) {
	topo := grid(t, 2, 3)
	trained := NewQroute(topo, -1, 1, newRNG(1))
	trainRandomTraffic(t, topo, trained, 50)

	dir := t.TempDir()
	for _, name := range []string{"q.yaml", "q.yaml.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, trained), name)

		restored := NewQroute(topo, -1, 1, newRNG(1))
		require.NoError(t, Open(path, restored), name)
		assert.Equal(t, trained.Q(0, 5, 1), restored.Q(0, 5, 1), name)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	err := Open(filepath.Join(t.TempDir(), "none.zst"), NewQroute(grid(t, 2, 2), 0, 1, newRNG(1)))
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	topo := grid(t, 2, 2)
	store := func(s Snapshotter) string {
		var buf bytes.Buffer
		require.NoError(t, s.Store(&buf))
		return buf.String()
	}
	qSnap := store(NewQroute(topo, 0, 1, newRNG(1)))
	otherTopo := store(NewQroute(line(t, 4), 0, 1, newRNG(1)))

	tests := []struct {
		name   string
		target Snapshotter
		input  string
		want   error
	}{
		{
			name:   "version",
			target: NewQroute(topo, 0, 1, newRNG(1)),
			input:  strings.Replace(qSnap, "version: 1", "version: 99", 1),
			want:   ErrSnapshotVersion,
		},
		{
			name:   "policy kind",
			target: NewCDRQ(topo, 0, 1, 0, newRNG(1)),
			input:  qSnap,
			want:   ErrSnapshotMismatch,
		},
		{
			name:   "topology",
			target: NewQroute(topo, 0, 1, newRNG(1)),
			input:  otherTopo,
			want:   ErrSnapshotMismatch,
		},
		{
			name:   "table shape",
			target: NewQroute(topo, 0, 1, newRNG(1)),
			input:  "version: 1\npolicy: qroute\nlinks: [[1, 2], [0, 3], [0, 3], [1, 2]]\nqtable: [[[0]]]\n",
			want:   ErrSnapshotMismatch,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.target.Load(strings.NewReader(tc.input))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoad_GarbageInput(t *testing.T) {
	err := NewQroute(grid(t, 2, 2), 0, 1, newRNG(1)).Load(strings.NewReader("{{not yaml"))
	assert.Error(t, err)
}

func TestBaselines_AreNotSnapshotters(t *testing.T) {
	var p sim.Policy = NewShortest(grid(t, 2, 2), newRNG(1))
	_, ok := p.(Snapshotter)
	assert.False(t, ok)
}
