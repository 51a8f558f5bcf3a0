package sim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridTopology(t *testing.T, rows, cols int) *Topology {
	t.Helper()
	links := make([][]int, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := r*cols + c
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
	topo, err := NewTopology(links, nil)
	require.NoError(t, err)
	return topo
}

func TestRenderGrid_ShowsQueuesAndLinks(t *testing.T) {
	// GIVEN a 2x2 grid with two packets on the link 0->1 and one queued at 0
	topo := gridTopology(t, 2, 2)
	cfg := DefaultConfig()
	cfg.Bandwidth = 2
	net := newTestNetwork(t, topo, cfg, &stubPolicy{choose: func(int, int, []bool) (int, bool) { return 1, true }})
	net.Inject(net.NewPacket(0, 1), net.NewPacket(0, 1), net.NewPacket(0, 1))
	net.Step(0.5)

	// WHEN rendered
	var buf bytes.Buffer
	require.NoError(t, RenderGrid(&buf, net, 2, 2))

	// THEN the header, node boxes and counts appear
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Time: 0.5  In flight: 2\n"))
	assert.Contains(t, out, "│No. 0│")
	assert.Contains(t, out, "│No. 3│")
	assert.Contains(t, out, "│No. 0│  2├ │No. 1│")
	assert.Contains(t, out, "│    1│")
	assert.True(t, strings.HasSuffix(out, "==\n"))
}

func TestRenderGrid_ShapeMismatch_Error(t *testing.T) {
	topo := gridTopology(t, 2, 2)
	net := newTestNetwork(t, topo, DefaultConfig(), &stubPolicy{choose: towardDest(topo)})
	assert.Error(t, RenderGrid(&bytes.Buffer{}, net, 3, 3))
	assert.Error(t, RenderGrid(&bytes.Buffer{}, net, 0, 4))
}
