package sim

import (
	"fmt"
	"io"
	"strings"
)

// RenderGrid draws a rows×cols grid network whose node IDs are laid out row by
// row (ID = row*cols + col). Each box shows the node ID and its queue length;
// link labels show the in-flight count in each direction. The header carries
// the clock and the total number of packets in transit.
func RenderGrid(w io.Writer, net *Network, rows, cols int) error {
	if rows <= 0 || cols <= 0 || rows*cols != net.NodeCount() {
		return fmt.Errorf("render: %dx%d grid does not match %d nodes", rows, cols, net.NodeCount())
	}
	linked := func(a, b int) bool {
		_, ok := net.topo.ActionIndex(a, b)
		return ok
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Time: %g  In flight: %d\n", net.clock, net.PendingEvents())
	for i := 0; i < rows; i++ {
		sb.WriteString(strings.Repeat("┌─────┐     ", cols) + "\n")
		for j := 0; j < cols; j++ {
			id := i*cols + j
			fmt.Fprintf(&sb, "│No.%2d│", id)
			if j == cols-1 {
				break
			}
			if linked(id, id+1) {
				fmt.Fprintf(&sb, " %2d├ ", net.InFlight(id, id+1))
			} else {
				sb.WriteString("     ")
			}
		}
		sb.WriteString("\n")
		for j := 0; j < cols; j++ {
			id := i*cols + j
			fmt.Fprintf(&sb, "│%5d│", net.QueueLen(id))
			if j == cols-1 {
				break
			}
			if linked(id+1, id) {
				fmt.Fprintf(&sb, " ┤%-2d ", net.InFlight(id+1, id))
			} else {
				sb.WriteString("     ")
			}
		}
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("└─────┘     ", cols) + "\n")
		if i == rows-1 {
			sb.WriteString(strings.Repeat("=", cols) + "\n")
			break
		}
		for j := 0; j < cols; j++ {
			id := i*cols + j
			if linked(id, id+cols) {
				fmt.Fprintf(&sb, "%2d┴ ┬%-2d     ", net.InFlight(id+cols, id), net.InFlight(id, id+cols))
			} else {
				sb.WriteString(strings.Repeat(" ", 12))
			}
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
