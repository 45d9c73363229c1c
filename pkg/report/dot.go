package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Graph is the read-only view renderers need.
type Graph interface {
	Nodes() []string
	Neighbors(id string) []string
}

// DOTOptions tunes DOT output.
type DOTOptions struct {
	// Highlight marks edges, e.g. those on import cycles, in red.
	Highlight map[[2]string]bool
}

// WriteDOT renders g as a Graphviz digraph. Modules without any edge are
// emitted as bare nodes so they remain visible.
func WriteDOT(w io.Writer, g Graph, opts DOTOptions) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph {")

	in := make(map[string]bool)
	for _, n := range g.Nodes() {
		for _, m := range g.Neighbors(n) {
			in[m] = true
		}
	}

	for _, n := range g.Nodes() {
		neighbors := g.Neighbors(n)
		if len(neighbors) == 0 && !in[n] {
			fmt.Fprintf(bw, "  %s;\n", quote(n))
			continue
		}
		for _, m := range neighbors {
			attr := ""
			if opts.Highlight[[2]string{n, m}] {
				attr = " [color=red]"
			}
			fmt.Fprintf(bw, "  %s -> %s%s;\n", quote(n), quote(m), attr)
		}
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func quote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
}
