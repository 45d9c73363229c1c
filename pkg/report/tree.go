package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// DefaultTreeDepth is the default depth limit of WriteTree.
const DefaultTreeDepth = 5

// TreeOptions configures WriteTree.
type TreeOptions struct {
	// Roots to print from. Empty means every module nothing imports, or the
	// first module when every module is imported.
	Roots []string
	// Depth below which expansion stops. Zero uses DefaultTreeDepth.
	Depth int
}

// WriteTree prints the dependency tree under each root:
//
//	└── app.main
//	    ├── app.models
//	    └── app.views
//	        └── app.models
//
// A module already on the current path is marked "(cycle)" and not
// expanded. A module already expanded elsewhere is listed without children.
func WriteTree(w io.Writer, g Graph, opts TreeOptions) error {
	depth := opts.Depth
	if depth <= 0 {
		depth = DefaultTreeDepth
	}
	roots := opts.Roots
	if len(roots) == 0 {
		roots = defaultRoots(g)
	}

	p := &treePrinter{
		w:       bufio.NewWriter(w),
		g:       g,
		limit:   depth,
		onPath:  make(map[string]bool),
		printed: make(map[string]bool),
	}
	for i, root := range roots {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		p.node(root, "", true, 0)
	}
	return p.w.Flush()
}

func defaultRoots(g Graph) []string {
	nodes := g.Nodes()
	in := make(map[string]int, len(nodes))
	for _, n := range nodes {
		for _, m := range g.Neighbors(n) {
			in[m]++
		}
	}

	roots := make([]string, 0)
	for _, n := range nodes {
		if in[n] == 0 {
			roots = append(roots, n)
		}
	}
	if len(roots) == 0 && len(nodes) > 0 {
		return nodes[:1]
	}
	sort.Strings(roots)
	return roots
}

type treePrinter struct {
	w       *bufio.Writer
	g       Graph
	limit   int
	onPath  map[string]bool
	printed map[string]bool
}

// node prints id recursively. Recursion depth is bounded by the depth limit.
func (p *treePrinter) node(id, prefix string, last bool, depth int) {
	if depth > p.limit {
		fmt.Fprintf(p.w, "%s... (depth limit reached)\n", prefix)
		return
	}

	connector := "├── "
	if last {
		connector = "└── "
	}
	cycle := p.onPath[id]
	marker := ""
	if cycle {
		marker = " (cycle)"
	}
	fmt.Fprintf(p.w, "%s%s%s%s\n", prefix, connector, id, marker)

	if cycle || p.printed[id] {
		return
	}
	p.printed[id] = true
	p.onPath[id] = true

	childPrefix := prefix + "│   "
	if last {
		childPrefix = prefix + "    "
	}
	neighbors := p.g.Neighbors(id)
	for i, n := range neighbors {
		p.node(n, childPrefix, i == len(neighbors)-1, depth+1)
	}

	delete(p.onPath, id)
}
