package analyzer

import "strings"

// Cycle is a closed import chain [m0, m1, ..., mk-1, m0]. The
// lexicographically smallest module is at position 0.
type Cycle []string

// Len returns the number of distinct modules in the cycle.
func (c Cycle) Len() int {
	if len(c) == 0 {
		return 0
	}
	return len(c) - 1
}

// Modules returns the cycle without its closing repeat.
func (c Cycle) Modules() []string {
	if len(c) == 0 {
		return nil
	}
	return c[:len(c)-1]
}

// Edges returns each from -> to pair along the cycle.
func (c Cycle) Edges() [][2]string {
	edges := make([][2]string, 0, c.Len())
	for i := 0; i+1 < len(c); i++ {
		edges = append(edges, [2]string{c[i], c[i+1]})
	}
	return edges
}

// String renders "a -> b -> a".
func (c Cycle) String() string {
	return strings.Join(c, " -> ")
}

// dfsFrame is one level of the explicit DFS stack.
type dfsFrame struct {
	node      string
	neighbors []string
	next      int
}

// FindCycles reports import cycles found by a depth-first search that
// starts from every node in ascending order and follows neighbors in
// ascending order. A fully explored node is never re-entered, so this finds
// at least one cycle per strongly connected component that has one, not
// every simple cycle. Cycles are reported in discovery order; identical
// rotated cycles are reported once.
//
// The search keeps its own stack and does not recurse, so deep import
// chains cannot exhaust the goroutine stack.
func FindCycles(g Graph) []Cycle {
	var (
		cycles  = make([]Cycle, 0)
		seen    = make(map[string]bool)
		visited = make(map[string]bool)
		onStack = make(map[string]int) // node -> index in path
		path    []string
		stack   []*dfsFrame
	)

	push := func(node string) {
		visited[node] = true
		onStack[node] = len(path)
		path = append(path, node)
		stack = append(stack, &dfsFrame{node: node, neighbors: g.Neighbors(node)})
	}

	for _, start := range g.Nodes() {
		if visited[start] {
			continue
		}
		push(start)

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.next == len(top.neighbors) {
				delete(onStack, top.node)
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
				continue
			}

			next := top.neighbors[top.next]
			top.next++

			if pos, ok := onStack[next]; ok {
				c := canonical(path[pos:])
				key := strings.Join(c, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, c)
				}
				continue
			}
			if !visited[next] {
				push(next)
			}
		}
	}

	return cycles
}

// canonical rotates members so the smallest identifier comes first and
// closes the cycle by repeating it.
func canonical(members []string) Cycle {
	minIdx := 0
	for i, m := range members {
		if m < members[minIdx] {
			minIdx = i
		}
	}

	c := make(Cycle, 0, len(members)+1)
	c = append(c, members[minIdx:]...)
	c = append(c, members[:minIdx]...)
	return append(c, c[0])
}

// CycleEdges returns the set of edges that lie on any of cycles.
func CycleEdges(cycles []Cycle) map[[2]string]bool {
	edges := make(map[[2]string]bool)
	for _, c := range cycles {
		for _, e := range c.Edges() {
			edges[e] = true
		}
	}
	return edges
}
