package analyzer

import "sort"

// FindDead returns the modules nothing imports, excluding entry points, in
// ascending order. Self-imports count as incoming edges.
func FindDead(g Graph, entryPoints []string) []string {
	entry := make(map[string]bool, len(entryPoints))
	for _, e := range entryPoints {
		entry[e] = true
	}

	in := inDegrees(g)
	dead := make([]string, 0)
	for _, id := range g.Nodes() {
		if in[id] == 0 && !entry[id] {
			dead = append(dead, id)
		}
	}
	sort.Strings(dead)
	return dead
}

func inDegrees(g Graph) map[string]int {
	nodes := g.Nodes()
	in := make(map[string]int, len(nodes))
	for _, id := range nodes {
		for _, target := range g.Neighbors(id) {
			in[target]++
		}
	}
	return in
}
