package resolver

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Catalog lists indexed modules for suggestions.
type Catalog interface {
	Modules() []string
	HasTopLevel(name string) bool
}

// Suggest proposes the indexed module closest to an unresolved absolute
// name. Only names whose first segment belongs to the project are
// considered, so third-party imports never get suggestions. The best
// candidate must be within maxDistance edits; ties go to the lexically
// smallest identifier.
func Suggest(name string, catalog Catalog, maxDistance int) (string, bool) {
	if name == "" || maxDistance <= 0 {
		return "", false
	}
	top := strings.SplitN(name, ".", 2)[0]
	if !catalog.HasTopLevel(top) {
		return "", false
	}

	best, bestDist := "", maxDistance+1
	for _, id := range catalog.Modules() {
		if id == name {
			return "", false
		}
		d := levenshtein.ComputeDistance(name, id)
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist = id, d
		}
	}
	if best == "" || bestDist > maxDistance {
		return "", false
	}
	return best, true
}
