// Package resolver maps import specs to canonical module identifiers.
package resolver

import (
	"strings"

	"github.com/simonhull/heron/pkg/imports"
)

// Index is the subset of the module index the resolver consults.
type Index interface {
	Contains(id string) bool
	ModuleFor(path string) (string, bool)
}

// Resolve returns the indexed module spec refers to. A false result means
// the import is unresolved; that is an expected outcome for third-party and
// standard-library imports, not an error.
//
// Absolute and dynamic specs resolve to their name when it is indexed.
// A relative spec with d dots drops the last d segments of the importing
// module's identifier and appends the spec's name, if any.
func Resolve(spec imports.Spec, idx Index) (string, bool) {
	switch kind := spec.Kind.(type) {
	case imports.Absolute, imports.Dynamic:
		return lookup(spec.Name, idx)
	case imports.Relative:
		return resolveRelative(kind.Dots, spec, idx)
	default:
		return "", false
	}
}

func resolveRelative(dots int, spec imports.Spec, idx Index) (string, bool) {
	if dots < 1 {
		return "", false
	}
	current, ok := idx.ModuleFor(spec.File)
	if !ok {
		return "", false
	}

	segments := strings.Split(current, ".")
	if dots > len(segments) {
		return "", false
	}
	parent := segments[:len(segments)-dots]

	target := strings.Join(parent, ".")
	if spec.Name != "" {
		if target == "" {
			target = spec.Name
		} else {
			target += "." + spec.Name
		}
	}
	return lookup(target, idx)
}

func lookup(id string, idx Index) (string, bool) {
	if id == "" || !idx.Contains(id) {
		return "", false
	}
	return id, true
}

// Verified resolves edges against the module index; unresolved imports
// produce no edge.
type Verified struct {
	Index Index
}

// Target implements graph.EdgeStrategy.
func (v Verified) Target(_ string, spec imports.Spec) (string, bool) {
	return Resolve(spec, v.Index)
}

// Raw uses the import text as written ("..models", "os") as the edge
// target without consulting any index.
type Raw struct{}

// Target implements graph.EdgeStrategy.
func (Raw) Target(_ string, spec imports.Spec) (string, bool) {
	text := spec.Text()
	return text, text != ""
}
