// Package imports extracts import specifications from Python sources.
package imports

import (
	"fmt"
	"strings"
)

// Kind classifies an import. The set of kinds is closed: Absolute,
// Relative and Dynamic are its only implementations.
type Kind interface {
	isKind()
	String() string
}

// Absolute is a fully qualified import such as "import app.models".
type Absolute struct{}

// Relative is an import anchored at the importing module, e.g.
// "from ..models import User" has Dots == 2.
type Relative struct {
	Dots int
}

// Dynamic is a runtime import with a constant module name, such as
// importlib.import_module("app.plugins").
type Dynamic struct{}

func (Absolute) isKind() {}
func (Relative) isKind() {}
func (Dynamic) isKind()  {}

func (Absolute) String() string   { return "absolute" }
func (r Relative) String() string { return fmt.Sprintf("relative(%d)", r.Dots) }
func (Dynamic) String() string    { return "dynamic" }

// Spec is one import found in a source file.
type Spec struct {
	Kind  Kind
	Name  string   // dotted module name without leading dots; may be empty for relative imports
	Names []string // imported names for from-imports, "*" for wildcards
	File  string   // file containing the import
	Line  int      // 1-based line of the import statement
}

// NewAbsolute returns an absolute import of name.
func NewAbsolute(name, file string, line int) Spec {
	return Spec{Kind: Absolute{}, Name: name, File: file, Line: line}
}

// NewRelative returns a relative import with the given dot count.
func NewRelative(dots int, name, file string, line int) Spec {
	return Spec{Kind: Relative{Dots: dots}, Name: name, File: file, Line: line}
}

// NewDynamic returns a runtime import of name.
func NewDynamic(name, file string, line int) Spec {
	return Spec{Kind: Dynamic{}, Name: name, File: file, Line: line}
}

// Dots returns the leading dot count, zero for non-relative imports.
func (s Spec) Dots() int {
	if r, ok := s.Kind.(Relative); ok {
		return r.Dots
	}
	return 0
}

// Text renders the module as written in source: "..models", ".", "app.db".
func (s Spec) Text() string {
	return strings.Repeat(".", s.Dots()) + s.Name
}

// String implements fmt.Stringer for diagnostics.
func (s Spec) String() string {
	kind := "<nil>"
	if s.Kind != nil {
		kind = s.Kind.String()
	}
	return fmt.Sprintf("%s %q at %s:%d", kind, s.Text(), s.File, s.Line)
}
