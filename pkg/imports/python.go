package imports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// DefaultMaxFileSize is the largest source file parsed by default (10 MiB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

var (
	// ErrSyntax is returned for sources that do not parse as Python.
	ErrSyntax = errors.New("python syntax error")

	// ErrFileTooLarge is returned for sources above the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent is returned for sources that are not UTF-8.
	ErrInvalidContent = errors.New("invalid content")
)

// Parser turns one source file into its import specs.
type Parser interface {
	Parse(ctx context.Context, content []byte, path string) ([]Spec, error)
}

// PythonParser extracts imports using tree-sitter's Python grammar.
//
// Recognized forms, at any nesting depth:
//
//	import a.b, c as d            -> absolute "a.b", absolute "c"
//	from x.y import z             -> absolute "x.y"
//	from ..m import z             -> relative(2) "m"
//	from . import z               -> relative(1) ""
//	__import__("x")               -> dynamic "x"
//	importlib.import_module("x")  -> dynamic "x"
//	import_module("x")            -> dynamic "x"
//
// Dynamic imports are recorded only when the first positional argument is a
// plain string literal.
//
// PythonParser is safe for concurrent use; each call creates its own
// tree-sitter parser.
type PythonParser struct {
	maxFileSize int64
}

// NewPythonParser creates a parser. maxFileSize <= 0 uses DefaultMaxFileSize.
func NewPythonParser(maxFileSize int64) *PythonParser {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &PythonParser{maxFileSize: maxFileSize}
}

// MaxFileSize returns the configured size limit.
func (p *PythonParser) MaxFileSize() int64 {
	return p.maxFileSize
}

// Parse returns the imports of content in source order.
func (p *PythonParser) Parse(ctx context.Context, content []byte, path string) ([]Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, len(content), p.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidContent, path)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: %s produced no syntax tree", ErrSyntax, path)
	}
	if root.HasError() {
		return nil, fmt.Errorf("%w in %s", ErrSyntax, path)
	}

	w := &walker{content: content, path: path, specs: make([]Spec, 0, 16)}
	w.walk(root)
	return w.specs, nil
}

type walker struct {
	content []byte
	path    string
	specs   []Spec
}

func (w *walker) text(n *sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// walk visits nodes in document order with an explicit stack.
func (w *walker) walk(root *sitter.Node) {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type() {
		case "import_statement":
			w.importStatement(n)
		case "import_from_statement", "future_import_statement":
			w.fromStatement(n)
		case "call":
			w.call(n)
		}

		for i := int(n.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.NamedChild(i))
		}
	}
}

// importStatement handles "import a.b" and "import a.b as c".
func (w *walker) importStatement(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			w.specs = append(w.specs, NewAbsolute(w.text(child), w.path, line(n)))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				w.specs = append(w.specs, NewAbsolute(w.text(name), w.path, line(n)))
			}
		}
	}
}

// fromStatement handles "from <module> import <names>".
func (w *walker) fromStatement(n *sitter.Node) {
	var (
		module   *sitter.Node
		spec     Spec
		resolved bool
	)

	if n.Type() == "future_import_statement" {
		spec = NewAbsolute("__future__", w.path, line(n))
		resolved = true
	} else {
		module = n.ChildByFieldName("module_name")
		if module == nil {
			return
		}
		switch module.Type() {
		case "dotted_name":
			spec = NewAbsolute(w.text(module), w.path, line(n))
			resolved = true
		case "relative_import":
			dots, name := 0, ""
			for i := 0; i < int(module.NamedChildCount()); i++ {
				part := module.NamedChild(i)
				switch part.Type() {
				case "import_prefix":
					dots = strings.Count(w.text(part), ".")
				case "dotted_name":
					name = w.text(part)
				}
			}
			if dots > 0 {
				spec = NewRelative(dots, name, w.path, line(n))
				resolved = true
			}
		}
	}
	if !resolved {
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if module != nil && child.StartByte() < module.EndByte() {
			continue
		}
		switch child.Type() {
		case "dotted_name", "identifier":
			spec.Names = append(spec.Names, w.text(child))
		case "aliased_import":
			if name := child.ChildByFieldName("name"); name != nil {
				spec.Names = append(spec.Names, w.text(name))
			}
		case "wildcard_import":
			spec.Names = append(spec.Names, "*")
		}
	}

	w.specs = append(w.specs, spec)
}

// call records __import__("x") and *.import_module("x").
func (w *walker) call(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil || !isDynamicImporter(fn, w) {
		return
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.Type() != "argument_list" {
		return
	}

	var first *sitter.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if c := args.NamedChild(i); c.Type() != "comment" {
			first = c
			break
		}
	}
	if first == nil || first.Type() != "string" {
		return
	}

	name, ok := stringLiteral(first, w)
	if !ok {
		return
	}
	w.specs = append(w.specs, NewDynamic(name, w.path, line(n)))
}

func isDynamicImporter(fn *sitter.Node, w *walker) bool {
	switch fn.Type() {
	case "identifier":
		name := w.text(fn)
		return name == "__import__" || name == "import_module"
	case "attribute":
		attr := fn.ChildByFieldName("attribute")
		return attr != nil && w.text(attr) == "import_module"
	}
	return false
}

// stringLiteral returns the value of a plain str literal. Byte strings,
// f-strings and literals containing interpolations are rejected.
func stringLiteral(n *sitter.Node, w *walker) (string, bool) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == "interpolation" {
			return "", false
		}
	}

	raw := w.text(n)
	q := strings.IndexAny(raw, `"'`)
	if q < 0 {
		return "", false
	}
	prefix := strings.ToLower(raw[:q])
	if strings.ContainsAny(prefix, "fb") {
		return "", false
	}

	body := raw[q:]
	for _, delim := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(delim) && strings.HasPrefix(body, delim) && strings.HasSuffix(body, delim) {
			return body[len(delim) : len(body)-len(delim)], true
		}
	}
	return "", false
}
