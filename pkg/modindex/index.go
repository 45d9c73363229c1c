// Package modindex maps Python module identifiers to the files that define
// them.
//
// An identifier is the file's path relative to the scanned root with the
// source extension removed and separators replaced by dots. A package marker
// file (__init__.py) names its directory: app/models/__init__.py defines
// "app.models".
package modindex

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/simonhull/heron/pkg/logger"
)

// Options configures identifier derivation.
type Options struct {
	Extensions     []string // default: [".py"]
	PackageMarkers []string // default: ["__init__"]
}

// DefaultOptions returns the Python conventions.
func DefaultOptions() Options {
	return Options{
		Extensions:     []string{".py"},
		PackageMarkers: []string{"__init__"},
	}
}

// Index is the identifier to file lookup for one run. It is read-only after
// Build returns and safe for concurrent readers.
type Index struct {
	root     string
	modules  map[string]string // identifier -> defining file
	byPath   map[string]string // cleaned absolute file -> identifier
	topLevel map[string]bool
}

// Builder derives identifiers for a set of files.
type Builder struct {
	opts   Options
	logger logger.Logger
}

// NewBuilder creates a Builder. Zero-valued option fields take defaults.
func NewBuilder(opts Options) *Builder {
	def := DefaultOptions()
	if len(opts.Extensions) == 0 {
		opts.Extensions = def.Extensions
	}
	if len(opts.PackageMarkers) == 0 {
		opts.PackageMarkers = def.PackageMarkers
	}
	return &Builder{opts: opts, logger: logger.Default()}
}

// WithLogger returns a new Builder with the specified logger
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	return &Builder{opts: b.opts, logger: log}
}

// Build indexes files found under root. Files are processed in ascending
// path order so that when two files collapse to the same identifier
// (pkg.py and pkg/__init__.py) the later one wins deterministically. Both
// files still map back to the shared identifier.
func (b *Builder) Build(root string, files []string) *Index {
	absRoot := normalize(root)
	idx := &Index{
		root:     absRoot,
		modules:  make(map[string]string, len(files)),
		byPath:   make(map[string]string, len(files)),
		topLevel: make(map[string]bool),
	}

	sorted := make([]string, 0, len(files))
	for _, f := range files {
		sorted = append(sorted, normalize(f))
	}
	sort.Strings(sorted)

	for _, file := range sorted {
		id, ok := b.identifier(absRoot, file)
		if !ok {
			b.logger.Debug("Skipping file without module identifier", logger.F("file", file))
			continue
		}
		if prev, exists := idx.modules[id]; exists && prev != file {
			b.logger.Warn("Module identifier collision",
				logger.F("module", id),
				logger.F("kept", file),
				logger.F("shadowed", prev))
		}
		idx.modules[id] = file
		idx.byPath[file] = id
		idx.topLevel[strings.SplitN(id, ".", 2)[0]] = true
	}

	b.logger.Debug("Module index built",
		logger.F("root", absRoot),
		logger.F("modules", len(idx.modules)))

	return idx
}

// Build indexes files under root with the default Python options.
func Build(root string, files []string) *Index {
	return NewBuilder(DefaultOptions()).WithLogger(logger.Default()).Build(root, files)
}

// Identifier returns the module identifier file would have under root.
func (b *Builder) Identifier(root, file string) (string, bool) {
	return b.identifier(normalize(root), normalize(file))
}

func (b *Builder) identifier(root, file string) (string, bool) {
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	last := parts[len(parts)-1]

	stem, ok := b.stripExtension(last)
	if !ok {
		return "", false
	}
	if b.isMarker(stem) {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = stem
	}
	if len(parts) == 0 {
		return "", false
	}
	for _, p := range parts {
		if p == "" {
			return "", false
		}
	}
	return strings.Join(parts, "."), true
}

func (b *Builder) stripExtension(name string) (string, bool) {
	for _, ext := range b.opts.Extensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return "", false
}

func (b *Builder) isMarker(stem string) bool {
	for _, m := range b.opts.PackageMarkers {
		if stem == m {
			return true
		}
	}
	return false
}

func normalize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Root returns the absolute root the index was built from.
func (i *Index) Root() string {
	return i.root
}

// Lookup returns the file defining id.
func (i *Index) Lookup(id string) (string, bool) {
	path, ok := i.modules[id]
	return path, ok
}

// Contains reports whether id is an indexed module.
func (i *Index) Contains(id string) bool {
	_, ok := i.modules[id]
	return ok
}

// ModuleFor returns the identifier of the module defined by path.
func (i *Index) ModuleFor(path string) (string, bool) {
	id, ok := i.byPath[normalize(path)]
	return id, ok
}

// HasTopLevel reports whether name is the first segment of any indexed
// module, i.e. whether an import of name.* targets this project.
func (i *Index) HasTopLevel(name string) bool {
	return i.topLevel[name]
}

// Modules returns every identifier in ascending order.
func (i *Index) Modules() []string {
	ids := make([]string, 0, len(i.modules))
	for id := range i.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of indexed modules.
func (i *Index) Len() int {
	return len(i.modules)
}
