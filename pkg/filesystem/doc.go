// Package filesystem discovers the source files heron analyzes.
//
// Walk is a general traversal with ignore lists. SourceFiles applies the
// rules used for Python trees: virtualenvs, VCS metadata and bytecode caches
// are skipped at any depth, and hidden entries are skipped only at the top
// of the scanned root.
package filesystem
