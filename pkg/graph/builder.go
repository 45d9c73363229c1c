package graph

import (
	"sort"

	"github.com/simonhull/heron/pkg/imports"
	"github.com/simonhull/heron/pkg/logger"
)

// EdgeStrategy decides the target node for an import found in source.
// A false result drops the edge.
type EdgeStrategy interface {
	Target(source string, spec imports.Spec) (string, bool)
}

// Unresolved is an import the strategy could not turn into an edge.
type Unresolved struct {
	Source string
	Spec   imports.Spec
}

// BuildStats summarizes one Build call.
type BuildStats struct {
	Modules    int
	Imports    int // specs with non-empty source text
	Edges      int // distinct edges in the result
	Unresolved []Unresolved
}

// Builder assembles a Graph from per-module import lists.
type Builder struct {
	strategy EdgeStrategy
	logger   logger.Logger
}

// NewBuilder creates a Builder that resolves edges with strategy.
func NewBuilder(strategy EdgeStrategy) *Builder {
	return &Builder{strategy: strategy, logger: logger.Default()}
}

// WithLogger returns a new Builder with the specified logger
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	return &Builder{strategy: b.strategy, logger: log}
}

// Build registers every key of records as a node, then adds one edge per
// import the strategy resolves. Imports with empty source text are ignored.
// Unresolved imports are dropped from the graph and reported in the stats;
// nothing here fails.
func (b *Builder) Build(records map[string][]imports.Spec) (*Graph, BuildStats) {
	g := New()
	stats := BuildStats{Modules: len(records)}

	sources := make([]string, 0, len(records))
	for src := range records {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		g.AddNode(src, nil)
	}

	for _, src := range sources {
		for _, spec := range records[src] {
			if spec.Text() == "" {
				continue
			}
			stats.Imports++

			target, ok := b.strategy.Target(src, spec)
			if !ok {
				stats.Unresolved = append(stats.Unresolved, Unresolved{Source: src, Spec: spec})
				b.logger.Debug("Dropping unresolved import",
					logger.F("module", src),
					logger.F("import", spec.Text()),
					logger.F("line", spec.Line))
				continue
			}
			g.AddEdge(src, target)
		}
	}

	stats.Edges = g.EdgeCount()
	b.logger.Debug("Dependency graph built",
		logger.F("nodes", g.Len()),
		logger.F("edges", stats.Edges),
		logger.F("unresolved", len(stats.Unresolved)))

	return g, stats
}
