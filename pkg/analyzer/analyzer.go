// Package analyzer answers structural questions about a dependency graph:
// which modules form import cycles, which modules nothing imports, and how
// connected each module is.
//
// Every analysis only reads the graph, so Analyzer.Run executes them
// concurrently over the same finished graph.
package analyzer

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/heron/pkg/logger"
)

// Graph is the read-only view of a dependency graph the analyses need.
type Graph interface {
	Nodes() []string
	Neighbors(id string) []string
}

// Result holds the output of every analysis.
type Result struct {
	Cycles  []Cycle
	Dead    []string
	Metrics map[string]ModuleMetrics
	Stats   Stats
}

// Stats provides summary metrics
type Stats struct {
	Modules      int
	Edges        int
	Cycles       int
	Dead         int
	SelfImports  int
	MaxInDegree  int
	MostImported []string // modules sharing MaxInDegree, ascending
	AvgOutDegree float64
}

// Analyzer runs all analyses over one graph.
type Analyzer struct {
	entryPoints []string
	sizes       SizeLookup
	logger      logger.Logger
}

// NewAnalyzer creates an Analyzer. entryPoints are never reported dead.
// sizes may be nil to skip line counts.
func NewAnalyzer(entryPoints []string, sizes SizeLookup) *Analyzer {
	return &Analyzer{
		entryPoints: entryPoints,
		sizes:       sizes,
		logger:      logger.Default(),
	}
}

// WithLogger returns a new Analyzer with the specified logger
func (a *Analyzer) WithLogger(log logger.Logger) *Analyzer {
	return &Analyzer{entryPoints: a.entryPoints, sizes: a.sizes, logger: log}
}

// Run computes cycles, dead modules and metrics concurrently. It fails only
// when ctx is cancelled.
func (a *Analyzer) Run(ctx context.Context, g Graph) (*Result, error) {
	res := &Result{}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		res.Cycles = FindCycles(g)
		return ctx.Err()
	})
	eg.Go(func() error {
		res.Dead = FindDead(g, a.entryPoints)
		return ctx.Err()
	})
	eg.Go(func() error {
		res.Metrics = ComputeMetrics(g, a.sizes)
		return ctx.Err()
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res.Stats = calculateStats(res)
	a.logger.Info("Analysis complete",
		logger.F("modules", res.Stats.Modules),
		logger.F("edges", res.Stats.Edges),
		logger.F("cycles", res.Stats.Cycles),
		logger.F("dead", res.Stats.Dead))

	return res, nil
}

// calculateStats derives summary figures from the per-module results.
func calculateStats(res *Result) Stats {
	stats := Stats{
		Modules: len(res.Metrics),
		Cycles:  len(res.Cycles),
		Dead:    len(res.Dead),
	}

	for id, m := range res.Metrics {
		stats.Edges += m.OutDegree
		switch {
		case m.InDegree > stats.MaxInDegree:
			stats.MaxInDegree = m.InDegree
			stats.MostImported = []string{id}
		case m.InDegree == stats.MaxInDegree && m.InDegree > 0:
			stats.MostImported = append(stats.MostImported, id)
		}
	}
	sort.Strings(stats.MostImported)

	for _, c := range res.Cycles {
		if c.Len() == 1 {
			stats.SelfImports++
		}
	}

	if stats.Modules > 0 {
		stats.AvgOutDegree = float64(stats.Edges) / float64(stats.Modules)
	}
	return stats
}
