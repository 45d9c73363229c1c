// Package pipeline runs one complete analysis of a source tree: discovery,
// module indexing, import extraction, graph construction and analysis.
// Each run starts from scratch.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/simonhull/heron/pkg/analyzer"
	"github.com/simonhull/heron/pkg/config"
	"github.com/simonhull/heron/pkg/filesystem"
	"github.com/simonhull/heron/pkg/graph"
	"github.com/simonhull/heron/pkg/imports"
	"github.com/simonhull/heron/pkg/logger"
	"github.com/simonhull/heron/pkg/modindex"
	"github.com/simonhull/heron/pkg/report"
	"github.com/simonhull/heron/pkg/resolver"
)

// Outcome is everything one run produced.
type Outcome struct {
	Index    *modindex.Index
	Graph    *graph.Graph
	Result   *analyzer.Result
	Report   *report.Report
	Failures map[string]error
}

// Pipeline runs analyses with a fixed configuration.
type Pipeline struct {
	cfg    *config.Config
	logger logger.Logger
}

// New creates a Pipeline. A nil cfg uses config.DefaultConfig().
func New(cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Pipeline{cfg: cfg, logger: logger.Default()}
}

// WithLogger returns a new Pipeline with the specified logger
func (p *Pipeline) WithLogger(log logger.Logger) *Pipeline {
	return &Pipeline{cfg: p.cfg, logger: log}
}

// Run analyzes the tree under root.
func (p *Pipeline) Run(ctx context.Context, root string) (*Outcome, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	log := p.logger.WithFields(logger.F("root", absRoot))

	files, err := filesystem.SourceFiles(absRoot, filesystem.SourceOptions{
		Extensions:     p.cfg.Scan.Extensions,
		IgnoreDirs:     p.cfg.Scan.IgnoreDirs,
		IgnorePatterns: p.cfg.Scan.IgnorePatterns,
	})
	if err != nil {
		return nil, err
	}
	log.Info("Source files discovered", logger.F("files", len(files)))

	idx := modindex.NewBuilder(modindex.Options{
		Extensions:     p.cfg.Scan.Extensions,
		PackageMarkers: p.cfg.Scan.PackageMarkers,
	}).WithLogger(log).Build(absRoot, files)

	extraction, err := imports.NewExtractor(imports.NewPythonParser(p.cfg.Scan.MaxFileSize), p.cfg.Scan.Workers).
		WithLogger(log).
		ExtractAll(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("extracting imports: %w", err)
	}

	records := recordsByModule(idx, extraction)

	var strategy graph.EdgeStrategy = resolver.Verified{Index: idx}
	if p.cfg.Resolve.Mode == config.ModeRaw {
		strategy = resolver.Raw{}
	}
	g, stats := graph.NewBuilder(strategy).WithLogger(log).Build(records)
	for _, id := range idx.Modules() {
		if path, ok := idx.Lookup(id); ok && g.HasNode(id) {
			g.AddNode(id, graph.Meta{"file": path})
		}
	}

	var sizes analyzer.SizeLookup
	if p.cfg.Analysis.CountLines {
		sizes = analyzer.NewLineCounter(idx).WithLogger(log)
	}
	result, err := analyzer.NewAnalyzer(p.cfg.Analysis.EntryPoints, sizes).WithLogger(log).Run(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("analyzing graph: %w", err)
	}

	rep := report.New(absRoot, p.cfg.Resolve.Mode)
	rep.Graph = g.Adjacency()
	rep.Cycles = result.Cycles
	rep.DeadModules = result.Dead
	rep.Metrics = result.Metrics
	rep.FilesScanned = len(files)
	rep.ImportsFound = extraction.Count()
	rep.Unresolved = p.unresolved(idx, stats.Unresolved)
	if len(p.cfg.Analysis.EntryPoints) > 0 {
		rep.EntryPoints = append([]string(nil), p.cfg.Analysis.EntryPoints...)
	}

	return &Outcome{
		Index:    idx,
		Graph:    g,
		Result:   result,
		Report:   rep,
		Failures: extraction.Failures,
	}, nil
}

// recordsByModule keys extracted imports by the importing module. Files
// without an identifier are dropped; files that collapse to one identifier
// contribute to the same record list.
func recordsByModule(idx *modindex.Index, ex *imports.Extraction) map[string][]imports.Spec {
	files := make([]string, 0, len(ex.Specs))
	for f := range ex.Specs {
		files = append(files, f)
	}
	sort.Strings(files)

	records := make(map[string][]imports.Spec, len(files))
	for _, f := range files {
		id, ok := idx.ModuleFor(f)
		if !ok {
			continue
		}
		records[id] = append(records[id], ex.Specs[f]...)
	}
	return records
}

func (p *Pipeline) unresolved(idx *modindex.Index, dropped []graph.Unresolved) []report.UnresolvedImport {
	out := make([]report.UnresolvedImport, 0, len(dropped))
	for _, u := range dropped {
		entry := report.UnresolvedImport{
			Module: u.Source,
			Import: u.Spec.Text(),
			File:   u.Spec.File,
			Line:   u.Spec.Line,
		}
		if u.Spec.Dots() == 0 {
			if s, ok := resolver.Suggest(u.Spec.Name, idx, p.cfg.Resolve.SuggestDistance); ok {
				entry.Suggestion = s
			}
		}
		out = append(out, entry)
	}
	return out
}
