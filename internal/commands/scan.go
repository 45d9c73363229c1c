package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/heron/internal/pipeline"
	"github.com/simonhull/heron/pkg/analyzer"
	"github.com/simonhull/heron/pkg/config"
	"github.com/simonhull/heron/pkg/output"
	"github.com/simonhull/heron/pkg/report"
)

type scanOptions struct {
	jsonPath  string
	dotPath   string
	tree      bool
	treeDepth int
	entry     []string
	raw       bool
	workers   int
	noLines   bool
}

func newScanCmd(g *globalOptions) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Analyze the imports of a Python project",
		Long: `Scans every Python file under path, builds the module import graph and
reports cycles, dead modules and per-module metrics.

Example:
  heron scan ./myproject
  heron scan . --json deps.json --dot deps.dot
  heron scan src --entry app.main --tree`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			opts.apply(cmd, g.cfg)
			if err := g.cfg.Validate(); err != nil {
				return err
			}
			return runScan(cmd.Context(), cmd.OutOrStdout(), root, g.cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.jsonPath, "json", "", "Write the JSON report to this file")
	f.StringVar(&opts.dotPath, "dot", "", "Write the graph in Graphviz DOT format to this file")
	f.BoolVar(&opts.tree, "tree", false, "Print the dependency tree")
	f.IntVar(&opts.treeDepth, "tree-depth", report.DefaultTreeDepth, "Depth limit of the dependency tree")
	f.StringSliceVarP(&opts.entry, "entry", "e", nil, "Entry point modules never reported as dead")
	f.BoolVar(&opts.raw, "raw", false, "Use import text as edge targets without resolving")
	f.IntVar(&opts.workers, "workers", 0, "Parser workers (0 = number of CPUs)")
	f.BoolVar(&opts.noLines, "no-lines", false, "Skip line counting")

	return cmd
}

// apply overrides configuration values with flags the user set.
func (o *scanOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("json") {
		cfg.Output.JSON = o.jsonPath
	}
	if f.Changed("dot") {
		cfg.Output.DOT = o.dotPath
	}
	if f.Changed("tree") {
		cfg.Output.Tree = o.tree
	}
	if f.Changed("tree-depth") {
		cfg.Output.TreeDepth = o.treeDepth
	}
	if f.Changed("entry") {
		cfg.Analysis.EntryPoints = o.entry
	}
	if f.Changed("raw") && o.raw {
		cfg.Resolve.Mode = config.ModeRaw
	}
	if f.Changed("workers") {
		cfg.Scan.Workers = o.workers
	}
	if f.Changed("no-lines") && o.noLines {
		cfg.Analysis.CountLines = false
	}
}

func runScan(ctx context.Context, w io.Writer, root string, cfg *config.Config) error {
	output.Info(fmt.Sprintf("Scanning %s", root))

	var outcome *pipeline.Outcome
	err := output.RunWithSpinner(ctx, "Analyzing imports", func(ctx context.Context) error {
		var err error
		outcome, err = pipeline.New(cfg).Run(ctx, root)
		return err
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	return present(w, outcome, cfg)
}

// present prints a scan outcome and writes the configured artifacts.
func present(w io.Writer, outcome *pipeline.Outcome, cfg *config.Config) error {
	rep := outcome.Report

	for file, ferr := range outcome.Failures {
		output.Verbose(fmt.Sprintf("skipped %s: %v", file, ferr))
	}
	if n := len(outcome.Failures); n > 0 {
		output.Warn(fmt.Sprintf("%d file(s) could not be parsed", n))
	}
	for _, u := range rep.Unresolved {
		msg := fmt.Sprintf("%s:%d unresolved import %s", u.File, u.Line, u.Import)
		if u.Suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %s?)", u.Suggestion)
		}
		output.Verbose(msg)
	}

	fmt.Fprintln(w)
	if err := report.PrintSummary(w, report.Summarize(rep)); err != nil {
		return err
	}

	if cfg.Output.Tree {
		fmt.Fprintln(w)
		opts := report.TreeOptions{Roots: cfg.Analysis.EntryPoints, Depth: cfg.Output.TreeDepth}
		if err := report.WriteTree(w, outcome.Graph, opts); err != nil {
			return err
		}
	}

	if cfg.Output.DOT != "" {
		if err := writeDOT(cfg.Output.DOT, outcome.Graph, outcome.Result.Cycles); err != nil {
			return err
		}
		output.Success(fmt.Sprintf("DOT graph written to %s", cfg.Output.DOT))
	}

	if cfg.Output.JSON != "" {
		if err := report.WriteJSON(cfg.Output.JSON, rep); err != nil {
			return err
		}
		output.Success(fmt.Sprintf("Report written to %s", cfg.Output.JSON))
	}

	if len(rep.Cycles) == 0 {
		output.Success("No import cycles")
	} else {
		output.Warn(fmt.Sprintf("%d import cycle(s) found", len(rep.Cycles)))
	}
	return nil
}

func writeDOT(path string, g report.Graph, cycles []analyzer.Cycle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating DOT directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing DOT graph: %w", err)
	}
	defer f.Close()

	if err := report.WriteDOT(f, g, report.DOTOptions{Highlight: analyzer.CycleEdges(cycles)}); err != nil {
		return fmt.Errorf("writing DOT graph: %w", err)
	}
	return f.Close()
}
