package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/heron/pkg/graph"
	"github.com/simonhull/heron/pkg/output"
	"github.com/simonhull/heron/pkg/report"
)

type reportOptions struct {
	tree      bool
	treeDepth int
	dotPath   string
}

func newReportCmd(g *globalOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report <report.json>",
		Short: "Print a saved JSON report",
		Long: `Loads a report written by "heron scan --json" and prints its summary.

Example:
  heron report deps.json
  heron report deps.json --tree --dot deps.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := report.ReadJSON(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			output.Verbose(fmt.Sprintf("run %s generated %s", rep.RunID, rep.GeneratedAt.Format("2006-01-02 15:04:05")))
			if err := report.PrintSummary(w, report.Summarize(rep)); err != nil {
				return err
			}

			depth := g.cfg.Output.TreeDepth
			if cmd.Flags().Changed("tree-depth") {
				depth = opts.treeDepth
			}
			gr := graph.FromAdjacency(rep.Graph)
			if opts.tree {
				fmt.Fprintln(w)
				if err := report.WriteTree(w, gr, report.TreeOptions{Roots: rep.EntryPoints, Depth: depth}); err != nil {
					return err
				}
			}
			if opts.dotPath != "" {
				if err := writeDOT(opts.dotPath, gr, rep.Cycles); err != nil {
					return err
				}
				output.Success(fmt.Sprintf("DOT graph written to %s", opts.dotPath))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.tree, "tree", false, "Print the dependency tree")
	cmd.Flags().IntVar(&opts.treeDepth, "tree-depth", report.DefaultTreeDepth, "Depth limit of the dependency tree")
	cmd.Flags().StringVar(&opts.dotPath, "dot", "", "Write the graph in Graphviz DOT format to this file")

	return cmd
}
