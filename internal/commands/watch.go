package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/heron/pkg/output"
	"github.com/simonhull/heron/pkg/watch"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	scan := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-scan whenever a Python file changes",
		Long: `Runs a full scan, then watches the project and runs it again after every
burst of changes. Each scan starts from scratch.

Example:
  heron watch ./myproject --json deps.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			scan.apply(cmd, g.cfg)
			if err := g.cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if err := runScan(ctx, w, root, g.cfg); err != nil {
				return err
			}

			watcher := watch.New(root, watch.Options{
				Debounce:   g.cfg.Watch.Debounce,
				Extensions: g.cfg.Scan.Extensions,
				IgnoreDirs: g.cfg.Scan.IgnoreDirs,
			})
			output.Info("Watching for changes (Ctrl+C to stop)")

			return watcher.Run(ctx, func(ctx context.Context, changed []string) error {
				for _, c := range changed {
					if rel, err := filepath.Rel(root, c); err == nil {
						c = rel
					}
					output.Verbose(fmt.Sprintf("changed: %s", c))
				}
				return runScan(ctx, w, root, g.cfg)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&scan.jsonPath, "json", "", "Write the JSON report to this file after each scan")
	f.StringVar(&scan.dotPath, "dot", "", "Write the DOT graph to this file after each scan")
	f.StringSliceVarP(&scan.entry, "entry", "e", nil, "Entry point modules never reported as dead")
	f.BoolVar(&scan.raw, "raw", false, "Use import text as edge targets without resolving")

	return cmd
}
