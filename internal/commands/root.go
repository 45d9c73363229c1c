package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/heron"
	"github.com/simonhull/heron/pkg/config"
	"github.com/simonhull/heron/pkg/logger"
	"github.com/simonhull/heron/pkg/output"
)

// globalOptions holds persistent flags and the configuration they load.
type globalOptions struct {
	verbose    bool
	configPath string
	cfg        *config.Config
}

// setup runs before every subcommand.
func (o *globalOptions) setup(cmd *cobra.Command, _ []string) error {
	output.SetVerbose(o.verbose)
	output.SetOutput(cmd.OutOrStdout())

	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid config: log.level: %w", err)
	}
	if o.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.NewLogger(level, cmd.ErrOrStderr()))

	o.cfg = cfg
	return nil
}

// NewRootCmd builds the heron command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "heron",
		Short: "Heron - Python import graph analyzer",
		Long: `Heron scans a Python project, resolves its imports to project modules and
reports import cycles, modules nothing imports, and per-module connectivity.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.setup,
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show detailed analysis information")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.FileName, "Path to configuration file")

	cmd.AddCommand(
		newScanCmd(opts),
		newReportCmd(opts),
		newWatchCmd(opts),
		newInitCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "heron v%s\n", heron.Version)
			},
		},
	)

	return cmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	cmd := NewRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		output.Error(err.Error())
	}
	return err
}
