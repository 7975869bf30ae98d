// Package cli implements the lunar command line: the API server, the
// preset and pipeline inspectors, and offline histogram and export tools.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Fepozopo/lunaratelier/pkg/config"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
}

// NewRootCommand returns the lunar command tree.
func NewRootCommand() *cobra.Command {
	return newRoot(&app{})
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "lunar",
		Short: "Lunar Atelier - moon photo editor backend and tools",
		Long: `lunar serves the Lunar Atelier editing API and offers offline tools to
inspect presets, compile adjustment pipelines, sample histograms and export
adjusted images.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.serveCommand(),
		a.presetsCommand(),
		a.compileCommand(),
		a.histogramCommand(),
		a.exportCommand(),
		a.updateCommand(),
		versionCommand(),
	)
	return root
}

// Execute runs the root command with ctx and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.log != nil {
		return nil
	}
	lvl, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if a.verbose {
		lvl = zapcore.DebugLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = logger
	return nil
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
