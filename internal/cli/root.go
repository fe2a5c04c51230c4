// Package cli implements the hostbench command tree.
package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hostbench/hostbench/internal/config"
	"github.com/hostbench/hostbench/internal/errors"
	"github.com/hostbench/hostbench/internal/logger"
	"github.com/hostbench/hostbench/internal/ui"
)

// Global flags
var (
	configFlag  string
	dbFlag      string
	verboseFlag bool
	quietFlag   bool
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "hostbench",
	Short: "Benchmark hosts and compare them",
	Long: `hostbench runs a standard benchmark battery (CPU, memory, disk,
network) on this machine using sysbench, iperf3, and friends, stores the
scores in a shared results file, and ranks hosts against each other.

Point --db at a file on shared storage and run hostbench on each machine
you want in the comparison.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			os.Setenv("HOSTBENCH_DEBUG", "1")
		}
		if noColorFlag {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to .hostbench.yaml")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "path to the results file (overrides store.path)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
}

// loadConfig resolves the effective config: file discovery, flag
// overrides, then validation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configFlag)
	if err != nil {
		return nil, err
	}
	if dbFlag != "" {
		cfg.Store.Path = dbFlag
	}
	if cfg.Output.Color == "never" {
		ui.DisableColors()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command, rendering structured errors with their
// suggestions and mapping them to exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *errors.ExitError
		if stderrors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// Logger returns the process-wide logger for CLI commands.
func Logger() logger.Logger {
	return logger.Default()
}
