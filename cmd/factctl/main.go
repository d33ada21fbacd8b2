// Command factctl computes facts contracts and maintains the place directory
// from the command line, without running the HTTP server.
package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/luraaya/factengine/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type rootOptions struct {
	verbose bool
	output  string
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "factctl",
		Short: "Compute deterministic natal facts contracts",
		Long: `factctl runs the facts engine locally.

It resolves civil birth times to UT, computes ephemeris facts, and prints the
hashed facts contract exactly as the HTTP API would return it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}
			if opts.output != "json" && opts.output != "yaml" {
				return fmt.Errorf("unsupported output %q (json, yaml)", opts.output)
			}

			cfg := zap.NewProductionConfig()
			cfg.OutputPaths = []string{"stderr"}
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if opts.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "Output format (json, yaml)")

	root.AddCommand(
		newComputeCmd(opts),
		newResolveCmd(opts),
		newPlacesCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
