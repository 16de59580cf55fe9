// Package cmd implements the command line interface: online learning,
// offline data collection, playback of recorded data and plotting of
// tracked results.
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	verbose    bool

	logger *zap.Logger
)

// GetRootCommand returns the root command with all subcommands
// attached
func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "gohdp",
		Short: "Online actor-critic learning on a simulated robot",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}

	rootCommand.PersistentFlags().StringVarP(&configPath, "config", "c",
		"config.yaml", "Experiment configuration file")
	rootCommand.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCommand.AddCommand(runCommand())
	rootCommand.AddCommand(collectCommand())
	rootCommand.AddCommand(replayCommand())
	rootCommand.AddCommand(analyzeCommand())
	return rootCommand
}
