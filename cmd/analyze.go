package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/gohdp/analysis"
	"github.com/samuelfneumann/gohdp/config"
)

func analyzeCommand() *cobra.Command {
	var window int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Plot the return and TD error curves of an experiment",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			dataDir := c.Experiment.DataDir

			returns, err := analysis.LoadCurve("return",
				filepath.Join(dataDir, "return.bin"))
			if err != nil {
				return err
			}
			if err := analysis.Plot(
				filepath.Join(dataDir, "return.png"),
				"Episodic return", "Return", window, returns); err != nil {
				return err
			}

			tdError, err := analysis.LoadCurve("td error",
				filepath.Join(dataDir, "tderror.bin"))
			if err != nil {
				// A collection run has no learner and no TD errors
				return nil
			}
			return analysis.Plot(
				filepath.Join(dataDir, "tderror.png"),
				"Mean squared TD error", "TD error", window, tdError)
		},
	}

	cmd.Flags().IntVarP(&window, "window", "w", 10,
		"Sliding window size for curve smoothing")
	return cmd
}
