package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samuelfneumann/gohdp/config"
	"github.com/samuelfneumann/gohdp/experiment"
	"github.com/samuelfneumann/gohdp/experiment/tracker"
	"github.com/samuelfneumann/gohdp/history"
)

func runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run online learning on the simulated robot",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			dataDir := c.Experiment.DataDir
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return fmt.Errorf("could not create data directory: %v", err)
			}

			vehicle, err := c.BuildVehicle()
			if err != nil {
				return err
			}
			driver, err := c.BuildDriver()
			if err != nil {
				return err
			}
			if _, err := c.BuildLearner(driver); err != nil {
				return err
			}

			exp, err := experiment.NewOnline(driver, vehicle,
				c.Experiment.Episodes, c.Experiment.MaxSteps, logger,
				tracker.NewReturn(filepath.Join(dataDir, "return.bin")),
				tracker.NewTDError(filepath.Join(dataDir, "tderror.bin")),
			)
			if err != nil {
				return err
			}

			if c.Experiment.HistoryFile != "" {
				writer, err := history.NewWriter(
					filepath.Join(dataDir, c.Experiment.HistoryFile))
				if err != nil {
					return err
				}
				exp.SetWriter(writer)
			}
			if c.Experiment.CheckpointEvery > 0 {
				checkpointer, err := experiment.NewCheckpointer(dataDir,
					c.Experiment.CheckpointEvery)
				if err != nil {
					return err
				}
				exp.SetCheckpointer(checkpointer)
			}

			logger.Info("starting online experiment",
				zap.Int("episodes", c.Experiment.Episodes),
				zap.Int("maxSteps", c.Experiment.MaxSteps),
			)
			if err := exp.Run(); err != nil {
				return err
			}
			if err := exp.Save(); err != nil {
				return err
			}
			return driver.Save(filepath.Join(dataDir, "final.bin"))
		},
	}
}
