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

func collectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Collect exploration data with a random walk policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if c.Experiment.HistoryFile == "" {
				return fmt.Errorf("collect needs a history file in the " +
					"experiment configuration")
			}
			dataDir := c.Experiment.DataDir
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return fmt.Errorf("could not create data directory: %v", err)
			}

			vehicle, err := c.BuildVehicle()
			if err != nil {
				return err
			}

			// No learner: the driver only records and follows the
			// collector's random walk
			driver, err := c.BuildDriver()
			if err != nil {
				return err
			}
			if _, err := experiment.NewCollector(driver,
				c.Experiment.Collector.HoldSteps,
				c.Experiment.Collector.StepSize,
				c.Experiment.Collector.Seed); err != nil {
				return err
			}

			exp, err := experiment.NewOnline(driver, vehicle,
				c.Experiment.Episodes, c.Experiment.MaxSteps, logger,
				tracker.NewReturn(filepath.Join(dataDir, "return.bin")),
			)
			if err != nil {
				return err
			}

			writer, err := history.NewWriter(
				filepath.Join(dataDir, c.Experiment.HistoryFile))
			if err != nil {
				return err
			}
			exp.SetWriter(writer)

			logger.Info("starting data collection",
				zap.Int("episodes", c.Experiment.Episodes),
				zap.String("historyFile", c.Experiment.HistoryFile),
			)
			if err := exp.Run(); err != nil {
				return err
			}
			return exp.Save()
		},
	}
}
