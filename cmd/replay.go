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
)

func replayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Train a critic offline on recorded data",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if c.Experiment.HistoryFile == "" {
				return fmt.Errorf("replay needs a history file in the " +
					"experiment configuration")
			}
			dataDir := c.Experiment.DataDir
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return fmt.Errorf("could not create data directory: %v", err)
			}

			driver, err := c.BuildDriver()
			if err != nil {
				return err
			}
			if _, err := c.BuildLearner(driver); err != nil {
				return err
			}

			errCoefficient := c.Experiment.ErrCoefficient
			if errCoefficient == 0 {
				errCoefficient = 0.99
			}
			playback, err := experiment.NewPlayback(driver,
				filepath.Join(dataDir, c.Experiment.HistoryFile),
				errCoefficient, logger,
				tracker.NewTDError(filepath.Join(dataDir,
					"replay-tderror.bin")),
			)
			if err != nil {
				return err
			}
			playback.SetErrStartEpisode(c.Experiment.ErrStartEpisode)

			if err := playback.Run(); err != nil {
				return err
			}
			logger.Info("playback finished",
				zap.Float64("nrmsd", playback.NRMSD()),
			)
			if err := playback.Save(); err != nil {
				return err
			}
			return driver.Save(filepath.Join(dataDir, "replay-final.bin"))
		},
	}
}
