package experiment

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/samuelfneumann/gohdp/experiment/tracker"
	"github.com/samuelfneumann/gohdp/history"
	"github.com/samuelfneumann/gohdp/rl"
	"github.com/samuelfneumann/gohdp/robot"
	"github.com/samuelfneumann/gohdp/utils/progressbar"
)

// Online runs an actor-critic learning on a simulated robot. Each
// episode, the driver steps the robot epoch by epoch until the robot
// tumbles, leaves the arena or the episode step limit is reached.
type Online struct {
	driver  *rl.ActorCritic
	vehicle *robot.Vehicle

	episodes int
	maxSteps int

	trackers []tracker.Tracker
	writer   *history.Writer

	checkpointer *Checkpointer

	logger *zap.Logger
}

// NewOnline returns a new online experiment running the driver on the
// vehicle for the given number of episodes, each at most maxSteps
// control steps long
func NewOnline(driver *rl.ActorCritic, vehicle *robot.Vehicle, episodes,
	maxSteps int, logger *zap.Logger,
	trackers ...tracker.Tracker) (*Online, error) {
	if driver == nil {
		return nil, fmt.Errorf("newonline: no driver")
	}
	if vehicle == nil {
		return nil, fmt.Errorf("newonline: no vehicle")
	}
	if episodes <= 0 || maxSteps <= 0 {
		return nil, fmt.Errorf("newonline: non-positive episode or step count")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Online{
		driver:   driver,
		vehicle:  vehicle,
		episodes: episodes,
		maxSteps: maxSteps,
		trackers: trackers,
		logger:   logger,
	}, nil
}

// Register registers a Tracker with the experiment
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// SetWriter installs a history Writer recording every annotated epoch
func (o *Online) SetWriter(w *history.Writer) {
	o.writer = w
	o.driver.SetPreIncrementHook(w.Hook())
}

// SetCheckpointer installs periodic driver checkpoints
func (o *Online) SetCheckpointer(c *Checkpointer) {
	o.checkpointer = c
}

// Run runs the entire experiment
func (o *Online) Run() error {
	bar := progressbar.New(50, o.episodes, time.Second)
	bar.Display()
	defer bar.Close()

	for e := 0; e < o.episodes; e++ {
		steps, err := o.RunEpisode()
		if err != nil {
			return fmt.Errorf("run: episode %d: %v", e, err)
		}

		o.logger.Info("episode finished",
			zap.Int("episode", e),
			zap.Int("steps", steps),
			zap.Bool("tumbled", o.driver.HasTumbled()),
			zap.Bool("outOfArena", o.vehicle.OutOfArena()),
		)

		endEpisode(o.trackers)
		if o.writer != nil {
			if err := o.writer.EndEpisode(); err != nil {
				return fmt.Errorf("run: episode %d: %v", e, err)
			}
		}
		if o.checkpointer != nil {
			if err := o.checkpointer.Checkpoint(o.driver, e); err != nil {
				return fmt.Errorf("run: episode %d: %v", e, err)
			}
		}

		o.vehicle.Reset()
		o.driver.Signal(rl.SignalReset)
		bar.Increment()
	}
	return nil
}

// RunEpisode runs a single episode, returning the number of control
// steps taken
func (o *Online) RunEpisode() (int, error) {
	targets, err := o.driver.Step(o.vehicle.InitialEpoch())
	if err != nil {
		return 0, fmt.Errorf("runepisode: %v", err)
	}

	tumbleSignalled := false
	for step := 0; step < o.maxSteps; step++ {
		ep, err := o.vehicle.Step(targets)
		if err != nil {
			return step, fmt.Errorf("runepisode: %v", err)
		}

		if o.vehicle.Tumbled() && !tumbleSignalled {
			o.driver.Signal(rl.SignalTumbledGraceStart)
			tumbleSignalled = true
		}

		targets, err = o.driver.Step(ep)
		if err != nil {
			return step, fmt.Errorf("runepisode: %v", err)
		}
		track(o.trackers, ep)

		if o.vehicle.OutOfArena() {
			return step + 1, nil
		}
		if o.driver.HasTumbled() {
			return step + 1, nil
		}
	}
	return o.maxSteps, nil
}

// Save saves all the data cached by the experiment's Trackers
func (o *Online) Save() error {
	if err := save(o.trackers); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	if o.writer != nil {
		if err := o.writer.Close(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}
