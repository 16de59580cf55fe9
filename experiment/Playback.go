package experiment

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gohdp/epoch"
	"github.com/samuelfneumann/gohdp/experiment/tracker"
	"github.com/samuelfneumann/gohdp/history"
	"github.com/samuelfneumann/gohdp/rl"
)

// Channels written by a learner during recording. Playback strips
// these so that the replaying learner annotates the epochs afresh; the
// recorded reward and actions are kept and forced onto the driver.
var learnerChannels = []string{
	"a_curr", "a_next", "err", "j_curr", "gamma", "deriv", "tumbled",
}

// Playback replays recorded episodes through a learning driver. The
// recorded actions are forced onto the driver so that only the critic
// learns; the critic's temporal difference errors measure how well it
// predicts the recorded data. The squared TD error is accumulated as
// an exponential moving average and reported as a normalized root mean
// squared deviation over the recorded reward range.
type Playback struct {
	driver   *rl.ActorCritic
	episodes []history.Episode

	// errCoefficient weights the moving average of squared TD errors
	errCoefficient float64

	// errStart is the first replayed episode whose TD errors count
	// toward the NRMSD; the critic still trains on earlier episodes
	errStart     int
	accumulating bool

	accError float64
	rMin     float64
	rMax     float64
	seen     int

	trackers []tracker.Tracker
	logger   *zap.Logger
}

// NewPlayback returns a Playback replaying the episodes recorded at
// path. errCoefficient in (0, 1) weights the squared TD error moving
// average; values near 1 average over many steps.
func NewPlayback(driver *rl.ActorCritic, path string, errCoefficient float64,
	logger *zap.Logger, trackers ...tracker.Tracker) (*Playback, error) {
	if driver == nil {
		return nil, fmt.Errorf("newplayback: no driver")
	}
	if errCoefficient <= 0 || errCoefficient >= 1 {
		return nil, fmt.Errorf("newplayback: error coefficient must be in "+
			"(0, 1), got %v", errCoefficient)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	episodes, err := history.Load(path)
	if err != nil {
		return nil, fmt.Errorf("newplayback: %v", err)
	}
	if len(episodes) == 0 {
		return nil, fmt.Errorf("newplayback: no recorded episodes in %q", path)
	}

	return &Playback{
		driver:         driver,
		episodes:       episodes,
		errCoefficient: errCoefficient,
		trackers:       trackers,
		logger:         logger,
	}, nil
}

// Run replays every recorded episode. The driver's next-action hook
// is restored afterwards, so the driver can go back to live operation.
func (p *Playback) Run() error {
	prevHook := p.driver.NextActionHook()
	defer p.driver.SetNextActionHook(prevHook)

	for i, episode := range p.episodes {
		p.accumulating = i >= p.errStart
		if err := p.replayEpisode(episode); err != nil {
			return fmt.Errorf("run: episode %d: %v", episode.Index, err)
		}
		p.logger.Info("episode replayed",
			zap.Int("episode", episode.Index),
			zap.Int("steps", episode.Len()),
			zap.Float64("nrmsd", p.NRMSD()),
		)
		endEpisode(p.trackers)
		p.driver.Signal(rl.SignalReset)
	}
	return nil
}

// replayEpisode feeds one recorded episode through the driver
func (p *Playback) replayEpisode(episode history.Episode) error {
	for _, recorded := range episode.Epochs {
		// Pure markers recorded at simulation start replay as the
		// empty epochs that produced them
		if recorded.Has("init_step") && recorded.Len() == 1 {
			empty := epoch.New(recorded.StartMS(), recorded.EndMS(),
				recorded.StepMS())
			if _, err := p.driver.Step(empty); err != nil {
				return fmt.Errorf("replayepisode: %v", err)
			}
			continue
		}

		if recorded.Has("a_curr") {
			aCurr, err := recorded.Vec("a_curr")
			if err != nil {
				return fmt.Errorf("replayepisode: %v", err)
			}
			p.driver.SetAction(aCurr)
		}
		if recorded.Has("a_next") {
			aNext, err := recorded.Vec("a_next")
			if err != nil {
				return fmt.Errorf("replayepisode: %v", err)
			}
			p.driver.SetNextActionHook(func(*mat.VecDense) *mat.VecDense {
				return aNext
			})
		}

		replay := strip(recorded)
		if _, err := p.driver.Step(replay); err != nil {
			return fmt.Errorf("replayepisode: %v", err)
		}
		track(p.trackers, replay)
		p.accumulate(replay)
	}
	return nil
}

// SetErrStartEpisode starts the TD error accounting at the given
// replayed episode. The critic trains on every episode either way;
// skipping the early ones keeps the settling phase out of the NRMSD.
func (p *Playback) SetErrStartEpisode(episode int) {
	p.errStart = episode
}

// accumulate folds one replayed epoch into the TD error average and
// the reward range
func (p *Playback) accumulate(ep *epoch.Epoch) {
	if !p.accumulating {
		return
	}
	if reward, err := ep.Last("reward"); err == nil {
		if p.seen == 0 || reward < p.rMin {
			p.rMin = reward
		}
		if p.seen == 0 || reward > p.rMax {
			p.rMax = reward
		}
		p.seen++
	}

	tdErr, err := ep.Last("err")
	if err != nil {
		return
	}
	p.accError = p.errCoefficient*p.accError +
		(1-p.errCoefficient)*tdErr*tdErr
}

// NRMSD returns the critic's normalized root mean squared deviation:
// the root of the TD error moving average over the recorded reward
// range. Zero reward range reports the unnormalized root.
func (p *Playback) NRMSD() float64 {
	root := math.Sqrt(p.accError)
	if spread := p.rMax - p.rMin; spread > 0 {
		return root / spread
	}
	return root
}

// Save saves all the data cached by the experiment's Trackers
func (p *Playback) Save() error {
	if err := save(p.trackers); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}

// strip copies a recorded epoch without the learner's annotation
// channels
func strip(recorded *epoch.Epoch) *epoch.Epoch {
	out := epoch.New(recorded.StartMS(), recorded.EndMS(), recorded.StepMS())
	for _, key := range recorded.Keys() {
		if isLearnerChannel(key) {
			continue
		}
		samples, err := recorded.Channel(key)
		if err != nil {
			continue
		}
		data := make([]float64, len(samples))
		copy(data, samples)
		out.Set(key, data)
	}
	return out
}

func isLearnerChannel(key string) bool {
	for _, name := range learnerChannels {
		if key == name {
			return true
		}
	}
	return false
}
