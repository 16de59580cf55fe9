package plant

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/gohdp/epoch"
	"gonum.org/v1/gonum/mat"
)

// SpeedReward rewards locomotion speed. The reward over an epoch is
// the planar distance covered between the first and last GPS samples,
// divided by the epoch duration in seconds. The state input is the
// normalized heading and speed reading at the end of the epoch.
//
// Required channels: gps_x, gps_y, heading, speed.
type SpeedReward struct {
	base
}

// NewSpeedReward returns a new SpeedReward plant
func NewSpeedReward() *SpeedReward {
	return &SpeedReward{base: newBase(2)}
}

// StateInput maps an epoch to the critic's state input vector
func (s *SpeedReward) StateInput(ep *epoch.Epoch) (*mat.VecDense, error) {
	return s.normalizedLast(ep, "heading", "speed")
}

// Reward computes the locomotion speed over an epoch
func (s *SpeedReward) Reward(ep *epoch.Epoch) (float64, error) {
	xs, err := ep.Channel("gps_x")
	if err != nil {
		return 0, err
	}
	ys, err := ep.Channel("gps_y")
	if err != nil {
		return 0, err
	}
	if len(xs) < 2 || len(ys) < 2 {
		return 0, fmt.Errorf("reward: need at least two GPS samples, have %d",
			len(xs))
	}

	dx := xs[len(xs)-1] - xs[0]
	dy := ys[len(ys)-1] - ys[0]
	seconds := float64(ep.EndMS()-ep.StartMS()) / 1000.0
	if seconds <= 0 {
		return 0, fmt.Errorf("reward: epoch spans no time")
	}

	return math.Hypot(dx, dy) / seconds, nil
}

// Reset clears the plant's state. SpeedReward keeps none.
func (s *SpeedReward) Reset() {}
