package plant

import (
	"math"

	"github.com/samuelfneumann/gohdp/epoch"
	"gonum.org/v1/gonum/mat"
)

// TargetLocation rewards approaching a fixed point in the plane. The
// reward is the negative planar distance from the target at the end of
// the epoch, clamped to zero inside the success radius. The state
// input is the normalized relative position of the target and the
// current heading.
//
// Required channels: gps_x, gps_y, heading.
type TargetLocation struct {
	base
	targetX float64
	targetY float64
	radius  float64
}

// NewTargetLocation returns a new TargetLocation plant with a given
// target point and success radius. The radius must be non-negative.
func NewTargetLocation(targetX, targetY, radius float64) *TargetLocation {
	if radius < 0 {
		panic("newtargetlocation: negative success radius")
	}
	return &TargetLocation{
		base:    newBase(3),
		targetX: targetX,
		targetY: targetY,
		radius:  radius,
	}
}

// StateInput maps an epoch to the critic's state input vector
func (t *TargetLocation) StateInput(ep *epoch.Epoch) (*mat.VecDense, error) {
	x, err := ep.Last("gps_x")
	if err != nil {
		return nil, err
	}
	y, err := ep.Last("gps_y")
	if err != nil {
		return nil, err
	}
	heading, err := ep.Last("heading")
	if err != nil {
		return nil, err
	}

	state := mat.NewVecDense(3, []float64{
		t.norm.Normalize("gps_x", t.targetX-x),
		t.norm.Normalize("gps_y", t.targetY-y),
		t.norm.Normalize("heading", heading),
	})
	return state, nil
}

// Reward computes the negative distance to the target at epoch end
func (t *TargetLocation) Reward(ep *epoch.Epoch) (float64, error) {
	x, err := ep.Last("gps_x")
	if err != nil {
		return 0, err
	}
	y, err := ep.Last("gps_y")
	if err != nil {
		return 0, err
	}

	dist := math.Hypot(t.targetX-x, t.targetY-y)
	if dist <= t.radius {
		return 0, nil
	}
	return -dist, nil
}

// AtGoal returns whether the last position of an epoch is within the
// success radius of the target
func (t *TargetLocation) AtGoal(ep *epoch.Epoch) bool {
	reward, err := t.Reward(ep)
	return err == nil && reward == 0
}

// Reset clears the plant's state. TargetLocation keeps none.
func (t *TargetLocation) Reset() {}
