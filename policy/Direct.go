package policy

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// Direct passes the action through as the actuator target, held
// constant over the control step. Useful for plants whose actuators
// take setpoints rather than trajectories.
type Direct struct {
	initial *mat.VecDense
	current *mat.VecDense
	bounds  []r1.Interval
}

// NewDirect returns a new Direct policy
func NewDirect(initial []float64, bounds []r1.Interval) (*Direct, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("newdirect: no actuators")
	}
	if len(bounds) != len(initial) {
		return nil, fmt.Errorf("newdirect: invalid number of bounds"+
			"\n\twant(%d)\n\thave(%d)", len(initial), len(bounds))
	}

	init := mat.NewVecDense(len(initial), initial)
	return &Direct{
		initial: init,
		current: mat.VecDenseCopyOf(init),
		bounds:  bounds,
	}, nil
}

// InitialAction returns the initial actuator setpoints
func (d *Direct) InitialAction() *mat.VecDense {
	return mat.VecDenseCopyOf(d.initial)
}

// ActionSpaceDim returns the number of actuators
func (d *Direct) ActionSpaceDim() int { return d.initial.Len() }

// ActionBounds returns the legal range of each actuator setpoint
func (d *Direct) ActionBounds() []r1.Interval { return d.bounds }

// Update commits a new setpoint vector
func (d *Direct) Update(action *mat.VecDense) {
	if action.Len() != d.current.Len() {
		panic(fmt.Sprintf("update: invalid action dimension \n\twant(%d)"+
			"\n\thave(%d)", d.current.Len(), action.Len()))
	}
	d.current.CopyVec(action)
}

// MotorTargets returns the current setpoints repeated for each sample
func (d *Direct) MotorTargets(samples int) *mat.Dense {
	actuators := d.current.Len()
	targets := mat.NewDense(samples, actuators, nil)
	for k := 0; k < samples; k++ {
		for i := 0; i < actuators; i++ {
			targets.Set(k, i, d.current.AtVec(i))
		}
	}
	return targets
}

// Reset restores the initial setpoints
func (d *Direct) Reset() {
	d.current.CopyVec(d.initial)
}
