// Package policy outlines the interface and structs needed to
// implement concrete low-level policies. A policy translates the
// actor's action vector into actuator motor targets for one control
// step. The actor adjusts the action; the policy owns how the action
// is realized on the robot.
package policy

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// Policy translates actions into motor targets
type Policy interface {
	// InitialAction returns the action driving the robot before the
	// actor takes over
	InitialAction() *mat.VecDense

	// ActionSpaceDim returns the length of action vectors
	ActionSpaceDim() int

	// ActionBounds returns the per-dimension bounds of legal actions
	ActionBounds() []r1.Interval

	// Update commits a new action to the policy
	Update(action *mat.VecDense)

	// MotorTargets returns the actuator trajectory realizing the
	// current action over one control step, with one row per sample
	// and one column per actuator
	MotorTargets(samples int) *mat.Dense

	// Reset restores the policy to its initial state
	Reset()
}
