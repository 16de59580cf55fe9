// Package hdp implements action-dependent heuristic dynamic
// programming. The critic approximates the action value J(s, a) online
// and the actor follows the critic's action gradient; both updates
// happen within a single control step.
package hdp

import (
	"encoding/gob"

	"gonum.org/v1/gonum/mat"
)

// Critic approximates the action value J over concatenated
// (state, action) inputs. Evaluations either commit, advancing any
// internal critic state, or simulate, probing a candidate input while
// leaving the committed trajectory untouched.
type Critic interface {
	// InputDim returns the expected input dimension
	InputDim() int

	// Eval commits an evaluation of input u, returning J(u)
	Eval(u *mat.VecDense) (float64, error)

	// Deriv returns ∂J/∂u at the input of the last committed Eval
	Deriv() (*mat.VecDense, error)

	// Simulate evaluates a candidate input without committing it,
	// returning J(u) and ∂J/∂u
	Simulate(u *mat.VecDense) (float64, *mat.VecDense, error)

	// TrainLast trains the input committed by the Eval before the
	// latest one toward target. With fewer than two committed
	// evaluations, TrainLast is a no-op.
	TrainLast(target float64) error

	// Reset prepares the critic for a new episode. Learned weights
	// survive; trajectory state does not.
	Reset()

	// SaveState and LoadState persist the critic through a gob stream
	SaveState(enc *gob.Encoder) error
	LoadState(dec *gob.Decoder) error
}
