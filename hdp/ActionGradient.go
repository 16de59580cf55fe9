package hdp

import (
	"fmt"

	"github.com/samuelfneumann/gohdp/epoch"
	"gonum.org/v1/gonum/mat"
)

// ActionGradient selects the next action by gradient ascent on the
// critic. The first step blends the previous action update in through
// momentum:
//
//	Δa ← m·Δa_prev + α·∂J/∂a
//
// Further iterations re-probe the critic at the moved action and
// ascend again, stopping early once the update falls below the
// tolerance.
type ActionGradient struct {
	iterations int
	tolerance  float64
}

// NewActionGradient returns an ActionGradient selector running up to
// iterations ascent steps. A tolerance of 0 disables early stopping.
func NewActionGradient(iterations int, tolerance float64) *ActionGradient {
	if iterations < 1 {
		iterations = 1
	}
	return &ActionGradient{iterations: iterations, tolerance: tolerance}
}

// NextAction moves the action along the critic's gradient
func (a *ActionGradient) NextAction(d *ADHDP, ep *epoch.Epoch, action,
	deriv *mat.VecDense, alpha, momentum float64) (*mat.VecDense, error) {
	next := mat.VecDenseCopyOf(action)

	delta := mat.NewVecDense(action.Len(), nil)
	delta.AddScaledVec(delta, momentum, d.prevDelta)
	delta.AddScaledVec(delta, alpha, deriv)
	next.AddVec(next, delta)
	d.clipToBounds(next)

	for k := 1; k < a.iterations; k++ {
		_, grad, err := d.simulateAction(ep, next)
		if err != nil {
			return nil, fmt.Errorf("nextaction: %v", err)
		}
		delta.ScaleVec(alpha, grad)
		if a.tolerance > 0 && mat.Norm(delta, 2) < a.tolerance {
			break
		}
		next.AddVec(next, delta)
		d.clipToBounds(next)
	}
	return next, nil
}
