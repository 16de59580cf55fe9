package hdp

import (
	"fmt"

	"github.com/samuelfneumann/gohdp/epoch"
	"gonum.org/v1/gonum/mat"
)

// ActionRecomputation selects the next action by gradient ascent on
// the freshly trained critic. Where ActionGradient uses the derivative
// computed before this step's weight update, ActionRecomputation
// re-evaluates the critic after the update and ascends that gradient
// instead.
type ActionRecomputation struct{}

// NewActionRecomputation returns an ActionRecomputation selector
func NewActionRecomputation() *ActionRecomputation {
	return &ActionRecomputation{}
}

// NextAction re-evaluates the critic at the current action and moves
// along the post-update gradient
func (a *ActionRecomputation) NextAction(d *ADHDP, ep *epoch.Epoch, action,
	deriv *mat.VecDense, alpha, momentum float64) (*mat.VecDense, error) {
	_, fresh, err := d.simulateAction(ep, action)
	if err != nil {
		return nil, fmt.Errorf("nextaction: %v", err)
	}

	next := mat.VecDenseCopyOf(action)
	next.AddScaledVec(next, momentum, d.prevDelta)
	next.AddScaledVec(next, alpha, fresh)
	d.clipToBounds(next)
	return next, nil
}
