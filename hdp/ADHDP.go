package hdp

import (
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/gohdp/epoch"
	"github.com/samuelfneumann/gohdp/rl"
	"github.com/samuelfneumann/gohdp/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// Epoch channels annotated by the learner each control step
const (
	ChannelJCurr  = "j_curr"
	ChannelError  = "err"
	ChannelGamma  = "gamma"
	ChannelDeriv  = "deriv"
	ChannelReward = "reward"
)

// ActionSelector chooses the next action from the critic's view of the
// current step. deriv is ∂J/∂a in raw action space, computed before
// the critic update of this step.
type ActionSelector interface {
	NextAction(d *ADHDP, ep *epoch.Epoch, action, deriv *mat.VecDense,
		alpha, momentum float64) (*mat.VecDense, error)
}

// ADHDP is an actor-critic learner performing action-dependent
// heuristic dynamic programming. Each control step the critic is
// evaluated at the current (state, action), trained on the temporal
// difference target of the previous step, and the next action follows
// the critic's action gradient.
type ADHDP struct {
	*rl.ActorCritic

	critic   Critic
	selector ActionSelector

	stateDim  int
	actionDim int

	jPrev   float64
	hasPrev bool

	// Action update applied at the previous step, blended in through
	// momentum
	prevDelta *mat.VecDense
}

// New returns an ADHDP learner attached to the given driver. The
// critic's input dimension must equal the plant's state dimension plus
// the policy's action dimension. A nil selector defaults to a single
// gradient ascent step.
func New(ac *rl.ActorCritic, critic Critic,
	selector ActionSelector) (*ADHDP, error) {
	if ac == nil {
		return nil, fmt.Errorf("new: no driver")
	}
	if critic == nil {
		return nil, fmt.Errorf("new: no critic")
	}

	stateDim := ac.Plant().StateSpaceDim()
	actionDim := ac.Policy().ActionSpaceDim()
	if critic.InputDim() != stateDim+actionDim {
		return nil, fmt.Errorf("new: invalid critic input dimension"+
			"\n\twant(%d)\n\thave(%d)", stateDim+actionDim, critic.InputDim())
	}

	if selector == nil {
		selector = NewActionGradient(1, 0)
	}

	d := &ADHDP{
		ActorCritic: ac,
		critic:      critic,
		selector:    selector,
		stateDim:    stateDim,
		actionDim:   actionDim,
		prevDelta:   mat.NewVecDense(actionDim, nil),
	}
	ac.SetStepper(d)
	return d, nil
}

// Critic returns the learner's critic
func (d *ADHDP) Critic() Critic { return d.critic }

// StateDim returns the plant's state dimension
func (d *ADHDP) StateDim() int { return d.stateDim }

// ActionDim returns the policy's action dimension
func (d *ADHDP) ActionDim() int { return d.actionDim }

// criticInput builds the critic input for an epoch and action: the
// plant's normalized state with the normalized action appended
func (d *ADHDP) criticInput(ep *epoch.Epoch,
	action *mat.VecDense) (*mat.VecDense, error) {
	state, err := d.Plant().StateInput(ep)
	if err != nil {
		return nil, fmt.Errorf("criticinput: %v", err)
	}
	aNorm := d.Normalizer().NormalizeVec("a_curr", action)
	return matutils.VecConcat(state, aNorm), nil
}

// criticEval commits a critic evaluation at (epoch, action)
func (d *ADHDP) criticEval(ep *epoch.Epoch, action *mat.VecDense) (float64,
	error) {
	in, err := d.criticInput(ep, action)
	if err != nil {
		return 0, fmt.Errorf("criticeval: %v", err)
	}
	j, err := d.critic.Eval(in)
	if err != nil {
		return 0, fmt.Errorf("criticeval: %v", err)
	}
	return j, nil
}

// criticDeriv returns ∂J/∂a in raw action space at the input of the
// last committed evaluation
func (d *ADHDP) criticDeriv() (*mat.VecDense, error) {
	full, err := d.critic.Deriv()
	if err != nil {
		return nil, fmt.Errorf("criticderiv: %v", err)
	}
	return d.actionDeriv(full), nil
}

// actionDeriv slices the action part out of a full input derivative
// and rescales it from normalized to raw action space
func (d *ADHDP) actionDeriv(full *mat.VecDense) *mat.VecDense {
	scale := d.Normalizer().Param("a_curr").Scale

	out := mat.NewVecDense(d.actionDim, nil)
	for i := 0; i < d.actionDim; i++ {
		out.SetVec(i, full.AtVec(d.stateDim+i)/scale)
	}
	return out
}

// simulateAction probes the critic at (epoch, candidate action),
// returning J and ∂J/∂a in raw action space without committing
func (d *ADHDP) simulateAction(ep *epoch.Epoch,
	action *mat.VecDense) (float64, *mat.VecDense, error) {
	in, err := d.criticInput(ep, action)
	if err != nil {
		return 0, nil, fmt.Errorf("simulateaction: %v", err)
	}
	j, full, err := d.critic.Simulate(in)
	if err != nil {
		return 0, nil, fmt.Errorf("simulateaction: %v", err)
	}
	return j, d.actionDeriv(full), nil
}

// clipToBounds clips an action to the policy's legal region
func (d *ADHDP) clipToBounds(a *mat.VecDense) {
	matutils.VecClipIntervals(a, d.Policy().ActionBounds())
}

// InitEpisode advances the critic along the warm-up trajectory while
// the initial action is held fixed. No training happens; the critic
// only accumulates trajectory state.
func (d *ADHDP) InitEpisode(ep *epoch.Epoch, action *mat.VecDense) error {
	j, err := d.criticEval(ep, action)
	if err != nil {
		return fmt.Errorf("initepisode: %v", err)
	}
	d.jPrev = j
	d.hasPrev = true
	return nil
}

// Step performs one ADHDP update. The critic is evaluated at the
// current (state, action), the previous evaluation is trained toward
// the temporal difference target r + γ·J, and the selector moves the
// action along the critic's gradient. The epoch is annotated with the
// value estimate, TD error, discount and action derivative.
func (d *ADHDP) Step(prev, ep *epoch.Epoch, action *mat.VecDense,
	reward float64) (*mat.VecDense, error) {
	j, err := d.criticEval(ep, action)
	if err != nil {
		return nil, fmt.Errorf("step: %v", err)
	}

	// Action gradient under the pre-update weights
	deriv, err := d.criticDeriv()
	if err != nil {
		return nil, fmt.Errorf("step: %v", err)
	}

	gamma := d.GammaAt(d.NumEpisode(), d.NumStep())
	if d.hasPrev {
		target := reward + gamma*j
		tdError := target - d.jPrev
		if err := d.critic.TrainLast(target); err != nil {
			return nil, fmt.Errorf("step: could not train critic: %v", err)
		}
		ep.SetScalar(ChannelError, tdError)
	}

	alpha := d.AlphaAt(d.NumEpisode(), d.NumStep())
	momentum := d.MomentumCoefficient(action, d.NumStep())

	next, err := d.selector.NextAction(d, ep, action, deriv, alpha, momentum)
	if err != nil {
		return nil, fmt.Errorf("step: could not select action: %v", err)
	}

	ep.SetScalar(ChannelJCurr, j)
	ep.SetScalar(ChannelGamma, gamma)
	ep.SetVec(ChannelDeriv, deriv)

	d.prevDelta.SubVec(next, action)
	d.jPrev = j
	d.hasPrev = true

	return next, nil
}

// NewEpisode resets the learner's episode state
func (d *ADHDP) NewEpisode() {
	d.critic.Reset()
	d.jPrev = 0
	d.hasPrev = false
	d.prevDelta.Zero()
}

// SaveState persists the learner through a gob stream
func (d *ADHDP) SaveState(enc *gob.Encoder) error {
	for _, err := range []error{
		enc.Encode(d.jPrev),
		enc.Encode(d.hasPrev),
		enc.Encode(d.prevDelta),
	} {
		if err != nil {
			return fmt.Errorf("savestate: could not encode learner: %v", err)
		}
	}
	return d.critic.SaveState(enc)
}

// LoadState restores the learner from a gob stream
func (d *ADHDP) LoadState(dec *gob.Decoder) error {
	prevDelta := new(mat.VecDense)
	for _, err := range []error{
		dec.Decode(&d.jPrev),
		dec.Decode(&d.hasPrev),
		dec.Decode(prevDelta),
	} {
		if err != nil {
			return fmt.Errorf("loadstate: could not decode learner: %v", err)
		}
	}
	d.prevDelta = prevDelta
	return d.critic.LoadState(dec)
}
