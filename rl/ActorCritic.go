// Package rl implements the episodic actor-critic driver. The driver
// owns the episode lifecycle, hooks, hyperparameter schedules and
// persistence; the critic update itself is delegated to a Stepper
// (see package hdp).
package rl

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/gohdp/epoch"
	"github.com/samuelfneumann/gohdp/normalizer"
	"github.com/samuelfneumann/gohdp/plant"
	"github.com/samuelfneumann/gohdp/policy"
	"github.com/samuelfneumann/gohdp/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// Supervisor messages accepted by Signal
const (
	SignalReset             = "reset"
	SignalTumbled           = "tumbled"
	SignalTumbledGraceStart = "tumbled_grace_start"
	SignalOutOfArena        = "out_of_arena"
)

// Stepper implements the learning update of an actor-critic. The
// driver calls InitEpisode during the warm-up steps of an episode and
// Step afterwards; Step returns the next action.
type Stepper interface {
	// InitEpisode advances the critic during the warm-up phase of an
	// episode, while the initial action is held fixed
	InitEpisode(ep *epoch.Epoch, action *mat.VecDense) error

	// Step performs one learning update and returns the next action.
	// prev is the epoch of the previous control step, ep the current
	// one, and reward the reward earned over ep.
	Step(prev, ep *epoch.Epoch, action *mat.VecDense,
		reward float64) (*mat.VecDense, error)

	// NewEpisode resets the critic's episode state
	NewEpisode()

	// SaveState and LoadState persist the critic through a gob stream
	SaveState(enc *gob.Encoder) error
	LoadState(dec *gob.Decoder) error
}

// PreIncrementHook observes the fully annotated epoch of a control
// step before the step counter increments
type PreIncrementHook func(ep *epoch.Epoch)

// NextActionHook filters the next action before it is committed. The
// returned vector is used as the action.
type NextActionHook func(action *mat.VecDense) *mat.VecDense

// ActorCritic drives the interaction between a sensor stream, a plant
// and a learning Stepper. Each control step, the driver computes the
// reward, delegates the learning update, annotates the epoch, fires
// hooks and commits the next action to the low-level policy.
type ActorCritic struct {
	plnt plant.Plant
	pol  policy.Policy
	norm *normalizer.Normalizer

	stepper Stepper

	alpha    Schedule
	gamma    Schedule
	momentum Momentum

	// Number of control steps at the start of an episode during which
	// the initial action is held fixed
	initSteps int

	numEpisode int
	numStep    int
	action     *mat.VecDense
	prev       *epoch.Epoch

	preIncrementHook PreIncrementHook
	nextActionHook   NextActionHook

	// Tumble handling, driven by supervisor signals
	tumbledNotice int
	hasTumbled    bool
	tumbledReward *float64
}

// NewActorCritic returns a new actor-critic driver. The Stepper is
// attached afterwards with SetStepper; a driver without a Stepper
// performs no learning and selects actions through the next-action
// hook only, which is how offline data collection runs.
func NewActorCritic(p plant.Plant, pol policy.Policy, alpha, gamma Schedule,
	momentum Momentum, initSteps int) (*ActorCritic, error) {
	if p == nil {
		return nil, fmt.Errorf("newactorcritic: no plant")
	}
	if pol == nil {
		return nil, fmt.Errorf("newactorcritic: no policy")
	}
	if initSteps < 0 {
		return nil, fmt.Errorf("newactorcritic: negative initSteps")
	}
	if alpha == nil {
		alpha = Const(0.1)
	}
	if gamma == nil {
		gamma = Const(0.9)
	}
	if momentum == nil {
		momentum = NewConstMomentum(0.0)
	}

	ac := &ActorCritic{
		plnt:      p,
		pol:       pol,
		norm:      normalizer.New(),
		alpha:     alpha,
		gamma:     gamma,
		momentum:  momentum,
		initSteps: initSteps,
		action:    pol.InitialAction(),
	}
	return ac, nil
}

// SetStepper attaches the learning update to the driver
func (ac *ActorCritic) SetStepper(s Stepper) { ac.stepper = s }

// SetNormalization sets the normalizer used for sensor channels and
// actions, propagating it to the plant
func (ac *ActorCritic) SetNormalization(n *normalizer.Normalizer) {
	if n == nil {
		return
	}
	ac.norm = n
	ac.plnt.SetNormalization(n)
}

// SetAlpha sets the actor learning-rate schedule
func (ac *ActorCritic) SetAlpha(alpha Schedule) {
	if alpha != nil {
		ac.alpha = alpha
	}
}

// SetGamma sets the discount schedule
func (ac *ActorCritic) SetGamma(gamma Schedule) {
	if gamma != nil {
		ac.gamma = gamma
	}
}

// SetMomentum sets the action-update momentum
func (ac *ActorCritic) SetMomentum(m Momentum) {
	if m != nil {
		ac.momentum = m
	}
}

// SetTumbledReward forces the reward to a fixed value once the
// supervisor reports that the robot has tumbled. A nil pointer leaves
// rewards unchanged.
func (ac *ActorCritic) SetTumbledReward(reward *float64) {
	ac.tumbledReward = reward
}

// SetPreIncrementHook installs the epoch observer
func (ac *ActorCritic) SetPreIncrementHook(hook PreIncrementHook) {
	ac.preIncrementHook = hook
}

// PreIncrementHook returns the installed epoch observer, if any
func (ac *ActorCritic) PreIncrementHook() PreIncrementHook {
	return ac.preIncrementHook
}

// SetNextActionHook installs the action filter. Without one, actions
// are clipped to the policy's bounds.
func (ac *ActorCritic) SetNextActionHook(hook NextActionHook) {
	ac.nextActionHook = hook
}

// NextActionHook returns the installed action filter, if any
func (ac *ActorCritic) NextActionHook() NextActionHook {
	return ac.nextActionHook
}

// Plant returns the driver's plant
func (ac *ActorCritic) Plant() plant.Plant { return ac.plnt }

// Policy returns the driver's low-level policy
func (ac *ActorCritic) Policy() policy.Policy { return ac.pol }

// Normalizer returns the driver's normalizer
func (ac *ActorCritic) Normalizer() *normalizer.Normalizer { return ac.norm }

// NumEpisode returns the index of the current episode
func (ac *ActorCritic) NumEpisode() int { return ac.numEpisode }

// NumStep returns the number of control steps taken in the current
// episode
func (ac *ActorCritic) NumStep() int { return ac.numStep }

// Action returns a copy of the current action
func (ac *ActorCritic) Action() *mat.VecDense {
	return mat.VecDenseCopyOf(ac.action)
}

// SetAction overrides the current action. Offline playback seeds the
// recorded initial action this way.
func (ac *ActorCritic) SetAction(a *mat.VecDense) {
	ac.action = mat.VecDenseCopyOf(a)
}

// AlphaAt returns the actor learning rate at an (episode, step) pair
func (ac *ActorCritic) AlphaAt(episode, step int) float64 {
	return ac.alpha(episode, step)
}

// GammaAt returns the discount at an (episode, step) pair
func (ac *ActorCritic) GammaAt(episode, step int) float64 {
	return ac.gamma(episode, step)
}

// MomentumCoefficient returns the action-update momentum coefficient
// for an action at a step
func (ac *ActorCritic) MomentumCoefficient(action mat.Vector,
	step int) float64 {
	return ac.momentum.Coefficient(action, step)
}

// NewEpisode finishes the current episode and prepares the next one
func (ac *ActorCritic) NewEpisode() {
	ac.numEpisode++
	ac.numStep = 0
	ac.prev = nil
	ac.hasTumbled = false
	ac.tumbledNotice = 0

	ac.plnt.Reset()
	ac.pol.Reset()
	ac.action = ac.pol.InitialAction()

	if ac.stepper != nil {
		ac.stepper.NewEpisode()
	}
}

// Signal handles a supervisor message. A reset message starts a new
// episode; a tumbled message begins the tumble grace period, after
// which rewards may be overridden and actions are zeroed.
func (ac *ActorCritic) Signal(msg string) {
	switch msg {
	case SignalTumbled, SignalTumbledGraceStart:
		if ac.tumbledNotice == 0 {
			ac.tumbledNotice = 1
		}
	case SignalReset, SignalOutOfArena:
		ac.NewEpisode()
	}
}

// HasTumbled returns whether the robot tumbled in the current episode
func (ac *ActorCritic) HasTumbled() bool { return ac.hasTumbled }

// Step consumes the epoch of one control step and returns the motor
// targets for the next. This is the driver's per-epoch entry point.
func (ac *ActorCritic) Step(ep *epoch.Epoch) (*mat.Dense, error) {
	samples := ac.samplesPerStep(ep)

	// The very first call after a simulation start delivers an empty
	// epoch; only mark it and return the initial trajectory
	if ep.Len() == 0 {
		ac.numStep++
		ep.SetScalar("init_step", float64(ac.numStep))
		ac.firePreIncrement(ep)
		return ac.pol.MotorTargets(samples), nil
	}

	// A recorded reward wins over the plant: offline playback feeds
	// epochs that already carry the reward earned when they were
	// recorded
	var reward float64
	var err error
	if ep.Has("reward") {
		reward, err = ep.Last("reward")
	} else {
		reward, err = ac.plnt.Reward(ep)
	}
	if err != nil {
		return nil, fmt.Errorf("step: could not compute reward: %v", err)
	}

	// Advance the tumble state machine: the first notice marks the
	// grace period, the second forces the tumble reward for one final
	// learning update. Learning stops from the step after that.
	forcing := false
	if ac.tumbledNotice > 0 {
		if ac.tumbledNotice > 1 && !ac.hasTumbled {
			if ac.tumbledReward != nil {
				reward = *ac.tumbledReward
			}
			ac.hasTumbled = true
			forcing = true
			ep.SetScalar("tumbled", float64(ac.numStep))
		}
		ac.tumbledNotice++
	}

	var next *mat.VecDense
	switch {
	case ac.hasTumbled && !forcing:
		next = mat.NewVecDense(ac.action.Len(), nil)

	case ac.numStep < ac.initSteps || ac.stepper == nil:
		next = mat.VecDenseCopyOf(ac.action)
		if ac.stepper != nil {
			if err := ac.stepper.InitEpisode(ep, ac.action); err != nil {
				return nil, fmt.Errorf("step: %v", err)
			}
		}
		next = ac.filterAction(next)

	default:
		next, err = ac.stepper.Step(ac.prev, ep, ac.action, reward)
		if err != nil {
			return nil, fmt.Errorf("step: %v", err)
		}
		next = ac.filterAction(next)
	}

	// The forcing step trains the critic on the penalty; the selected
	// action is discarded and the robot is commanded to stand still
	if forcing {
		next = mat.NewVecDense(ac.action.Len(), nil)
	}

	ep.SetVec("a_curr", ac.action)
	ep.SetVec("a_next", next)
	if !ep.Has("reward") {
		ep.SetScalar("reward", reward)
	}

	ac.firePreIncrement(ep)

	ac.prev = ep
	ac.action = next
	ac.numStep++

	ac.pol.Update(next)
	return ac.pol.MotorTargets(samples), nil
}

// filterAction applies the next-action hook, or clips to the policy
// bounds when no hook is installed
func (ac *ActorCritic) filterAction(a *mat.VecDense) *mat.VecDense {
	if ac.nextActionHook != nil {
		return ac.nextActionHook(a)
	}
	matutils.VecClipIntervals(a, ac.pol.ActionBounds())
	return a
}

func (ac *ActorCritic) firePreIncrement(ep *epoch.Epoch) {
	if ac.preIncrementHook != nil {
		ac.preIncrementHook(ep)
	}
}

func (ac *ActorCritic) samplesPerStep(ep *epoch.Epoch) int {
	if ep.StepMS() <= 0 {
		return 1
	}
	samples := (ep.EndMS() - ep.StartMS()) / ep.StepMS()
	if samples < 1 {
		samples = 1
	}
	return samples
}

// Save persists the driver's counters, action and critic state to a
// file. The plant, policy, schedules and hooks are reattached by the
// caller when loading; they wrap user code the driver does not own.
func (ac *ActorCritic) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: could not create file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(ac.numEpisode); err != nil {
		return fmt.Errorf("save: could not encode episode counter: %v", err)
	}
	if err := enc.Encode(ac.numStep); err != nil {
		return fmt.Errorf("save: could not encode step counter: %v", err)
	}
	if err := enc.Encode(ac.action); err != nil {
		return fmt.Errorf("save: could not encode action: %v", err)
	}
	if ac.stepper != nil {
		if err := ac.stepper.SaveState(enc); err != nil {
			return fmt.Errorf("save: could not encode critic: %v", err)
		}
	}
	return nil
}

// Load restores counters, action and critic state saved by Save into
// an already constructed driver
func (ac *ActorCritic) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load: could not open file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	if err := dec.Decode(&ac.numEpisode); err != nil {
		return fmt.Errorf("load: could not decode episode counter: %v", err)
	}
	if err := dec.Decode(&ac.numStep); err != nil {
		return fmt.Errorf("load: could not decode step counter: %v", err)
	}
	action := new(mat.VecDense)
	if err := dec.Decode(action); err != nil {
		return fmt.Errorf("load: could not decode action: %v", err)
	}
	ac.action = action
	if ac.stepper != nil {
		if err := ac.stepper.LoadState(dec); err != nil {
			return fmt.Errorf("load: could not decode critic: %v", err)
		}
	}
	return nil
}
