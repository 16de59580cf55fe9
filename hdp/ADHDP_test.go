package hdp

import (
	"encoding/gob"
	"testing"

	"github.com/samuelfneumann/gohdp/epoch"
	"github.com/samuelfneumann/gohdp/normalizer"
	"github.com/samuelfneumann/gohdp/rl"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// scalarPlant reads a one-dimensional state and reward from epoch
// channels
type scalarPlant struct {
	norm *normalizer.Normalizer
}

func (s *scalarPlant) StateInput(ep *epoch.Epoch) (*mat.VecDense, error) {
	v, err := ep.Last("s")
	if err != nil {
		return nil, err
	}
	return mat.NewVecDense(1, []float64{v}), nil
}

func (s *scalarPlant) Reward(ep *epoch.Epoch) (float64, error) {
	return ep.Last("r")
}

func (s *scalarPlant) StateSpaceDim() int { return 1 }

func (s *scalarPlant) SetNormalization(n *normalizer.Normalizer) {
	s.norm = n
}

func (s *scalarPlant) Reset() {}

// scalarPolicy passes a one-dimensional action through
type scalarPolicy struct {
	current *mat.VecDense
}

func newScalarPolicy() *scalarPolicy {
	return &scalarPolicy{current: mat.NewVecDense(1, []float64{0.2})}
}

func (p *scalarPolicy) InitialAction() *mat.VecDense {
	return mat.NewVecDense(1, []float64{0.2})
}

func (p *scalarPolicy) ActionSpaceDim() int { return 1 }

func (p *scalarPolicy) ActionBounds() []r1.Interval {
	return []r1.Interval{{Min: -1, Max: 1}}
}

func (p *scalarPolicy) Update(action *mat.VecDense) {
	p.current.CopyVec(action)
}

func (p *scalarPolicy) MotorTargets(samples int) *mat.Dense {
	targets := mat.NewDense(samples, 1, nil)
	for k := 0; k < samples; k++ {
		targets.Set(k, 0, p.current.AtVec(0))
	}
	return targets
}

func (p *scalarPolicy) Reset() { p.current.SetVec(0, 0.2) }

func newTestLearner(t *testing.T,
	selector ActionSelector) (*rl.ActorCritic, *ADHDP) {
	t.Helper()
	driver, err := rl.NewActorCritic(&scalarPlant{}, newScalarPolicy(),
		rl.Const(0.05), rl.Const(0.9), nil, 1)
	if err != nil {
		t.Fatal(err)
	}

	critic, err := NewESNCritic(2, 30, 0.9, 0.2, 1.0, 0.5, 1.0, 10.0, 17)
	if err != nil {
		t.Fatal(err)
	}
	learner, err := New(driver, critic, selector)
	if err != nil {
		t.Fatal(err)
	}
	return driver, learner
}

func stepEpoch(s, r float64) *epoch.Epoch {
	ep := epoch.New(0, 100, 20)
	ep.SetScalar("s", s)
	ep.SetScalar("r", r)
	return ep
}

func TestRejectsMismatchedCriticDimension(t *testing.T) {
	driver, err := rl.NewActorCritic(&scalarPlant{}, newScalarPolicy(),
		nil, nil, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	critic, err := NewESNCritic(5, 30, 0.9, 0.2, 1.0, 0.5, 1.0, 10.0, 17)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := New(driver, critic, nil); err == nil {
		t.Error("expected an error for a mismatched critic dimension")
	}
}

func TestStepAnnotatesEpoch(t *testing.T) {
	driver, _ := newTestLearner(t, NewActionGradient(1, 0))

	// Warm-up step, then two learning steps. The warm-up commits a
	// critic evaluation, so every learning step has a predecessor to
	// compute a TD error against.
	if _, err := driver.Step(stepEpoch(0.1, 0.5)); err != nil {
		t.Fatal(err)
	}
	first := stepEpoch(0.2, 0.5)
	if _, err := driver.Step(first); err != nil {
		t.Fatal(err)
	}
	second := stepEpoch(0.3, 0.5)
	if _, err := driver.Step(second); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{ChannelJCurr, ChannelGamma, ChannelDeriv} {
		if !first.Has(key) {
			t.Errorf("first learning epoch missing channel %q", key)
		}
	}
	if !second.Has(ChannelError) {
		t.Error("second learning epoch missing the TD error")
	}

	gamma, err := second.Last(ChannelGamma)
	if err != nil {
		t.Fatal(err)
	}
	if gamma != 0.9 {
		t.Errorf("invalid annotated discount \n\twant(0.9)\n\thave(%v)",
			gamma)
	}
}

func TestActionStaysWithinBounds(t *testing.T) {
	driver, _ := newTestLearner(t, NewActionGradient(3, 1e-8))

	for i := 0; i < 30; i++ {
		if _, err := driver.Step(stepEpoch(0.1, 1.0)); err != nil {
			t.Fatal(err)
		}
		a := driver.Action()
		if a.AtVec(0) < -1 || a.AtVec(0) > 1 {
			t.Fatalf("action %v escaped bounds at step %d", a.AtVec(0), i)
		}
	}
}

func TestNewEpisodeClearsLearnerState(t *testing.T) {
	driver, learner := newTestLearner(t, nil)

	for i := 0; i < 5; i++ {
		if _, err := driver.Step(stepEpoch(0.1, 1.0)); err != nil {
			t.Fatal(err)
		}
	}
	driver.Signal(rl.SignalReset)

	if learner.hasPrev {
		t.Error("new episode kept the previous value estimate")
	}
	if mat.Norm(learner.prevDelta, 2) != 0 {
		t.Error("new episode kept the previous action update")
	}
}

// fixedCritic scores an input by a fixed linear form, for testing
// selectors in isolation
type fixedCritic struct {
	weights *mat.VecDense
}

func (f *fixedCritic) InputDim() int { return f.weights.Len() }

func (f *fixedCritic) Eval(u *mat.VecDense) (float64, error) {
	return mat.Dot(f.weights, u), nil
}

func (f *fixedCritic) Deriv() (*mat.VecDense, error) {
	return mat.VecDenseCopyOf(f.weights), nil
}

func (f *fixedCritic) Simulate(u *mat.VecDense) (float64, *mat.VecDense,
	error) {
	return mat.Dot(f.weights, u), mat.VecDenseCopyOf(f.weights), nil
}

func (f *fixedCritic) TrainLast(target float64) error { return nil }

func (f *fixedCritic) Reset() {}

func (f *fixedCritic) SaveState(enc *gob.Encoder) error { return nil }

func (f *fixedCritic) LoadState(dec *gob.Decoder) error { return nil }

func newFixedLearner(t *testing.T, selector ActionSelector,
	weights []float64) (*rl.ActorCritic, *ADHDP) {
	t.Helper()
	driver, err := rl.NewActorCritic(&scalarPlant{}, newScalarPolicy(),
		rl.Const(0.1), rl.Const(0.9), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	critic := &fixedCritic{weights: mat.NewVecDense(len(weights), weights)}
	learner, err := New(driver, critic, selector)
	if err != nil {
		t.Fatal(err)
	}
	return driver, learner
}

func TestActionGradientFollowsDerivative(t *testing.T) {
	// J rises with the action, so the action must increase
	driver, _ := newFixedLearner(t, NewActionGradient(1, 0),
		[]float64{0, 1})

	before := driver.Action().AtVec(0)
	if _, err := driver.Step(stepEpoch(0.1, 1.0)); err != nil {
		t.Fatal(err)
	}
	after := driver.Action().AtVec(0)

	if after <= before {
		t.Errorf("action did not follow the gradient \n\twant(> %v)"+
			"\n\thave(%v)", before, after)
	}
}

func TestBruteForcePicksBestCandidate(t *testing.T) {
	candidates := []*mat.VecDense{
		mat.NewVecDense(1, []float64{-0.5}),
		mat.NewVecDense(1, []float64{0.0}),
		mat.NewVecDense(1, []float64{0.75}),
	}
	selector, err := NewActionBruteForce(candidates)
	if err != nil {
		t.Fatal(err)
	}

	// J rises with the action, so the largest candidate wins
	driver, _ := newFixedLearner(t, selector, []float64{0, 1})
	if _, err := driver.Step(stepEpoch(0.1, 1.0)); err != nil {
		t.Fatal(err)
	}

	if got := driver.Action().AtVec(0); got != 0.75 {
		t.Errorf("invalid selected action \n\twant(0.75)\n\thave(%v)", got)
	}
}

func TestBruteForceTiesBreakTowardCurrentAction(t *testing.T) {
	candidates := []*mat.VecDense{
		mat.NewVecDense(1, []float64{-0.5}),
		mat.NewVecDense(1, []float64{0.0}),
		mat.NewVecDense(1, []float64{0.75}),
	}
	selector, err := NewActionBruteForce(candidates)
	if err != nil {
		t.Fatal(err)
	}

	// Zero weights make the critic indifferent, so the candidate
	// closest to the current action (0.2) must win
	driver, _ := newFixedLearner(t, selector, []float64{0, 0})
	if _, err := driver.Step(stepEpoch(0.1, 1.0)); err != nil {
		t.Fatal(err)
	}

	if got := driver.Action().AtVec(0); got != 0.0 {
		t.Errorf("invalid tie-broken action \n\twant(0)\n\thave(%v)", got)
	}
}

func TestBruteForceGridCoversBounds(t *testing.T) {
	selector, err := NewActionBruteForceGrid(
		[]r1.Interval{{Min: -1, Max: 1}, {Min: 0, Max: 2}}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(selector.candidates); got != 9 {
		t.Errorf("invalid candidate count \n\twant(9)\n\thave(%d)", got)
	}
}
