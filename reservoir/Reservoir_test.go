package reservoir

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func newTestReservoir(t *testing.T) *Reservoir {
	t.Helper()
	r, err := New(3, 50, 0.9, 0.2, 1.0, 0.5, 13)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestStateStaysBounded(t *testing.T) {
	r := newTestReservoir(t)

	uniform := distuv.Uniform{Min: -5, Max: 5, Src: rand.NewSource(3)}
	for i := 0; i < 1000; i++ {
		u := mat.NewVecDense(3, []float64{
			uniform.Rand(), uniform.Rand(), uniform.Rand(),
		})
		state := r.Step(u)
		for j := 0; j < state.Len(); j++ {
			if math.Abs(state.AtVec(j)) > 1.0 {
				t.Fatalf("state element %v escaped [-1, 1] at step %d",
					state.AtVec(j), i)
			}
		}
	}
}

func TestSimulateDoesNotCommit(t *testing.T) {
	r := newTestReservoir(t)

	u := mat.NewVecDense(3, []float64{0.5, -0.2, 0.1})
	r.Step(u)
	before := r.State()

	r.Simulate(mat.NewVecDense(3, []float64{1.0, 1.0, 1.0}))

	after := r.State()
	if !mat.EqualApprox(before, after, 0) {
		t.Error("simulate modified the committed state")
	}
}

func TestSimulateMatchesStep(t *testing.T) {
	r := newTestReservoir(t)

	u := mat.NewVecDense(3, []float64{0.3, 0.6, -0.4})
	simulated := r.Simulate(u)
	committed := r.Step(u)

	if !mat.EqualApprox(simulated, committed, 1e-12) {
		t.Error("simulated state differs from committed state")
	}
}

func TestInputDerivDimensions(t *testing.T) {
	r := newTestReservoir(t)
	r.Step(mat.NewVecDense(3, []float64{0.1, 0.2, 0.3}))

	rows, cols := r.InputDeriv().Dims()
	if rows != r.Size() || cols != r.InputDim() {
		t.Errorf("invalid derivative dimensions \n\twant(%dx%d)"+
			"\n\thave(%dx%d)", r.Size(), r.InputDim(), rows, cols)
	}
}

func TestResetClearsState(t *testing.T) {
	r := newTestReservoir(t)
	r.Step(mat.NewVecDense(3, []float64{1, 1, 1}))
	r.Reset()

	state := r.State()
	for i := 0; i < state.Len(); i++ {
		if state.AtVec(i) != 0 {
			t.Fatal("reset did not clear the state")
		}
	}
}

func TestResetKeepsStateWhenConfigured(t *testing.T) {
	r := newTestReservoir(t)
	r.SetResetStates(false)
	before := r.Step(mat.NewVecDense(3, []float64{1, 1, 1}))
	r.Reset()

	if !mat.EqualApprox(before, r.State(), 0) {
		t.Error("reset cleared a reservoir configured to keep its state")
	}
}

func TestGobRoundTrip(t *testing.T) {
	r := newTestReservoir(t)
	u := mat.NewVecDense(3, []float64{0.2, -0.9, 0.5})
	r.Step(u)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		t.Fatal(err)
	}
	decoded := new(Reservoir)
	if err := gob.NewDecoder(&buf).Decode(decoded); err != nil {
		t.Fatal(err)
	}

	next := mat.NewVecDense(3, []float64{0.1, 0.1, 0.1})
	if !mat.EqualApprox(r.Step(next), decoded.Step(next), 1e-12) {
		t.Error("decoded reservoir diverges from original")
	}
}
