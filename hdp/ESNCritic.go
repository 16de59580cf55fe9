package hdp

import (
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/gohdp/reservoir"
	"github.com/samuelfneumann/gohdp/rls"
	"github.com/samuelfneumann/gohdp/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// ESNCritic approximates J with a linear readout over echo-state
// network features. The raw input is appended to the reservoir state
// before the readout, which keeps ∂J/∂u well conditioned even when the
// reservoir barely reacts to a particular input direction.
type ESNCritic struct {
	res     *reservoir.Reservoir
	readout *rls.StabilizedRLS

	inputDim int

	// Features of the latest and the preceding committed Eval
	curFeat  *mat.VecDense
	prevFeat *mat.VecDense
}

// NewESNCritic returns a critic with a fresh reservoir of the given
// size and a stabilized recursive least-squares readout. The readout
// sees reservoir state and input side by side.
func NewESNCritic(inputDim, size int, spectralRadius, density, inputScaling,
	leakRate, lambda, delta float64, seed uint64) (*ESNCritic, error) {
	res, err := reservoir.New(inputDim, size, spectralRadius, density,
		inputScaling, leakRate, seed)
	if err != nil {
		return nil, fmt.Errorf("newesncritic: %v", err)
	}

	readout, err := rls.New(size+inputDim, 1, lambda, delta)
	if err != nil {
		return nil, fmt.Errorf("newesncritic: %v", err)
	}

	return &ESNCritic{
		res:      res,
		readout:  readout,
		inputDim: inputDim,
	}, nil
}

// Reservoir returns the critic's reservoir
func (e *ESNCritic) Reservoir() *reservoir.Reservoir { return e.res }

// InputDim returns the expected input dimension
func (e *ESNCritic) InputDim() int { return e.inputDim }

// Eval commits an evaluation of input u, advancing the reservoir
func (e *ESNCritic) Eval(u *mat.VecDense) (float64, error) {
	if u.Len() != e.inputDim {
		return 0, fmt.Errorf("eval: invalid input dimension \n\twant(%d)"+
			"\n\thave(%d)", e.inputDim, u.Len())
	}

	state := e.res.Step(u)
	feat := matutils.VecConcat(state, u)

	e.prevFeat = e.curFeat
	e.curFeat = feat

	return e.readout.PredictScalar(feat), nil
}

// Deriv returns ∂J/∂u at the input of the last committed Eval. With
// readout weights W = [Wx Wu] over [state; input] features,
//
//	∂J/∂u = Wx·∂x/∂u + Wu
func (e *ESNCritic) Deriv() (*mat.VecDense, error) {
	if e.curFeat == nil {
		return nil, fmt.Errorf("deriv: no committed evaluation")
	}
	return e.deriv(e.res.InputDeriv()), nil
}

// Simulate evaluates a candidate input without advancing the reservoir
func (e *ESNCritic) Simulate(u *mat.VecDense) (float64, *mat.VecDense,
	error) {
	if u.Len() != e.inputDim {
		return 0, nil, fmt.Errorf("simulate: invalid input dimension "+
			"\n\twant(%d)\n\thave(%d)", e.inputDim, u.Len())
	}

	state, stateDeriv := e.res.SimulateInputDeriv(u)
	feat := matutils.VecConcat(state, u)

	return e.readout.PredictScalar(feat), e.deriv(stateDeriv), nil
}

// deriv folds a reservoir input derivative into the full ∂J/∂u
func (e *ESNCritic) deriv(stateDeriv *mat.Dense) *mat.VecDense {
	weights := e.readout.Weights()
	size := e.res.Size()

	out := mat.NewVecDense(e.inputDim, nil)
	for j := 0; j < e.inputDim; j++ {
		v := weights.At(0, size+j)
		for i := 0; i < size; i++ {
			v += weights.At(0, i) * stateDeriv.At(i, j)
		}
		out.SetVec(j, v)
	}
	return out
}

// TrainLast trains the features of the previous committed Eval toward
// target
func (e *ESNCritic) TrainLast(target float64) error {
	if e.prevFeat == nil {
		return nil
	}
	e.readout.TrainScalar(e.prevFeat, target)
	return nil
}

// Reset clears the critic's trajectory state for a new episode
func (e *ESNCritic) Reset() {
	e.res.Reset()
	e.curFeat = nil
	e.prevFeat = nil
}

// SaveState persists the critic through a gob stream
func (e *ESNCritic) SaveState(enc *gob.Encoder) error {
	for _, err := range []error{
		enc.Encode(e.inputDim),
		enc.Encode(e.res),
		enc.Encode(e.readout),
	} {
		if err != nil {
			return fmt.Errorf("savestate: could not encode critic: %v", err)
		}
	}
	return nil
}

// LoadState restores the critic from a gob stream
func (e *ESNCritic) LoadState(dec *gob.Decoder) error {
	e.res = new(reservoir.Reservoir)
	e.readout = new(rls.StabilizedRLS)
	for _, err := range []error{
		dec.Decode(&e.inputDim),
		dec.Decode(e.res),
		dec.Decode(e.readout),
	} {
		if err != nil {
			return fmt.Errorf("loadstate: could not decode critic: %v", err)
		}
	}
	e.curFeat = nil
	e.prevFeat = nil
	return nil
}
