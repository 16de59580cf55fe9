// Package reservoir implements a sparse echo-state network. The
// reservoir expands the critic's input into a high-dimensional state
// whose dynamics carry a fading memory of past inputs; a linear
// readout over this state approximates the value function.
package reservoir

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"math/cmplx"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Reservoir implements a leaky-integrator echo-state network:
//
//	x ← (1−λ)x + λ·tanh(W x + Win u)
//
// The recurrent weights W are sparse and scaled to a fixed spectral
// radius, which keeps the state dynamics contracting (the echo-state
// property) for radii below 1.
type Reservoir struct {
	size     int
	inputDim int

	w   *mat.Dense // size x size recurrent weights
	win *mat.Dense // size x inputDim input weights

	state *mat.VecDense
	leak  float64

	// dtanh caches 1 − tanh²(pre) of the last committed step for the
	// input-derivative computation
	dtanh *mat.VecDense

	// resetStates determines whether states are cleared between
	// episodes
	resetStates bool
}

// New returns a new Reservoir. The recurrent matrix has the given
// density of non-zero entries and is scaled so that its largest
// eigenvalue modulus equals spectralRadius. Input weights are drawn
// uniformly from [-inputScaling, inputScaling].
func New(inputDim, size int, spectralRadius, density, inputScaling,
	leakRate float64, seed uint64) (*Reservoir, error) {
	if inputDim <= 0 || size <= 0 {
		return nil, fmt.Errorf("new: non-positive reservoir dimensions")
	}
	if spectralRadius <= 0 {
		return nil, fmt.Errorf("new: spectral radius must be positive")
	}
	if density <= 0 || density > 1 {
		return nil, fmt.Errorf("new: density must be in (0, 1]")
	}
	if leakRate <= 0 || leakRate > 1 {
		return nil, fmt.Errorf("new: leak rate must be in (0, 1]")
	}

	src := rand.NewSource(seed)
	uniform := distuv.Uniform{Min: -1.0, Max: 1.0, Src: src}
	bernoulli := distuv.Bernoulli{P: density, Src: src}

	// Sparse recurrent weights
	w := mat.NewDense(size, size, nil)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			if bernoulli.Rand() == 1 {
				w.Set(i, j, uniform.Rand())
			}
		}
	}

	// Scale to the requested spectral radius
	radius, err := maxEigModulus(w)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if radius == 0 {
		return nil, fmt.Errorf("new: recurrent matrix has zero spectral " +
			"radius, increase size or density")
	}
	w.Scale(spectralRadius/radius, w)

	// Dense input weights
	win := mat.NewDense(size, inputDim, nil)
	for i := 0; i < size; i++ {
		for j := 0; j < inputDim; j++ {
			win.Set(i, j, inputScaling*uniform.Rand())
		}
	}

	return &Reservoir{
		size:        size,
		inputDim:    inputDim,
		w:           w,
		win:         win,
		state:       mat.NewVecDense(size, nil),
		dtanh:       mat.NewVecDense(size, nil),
		leak:        leakRate,
		resetStates: true,
	}, nil
}

// maxEigModulus returns the largest eigenvalue modulus of a square
// matrix
func maxEigModulus(m *mat.Dense) (float64, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(m, mat.EigenNone); !ok {
		return 0, fmt.Errorf("maxeigmodulus: eigendecomposition failed")
	}

	max := 0.0
	for _, v := range eig.Values(nil) {
		if modulus := cmplx.Abs(v); modulus > max {
			max = modulus
		}
	}
	return max, nil
}

// Size returns the number of reservoir units
func (r *Reservoir) Size() int { return r.size }

// InputDim returns the reservoir's input dimension
func (r *Reservoir) InputDim() int { return r.inputDim }

// SetResetStates determines whether Reset clears the reservoir state.
// Carrying states across episodes is useful when episodes continue the
// same trajectory.
func (r *Reservoir) SetResetStates(reset bool) { r.resetStates = reset }

// State returns a copy of the current reservoir state
func (r *Reservoir) State() *mat.VecDense {
	return mat.VecDenseCopyOf(r.state)
}

// next computes the state following the current one under input u,
// returning the new state and the tanh derivative at the
// pre-activation
func (r *Reservoir) next(u mat.Vector) (*mat.VecDense, *mat.VecDense) {
	if u.Len() != r.inputDim {
		panic(fmt.Sprintf("next: invalid input dimension \n\twant(%d)"+
			"\n\thave(%d)", r.inputDim, u.Len()))
	}

	pre := mat.NewVecDense(r.size, nil)
	pre.MulVec(r.w, r.state)

	inputDrive := mat.NewVecDense(r.size, nil)
	inputDrive.MulVec(r.win, u)
	pre.AddVec(pre, inputDrive)

	next := mat.NewVecDense(r.size, nil)
	dtanh := mat.NewVecDense(r.size, nil)
	for i := 0; i < r.size; i++ {
		t := math.Tanh(pre.AtVec(i))
		next.SetVec(i, (1-r.leak)*r.state.AtVec(i)+r.leak*t)
		dtanh.SetVec(i, 1-t*t)
	}
	return next, dtanh
}

// Step advances the reservoir under input u and returns a copy of the
// new state
func (r *Reservoir) Step(u mat.Vector) *mat.VecDense {
	next, dtanh := r.next(u)
	r.state.CopyVec(next)
	r.dtanh.CopyVec(dtanh)
	return mat.VecDenseCopyOf(next)
}

// Simulate computes the state the reservoir would reach under input u
// without committing it. Action-selection strategies probe candidate
// actions this way.
func (r *Reservoir) Simulate(u mat.Vector) *mat.VecDense {
	next, _ := r.next(u)
	return next
}

// InputDeriv returns ∂x/∂u of the last committed step:
// λ·diag(1−tanh²(pre))·Win, a Size x InputDim matrix.
func (r *Reservoir) InputDeriv() *mat.Dense {
	return r.inputDeriv(r.dtanh)
}

// SimulateInputDeriv returns the state and ∂x/∂u the reservoir would
// produce under input u, without committing the step.
func (r *Reservoir) SimulateInputDeriv(u mat.Vector) (*mat.VecDense,
	*mat.Dense) {
	next, dtanh := r.next(u)
	return next, r.inputDeriv(dtanh)
}

func (r *Reservoir) inputDeriv(dtanh *mat.VecDense) *mat.Dense {
	deriv := mat.NewDense(r.size, r.inputDim, nil)
	for i := 0; i < r.size; i++ {
		scale := r.leak * dtanh.AtVec(i)
		for j := 0; j < r.inputDim; j++ {
			deriv.Set(i, j, scale*r.win.At(i, j))
		}
	}
	return deriv
}

// Reset prepares the reservoir for a new episode, clearing the state
// if the reservoir is configured to do so
func (r *Reservoir) Reset() {
	if r.resetStates {
		r.state.Zero()
		r.dtanh.Zero()
	}
}

// GobEncode implements the gob.GobEncoder interface
func (r *Reservoir) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	for _, err := range []error{
		enc.Encode(r.size),
		enc.Encode(r.inputDim),
		enc.Encode(r.leak),
		enc.Encode(r.resetStates),
		enc.Encode(r.w),
		enc.Encode(r.win),
		enc.Encode(r.state),
		enc.Encode(r.dtanh),
	} {
		if err != nil {
			return nil, fmt.Errorf("gobencode: could not encode reservoir: %v",
				err)
		}
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (r *Reservoir) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	r.w = new(mat.Dense)
	r.win = new(mat.Dense)
	r.state = new(mat.VecDense)
	r.dtanh = new(mat.VecDense)
	for _, err := range []error{
		dec.Decode(&r.size),
		dec.Decode(&r.inputDim),
		dec.Decode(&r.leak),
		dec.Decode(&r.resetStates),
		dec.Decode(r.w),
		dec.Decode(r.win),
		dec.Decode(r.state),
		dec.Decode(r.dtanh),
	} {
		if err != nil {
			return fmt.Errorf("gobdecode: could not decode reservoir: %v", err)
		}
	}
	return nil
}
