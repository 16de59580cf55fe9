// Package rls implements online regularized recursive least squares.
// The critic's readout is trained with it one sample at a time, which
// is what lets the actor-critic learn within a single episode.
package rls

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StabilizedRLS performs exponentially-weighted recursive least
// squares with a bias input. The inverse covariance estimate is
// symmetrized after every update; plain RLS lets rounding errors
// accumulate asymmetrically and eventually diverges on long runs.
type StabilizedRLS struct {
	inputDim  int
	outputDim int
	lambda    float64 // forgetting factor in (0, 1]

	weights *mat.Dense // outputDim x (inputDim+1), last column is bias
	p       *mat.Dense // (inputDim+1) x (inputDim+1) inverse covariance
}

// New returns a new StabilizedRLS estimator. The forgetting factor
// lambda must be in (0, 1]; delta scales the initial inverse
// covariance and acts as the inverse of the ridge penalty.
func New(inputDim, outputDim int, lambda, delta float64) (*StabilizedRLS,
	error) {
	if inputDim <= 0 || outputDim <= 0 {
		return nil, fmt.Errorf("new: non-positive dimensions")
	}
	if lambda <= 0 || lambda > 1 {
		return nil, fmt.Errorf("new: forgetting factor must be in (0, 1]")
	}
	if delta <= 0 {
		return nil, fmt.Errorf("new: delta must be positive")
	}

	augmented := inputDim + 1
	p := mat.NewDense(augmented, augmented, nil)
	for i := 0; i < augmented; i++ {
		p.Set(i, i, delta)
	}

	return &StabilizedRLS{
		inputDim:  inputDim,
		outputDim: outputDim,
		lambda:    lambda,
		weights:   mat.NewDense(outputDim, augmented, nil),
		p:         p,
	}, nil
}

// InputDim returns the expected input dimension, excluding bias
func (s *StabilizedRLS) InputDim() int { return s.inputDim }

// OutputDim returns the output dimension
func (s *StabilizedRLS) OutputDim() int { return s.outputDim }

// augment appends the bias input to x
func (s *StabilizedRLS) augment(x mat.Vector) *mat.VecDense {
	if x.Len() != s.inputDim {
		panic(fmt.Sprintf("augment: invalid input dimension \n\twant(%d)"+
			"\n\thave(%d)", s.inputDim, x.Len()))
	}
	u := mat.NewVecDense(s.inputDim+1, nil)
	for i := 0; i < s.inputDim; i++ {
		u.SetVec(i, x.AtVec(i))
	}
	u.SetVec(s.inputDim, 1.0)
	return u
}

// Predict returns the current estimate for input x
func (s *StabilizedRLS) Predict(x mat.Vector) *mat.VecDense {
	u := s.augment(x)
	out := mat.NewVecDense(s.outputDim, nil)
	out.MulVec(s.weights, u)
	return out
}

// Train performs one recursive least-squares update toward target d
func (s *StabilizedRLS) Train(x mat.Vector, d mat.Vector) {
	if d.Len() != s.outputDim {
		panic(fmt.Sprintf("train: invalid target dimension \n\twant(%d)"+
			"\n\thave(%d)", s.outputDim, d.Len()))
	}
	u := s.augment(x)
	n := u.Len()

	// k = P u / (λ + uᵀ P u)
	pu := mat.NewVecDense(n, nil)
	pu.MulVec(s.p, u)
	denom := s.lambda + mat.Dot(u, pu)
	k := mat.NewVecDense(n, nil)
	k.ScaleVec(1/denom, pu)

	// W += (d − W u) kᵀ
	err := mat.NewVecDense(s.outputDim, nil)
	err.MulVec(s.weights, u)
	err.SubVec(d, err)
	update := mat.NewDense(s.outputDim, n, nil)
	update.Outer(1.0, err, k)
	s.weights.Add(s.weights, update)

	// P = (P − k uᵀ P) / λ
	utp := mat.NewVecDense(n, nil)
	utp.MulVec(s.p.T(), u)
	kutp := mat.NewDense(n, n, nil)
	kutp.Outer(1.0, k, utp)
	s.p.Sub(s.p, kutp)
	s.p.Scale(1/s.lambda, s.p)

	// Symmetrize: P = (P + Pᵀ) / 2
	pt := mat.NewDense(n, n, nil)
	pt.CloneFrom(s.p.T())
	s.p.Add(s.p, pt)
	s.p.Scale(0.5, s.p)
}

// TrainScalar is a convenience wrapper for single-output estimators
func (s *StabilizedRLS) TrainScalar(x mat.Vector, d float64) {
	s.Train(x, mat.NewVecDense(1, []float64{d}))
}

// PredictScalar is a convenience wrapper for single-output estimators
func (s *StabilizedRLS) PredictScalar(x mat.Vector) float64 {
	return s.Predict(x).AtVec(0)
}

// Weights returns the readout weights excluding the bias column, as
// an outputDim x inputDim matrix. The critic differentiates its value
// estimate through these.
func (s *StabilizedRLS) Weights() *mat.Dense {
	out := mat.NewDense(s.outputDim, s.inputDim, nil)
	out.Copy(s.weights.Slice(0, s.outputDim, 0, s.inputDim))
	return out
}

// Bias returns the bias weights
func (s *StabilizedRLS) Bias() *mat.VecDense {
	bias := mat.NewVecDense(s.outputDim, nil)
	for i := 0; i < s.outputDim; i++ {
		bias.SetVec(i, s.weights.At(i, s.inputDim))
	}
	return bias
}

// GobEncode implements the gob.GobEncoder interface
func (s *StabilizedRLS) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	for _, err := range []error{
		enc.Encode(s.inputDim),
		enc.Encode(s.outputDim),
		enc.Encode(s.lambda),
		enc.Encode(s.weights),
		enc.Encode(s.p),
	} {
		if err != nil {
			return nil, fmt.Errorf("gobencode: could not encode readout: %v",
				err)
		}
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (s *StabilizedRLS) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	s.weights = new(mat.Dense)
	s.p = new(mat.Dense)
	for _, err := range []error{
		dec.Decode(&s.inputDim),
		dec.Decode(&s.outputDim),
		dec.Decode(&s.lambda),
		dec.Decode(s.weights),
		dec.Decode(s.p),
	} {
		if err != nil {
			return fmt.Errorf("gobdecode: could not decode readout: %v", err)
		}
	}
	return nil
}
