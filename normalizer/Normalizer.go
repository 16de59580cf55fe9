// Package normalizer implements per-channel normalization of sensor
// and action values. Critic inputs should be roughly zero-centered and
// unit-scaled for the reservoir to operate in its nonlinear regime.
package normalizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Param holds the offset and scale of a single channel. A value x is
// normalized as (x - Offset) / Scale.
type Param struct {
	Offset float64
	Scale  float64
}

// Normalizer maps channel names to normalization parameters. Channels
// without parameters pass through unchanged, so a Normalizer can be
// populated for only the channels a plant actually reads.
type Normalizer struct {
	params map[string]Param
}

// New returns an empty Normalizer
func New() *Normalizer {
	return &Normalizer{params: make(map[string]Param)}
}

// Set sets the offset and scale of a channel
func (n *Normalizer) Set(key string, offset, scale float64) error {
	if scale == 0 {
		return fmt.Errorf("set: zero scale for channel %q", key)
	}
	n.params[key] = Param{Offset: offset, Scale: scale}
	return nil
}

// Fit estimates a channel's parameters from samples, using the sample
// mean as offset and the sample standard deviation as scale. Constant
// samples get unit scale.
func (n *Normalizer) Fit(key string, samples []float64) error {
	if len(samples) == 0 {
		return fmt.Errorf("fit: no samples for channel %q", key)
	}
	mean, std := stat.MeanStdDev(samples, nil)
	if std == 0 || math.IsNaN(std) {
		std = 1.0
	}
	n.params[key] = Param{Offset: mean, Scale: std}
	return nil
}

// Has returns whether parameters exist for a channel
func (n *Normalizer) Has(key string) bool {
	_, ok := n.params[key]
	return ok
}

// Param returns the parameters of a channel. Channels without
// parameters report the identity transform.
func (n *Normalizer) Param(key string) Param {
	if p, ok := n.params[key]; ok {
		return p
	}
	return Param{Offset: 0, Scale: 1}
}

// Normalize normalizes a single value of a channel
func (n *Normalizer) Normalize(key string, x float64) float64 {
	p := n.Param(key)
	return (x - p.Offset) / p.Scale
}

// Denormalize inverts Normalize for a single value of a channel
func (n *Normalizer) Denormalize(key string, x float64) float64 {
	p := n.Param(key)
	return x*p.Scale + p.Offset
}

// NormalizeSlice normalizes samples of a channel into a new slice
func (n *Normalizer) NormalizeSlice(key string, xs []float64) []float64 {
	p := n.Param(key)
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = (x - p.Offset) / p.Scale
	}
	return out
}

// NormalizeVec normalizes a vector of values of a channel into a new
// vector. All elements share the channel's parameters, matching the
// treatment of a multi-dimensional action under a single name.
func (n *Normalizer) NormalizeVec(key string, v mat.Vector) *mat.VecDense {
	p := n.Param(key)
	out := mat.NewVecDense(v.Len(), nil)
	for i := 0; i < v.Len(); i++ {
		out.SetVec(i, (v.AtVec(i)-p.Offset)/p.Scale)
	}
	return out
}

// DenormalizeVec inverts NormalizeVec
func (n *Normalizer) DenormalizeVec(key string, v mat.Vector) *mat.VecDense {
	p := n.Param(key)
	out := mat.NewVecDense(v.Len(), nil)
	for i := 0; i < v.Len(); i++ {
		out.SetVec(i, v.AtVec(i)*p.Scale+p.Offset)
	}
	return out
}
