package rl

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Momentum computes the coefficient blending the previous action
// update into the new one:
//
//	Δa ← m·Δa_prev + α·∂J/∂a
//
// Smoothing the action trajectory keeps a physical plant from being
// driven with abruptly changing setpoints while the critic estimate is
// still noisy.
type Momentum interface {
	// Coefficient returns the blending coefficient for the given
	// action at the given control step
	Coefficient(action mat.Vector, step int) float64
}

// ConstMomentum applies the same coefficient at every step
type ConstMomentum struct {
	coefficient float64
}

// NewConstMomentum returns a Momentum with a fixed coefficient
func NewConstMomentum(coefficient float64) *ConstMomentum {
	return &ConstMomentum{coefficient: coefficient}
}

// Coefficient returns the fixed blending coefficient
func (c *ConstMomentum) Coefficient(action mat.Vector, step int) float64 {
	return c.coefficient
}

// RadialMomentum scales its coefficient down linearly with the
// action's distance from a centre point, reaching zero at the given
// radius. Actions inside the nominal operating region are smoothed
// strongly; actions near the edge of the legal region react to the
// critic immediately.
type RadialMomentum struct {
	coefficient float64
	center      *mat.VecDense
	radius      float64
}

// NewRadialMomentum returns a RadialMomentum with maximum coefficient
// at the centre, decaying to zero at radius
func NewRadialMomentum(coefficient float64, center *mat.VecDense,
	radius float64) *RadialMomentum {
	if radius <= 0 {
		panic("newradialmomentum: radius must be positive")
	}
	return &RadialMomentum{
		coefficient: coefficient,
		center:      mat.VecDenseCopyOf(center),
		radius:      radius,
	}
}

// Coefficient returns the radially decayed blending coefficient
func (r *RadialMomentum) Coefficient(action mat.Vector, step int) float64 {
	if action.Len() != r.center.Len() {
		panic("coefficient: action dimension does not match centre")
	}

	dist := 0.0
	for i := 0; i < action.Len(); i++ {
		diff := action.AtVec(i) - r.center.AtVec(i)
		dist += diff * diff
	}
	dist = math.Sqrt(dist)

	if dist >= r.radius {
		return 0
	}
	return r.coefficient * (1 - dist/r.radius)
}
