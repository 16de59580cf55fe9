package rl

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestConstMomentum(t *testing.T) {
	m := NewConstMomentum(0.4)
	a := mat.NewVecDense(2, []float64{10, -10})

	if got := m.Coefficient(a, 0); got != 0.4 {
		t.Errorf("invalid coefficient \n\twant(0.4)\n\thave(%v)", got)
	}
	if got := m.Coefficient(a, 500); got != 0.4 {
		t.Errorf("coefficient changed with step \n\twant(0.4)\n\thave(%v)",
			got)
	}
}

func TestRadialMomentumDecaysLinearly(t *testing.T) {
	center := mat.NewVecDense(2, []float64{0, 0})
	m := NewRadialMomentum(0.8, center, 2.0)

	atCenter := m.Coefficient(center, 0)
	if atCenter != 0.8 {
		t.Errorf("invalid centre coefficient \n\twant(0.8)\n\thave(%v)",
			atCenter)
	}

	halfway := mat.NewVecDense(2, []float64{1, 0})
	if got := m.Coefficient(halfway, 0); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("invalid halfway coefficient \n\twant(0.4)\n\thave(%v)", got)
	}

	outside := mat.NewVecDense(2, []float64{3, 0})
	if got := m.Coefficient(outside, 0); got != 0 {
		t.Errorf("invalid outside coefficient \n\twant(0)\n\thave(%v)", got)
	}
}

func TestRadialMomentumRejectsNonPositiveRadius(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for non-positive radius")
		}
	}()
	NewRadialMomentum(0.5, mat.NewVecDense(1, []float64{0}), 0)
}
