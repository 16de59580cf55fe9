package matutils

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestVecClipIntervals(t *testing.T) {
	v := mat.NewVecDense(3, []float64{-2, 0.5, 7})
	VecClipIntervals(v, []r1.Interval{
		{Min: -1, Max: 1},
		{Min: 0, Max: 1},
		{Min: -5, Max: 5},
	})

	want := []float64{-1, 0.5, 5}
	for i, w := range want {
		if v.AtVec(i) != w {
			t.Errorf("invalid clipped value at %d \n\twant(%v)\n\thave(%v)",
				i, w, v.AtVec(i))
		}
	}
}

func TestVecClipIntervalsPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for mismatched lengths")
		}
	}()
	VecClipIntervals(mat.NewVecDense(2, nil), []r1.Interval{{Min: 0, Max: 1}})
}

func TestVecConcat(t *testing.T) {
	a := mat.NewVecDense(2, []float64{1, 2})
	b := mat.NewVecDense(1, []float64{3})

	got := VecConcat(a, b)
	if got.Len() != 3 {
		t.Fatalf("invalid length \n\twant(3)\n\thave(%d)", got.Len())
	}
	for i, w := range []float64{1, 2, 3} {
		if got.AtVec(i) != w {
			t.Errorf("invalid element at %d \n\twant(%v)\n\thave(%v)", i, w,
				got.AtVec(i))
		}
	}
}

func TestMaxVec(t *testing.T) {
	v := mat.NewVecDense(4, []float64{1, 9, 9, 2})
	if got := MaxVec(v); got != 1 {
		t.Errorf("invalid max index \n\twant(1)\n\thave(%d)", got)
	}
}
