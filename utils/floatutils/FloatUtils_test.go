package floatutils

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	if got := Clip(5, -1, 1); got != 1 {
		t.Errorf("invalid clipped value \n\twant(1)\n\thave(%v)", got)
	}
	if got := Clip(-5, -1, 1); got != -1 {
		t.Errorf("invalid clipped value \n\twant(-1)\n\thave(%v)", got)
	}
	if got := Clip(0.5, -1, 1); got != 0.5 {
		t.Errorf("invalid unclipped value \n\twant(0.5)\n\thave(%v)", got)
	}
}

func TestClipInterval(t *testing.T) {
	if got := ClipInterval(3, r1.Interval{Min: 0, Max: 2}); got != 2 {
		t.Errorf("invalid clipped value \n\twant(2)\n\thave(%v)", got)
	}
}

func TestMinMax(t *testing.T) {
	if got := Min(3, -1, 2); got != -1 {
		t.Errorf("invalid minimum \n\twant(-1)\n\thave(%v)", got)
	}
	if got := Max(3, -1, 2); got != 3 {
		t.Errorf("invalid maximum \n\twant(3)\n\thave(%v)", got)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	if len(got) != len(want) {
		t.Fatalf("invalid length \n\twant(%d)\n\thave(%d)", len(want),
			len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("invalid point at %d \n\twant(%v)\n\thave(%v)", i,
				want[i], got[i])
		}
	}
}

func TestLinspaceSinglePoint(t *testing.T) {
	got := Linspace(2, 9, 1)
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("invalid single point %v", got)
	}
}
