package normalizer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNormalizeDenormalizeInverse(t *testing.T) {
	n := New()
	if err := n.Set("speed", 2.0, 0.5); err != nil {
		t.Fatal(err)
	}

	x := 3.7
	if got := n.Denormalize("speed", n.Normalize("speed", x)); math.Abs(
		got-x) > 1e-12 {
		t.Errorf("denormalize did not invert normalize \n\twant(%v)"+
			"\n\thave(%v)", x, got)
	}
}

func TestUnknownChannelIsIdentity(t *testing.T) {
	n := New()
	if got := n.Normalize("unknown", 1.23); got != 1.23 {
		t.Errorf("unknown channel not identity \n\twant(1.23)\n\thave(%v)",
			got)
	}
}

func TestZeroScaleRejected(t *testing.T) {
	n := New()
	if err := n.Set("speed", 0, 0); err == nil {
		t.Error("expected an error for zero scale")
	}
}

func TestFitEstimatesMeanAndStd(t *testing.T) {
	n := New()
	samples := []float64{1, 2, 3, 4, 5}
	if err := n.Fit("heading", samples); err != nil {
		t.Fatal(err)
	}

	p := n.Param("heading")
	if math.Abs(p.Offset-3.0) > 1e-12 {
		t.Errorf("invalid fitted offset \n\twant(3)\n\thave(%v)", p.Offset)
	}
	if p.Scale <= 0 {
		t.Errorf("non-positive fitted scale %v", p.Scale)
	}
}

func TestFitConstantSamplesGetUnitScale(t *testing.T) {
	n := New()
	if err := n.Fit("flat", []float64{2, 2, 2}); err != nil {
		t.Fatal(err)
	}
	if got := n.Param("flat").Scale; got != 1.0 {
		t.Errorf("constant channel scale \n\twant(1)\n\thave(%v)", got)
	}
}

func TestNormalizeVec(t *testing.T) {
	n := New()
	if err := n.Set("a_curr", 1.0, 2.0); err != nil {
		t.Fatal(err)
	}

	v := mat.NewVecDense(2, []float64{3.0, 5.0})
	got := n.NormalizeVec("a_curr", v)
	if got.AtVec(0) != 1.0 || got.AtVec(1) != 2.0 {
		t.Errorf("invalid normalized vector %v", got.RawVector().Data)
	}

	back := n.DenormalizeVec("a_curr", got)
	if !mat.EqualApprox(v, back, 1e-12) {
		t.Error("denormalizevec did not invert normalizevec")
	}
}
