package hdp

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/gohdp/epoch"
	"github.com/samuelfneumann/gohdp/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// ActionBruteForce selects the next action by evaluating the critic at
// a fixed set of candidate actions and taking the best one. The
// learning rate and momentum are ignored; the candidates define the
// action resolution.
type ActionBruteForce struct {
	candidates []*mat.VecDense
}

// NewActionBruteForce returns a selector over the given candidate
// actions
func NewActionBruteForce(candidates []*mat.VecDense) (*ActionBruteForce,
	error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("newactionbruteforce: no candidates")
	}
	dim := candidates[0].Len()
	for i, c := range candidates {
		if c.Len() != dim {
			return nil, fmt.Errorf("newactionbruteforce: candidate %d has "+
				"invalid dimension \n\twant(%d)\n\thave(%d)", i, dim, c.Len())
		}
	}

	copies := make([]*mat.VecDense, len(candidates))
	for i, c := range candidates {
		copies[i] = mat.VecDenseCopyOf(c)
	}
	return &ActionBruteForce{candidates: copies}, nil
}

// NewActionBruteForceGrid returns a selector over a regular grid of
// samples per dimension spanning the given bounds. The number of
// candidates grows as samples^len(bounds).
func NewActionBruteForceGrid(bounds []r1.Interval,
	samples int) (*ActionBruteForce, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("newactionbruteforcegrid: no bounds")
	}
	if samples < 2 {
		return nil, fmt.Errorf("newactionbruteforcegrid: need at least 2 "+
			"samples per dimension, got %d", samples)
	}

	axes := make([][]float64, len(bounds))
	for i, b := range bounds {
		if b.Min >= b.Max {
			return nil, fmt.Errorf("newactionbruteforcegrid: empty interval "+
				"for dimension %d", i)
		}
		axes[i] = floatutils.Linspace(b.Min, b.Max, samples)
	}

	var candidates []*mat.VecDense
	point := make([]float64, len(bounds))
	var build func(dim int)
	build = func(dim int) {
		if dim == len(bounds) {
			candidates = append(candidates,
				mat.NewVecDense(len(point), append([]float64{}, point...)))
			return
		}
		for _, v := range axes[dim] {
			point[dim] = v
			build(dim + 1)
		}
	}
	build(0)

	return &ActionBruteForce{candidates: candidates}, nil
}

// NextAction evaluates every candidate and returns the one with the
// highest estimated value. Ties break toward the candidate closest to
// the current action, so an indifferent critic never jerks the robot
// across the action space.
func (a *ActionBruteForce) NextAction(d *ADHDP, ep *epoch.Epoch, action,
	deriv *mat.VecDense, alpha, momentum float64) (*mat.VecDense, error) {
	best := -1
	bestJ := 0.0
	bestDist := 0.0
	for i, c := range a.candidates {
		j, _, err := d.simulateAction(ep, c)
		if err != nil {
			return nil, fmt.Errorf("nextaction: %v", err)
		}
		dist := actionDistance(c, action)
		if best < 0 || j > bestJ || (j == bestJ && dist < bestDist) {
			best = i
			bestJ = j
			bestDist = dist
		}
	}
	return mat.VecDenseCopyOf(a.candidates[best]), nil
}

// actionDistance returns the Euclidean distance between two actions
func actionDistance(a, b *mat.VecDense) float64 {
	dist := 0.0
	for i := 0; i < a.Len(); i++ {
		diff := a.AtVec(i) - b.AtVec(i)
		dist += diff * diff
	}
	return math.Sqrt(dist)
}
