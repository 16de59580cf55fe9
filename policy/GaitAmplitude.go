package policy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// GaitAmplitude implements a sinusoidal gait whose per-actuator
// amplitudes are the action. Each actuator i follows
//
//	target_i(t) = a_i * sin(2π * frequency * t + phaseOffset_i)
//
// with the phase carried across control steps so that changing the
// amplitudes never makes the gait jump.
type GaitAmplitude struct {
	initial     *mat.VecDense
	current     *mat.VecDense
	bounds      []r1.Interval
	frequency   float64
	phaseOffset []float64
	phase       float64
	sampleSec   float64
}

// NewGaitAmplitude returns a new GaitAmplitude policy. The initial
// amplitudes determine the action dimension; each amplitude is bounded
// by the corresponding interval. The frequency is in Hz and sampleMS
// is the actuator sampling period in milliseconds.
func NewGaitAmplitude(initial []float64, bounds []r1.Interval,
	phaseOffset []float64, frequency float64,
	sampleMS int) (*GaitAmplitude, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("newgaitamplitude: no actuators")
	}
	if len(bounds) != len(initial) {
		return nil, fmt.Errorf("newgaitamplitude: invalid number of bounds"+
			"\n\twant(%d)\n\thave(%d)", len(initial), len(bounds))
	}
	if len(phaseOffset) != len(initial) {
		return nil, fmt.Errorf("newgaitamplitude: invalid number of phase "+
			"offsets \n\twant(%d)\n\thave(%d)", len(initial), len(phaseOffset))
	}
	if frequency <= 0 {
		return nil, fmt.Errorf("newgaitamplitude: frequency must be positive")
	}
	if sampleMS <= 0 {
		return nil, fmt.Errorf("newgaitamplitude: sampleMS must be positive")
	}
	for i, a := range initial {
		if a < bounds[i].Min || a > bounds[i].Max {
			return nil, fmt.Errorf("newgaitamplitude: initial amplitude %v "+
				"outside bounds %v", a, bounds[i])
		}
	}

	init := mat.NewVecDense(len(initial), initial)
	policy := &GaitAmplitude{
		initial:     init,
		current:     mat.VecDenseCopyOf(init),
		bounds:      bounds,
		frequency:   frequency,
		phaseOffset: phaseOffset,
		sampleSec:   float64(sampleMS) / 1000.0,
	}
	return policy, nil
}

// InitialAction returns the initial gait amplitudes
func (g *GaitAmplitude) InitialAction() *mat.VecDense {
	return mat.VecDenseCopyOf(g.initial)
}

// ActionSpaceDim returns the number of actuators
func (g *GaitAmplitude) ActionSpaceDim() int { return g.initial.Len() }

// ActionBounds returns the legal amplitude range of each actuator
func (g *GaitAmplitude) ActionBounds() []r1.Interval { return g.bounds }

// Update commits new gait amplitudes
func (g *GaitAmplitude) Update(action *mat.VecDense) {
	if action.Len() != g.current.Len() {
		panic(fmt.Sprintf("update: invalid action dimension \n\twant(%d)"+
			"\n\thave(%d)", g.current.Len(), action.Len()))
	}
	g.current.CopyVec(action)
}

// MotorTargets returns the actuator trajectory for one control step
func (g *GaitAmplitude) MotorTargets(samples int) *mat.Dense {
	actuators := g.current.Len()
	targets := mat.NewDense(samples, actuators, nil)

	for k := 0; k < samples; k++ {
		g.phase += 2 * math.Pi * g.frequency * g.sampleSec
		for i := 0; i < actuators; i++ {
			targets.Set(k, i,
				g.current.AtVec(i)*math.Sin(g.phase+g.phaseOffset[i]))
		}
	}

	// Keep the phase in [0, 2π) so long runs do not lose precision
	g.phase = math.Mod(g.phase, 2*math.Pi)

	return targets
}

// Reset restores the initial amplitudes and phase
func (g *GaitAmplitude) Reset() {
	g.current.CopyVec(g.initial)
	g.phase = 0
}
