// Package solver wraps Gorgonia Solvers behind configurations that can
// be validated and stored in experiment files.
package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "Adam"
	Vanilla Type = "Vanilla"
)

// Config implements a Gorgonia Solver configuration and can be used to
// create the Gorgonia Solvers it describes.
type Config interface {
	Create() G.Solver

	// ValidType returns whether a specific Solver type can be created
	// with the Config
	ValidType(Type) bool
}

// Solver wraps a Gorgonia Solver together with the configuration that
// created it
type Solver struct {
	G.Solver
	Type
	Config
}

// newSolver returns a new solver with the given type and configuration
func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newsolver: invalid solver type %v for "+
			"configuration %T", t, c)
	}
	solver := Solver{Type: t, Config: c}
	solver.Solver = solver.Config.Create()

	return &solver, nil
}

// FromName returns a Solver of the named type with the given step size.
// Remaining hyperparameters take their defaults. Experiment files
// select solvers this way.
func FromName(name string, stepSize float64) (*Solver, error) {
	switch Type(name) {
	case Vanilla:
		return NewVanilla(stepSize, 1, 0)
	case Adam:
		return NewDefaultAdam(stepSize, 1)
	}
	return nil, fmt.Errorf("fromname: no such solver type %q", name)
}
