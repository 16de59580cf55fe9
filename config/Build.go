package config

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/gohdp/hdp"
	"github.com/samuelfneumann/gohdp/network"
	"github.com/samuelfneumann/gohdp/normalizer"
	"github.com/samuelfneumann/gohdp/plant"
	"github.com/samuelfneumann/gohdp/policy"
	"github.com/samuelfneumann/gohdp/rl"
	"github.com/samuelfneumann/gohdp/robot"
	"github.com/samuelfneumann/gohdp/solver"
)

// BuildVehicle builds the configured simulated robot
func (c *Config) BuildVehicle() (*robot.Vehicle, error) {
	v := c.Vehicle
	vehicle, err := robot.NewVehicle(v.MaxSpeed, v.RolloverLimit,
		v.ArenaHalfSize, v.SensorNoise, v.EpochMS, v.StepMS, v.Seed)
	if err != nil {
		return nil, fmt.Errorf("buildvehicle: %v", err)
	}
	return vehicle, nil
}

// buildPlant builds the configured plant
func (c *Config) buildPlant() (plant.Plant, error) {
	switch c.Plant.Type {
	case "speedReward":
		return plant.NewSpeedReward(), nil
	case "targetLocation":
		return plant.NewTargetLocation(c.Plant.TargetX, c.Plant.TargetY,
			c.Plant.Radius), nil
	}
	return nil, fmt.Errorf("buildplant: no such plant type %q", c.Plant.Type)
}

// buildPolicy builds the configured policy
func (c *Config) buildPolicy() (policy.Policy, error) {
	bounds := make([]r1.Interval, len(c.Policy.Bounds))
	for i, b := range c.Policy.Bounds {
		bounds[i] = r1.Interval{Min: b.Min, Max: b.Max}
	}

	switch c.Policy.Type {
	case "direct":
		return policy.NewDirect(c.Policy.Initial, bounds)
	case "gaitAmplitude":
		return policy.NewGaitAmplitude(c.Policy.Initial, bounds,
			c.Policy.PhaseOffset, c.Policy.Frequency, c.Vehicle.StepMS)
	}
	return nil, fmt.Errorf("buildpolicy: no such policy type %q",
		c.Policy.Type)
}

// buildSchedule builds a hyperparameter schedule
func buildSchedule(s Schedule) (rl.Schedule, error) {
	switch s.Type {
	case "", "const":
		return rl.Const(s.Value), nil
	case "exponential":
		return rl.ExponentialDecay(s.Initial, s.Rate), nil
	case "linear":
		return rl.LinearAnneal(s.Initial, s.Final, s.Steps), nil
	}
	return nil, fmt.Errorf("buildschedule: no such schedule type %q", s.Type)
}

// buildMomentum builds the configured action-update momentum
func buildMomentum(m Momentum) (rl.Momentum, error) {
	switch m.Type {
	case "", "const":
		return rl.NewConstMomentum(m.Coefficient), nil
	case "radial":
		center := mat.NewVecDense(len(m.Center), m.Center)
		return rl.NewRadialMomentum(m.Coefficient, center, m.Radius), nil
	}
	return nil, fmt.Errorf("buildmomentum: no such momentum type %q", m.Type)
}

// BuildDriver builds the configured actor-critic driver, without a
// learner attached
func (c *Config) BuildDriver() (*rl.ActorCritic, error) {
	p, err := c.buildPlant()
	if err != nil {
		return nil, fmt.Errorf("builddriver: %v", err)
	}
	pol, err := c.buildPolicy()
	if err != nil {
		return nil, fmt.Errorf("builddriver: %v", err)
	}
	alpha, err := buildSchedule(c.Learner.Alpha)
	if err != nil {
		return nil, fmt.Errorf("builddriver: %v", err)
	}
	gamma, err := buildSchedule(c.Learner.Gamma)
	if err != nil {
		return nil, fmt.Errorf("builddriver: %v", err)
	}
	momentum, err := buildMomentum(c.Learner.Momentum)
	if err != nil {
		return nil, fmt.Errorf("builddriver: %v", err)
	}

	driver, err := rl.NewActorCritic(p, pol, alpha, gamma, momentum,
		c.Learner.InitSteps)
	if err != nil {
		return nil, fmt.Errorf("builddriver: %v", err)
	}

	norm := normalizer.New()
	for key, param := range c.Normalization {
		if err := norm.Set(key, param.Offset, param.Scale); err != nil {
			return nil, fmt.Errorf("builddriver: %v", err)
		}
	}
	driver.SetNormalization(norm)
	driver.SetTumbledReward(c.Learner.TumbledReward)

	return driver, nil
}

// buildCritic builds the configured critic for a given input dimension
func (c *Config) buildCritic(inputDim int) (hdp.Critic, error) {
	cc := c.Learner.Critic
	switch cc.Type {
	case "esn":
		return hdp.NewESNCritic(inputDim, cc.Size, cc.SpectralRadius,
			cc.Density, cc.InputScaling, cc.LeakRate, cc.Lambda, cc.Delta,
			cc.Seed)

	case "mlp":
		sol, err := solver.FromName(cc.Solver, cc.StepSize)
		if err != nil {
			return nil, fmt.Errorf("buildcritic: %v", err)
		}

		activations := make([]*network.Activation, len(cc.Activations))
		for i, name := range cc.Activations {
			activations[i], err = network.ActivationFromString(name)
			if err != nil {
				return nil, fmt.Errorf("buildcritic: %v", err)
			}
		}
		biases := make([]bool, len(cc.Hidden))
		for i := range biases {
			biases[i] = true
		}

		return hdp.NewMLPCritic(inputDim, cc.Hidden, biases,
			G.GlorotU(1.0), activations, sol)
	}
	return nil, fmt.Errorf("buildcritic: no such critic type %q", cc.Type)
}

// buildSelector builds the configured action-selection strategy
func (c *Config) buildSelector(
	bounds []r1.Interval) (hdp.ActionSelector, error) {
	s := c.Learner.Selector
	switch s.Type {
	case "", "gradient":
		return hdp.NewActionGradient(s.Iterations, s.Tolerance), nil
	case "recomputation":
		return hdp.NewActionRecomputation(), nil
	case "bruteForce":
		return hdp.NewActionBruteForceGrid(bounds, s.GridSamples)
	}
	return nil, fmt.Errorf("buildselector: no such selector type %q", s.Type)
}

// BuildLearner builds the configured ADHDP learner and attaches it to
// the driver
func (c *Config) BuildLearner(driver *rl.ActorCritic) (*hdp.ADHDP, error) {
	inputDim := driver.Plant().StateSpaceDim() +
		driver.Policy().ActionSpaceDim()

	critic, err := c.buildCritic(inputDim)
	if err != nil {
		return nil, fmt.Errorf("buildlearner: %v", err)
	}
	selector, err := c.buildSelector(driver.Policy().ActionBounds())
	if err != nil {
		return nil, fmt.Errorf("buildlearner: %v", err)
	}

	learner, err := hdp.New(driver, critic, selector)
	if err != nil {
		return nil, fmt.Errorf("buildlearner: %v", err)
	}
	return learner, nil
}
