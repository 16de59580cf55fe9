// Package config builds fully wired experiments from YAML files. Each
// section of a configuration mirrors one component: vehicle, plant,
// policy, learner and experiment loop.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Interval configures a closed interval
type Interval struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Param configures a normalization offset and scale for one channel
type Param struct {
	Offset float64 `yaml:"offset"`
	Scale  float64 `yaml:"scale"`
}

// Experiment configures the experiment loop
type Experiment struct {
	Episodes        int     `yaml:"episodes"`
	MaxSteps        int     `yaml:"maxSteps"`
	DataDir         string  `yaml:"dataDir"`
	HistoryFile     string  `yaml:"historyFile"`
	CheckpointEvery int     `yaml:"checkpointEvery"`
	ErrCoefficient  float64 `yaml:"errCoefficient"`
	ErrStartEpisode int     `yaml:"errStartEpisode"`

	Collector Collector `yaml:"collector"`
}

// Collector configures offline data collection
type Collector struct {
	HoldSteps int     `yaml:"holdSteps"`
	StepSize  float64 `yaml:"stepSize"`
	Seed      uint64  `yaml:"seed"`
}

// Vehicle configures the simulated robot
type Vehicle struct {
	MaxSpeed      float64 `yaml:"maxSpeed"`
	RolloverLimit float64 `yaml:"rolloverLimit"`
	ArenaHalfSize float64 `yaml:"arenaHalfSize"`
	SensorNoise   float64 `yaml:"sensorNoise"`
	EpochMS       int     `yaml:"epochMS"`
	StepMS        int     `yaml:"stepMS"`
	Seed          uint64  `yaml:"seed"`
}

// Plant configures the reward and state mapping
type Plant struct {
	Type    string  `yaml:"type"` // "speedReward" or "targetLocation"
	TargetX float64 `yaml:"targetX"`
	TargetY float64 `yaml:"targetY"`
	Radius  float64 `yaml:"radius"`
}

// Policy configures the low-level policy
type Policy struct {
	Type        string     `yaml:"type"` // "direct" or "gaitAmplitude"
	Initial     []float64  `yaml:"initial"`
	Bounds      []Interval `yaml:"bounds"`
	PhaseOffset []float64  `yaml:"phaseOffset"`
	Frequency   float64    `yaml:"frequency"`
}

// Schedule configures a hyperparameter schedule
type Schedule struct {
	Type    string  `yaml:"type"` // "const", "exponential" or "linear"
	Value   float64 `yaml:"value"`
	Initial float64 `yaml:"initial"`
	Final   float64 `yaml:"final"`
	Rate    float64 `yaml:"rate"`
	Steps   int     `yaml:"steps"`
}

// Momentum configures the action-update momentum
type Momentum struct {
	Type        string    `yaml:"type"` // "const" or "radial"
	Coefficient float64   `yaml:"coefficient"`
	Center      []float64 `yaml:"center"`
	Radius      float64   `yaml:"radius"`
}

// Critic configures the value function approximator
type Critic struct {
	Type string `yaml:"type"` // "esn" or "mlp"

	// Echo-state critic
	Size           int     `yaml:"size"`
	SpectralRadius float64 `yaml:"spectralRadius"`
	Density        float64 `yaml:"density"`
	InputScaling   float64 `yaml:"inputScaling"`
	LeakRate       float64 `yaml:"leakRate"`
	Lambda         float64 `yaml:"lambda"`
	Delta          float64 `yaml:"delta"`
	Seed           uint64  `yaml:"seed"`

	// Neural network critic
	Hidden      []int    `yaml:"hidden"`
	Activations []string `yaml:"activations"`
	Solver      string   `yaml:"solver"`
	StepSize    float64  `yaml:"stepSize"`
}

// Selector configures the action-selection strategy
type Selector struct {
	Type        string  `yaml:"type"` // "gradient", "recomputation" or "bruteForce"
	Iterations  int     `yaml:"iterations"`
	Tolerance   float64 `yaml:"tolerance"`
	GridSamples int     `yaml:"gridSamples"`
}

// Learner configures the ADHDP learner
type Learner struct {
	InitSteps     int      `yaml:"initSteps"`
	Alpha         Schedule `yaml:"alpha"`
	Gamma         Schedule `yaml:"gamma"`
	Momentum      Momentum `yaml:"momentum"`
	TumbledReward *float64 `yaml:"tumbledReward"`
	Critic        Critic   `yaml:"critic"`
	Selector      Selector `yaml:"selector"`
}

// Config describes a complete experiment
type Config struct {
	Experiment    Experiment       `yaml:"experiment"`
	Vehicle       Vehicle          `yaml:"vehicle"`
	Plant         Plant            `yaml:"plant"`
	Policy        Policy           `yaml:"policy"`
	Learner       Learner          `yaml:"learner"`
	Normalization map[string]Param `yaml:"normalization"`
}

// Load reads and validates a configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: could not read config: %v", err)
	}
	return Parse(data)
}

// Parse parses and validates configuration bytes
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse: could not parse config: %v", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("parse: %v", err)
	}
	return &c, nil
}

// Validate checks the configuration for inconsistencies the builders
// cannot catch
func (c *Config) Validate() error {
	if c.Experiment.Episodes <= 0 {
		return fmt.Errorf("validate: non-positive episode count")
	}
	if c.Experiment.MaxSteps <= 0 {
		return fmt.Errorf("validate: non-positive step limit")
	}
	if len(c.Policy.Initial) == 0 {
		return fmt.Errorf("validate: policy has no actuators")
	}
	if len(c.Policy.Bounds) != len(c.Policy.Initial) {
		return fmt.Errorf("validate: invalid number of policy bounds"+
			"\n\twant(%d)\n\thave(%d)", len(c.Policy.Initial),
			len(c.Policy.Bounds))
	}
	switch c.Plant.Type {
	case "speedReward", "targetLocation":
	default:
		return fmt.Errorf("validate: no such plant type %q", c.Plant.Type)
	}
	switch c.Learner.Critic.Type {
	case "esn", "mlp":
	default:
		return fmt.Errorf("validate: no such critic type %q",
			c.Learner.Critic.Type)
	}
	return nil
}
