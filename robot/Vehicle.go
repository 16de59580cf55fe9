// Package robot implements a simulated planar vehicle that produces
// the sensor epochs the actor-critic consumes. The vehicle stands in
// for robot hardware during development: it integrates simple unicycle
// dynamics per sensor sample and reports position, heading and speed
// with additive sensor noise.
package robot

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/gohdp/epoch"
)

// Actuator indices of the vehicle's motor targets
const (
	ActuatorTurn = iota // commanded turn rate, rad/s
	ActuatorThrottle
	NumActuators
)

// Vehicle simulates a planar unicycle robot. Motor targets command a
// turn rate and a throttle; the vehicle integrates position at the
// sensor sampling period and packages each control step's samples into
// an epoch.
type Vehicle struct {
	x       float64
	y       float64
	heading float64
	speed   float64

	maxSpeed    float64
	throttleLag float64 // fraction of speed error closed per second

	// Rollover threshold on centripetal terms: the vehicle tumbles
	// when |turn rate|·speed exceeds it
	rolloverLimit float64
	tumbled       bool

	arenaHalfSize float64

	epochMS int
	stepMS  int
	timeMS  int

	noise distuv.Normal
}

// NewVehicle returns a new simulated vehicle. The epoch length must be
// a multiple of the sensor sampling period.
func NewVehicle(maxSpeed, rolloverLimit, arenaHalfSize, sensorNoise float64,
	epochMS, stepMS int, seed uint64) (*Vehicle, error) {
	if maxSpeed <= 0 {
		return nil, fmt.Errorf("newvehicle: max speed must be positive")
	}
	if rolloverLimit <= 0 {
		return nil, fmt.Errorf("newvehicle: rollover limit must be positive")
	}
	if arenaHalfSize <= 0 {
		return nil, fmt.Errorf("newvehicle: arena size must be positive")
	}
	if sensorNoise < 0 {
		return nil, fmt.Errorf("newvehicle: negative sensor noise")
	}
	if epochMS <= 0 || stepMS <= 0 || epochMS%stepMS != 0 {
		return nil, fmt.Errorf("newvehicle: epoch length %d ms is not a "+
			"multiple of the sampling period %d ms", epochMS, stepMS)
	}

	return &Vehicle{
		maxSpeed:      maxSpeed,
		throttleLag:   2.0,
		rolloverLimit: rolloverLimit,
		arenaHalfSize: arenaHalfSize,
		epochMS:       epochMS,
		stepMS:        stepMS,
		noise: distuv.Normal{
			Mu:    0,
			Sigma: sensorNoise,
			Src:   rand.NewSource(seed),
		},
	}, nil
}

// EpochMS returns the control step length in milliseconds
func (v *Vehicle) EpochMS() int { return v.epochMS }

// StepMS returns the sensor sampling period in milliseconds
func (v *Vehicle) StepMS() int { return v.stepMS }

// SamplesPerEpoch returns the number of sensor samples per control step
func (v *Vehicle) SamplesPerEpoch() int { return v.epochMS / v.stepMS }

// Position returns the vehicle's true position
func (v *Vehicle) Position() (float64, float64) { return v.x, v.y }

// Tumbled returns whether the vehicle has rolled over
func (v *Vehicle) Tumbled() bool { return v.tumbled }

// OutOfArena returns whether the vehicle has left the arena
func (v *Vehicle) OutOfArena() bool {
	return math.Abs(v.x) > v.arenaHalfSize || math.Abs(v.y) > v.arenaHalfSize
}

// InitialEpoch returns the empty epoch handed to the driver at
// simulation start, before any sensor data exists
func (v *Vehicle) InitialEpoch() *epoch.Epoch {
	return epoch.New(v.timeMS, v.timeMS+v.epochMS, v.stepMS)
}

// Step integrates one control step under the given motor targets and
// returns the recorded epoch. Targets must have one row per sensor
// sample and one column per actuator.
func (v *Vehicle) Step(targets *mat.Dense) (*epoch.Epoch, error) {
	samples := v.SamplesPerEpoch()
	rows, cols := targets.Dims()
	if rows != samples || cols != NumActuators {
		return nil, fmt.Errorf("step: invalid motor target dimensions"+
			"\n\twant(%dx%d)\n\thave(%dx%d)", samples, NumActuators, rows,
			cols)
	}

	ep := epoch.New(v.timeMS, v.timeMS+v.epochMS, v.stepMS)
	dt := float64(v.stepMS) / 1000.0

	gpsX := make([]float64, samples)
	gpsY := make([]float64, samples)
	headings := make([]float64, samples)
	speeds := make([]float64, samples)
	trgTurn := make([]float64, samples)
	trgThrottle := make([]float64, samples)

	for k := 0; k < samples; k++ {
		turn := targets.At(k, ActuatorTurn)
		throttle := targets.At(k, ActuatorThrottle)

		if v.tumbled {
			turn, throttle = 0, 0
		}

		// First order throttle response toward the commanded speed
		want := throttle * v.maxSpeed
		v.speed += (want - v.speed) * v.throttleLag * dt

		v.heading = math.Mod(v.heading+turn*dt, 2*math.Pi)
		v.x += v.speed * math.Cos(v.heading) * dt
		v.y += v.speed * math.Sin(v.heading) * dt

		if math.Abs(turn)*v.speed > v.rolloverLimit {
			v.tumbled = true
			v.speed = 0
		}

		gpsX[k] = v.x + v.noise.Rand()
		gpsY[k] = v.y + v.noise.Rand()
		headings[k] = v.heading + v.noise.Rand()
		speeds[k] = v.speed + v.noise.Rand()
		trgTurn[k] = turn
		trgThrottle[k] = throttle
	}

	ep.Set("gps_x", gpsX)
	ep.Set("gps_y", gpsY)
	ep.Set("heading", headings)
	ep.Set("speed", speeds)
	ep.Set("trg_turn", trgTurn)
	ep.Set("trg_throttle", trgThrottle)

	v.timeMS += v.epochMS
	return ep, nil
}

// Reset returns the vehicle to the arena centre with zero speed
func (v *Vehicle) Reset() {
	v.x, v.y = 0, 0
	v.heading = 0
	v.speed = 0
	v.tumbled = false
}
