package experiment

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/gohdp/rl"
	"github.com/samuelfneumann/gohdp/utils/matutils"
)

// Collector produces exploration data for offline training. Instead of
// following a critic, the action performs a bounded random walk: it is
// held for a fixed number of steps, then perturbed by a uniform step
// and clipped to the legal action region. The driver records epochs as
// usual, so collected data replays through any critic later.
type Collector struct {
	driver *rl.ActorCritic

	holdSteps int
	stepSize  float64

	held    int
	current *mat.VecDense

	uniform distuv.Uniform
}

// NewCollector returns a Collector wrapping the driver's action
// selection with a random walk. The driver should have no learner
// attached.
func NewCollector(driver *rl.ActorCritic, holdSteps int, stepSize float64,
	seed uint64) (*Collector, error) {
	if driver == nil {
		return nil, fmt.Errorf("newcollector: no driver")
	}
	if holdSteps < 1 {
		return nil, fmt.Errorf("newcollector: hold steps must be positive")
	}
	if stepSize <= 0 {
		return nil, fmt.Errorf("newcollector: step size must be positive")
	}

	c := &Collector{
		driver:    driver,
		holdSteps: holdSteps,
		stepSize:  stepSize,
		current:   driver.Action(),
		uniform: distuv.Uniform{
			Min: -stepSize,
			Max: stepSize,
			Src: rand.NewSource(seed),
		},
	}
	driver.SetNextActionHook(c.hook)
	return c, nil
}

// hook replaces the driver's next action with the random walk
func (c *Collector) hook(action *mat.VecDense) *mat.VecDense {
	c.held++
	if c.held < c.holdSteps {
		return mat.VecDenseCopyOf(c.current)
	}
	c.held = 0

	next := mat.VecDenseCopyOf(c.current)
	for i := 0; i < next.Len(); i++ {
		next.SetVec(i, next.AtVec(i)+c.uniform.Rand())
	}
	matutils.VecClipIntervals(next, c.driver.Policy().ActionBounds())
	c.current = next
	return mat.VecDenseCopyOf(next)
}
