// Package plant outlines the interface and structs needed to implement
// concrete plants. A plant defines the learning problem on top of a
// stream of sensor epochs: it maps each epoch to the critic's state
// input and computes the training reward.
package plant

import (
	"github.com/samuelfneumann/gohdp/epoch"
	"github.com/samuelfneumann/gohdp/normalizer"
	"gonum.org/v1/gonum/mat"
)

// Plant implements the state and reward scheme of a learning problem.
// The same sensor stream can serve different experiments by swapping
// the plant.
type Plant interface {
	// StateInput maps an epoch to the critic's state input vector.
	// Implementations should normalize sensor values through the
	// plant's Normalizer.
	StateInput(ep *epoch.Epoch) (*mat.VecDense, error)

	// Reward computes the reward earned over an epoch
	Reward(ep *epoch.Epoch) (float64, error)

	// StateSpaceDim returns the length of StateInput vectors
	StateSpaceDim() int

	// SetNormalization sets the normalizer used for sensor channels
	SetNormalization(n *normalizer.Normalizer)

	// Reset clears any state the plant keeps between epochs. Called
	// at the start of every episode.
	Reset()
}

// base implements the bookkeeping shared by the concrete plants
type base struct {
	dim  int
	norm *normalizer.Normalizer
}

func newBase(dim int) base {
	return base{dim: dim, norm: normalizer.New()}
}

// StateSpaceDim returns the length of the plant's state input vectors
func (b *base) StateSpaceDim() int { return b.dim }

// SetNormalization sets the normalizer used for sensor channels
func (b *base) SetNormalization(n *normalizer.Normalizer) {
	if n != nil {
		b.norm = n
	}
}

// normalizedLast returns the normalized final sample of each named
// channel, in argument order.
func (b *base) normalizedLast(ep *epoch.Epoch,
	keys ...string) (*mat.VecDense, error) {
	state := mat.NewVecDense(len(keys), nil)
	for i, key := range keys {
		value, err := ep.Last(key)
		if err != nil {
			return nil, err
		}
		state.SetVec(i, b.norm.Normalize(key, value))
	}
	return state, nil
}
