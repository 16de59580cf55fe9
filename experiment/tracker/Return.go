package tracker

import (
	"github.com/samuelfneumann/gohdp/epoch"
)

// Return tracks the total reward earned in each episode
type Return struct {
	filename string
	current  float64
	returns  []float64
}

// NewReturn returns a Tracker tracking episodic returns, saved to
// filename
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track accumulates the reward of one epoch
func (r *Return) Track(ep *epoch.Epoch) {
	reward, err := ep.Last("reward")
	if err != nil {
		return
	}
	r.current += reward
}

// NewEpisode finalizes the current episode's return
func (r *Return) NewEpisode() {
	r.returns = append(r.returns, r.current)
	r.current = 0
}

// Save writes the episodic returns to disk
func (r *Return) Save() error {
	return saveData(r.filename, r.returns)
}
