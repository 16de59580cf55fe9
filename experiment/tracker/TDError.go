package tracker

import (
	"github.com/samuelfneumann/gohdp/epoch"
)

// TDError tracks the mean squared temporal difference error of each
// episode. Falling TD error over episodes is the first sign that the
// critic is converging.
type TDError struct {
	filename string
	sum      float64
	count    int
	errors   []float64
}

// NewTDError returns a Tracker tracking per-episode mean squared TD
// errors, saved to filename
func NewTDError(filename string) *TDError {
	return &TDError{filename: filename}
}

// Track accumulates the TD error of one epoch, ignoring epochs the
// learner did not annotate
func (t *TDError) Track(ep *epoch.Epoch) {
	tdErr, err := ep.Last("err")
	if err != nil {
		return
	}
	t.sum += tdErr * tdErr
	t.count++
}

// NewEpisode finalizes the current episode's mean squared TD error
func (t *TDError) NewEpisode() {
	if t.count == 0 {
		t.errors = append(t.errors, 0)
	} else {
		t.errors = append(t.errors, t.sum/float64(t.count))
	}
	t.sum = 0
	t.count = 0
}

// Save writes the per-episode errors to disk
func (t *TDError) Save() error {
	return saveData(t.filename, t.errors)
}
