// Package experiment implements the loops driving an actor-critic
// through a simulated robot: online learning, offline data collection
// and offline playback of recorded data.
package experiment

import (
	"github.com/samuelfneumann/gohdp/epoch"
	"github.com/samuelfneumann/gohdp/experiment/tracker"
)

// Experiment runs an actor-critic and tracks its data
type Experiment interface {
	// Run runs the entire experiment
	Run() error

	// Save saves all the data cached by the experiment's Trackers
	Save() error
}

// track caches one epoch in each Tracker
func track(trackers []tracker.Tracker, ep *epoch.Epoch) {
	for _, t := range trackers {
		t.Track(ep)
	}
}

// endEpisode finalizes the current episode in each Tracker
func endEpisode(trackers []tracker.Tracker) {
	for _, t := range trackers {
		t.NewEpisode()
	}
}

// save saves the data of each Tracker
func save(trackers []tracker.Tracker) error {
	for _, t := range trackers {
		if err := t.Save(); err != nil {
			return err
		}
	}
	return nil
}
