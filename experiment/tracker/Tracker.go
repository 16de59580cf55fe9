// Package tracker implements Trackers, which accumulate per-episode
// data during an experiment and save it after the experiment has
// finished.
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/gohdp/epoch"
)

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished
type Tracker interface {
	// Track caches the data of one annotated epoch
	Track(ep *epoch.Epoch)

	// NewEpisode finalizes the current episode's data
	NewEpisode()

	// Save writes the cached data to disk
	Save() error
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loaddata: could not open data file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var data []float64
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("loaddata: could not decode data: %v", err)
	}
	return data, nil
}

// saveData writes a Tracker's data to disk
func saveData(filename string, data []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("savedata: could not create data file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("savedata: could not encode data: %v", err)
	}
	return nil
}
