// Package history persists recorded episodes. A Writer hooks into the
// actor-critic driver and streams every annotated epoch to disk so that
// runs can be replayed offline against different critics.
package history

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/samuelfneumann/gohdp/epoch"
	"github.com/samuelfneumann/gohdp/rl"
)

// Episode holds the annotated epochs of one recorded episode
type Episode struct {
	Index  int
	Epochs []*epoch.Epoch
}

// Len returns the number of recorded control steps
func (e *Episode) Len() int { return len(e.Epochs) }

// Writer streams episodes to a gob file. Epochs are buffered per
// episode and flushed as one record when the episode ends.
type Writer struct {
	file *os.File
	enc  *gob.Encoder

	episode int
	epochs  []*epoch.Epoch
}

// NewWriter returns a Writer recording to the file at path, truncating
// any existing file
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("newwriter: could not create file: %v", err)
	}
	return &Writer{file: file, enc: gob.NewEncoder(file)}, nil
}

// Hook returns a PreIncrementHook recording every annotated epoch
func (w *Writer) Hook() rl.PreIncrementHook {
	return func(ep *epoch.Epoch) {
		w.Append(ep)
	}
}

// Append records one epoch in the current episode
func (w *Writer) Append(ep *epoch.Epoch) {
	w.epochs = append(w.epochs, ep.Clone())
}

// EndEpisode flushes the buffered epochs as one episode record
func (w *Writer) EndEpisode() error {
	if len(w.epochs) == 0 {
		return nil
	}
	record := Episode{Index: w.episode, Epochs: w.epochs}
	if err := w.enc.Encode(record); err != nil {
		return fmt.Errorf("endepisode: could not encode episode %d: %v",
			w.episode, err)
	}
	w.episode++
	w.epochs = nil
	return nil
}

// Close flushes any buffered episode and closes the file
func (w *Writer) Close() error {
	if err := w.EndEpisode(); err != nil {
		return fmt.Errorf("close: %v", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close: could not close file: %v", err)
	}
	return nil
}

// Load reads every episode recorded in the file at path
func Load(path string) ([]Episode, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load: could not open file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	var episodes []Episode
	for {
		var record Episode
		if err := dec.Decode(&record); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("load: could not decode episode %d: %v",
				len(episodes), err)
		}
		episodes = append(episodes, record)
	}
	return episodes, nil
}
