// Package epoch implements epochs of the critic-robot interaction. An
// epoch packages the named sensor channels recorded over a single
// control step together with the time window they were sampled in.
package epoch

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Epoch holds one control step's worth of sensor data. Each channel is
// a series of samples recorded over the step window. Learners annotate
// epochs with their own channels (actions, values, TD errors) so that
// a recorded epoch fully describes the step that produced it.
type Epoch struct {
	startMS  int
	endMS    int
	stepMS   int
	channels map[string][]float64
}

// New returns an empty Epoch spanning [startMS, endMS) with sensor
// sampling period stepMS.
func New(startMS, endMS, stepMS int) *Epoch {
	return &Epoch{
		startMS:  startMS,
		endMS:    endMS,
		stepMS:   stepMS,
		channels: make(map[string][]float64),
	}
}

// StartMS returns the start of the epoch's time window in milliseconds
func (e *Epoch) StartMS() int { return e.startMS }

// EndMS returns the end of the epoch's time window in milliseconds
func (e *Epoch) EndMS() int { return e.endMS }

// StepMS returns the sensor sampling period in milliseconds
func (e *Epoch) StepMS() int { return e.stepMS }

// Set sets the samples of a named channel, replacing any existing data
func (e *Epoch) Set(key string, samples []float64) {
	e.channels[key] = samples
}

// SetScalar sets a channel holding a single value
func (e *Epoch) SetScalar(key string, value float64) {
	e.channels[key] = []float64{value}
}

// SetVec sets a channel from a vector's elements
func (e *Epoch) SetVec(key string, v mat.Vector) {
	data := make([]float64, v.Len())
	for i := range data {
		data[i] = v.AtVec(i)
	}
	e.channels[key] = data
}

// Channel returns the samples of a named channel
func (e *Epoch) Channel(key string) ([]float64, error) {
	samples, ok := e.channels[key]
	if !ok {
		return nil, fmt.Errorf("channel: no channel named %q", key)
	}
	return samples, nil
}

// Has returns whether the epoch contains a named channel
func (e *Epoch) Has(key string) bool {
	_, ok := e.channels[key]
	return ok
}

// Last returns the final sample of a named channel. Most plants only
// inspect the newest sensor reading of an epoch.
func (e *Epoch) Last(key string) (float64, error) {
	samples, err := e.Channel(key)
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, fmt.Errorf("last: channel %q is empty", key)
	}
	return samples[len(samples)-1], nil
}

// Vec returns a named channel as a column vector
func (e *Epoch) Vec(key string) (*mat.VecDense, error) {
	samples, err := e.Channel(key)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(samples))
	copy(out, samples)
	return mat.NewVecDense(len(out), out), nil
}

// Keys returns the channel names in sorted order
func (e *Epoch) Keys() []string {
	keys := make([]string, 0, len(e.channels))
	for key := range e.channels {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of channels in the epoch
func (e *Epoch) Len() int { return len(e.channels) }

// Merge appends the channels of a later epoch to the receiver,
// extending the time window to cover both. Channels present in only
// one epoch are kept whole; shared channels concatenate in time order.
func (e *Epoch) Merge(other *Epoch) {
	if other.startMS < e.startMS {
		e.startMS = other.startMS
	}
	if other.endMS > e.endMS {
		e.endMS = other.endMS
	}
	for key, samples := range other.channels {
		data := make([]float64, len(samples))
		copy(data, samples)
		e.channels[key] = append(e.channels[key], data...)
	}
}

// Clone returns a deep copy of the epoch
func (e *Epoch) Clone() *Epoch {
	clone := New(e.startMS, e.endMS, e.stepMS)
	for key, samples := range e.channels {
		data := make([]float64, len(samples))
		copy(data, samples)
		clone.channels[key] = data
	}
	return clone
}

func (e *Epoch) String() string {
	return fmt.Sprintf("Epoch | [%v, %v) ms  |  Channels: %v", e.startMS,
		e.endMS, e.Keys())
}

// GobEncode implements the gob.GobEncoder interface
func (e *Epoch) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	for _, err := range []error{
		enc.Encode(e.startMS),
		enc.Encode(e.endMS),
		enc.Encode(e.stepMS),
		enc.Encode(e.channels),
	} {
		if err != nil {
			return nil, fmt.Errorf("gobencode: could not encode epoch: %v", err)
		}
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (e *Epoch) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	e.channels = make(map[string][]float64)
	for _, err := range []error{
		dec.Decode(&e.startMS),
		dec.Decode(&e.endMS),
		dec.Decode(&e.stepMS),
		dec.Decode(&e.channels),
	} {
		if err != nil {
			return fmt.Errorf("gobdecode: could not decode epoch: %v", err)
		}
	}
	return nil
}
