package experiment

import (
	"fmt"
	"path/filepath"

	"github.com/samuelfneumann/gohdp/rl"
)

// Checkpointer saves driver snapshots at a fixed episode interval
type Checkpointer struct {
	dir   string
	every int
}

// NewCheckpointer returns a Checkpointer writing snapshots into dir
// every interval episodes
func NewCheckpointer(dir string, every int) (*Checkpointer, error) {
	if every <= 0 {
		return nil, fmt.Errorf("newcheckpointer: non-positive interval")
	}
	return &Checkpointer{dir: dir, every: every}, nil
}

// Checkpoint saves the driver if the episode falls on the interval
func (c *Checkpointer) Checkpoint(driver *rl.ActorCritic, episode int) error {
	if (episode+1)%c.every != 0 {
		return nil
	}
	path := filepath.Join(c.dir, fmt.Sprintf("checkpoint-%06d.bin", episode))
	if err := driver.Save(path); err != nil {
		return fmt.Errorf("checkpoint: %v", err)
	}
	return nil
}
