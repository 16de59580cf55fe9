// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"strings"
	"time"
)

// ProgressBar implements a concurrent progress bar for long-running
// experiments. Increments are sent over a channel so that the bar can
// be driven from the experiment loop without blocking it.
type ProgressBar struct {
	width int

	// maxProgress determines the number of times Increment() should
	// be called before the progress bar reaches 100%.
	maxProgress int

	increments chan int
	closeEvent chan struct{}
	closed     bool

	updateEvery time.Duration
}

// New returns a new progress bar that is width characters wide and
// reaches 100% capacity after max Increment() calls.
func New(width, max int, updateEvery time.Duration) *ProgressBar {
	return &ProgressBar{
		width:       width,
		maxProgress: max,
		increments:  make(chan int, 64),
		closeEvent:  make(chan struct{}),
		updateEvery: updateEvery,
	}
}

// Increment increments the internal progress counter. Each time an
// iteration is performed, Increment should be called.
func (p *ProgressBar) Increment() {
	if p.closed {
		return
	}
	select {
	case p.increments <- 1:
	default: // Never block the experiment on the display
	}
}

// Close stops the progress bar display and releases its resources.
func (p *ProgressBar) Close() {
	if p.closed {
		return
	}
	close(p.closeEvent)
	p.closed = true
	fmt.Println() // Jump to next line after printed bar
}

// Display draws the progress bar to the terminal until Close is called.
// It should only be called once.
func (p *ProgressBar) Display() {
	go func() {
		current := 0
		elapsed := time.Duration(0)
		tick := time.NewTicker(p.updateEvery)

		var bar strings.Builder
		for {
			select {
			case n := <-p.increments:
				current += n
				continue

			case <-tick.C:
				elapsed += p.updateEvery

			case <-p.closeEvent:
				tick.Stop()
				return
			}

			bar.Reset()
			bar.WriteString("|")
			filled := current * p.width / p.maxProgress
			for i := 0; i < filled; i++ {
				bar.WriteString("█")
			}
			for i := filled; i < p.width; i++ {
				bar.WriteString(" ")
			}
			fmt.Fprintf(&bar, "| [%.2f%% | elapsed: %v]",
				float64(current)/float64(p.maxProgress)*100, elapsed)

			fmt.Printf("\n\033[1A\033[K%v", bar.String())
		}
	}()
}
