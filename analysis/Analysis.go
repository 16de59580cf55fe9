// Package analysis plots the data tracked during experiments:
// episodic return and temporal difference error curves, plus a sliding
// window smoothing to make noisy single-run curves readable.
package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/samuelfneumann/gohdp/experiment/tracker"
)

// Curve names one data series for plotting
type Curve struct {
	Name string
	Data []float64
}

// LoadCurve loads a Tracker data file as a named curve
func LoadCurve(name, filename string) (Curve, error) {
	data, err := tracker.LoadData(filename)
	if err != nil {
		return Curve{}, fmt.Errorf("loadcurve: %v", err)
	}
	return Curve{Name: name, Data: data}, nil
}

// Smooth returns a sliding window mean over a curve's data. Windows at
// the start shrink to the available prefix.
func Smooth(data []float64, window int) []float64 {
	if window < 2 {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	out := make([]float64, len(data))
	for i := range data {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		out[i] = stat.Mean(data[start:i+1], nil)
	}
	return out
}

// Plot draws curves over episodes and saves the figure. Each curve is
// smoothed with the given window before plotting; a window below 2
// plots the raw data.
func Plot(path, title, yLabel string, window int, curves ...Curve) error {
	if len(curves) == 0 {
		return fmt.Errorf("plot: no curves")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = yLabel

	for i, curve := range curves {
		smoothed := Smooth(curve.Data, window)
		points := make(plotter.XYs, len(smoothed))
		for j, v := range smoothed {
			points[j] = plotter.XY{X: float64(j), Y: v}
		}

		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("plot: could not plot curve %q: %v", curve.Name,
				err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(curve.Name, line)
	}

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("plot: could not save figure: %v", err)
	}
	return nil
}
