package output

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/signalsfoundry/navigation-simulator/core"
)

// SaveErrorPlot renders the position error norm against its 1-σ bound over
// time and writes a PNG to path.
func SaveErrorPlot(path string, r *core.ExperimentResults) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Position error: %s", r.Config.Name)
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "error (m)"

	n := len(r.Time)
	errPts := make(plotter.XYs, n)
	sigmaPts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		errPts[i].X = r.Time[i]
		errPts[i].Y = r.PosError[i].Norm()
		sigmaPts[i].X = r.Time[i]
		sigmaPts[i].Y = r.PosSigma[i].Norm()
	}

	errLine, err := plotter.NewLine(errPts)
	if err != nil {
		return fmt.Errorf("error line: %w", err)
	}
	sigmaLine, err := plotter.NewLine(sigmaPts)
	if err != nil {
		return fmt.Errorf("sigma line: %w", err)
	}
	sigmaLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(errLine, sigmaLine)
	p.Legend.Add("‖pos error‖", errLine)
	p.Legend.Add("‖1σ bound‖", sigmaLine)
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// SaveSweepPlot renders final position error against star tracker update
// interval for a cadence sweep and writes a PNG to path.
func SaveSweepPlot(path string, intervals []float64, results []*core.ExperimentResults) error {
	if len(intervals) != len(results) {
		return fmt.Errorf("got %d intervals but %d results", len(intervals), len(results))
	}

	p := plot.New()
	p.Title.Text = "Final position error vs. update cadence"
	p.X.Label.Text = "update interval (s)"
	p.Y.Label.Text = "final position error (m)"
	p.X.Scale = plot.LogScale{}
	p.Y.Scale = plot.LogScale{}

	pts := make(plotter.XYs, len(results))
	for i, r := range results {
		pts[i].X = intervals[i]
		pts[i].Y = r.FinalPositionErrorRMS()
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("sweep line: %w", err)
	}
	p.Add(line, points)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
