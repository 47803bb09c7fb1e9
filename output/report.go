// Package output turns experiment results into files for downstream
// reporting and visualization: JSON summaries, CSV time series, Markdown
// comparison tables, and error plots.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/signalsfoundry/navigation-simulator/core"
)

// Summary is the JSON shape exported per experiment.
type Summary struct {
	Config  SummaryConfig  `json:"config"`
	Metrics SummaryMetrics `json:"summary"`

	TimeS         []float64 `json:"time_s"`
	PosErrorNormM []float64 `json:"pos_error_norm_m"`
	VelErrorNorm  []float64 `json:"vel_error_norm_m_s"`
	PosSigmaNormM []float64 `json:"pos_sigma_norm_m"`
}

// SummaryConfig echoes the salient trial configuration.
type SummaryConfig struct {
	Name       string  `json:"name"`
	DurationS  float64 `json:"duration_s"`
	Dt         float64 `json:"dt"`
	Seed       int64   `json:"seed"`
	IMUProfile string  `json:"imu_profile"`
}

// SummaryMetrics carries the derived scalar statistics.
type SummaryMetrics struct {
	FinalPosErrorM  float64 `json:"final_pos_error_m"`
	FinalVelErrorMS float64 `json:"final_vel_error_m_s"`
	MaxPosErrorM    float64 `json:"max_pos_error_m"`
	NUpdates        int     `json:"n_updates"`
}

// NewSummary derives the exportable summary from a result set.
func NewSummary(r *core.ExperimentResults) Summary {
	n := len(r.Time)
	s := Summary{
		Config: SummaryConfig{
			Name:       r.Config.Name,
			DurationS:  r.Config.Duration,
			Dt:         r.Config.Dt,
			Seed:       r.Config.Seed,
			IMUProfile: r.Config.Profile.Name,
		},
		Metrics: SummaryMetrics{
			FinalPosErrorM:  r.FinalPositionErrorRMS(),
			FinalVelErrorMS: r.FinalVelocityErrorRMS(),
			MaxPosErrorM:    r.MaxPositionError(),
			NUpdates:        r.NUpdates,
		},
		TimeS:         append([]float64(nil), r.Time...),
		PosErrorNormM: make([]float64, n),
		VelErrorNorm:  make([]float64, n),
		PosSigmaNormM: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		s.PosErrorNormM[i] = r.PosError[i].Norm()
		s.VelErrorNorm[i] = r.VelError[i].Norm()
		s.PosSigmaNormM[i] = r.PosSigma[i].Norm()
	}
	return s
}

// WriteJSON writes the summary for r to w.
func WriteJSON(w io.Writer, r *core.ExperimentResults) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewSummary(r)); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteCSV writes the full per-step time series for r to w, one row per
// sample.
func WriteCSV(w io.Writer, r *core.ExperimentResults) error {
	cw := csv.NewWriter(w)
	header := []string{
		"time_s",
		"true_px", "true_py", "true_pz",
		"est_px", "est_py", "est_pz",
		"pos_err_x", "pos_err_y", "pos_err_z",
		"vel_err_x", "vel_err_y", "vel_err_z",
		"att_err_x", "att_err_y", "att_err_z",
		"pos_sigma_x", "pos_sigma_y", "pos_sigma_z",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range r.Time {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(r.Time[i]))
		row = appendVec(row, r.TruePosition[i])
		row = appendVec(row, r.EstPosition[i])
		row = appendVec(row, r.PosError[i])
		row = appendVec(row, r.VelError[i])
		row = appendVec(row, r.AttError[i])
		row = appendVec(row, r.PosSigma[i])
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkdownComparison writes a comparison table for a set of results,
// one row per experiment.
func WriteMarkdownComparison(w io.Writer, results []*core.ExperimentResults) error {
	if _, err := fmt.Fprintln(w, "| Experiment | Profile | Updates | Final pos error (m) | Final vel error (m/s) | Max pos error (m) |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---|---|---|---|---|---|"); err != nil {
		return err
	}
	for _, r := range results {
		_, err := fmt.Fprintf(w, "| %s | %s | %d | %.3g | %.3g | %.3g |\n",
			r.Config.Name,
			r.Config.Profile.Name,
			r.NUpdates,
			r.FinalPositionErrorRMS(),
			r.FinalVelocityErrorRMS(),
			r.MaxPositionError(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveAll writes the JSON summary, CSV series, and error plot for r under
// dir with the configured prefix.
func SaveAll(dir string, r *core.ExperimentResults) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	base := filepath.Join(dir, fmt.Sprintf("%s_%s", r.Config.OutputPrefix, r.Config.Name))

	jf, err := os.Create(base + ".json")
	if err != nil {
		return err
	}
	defer jf.Close()
	if err := WriteJSON(jf, r); err != nil {
		return err
	}

	cf, err := os.Create(base + ".csv")
	if err != nil {
		return err
	}
	defer cf.Close()
	if err := WriteCSV(cf, r); err != nil {
		return err
	}

	return SaveErrorPlot(base+".png", r)
}

func appendVec(row []string, v core.Vec3) []string {
	return append(row, formatFloat(v.X), formatFloat(v.Y), formatFloat(v.Z))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
