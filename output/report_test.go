package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/signalsfoundry/navigation-simulator/core"
)

func sampleResults(t *testing.T) *core.ExperimentResults {
	t.Helper()
	r := core.NewRunner(nil, nil)
	res, err := core.RunUpdatesScenario(context.Background(), r, core.QuantumIMU, 10, 60, 1, 42)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestWriteJSONSummary(t *testing.T) {
	res := sampleResults(t)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, res); err != nil {
		t.Fatal(err)
	}

	var s Summary
	if err := json.Unmarshal(buf.Bytes(), &s); err != nil {
		t.Fatalf("summary is not valid JSON: %v", err)
	}
	if s.Config.Name != "updates_quantum_10s" || s.Config.IMUProfile != "quantum" {
		t.Fatalf("config block = %+v", s.Config)
	}
	if s.Config.DurationS != 60 || s.Config.Dt != 1 || s.Config.Seed != 42 {
		t.Fatalf("config block = %+v", s.Config)
	}
	if s.Metrics.NUpdates != 6 {
		t.Fatalf("NUpdates = %d, want 6", s.Metrics.NUpdates)
	}
	if len(s.TimeS) != 61 || len(s.PosErrorNormM) != 61 {
		t.Fatalf("series lengths = %d, %d, want 61", len(s.TimeS), len(s.PosErrorNormM))
	}
	if s.Metrics.FinalPosErrorM != res.FinalPositionErrorRMS() {
		t.Fatalf("FinalPosErrorM = %v, want %v", s.Metrics.FinalPosErrorM, res.FinalPositionErrorRMS())
	}
}

func TestWriteCSVSeries(t *testing.T) {
	res := sampleResults(t)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, res); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	// Header plus one row per sample.
	if len(rows) != 62 {
		t.Fatalf("row count = %d, want 62", len(rows))
	}
	if rows[0][0] != "time_s" || len(rows[0]) != 19 {
		t.Fatalf("header = %v", rows[0])
	}
	for i, row := range rows[1:] {
		if len(row) != 19 {
			t.Fatalf("row %d has %d columns, want 19", i, len(row))
		}
	}
	if rows[1][0] != "0" {
		t.Fatalf("first sample time = %q, want \"0\"", rows[1][0])
	}
}

func TestWriteMarkdownComparison(t *testing.T) {
	res := sampleResults(t)

	var buf bytes.Buffer
	if err := WriteMarkdownComparison(&buf, []*core.ExperimentResults{res, res}); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// Header, separator, one row per result.
	if len(lines) != 4 {
		t.Fatalf("line count = %d, want 4: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "updates_quantum_10s") || !strings.Contains(lines[2], "| quantum |") {
		t.Fatalf("table row = %q", lines[2])
	}
}

func TestSaveAllWritesArtifacts(t *testing.T) {
	res := sampleResults(t)
	dir := t.TempDir()

	if err := SaveAll(dir, res); err != nil {
		t.Fatal(err)
	}

	prefix := res.Config.OutputPrefix + "_" + res.Config.Name
	for _, ext := range []string{".json", ".csv", ".png"} {
		path := filepath.Join(dir, prefix+ext)
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("missing artifact %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("artifact %s is empty", path)
		}
	}
}
