package core

import (
	"context"
	"strings"
	"testing"
)

func TestRunCoastScenarioNaming(t *testing.T) {
	r := NewRunner(nil, nil)
	res, err := RunCoastScenario(context.Background(), r, ClassicalIMU, 30, 1, 42)
	if err != nil {
		t.Fatal(err)
	}
	if res.Config.Name != "coast_classical" {
		t.Fatalf("Name = %q", res.Config.Name)
	}
	if res.Config.Attitude.Enabled() || res.Config.PositionFixes.Enabled() {
		t.Fatal("coast scenario has aiding enabled")
	}
}

func TestRunUpdatesScenarioNamingAndCadence(t *testing.T) {
	r := NewRunner(nil, nil)
	res, err := RunUpdatesScenario(context.Background(), r, QuantumIMU, 10, 300, 1, 42)
	if err != nil {
		t.Fatal(err)
	}
	if res.Config.Name != "updates_quantum_10s" {
		t.Fatalf("Name = %q", res.Config.Name)
	}
	if res.NUpdates != 30 {
		t.Fatalf("NUpdates = %d, want 30", res.NUpdates)
	}
}

func TestRunPositionFixScenario(t *testing.T) {
	r := NewRunner(nil, nil)
	res, err := RunPositionFixScenario(context.Background(), r, ClassicalIMU, 10.0, 60, 600, 1, 42)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Config.Name, "posfix_classical") {
		t.Fatalf("Name = %q", res.Config.Name)
	}
	if res.NUpdates != 10 {
		t.Fatalf("NUpdates = %d, want 10", res.NUpdates)
	}
}

func TestRunCadenceSweepOrderAndCounts(t *testing.T) {
	r := NewRunner(nil, nil)
	intervals := []float64{10, 30, 60}
	results, err := RunCadenceSweep(context.Background(), r, QuantumIMU, intervals, 300, 1, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(intervals) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(intervals))
	}

	wantUpdates := []int{30, 10, 5}
	for i, res := range results {
		if res.NUpdates != wantUpdates[i] {
			t.Fatalf("interval %gs: NUpdates = %d, want %d", intervals[i], res.NUpdates, wantUpdates[i])
		}
	}
	// Slot order follows the input intervals despite concurrent trials.
	if results[0].Config.Attitude.Interval != 10 || results[2].Config.Attitude.Interval != 60 {
		t.Fatalf("result order does not match input intervals")
	}
}

func TestRunCadenceSweepDeterministicPerInterval(t *testing.T) {
	r := NewRunner(nil, nil)
	a, err := RunCadenceSweep(context.Background(), r, QuantumIMU, []float64{20, 40}, 120, 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RunUpdatesScenario(context.Background(), r, QuantumIMU, 20, 120, 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	// A sweep trial and a standalone trial with the same parameters agree
	// exactly; concurrency must not leak shared random state.
	if a[0].FinalPositionErrorRMS() != b.FinalPositionErrorRMS() {
		t.Fatalf("sweep trial %v != standalone trial %v",
			a[0].FinalPositionErrorRMS(), b.FinalPositionErrorRMS())
	}
}

func TestRunComparisonQuantumOutperformsClassical(t *testing.T) {
	r := NewRunner(nil, nil)
	cmp, err := RunComparison(context.Background(), r, 3600, 1, 42)
	if err != nil {
		t.Fatal(err)
	}

	classical := cmp.Classical.FinalPositionErrorRMS()
	quantum := cmp.Quantum.FinalPositionErrorRMS()
	if classical < 10*quantum {
		t.Fatalf("classical coast error %v m not ≥ 10× quantum %v m over 1 h", classical, quantum)
	}
	if cmp.Classical.Config.Profile.Name != "classical" || cmp.Quantum.Config.Profile.Name != "quantum" {
		t.Fatalf("profile mixup: %q vs %q",
			cmp.Classical.Config.Profile.Name, cmp.Quantum.Config.Profile.Name)
	}
}
