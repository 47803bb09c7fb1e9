package core

import (
	"context"
	"errors"
	"testing"
)

func coastConfig(profile IMUProfile, duration, dt float64, seed int64) ExperimentConfig {
	return defaultScenarioConfig("test_coast", profile, duration, dt, seed)
}

func TestRunRejectsNonPositiveDt(t *testing.T) {
	r := NewRunner(nil, nil)
	cfg := coastConfig(ClassicalIMU, 60, 0, 42)
	if _, err := r.Run(context.Background(), cfg); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("dt=0: err = %v, want ErrInvalidArgument", err)
	}
	cfg.Dt = -1
	if _, err := r.Run(context.Background(), cfg); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("dt=-1: err = %v, want ErrInvalidArgument", err)
	}
}

func TestRunSeriesLengthAndInitialSample(t *testing.T) {
	r := NewRunner(nil, nil)
	res, err := r.Run(context.Background(), coastConfig(ClassicalIMU, 60, 1, 42))
	if err != nil {
		t.Fatal(err)
	}

	// 60 s at 1 s steps gives the initial sample plus 60 steps.
	if len(res.Time) != 61 {
		t.Fatalf("len(Time) = %d, want 61", len(res.Time))
	}
	if res.Time[0] != 0 || res.Time[60] != 60 {
		t.Fatalf("time axis = [%v .. %v], want [0 .. 60]", res.Time[0], res.Time[60])
	}

	// Estimate starts at truth, so the initial error is exactly zero.
	if res.PosError[0].Norm() != 0 || res.VelError[0].Norm() != 0 || res.AttError[0].Norm() != 0 {
		t.Fatalf("nonzero initial error: pos %+v vel %+v att %+v",
			res.PosError[0], res.VelError[0], res.AttError[0])
	}
	if res.NUpdates != 0 {
		t.Fatalf("coast trial recorded %d updates, want 0", res.NUpdates)
	}
}

func TestRunCoastErrorGrows(t *testing.T) {
	r := NewRunner(nil, nil)
	res, err := r.Run(context.Background(), coastConfig(ClassicalIMU, 60, 1, 42))
	if err != nil {
		t.Fatal(err)
	}
	if final := res.FinalPositionErrorRMS(); final <= 0 {
		t.Fatalf("final position error = %v, want > 0 under coast", final)
	}
	// Uncertainty grows monotonically without aiding.
	if res.PosSigma[60].X <= res.PosSigma[0].X {
		t.Fatalf("position 1-σ did not grow: %v -> %v", res.PosSigma[0].X, res.PosSigma[60].X)
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	r := NewRunner(nil, nil)
	cfg := coastConfig(ClassicalIMU, 120, 1, 7)

	a, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.Time {
		if a.PosError[i] != b.PosError[i] || a.EstAttitude[i] != b.EstAttitude[i] {
			t.Fatalf("step %d diverged between identical runs", i)
		}
	}
}

func TestRunDifferentSeedsDiffer(t *testing.T) {
	r := NewRunner(nil, nil)
	a, err := r.Run(context.Background(), coastConfig(ClassicalIMU, 60, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Run(context.Background(), coastConfig(ClassicalIMU, 60, 1, 2))
	if err != nil {
		t.Fatal(err)
	}
	if a.FinalPositionErrorRMS() == b.FinalPositionErrorRMS() {
		t.Fatal("different seeds produced identical trajectories")
	}
}

func TestRunAidingUpdateCount(t *testing.T) {
	r := NewRunner(nil, nil)
	cfg := coastConfig(ClassicalIMU, 300, 1, 42)
	cfg.Attitude = PeriodicAttitudeAiding(StandardStarTracker, 10)

	res, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	// Updates land at t = 10, 20, ..., 300.
	if res.NUpdates != 30 {
		t.Fatalf("NUpdates = %d, want 30 for 300 s at a 10 s interval", res.NUpdates)
	}
}

func TestRunAidingIntervalBeatsTrackerRateLimit(t *testing.T) {
	// The orchestrator's elapsed-time gate is authoritative: a 1 s aiding
	// interval with dt=0.5 must update every second even though the tracker
	// would natively allow 10 Hz, and regardless of its internal timestamp.
	r := NewRunner(nil, nil)
	cfg := coastConfig(QuantumIMU, 10, 0.5, 42)
	cfg.Attitude = PeriodicAttitudeAiding(StandardStarTracker, 1)

	res, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.NUpdates != 10 {
		t.Fatalf("NUpdates = %d, want 10", res.NUpdates)
	}
}

func TestRunAttitudeAidingBoundsAttitudeError(t *testing.T) {
	r := NewRunner(nil, nil)
	duration, dt := 3600.0, 1.0

	coast, err := r.Run(context.Background(), coastConfig(ClassicalIMU, duration, dt, 42))
	if err != nil {
		t.Fatal(err)
	}

	aided := coastConfig(ClassicalIMU, duration, dt, 42)
	aided.Attitude = PeriodicAttitudeAiding(StandardStarTracker, 60)
	withUpdates, err := r.Run(context.Background(), aided)
	if err != nil {
		t.Fatal(err)
	}

	n := len(coast.AttError) - 1
	if withUpdates.AttError[n].Norm() >= coast.AttError[n].Norm() {
		t.Fatalf("aided attitude error %v not below coast %v",
			withUpdates.AttError[n].Norm(), coast.AttError[n].Norm())
	}
	if withUpdates.FinalPositionErrorRMS() >= coast.FinalPositionErrorRMS() {
		t.Fatalf("aided position error %v not below coast %v",
			withUpdates.FinalPositionErrorRMS(), coast.FinalPositionErrorRMS())
	}
}

func TestRunPositionFixesBoundPositionError(t *testing.T) {
	r := NewRunner(nil, nil)
	duration, dt := 1800.0, 1.0

	coast, err := r.Run(context.Background(), coastConfig(ClassicalIMU, duration, dt, 42))
	if err != nil {
		t.Fatal(err)
	}

	fixed := coastConfig(ClassicalIMU, duration, dt, 42)
	fixed.PositionFixes = PeriodicPositionAiding(10.0, 60)
	withFixes, err := r.Run(context.Background(), fixed)
	if err != nil {
		t.Fatal(err)
	}

	if withFixes.NUpdates != 30 {
		t.Fatalf("NUpdates = %d, want 30", withFixes.NUpdates)
	}
	if withFixes.FinalPositionErrorRMS() >= coast.FinalPositionErrorRMS() {
		t.Fatalf("fixed position error %v not below coast %v",
			withFixes.FinalPositionErrorRMS(), coast.FinalPositionErrorRMS())
	}
}

type captureMetrics struct {
	trials     int
	outcomes   []string
	aidingObsv int
}

func (c *captureMetrics) ObserveTrial(experiment, profile, outcome string, seconds float64) {
	c.trials++
	c.outcomes = append(c.outcomes, outcome)
}

func (c *captureMetrics) ObserveTrialResult(experiment, profile string, aidingUpdates int, finalPosErrorM float64) {
	c.aidingObsv = aidingUpdates
}

func TestRunRecordsMetrics(t *testing.T) {
	m := &captureMetrics{}
	r := NewRunner(nil, m)

	cfg := coastConfig(QuantumIMU, 30, 1, 42)
	cfg.Attitude = PeriodicAttitudeAiding(StandardStarTracker, 10)
	if _, err := r.Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}

	if m.trials != 1 || len(m.outcomes) != 1 || m.outcomes[0] != "ok" {
		t.Fatalf("metrics = %+v, want one ok trial", m)
	}
	if m.aidingObsv != 3 {
		t.Fatalf("recorded aiding updates = %d, want 3", m.aidingObsv)
	}

	// Failed trials report the error outcome and no result observation.
	bad := coastConfig(QuantumIMU, 30, -1, 42)
	if _, err := r.Run(context.Background(), bad); err == nil {
		t.Fatal("expected error for negative dt")
	}
	if m.trials != 2 || m.outcomes[1] != "error" {
		t.Fatalf("metrics after failure = %+v", m)
	}
}
