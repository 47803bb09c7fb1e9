package core

import (
	"context"
	"fmt"
	"sync"
)

// Standard scenario initial conditions: origin start, 1 km/s along x,
// zero attitude.
var (
	scenarioInitialVelocity = Vec3{X: 1000, Y: 0, Z: 0}
)

// defaultScenarioConfig fills in everything the named scenarios share.
func defaultScenarioConfig(name string, profile IMUProfile, duration, dt float64, seed int64) ExperimentConfig {
	return ExperimentConfig{
		Name:              name,
		Duration:          duration,
		Dt:                dt,
		Seed:              seed,
		Profile:           profile,
		Attitude:          NoAttitudeAiding(),
		PositionFixes:     NoPositionAiding(),
		InitialPosition:   Vec3{},
		InitialVelocity:   scenarioInitialVelocity,
		InitialAttitude:   Vec3{},
		InitialCovariance: DefaultInitialCovariance(10.0, 0.1, 0.001, 1e-4, 1e-5),
		OutputDir:         "results",
		OutputPrefix:      "experiment",
	}
}

// RunCoastScenario runs an inertial-only trial with no aiding updates.
func RunCoastScenario(ctx context.Context, r *Runner, profile IMUProfile, duration, dt float64, seed int64) (*ExperimentResults, error) {
	cfg := defaultScenarioConfig(fmt.Sprintf("coast_%s", profile.Name), profile, duration, dt, seed)
	return r.Run(ctx, cfg)
}

// RunUpdatesScenario runs a trial with periodic standard star tracker
// updates at the given interval.
func RunUpdatesScenario(ctx context.Context, r *Runner, profile IMUProfile, interval, duration, dt float64, seed int64) (*ExperimentResults, error) {
	name := fmt.Sprintf("updates_%s_%.0fs", profile.Name, interval)
	cfg := defaultScenarioConfig(name, profile, duration, dt, seed)
	cfg.Attitude = PeriodicAttitudeAiding(StandardStarTracker, interval)
	return r.Run(ctx, cfg)
}

// RunPositionFixScenario runs a trial with periodic position fixes of the
// given accuracy, exercising the filter's position update path.
func RunPositionFixScenario(ctx context.Context, r *Runner, profile IMUProfile, sigma, interval, duration, dt float64, seed int64) (*ExperimentResults, error) {
	name := fmt.Sprintf("posfix_%s_%.0fs", profile.Name, interval)
	cfg := defaultScenarioConfig(name, profile, duration, dt, seed)
	cfg.PositionFixes = PeriodicPositionAiding(sigma, interval)
	return r.Run(ctx, cfg)
}

// RunCadenceSweep runs RunUpdatesScenario once per interval with the same
// seed. Trials are independent, so they run concurrently; the returned slice
// preserves the input interval order. The first trial error aborts the sweep
// result (remaining trials still finish).
func RunCadenceSweep(ctx context.Context, r *Runner, profile IMUProfile, intervals []float64, duration, dt float64, seed int64) ([]*ExperimentResults, error) {
	results := make([]*ExperimentResults, len(intervals))
	errs := make([]error, len(intervals))

	var wg sync.WaitGroup
	for i, interval := range intervals {
		wg.Add(1)
		go func(i int, interval float64) {
			defer wg.Done()
			results[i], errs[i] = RunUpdatesScenario(ctx, r, profile, interval, duration, dt, seed)
		}(i, interval)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sweep interval %gs: %w", intervals[i], err)
		}
	}
	return results, nil
}

// ComparisonResults pairs the classical and quantum runs of the same
// scenario.
type ComparisonResults struct {
	Classical *ExperimentResults
	Quantum   *ExperimentResults
}

// RunComparison runs the same coast scenario for the classical and quantum
// profiles under an identical seed, concurrently.
func RunComparison(ctx context.Context, r *Runner, duration, dt float64, seed int64) (*ComparisonResults, error) {
	var (
		wg         sync.WaitGroup
		cRes, qRes *ExperimentResults
		cErr, qErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cRes, cErr = RunCoastScenario(ctx, r, ClassicalIMU, duration, dt, seed)
	}()
	go func() {
		defer wg.Done()
		qRes, qErr = RunCoastScenario(ctx, r, QuantumIMU, duration, dt, seed)
	}()
	wg.Wait()

	if cErr != nil {
		return nil, fmt.Errorf("classical trial: %w", cErr)
	}
	if qErr != nil {
		return nil, fmt.Errorf("quantum trial: %w", qErr)
	}
	return &ComparisonResults{Classical: cRes, Quantum: qRes}, nil
}
