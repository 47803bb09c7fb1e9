package core

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// AidingMode tags how (and whether) an aiding channel feeds the filter.
type AidingMode int

const (
	// AidingNone disables the channel entirely (coast mode).
	AidingNone AidingMode = iota
	// AidingPeriodic applies an update whenever the orchestrator's own
	// elapsed-time bookkeeping reaches the configured interval.
	AidingPeriodic
)

// AttitudeAiding describes the star tracker aiding channel. The explicit
// mode tag replaces the legacy "interval = +Inf means disabled" sentinel.
type AttitudeAiding struct {
	Mode     AidingMode
	Tracker  StarTrackerConfig
	Interval float64 // seconds between updates, AidingPeriodic only
}

// NoAttitudeAiding returns the disabled channel.
func NoAttitudeAiding() AttitudeAiding {
	return AttitudeAiding{Mode: AidingNone}
}

// PeriodicAttitudeAiding returns a channel applying tracker measurements
// every interval seconds.
func PeriodicAttitudeAiding(tracker StarTrackerConfig, interval float64) AttitudeAiding {
	return AttitudeAiding{Mode: AidingPeriodic, Tracker: tracker, Interval: interval}
}

// Enabled reports whether the channel produces updates.
func (a AttitudeAiding) Enabled() bool { return a.Mode == AidingPeriodic }

// PositionAiding describes an optional periodic position-fix channel (for
// example radiometric navigation), using the same orchestrator-side gate as
// the star tracker.
type PositionAiding struct {
	Mode     AidingMode
	Sigma    float64 // 1-σ per-axis fix accuracy in metres
	Interval float64 // seconds between fixes
}

// NoPositionAiding returns the disabled channel.
func NoPositionAiding() PositionAiding {
	return PositionAiding{Mode: AidingNone}
}

// PeriodicPositionAiding returns a channel applying position fixes with the
// given accuracy every interval seconds.
func PeriodicPositionAiding(sigma, interval float64) PositionAiding {
	return PositionAiding{Mode: AidingPeriodic, Sigma: sigma, Interval: interval}
}

// Enabled reports whether the channel produces updates.
func (a PositionAiding) Enabled() bool { return a.Mode == AidingPeriodic }

// ExperimentConfig describes one deterministic trial. It is treated as an
// immutable value: override helpers construct a new config rather than
// mutating in place.
type ExperimentConfig struct {
	Name     string
	Duration float64 // seconds
	Dt       float64 // step size, seconds
	Seed     int64

	Profile       IMUProfile
	Attitude      AttitudeAiding
	PositionFixes PositionAiding

	InitialPosition Vec3
	InitialVelocity Vec3
	InitialAttitude Vec3

	InitialCovariance *mat.Dense // 15×15

	OutputDir    string
	OutputPrefix string
}

// NSteps returns the number of simulation steps, floor(duration/dt).
func (c ExperimentConfig) NSteps() int {
	return int(c.Duration / c.Dt)
}

// WithName returns a copy of the config under a different name.
func (c ExperimentConfig) WithName(name string) ExperimentConfig {
	c.Name = name
	return c
}

// WithSeed returns a copy of the config with a different seed.
func (c ExperimentConfig) WithSeed(seed int64) ExperimentConfig {
	c.Seed = seed
	return c
}

// ExperimentResults holds the parallel time series of one trial. Index 0 is
// the initial state; each series has NSteps+1 samples. Created once per
// trial and immutable thereafter.
type ExperimentResults struct {
	Config ExperimentConfig

	Time []float64

	TruePosition []Vec3
	TrueVelocity []Vec3
	TrueAttitude []Vec3

	EstPosition []Vec3
	EstVelocity []Vec3
	EstAttitude []Vec3

	// Errors are estimated − true, unclamped.
	PosError []Vec3
	VelError []Vec3
	AttError []Vec3

	// 1-σ uncertainty per axis from the covariance diagonal.
	PosSigma []Vec3
	VelSigma []Vec3
	AttSigma []Vec3

	NUpdates int
}

// FinalPositionErrorRMS returns the norm of the last position error sample.
func (r *ExperimentResults) FinalPositionErrorRMS() float64 {
	return r.PosError[len(r.PosError)-1].Norm()
}

// FinalVelocityErrorRMS returns the norm of the last velocity error sample.
func (r *ExperimentResults) FinalVelocityErrorRMS() float64 {
	return r.VelError[len(r.VelError)-1].Norm()
}

// MaxPositionError returns the largest position error magnitude over the
// trial.
func (r *ExperimentResults) MaxPositionError() float64 {
	maxErr := 0.0
	for _, e := range r.PosError {
		maxErr = math.Max(maxErr, e.Norm())
	}
	return maxErr
}
