package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ArcsecToRad converts arcseconds to radians.
const ArcsecToRad = 4.848136811095360e-6

// StarTrackerConfig is an immutable star tracker specification.
type StarTrackerConfig struct {
	Name           string
	AccuracyArcsec float64 // 1-σ attitude accuracy per axis
	UpdateRateHz   float64 // native measurement rate
	FieldOfViewDeg float64
}

// AccuracyRad returns the per-axis 1-σ accuracy in radians.
func (c StarTrackerConfig) AccuracyRad() float64 {
	return c.AccuracyArcsec * ArcsecToRad
}

// UpdatePeriod returns the native update period in seconds.
func (c StarTrackerConfig) UpdatePeriod() float64 {
	return 1.0 / c.UpdateRateHz
}

// StandardStarTracker is representative of flight-proven systems.
var StandardStarTracker = StarTrackerConfig{
	Name:           "standard",
	AccuracyArcsec: 5.0,
	UpdateRateHz:   10.0,
	FieldOfViewDeg: 20.0,
}

// HighAccuracyStarTracker is a high-end tracker.
var HighAccuracyStarTracker = StarTrackerConfig{
	Name:           "high_accuracy",
	AccuracyArcsec: 1.0,
	UpdateRateHz:   20.0,
	FieldOfViewDeg: 15.0,
}

// StarTrackerConfigByName resolves one of the known tracker names
// ("standard" or "high_accuracy"). Unknown names are a configuration error.
func StarTrackerConfigByName(name string) (StarTrackerConfig, error) {
	switch name {
	case "standard":
		return StandardStarTracker, nil
	case "high_accuracy":
		return HighAccuracyStarTracker, nil
	default:
		return StarTrackerConfig{}, fmt.Errorf("%w: unknown star tracker config %q (valid: standard, high_accuracy)", ErrConfiguration, name)
	}
}

// StarTracker is a rate-limited noisy attitude measurement source.
type StarTracker struct {
	Config StarTrackerConfig

	seed  int64
	noise *WhiteNoise

	lastMeasurementTime float64
}

// NewStarTracker constructs a tracker with its own private noise generator.
func NewStarTracker(config StarTrackerConfig, seed int64) *StarTracker {
	return &StarTracker{
		Config:              config,
		seed:                seed,
		noise:               NewWhiteNoise(config.AccuracyRad(), seed),
		lastMeasurementTime: math.Inf(-1),
	}
}

// Measure returns a noisy attitude sample if at least one update period has
// elapsed since the last successful measurement. When rate-limited it returns
// ok=false and leaves both the noise generator and the internal timestamp
// untouched.
func (st *StarTracker) Measure(trueAttitude Vec3, t float64) (Vec3, bool) {
	if t-st.lastMeasurementTime < st.Config.UpdatePeriod() {
		return Vec3{}, false
	}
	st.lastMeasurementTime = t
	return trueAttitude.Add(st.noise.SampleVec3()), true
}

// ForceMeasure always produces a sample and never touches the rate-limit
// timestamp. The experiment orchestrator uses this together with its own
// update-time bookkeeping, which is authoritative for aiding cadence.
func (st *StarTracker) ForceMeasure(trueAttitude Vec3) Vec3 {
	return trueAttitude.Add(st.noise.SampleVec3())
}

// IsAvailable reports whether a rate-limited measurement would succeed at t.
func (st *StarTracker) IsAvailable(t float64) bool {
	return t-st.lastMeasurementTime >= st.Config.UpdatePeriod()
}

// NoiseCovariance returns the diagonal 3×3 measurement noise covariance in
// rad².
func (st *StarTracker) NoiseCovariance() *mat.SymDense {
	v := st.Config.AccuracyRad() * st.Config.AccuracyRad()
	return mat.NewSymDense(3, []float64{
		v, 0, 0,
		0, v, 0,
		0, 0, v,
	})
}

// Reset restores the tracker to its initial state, optionally with a new
// seed.
func (st *StarTracker) Reset(seed int64) {
	st.seed = seed
	st.noise = NewWhiteNoise(st.Config.AccuracyRad(), seed)
	st.lastMeasurementTime = math.Inf(-1)
}
