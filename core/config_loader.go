package core

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// YAML shapes stay unexported so the file format can evolve independently of
// ExperimentConfig.
type experimentYAML struct {
	// Pointer fields distinguish an explicit zero from an absent key, so a
	// configured seed of 0 is honored rather than replaced by the default.
	Simulation struct {
		Name          string   `yaml:"name"`
		DurationHours *float64 `yaml:"duration_hours"`
		DtSeconds     *float64 `yaml:"dt_seconds"`
		Seed          *int64   `yaml:"seed"`
	} `yaml:"simulation"`

	IMU struct {
		Profile string `yaml:"profile"`
	} `yaml:"imu"`

	StarTracker struct {
		Enabled               bool    `yaml:"enabled"`
		Config                string  `yaml:"config"`
		UpdateIntervalSeconds float64 `yaml:"update_interval_seconds"`
	} `yaml:"star_tracker"`

	InitialConditions struct {
		PositionM   []float64 `yaml:"position_m"`
		VelocityMS  []float64 `yaml:"velocity_m_s"`
		AttitudeRad []float64 `yaml:"attitude_rad"`
	} `yaml:"initial_conditions"`

	InitialUncertainty struct {
		PositionM    *float64 `yaml:"position_m"`
		VelocityMS   *float64 `yaml:"velocity_m_s"`
		AttitudeRad  *float64 `yaml:"attitude_rad"`
		AccelBiasMS2 *float64 `yaml:"accel_bias_m_s2"`
		GyroBiasRadS *float64 `yaml:"gyro_bias_rad_s"`
	} `yaml:"initial_uncertainty"`

	Output struct {
		Directory string `yaml:"directory"`
		Prefix    string `yaml:"prefix"`
	} `yaml:"output"`
}

// LoadExperimentConfig reads a YAML experiment configuration from r. Missing
// fields take the documented defaults (duration 1 h, dt 1 s, seed 42,
// profile "classical", uncertainty: pos 10 m, vel 0.1 m/s, att 0.001 rad,
// accel bias 1e-4 m/s², gyro bias 1e-5 rad/s). Unknown profile or tracker
// names fail with a configuration error before any simulation work begins.
func LoadExperimentConfig(r io.Reader) (ExperimentConfig, error) {
	var payload experimentYAML
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return ExperimentConfig{}, fmt.Errorf("%w: decode experiment config: %v", ErrConfiguration, err)
	}

	sim := payload.Simulation
	name := sim.Name
	if name == "" {
		name = "experiment"
	}
	durationHours := floatOr(sim.DurationHours, 1.0)
	dtSeconds := floatOr(sim.DtSeconds, 1.0)
	seed := int64Or(sim.Seed, 42)

	profileName := payload.IMU.Profile
	if profileName == "" {
		profileName = "classical"
	}
	profile, err := IMUProfileByName(profileName)
	if err != nil {
		return ExperimentConfig{}, err
	}

	aiding := NoAttitudeAiding()
	if payload.StarTracker.Enabled {
		trackerName := payload.StarTracker.Config
		if trackerName == "" {
			trackerName = "standard"
		}
		tracker, err := StarTrackerConfigByName(trackerName)
		if err != nil {
			return ExperimentConfig{}, err
		}
		interval := payload.StarTracker.UpdateIntervalSeconds
		if interval == 0 {
			interval = 60.0
		}
		aiding = PeriodicAttitudeAiding(tracker, interval)
	}

	unc := payload.InitialUncertainty
	cov := DefaultInitialCovariance(
		floatOr(unc.PositionM, 10.0),
		floatOr(unc.VelocityMS, 0.1),
		floatOr(unc.AttitudeRad, 0.001),
		floatOr(unc.AccelBiasMS2, 1e-4),
		floatOr(unc.GyroBiasRadS, 1e-5),
	)

	out := payload.Output
	if out.Directory == "" {
		out.Directory = "results"
	}
	if out.Prefix == "" {
		out.Prefix = "experiment"
	}

	return ExperimentConfig{
		Name:              name,
		Duration:          durationHours * 3600.0,
		Dt:                dtSeconds,
		Seed:              seed,
		Profile:           profile,
		Attitude:          aiding,
		PositionFixes:     NoPositionAiding(),
		InitialPosition:   vecOr(payload.InitialConditions.PositionM, Vec3{}),
		InitialVelocity:   vecOr(payload.InitialConditions.VelocityMS, Vec3{X: 1000}),
		InitialAttitude:   vecOr(payload.InitialConditions.AttitudeRad, Vec3{}),
		InitialCovariance: cov,
		OutputDir:         out.Directory,
		OutputPrefix:      out.Prefix,
	}, nil
}

// LoadExperimentConfigFile loads a YAML experiment configuration from path.
func LoadExperimentConfigFile(path string) (ExperimentConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return ExperimentConfig{}, fmt.Errorf("%w: open config %q: %v", ErrConfiguration, path, err)
	}
	defer f.Close()
	return LoadExperimentConfig(f)
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func int64Or(v *int64, def int64) int64 {
	if v == nil {
		return def
	}
	return *v
}

func vecOr(s []float64, def Vec3) Vec3 {
	if len(s) != 3 {
		return def
	}
	return Vec3FromSlice(s)
}
