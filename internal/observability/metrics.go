package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ExperimentCollector bundles Prometheus metrics for navigation trials and
// provides a ready-to-serve /metrics handler for long-running sweeps.
type ExperimentCollector struct {
	gatherer prometheus.Gatherer

	Trials         *prometheus.CounterVec
	TrialDurations *prometheus.HistogramVec
	AidingUpdates  *prometheus.CounterVec
	FinalPosError  *prometheus.GaugeVec
}

// NewExperimentCollector registers trial metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewExperimentCollector(reg prometheus.Registerer) (*ExperimentCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	trials := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nav_trials_total",
		Help: "Total number of navigation trials run, labeled by experiment, IMU profile, and outcome.",
	}, []string{"experiment", "profile", "outcome"})
	trials, err := registerCounterVec(reg, trials, "nav_trials_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nav_trial_duration_seconds",
		Help:    "Wall-clock duration of a navigation trial in seconds.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"experiment", "profile"})
	durations, err = registerHistogramVec(reg, durations, "nav_trial_duration_seconds")
	if err != nil {
		return nil, err
	}

	updates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nav_aiding_updates_total",
		Help: "Total number of aiding measurement updates applied to the filter.",
	}, []string{"experiment", "profile"})
	updates, err = registerCounterVec(reg, updates, "nav_aiding_updates_total")
	if err != nil {
		return nil, err
	}

	finalErr := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nav_final_position_error_metres",
		Help: "Final position error RMS of the most recent trial, in metres.",
	}, []string{"experiment", "profile"})
	finalErr, err = registerGaugeVec(reg, finalErr, "nav_final_position_error_metres")
	if err != nil {
		return nil, err
	}

	return &ExperimentCollector{
		gatherer:       gatherer,
		Trials:         trials,
		TrialDurations: durations,
		AidingUpdates:  updates,
		FinalPosError:  finalErr,
	}, nil
}

// ObserveTrial records a completed trial attempt. Satisfies the runner's
// TrialMetricsRecorder interface.
func (c *ExperimentCollector) ObserveTrial(experiment, profile, outcome string, seconds float64) {
	if c == nil {
		return
	}
	if c.Trials != nil {
		c.Trials.WithLabelValues(experiment, profile, outcome).Inc()
	}
	if c.TrialDurations != nil {
		c.TrialDurations.WithLabelValues(experiment, profile).Observe(seconds)
	}
}

// ObserveTrialResult records the outputs of a successful trial.
func (c *ExperimentCollector) ObserveTrialResult(experiment, profile string, aidingUpdates int, finalPosErrorM float64) {
	if c == nil {
		return
	}
	if c.AidingUpdates != nil {
		c.AidingUpdates.WithLabelValues(experiment, profile).Add(float64(aidingUpdates))
	}
	if c.FinalPosError != nil {
		c.FinalPosError.WithLabelValues(experiment, profile).Set(finalPosErrorM)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ExperimentCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
