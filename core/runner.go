package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/navigation-simulator/internal/logging"
	"gonum.org/v1/gonum/mat"
)

// BodyFrameThrust is the constant body-frame specific force applied in every
// trial, modelling deep-space maneuvering thrust along the body x-axis.
//
// The true attitude never changes, but the filter's estimated attitude can
// drift, so any attitude error mis-rotates this thrust into the nav frame
// and produces velocity and position error even with perfect accelerometer
// data. That coupling is what makes attitude aiding improve position
// accuracy.
var BodyFrameThrust = Vec3{X: 0.1, Y: 0, Z: 0}

// TrialMetricsRecorder receives per-trial outcomes. Satisfied by the
// observability collector; a nil recorder disables metrics.
type TrialMetricsRecorder interface {
	ObserveTrial(experiment, profile, outcome string, seconds float64)
	ObserveTrialResult(experiment, profile string, aidingUpdates int, finalPosErrorM float64)
}

// Runner drives deterministic navigation trials.
type Runner struct {
	Log     logging.Logger
	Metrics TrialMetricsRecorder

	tracer trace.Tracer
}

// NewRunner constructs a runner. log may be nil (logs are dropped) and
// metrics may be nil (no metrics recorded).
func NewRunner(log logging.Logger, metrics TrialMetricsRecorder) *Runner {
	if log == nil {
		log = logging.Noop()
	}
	return &Runner{
		Log:     log,
		Metrics: metrics,
		tracer:  otel.Tracer("navigation-simulator/core"),
	}
}

// Run executes one trial: strapdown propagation of the true state, noisy IMU
// measurement, filter predict, conditional aiding updates, and time-series
// accumulation. Deterministic for a fixed config seed.
func (r *Runner) Run(ctx context.Context, cfg ExperimentConfig) (*ExperimentResults, error) {
	ctx, span := r.tracer.Start(ctx, "experiment.run",
		trace.WithAttributes(
			attribute.String("experiment", cfg.Name),
			attribute.String("imu_profile", cfg.Profile.Name),
			attribute.Int("n_steps", cfg.NSteps()),
		))
	defer span.End()

	start := time.Now()
	results, err := r.run(ctx, cfg)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
	}
	if r.Metrics != nil {
		r.Metrics.ObserveTrial(cfg.Name, cfg.Profile.Name, outcome, time.Since(start).Seconds())
		if err == nil {
			r.Metrics.ObserveTrialResult(cfg.Name, cfg.Profile.Name, results.NUpdates, results.FinalPositionErrorRMS())
		}
	}
	return results, err
}

func (r *Runner) run(ctx context.Context, cfg ExperimentConfig) (*ExperimentResults, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("%w: step size must be positive, got %v", ErrInvalidArgument, cfg.Dt)
	}
	nSteps := cfg.NSteps()
	ctx, log := logging.WithTrialLogger(ctx, r.Log)
	log = log.With(logging.String("experiment", cfg.Name))

	imu := NewIMU6DOF(cfg.Profile, cfg.Seed)

	var tracker *StarTracker
	if cfg.Attitude.Enabled() {
		tracker = NewStarTracker(cfg.Attitude.Tracker, cfg.Seed+1)
	}

	var fixNoise *WhiteNoise
	if cfg.PositionFixes.Enabled() {
		fixNoise = NewWhiteNoise(cfg.PositionFixes.Sigma, cfg.Seed+2)
	}

	truePos := cfg.InitialPosition
	trueVel := cfg.InitialVelocity
	trueAtt := cfg.InitialAttitude

	ekf := NewINSEKF(INSState{
		Position: cfg.InitialPosition,
		Velocity: cfg.InitialVelocity,
		Attitude: cfg.InitialAttitude,
	}, cfg.InitialCovariance, cfg.Profile)

	res := newResults(cfg, nSteps)
	res.record(0, 0, truePos, trueVel, trueAtt, ekf)

	nUpdates := 0
	lastAttUpdate := 0.0
	lastFixUpdate := 0.0

	for step := 0; step < nSteps; step++ {
		t := float64(step+1) * cfg.Dt

		// True state: rotate the constant body thrust through the true
		// attitude, then integrate velocity before position. The true
		// attitude stays fixed (zero angular rate scenario).
		cTrue := RotationMatrix(trueAtt)
		trueAccelNav := Rotate(cTrue, BodyFrameThrust)
		trueVel = trueVel.Add(trueAccelNav.Scale(cfg.Dt))
		truePos = truePos.Add(trueVel.Scale(cfg.Dt))

		// The IMU senses the body-frame thrust and zero angular rate.
		accelMeas, omegaMeas, err := imu.Measure(BodyFrameThrust, Vec3{}, cfg.Dt)
		if err != nil {
			return nil, err
		}

		ekf.Predict(accelMeas, omegaMeas, cfg.Dt)

		// The runner's own elapsed-time bookkeeping gates aiding, not the
		// sensor's internal rate limit, so intervals shorter than the
		// sensor's native rate still produce updates.
		if tracker != nil && t-lastAttUpdate >= cfg.Attitude.Interval {
			attMeas := tracker.ForceMeasure(trueAtt)
			if err := ekf.UpdateAttitude(attMeas, tracker.NoiseCovariance()); err != nil {
				return nil, fmt.Errorf("attitude update at t=%gs: %w", t, err)
			}
			lastAttUpdate = t
			nUpdates++
		}

		if fixNoise != nil && t-lastFixUpdate >= cfg.PositionFixes.Interval {
			fix := truePos.Add(fixNoise.SampleVec3())
			if err := ekf.UpdatePosition(fix, positionFixCovariance(cfg.PositionFixes.Sigma)); err != nil {
				return nil, fmt.Errorf("position update at t=%gs: %w", t, err)
			}
			lastFixUpdate = t
			nUpdates++
		}

		if !ekf.State.IsFinite() {
			return nil, fmt.Errorf("%w: non-finite filter state at t=%gs", ErrNumerical, t)
		}

		res.record(step+1, t, truePos, trueVel, trueAtt, ekf)
	}

	res.NUpdates = nUpdates
	log.Debug(ctx, "trial complete",
		logging.Int("n_updates", nUpdates),
		logging.Any("final_pos_error_m", res.FinalPositionErrorRMS()),
	)
	return res, nil
}

func positionFixCovariance(sigma float64) *mat.SymDense {
	v := sigma * sigma
	return mat.NewSymDense(3, []float64{
		v, 0, 0,
		0, v, 0,
		0, 0, v,
	})
}

func newResults(cfg ExperimentConfig, nSteps int) *ExperimentResults {
	n := nSteps + 1
	return &ExperimentResults{
		Config:       cfg,
		Time:         make([]float64, n),
		TruePosition: make([]Vec3, n),
		TrueVelocity: make([]Vec3, n),
		TrueAttitude: make([]Vec3, n),
		EstPosition:  make([]Vec3, n),
		EstVelocity:  make([]Vec3, n),
		EstAttitude:  make([]Vec3, n),
		PosError:     make([]Vec3, n),
		VelError:     make([]Vec3, n),
		AttError:     make([]Vec3, n),
		PosSigma:     make([]Vec3, n),
		VelSigma:     make([]Vec3, n),
		AttSigma:     make([]Vec3, n),
	}
}

func (r *ExperimentResults) record(i int, t float64, truePos, trueVel, trueAtt Vec3, ekf *INSEKF) {
	r.Time[i] = t
	r.TruePosition[i] = truePos
	r.TrueVelocity[i] = trueVel
	r.TrueAttitude[i] = trueAtt
	r.EstPosition[i] = ekf.State.Position
	r.EstVelocity[i] = ekf.State.Velocity
	r.EstAttitude[i] = ekf.State.Attitude
	r.PosError[i] = ekf.State.Position.Sub(truePos)
	r.VelError[i] = ekf.State.Velocity.Sub(trueVel)
	r.AttError[i] = ekf.State.Attitude.Sub(trueAtt)
	r.PosSigma[i] = ekf.PositionUncertainty()
	r.VelSigma[i] = ekf.VelocityUncertainty()
	r.AttSigma[i] = ekf.AttitudeUncertainty()
}
