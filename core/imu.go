package core

import (
	"fmt"
	"math"
	"math/rand"
)

// Unit conversion constants for IMU spec sheets.
const (
	// MicroGToMS2 converts μg to m/s².
	MicroGToMS2 = 9.80665e-6
	// DegPerHourToRadS converts °/h to rad/s.
	DegPerHourToRadS = 4.848136811095360e-6
	// PPM is parts per million.
	PPM = 1e-6
)

// IMUProfile is an immutable noise and error specification for a 6-DOF IMU.
// All values are stored in SI units.
type IMUProfile struct {
	Name string

	// Accelerometer parameters.
	AccelWhiteNoise      float64 // m/s²/√Hz (velocity random walk)
	AccelBiasInstability float64 // m/s² (Allan deviation minimum)
	AccelTurnOnBias      float64 // m/s² (1-σ initial bias)
	AccelScaleFactor     float64 // dimensionless (1-σ)

	// Gyroscope parameters.
	GyroWhiteNoise      float64 // rad/s/√Hz (angle random walk)
	GyroBiasInstability float64 // rad/s
	GyroTurnOnBias      float64 // rad/s (1-σ initial bias)
	GyroScaleFactor     float64 // dimensionless (1-σ)
}

// IMUProfileFromSpecs builds a profile from common engineering units:
// accelerometer values in μg (white noise μg/√Hz), gyro values in °/h
// (white noise °/√h), scale factors in ppm.
func IMUProfileFromSpecs(
	name string,
	accelWhiteNoiseUgSqrtHz, accelBiasInstabilityUg, accelTurnOnBiasUg, accelScaleFactorPPM float64,
	gyroWhiteNoiseDegSqrtH, gyroBiasInstabilityDegH, gyroTurnOnBiasDegH, gyroScaleFactorPPM float64,
) IMUProfile {
	return IMUProfile{
		Name:                 name,
		AccelWhiteNoise:      accelWhiteNoiseUgSqrtHz * MicroGToMS2,
		AccelBiasInstability: accelBiasInstabilityUg * MicroGToMS2,
		AccelTurnOnBias:      accelTurnOnBiasUg * MicroGToMS2,
		AccelScaleFactor:     accelScaleFactorPPM * PPM,
		// °/√h → rad/s/√Hz carries an extra 1/60 on top of °/h → rad/s.
		GyroWhiteNoise:      gyroWhiteNoiseDegSqrtH * DegPerHourToRadS / 60.0,
		GyroBiasInstability: gyroBiasInstabilityDegH * DegPerHourToRadS,
		GyroTurnOnBias:      gyroTurnOnBiasDegH * DegPerHourToRadS,
		GyroScaleFactor:     gyroScaleFactorPPM * PPM,
	}
}

// ClassicalIMU is a navigation-grade profile representative of high-quality
// FOG/RLG systems.
var ClassicalIMU = IMUProfileFromSpecs(
	"classical",
	100.0, 10.0, 100.0, 100.0, // accel: μg/√Hz, μg, μg, ppm
	0.01, 0.01, 0.1, 100.0, // gyro: °/√h, °/h, °/h, ppm
)

// QuantumIMU is a hypothetical quantum-class profile based on atom
// interferometry projections, roughly 100× lower noise and bias.
var QuantumIMU = IMUProfileFromSpecs(
	"quantum",
	1.0, 0.1, 1.0, 1.0,
	0.0001, 0.0001, 0.001, 1.0,
)

// IMUProfileByName resolves one of the known profile names ("classical" or
// "quantum"). Unknown names are a configuration error.
func IMUProfileByName(name string) (IMUProfile, error) {
	switch name {
	case "classical":
		return ClassicalIMU, nil
	case "quantum":
		return QuantumIMU, nil
	default:
		return IMUProfile{}, fmt.Errorf("%w: unknown IMU profile %q (valid: classical, quantum)", ErrConfiguration, name)
	}
}

// IMU6DOF models a 3-axis accelerometer plus 3-axis gyroscope with turn-on
// bias, bias instability (random walk), white noise, and static scale-factor
// errors. All stochastic state is drawn deterministically from the seed.
type IMU6DOF struct {
	Profile IMUProfile

	seed int64
	rng  *rand.Rand

	accelWalk *RandomWalk
	gyroWalk  *RandomWalk

	accelScale Vec3
	gyroScale  Vec3
}

// NewIMU6DOF constructs an IMU, drawing turn-on biases and scale factors.
func NewIMU6DOF(profile IMUProfile, seed int64) *IMU6DOF {
	imu := &IMU6DOF{Profile: profile, seed: seed}
	imu.draw(seed)
	return imu
}

func (imu *IMU6DOF) draw(seed int64) {
	imu.rng = rand.New(rand.NewSource(seed))

	accelBias := imu.gaussVec3(imu.Profile.AccelTurnOnBias)
	gyroBias := imu.gaussVec3(imu.Profile.GyroTurnOnBias)

	one := Vec3{X: 1, Y: 1, Z: 1}
	imu.accelScale = one.Add(imu.gaussVec3(imu.Profile.AccelScaleFactor))
	imu.gyroScale = one.Add(imu.gaussVec3(imu.Profile.GyroScaleFactor))

	imu.accelWalk = NewRandomWalk(imu.Profile.AccelBiasInstability, accelBias, imu.rng.Int63())
	imu.gyroWalk = NewRandomWalk(imu.Profile.GyroBiasInstability, gyroBias, imu.rng.Int63())
}

func (imu *IMU6DOF) gaussVec3(sigma float64) Vec3 {
	return Vec3{
		X: imu.rng.NormFloat64() * sigma,
		Y: imu.rng.NormFloat64() * sigma,
		Z: imu.rng.NormFloat64() * sigma,
	}
}

// Measure turns true specific force and angular rate into a noisy, biased,
// scaled sample. It advances the bias random walks, so two calls with
// identical inputs yield different outputs. The white noise is scaled by
// sqrt(1/dt) so noise power matches the configured spectral density at any
// sampling rate.
func (imu *IMU6DOF) Measure(trueAccel, trueOmega Vec3, dt float64) (Vec3, Vec3, error) {
	if dt <= 0 {
		return Vec3{}, Vec3{}, fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidArgument, dt)
	}

	accelBias := imu.accelWalk.Step(dt)
	gyroBias := imu.gyroWalk.Step(dt)

	noiseScale := math.Sqrt(1.0 / dt)
	accelNoise := imu.gaussVec3(imu.Profile.AccelWhiteNoise * noiseScale)
	gyroNoise := imu.gaussVec3(imu.Profile.GyroWhiteNoise * noiseScale)

	measAccel := imu.accelScale.Mul(trueAccel).Add(accelBias).Add(accelNoise)
	measOmega := imu.gyroScale.Mul(trueOmega).Add(gyroBias).Add(gyroNoise)
	return measAccel, measOmega, nil
}

// AccelBias returns the current accelerometer bias vector.
func (imu *IMU6DOF) AccelBias() Vec3 { return imu.accelWalk.Value() }

// GyroBias returns the current gyroscope bias vector.
func (imu *IMU6DOF) GyroBias() Vec3 { return imu.gyroWalk.Value() }

// Reset redraws all stochastic state deterministically from the seed.
func (imu *IMU6DOF) Reset(seed int64) {
	imu.seed = seed
	imu.draw(seed)
}
