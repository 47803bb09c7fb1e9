package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// State vector layout. The Jacobian and measurement matrices are built
// against these exact offsets; do not reorder.
const (
	posIdx     = 0
	velIdx     = 3
	attIdx     = 6
	accBiasIdx = 9
	gyrBiasIdx = 12

	// StateDim is the size of the navigation state vector.
	StateDim = 15
)

// INSState is the 15-element navigation state: position, velocity, attitude
// as a rotation vector (Rodrigues representation), and the two sensor bias
// estimates.
type INSState struct {
	Position  Vec3 // m
	Velocity  Vec3 // m/s
	Attitude  Vec3 // rad, rotation vector
	AccelBias Vec3 // m/s²
	GyroBias  Vec3 // rad/s
}

// ToVector flattens the state into a 15-vector with the fixed layout
// [0:3)=position, [3:6)=velocity, [6:9)=attitude, [9:12)=accel bias,
// [12:15)=gyro bias.
func (s INSState) ToVector() *mat.VecDense {
	x := make([]float64, 0, StateDim)
	x = append(x, s.Position.AsSlice()...)
	x = append(x, s.Velocity.AsSlice()...)
	x = append(x, s.Attitude.AsSlice()...)
	x = append(x, s.AccelBias.AsSlice()...)
	x = append(x, s.GyroBias.AsSlice()...)
	return mat.NewVecDense(StateDim, x)
}

// INSStateFromVector builds a state from a flat 15-vector.
func INSStateFromVector(x *mat.VecDense) INSState {
	raw := x.RawVector().Data
	return INSState{
		Position:  Vec3FromSlice(raw[posIdx : posIdx+3]),
		Velocity:  Vec3FromSlice(raw[velIdx : velIdx+3]),
		Attitude:  Vec3FromSlice(raw[attIdx : attIdx+3]),
		AccelBias: Vec3FromSlice(raw[accBiasIdx : accBiasIdx+3]),
		GyroBias:  Vec3FromSlice(raw[gyrBiasIdx : gyrBiasIdx+3]),
	}
}

// IsFinite reports whether every state component is finite.
func (s INSState) IsFinite() bool {
	return s.Position.IsFinite() && s.Velocity.IsFinite() && s.Attitude.IsFinite() &&
		s.AccelBias.IsFinite() && s.GyroBias.IsFinite()
}

// INSEKF is a 15-state error-state extended Kalman filter over a strapdown
// INS mechanization. Predict integrates noisy IMU measurements into the
// nominal state and propagates the linearized covariance; the update methods
// fuse aiding measurements through a Joseph-form correction.
type INSEKF struct {
	State      INSState
	Covariance *mat.Dense // 15×15, kept symmetric

	qSpectral *mat.Dense // continuous-time process noise spectral density
}

// NewINSEKF constructs a filter. The IMU profile is used only to build the
// process-noise spectral density: zero for position, white-noise variances
// for the velocity and attitude blocks, bias-instability variances for the
// bias blocks. initialCovariance is copied.
func NewINSEKF(initialState INSState, initialCovariance *mat.Dense, profile IMUProfile) *INSEKF {
	cov := mat.NewDense(StateDim, StateDim, nil)
	cov.Copy(initialCovariance)

	q := mat.NewDense(StateDim, StateDim, nil)
	for i := 0; i < 3; i++ {
		q.Set(velIdx+i, velIdx+i, profile.AccelWhiteNoise*profile.AccelWhiteNoise)
		q.Set(attIdx+i, attIdx+i, profile.GyroWhiteNoise*profile.GyroWhiteNoise)
		q.Set(accBiasIdx+i, accBiasIdx+i, profile.AccelBiasInstability*profile.AccelBiasInstability)
		q.Set(gyrBiasIdx+i, gyrBiasIdx+i, profile.GyroBiasInstability*profile.GyroBiasInstability)
	}

	return &INSEKF{
		State:      initialState,
		Covariance: cov,
		qSpectral:  q,
	}
}

// DefaultInitialCovariance builds the diagonal initial covariance from
// per-block 1-σ values.
func DefaultInitialCovariance(posSigma, velSigma, attSigma, accelBiasSigma, gyroBiasSigma float64) *mat.Dense {
	cov := mat.NewDense(StateDim, StateDim, nil)
	for i := 0; i < 3; i++ {
		cov.Set(posIdx+i, posIdx+i, posSigma*posSigma)
		cov.Set(velIdx+i, velIdx+i, velSigma*velSigma)
		cov.Set(attIdx+i, attIdx+i, attSigma*attSigma)
		cov.Set(accBiasIdx+i, accBiasIdx+i, accelBiasSigma*accelBiasSigma)
		cov.Set(gyrBiasIdx+i, gyrBiasIdx+i, gyroBiasSigma*gyroBiasSigma)
	}
	return cov
}

// Predict runs one step of IMU mechanization and covariance propagation.
//
// The nominal state uses sequential first-order integration: attitude first,
// then velocity from the body-to-nav rotation of the bias-corrected specific
// force, then position from the freshly updated velocity. Biases stay
// constant in the nominal state; their random walk enters only through the
// process noise.
func (f *INSEKF) Predict(accelMeas, omegaMeas Vec3, dt float64) {
	accelCorr := accelMeas.Sub(f.State.AccelBias)
	omegaCorr := omegaMeas.Sub(f.State.GyroBias)

	c := RotationMatrix(f.State.Attitude)

	f.State.Attitude = f.State.Attitude.Add(omegaCorr.Scale(dt))
	f.State.Velocity = f.State.Velocity.Add(Rotate(c, accelCorr).Scale(dt))
	f.State.Position = f.State.Position.Add(f.State.Velocity.Scale(dt))

	fMat := stateTransition(accelCorr, c, dt)

	var fp, fpft mat.Dense
	fp.Mul(fMat, f.Covariance)
	fpft.Mul(&fp, fMat.T())
	for i := 0; i < StateDim; i++ {
		for j := 0; j < StateDim; j++ {
			f.Covariance.Set(i, j, fpft.At(i, j)+f.qSpectral.At(i, j)*dt)
		}
	}

	symmetrize(f.Covariance)
}

// stateTransition builds F = I + J·dt with exactly four off-diagonal blocks:
// ∂pos/∂vel = I·dt, ∂vel/∂att = -C·skew(a)·dt, ∂vel/∂ab = -C·dt,
// ∂att/∂gb = -I·dt.
func stateTransition(accelCorr Vec3, c *mat.Dense, dt float64) *mat.Dense {
	fMat := mat.NewDense(StateDim, StateDim, nil)
	for i := 0; i < StateDim; i++ {
		fMat.Set(i, i, 1)
	}

	var cSkew mat.Dense
	cSkew.Mul(c, Skew(accelCorr))

	for i := 0; i < 3; i++ {
		fMat.Set(posIdx+i, velIdx+i, dt)
		fMat.Set(attIdx+i, gyrBiasIdx+i, -dt)
		for j := 0; j < 3; j++ {
			fMat.Set(velIdx+i, attIdx+j, -cSkew.At(i, j)*dt)
			fMat.Set(velIdx+i, accBiasIdx+j, -c.At(i, j)*dt)
		}
	}
	return fMat
}

// UpdateAttitude fuses an attitude aiding measurement (e.g. a star tracker
// sample) with noise covariance r.
func (f *INSEKF) UpdateAttitude(attitudeMeas Vec3, r *mat.SymDense) error {
	innovation := attitudeMeas.Sub(f.State.Attitude)
	return f.kalmanUpdate(innovation, blockSelector(attIdx), r)
}

// UpdatePosition fuses a position aiding measurement (e.g. a radiometric
// position fix) with noise covariance r.
func (f *INSEKF) UpdatePosition(positionMeas Vec3, r *mat.SymDense) error {
	innovation := positionMeas.Sub(f.State.Position)
	return f.kalmanUpdate(innovation, blockSelector(posIdx), r)
}

// blockSelector builds the 3×15 measurement matrix selecting the 3-element
// state block starting at offset.
func blockSelector(offset int) *mat.Dense {
	h := mat.NewDense(3, StateDim, nil)
	for i := 0; i < 3; i++ {
		h.Set(i, offset+i, 1)
	}
	return h
}

// kalmanUpdate applies the shared measurement update: gain from the
// innovation covariance, additive state correction per the fixed layout, and
// a Joseph-form covariance update which cannot lose positive definiteness to
// rounding alone. A singular innovation covariance is a fatal numerical
// error for the trial.
func (f *INSEKF) kalmanUpdate(innovation Vec3, h *mat.Dense, r *mat.SymDense) error {
	// S = H·P·Hᵀ + R
	var hp, s mat.Dense
	hp.Mul(h, f.Covariance)
	s.Mul(&hp, h.T())
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s.Set(i, j, s.At(i, j)+r.At(i, j))
		}
	}

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return fmt.Errorf("%w: innovation covariance is singular: %v", ErrNumerical, err)
	}

	// K = P·Hᵀ·S⁻¹
	var pht, k mat.Dense
	pht.Mul(f.Covariance, h.T())
	k.Mul(&pht, &sInv)

	// dx = K·innovation
	var dx mat.VecDense
	dx.MulVec(&k, mat.NewVecDense(3, innovation.AsSlice()))

	var corrected mat.VecDense
	corrected.AddVec(f.State.ToVector(), &dx)
	f.State = INSStateFromVector(&corrected)

	// P = (I-KH)·P·(I-KH)ᵀ + K·R·Kᵀ
	var kh, ikh mat.Dense
	kh.Mul(&k, h)
	ikh.Scale(-1, &kh)
	for i := 0; i < StateDim; i++ {
		ikh.Set(i, i, ikh.At(i, i)+1)
	}

	var ikhP, joseph, kr, krk mat.Dense
	ikhP.Mul(&ikh, f.Covariance)
	joseph.Mul(&ikhP, ikh.T())
	kr.Mul(&k, r)
	krk.Mul(&kr, k.T())

	f.Covariance.Add(&joseph, &krk)
	symmetrize(f.Covariance)
	return nil
}

// PositionUncertainty returns the per-axis 1-σ position uncertainty.
func (f *INSEKF) PositionUncertainty() Vec3 { return f.blockSigma(posIdx) }

// VelocityUncertainty returns the per-axis 1-σ velocity uncertainty.
func (f *INSEKF) VelocityUncertainty() Vec3 { return f.blockSigma(velIdx) }

// AttitudeUncertainty returns the per-axis 1-σ attitude uncertainty in
// radians.
func (f *INSEKF) AttitudeUncertainty() Vec3 { return f.blockSigma(attIdx) }

func (f *INSEKF) blockSigma(offset int) Vec3 {
	return Vec3{
		X: sqrtNonNeg(f.Covariance.At(offset, offset)),
		Y: sqrtNonNeg(f.Covariance.At(offset+1, offset+1)),
		Z: sqrtNonNeg(f.Covariance.At(offset+2, offset+2)),
	}
}

// sqrtNonNeg treats tiny negative diagonal entries from rounding as zero.
func sqrtNonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}

// symmetrize replaces p with (p + pᵀ)/2 to suppress floating-point asymmetry
// drift. Called after every predict and update.
func symmetrize(p *mat.Dense) {
	n, _ := p.Dims()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := 0.5 * (p.At(i, j) + p.At(j, i))
			p.Set(i, j, v)
			p.Set(j, i, v)
		}
	}
}
