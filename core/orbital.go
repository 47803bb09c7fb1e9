package core

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// Earth constants for the orbital collaborator (SI units).
const (
	// MuEarth is Earth's gravitational parameter, m³/s².
	MuEarth = 3.986004418e14
	// REarth is the mean Earth radius, m.
	REarth = 6.371e6
	// J2Earth is the dimensionless oblateness coefficient.
	J2Earth = 1.08263e-3
)

// minRadius is the position norm below which gravitational terms are treated
// as zero rather than dividing by a vanishing radius. A filter initialised
// at the exact origin is an expected, benign case.
const minRadius = 1e-6

// TwoBodyAcceleration returns the point-mass gravitational acceleration at
// position for gravitational parameter mu.
func TwoBodyAcceleration(position Vec3, mu float64) Vec3 {
	r := position.Norm()
	if r < minRadius {
		return Vec3{}
	}
	return position.Scale(-mu / (r * r * r))
}

// J2Acceleration returns the oblateness perturbation acceleration at
// position for gravitational parameter mu, J2 coefficient j2, and equatorial
// radius rEq.
func J2Acceleration(position Vec3, mu, j2, rEq float64) Vec3 {
	r := position.Norm()
	if r < minRadius {
		return Vec3{}
	}
	rSq := r * r
	factor := 1.5 * j2 * mu * rEq * rEq / (rSq * rSq * r)
	zOverR := position.Z / r
	z2 := zOverR * zOverR
	return Vec3{
		X: factor * position.X * (5*z2 - 1),
		Y: factor * position.Y * (5*z2 - 1),
		Z: factor * position.Z * (5*z2 - 3),
	}
}

// OrbitModel propagates a two-body orbit with optional J2 perturbation. It
// is a purely numeric collaborator of the navigation core: no estimation
// logic lives here.
type OrbitModel struct {
	Mu       float64
	WithJ2   bool
	J2       float64
	EqRadius float64
}

// NewTwoBodyOrbit builds a point-mass Earth orbit model.
func NewTwoBodyOrbit() OrbitModel {
	return OrbitModel{Mu: MuEarth}
}

// NewJ2Orbit builds an Earth orbit model with the J2 perturbation.
func NewJ2Orbit() OrbitModel {
	return OrbitModel{Mu: MuEarth, WithJ2: true, J2: J2Earth, EqRadius: REarth}
}

// Acceleration returns the total gravitational acceleration at position.
func (m OrbitModel) Acceleration(position Vec3) Vec3 {
	accel := TwoBodyAcceleration(position, m.Mu)
	if m.WithJ2 {
		accel = accel.Add(J2Acceleration(position, m.Mu, m.J2, m.EqRadius))
	}
	return accel
}

// PropagateEuler advances the state by one explicit Euler step.
func (m OrbitModel) PropagateEuler(position, velocity Vec3, dt float64) (Vec3, Vec3) {
	accel := m.Acceleration(position)
	newPos := position.Add(velocity.Scale(dt))
	newVel := velocity.Add(accel.Scale(dt))
	return newPos, newVel
}

// PropagateRK4 advances the state by one classical Runge-Kutta step.
func (m OrbitModel) PropagateRK4(position, velocity Vec3, dt float64) (Vec3, Vec3) {
	k1v := m.Acceleration(position)
	k1p := velocity

	k2v := m.Acceleration(position.Add(k1p.Scale(dt / 2)))
	k2p := velocity.Add(k1v.Scale(dt / 2))

	k3v := m.Acceleration(position.Add(k2p.Scale(dt / 2)))
	k3p := velocity.Add(k2v.Scale(dt / 2))

	k4v := m.Acceleration(position.Add(k3p.Scale(dt)))
	k4p := velocity.Add(k3v.Scale(dt))

	newPos := position.Add(k1p.Add(k2p.Scale(2)).Add(k3p.Scale(2)).Add(k4p).Scale(dt / 6))
	newVel := velocity.Add(k1v.Add(k2v.Scale(2)).Add(k3v.Scale(2)).Add(k4v).Scale(dt / 6))
	return newPos, newVel
}

// SGP4Reference produces ECEF reference positions from a two-line element
// set, for cross-checking the numeric propagator against a flight-heritage
// model.
type SGP4Reference struct {
	sat satellite.Satellite
}

// NewSGP4Reference parses TLE lines into an SGP4 trajectory.
func NewSGP4Reference(line1, line2 string) *SGP4Reference {
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &SGP4Reference{sat: sat}
}

// PositionECEF propagates the satellite to t and returns the ECEF position.
// go-satellite works in kilometres; we return metres.
func (s *SGP4Reference) PositionECEF(t time.Time) Vec3 {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(s.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	const kmToM = 1000.0
	return Vec3{
		X: posECEF.X * kmToM,
		Y: posECEF.Y * kmToM,
		Z: posECEF.Z * kmToM,
	}
}
