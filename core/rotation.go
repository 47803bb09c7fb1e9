package core

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// smallAngle is the rotation-vector norm below which the Rodrigues formula
// degenerates (0/0 in the axis normalisation) and we return identity.
const smallAngle = 1e-10

// Skew returns the skew-symmetric cross-product matrix [v×] such that
// Skew(v)·w = v × w.
func Skew(v Vec3) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	})
}

// RotationMatrix builds the rotation matrix for a rotation vector theta via
// the Rodrigues formula: R = I + sin(a)·K + (1-cos(a))·K², with a = ‖theta‖
// and K the skew matrix of the unit axis. A near-zero rotation yields the
// identity exactly.
func RotationMatrix(theta Vec3) *mat.Dense {
	angle := theta.Norm()
	if angle < smallAngle {
		return identity3()
	}

	axis := theta.Scale(1.0 / angle)
	k := Skew(axis)

	var k2 mat.Dense
	k2.Mul(k, k)

	r := identity3()
	s := math.Sin(angle)
	c := 1.0 - math.Cos(angle)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, r.At(i, j)+s*k.At(i, j)+c*k2.At(i, j))
		}
	}
	return r
}

// Rotate applies the rotation matrix r to v.
func Rotate(r *mat.Dense, v Vec3) Vec3 {
	var out mat.VecDense
	out.MulVec(r, mat.NewVecDense(3, v.AsSlice()))
	return Vec3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}
