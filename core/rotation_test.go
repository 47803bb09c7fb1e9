package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSkewCrossProduct(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}
	w := Vec3{X: -2, Y: 0.5, Z: 4}

	var out mat.VecDense
	out.MulVec(Skew(v), mat.NewVecDense(3, w.AsSlice()))

	want := Vec3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
	got := Vec3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
	if got.Sub(want).Norm() > 1e-12 {
		t.Fatalf("Skew(v)·w = %+v, want cross product %+v", got, want)
	}
}

func TestRotationMatrixZeroVectorIsIdentity(t *testing.T) {
	r := RotationMatrix(Vec3{})
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if r.At(i, j) != want {
				t.Fatalf("R[%d][%d] = %v, want exactly %v for zero rotation", i, j, r.At(i, j), want)
			}
		}
	}
}

func TestRotationMatrixIsOrthogonal(t *testing.T) {
	inputs := []Vec3{
		{X: 0.1, Y: 0, Z: 0},
		{X: 0.3, Y: -0.7, Z: 1.2},
		{X: -2.1, Y: 0.05, Z: 0.4},
		{X: 1e-8, Y: 0, Z: 0},
	}
	for _, theta := range inputs {
		r := RotationMatrix(theta)

		var rrt mat.Dense
		rrt.Mul(r, r.T())
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				want := 0.0
				if i == j {
					want = 1.0
				}
				if math.Abs(rrt.At(i, j)-want) > 1e-12 {
					t.Fatalf("theta=%+v: (R·Rᵀ)[%d][%d] = %v, want %v", theta, i, j, rrt.At(i, j), want)
				}
			}
		}

		if det := mat.Det(r); math.Abs(det-1) > 1e-12 {
			t.Fatalf("theta=%+v: det(R) = %v, want 1", theta, det)
		}
	}
}

func TestRotationMatrixRotatesAboutAxis(t *testing.T) {
	// 90° about z maps x onto y.
	r := RotationMatrix(Vec3{Z: math.Pi / 2})
	got := Rotate(r, Vec3{X: 1})
	want := Vec3{Y: 1}
	if got.Sub(want).Norm() > 1e-12 {
		t.Fatalf("R(π/2 ẑ)·x̂ = %+v, want %+v", got, want)
	}
}
