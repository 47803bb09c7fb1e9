package core

import (
	"math"
	"testing"
)

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: -1, Y: 0.5, Z: 2}

	if got := a.Add(b); got != (Vec3{X: 0, Y: 2.5, Z: 5}) {
		t.Fatalf("Add = %+v", got)
	}
	if got := a.Sub(b); got != (Vec3{X: 2, Y: 1.5, Z: 1}) {
		t.Fatalf("Sub = %+v", got)
	}
	if got := a.Scale(2); got != (Vec3{X: 2, Y: 4, Z: 6}) {
		t.Fatalf("Scale = %+v", got)
	}
	if got := a.Mul(b); got != (Vec3{X: -1, Y: 1, Z: 6}) {
		t.Fatalf("Mul = %+v", got)
	}
	if got := a.Dot(b); got != 6 {
		t.Fatalf("Dot = %v, want 6", got)
	}
}

func TestVec3Norm(t *testing.T) {
	v := Vec3{X: 3, Y: 4, Z: 0}
	if got := v.Norm(); math.Abs(got-5) > 1e-15 {
		t.Fatalf("Norm = %v, want 5", got)
	}
	if got := v.DistanceTo(Vec3{X: 3, Y: 4, Z: 12}); math.Abs(got-12) > 1e-15 {
		t.Fatalf("DistanceTo = %v, want 12", got)
	}
}

func TestVec3SliceRoundTrip(t *testing.T) {
	v := Vec3{X: 0.1, Y: -2, Z: 7}
	got := Vec3FromSlice(v.AsSlice())
	if got != v {
		t.Fatalf("round trip = %+v, want %+v", got, v)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{X: 1, Y: 2, Z: 3}).IsFinite() {
		t.Fatal("finite vector reported non-finite")
	}
	if (Vec3{X: math.NaN()}).IsFinite() {
		t.Fatal("NaN vector reported finite")
	}
	if (Vec3{Z: math.Inf(1)}).IsFinite() {
		t.Fatal("Inf vector reported finite")
	}
}
