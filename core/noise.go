package core

import (
	"math"
	"math/rand"
)

// WhiteNoise draws uncorrelated zero-mean Gaussian samples from a private
// generator. Every sensor owns its own instance; there is no process-wide
// random state anywhere in the simulator.
type WhiteNoise struct {
	rng *rand.Rand
	std float64
}

// NewWhiteNoise constructs a generator with the given standard deviation,
// deterministically seeded.
func NewWhiteNoise(std float64, seed int64) *WhiteNoise {
	return &WhiteNoise{rng: rand.New(rand.NewSource(seed)), std: std}
}

// Sample draws one value.
func (w *WhiteNoise) Sample() float64 {
	return w.rng.NormFloat64() * w.std
}

// SampleVec3 draws three independent values.
func (w *WhiteNoise) SampleVec3() Vec3 {
	return Vec3{X: w.Sample(), Y: w.Sample(), Z: w.Sample()}
}

// RandomWalk integrates white noise: each Step adds a zero-mean Gaussian
// increment with standard deviation stepStd·sqrt(dt) to the walk value.
type RandomWalk struct {
	rng     *rand.Rand
	stepStd float64
	value   Vec3
}

// NewRandomWalk constructs a walk starting at initial.
func NewRandomWalk(stepStd float64, initial Vec3, seed int64) *RandomWalk {
	return &RandomWalk{
		rng:     rand.New(rand.NewSource(seed)),
		stepStd: stepStd,
		value:   initial,
	}
}

// Step advances the walk over dt and returns the new value.
func (r *RandomWalk) Step(dt float64) Vec3 {
	sigma := r.stepStd * math.Sqrt(dt)
	r.value = r.value.Add(Vec3{
		X: r.rng.NormFloat64() * sigma,
		Y: r.rng.NormFloat64() * sigma,
		Z: r.rng.NormFloat64() * sigma,
	})
	return r.value
}

// Value returns the current walk value without advancing it.
func (r *RandomWalk) Value() Vec3 {
	return r.value
}
