// Package vmath provides float32 vector, quaternion, matrix and ray math for
// retained 3D scene graphs. Conventions are the usual GL ones: right-handed
// coordinates, column-major matrices, cameras looking down -Z, NDC in [-1,1].
package vmath

import "github.com/chewxy/math32"

// Epsilon is the tolerance used by intersection and inversion tests.
const Epsilon = 1e-6

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * (math32.Pi / 180)
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float32) float32 {
	return rad * (180 / math32.Pi)
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates linearly from a to b by t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
