package vmath

import "github.com/chewxy/math32"

// Quaternion is a rotation stored as X, Y, Z, W components.
type Quaternion struct {
	X float32
	Y float32
	Z float32
	W float32
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quaternion {
	return Quaternion{W: 1}
}

// QuatAxisAngle returns the rotation of angle radians around axis.
// The axis must be normalized.
func QuatAxisAngle(axis Vector3, angle float32) Quaternion {
	half := angle / 2
	s := math32.Sin(half)
	return Quaternion{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math32.Cos(half),
	}
}

// QuatEuler returns the rotation described by the Euler angles e in radians,
// applied in X, Y, Z order.
func QuatEuler(e Vector3) Quaternion {
	c1 := math32.Cos(e.X / 2)
	c2 := math32.Cos(e.Y / 2)
	c3 := math32.Cos(e.Z / 2)
	s1 := math32.Sin(e.X / 2)
	s2 := math32.Sin(e.Y / 2)
	s3 := math32.Sin(e.Z / 2)
	return Quaternion{
		X: s1*c2*c3 + c1*s2*s3,
		Y: c1*s2*c3 - s1*c2*s3,
		Z: c1*c2*s3 + s1*s2*c3,
		W: c1*c2*c3 - s1*s2*s3,
	}
}

// Mul returns the composed rotation q * o: o is applied first, q second.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		X: q.X*o.W + q.W*o.X + q.Y*o.Z - q.Z*o.Y,
		Y: q.Y*o.W + q.W*o.Y + q.Z*o.X - q.X*o.Z,
		Z: q.Z*o.W + q.W*o.Z + q.X*o.Y - q.Y*o.X,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Conjugate returns the inverse rotation for unit quaternions.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Normal returns q normalized to unit length. The zero quaternion becomes
// the identity.
func (q Quaternion) Normal() Quaternion {
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return QuatIdentity()
	}
	inv := 1 / l
	return Quaternion{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}
