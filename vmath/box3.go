package vmath

import "github.com/chewxy/math32"

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min Vector3
	Max Vector3
}

// B3Empty returns a box containing nothing. Expanding it by any point yields
// a box containing exactly that point.
func B3Empty() Box3 {
	return Box3{
		Min: V3Scalar(math32.Inf(1)),
		Max: V3Scalar(math32.Inf(-1)),
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// ExpandByPoint returns the box grown to contain p.
func (b Box3) ExpandByPoint(p Vector3) Box3 {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
	return b
}

// Center returns the center point of the box.
func (b Box3) Center() Vector3 {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Size returns the extent of the box along each axis.
func (b Box3) Size() Vector3 {
	if b.IsEmpty() {
		return Vector3{}
	}
	return b.Max.Sub(b.Min)
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center Vector3
	Radius float32
}

// BoundingSphere returns the sphere centered on the box containing all of
// the given points. The box must already contain the points.
func (b Box3) BoundingSphere(points []Vector3) Sphere {
	c := b.Center()
	var maxSq float32
	for _, p := range points {
		if d := p.DistanceSquared(c); d > maxSq {
			maxSq = d
		}
	}
	return Sphere{Center: c, Radius: math32.Sqrt(maxSq)}
}
