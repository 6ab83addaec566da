package vmath

import "github.com/chewxy/math32"

// Ray is a half-line from Origin along the normalized Dir.
type Ray struct {
	Origin Vector3
	Dir    Vector3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) Vector3 {
	return r.Origin.Add(r.Dir.MulScalar(t))
}

// MulMatrix4 returns the ray transformed by m with Dir renormalized. Use an
// inverse world matrix to carry a world-space ray into object space.
func (r Ray) MulMatrix4(m Matrix4) Ray {
	return Ray{
		Origin: r.Origin.MulMatrix4(m),
		Dir:    r.Dir.MulMatrix4Dir(m).Normal(),
	}
}

// IntersectSphere returns the smallest non-negative ray parameter hitting s.
func (r Ray) IntersectSphere(s Sphere) (float32, bool) {
	oc := r.Origin.Sub(s.Center)
	b := oc.Dot(r.Dir)
	c := oc.LengthSquared() - s.Radius*s.Radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectBox returns the smallest non-negative ray parameter hitting b.
func (r Ray) IntersectBox(b Box3) (float32, bool) {
	var tmin, tmax, tymin, tymax, tzmin, tzmax float32

	invX := 1 / r.Dir.X
	if invX >= 0 {
		tmin = (b.Min.X - r.Origin.X) * invX
		tmax = (b.Max.X - r.Origin.X) * invX
	} else {
		tmin = (b.Max.X - r.Origin.X) * invX
		tmax = (b.Min.X - r.Origin.X) * invX
	}

	invY := 1 / r.Dir.Y
	if invY >= 0 {
		tymin = (b.Min.Y - r.Origin.Y) * invY
		tymax = (b.Max.Y - r.Origin.Y) * invY
	} else {
		tymin = (b.Max.Y - r.Origin.Y) * invY
		tymax = (b.Min.Y - r.Origin.Y) * invY
	}
	if tmin > tymax || tymin > tmax {
		return 0, false
	}
	if tymin > tmin {
		tmin = tymin
	}
	if tymax < tmax {
		tmax = tymax
	}

	invZ := 1 / r.Dir.Z
	if invZ >= 0 {
		tzmin = (b.Min.Z - r.Origin.Z) * invZ
		tzmax = (b.Max.Z - r.Origin.Z) * invZ
	} else {
		tzmin = (b.Max.Z - r.Origin.Z) * invZ
		tzmax = (b.Min.Z - r.Origin.Z) * invZ
	}
	if tmin > tzmax || tzmin > tmax {
		return 0, false
	}
	if tzmin > tmin {
		tmin = tzmin
	}
	if tzmax < tmax {
		tmax = tzmax
	}

	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle returns the ray parameter at which the ray crosses the
// triangle a, b, c, using the Moller-Trumbore test. With cullBack set,
// triangles wound away from the ray are skipped.
func (r Ray) IntersectTriangle(a, b, c Vector3, cullBack bool) (float32, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)

	if cullBack {
		if det < Epsilon {
			return 0, false
		}
	} else if math32.Abs(det) < Epsilon {
		return 0, false
	}
	inv := 1 / det

	tv := r.Origin.Sub(a)
	u := tv.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := tv.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
