package vmath

import "github.com/chewxy/math32"

// Matrix4 is a 4x4 matrix stored in column-major order: element (row, col)
// lives at index col*4 + row.
type Matrix4 [16]float32

// Identity returns the identity matrix.
func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation returns a matrix translating by v.
func Translation(v Vector3) Matrix4 {
	m := Identity()
	m[12] = v.X
	m[13] = v.Y
	m[14] = v.Z
	return m
}

// Compose returns the transform scaling by scale, rotating by quat and
// translating by pos, in that order.
func Compose(pos Vector3, quat Quaternion, scale Vector3) Matrix4 {
	x2 := quat.X + quat.X
	y2 := quat.Y + quat.Y
	z2 := quat.Z + quat.Z
	xx := quat.X * x2
	xy := quat.X * y2
	xz := quat.X * z2
	yy := quat.Y * y2
	yz := quat.Y * z2
	zz := quat.Z * z2
	wx := quat.W * x2
	wy := quat.W * y2
	wz := quat.W * z2

	var m Matrix4
	m[0] = (1 - (yy + zz)) * scale.X
	m[1] = (xy + wz) * scale.X
	m[2] = (xz - wy) * scale.X
	m[4] = (xy - wz) * scale.Y
	m[5] = (1 - (xx + zz)) * scale.Y
	m[6] = (yz + wx) * scale.Y
	m[8] = (xz + wy) * scale.Z
	m[9] = (yz - wx) * scale.Z
	m[10] = (1 - (xx + yy)) * scale.Z
	m[12] = pos.X
	m[13] = pos.Y
	m[14] = pos.Z
	m[15] = 1
	return m
}

// Mul returns the product m * o. Applied to a vector, o transforms first.
func (m Matrix4) Mul(o Matrix4) Matrix4 {
	var r Matrix4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * o[c*4+k]
			}
			r[c*4+row] = sum
		}
	}
	return r
}

// Transpose returns the transposed matrix.
func (m Matrix4) Transpose() Matrix4 {
	var r Matrix4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			r[row*4+c] = m[c*4+row]
		}
	}
	return r
}

// Inverse returns the inverse of m. ok is false when m is singular, in which
// case the identity is returned.
func (m Matrix4) Inverse() (Matrix4, bool) {
	n11, n21, n31, n41 := m[0], m[1], m[2], m[3]
	n12, n22, n32, n42 := m[4], m[5], m[6], m[7]
	n13, n23, n33, n43 := m[8], m[9], m[10], m[11]
	n14, n24, n34, n44 := m[12], m[13], m[14], m[15]

	t11 := n23*n34*n42 - n24*n33*n42 + n24*n32*n43 - n22*n34*n43 - n23*n32*n44 + n22*n33*n44
	t12 := n14*n33*n42 - n13*n34*n42 - n14*n32*n43 + n12*n34*n43 + n13*n32*n44 - n12*n33*n44
	t13 := n13*n24*n42 - n14*n23*n42 + n14*n22*n43 - n12*n24*n43 - n13*n22*n44 + n12*n23*n44
	t14 := n14*n23*n32 - n13*n24*n32 - n14*n22*n33 + n12*n24*n33 + n13*n22*n34 - n12*n23*n34

	det := n11*t11 + n21*t12 + n31*t13 + n41*t14
	if det == 0 {
		return Identity(), false
	}
	inv := 1 / det

	var r Matrix4
	r[0] = t11 * inv
	r[1] = (n24*n33*n41 - n23*n34*n41 - n24*n31*n43 + n21*n34*n43 + n23*n31*n44 - n21*n33*n44) * inv
	r[2] = (n22*n34*n41 - n24*n32*n41 + n24*n31*n42 - n21*n34*n42 - n22*n31*n44 + n21*n32*n44) * inv
	r[3] = (n23*n32*n41 - n22*n33*n41 - n23*n31*n42 + n21*n33*n42 + n22*n31*n43 - n21*n32*n43) * inv
	r[4] = t12 * inv
	r[5] = (n13*n34*n41 - n14*n33*n41 + n14*n31*n43 - n11*n34*n43 - n13*n31*n44 + n11*n33*n44) * inv
	r[6] = (n14*n32*n41 - n12*n34*n41 - n14*n31*n42 + n11*n34*n42 + n12*n31*n44 - n11*n32*n44) * inv
	r[7] = (n12*n33*n41 - n13*n32*n41 + n13*n31*n42 - n11*n33*n42 - n12*n31*n43 + n11*n32*n43) * inv
	r[8] = t13 * inv
	r[9] = (n14*n23*n41 - n13*n24*n41 - n14*n21*n43 + n11*n24*n43 + n13*n21*n44 - n11*n23*n44) * inv
	r[10] = (n12*n24*n41 - n14*n22*n41 + n14*n21*n42 - n11*n24*n42 - n12*n21*n44 + n11*n22*n44) * inv
	r[11] = (n13*n22*n41 - n12*n23*n41 - n13*n21*n42 + n11*n23*n42 + n12*n21*n43 - n11*n22*n43) * inv
	r[12] = t14 * inv
	r[13] = (n13*n24*n31 - n14*n23*n31 + n14*n21*n33 - n11*n24*n33 - n13*n21*n34 + n11*n23*n34) * inv
	r[14] = (n14*n22*n31 - n12*n24*n31 - n14*n21*n32 + n11*n24*n32 + n12*n21*n34 - n11*n22*n34) * inv
	r[15] = (n12*n23*n31 - n13*n22*n31 + n13*n21*n32 - n11*n23*n32 - n12*n21*n33 + n11*n22*n33) * inv
	return r, true
}

// Perspective returns a perspective projection with a vertical field of view
// of fovDeg degrees, mapping depth to [-1, 1].
func Perspective(fovDeg, aspect, near, far float32) Matrix4 {
	f := 1 / math32.Tan(DegToRad(fovDeg)/2)
	var m Matrix4
	m[0] = f / aspect
	m[5] = f
	m[10] = -(far + near) / (far - near)
	m[11] = -1
	m[14] = -2 * far * near / (far - near)
	return m
}

// Orthographic returns an orthographic projection over the given frustum.
func Orthographic(left, right, top, bottom, near, far float32) Matrix4 {
	w := 1 / (right - left)
	h := 1 / (top - bottom)
	p := 1 / (far - near)
	var m Matrix4
	m[0] = 2 * w
	m[5] = 2 * h
	m[10] = -2 * p
	m[12] = -(right + left) * w
	m[13] = -(top + bottom) * h
	m[14] = -(far + near) * p
	m[15] = 1
	return m
}

// LookAt returns the view matrix for a camera at eye looking toward target
// with the given up direction.
func LookAt(eye, target, up Vector3) Matrix4 {
	z := eye.Sub(target).Normal()
	if z.LengthSquared() == 0 {
		z = V3(0, 0, 1)
	}
	x := up.Cross(z).Normal()
	if x.LengthSquared() == 0 {
		// up is parallel to the view direction; nudge it.
		z.X += 0.0001
		z = z.Normal()
		x = up.Cross(z).Normal()
	}
	y := z.Cross(x)

	var m Matrix4
	m[0], m[4], m[8] = x.X, x.Y, x.Z
	m[1], m[5], m[9] = y.X, y.Y, y.Z
	m[2], m[6], m[10] = z.X, z.Y, z.Z
	m[12] = -x.Dot(eye)
	m[13] = -y.Dot(eye)
	m[14] = -z.Dot(eye)
	m[15] = 1
	return m
}
