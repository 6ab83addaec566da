package aspen

import (
	"github.com/chewxy/math32"

	"github.com/aspen3d/aspen/vmath"
)

// --- Cylinder / Cone ---

// NewCylinderGeometry creates a cylinder along the Y axis. Different top and
// bottom radii produce a truncated cone; a zero radius closes that end to a
// point. radialSegments is clamped to at least 3.
func NewCylinderGeometry(radiusTop, radiusBottom, height float32, radialSegments int) *Geometry {
	g := newGeometry("cylinderGeometry")
	buildCylinder(g, radiusTop, radiusBottom, height, radialSegments)
	return g
}

// NewConeGeometry creates a cone along the Y axis with its apex at +Y.
func NewConeGeometry(radius, height float32, radialSegments int) *Geometry {
	g := newGeometry("coneGeometry")
	buildCylinder(g, 0, radius, height, radialSegments)
	return g
}

func buildCylinder(g *Geometry, radiusTop, radiusBottom, height float32, radialSegments int) {
	if radialSegments < 3 {
		radialSegments = 3
	}
	halfH := height / 2
	slope := (radiusBottom - radiusTop) / height

	// Torso: two rings with sloped normals. The seam vertex is duplicated so
	// UVs wrap cleanly.
	for iy := 0; iy <= 1; iy++ {
		v := float32(iy)
		radius := radiusTop + v*(radiusBottom-radiusTop)
		for ix := 0; ix <= radialSegments; ix++ {
			u := float32(ix) / float32(radialSegments)
			theta := u * 2 * math32.Pi
			sinT := math32.Sin(theta)
			cosT := math32.Cos(theta)
			g.Positions = append(g.Positions, vmath.V3(radius*sinT, halfH-v*height, radius*cosT))
			g.Normals = append(g.Normals, vmath.V3(sinT, slope, cosT).Normal())
			g.UVs = append(g.UVs, vmath.V2(u, 1-v))
		}
	}
	stride := uint32(radialSegments + 1)
	for ix := 0; ix < radialSegments; ix++ {
		a := uint32(ix)
		b := a + stride
		c := b + 1
		d := a + 1
		g.Indices = append(g.Indices, a, b, d, b, c, d)
	}

	cylinderCap(g, radiusTop, halfH, radialSegments, 1)
	cylinderCap(g, radiusBottom, -halfH, radialSegments, -1)

	g.finalize()
}

// cylinderCap fans a closed end. sign is +1 for the top face, -1 for the
// bottom. Zero-radius ends emit nothing.
func cylinderCap(g *Geometry, radius, y float32, radialSegments int, sign float32) {
	if radius <= 0 {
		return
	}
	normal := vmath.V3(0, sign, 0)
	center := uint32(len(g.Positions))
	g.Positions = append(g.Positions, vmath.V3(0, y, 0))
	g.Normals = append(g.Normals, normal)
	g.UVs = append(g.UVs, vmath.V2(0.5, 0.5))

	for ix := 0; ix <= radialSegments; ix++ {
		theta := float32(ix) / float32(radialSegments) * 2 * math32.Pi
		sinT := math32.Sin(theta)
		cosT := math32.Cos(theta)
		g.Positions = append(g.Positions, vmath.V3(radius*sinT, y, radius*cosT))
		g.Normals = append(g.Normals, normal)
		g.UVs = append(g.UVs, vmath.V2(0.5+sinT/2, 0.5+sign*cosT/2))
	}

	ring := center + 1
	for ix := 0; ix < radialSegments; ix++ {
		a := ring + uint32(ix)
		b := a + 1
		if sign > 0 {
			g.Indices = append(g.Indices, center, a, b)
		} else {
			g.Indices = append(g.Indices, center, b, a)
		}
	}
}

// --- Torus ---

// NewTorusGeometry creates a torus in the XY plane: a ring of the given
// radius swept by a circular tube cross-section. Segment counts are clamped
// to at least 3.
func NewTorusGeometry(radius, tube float32, radialSegments, tubularSegments int) *Geometry {
	if radialSegments < 3 {
		radialSegments = 3
	}
	if tubularSegments < 3 {
		tubularSegments = 3
	}
	g := newGeometry("torusGeometry")

	for j := 0; j <= radialSegments; j++ {
		v := float32(j) / float32(radialSegments) * 2 * math32.Pi
		ringR := radius + tube*math32.Cos(v)
		for i := 0; i <= tubularSegments; i++ {
			u := float32(i) / float32(tubularSegments) * 2 * math32.Pi
			center := vmath.V3(radius*math32.Cos(u), radius*math32.Sin(u), 0)
			p := vmath.V3(ringR*math32.Cos(u), ringR*math32.Sin(u), tube*math32.Sin(v))
			g.Positions = append(g.Positions, p)
			g.Normals = append(g.Normals, p.Sub(center).Normal())
			g.UVs = append(g.UVs, vmath.V2(float32(i)/float32(tubularSegments), float32(j)/float32(radialSegments)))
		}
	}

	stride := uint32(tubularSegments + 1)
	for j := 0; j < radialSegments; j++ {
		for i := 0; i < tubularSegments; i++ {
			a := uint32(j+1)*stride + uint32(i)
			b := uint32(j)*stride + uint32(i)
			c := uint32(j)*stride + uint32(i) + 1
			d := uint32(j+1)*stride + uint32(i) + 1
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	g.finalize()
	return g
}
