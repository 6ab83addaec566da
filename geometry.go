package aspen

import (
	"github.com/chewxy/math32"

	"github.com/aspen3d/aspen/vmath"
)

// Geometry holds indexed triangle buffers plus cached bounds. Geometries are
// attach resources: the bridge assigns them to a mesh's geometry slot instead
// of parenting them into the scene graph.
type Geometry struct {
	ObjectBase

	Positions []vmath.Vector3
	Normals   []vmath.Vector3
	UVs       []vmath.Vector2
	Indices   []uint32

	bounds vmath.Box3
	sphere vmath.Sphere
}

// Bounds returns the local-space bounding box.
func (g *Geometry) Bounds() vmath.Box3 { return g.bounds }

// BoundingSphere returns the local-space bounding sphere used as a raycast
// prefilter.
func (g *Geometry) BoundingSphere() vmath.Sphere { return g.sphere }

// TriangleCount returns the number of indexed triangles.
func (g *Geometry) TriangleCount() int { return len(g.Indices) / 3 }

func (g *Geometry) teardown() {
	g.Positions = nil
	g.Normals = nil
	g.UVs = nil
	g.Indices = nil
}

// finalize recomputes bounds after the buffers are filled.
func (g *Geometry) finalize() {
	if len(g.Positions) == 0 {
		g.bounds = vmath.B3Empty()
		g.sphere = vmath.Sphere{}
		return
	}
	b := vmath.B3Empty()
	for _, p := range g.Positions {
		b = b.ExpandByPoint(p)
	}
	g.bounds = b
	g.sphere = b.BoundingSphere(g.Positions)
}

func newGeometry(tag string) *Geometry {
	g := &Geometry{}
	initBase(&g.ObjectBase, g, tag)
	return g
}

// --- Box ---

// NewBoxGeometry creates an axis-aligned box centered at the origin with the
// given extents. Each face carries its own four vertices so normals stay flat.
func NewBoxGeometry(width, height, depth float32) *Geometry {
	g := newGeometry("boxGeometry")
	// u, v, w are component indices; each face spans u/v at a fixed signed w.
	boxFace(g, 2, 1, 0, -1, -1, depth, height, width)  // +x
	boxFace(g, 2, 1, 0, 1, -1, depth, height, -width)  // -x
	boxFace(g, 0, 2, 1, 1, 1, width, depth, height)    // +y
	boxFace(g, 0, 2, 1, 1, -1, width, depth, -height)  // -y
	boxFace(g, 0, 1, 2, 1, -1, width, height, depth)   // +z
	boxFace(g, 0, 1, 2, -1, -1, width, height, -depth) // -z
	g.finalize()
	return g
}

func setComp(v *vmath.Vector3, i int, val float32) {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	case 2:
		v.Z = val
	}
}

// boxFace emits one quad of a box: a 2x2 vertex grid over components u and v
// at a fixed offset along component w, wound to face +w when depth is
// positive.
func boxFace(g *Geometry, u, v, w int, udir, vdir, width, height, depth float32) {
	halfW := width / 2
	halfH := height / 2
	base := uint32(len(g.Positions))

	var normal vmath.Vector3
	if depth > 0 {
		setComp(&normal, w, 1)
	} else {
		setComp(&normal, w, -1)
	}

	for iy := 0; iy < 2; iy++ {
		y := float32(iy)*height - halfH
		for ix := 0; ix < 2; ix++ {
			x := float32(ix)*width - halfW
			var p vmath.Vector3
			setComp(&p, u, x*udir)
			setComp(&p, v, y*vdir)
			setComp(&p, w, depth/2)
			g.Positions = append(g.Positions, p)
			g.Normals = append(g.Normals, normal)
			g.UVs = append(g.UVs, vmath.V2(float32(ix), 1-float32(iy)))
		}
	}
	g.Indices = append(g.Indices,
		base+0, base+2, base+1,
		base+2, base+3, base+1,
	)
}

// --- Plane ---

// NewPlaneGeometry creates a rectangle in the XY plane facing +Z.
func NewPlaneGeometry(width, height float32) *Geometry {
	g := newGeometry("planeGeometry")
	hw := width / 2
	hh := height / 2
	g.Positions = []vmath.Vector3{
		vmath.V3(-hw, hh, 0),
		vmath.V3(hw, hh, 0),
		vmath.V3(-hw, -hh, 0),
		vmath.V3(hw, -hh, 0),
	}
	n := vmath.V3(0, 0, 1)
	g.Normals = []vmath.Vector3{n, n, n, n}
	// UV origin is bottom-left, so the top row carries v=1.
	g.UVs = []vmath.Vector2{
		vmath.V2(0, 1), vmath.V2(1, 1),
		vmath.V2(0, 0), vmath.V2(1, 0),
	}
	g.Indices = []uint32{0, 2, 1, 2, 3, 1}
	g.finalize()
	return g
}

// --- Sphere ---

// NewSphereGeometry creates a UV sphere. widthSegments is clamped to at
// least 3 and heightSegments to at least 2.
func NewSphereGeometry(radius float32, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}
	g := newGeometry("sphereGeometry")

	for iy := 0; iy <= heightSegments; iy++ {
		v := float32(iy) / float32(heightSegments)
		theta := v * math32.Pi
		sinT := math32.Sin(theta)
		cosT := math32.Cos(theta)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)
			phi := u * 2 * math32.Pi
			p := vmath.V3(
				-radius*math32.Cos(phi)*sinT,
				radius*cosT,
				radius*math32.Sin(phi)*sinT,
			)
			g.Positions = append(g.Positions, p)
			g.Normals = append(g.Normals, p.Normal())
			g.UVs = append(g.UVs, vmath.V2(u, 1-v))
		}
	}

	stride := uint32(widthSegments + 1)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy)*stride + uint32(ix) + 1
			b := uint32(iy)*stride + uint32(ix)
			c := uint32(iy+1)*stride + uint32(ix)
			d := uint32(iy+1)*stride + uint32(ix) + 1
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	g.finalize()
	return g
}
