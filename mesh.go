package aspen

import "github.com/aspen3d/aspen/vmath"

// Mesh pairs a geometry with a material. Both are attach slots: the bridge
// assigns them directly rather than parenting them as scene children.
type Mesh struct {
	ObjectBase

	Geometry *Geometry
	Material *Material
}

// NewMesh creates a mesh. Geometry and material may be nil and assigned
// later; a mesh missing either is skipped by renderers and raycasts.
func NewMesh(name string, geo *Geometry, mat *Material) *Mesh {
	m := &Mesh{Geometry: geo, Material: mat}
	initBase(&m.ObjectBase, m, "mesh")
	m.Name = name
	return m
}

func (m *Mesh) teardown() {
	if m.Geometry != nil {
		disposeTree(m.Geometry)
		m.Geometry = nil
	}
	if m.Material != nil {
		disposeTree(m.Material)
		m.Material = nil
	}
}

// Raycast intersects a world-space ray against this mesh and appends the
// nearest triangle hit, if any, to out. The mesh's world matrix must be
// current; dispatch refreshes the tree before casting.
func (m *Mesh) Raycast(ray vmath.Ray, out []Hit) []Hit {
	if m.Geometry == nil || len(m.Geometry.Indices) == 0 {
		return out
	}
	world := m.world
	inv, ok := world.Inverse()
	if !ok {
		return out
	}
	local := ray.MulMatrix4(inv)

	// Bounding sphere prefilter in local space.
	if _, ok := local.IntersectSphere(m.Geometry.sphere); !ok {
		return out
	}

	cullBack := m.Material == nil || !m.Material.DoubleSide

	var (
		found   bool
		bestT   float32
		bestIdx int
	)
	idx := m.Geometry.Indices
	pos := m.Geometry.Positions
	for i := 0; i+2 < len(idx); i += 3 {
		a := pos[idx[i]]
		b := pos[idx[i+1]]
		c := pos[idx[i+2]]
		t, ok := local.IntersectTriangle(a, b, c, cullBack)
		if ok && (!found || t < bestT) {
			found = true
			bestT = t
			bestIdx = i
		}
	}
	if !found {
		return out
	}

	a := pos[idx[bestIdx]]
	b := pos[idx[bestIdx+1]]
	c := pos[idx[bestIdx+2]]
	localPoint := local.At(bestT)
	worldPoint := localPoint.MulMatrix4(world)
	normal := b.Sub(a).Cross(c.Sub(a)).MulMatrix4Dir(world).Normal()

	return append(out, Hit{
		Object:   m,
		Point:    worldPoint,
		Normal:   normal,
		Distance: worldPoint.Distance(ray.Origin),
		Ray:      ray,
	})
}
