package aspen

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/aspen3d/aspen/vmath"
)

func TestCylinderGeometryCounts(t *testing.T) {
	g := NewCylinderGeometry(1, 1, 2, 8)
	// Torso: 2 rings of 9. Caps: center plus ring of 9 each.
	if len(g.Positions) != 38 {
		t.Errorf("Positions = %d, want 38", len(g.Positions))
	}
	if g.TriangleCount() != 32 {
		t.Errorf("TriangleCount = %d, want 32 (16 torso + 8 per cap)", g.TriangleCount())
	}
	for _, idx := range g.Indices {
		if int(idx) >= len(g.Positions) {
			t.Fatalf("index %d out of range", idx)
		}
	}
}

func TestCylinderGeometryBounds(t *testing.T) {
	g := NewCylinderGeometry(1, 1, 2, 8)
	b := g.Bounds()
	if b.Min.Distance(vmath.V3(-1, -1, -1)) > 1e-5 {
		t.Errorf("Bounds.Min = %v, want (-1, -1, -1)", b.Min)
	}
	if b.Max.Distance(vmath.V3(1, 1, 1)) > 1e-5 {
		t.Errorf("Bounds.Max = %v, want (1, 1, 1)", b.Max)
	}
}

func TestCylinderGeometryNormals(t *testing.T) {
	g := NewCylinderGeometry(1, 1, 2, 8)
	for i, n := range g.Normals {
		if math32.Abs(n.Length()-1) > 1e-5 {
			t.Fatalf("Normals[%d] = %v, not unit length", i, n)
		}
	}
	// Equal radii keep the torso normals horizontal.
	for i := 0; i < 18; i++ {
		if math32.Abs(g.Normals[i].Y) > 1e-5 {
			t.Errorf("torso Normals[%d].Y = %v, want 0", i, g.Normals[i].Y)
		}
	}
}

func TestCylinderGeometryClampsSegments(t *testing.T) {
	g := NewCylinderGeometry(1, 1, 1, 1)
	// Clamped to 3 segments: torso 2x4, caps 2x5.
	if len(g.Positions) != 18 {
		t.Errorf("Positions = %d, want 18 after clamping", len(g.Positions))
	}
}

func TestConeGeometry(t *testing.T) {
	g := NewConeGeometry(1, 2, 8)
	if g.TypeTag() != "coneGeometry" {
		t.Errorf("TypeTag = %q, want coneGeometry", g.TypeTag())
	}
	// No top cap: torso 18 plus bottom cap 10.
	if len(g.Positions) != 28 {
		t.Errorf("Positions = %d, want 28", len(g.Positions))
	}
	if g.TriangleCount() != 24 {
		t.Errorf("TriangleCount = %d, want 24", g.TriangleCount())
	}
	// Apex ring collapses to the +Y point.
	for i := 0; i < 9; i++ {
		p := g.Positions[i]
		if p.X != 0 || p.Z != 0 || math32.Abs(p.Y-1) > 1e-5 {
			t.Errorf("apex Positions[%d] = %v, want (0, 1, 0)", i, p)
		}
	}
}

func TestTorusGeometry(t *testing.T) {
	g := NewTorusGeometry(2, 0.5, 8, 12)
	if len(g.Positions) != 9*13 {
		t.Errorf("Positions = %d, want %d", len(g.Positions), 9*13)
	}
	if g.TriangleCount() != 8*12*2 {
		t.Errorf("TriangleCount = %d, want %d", g.TriangleCount(), 8*12*2)
	}
	// Every vertex sits at tube distance from the ring circle.
	for i, p := range g.Positions {
		ringDist := math32.Sqrt(p.X*p.X+p.Y*p.Y) - 2
		d := math32.Sqrt(ringDist*ringDist + p.Z*p.Z)
		if math32.Abs(d-0.5) > 1e-4 {
			t.Fatalf("Positions[%d] = %v, tube distance %v, want 0.5", i, p, d)
		}
	}
	for i, n := range g.Normals {
		if math32.Abs(n.Length()-1) > 1e-5 {
			t.Fatalf("Normals[%d] not unit length", i)
		}
	}
	for _, idx := range g.Indices {
		if int(idx) >= len(g.Positions) {
			t.Fatalf("index %d out of range", idx)
		}
	}
}

func TestShapeConstructorArgs(t *testing.T) {
	obj, err := construct("torusGeometry", []any{2, 0.5, 8, 12})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	g := obj.(*Geometry)
	if g.TriangleCount() != 192 {
		t.Errorf("TriangleCount = %d, want 192", g.TriangleCount())
	}

	obj, err = construct("coneGeometry", []any{1, 4.0})
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	g = obj.(*Geometry)
	size := g.Bounds().Size()
	if math32.Abs(size.Y-4) > 1e-5 {
		t.Errorf("cone height = %v, want 4", size.Y)
	}
}
