package aspen

import (
	"testing"

	"github.com/chewxy/math32"
)

func statsScene() (*Group, *Mesh, *Camera) {
	scene := NewGroup("scene")
	scene.AddChild(NewAmbientLight("amb", Color{1, 1, 1}, 0.3))
	sun := NewDirectionalLight("sun", Color{1, 1, 1}, 1)
	sun.SetPosition(1, 2, 3)
	scene.AddChild(sun)

	mesh := NewMesh("plane", NewPlaneGeometry(1, 1), NewBasicMaterial("mat"))
	scene.AddChild(mesh)

	cam := NewPerspectiveCamera("cam")
	cam.SetPosition(0, 0, 5)
	return scene, mesh, cam
}

func TestFrameStatsVisibleScene(t *testing.T) {
	scene, _, cam := statsScene()
	r := NewSoftRenderer()
	r.SetSize(64, 64)
	r.Render(scene, cam)

	s := r.Stats()
	if s.Meshes != 1 {
		t.Errorf("Meshes = %d, want 1", s.Meshes)
	}
	if s.Triangles != 2 {
		t.Errorf("Triangles = %d, want 2", s.Triangles)
	}
	if s.Culled != 0 {
		t.Errorf("Culled = %d, want 0", s.Culled)
	}
	if s.Lights != 2 {
		t.Errorf("Lights = %d, want 2", s.Lights)
	}
	if s.DrawCalls != 0 {
		t.Errorf("DrawCalls = %d, want 0 on the software renderer", s.DrawCalls)
	}
}

func TestFrameStatsCountsBackfaces(t *testing.T) {
	scene, mesh, cam := statsScene()
	mesh.SetRotation(0, math32.Pi, 0)

	r := NewSoftRenderer()
	r.SetSize(64, 64)
	r.Render(scene, cam)

	s := r.Stats()
	if s.Triangles != 0 {
		t.Errorf("Triangles = %d, want 0 for a plane facing away", s.Triangles)
	}
	if s.Culled != 2 {
		t.Errorf("Culled = %d, want 2", s.Culled)
	}
	if s.Meshes != 0 {
		t.Errorf("Meshes = %d, want 0 when everything culled", s.Meshes)
	}
}

func TestFrameStatsSkipsInvisible(t *testing.T) {
	scene, mesh, cam := statsScene()
	mesh.Visible = false

	r := NewSoftRenderer()
	r.SetSize(64, 64)
	r.Render(scene, cam)

	s := r.Stats()
	if s.Meshes != 0 || s.Triangles != 0 || s.Culled != 0 {
		t.Errorf("stats = %+v, want no mesh work for a hidden mesh", s)
	}
	if s.Lights != 2 {
		t.Errorf("Lights = %d, want 2", s.Lights)
	}
}

func TestFrameStatsResetEachFrame(t *testing.T) {
	scene, mesh, cam := statsScene()
	r := NewSoftRenderer()
	r.SetSize(64, 64)

	r.Render(scene, cam)
	if r.Stats().Triangles != 2 {
		t.Fatalf("Triangles = %d, want 2", r.Stats().Triangles)
	}

	mesh.Visible = false
	r.Render(scene, cam)
	if r.Stats().Triangles != 0 {
		t.Errorf("Triangles = %d, want 0 after hiding the mesh", r.Stats().Triangles)
	}
}

func TestRootStats(t *testing.T) {
	rt := testMount(t, boxElem(nil))
	rt.State().Advance(0.016)

	s := rt.Stats()
	if s.Meshes != 1 {
		t.Errorf("Meshes = %d, want 1", s.Meshes)
	}
	// Straight on, only the front face of the box survives culling.
	if s.Triangles != 2 {
		t.Errorf("Triangles = %d, want 2", s.Triangles)
	}
	if s.Culled != 10 {
		t.Errorf("Culled = %d, want 10", s.Culled)
	}
}

func TestRootStatsCustomRenderer(t *testing.T) {
	rt := testMount(t, boxElem(nil), WithRenderer(newCountRenderer()))
	rt.State().Advance(0.016)

	if s := rt.Stats(); s != (FrameStats{}) {
		t.Errorf("stats = %+v, want zero value for a renderer without stats", s)
	}
}
