package aspen

import (
	"testing"

	"github.com/aspen3d/aspen/vmath"
)

// setupBenchScene builds n lit boxes on a grid, centered so a camera at
// z=600 sees all of them. Geometry and material are shared; the pipeline
// only reads them.
func setupBenchScene(n int) (*Group, *Camera) {
	scene := NewGroup("scene")
	scene.AddChild(NewAmbientLight("amb", Color{1, 1, 1}, 0.4))
	sun := NewDirectionalLight("sun", Color{1, 1, 1}, 1)
	sun.SetPosition(3, 5, 2)
	scene.AddChild(sun)

	geo := NewBoxGeometry(2, 2, 2)
	mat := NewLambertMaterial("bench")
	for i := 0; i < n; i++ {
		m := NewMesh("box", geo, mat)
		m.SetPosition(float32(i%100)*4-200, float32(i/100)*4-200, 0)
		scene.AddChild(m)
	}

	cam := NewPerspectiveCamera("cam")
	cam.SetPosition(0, 0, 600)
	cam.SetAspect(16.0 / 9.0)
	return scene, cam
}

// --- Pipeline Benchmarks ---

func BenchmarkPipeline_10000Boxes_Static(b *testing.B) {
	scene, cam := setupBenchScene(10000)
	var p pipeline
	p.build(scene, cam, 1280, 720) // warmup fills tris and sortBuf

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.build(scene, cam, 1280, 720)
	}
}

func BenchmarkPipeline_10000Boxes_Rotating(b *testing.B) {
	scene, cam := setupBenchScene(10000)
	var p pipeline
	p.build(scene, cam, 1280, 720)
	children := scene.Children()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		// Dirty every transform.
		for _, child := range children {
			cb := child.Base()
			cb.Rotation.Y += 0.01
			cb.MarkDirty()
		}
		p.build(scene, cam, 1280, 720)
	}
}

// --- World Transform Benchmarks ---

func BenchmarkWorldTree_10000Dirty(b *testing.B) {
	scene, _ := setupBenchScene(10000)
	updateWorldTree(scene, vmath.Identity())

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Walk(scene, func(o Object) bool {
			o.Base().MarkDirty()
			return true
		})
		updateWorldTree(scene, vmath.Identity())
	}
}

func BenchmarkWorldTree_10000Clean(b *testing.B) {
	scene, _ := setupBenchScene(10000)
	updateWorldTree(scene, vmath.Identity())

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		updateWorldTree(scene, vmath.Identity())
	}
}

// --- Triangle Sort Benchmark ---

func BenchmarkTriangleSort_10000Boxes(b *testing.B) {
	scene, cam := setupBenchScene(10000)
	var p pipeline
	p.build(scene, cam, 1280, 720)

	// Save the projected triangles for reset.
	saved := make([]renderTri, len(p.tris))
	copy(saved, p.tris)
	p.sortTris() // warm sortBuf to high-water mark

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.tris = p.tris[:len(saved)]
		copy(p.tris, saved)
		p.sortTris()
	}
}

// --- Raycast Benchmark ---

func BenchmarkRaycast_1000Meshes(b *testing.B) {
	kids := make([]*Elem, 0, 1000)
	for i := 0; i < 1000; i++ {
		kids = append(kids, E("mesh", Props{
			"position": vmath.V3(float32(i%100)*1.2, float32(i/100)*1.2, 0),
		},
			E("boxGeometry", nil),
			E("meshBasicMaterial", nil),
		))
	}
	rt, err := Render(E("group", nil, kids...), NewFixedSurface(640, 480))
	if err != nil {
		b.Fatal(err)
	}
	defer rt.Unmount()
	st := rt.State()
	st.Advance(0.016) // settle world matrices

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		st.Raycast(320, 240)
	}
}

// --- Commit Benchmarks ---

// benchTree declares n boxes; dx shifts every position so consecutive
// trees differ in one prop per mesh.
func benchTree(n int, dx float32) *Elem {
	kids := make([]*Elem, 0, n)
	for i := 0; i < n; i++ {
		kids = append(kids, E("mesh", Props{
			"position": vmath.V3(float32(i%10)*2+dx, float32(i/10)*2, 0),
		},
			E("boxGeometry", nil),
			E("meshBasicMaterial", nil),
		))
	}
	return E("group", nil, kids...)
}

func BenchmarkCommit_100Unchanged(b *testing.B) {
	rt, err := Render(benchTree(100, 0), NewFixedSurface(100, 100))
	if err != nil {
		b.Fatal(err)
	}
	defer rt.Unmount()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := rt.Update(benchTree(100, 0)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCommit_100Moving(b *testing.B) {
	rt, err := Render(benchTree(100, 0), NewFixedSurface(100, 100))
	if err != nil {
		b.Fatal(err)
	}
	defer rt.Unmount()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := rt.Update(benchTree(100, float32(i)*0.01)); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Full Tick Benchmark ---

func BenchmarkAdvance_1000Boxes(b *testing.B) {
	rt, err := Render(benchTree(1000, 0), NewFixedSurface(320, 240))
	if err != nil {
		b.Fatal(err)
	}
	defer rt.Unmount()
	st := rt.State()
	st.Advance(1.0 / 60.0) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		st.Advance(1.0 / 60.0)
	}
}
