package aspen

import (
	"strings"
	"testing"
)

// testMount mounts el on a fresh 200x200 software-rendered surface and
// unmounts on cleanup.
func testMount(t *testing.T, el *Elem, opts ...Option) *Root {
	t.Helper()
	rt, err := Render(el, NewFixedSurface(200, 200), opts...)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	t.Cleanup(rt.Unmount)
	return rt
}

// boxElem declares a unit box mesh with the given extra props.
func boxElem(props Props) *Elem {
	return E("mesh", props,
		E("boxGeometry", nil),
		E("meshBasicMaterial", nil),
	)
}

func TestRenderMountsScene(t *testing.T) {
	rt := testMount(t, boxElem(nil))
	st := rt.State()

	if st.Scene().NumChildren() != 1 {
		t.Fatalf("scene children = %d, want 1", st.Scene().NumChildren())
	}
	m, ok := st.Scene().ChildAt(0).(*Mesh)
	if !ok {
		t.Fatal("mounted child should be a mesh")
	}
	if m.Geometry == nil || m.Material == nil {
		t.Error("geometry and material should be attached")
	}
	if !st.Ready() {
		t.Error("fixed surface mount should be ready immediately")
	}
}

func TestRenderNilElement(t *testing.T) {
	if _, err := Render(nil, NewFixedSurface(10, 10)); err == nil {
		t.Error("nil element should error")
	}
}

func TestRenderNilSurface(t *testing.T) {
	if _, err := Render(boxElem(nil), nil); err == nil {
		t.Error("nil surface should error")
	}
}

func TestRenderUnknownTypeFailsMount(t *testing.T) {
	surf := NewFixedSurface(10, 10)
	_, err := Render(E("teapot", nil), surf)
	if err == nil {
		t.Fatal("unknown type should fail the mount")
	}
	if !strings.Contains(err.Error(), "teapot") {
		t.Errorf("error should name the type, got %v", err)
	}
	if _, ok := StateFor(surf); ok {
		t.Error("failed mount should not stay registered")
	}
}

func TestRenderOnMountedSurfaceUpdates(t *testing.T) {
	surf := NewFixedSurface(100, 100)
	rt1, err := Render(boxElem(nil), surf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	t.Cleanup(rt1.Unmount)

	rt2, err := Render(E("group", nil, boxElem(nil)), surf)
	if err != nil {
		t.Fatalf("second Render: %v", err)
	}
	if rt1 != rt2 {
		t.Error("rendering a mounted surface should return the same root")
	}
	if _, ok := rt1.State().Scene().ChildAt(0).(*Group); !ok {
		t.Error("second render should have replaced the tree")
	}
}

// --- StateFor / Unmount ---

func TestStateFor(t *testing.T) {
	surf := NewFixedSurface(50, 50)
	rt, err := Render(boxElem(nil), surf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	st, ok := StateFor(surf)
	if !ok || st != rt.State() {
		t.Error("StateFor should find the mount")
	}
	if MustStateFor(surf) != st {
		t.Error("MustStateFor should agree")
	}

	rt.Unmount()
	if _, ok := StateFor(surf); ok {
		t.Error("StateFor should miss after Unmount")
	}
}

func TestMustStateForPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unmounted surface")
		}
	}()
	MustStateFor(NewFixedSurface(1, 1))
}

func TestUnmountDisposesScene(t *testing.T) {
	surf := NewFixedSurface(50, 50)
	rt, err := Render(boxElem(nil), surf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	mesh := rt.State().Scene().ChildAt(0).(*Mesh)

	rt.Unmount()
	if !mesh.IsDisposed() {
		t.Error("unmount should dispose mounted objects")
	}
	rt.Unmount() // idempotent

	if err := rt.Update(boxElem(nil)); err == nil {
		t.Error("Update after Unmount should error")
	}
}

func TestPackageUnmount(t *testing.T) {
	surf := NewFixedSurface(50, 50)
	if _, err := Render(boxElem(nil), surf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	Unmount(surf)
	if _, ok := StateFor(surf); ok {
		t.Error("package Unmount should tear down the mount")
	}
	Unmount(surf) // no-op on unmounted surface
}

// --- RenderFunc ---

func TestRenderFuncRebuildOnRefresh(t *testing.T) {
	show := false
	rt, err := RenderFunc(func(st *State) *Elem {
		var marker *Elem
		if show {
			marker = E("group", Props{"key": "marker"})
		}
		return E("group", nil, boxElem(nil), marker)
	}, NewFixedSurface(100, 100))
	if err != nil {
		t.Fatalf("RenderFunc: %v", err)
	}
	t.Cleanup(rt.Unmount)

	rootGroup := rt.State().Scene().ChildAt(0).(*Group)
	if rootGroup.NumChildren() != 1 {
		t.Fatalf("children = %d, want 1 before refresh", rootGroup.NumChildren())
	}

	show = true
	if err := rt.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rootGroup.NumChildren() != 2 {
		t.Errorf("children = %d, want 2 after refresh", rootGroup.NumChildren())
	}
}

func TestRenderFuncOnMountedSurfaceErrors(t *testing.T) {
	surf := NewFixedSurface(50, 50)
	rt, err := Render(boxElem(nil), surf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	t.Cleanup(rt.Unmount)

	if _, err := RenderFunc(func(*State) *Elem { return nil }, surf); err == nil {
		t.Error("RenderFunc on a mounted surface should error")
	}
}

func TestUpdateOnRenderFuncPanics(t *testing.T) {
	rt, err := RenderFunc(func(*State) *Elem { return boxElem(nil) }, NewFixedSurface(50, 50))
	if err != nil {
		t.Fatalf("RenderFunc: %v", err)
	}
	t.Cleanup(rt.Unmount)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for Update on RenderFunc mount")
		}
	}()
	rt.Update(boxElem(nil))
}

// --- Mount configuration ---

func TestOnCreatedFiresWhenReady(t *testing.T) {
	fired := 0
	rt := testMount(t, boxElem(nil), WithOnCreated(func(st *State) {
		fired++
		if !st.Ready() {
			t.Error("onCreated should see a ready state")
		}
	}))
	if fired != 1 {
		t.Errorf("onCreated fired %d times, want 1", fired)
	}
	rt.State().Advance(0.016)
	if fired != 1 {
		t.Error("onCreated should fire only once")
	}
}

func TestOnCreatedWaitsForSize(t *testing.T) {
	fired := 0
	surf := NewWindowSurface() // zero size until layout
	rt, err := Render(boxElem(nil), surf, WithOnCreated(func(*State) { fired++ }))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	t.Cleanup(rt.Unmount)

	if fired != 0 {
		t.Fatal("onCreated should wait for a nonzero size")
	}
	if rt.State().Ready() {
		t.Fatal("zero-size mount should not be ready")
	}

	rt.State().setSize(800, 600, 1)
	rt.maybeFireCreated()
	if fired != 1 {
		t.Fatalf("onCreated fired %d times after the first measurement, want 1", fired)
	}
	if a := rt.State().Camera().Aspect(); a != float32(800)/float32(600) {
		t.Errorf("camera aspect = %v, want 800/600", a)
	}

	rt.State().setSize(1024, 768, 1)
	rt.maybeFireCreated()
	if fired != 1 {
		t.Error("a later resize should not fire onCreated again")
	}

	// Minimized windows report zero; the latch holds.
	rt.State().setSize(0, 0, 1)
	if !rt.State().Ready() {
		t.Error("a zero report after readiness should not unlatch")
	}
}

func TestRelayoutTracksSurface(t *testing.T) {
	surf := NewFixedSurface(100, 50)
	rt, err := Render(boxElem(nil), surf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	t.Cleanup(rt.Unmount)

	surf.W, surf.H = 300, 150
	if w, _ := rt.State().Size(); w != 100 {
		t.Fatal("mutating the surface alone should not resize the mount")
	}
	rt.Relayout()
	w, h := rt.State().Size()
	if w != 300 || h != 150 {
		t.Errorf("size after Relayout = %dx%d, want 300x150", w, h)
	}
	if a := rt.State().Camera().Aspect(); a != 2 {
		t.Errorf("camera aspect = %v, want 2", a)
	}
}

func TestWithBackground(t *testing.T) {
	rt := testMount(t, boxElem(nil), WithBackground(Color{R: 1}))
	sr, ok := rt.State().Renderer().(*SoftRenderer)
	if !ok {
		t.Fatal("fixed surface should default to the software renderer")
	}
	if !colorNear(sr.clearColor, Color{R: 1}) {
		t.Errorf("clear color = %v, want red", sr.clearColor)
	}
}

// shadowRenderer records the shadow hint, which only renderers exposing
// SetShadows receive.
type shadowRenderer struct {
	countRenderer
	shadows bool
}

func (r *shadowRenderer) SetShadows(on bool) { r.shadows = on }

func TestWithShadowsReachesCapableRenderer(t *testing.T) {
	sr := &shadowRenderer{}
	testMount(t, boxElem(nil), WithRenderer(sr), WithShadows())
	if !sr.shadows {
		t.Error("shadow hint not recorded on a renderer implementing SetShadows")
	}

	off := &shadowRenderer{shadows: true}
	testMount(t, boxElem(nil), WithRenderer(off))
	if off.shadows {
		t.Error("shadow hint should default to off")
	}
}

func TestMakeDefaultCamera(t *testing.T) {
	rt := testMount(t, E("group", nil,
		E("perspectiveCamera", Props{
			"key":         "cam",
			"args":        []any{60},
			"makeDefault": true,
			"position":    []any{0, 0, 10},
		}),
		boxElem(nil),
	))
	cam := rt.State().Camera()
	if cam.Fov != 60 {
		t.Errorf("active camera fov = %v, want the declared 60", cam.Fov)
	}
	if cam == rt.ownCamera {
		t.Error("declared camera should replace the mount's own")
	}
	if cam.Aspect() != 1 {
		t.Errorf("declared camera aspect = %v, want 1 for a square surface", cam.Aspect())
	}
}
