package aspen

import (
	"testing"

	"github.com/aspen3d/aspen/vmath"
)

// --- Constructor defaults ---

func TestNewGroupDefaults(t *testing.T) {
	g := NewGroup("test")
	if g.ID() == 0 {
		t.Error("ID should be non-zero")
	}
	if g.Name != "test" {
		t.Errorf("Name = %q, want %q", g.Name, "test")
	}
	if g.TypeTag() != "group" {
		t.Errorf("TypeTag = %q, want %q", g.TypeTag(), "group")
	}
	if g.Scale != vmath.V3Scalar(1) {
		t.Errorf("Scale = %v, want (1, 1, 1)", g.Scale)
	}
	if !g.Visible {
		t.Error("Visible should be true")
	}
	if g.IsDisposed() {
		t.Error("new group should not be disposed")
	}
}

func TestUniqueIDs(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("b")
	c := NewMesh("c", nil, nil)
	if a.ID() == b.ID() || b.ID() == c.ID() || a.ID() == c.ID() {
		t.Errorf("IDs should be unique: %d, %d, %d", a.ID(), b.ID(), c.ID())
	}
}

// --- AddChild ---

func TestAddChildBasic(t *testing.T) {
	parent := NewGroup("parent")
	child := NewGroup("child")
	parent.AddChild(child)

	if child.Parent() != parent {
		t.Error("child.Parent() should be parent")
	}
	if parent.NumChildren() != 1 {
		t.Errorf("NumChildren = %d, want 1", parent.NumChildren())
	}
	if parent.ChildAt(0) != child {
		t.Error("ChildAt(0) should be child")
	}
}

func TestAddChildReparent(t *testing.T) {
	p1 := NewGroup("p1")
	p2 := NewGroup("p2")
	child := NewGroup("child")

	p1.AddChild(child)
	if p1.NumChildren() != 1 {
		t.Fatal("p1 should have 1 child")
	}

	p2.AddChild(child)
	if p1.NumChildren() != 0 {
		t.Error("p1 should have 0 children after reparent")
	}
	if p2.NumChildren() != 1 {
		t.Error("p2 should have 1 child")
	}
	if child.Parent() != p2 {
		t.Error("child.Parent() should be p2")
	}
}

func TestAddChildCyclePanic(t *testing.T) {
	parent := NewGroup("parent")
	child := NewGroup("child")
	grandchild := NewGroup("grandchild")
	parent.AddChild(child)
	child.AddChild(grandchild)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for cycle, got none")
		}
	}()
	grandchild.AddChild(parent)
}

func TestAddChildSelfPanic(t *testing.T) {
	g := NewGroup("self")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for self-add, got none")
		}
	}()
	g.AddChild(g)
}

func TestAddChildNilPanic(t *testing.T) {
	g := NewGroup("g")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil child, got none")
		}
	}()
	g.AddChild(nil)
}

func TestAddChildAt(t *testing.T) {
	parent := NewGroup("parent")
	a := NewGroup("a")
	b := NewGroup("b")
	c := NewGroup("c")
	parent.AddChild(a)
	parent.AddChild(c)

	parent.AddChildAt(b, 1)

	if parent.NumChildren() != 3 {
		t.Fatalf("NumChildren = %d, want 3", parent.NumChildren())
	}
	if parent.ChildAt(0) != a || parent.ChildAt(1) != b || parent.ChildAt(2) != c {
		t.Error("children order should be [a, b, c]")
	}
}

// --- RemoveChild ---

func TestRemoveChild(t *testing.T) {
	parent := NewGroup("parent")
	child := NewGroup("child")
	parent.AddChild(child)
	parent.RemoveChild(child)

	if parent.NumChildren() != 0 {
		t.Error("parent should have 0 children")
	}
	if child.Parent() != nil {
		t.Error("child.Parent() should be nil")
	}
}

func TestRemoveChildWrongParentPanic(t *testing.T) {
	p1 := NewGroup("p1")
	p2 := NewGroup("p2")
	child := NewGroup("child")
	p1.AddChild(child)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for wrong parent, got none")
		}
	}()
	p2.RemoveChild(child)
}

func TestRemoveChildAt(t *testing.T) {
	parent := NewGroup("parent")
	a := NewGroup("a")
	b := NewGroup("b")
	c := NewGroup("c")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)

	removed := parent.RemoveChildAt(1)
	if removed != b {
		t.Error("removed should be b")
	}
	if parent.NumChildren() != 2 {
		t.Errorf("NumChildren = %d, want 2", parent.NumChildren())
	}
	if parent.ChildAt(0) != a || parent.ChildAt(1) != c {
		t.Error("remaining children should be [a, c]")
	}
}

func TestRemoveFromParentNoOp(t *testing.T) {
	g := NewGroup("orphan")
	g.RemoveFromParent()
	if g.Parent() != nil {
		t.Error("Parent should remain nil")
	}
}

// --- SetChildIndex ---

func TestSetChildIndex(t *testing.T) {
	parent := NewGroup("parent")
	a := NewGroup("a")
	b := NewGroup("b")
	c := NewGroup("c")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)

	parent.SetChildIndex(c, 0)
	if parent.ChildAt(0) != c || parent.ChildAt(1) != a || parent.ChildAt(2) != b {
		t.Error("after move to front, order should be [c, a, b]")
	}

	parent.SetChildIndex(c, 2)
	if parent.ChildAt(0) != a || parent.ChildAt(1) != b || parent.ChildAt(2) != c {
		t.Error("after move to back, order should be [a, b, c]")
	}
}

func TestSetChildIndexFirstToLast(t *testing.T) {
	parent := NewGroup("parent")
	a := NewGroup("a")
	b := NewGroup("b")
	parent.AddChild(a)
	parent.AddChild(b)

	parent.SetChildIndex(a, 1)
	if parent.ChildAt(0) != b || parent.ChildAt(1) != a {
		t.Error("order should be [b, a]")
	}
}

// --- Walk ---

func TestWalkPreorder(t *testing.T) {
	root := NewGroup("root")
	a := NewGroup("a")
	b := NewGroup("b")
	aa := NewGroup("aa")
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(aa)

	var visited []string
	Walk(root, func(o Object) bool {
		visited = append(visited, o.Base().Name)
		return true
	})
	want := []string{"root", "a", "aa", "b"}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visited[%d] = %q, want %q", i, visited[i], want[i])
		}
	}
}

func TestWalkSkipSubtree(t *testing.T) {
	root := NewGroup("root")
	a := NewGroup("a")
	aa := NewGroup("aa")
	b := NewGroup("b")
	root.AddChild(a)
	a.AddChild(aa)
	root.AddChild(b)

	var visited []string
	Walk(root, func(o Object) bool {
		visited = append(visited, o.Base().Name)
		return o.Base().Name != "a"
	})
	for _, name := range visited {
		if name == "aa" {
			t.Error("subtree under a should have been skipped")
		}
	}
}

// --- World transforms ---

func TestUpdateWorldTreeComposes(t *testing.T) {
	parent := NewGroup("parent")
	child := NewGroup("child")
	parent.AddChild(child)
	parent.SetPosition(1, 2, 3)
	child.SetPosition(10, 0, 0)

	updateWorldTree(parent, vmath.Identity())

	w := child.WorldMatrix()
	got := vmath.V3(w[12], w[13], w[14])
	want := vmath.V3(11, 2, 3)
	if got.Distance(want) > 1e-5 {
		t.Errorf("child world position = %v, want %v", got, want)
	}
}

func TestMarkDirtyRecomposes(t *testing.T) {
	g := NewGroup("g")
	updateWorldTree(g, vmath.Identity())

	g.Position.X = 7
	g.MarkDirty()
	updateWorldTree(g, vmath.Identity())

	if w := g.WorldMatrix(); w[12] != 7 {
		t.Errorf("world x = %v, want 7 after MarkDirty", w[12])
	}
}

// --- Dispose ---

func TestDisposeRecursive(t *testing.T) {
	root := NewGroup("root")
	parent := NewGroup("parent")
	child := NewGroup("child")
	grandchild := NewGroup("grandchild")
	root.AddChild(parent)
	parent.AddChild(child)
	child.AddChild(grandchild)

	parent.Dispose()

	if !parent.IsDisposed() || !child.IsDisposed() || !grandchild.IsDisposed() {
		t.Error("whole subtree should be disposed")
	}
	if parent.ID() != 0 || child.ID() != 0 {
		t.Error("disposed objects should report ID 0")
	}
	if root.NumChildren() != 0 {
		t.Error("root should have 0 children after dispose")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	g := NewGroup("g")
	g.Dispose()
	g.Dispose()
	if !g.IsDisposed() {
		t.Error("should still be disposed")
	}
}

func TestDisposeSparesShared(t *testing.T) {
	parent := NewGroup("parent")
	shared := NewGroup("shared")
	shared.Shared = true
	plain := NewGroup("plain")
	parent.AddChild(shared)
	parent.AddChild(plain)

	parent.Dispose()

	if shared.IsDisposed() {
		t.Error("shared child should survive disposal")
	}
	if shared.Parent() != nil {
		t.Error("shared child should be detached")
	}
	if !plain.IsDisposed() {
		t.Error("plain child should be disposed")
	}
}

func TestDisposeMeshResources(t *testing.T) {
	geo := NewBoxGeometry(1, 1, 1)
	mat := NewBasicMaterial("mat")
	m := NewMesh("m", geo, mat)

	m.Dispose()

	if !geo.IsDisposed() {
		t.Error("geometry should be disposed with its mesh")
	}
	if !mat.IsDisposed() {
		t.Error("material should be disposed with its mesh")
	}
}

func TestDisposeSparesSharedGeometry(t *testing.T) {
	geo := NewBoxGeometry(1, 1, 1)
	geo.Shared = true
	m1 := NewMesh("m1", geo, nil)

	m1.Dispose()

	if geo.IsDisposed() {
		t.Error("shared geometry should survive mesh disposal")
	}
	if len(geo.Positions) == 0 {
		t.Error("shared geometry buffers should be intact")
	}
}

// --- Handlers ---

func TestSetHandler(t *testing.T) {
	g := NewGroup("g")
	if g.Interactive() {
		t.Error("fresh object should not be interactive")
	}
	g.SetHandler(EventClick, func(Event) Propagation { return Continue })
	if !g.Interactive() {
		t.Error("object with a handler should be interactive")
	}
	if g.Handler(EventClick) == nil {
		t.Error("Handler(EventClick) should be set")
	}
	g.SetHandler(EventClick, nil)
	if g.Interactive() {
		t.Error("nil handler should remove the registration")
	}
}
