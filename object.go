package aspen

import "github.com/aspen3d/aspen/vmath"

// objectIDCounter is a plain counter (no atomic; scene mutation is
// single-threaded between ticks).
var objectIDCounter uint32

func nextObjectID() uint32 {
	objectIDCounter++
	return objectIDCounter
}

// Object is implemented by every scene graph participant: groups, meshes,
// cameras, lights, and the geometry/material/texture resources that attach
// to them. Concrete types embed ObjectBase and are built through their
// constructors; zero-value objects are not usable.
type Object interface {
	// Base returns the embedded ObjectBase carrying identity, transform,
	// hierarchy, and handler state.
	Base() *ObjectBase

	// teardown releases type-specific resources during disposal.
	teardown()
}

// reconInfo is reconciler bookkeeping. It is populated only on objects the
// bridge created; manually built objects keep the zero value and the bridge
// leaves them alone.
type reconInfo struct {
	name  string // sibling-scoped identity (key, or type tag plus ordinal)
	props Props  // last applied property set
	args  []any  // constructor arguments; a change forces recreation
	slot  string // attach slot name on the parent; empty for scene children
}

// ObjectBase is the concrete core shared by all scene object types.
type ObjectBase struct {
	// Identity
	Name string

	id      uint32
	typeTag string
	self    Object

	// Hierarchy
	parent   Object
	children []Object
	attached []Object // slot-attached managed children (not scene children)

	// Transform (local). Direct field writes must be followed by MarkDirty;
	// the Set* mutators and the property applier do this automatically.
	Position vmath.Vector3
	Rotation vmath.Vector3 // Euler angles in radians, applied in X, Y, Z order
	Scale    vmath.Vector3

	local      vmath.Matrix4
	world      vmath.Matrix4
	localDirty bool

	// Visibility & sharing
	Visible bool
	Shared  bool // shared objects are never disposed when their parent goes away

	// Metadata
	UserData any

	handlers map[EventKind]Handler

	recon    reconInfo
	disposed bool
}

// initBase wires the common defaults shared by all constructors.
func initBase(b *ObjectBase, self Object, tag string) {
	b.id = nextObjectID()
	b.typeTag = tag
	b.self = self
	b.Scale = vmath.V3Scalar(1)
	b.Visible = true
	b.local = vmath.Identity()
	b.world = vmath.Identity()
	b.localDirty = true
}

// Base returns b itself, satisfying Object for embedders.
func (b *ObjectBase) Base() *ObjectBase { return b }

// teardown is the default no-op resource teardown.
func (b *ObjectBase) teardown() {}

// ID returns the object's unique id. Disposed objects report 0.
func (b *ObjectBase) ID() uint32 { return b.id }

// TypeTag returns the registry tag this object was constructed under.
func (b *ObjectBase) TypeTag() string { return b.typeTag }

// Parent returns the scene-graph parent, or nil for detached objects and
// slot-attached resources.
func (b *ObjectBase) Parent() Object { return b.parent }

// IsDisposed reports whether this object has been disposed.
func (b *ObjectBase) IsDisposed() bool { return b.disposed }

// --- Transform ---

// SetPosition sets the local position and marks the transform dirty.
func (b *ObjectBase) SetPosition(x, y, z float32) {
	b.Position.Set(x, y, z)
	b.localDirty = true
}

// SetRotation sets the local Euler rotation in radians and marks the
// transform dirty.
func (b *ObjectBase) SetRotation(x, y, z float32) {
	b.Rotation.Set(x, y, z)
	b.localDirty = true
}

// SetScale sets the local scale and marks the transform dirty.
func (b *ObjectBase) SetScale(x, y, z float32) {
	b.Scale.Set(x, y, z)
	b.localDirty = true
}

// MarkDirty forces the local matrix to be recomposed on the next traversal.
// Call after writing Position, Rotation, or Scale fields directly.
func (b *ObjectBase) MarkDirty() {
	b.localDirty = true
}

// WorldMatrix returns the world transform computed by the most recent
// traversal. It is refreshed before every render and every raycast.
func (b *ObjectBase) WorldMatrix() vmath.Matrix4 { return b.world }

// updateWorldTree recomposes dirty local matrices and refreshes world
// matrices for o and all its descendants.
func updateWorldTree(o Object, parent vmath.Matrix4) {
	b := o.Base()
	if b.localDirty {
		b.local = vmath.Compose(b.Position, vmath.QuatEuler(b.Rotation), b.Scale)
		b.localDirty = false
	}
	b.world = parent.Mul(b.local)
	for _, c := range b.children {
		updateWorldTree(c, b.world)
	}
}

// --- Event handlers ---

// SetHandler installs the handler for an event kind. A nil handler removes
// the existing one.
func (b *ObjectBase) SetHandler(kind EventKind, h Handler) {
	if h == nil {
		delete(b.handlers, kind)
		return
	}
	if b.handlers == nil {
		b.handlers = make(map[EventKind]Handler, 2)
	}
	b.handlers[kind] = h
}

// Handler returns the installed handler for an event kind, or nil.
func (b *ObjectBase) Handler(kind EventKind) Handler {
	return b.handlers[kind]
}

// Interactive reports whether any event handler is installed.
func (b *ObjectBase) Interactive() bool { return len(b.handlers) > 0 }

// clearHandlers removes all handlers.
func (b *ObjectBase) clearHandlers() {
	for k := range b.handlers {
		delete(b.handlers, k)
	}
}

// --- Tree manipulation ---

// AddChild appends child to this object's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or an ancestor of this object (cycle).
func (b *ObjectBase) AddChild(child Object) {
	b.AddChildAt(child, len(b.children))
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (b *ObjectBase) AddChildAt(child Object, index int) {
	if child == nil {
		panic("aspen: cannot add nil child")
	}
	if isAncestor(child, b.self) {
		panic("aspen: adding child would create a cycle")
	}
	if index < 0 || index > len(b.children) {
		panic("aspen: child index out of range")
	}
	cb := child.Base()
	if cb.parent != nil {
		cb.parent.Base().removeChildByPtr(child)
	}
	cb.parent = b.self
	b.children = append(b.children, nil)
	copy(b.children[index+1:], b.children[index:])
	b.children[index] = child
}

// RemoveChild detaches child from this object.
// Panics if child's parent is not this object.
func (b *ObjectBase) RemoveChild(child Object) {
	if child.Base().parent != b.self {
		panic("aspen: child's parent is not this object")
	}
	b.removeChildByPtr(child)
	child.Base().parent = nil
}

// RemoveChildAt removes and returns the child at the given index.
func (b *ObjectBase) RemoveChildAt(index int) Object {
	if index < 0 || index >= len(b.children) {
		panic("aspen: child index out of range")
	}
	child := b.children[index]
	copy(b.children[index:], b.children[index+1:])
	b.children[len(b.children)-1] = nil
	b.children = b.children[:len(b.children)-1]
	child.Base().parent = nil
	return child
}

// RemoveFromParent detaches this object from its parent.
// No-op if this object has no parent.
func (b *ObjectBase) RemoveFromParent() {
	if b.parent == nil {
		return
	}
	b.parent.Base().RemoveChild(b.self)
}

// Children returns the child list. The returned slice MUST NOT be mutated
// by the caller.
func (b *ObjectBase) Children() []Object { return b.children }

// NumChildren returns the number of children.
func (b *ObjectBase) NumChildren() int { return len(b.children) }

// ChildAt returns the child at the given index.
func (b *ObjectBase) ChildAt(index int) Object { return b.children[index] }

// IndexOfChild returns the index of child among this object's children,
// or -1 if child is not a child of this object.
func (b *ObjectBase) IndexOfChild(child Object) int {
	for i, c := range b.children {
		if c == child {
			return i
		}
	}
	return -1
}

// SetChildIndex moves child to a new index among its siblings.
func (b *ObjectBase) SetChildIndex(child Object, index int) {
	if child.Base().parent != b.self {
		panic("aspen: child's parent is not this object")
	}
	if index < 0 || index >= len(b.children) {
		panic("aspen: child index out of range")
	}
	oldIndex := b.IndexOfChild(child)
	if oldIndex == index {
		return
	}
	// Shift elements to fill the gap and open the target slot.
	if oldIndex < index {
		copy(b.children[oldIndex:], b.children[oldIndex+1:index+1])
	} else {
		copy(b.children[index+1:], b.children[index:oldIndex])
	}
	b.children[index] = child
}

// Walk visits o's subtree in depth-first preorder. Returning false from fn
// skips the current object's children.
func Walk(o Object, fn func(Object) bool) {
	if !fn(o) {
		return
	}
	for _, c := range o.Base().children {
		Walk(c, fn)
	}
}

// --- Disposal ---

// Dispose detaches this object from its parent, marks it disposed, and
// recursively disposes descendants and owned resources. Subtrees rooted at
// Shared objects are detached but left alive.
func (b *ObjectBase) Dispose() {
	if b.disposed {
		return
	}
	b.RemoveFromParent()
	disposeTree(b.self)
}

func disposeTree(o Object) {
	b := o.Base()
	if b.disposed {
		return
	}
	if b.Shared {
		b.parent = nil
		return
	}
	b.disposed = true
	b.id = 0
	o.teardown()
	for _, child := range b.children {
		child.Base().parent = nil
		disposeTree(child)
	}
	for _, att := range b.attached {
		disposeTree(att)
	}
	b.children = nil
	b.attached = nil
	b.parent = nil
	b.handlers = nil
	b.UserData = nil
	b.recon = reconInfo{}
}

// --- Helpers ---

// isAncestor reports whether candidate is o itself or an ancestor of o.
func isAncestor(candidate, o Object) bool {
	for p := o; p != nil; p = p.Base().parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from b.children without clearing the
// child's parent. Uses copy+nil to avoid retaining a dangling pointer in
// the backing array.
func (b *ObjectBase) removeChildByPtr(child Object) {
	for i, c := range b.children {
		if c == child {
			copy(b.children[i:], b.children[i+1:])
			b.children[len(b.children)-1] = nil
			b.children = b.children[:len(b.children)-1]
			return
		}
	}
}

// removeAttached removes child from b's slot-attached list.
func (b *ObjectBase) removeAttached(child Object) {
	for i, c := range b.attached {
		if c == child {
			copy(b.attached[i:], b.attached[i+1:])
			b.attached[len(b.attached)-1] = nil
			b.attached = b.attached[:len(b.attached)-1]
			return
		}
	}
}

// --- Group ---

// Group is a transform-only container. The scene root of every mount is a
// Group.
type Group struct {
	ObjectBase
}

// NewGroup creates an empty group.
func NewGroup(name string) *Group {
	g := &Group{}
	initBase(&g.ObjectBase, g, "group")
	g.Name = name
	return g
}
