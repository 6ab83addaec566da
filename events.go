package aspen

import (
	"sort"

	"github.com/aspen3d/aspen/vmath"
)

// maxPointers is the number of simultaneously tracked pointers.
const maxPointers = 10

// PointerEvent is a raw input sample from the host: a position in logical
// points plus the action that produced it. Kind is one of Move, Down, Up,
// Wheel, or Out (for the cursor leaving the surface); Over and Click are
// synthesized during dispatch and ignored as inputs.
type PointerEvent struct {
	Kind      EventKind
	X, Y      float64
	Button    MouseButton
	WheelX    float64
	WheelY    float64
	Mods      KeyModifiers
	PointerID int
}

// Hit is one ray intersection, in world space. Distance is measured from
// the ray origin, which for a perspective camera is the camera itself.
type Hit struct {
	Object   Object
	Point    vmath.Vector3
	Normal   vmath.Vector3
	Distance float32
	Ray      vmath.Ray
}

// Event is what handlers receive. Hit is the intersection being delivered;
// Target is the object whose handler is running, which during bubbling is
// an ancestor of Hit.Object. Hits is the full distance-sorted list for
// this dispatch.
type Event struct {
	Kind   EventKind
	Hit    Hit
	Hits   []Hit
	Target Object

	X, Y      float64
	Button    MouseButton
	WheelX    float64
	WheelY    float64
	Mods      KeyModifiers
	PointerID int

	State *State
}

// Object returns the hit object, the dispatch target before bubbling.
func (e Event) Object() Object { return e.Hit.Object }

// CapturePointer routes this pointer's later events to the current hit,
// bypassing raycasts, until ReleasePointer or the next pointer up. Dragging
// keeps receiving moves this way even once the cursor leaves the object.
func (e Event) CapturePointer() {
	if e.State != nil {
		e.State.capturePointer(e.PointerID, e.Hit)
	}
}

// ReleasePointer undoes CapturePointer for this object.
func (e Event) ReleasePointer() {
	if e.State != nil {
		e.State.releasePointer(e.PointerID, e.Hit.Object)
	}
}

// EventSink observes pointer dispatch without registering per-object
// handlers. Move, Down, Up and Wheel arrive once per input sample with
// the nearest hit, zero Hit when nothing was struck; Over, Out and Click
// arrive once per object occurrence. The ecs module adapts a sink into a
// Donburi event queue.
type EventSink interface {
	EmitEvent(Event)
}

// pointerState tracks one pointer's hover set, pressed hits, and capture.
type pointerState struct {
	hovered  []Hit
	pressIDs map[uint32]bool
	captured []Hit
}

// --- Dispatch ---

// DispatchPointer feeds one input sample through hit-testing and handler
// delivery. Handlers run nearest hit first, each bubbling through its
// ancestors; StopPropagation ends the whole dispatch. Hosts call this from
// their input polling; tests call it directly.
func (st *State) DispatchPointer(pe PointerEvent) {
	if st.dead || !st.ready || st.root.cfg.noEvents {
		return
	}
	if pe.PointerID < 0 || pe.PointerID >= maxPointers {
		return
	}
	ps := &st.pointers[pe.PointerID]

	switch pe.Kind {
	case EventPointerMove:
		st.dispatchMove(ps, pe)
	case EventPointerDown:
		st.dispatchDown(ps, pe)
	case EventPointerUp:
		st.dispatchUp(ps, pe)
	case EventWheel:
		st.dispatchPlain(ps, pe, EventWheel)
	case EventPointerOut:
		st.dispatchLeave(ps, pe)
	}
}

// NDC converts a position in logical points to normalized device
// coordinates, x right and y up, both in [-1, 1] inside the surface.
func (st *State) NDC(x, y float64) (nx, ny float32) {
	if st.w <= 0 || st.h <= 0 {
		return 0, 0
	}
	return float32(2*x/float64(st.w) - 1), float32(1 - 2*y/float64(st.h))
}

// Raycast hit-tests every visible mesh at a position in logical points.
// Dispatch casts against less: only meshes a handler could reach.
func (st *State) Raycast(x, y float64) []Hit {
	return st.castRay(x, y, false)
}

// castRay walks the scene intersecting meshes front to back. With
// interactiveOnly set, a mesh is a candidate only when it or an ancestor
// carries a handler, so hover state never tracks objects outside any
// handler's reach. Dispatch drops the filter while a sink is installed,
// since a sink observes objects with no handlers at all.
func (st *State) castRay(x, y float64, interactiveOnly bool) []Hit {
	nx, ny := st.NDC(x, y)
	ray := st.root.camera.ScreenRay(nx, ny)
	updateWorldTree(st.root.scene, vmath.Identity())

	var hits []Hit
	var walk func(o Object, armed bool)
	walk = func(o Object, armed bool) {
		b := o.Base()
		if !b.Visible {
			return
		}
		armed = armed || b.Interactive()
		if m, ok := o.(*Mesh); ok && (armed || !interactiveOnly) {
			hits = m.Raycast(ray, hits)
		}
		for _, c := range b.children {
			walk(c, armed)
		}
	}
	walk(st.root.scene, false)
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// hitsFor returns the capture set when this pointer is captured, otherwise
// a fresh raycast over handler-reachable meshes.
func (st *State) hitsFor(ps *pointerState, pe PointerEvent) []Hit {
	if len(ps.captured) > 0 {
		return ps.captured
	}
	return st.castRay(pe.X, pe.Y, st.sink == nil)
}

// deliverChain calls the handler for kind on the hit object and then each
// ancestor that has one.
func (st *State) deliverChain(kind EventKind, hit Hit, hits []Hit, pe PointerEvent) Propagation {
	for obj := hit.Object; obj != nil; obj = obj.Base().Parent() {
		b := obj.Base()
		if b.IsDisposed() {
			break
		}
		h := b.Handler(kind)
		if h == nil {
			continue
		}
		ev := Event{
			Kind:      kind,
			Hit:       hit,
			Hits:      hits,
			Target:    obj,
			X:         pe.X,
			Y:         pe.Y,
			Button:    pe.Button,
			WheelX:    pe.WheelX,
			WheelY:    pe.WheelY,
			Mods:      pe.Mods,
			PointerID: pe.PointerID,
			State:     st,
		}
		if h(ev) == StopPropagation {
			return StopPropagation
		}
	}
	return Continue
}

// emitSink forwards one dispatch occurrence to the installed sink.
func (st *State) emitSink(kind EventKind, hit Hit, hits []Hit, pe PointerEvent) {
	if st.sink == nil {
		return
	}
	st.sink.EmitEvent(Event{
		Kind:      kind,
		Hit:       hit,
		Hits:      hits,
		Target:    hit.Object,
		X:         pe.X,
		Y:         pe.Y,
		Button:    pe.Button,
		WheelX:    pe.WheelX,
		WheelY:    pe.WheelY,
		Mods:      pe.Mods,
		PointerID: pe.PointerID,
		State:     st,
	})
}

func firstHit(hits []Hit) Hit {
	if len(hits) == 0 {
		return Hit{}
	}
	return hits[0]
}

func (st *State) dispatchPlain(ps *pointerState, pe PointerEvent, kind EventKind) []Hit {
	hits := st.hitsFor(ps, pe)
	for _, hit := range hits {
		if st.deliverChain(kind, hit, hits, pe) == StopPropagation {
			break
		}
	}
	st.emitSink(kind, firstHit(hits), hits, pe)
	return hits
}

// dispatchMove synthesizes Over for newly entered objects, delivers Move
// front to back, then Out for objects no longer reached. A handler that
// stops propagation truncates the reach, so everything behind it leaves
// the hover set and gets its Out.
func (st *State) dispatchMove(ps *pointerState, pe PointerEvent) {
	if len(ps.captured) > 0 {
		hits := ps.captured
		for _, hit := range hits {
			if st.deliverChain(EventPointerMove, hit, hits, pe) == StopPropagation {
				break
			}
		}
		st.emitSink(EventPointerMove, firstHit(hits), hits, pe)
		return
	}

	hits := st.castRay(pe.X, pe.Y, st.sink == nil)
	prev := hitIDs(ps.hovered)

	var reached []Hit
	for _, hit := range hits {
		reached = append(reached, hit)
		if !prev[hit.Object.Base().ID()] {
			st.emitSink(EventPointerOver, hit, hits, pe)
			if st.deliverChain(EventPointerOver, hit, hits, pe) == StopPropagation {
				break
			}
		}
		if st.deliverChain(EventPointerMove, hit, hits, pe) == StopPropagation {
			break
		}
	}
	st.emitSink(EventPointerMove, firstHit(hits), hits, pe)

	now := hitIDs(reached)
	for _, old := range ps.hovered {
		if old.Object == nil || old.Object.Base().IsDisposed() {
			continue
		}
		if !now[old.Object.Base().ID()] {
			st.emitSink(EventPointerOut, old, hits, pe)
			st.deliverChain(EventPointerOut, old, hits, pe)
		}
	}
	ps.hovered = reached
}

func (st *State) dispatchDown(ps *pointerState, pe PointerEvent) {
	hits := st.hitsFor(ps, pe)
	ps.pressIDs = hitIDs(hits)
	for _, hit := range hits {
		if st.deliverChain(EventPointerDown, hit, hits, pe) == StopPropagation {
			break
		}
	}
	st.emitSink(EventPointerDown, firstHit(hits), hits, pe)
}

// dispatchUp delivers Up, then Click on objects that saw the matching
// Down, then drops any capture for this pointer.
func (st *State) dispatchUp(ps *pointerState, pe PointerEvent) {
	hits := st.hitsFor(ps, pe)
	for _, hit := range hits {
		if st.deliverChain(EventPointerUp, hit, hits, pe) == StopPropagation {
			break
		}
	}
	st.emitSink(EventPointerUp, firstHit(hits), hits, pe)
	if len(ps.pressIDs) > 0 {
		for _, hit := range hits {
			if hit.Object == nil || hit.Object.Base().IsDisposed() {
				continue
			}
			if !ps.pressIDs[hit.Object.Base().ID()] {
				continue
			}
			st.emitSink(EventClick, hit, hits, pe)
			if st.deliverChain(EventClick, hit, hits, pe) == StopPropagation {
				break
			}
		}
	}
	ps.pressIDs = nil
	ps.captured = nil
}

// dispatchLeave empties the hover set, delivering Out to everything in it.
func (st *State) dispatchLeave(ps *pointerState, pe PointerEvent) {
	for _, old := range ps.hovered {
		if old.Object == nil || old.Object.Base().IsDisposed() {
			continue
		}
		st.emitSink(EventPointerOut, old, nil, pe)
		st.deliverChain(EventPointerOut, old, nil, pe)
	}
	ps.hovered = nil
}

func (st *State) capturePointer(pid int, hit Hit) {
	if pid < 0 || pid >= maxPointers || hit.Object == nil {
		return
	}
	ps := &st.pointers[pid]
	id := hit.Object.Base().ID()
	for _, c := range ps.captured {
		if c.Object.Base().ID() == id {
			return
		}
	}
	ps.captured = append(ps.captured, hit)
}

func (st *State) releasePointer(pid int, obj Object) {
	if pid < 0 || pid >= maxPointers || obj == nil {
		return
	}
	ps := &st.pointers[pid]
	id := obj.Base().ID()
	for i, c := range ps.captured {
		if c.Object.Base().ID() == id {
			copy(ps.captured[i:], ps.captured[i+1:])
			ps.captured[len(ps.captured)-1] = Hit{}
			ps.captured = ps.captured[:len(ps.captured)-1]
			return
		}
	}
}

func hitIDs(hits []Hit) map[uint32]bool {
	ids := make(map[uint32]bool, len(hits))
	for _, h := range hits {
		if h.Object != nil {
			ids[h.Object.Base().ID()] = true
		}
	}
	return ids
}
