package aspen

import (
	"sync"

	"github.com/aspen3d/aspen/vmath"
)

// loopPhase tracks where the scheduler is in its redraw cycle.
type loopPhase uint8

const (
	phaseIdle    loopPhase = iota // no frame requested
	phasePending                  // a frame is due on the next tick
	phaseRunning                  // inside a tick right now
)

// subscriber is one registered frame callback.
type subscriber struct {
	fn       FrameFunc
	priority int
	active   bool
}

// CallbackHandle unregisters a subscription. Remove is idempotent and
// takes effect on the next tick; the current tick's snapshot still skips
// the callback through its active flag.
type CallbackHandle struct {
	remove func()
}

func (h *CallbackHandle) Remove() {
	if h != nil && h.remove != nil {
		h.remove()
		h.remove = nil
	}
}

// State is the runtime surface of one mount: the scheduler, the clock,
// sizing, and accessors for the scene, camera, and renderer. Frame
// callbacks receive it every tick. All methods follow the single-threaded
// tick discipline; only the loader crosses goroutines, and it hands
// results back through the tick.
type State struct {
	root *Root

	w, h  int
	ratio float64
	ready bool

	elapsed float64

	phase        loopPhase
	pendingAgain bool
	subs         []*subscriber
	// renderPriorityCount is the number of live non-zero priorities; any
	// of them suppresses the default render.
	renderPriorityCount int

	perfCurrent float64
	perfUntil   float64

	pointers [maxPointers]pointerState
	// injected synthetic pointer events, drained one per tick.
	injected []PointerEvent

	// completed is the only cross-goroutine surface: loader goroutines
	// append, the tick drains.
	completedMu sync.Mutex
	completed   []func()

	resources map[string]any

	sink EventSink

	dead bool
}

func newState(rt *Root) *State {
	return &State{root: rt, ratio: 1, perfCurrent: 1}
}

// --- Accessors ---

// Scene returns the mount's root group. Children added here imperatively
// coexist with bridge-managed ones.
func (st *State) Scene() *Group { return st.root.scene }

// Camera returns the active camera.
func (st *State) Camera() *Camera { return st.root.camera }

// Renderer returns the mount's renderer.
func (st *State) Renderer() Renderer { return st.root.renderer }

// Surface returns the mount's surface.
func (st *State) Surface() Surface { return st.root.surface }

// Size returns the logical size in points.
func (st *State) Size() (w, h int) { return st.w, st.h }

// Viewport returns the render size in pixels, after pixel ratio and
// performance scaling.
func (st *State) Viewport() (w, h int) {
	scale := st.ratio * st.perfCurrent
	return int(float64(st.w) * scale), int(float64(st.h) * scale)
}

// PixelRatio returns the resolved device ratio, before performance scaling.
func (st *State) PixelRatio() float64 { return st.ratio }

// Ready reports whether the surface has ever had a nonzero size. It
// latches true and stays true.
func (st *State) Ready() bool { return st.ready }

// Elapsed returns seconds of tick time since mount.
func (st *State) Elapsed() float64 { return st.elapsed }

// Frameloop returns the current scheduling mode.
func (st *State) Frameloop() Frameloop { return st.root.cfg.frameloop }

// SetEventSink installs a sink that observes every dispatched pointer
// event, independent of per-object handlers. Passing nil removes it.
func (st *State) SetEventSink(sink EventSink) { st.sink = sink }

// SetFrameloop switches scheduling modes at runtime.
func (st *State) SetFrameloop(f Frameloop) {
	st.root.cfg.frameloop = f
	if f == FrameloopAlways {
		st.Invalidate()
	}
}

// --- Scheduling ---

// Invalidate requests a frame. Requests coalesce: any number of calls
// between ticks produce one frame, and calls during a tick produce exactly
// one more. In always mode frames happen regardless, and in never mode
// only Advance renders.
func (st *State) Invalidate() {
	switch st.phase {
	case phaseRunning:
		st.pendingAgain = true
	case phaseIdle:
		st.phase = phasePending
	}
}

// Subscribe registers a frame callback. Callbacks run every rendered frame
// in ascending priority; equal priorities run in subscription order. Any
// subscriber with a non-zero priority suppresses the default render, and
// takes over calling RenderFrame itself. When several subscribers render,
// the scheduler does not arbitrate compositing: a later subscriber draws
// over an earlier one's output unless it clears first, so each controls
// the renderer's auto-clear for its own pass.
func (st *State) Subscribe(fn FrameFunc, priority int) *CallbackHandle {
	if fn == nil {
		panic("aspen: Subscribe requires a callback")
	}
	s := &subscriber{fn: fn, priority: priority, active: true}
	idx := len(st.subs)
	for i, e := range st.subs {
		if e.priority > priority {
			idx = i
			break
		}
	}
	st.subs = append(st.subs, nil)
	copy(st.subs[idx+1:], st.subs[idx:])
	st.subs[idx] = s
	if priority != 0 {
		st.renderPriorityCount++
	}
	return &CallbackHandle{remove: func() {
		if !s.active {
			return
		}
		s.active = false
		for i, e := range st.subs {
			if e == s {
				copy(st.subs[i:], st.subs[i+1:])
				st.subs[len(st.subs)-1] = nil
				st.subs = st.subs[:len(st.subs)-1]
				break
			}
		}
		if s.priority != 0 {
			st.renderPriorityCount--
		}
	}}
}

// Advance runs one tick and renders, regardless of frameloop mode. This is
// the frame source for never mode and for headless mounts.
func (st *State) Advance(dt float64) {
	st.tick(dt, true)
}

// tick runs one frame: pending async completions, camera animation,
// subscribers in priority order, world matrix refresh, then the default
// render unless a priority subscriber owns rendering. force renders even
// without a pending request.
func (st *State) tick(dt float64, force bool) {
	if st.dead || !st.ready {
		return
	}
	st.elapsed += dt
	st.drainCompleted()
	st.drainInjected()

	if st.root.camera.update(float32(dt)) {
		st.Invalidate()
	}
	if st.perfCurrent < 1 && st.elapsed >= st.perfUntil {
		st.perfCurrent = 1
		st.applyViewport()
	}

	render := force
	switch st.root.cfg.frameloop {
	case FrameloopAlways:
		render = true
	case FrameloopDemand:
		if st.phase == phasePending {
			render = true
		}
	case FrameloopNever:
		// only Advance renders
	}
	if !render {
		return
	}

	st.phase = phaseRunning
	st.pendingAgain = false

	snapshot := append([]*subscriber(nil), st.subs...)
	for _, s := range snapshot {
		if s.active {
			s.fn(st, dt)
		}
	}

	updateWorldTree(st.root.scene, vmath.Identity())

	if st.renderPriorityCount == 0 {
		st.RenderFrame()
	}

	if st.pendingAgain {
		st.phase = phasePending
	} else {
		st.phase = phaseIdle
	}
}

// RenderFrame renders the scene with the active camera. The scheduler
// calls this automatically unless a priority subscriber has taken over.
func (st *State) RenderFrame() {
	st.root.renderer.Render(st.root.scene, st.root.camera)
}

// drainCompleted runs callbacks queued from other goroutines, such as
// loader completions, on the tick.
func (st *State) drainCompleted() {
	st.completedMu.Lock()
	queue := st.completed
	st.completed = nil
	st.completedMu.Unlock()
	for _, fn := range queue {
		fn()
	}
}

// enqueue defers fn to a coming tick. Safe to call from any goroutine; fn
// itself runs on the tick.
func (st *State) enqueue(fn func()) {
	st.completedMu.Lock()
	st.completed = append(st.completed, fn)
	st.completedMu.Unlock()
}

// --- Performance ---

// Performance returns the current render scale factor, 1 when healthy.
func (st *State) Performance() float64 { return st.perfCurrent }

// Regress drops the render scale to the configured floor. The scale
// recovers after the debounce window of tick time passes without another
// Regress. Call it from expensive interactions to keep them responsive.
func (st *State) Regress() {
	st.perfUntil = st.elapsed + st.root.cfg.perfDebounce.Seconds()
	if st.perfCurrent != st.root.cfg.perfMin {
		st.perfCurrent = st.root.cfg.perfMin
		st.applyViewport()
	}
	st.Invalidate()
}

// --- Sizing ---

// setSize records a resolved surface size and reflows the renderer and
// active camera. The first nonzero size latches ready.
func (st *State) setSize(w, h int, deviceRatio float64) {
	st.w, st.h = w, h
	st.ratio = st.resolveRatio(deviceRatio)
	if w > 0 && h > 0 {
		st.ready = true
	}
	st.applyViewport()
	st.Invalidate()
}

func (st *State) resolveRatio(deviceRatio float64) float64 {
	cfg := st.root.cfg
	if cfg.pixelRatio > 0 {
		return cfg.pixelRatio
	}
	if deviceRatio <= 0 {
		deviceRatio = 1
	}
	if deviceRatio < cfg.minPixelRatio {
		return cfg.minPixelRatio
	}
	if deviceRatio > cfg.maxPixelRatio {
		return cfg.maxPixelRatio
	}
	return deviceRatio
}

func (st *State) applyViewport() {
	if st.w <= 0 || st.h <= 0 {
		return
	}
	pw, ph := st.Viewport()
	st.root.renderer.SetPixelRatio(st.ratio * st.perfCurrent)
	st.root.renderer.SetSize(pw, ph)
	st.root.camera.SetAspect(float32(st.w) / float32(st.h))
}

func (st *State) shutdown() {
	st.dead = true
	st.subs = nil
	st.renderPriorityCount = 0
	st.resources = nil
	st.sink = nil
	st.injected = nil
	st.completedMu.Lock()
	st.completed = nil
	st.completedMu.Unlock()
}
