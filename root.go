package aspen

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aspen3d/aspen/vmath"
)

// Surface identifies a mount target and reports its logical size. A mount
// stays dormant until the surface reports a nonzero size, then latches
// ready and stays ready through later zero-size reports.
type Surface interface {
	// SurfaceSize returns the logical size in points. Zero means the
	// surface has not been laid out yet.
	SurfaceSize() (w, h int)
	// PixelRatio returns the device scale factor.
	PixelRatio() float64
}

// WindowSurface is the surface for an OS window. The host fills in the
// size on layout; until then it reports zero.
type WindowSurface struct {
	w, h  int
	ratio float64
}

// NewWindowSurface creates a surface to pass to Render and then Run.
func NewWindowSurface() *WindowSurface {
	return &WindowSurface{ratio: 1}
}

func (s *WindowSurface) SurfaceSize() (w, h int) { return s.w, s.h }
func (s *WindowSurface) PixelRatio() float64     { return s.ratio }

func (s *WindowSurface) defaultRenderer() Renderer { return NewEbitenRenderer() }

// FixedSurface is a surface with a fixed logical size, for offscreen and
// test mounts. Scale zero means 1.
type FixedSurface struct {
	W, H  int
	Scale float64
}

// NewFixedSurface creates a ready surface of the given logical size.
func NewFixedSurface(w, h int) *FixedSurface {
	return &FixedSurface{W: w, H: h, Scale: 1}
}

func (s *FixedSurface) SurfaceSize() (w, h int) { return s.W, s.H }

func (s *FixedSurface) PixelRatio() float64 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

func (s *FixedSurface) defaultRenderer() Renderer { return NewSoftRenderer() }

// --- Mount options ---

// CameraConfig describes the camera a mount creates for itself. The zero
// value means a perspective camera at (0, 0, 5) with a 75 degree field of
// view. A declared camera with makeDefault replaces it.
type CameraConfig struct {
	Orthographic bool
	Fov          float32
	Near, Far    float32
	Zoom         float32
	OrthoSize    float32
	Position     vmath.Vector3
	LookAt       *vmath.Vector3
}

type config struct {
	renderer       Renderer
	camera         CameraConfig
	frameloop      Frameloop
	pixelRatio     float64
	minPixelRatio  float64
	maxPixelRatio  float64
	perfMin        float64
	perfDebounce   time.Duration
	resizeDebounce time.Duration
	noEvents       bool
	shadows        bool
	background     *Color
	onCreated      func(*State)
	onError        func(error)
	logger         *zap.Logger
}

func defaultConfig() config {
	return config{
		frameloop:      FrameloopAlways,
		minPixelRatio:  1,
		maxPixelRatio:  2,
		perfMin:        0.5,
		perfDebounce:   200 * time.Millisecond,
		resizeDebounce: 100 * time.Millisecond,
	}
}

// Option configures a mount at Render time.
type Option func(*config)

// WithRenderer overrides the surface's default renderer.
func WithRenderer(r Renderer) Option { return func(c *config) { c.renderer = r } }

// WithCamera configures the mount's own camera.
func WithCamera(cam CameraConfig) Option { return func(c *config) { c.camera = cam } }

// WithFrameloop selects how frames are scheduled.
func WithFrameloop(f Frameloop) Option { return func(c *config) { c.frameloop = f } }

// WithPixelRatio fixes the render scale, ignoring the device ratio.
func WithPixelRatio(r float64) Option { return func(c *config) { c.pixelRatio = r } }

// WithPixelRatioRange clamps the device pixel ratio into [min, max].
// The default range is [1, 2].
func WithPixelRatioRange(min, max float64) Option {
	return func(c *config) { c.minPixelRatio, c.maxPixelRatio = min, max }
}

// WithPerformanceMin sets the render scale floor used while regressed.
func WithPerformanceMin(min float64) Option { return func(c *config) { c.perfMin = min } }

// WithResizeDebounce sets how long resizes settle before the renderer and
// cameras are updated. Zero applies resizes immediately.
func WithResizeDebounce(d time.Duration) Option {
	return func(c *config) { c.resizeDebounce = d }
}

// WithoutEvents disables pointer dispatch for this mount.
func WithoutEvents() Option { return func(c *config) { c.noEvents = true } }

// WithShadows requests shadow rendering. The hint reaches renderers that
// implement SetShadows(bool); both built-in renderers have no shadow
// machinery and ignore it.
func WithShadows() Option { return func(c *config) { c.shadows = true } }

// WithBackground sets the clear color.
func WithBackground(col Color) Option { return func(c *config) { c.background = &col } }

// WithOnCreated registers a callback that fires once, on the first tick
// after the mount has a nonzero size.
func WithOnCreated(fn func(*State)) Option { return func(c *config) { c.onCreated = fn } }

// WithOnError registers a callback for asynchronous mount errors, such as
// a failed rebuild after an asset load.
func WithOnError(fn func(error)) Option { return func(c *config) { c.onError = fn } }

// WithLogger sets the mount's logger. The default discards everything.
func WithLogger(lg *zap.Logger) Option { return func(c *config) { c.logger = lg } }

// --- Mount table ---

// mountsMu guards the table only; everything inside a Root follows the
// single-threaded tick discipline.
var (
	mountsMu sync.Mutex
	mounts   = map[Surface]*Root{}
)

// Root is the handle for one mounted tree on one surface.
type Root struct {
	surface Surface
	cfg     config
	lg      *zap.Logger

	scene     *Group
	ownCamera *Camera
	camera    *Camera
	renderer  Renderer

	build    func(*State) *Elem
	lastTree *Elem

	state *State

	createdFired bool
	dead         bool
}

// Render mounts the element tree on the surface. Rendering onto an
// already-mounted surface updates the existing mount and ignores opts.
func Render(el *Elem, surface Surface, opts ...Option) (*Root, error) {
	if el == nil {
		return nil, fmt.Errorf("aspen: Render requires an element")
	}
	mountsMu.Lock()
	rt, mounted := mounts[surface]
	mountsMu.Unlock()
	if mounted {
		if err := rt.Update(el); err != nil {
			return nil, err
		}
		return rt, nil
	}
	rt, err := newRoot(surface, opts)
	if err != nil {
		return nil, err
	}
	rt.lastTree = el
	if err := rt.commitChildren(rt.scene, []*Elem{el}); err != nil {
		rt.destroy()
		return nil, err
	}
	rt.finishMount()
	return rt, nil
}

// RenderFunc mounts a tree rebuilt from state on demand: once now, and
// again on every Refresh. Loader completions refresh automatically, so a
// build function picking resources off Resource slots re-runs as assets
// arrive.
func RenderFunc(build func(*State) *Elem, surface Surface, opts ...Option) (*Root, error) {
	if build == nil {
		return nil, fmt.Errorf("aspen: RenderFunc requires a build function")
	}
	mountsMu.Lock()
	_, mounted := mounts[surface]
	mountsMu.Unlock()
	if mounted {
		return nil, fmt.Errorf("aspen: surface already mounted")
	}
	rt, err := newRoot(surface, opts)
	if err != nil {
		return nil, err
	}
	rt.build = build
	tree := build(rt.state)
	if err := rt.commitChildren(rt.scene, treeSlice(tree)); err != nil {
		rt.destroy()
		return nil, err
	}
	rt.finishMount()
	return rt, nil
}

func treeSlice(tree *Elem) []*Elem {
	if tree == nil {
		return nil
	}
	return []*Elem{tree}
}

func newRoot(surface Surface, opts []Option) (*Root, error) {
	if surface == nil {
		return nil, fmt.Errorf("aspen: nil surface")
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	lg := cfg.logger
	if lg == nil {
		lg = zap.NewNop()
	}

	rt := &Root{surface: surface, cfg: cfg, lg: lg}
	rt.scene = NewGroup("scene")
	rt.ownCamera = cameraFromConfig(cfg.camera)
	rt.camera = rt.ownCamera

	rt.renderer = cfg.renderer
	if rt.renderer == nil {
		if d, ok := surface.(interface{ defaultRenderer() Renderer }); ok {
			rt.renderer = d.defaultRenderer()
		} else {
			rt.renderer = NewSoftRenderer()
		}
	}
	if cfg.background != nil {
		rt.renderer.SetClearColor(*cfg.background)
	}
	if s, ok := rt.renderer.(interface{ SetShadows(bool) }); ok {
		s.SetShadows(cfg.shadows)
	}

	rt.state = newState(rt)
	if w, h := surface.SurfaceSize(); w > 0 && h > 0 {
		rt.state.setSize(w, h, surface.PixelRatio())
	}
	return rt, nil
}

func cameraFromConfig(cc CameraConfig) *Camera {
	var cam *Camera
	if cc.Orthographic {
		cam = NewOrthographicCamera("defaultCamera")
		if cc.OrthoSize > 0 {
			cam.OrthoSize = cc.OrthoSize
		}
	} else {
		cam = NewPerspectiveCamera("defaultCamera")
		if cc.Fov > 0 {
			cam.Fov = cc.Fov
		}
	}
	if cc.Near > 0 {
		cam.Near = cc.Near
	}
	if cc.Far > 0 {
		cam.Far = cc.Far
	}
	if cc.Zoom > 0 {
		cam.Zoom = cc.Zoom
	}
	if cc.Position != (vmath.Vector3{}) {
		cam.SetPosition(cc.Position.X, cc.Position.Y, cc.Position.Z)
	} else {
		cam.SetPosition(0, 0, 5)
	}
	if cc.LookAt != nil {
		cam.LookAt(*cc.LookAt)
	}
	return cam
}

func (rt *Root) finishMount() {
	mountsMu.Lock()
	mounts[rt.surface] = rt
	mountsMu.Unlock()
	rt.state.Invalidate()
	rt.maybeFireCreated()
}

func (rt *Root) maybeFireCreated() {
	if rt.createdFired || !rt.state.Ready() {
		return
	}
	rt.createdFired = true
	if rt.cfg.onCreated != nil {
		rt.cfg.onCreated(rt.state)
	}
}

// State returns the mount's runtime state.
func (rt *Root) State() *State { return rt.state }

// Relayout re-reads the surface's size and pixel ratio. The window host
// does this automatically; hosts that drive a mount themselves call it
// after changing their surface.
func (rt *Root) Relayout() {
	if rt.dead {
		return
	}
	w, h := rt.surface.SurfaceSize()
	rt.state.setSize(w, h, rt.surface.PixelRatio())
}

// Update diffs a new tree against the mounted one. Panics on a RenderFunc
// mount; call Refresh there instead.
func (rt *Root) Update(el *Elem) error {
	if rt.build != nil {
		panic("aspen: Update on a RenderFunc mount, call Refresh")
	}
	if rt.dead {
		return fmt.Errorf("aspen: mount already unmounted")
	}
	rt.lastTree = el
	if err := rt.commitChildren(rt.scene, treeSlice(el)); err != nil {
		return err
	}
	rt.state.Invalidate()
	return nil
}

// Refresh rebuilds the tree. On a RenderFunc mount this re-runs the build
// function; on a Render mount it re-commits the last tree.
func (rt *Root) Refresh() error {
	if rt.dead {
		return fmt.Errorf("aspen: mount already unmounted")
	}
	tree := rt.lastTree
	if rt.build != nil {
		tree = rt.build(rt.state)
	}
	if err := rt.commitChildren(rt.scene, treeSlice(tree)); err != nil {
		return err
	}
	rt.state.Invalidate()
	return nil
}

// refreshAsync is the loader completion path: failures go to the error
// callback instead of a return value.
func (rt *Root) refreshAsync() {
	if err := rt.Refresh(); err != nil {
		rt.lg.Error("refresh failed", zap.Error(err))
		if rt.cfg.onError != nil {
			rt.cfg.onError(err)
		}
	}
}

// Unmount disposes the scene, the renderer, and the mount registration.
// Shared subtrees are detached alive; everything else is disposed.
func (rt *Root) Unmount() {
	if rt.dead {
		return
	}
	rt.destroy()
}

func (rt *Root) destroy() {
	rt.dead = true
	mountsMu.Lock()
	delete(mounts, rt.surface)
	mountsMu.Unlock()
	rt.state.shutdown()
	for _, c := range append([]Object(nil), rt.scene.children...) {
		disposeTree(c)
	}
	disposeTree(rt.scene)
	if rt.renderer != nil {
		rt.renderer.Dispose()
	}
}

// setCamera switches the active camera, used by makeDefault elements.
func (rt *Root) setCamera(cam *Camera) {
	if cam == nil || rt.camera == cam {
		return
	}
	rt.camera = cam
	if w, h := rt.state.Size(); w > 0 && h > 0 {
		cam.SetAspect(float32(w) / float32(h))
	}
	rt.state.Invalidate()
}

// Unmount tears down the mount on the given surface, if any.
func Unmount(surface Surface) {
	mountsMu.Lock()
	rt := mounts[surface]
	mountsMu.Unlock()
	if rt != nil {
		rt.Unmount()
	}
}

// StateFor returns the runtime state for a mounted surface.
func StateFor(surface Surface) (*State, bool) {
	mountsMu.Lock()
	rt := mounts[surface]
	mountsMu.Unlock()
	if rt == nil {
		return nil, false
	}
	return rt.state, true
}

// MustStateFor is StateFor that panics when the surface is not mounted.
func MustStateFor(surface Surface) *State {
	st, ok := StateFor(surface)
	if !ok {
		panic("aspen: surface is not mounted")
	}
	return st
}
