package aspen

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunConfig configures the window Run opens.
type RunConfig struct {
	Title     string
	Width     int // initial window width in points, 800 when zero
	Height    int // initial window height in points, 600 when zero
	Resizable bool
	// ShowStats overlays frame timing and pipeline counters in the top
	// left corner.
	ShowStats bool
}

// Run opens a window for a mounted surface and drives its mount until the
// window closes or the mount unmounts. Render or RenderFunc must have
// mounted on the surface first.
//
// The screen is not cleared between frames; the renderer clears when it
// draws. That is what lets demand and never mode skip frames and keep the
// previous image on screen.
func Run(surface *WindowSurface, cfg RunConfig) error {
	mountsMu.Lock()
	rt := mounts[surface]
	mountsMu.Unlock()
	if rt == nil {
		return fmt.Errorf("aspen: surface is not mounted, call Render first")
	}

	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 600
	}
	ebiten.SetWindowSize(w, h)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetScreenClearedEveryFrame(false)

	return ebiten.RunGame(&gameHost{
		rt:        rt,
		surface:   surface,
		last:      time.Now(),
		showStats: cfg.ShowStats,
	})
}

// gameHost adapts one mount to the ebiten game loop: Layout feeds sizes,
// Update polls input and settles debounced resizes, Draw runs the tick.
type gameHost struct {
	rt      *Root
	surface *WindowSurface
	last    time.Time
	dtAccum float64

	resizePending bool
	resizeAt      time.Time
	pendingW      int
	pendingH      int
	pendingRatio  float64
	appliedW      int
	appliedH      int
	appliedRatio  float64

	lastX, lastY float64
	touchIDs     []ebiten.TouchID
	touchSlots   map[ebiten.TouchID]int

	showStats  bool
	statsImg   *ebiten.Image
	statsClock float64
}

func (g *gameHost) Layout(ow, oh int) (int, int) {
	ratio := ebiten.Monitor().DeviceScaleFactor()
	g.surface.w, g.surface.h, g.surface.ratio = ow, oh, ratio

	st := g.rt.state
	switch {
	case !st.ready:
		// First nonzero size applies immediately and latches ready.
		if ow > 0 && oh > 0 {
			g.applySize(ow, oh, ratio)
			g.rt.maybeFireCreated()
		}
	case ow != g.appliedW || oh != g.appliedH || ratio != g.appliedRatio:
		if g.rt.cfg.resizeDebounce <= 0 {
			g.applySize(ow, oh, ratio)
		} else if !g.resizePending || ow != g.pendingW || oh != g.pendingH || ratio != g.pendingRatio {
			g.resizePending = true
			g.resizeAt = time.Now().Add(g.rt.cfg.resizeDebounce)
			g.pendingW, g.pendingH, g.pendingRatio = ow, oh, ratio
		}
	}

	vw, vh := st.Viewport()
	return max(vw, 1), max(vh, 1)
}

func (g *gameHost) applySize(w, h int, ratio float64) {
	g.appliedW, g.appliedH, g.appliedRatio = w, h, ratio
	g.rt.state.setSize(w, h, ratio)
}

func (g *gameHost) Update() error {
	now := time.Now()
	dt := now.Sub(g.last).Seconds()
	g.last = now
	if dt < 0 {
		dt = 0
	}
	if dt > 0.25 {
		dt = 0.25
	}
	g.dtAccum += dt

	if g.resizePending && !now.Before(g.resizeAt) {
		g.resizePending = false
		g.applySize(g.pendingW, g.pendingH, g.pendingRatio)
	}

	g.pollInput()

	if g.rt.dead {
		return ebiten.Termination
	}
	return nil
}

func (g *gameHost) Draw(screen *ebiten.Image) {
	if er, ok := g.rt.renderer.(*EbitenRenderer); ok {
		er.setScreen(screen)
	}
	dt := g.dtAccum
	g.dtAccum = 0
	g.rt.state.tick(dt, false)
	if g.showStats {
		g.drawStats(screen, dt)
	}
}

const statsRefresh = 0.5

// drawStats refreshes the overlay text every half second and blits it every
// frame, so demand mode keeps a readable readout between renders.
func (g *gameHost) drawStats(screen *ebiten.Image, dt float64) {
	if g.statsImg == nil {
		g.statsImg = ebiten.NewImage(168, 48)
		g.statsClock = statsRefresh
	}
	g.statsClock += dt
	if g.statsClock >= statsRefresh {
		g.statsClock = 0
		s := g.rt.Stats()
		g.statsImg.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(g.statsImg, fmt.Sprintf(
			"FPS %.1f  TPS %.1f\ntris %d  meshes %d  lights %d\ndraws %d  build %v  sort %v",
			ebiten.ActualFPS(), ebiten.ActualTPS(),
			s.Triangles, s.Meshes, s.Lights,
			s.DrawCalls, s.Build.Round(time.Microsecond), s.Sort.Round(time.Microsecond)))
	}
	screen.DrawImage(g.statsImg, nil)
}

// hostButtons pairs ebiten's buttons with ours, in dispatch order.
var hostButtons = [...]struct {
	eb  ebiten.MouseButton
	btn MouseButton
}{
	{ebiten.MouseButtonLeft, MouseButtonLeft},
	{ebiten.MouseButtonRight, MouseButtonRight},
	{ebiten.MouseButtonMiddle, MouseButtonMiddle},
}

func (g *gameHost) pollInput() {
	st := g.rt.state
	if g.rt.cfg.noEvents || !st.ready {
		return
	}

	// Cursor arrives in viewport pixels; events speak logical points.
	scale := st.ratio * st.perfCurrent
	if scale <= 0 {
		scale = 1
	}
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx)/scale, float64(cy)/scale
	mods := currentMods()

	if x != g.lastX || y != g.lastY {
		g.lastX, g.lastY = x, y
		st.DispatchPointer(PointerEvent{Kind: EventPointerMove, X: x, Y: y, Mods: mods})
	}
	for _, hb := range hostButtons {
		if inpututil.IsMouseButtonJustPressed(hb.eb) {
			st.DispatchPointer(PointerEvent{Kind: EventPointerDown, X: x, Y: y, Button: hb.btn, Mods: mods})
		}
		if inpututil.IsMouseButtonJustReleased(hb.eb) {
			st.DispatchPointer(PointerEvent{Kind: EventPointerUp, X: x, Y: y, Button: hb.btn, Mods: mods})
		}
	}
	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		st.DispatchPointer(PointerEvent{Kind: EventWheel, X: x, Y: y, WheelX: wx, WheelY: wy, Mods: mods})
	}

	g.pollTouches(st, scale, mods)
}

// pollTouches maps ebiten touch IDs onto pointer slots 1..maxPointers-1;
// slot 0 stays the mouse.
func (g *gameHost) pollTouches(st *State, scale float64, mods KeyModifiers) {
	if g.touchSlots == nil {
		g.touchSlots = make(map[ebiten.TouchID]int)
	}

	g.touchIDs = inpututil.AppendJustPressedTouchIDs(g.touchIDs[:0])
	for _, id := range g.touchIDs {
		slot := g.freeTouchSlot()
		if slot < 0 {
			continue
		}
		g.touchSlots[id] = slot
		tx, ty := ebiten.TouchPosition(id)
		st.DispatchPointer(PointerEvent{
			Kind: EventPointerDown,
			X:    float64(tx) / scale, Y: float64(ty) / scale,
			Mods: mods, PointerID: slot,
		})
	}

	for id, slot := range g.touchSlots {
		if inpututil.IsTouchJustReleased(id) {
			tx, ty := inpututil.TouchPositionInPreviousTick(id)
			st.DispatchPointer(PointerEvent{
				Kind: EventPointerUp,
				X:    float64(tx) / scale, Y: float64(ty) / scale,
				Mods: mods, PointerID: slot,
			})
			delete(g.touchSlots, id)
			continue
		}
		tx, ty := ebiten.TouchPosition(id)
		px, py := inpututil.TouchPositionInPreviousTick(id)
		if tx != px || ty != py {
			st.DispatchPointer(PointerEvent{
				Kind: EventPointerMove,
				X:    float64(tx) / scale, Y: float64(ty) / scale,
				Mods: mods, PointerID: slot,
			})
		}
	}
}

func (g *gameHost) freeTouchSlot() int {
	for slot := 1; slot < maxPointers; slot++ {
		taken := false
		for _, s := range g.touchSlots {
			if s == slot {
				taken = true
				break
			}
		}
		if !taken {
			return slot
		}
	}
	return -1
}

func currentMods() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}
