package aspen

// Color is an RGB color with components in [0, 1]. Alpha lives on the
// material's Opacity field; colors themselves are opaque.
type Color struct {
	R, G, B float32
}

// ColorWhite is the default material color.
var ColorWhite = Color{1, 1, 1}

// Scale returns the color with each component multiplied by k.
func (c Color) Scale(k float32) Color {
	return Color{c.R * k, c.G * k, c.B * k}
}

// Add returns the component-wise sum of c and o.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Clamp returns the color with each component limited to [0, 1].
func (c Color) Clamp() Color {
	clamp := func(v float32) float32 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	}
	return Color{clamp(c.R), clamp(c.G), clamp(c.B)}
}

// RGBA8 returns the color as 8-bit channels with full alpha.
func (c Color) RGBA8() (r, g, b, a uint8) {
	cc := c.Clamp()
	return uint8(cc.R*255 + 0.5), uint8(cc.G*255 + 0.5), uint8(cc.B*255 + 0.5), 255
}

// EventKind identifies a kind of pointer interaction event.
type EventKind uint8

const (
	EventPointerOver EventKind = iota // fires when a hit object gains hover
	EventPointerOut                   // fires when a hovered object is no longer reachable
	EventPointerMove                  // fires on pointer movement over a hit object
	EventPointerDown                  // fires when a pointer button is pressed over a hit object
	EventPointerUp                    // fires when a pointer button is released
	EventClick                        // fires on press then release over the same object
	EventWheel                        // fires on wheel input over a hit object
)

// String returns the handler-style name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventPointerOver:
		return "pointerOver"
	case EventPointerOut:
		return "pointerOut"
	case EventPointerMove:
		return "pointerMove"
	case EventPointerDown:
		return "pointerDown"
	case EventPointerUp:
		return "pointerUp"
	case EventClick:
		return "click"
	case EventWheel:
		return "wheel"
	default:
		return "unknown"
	}
}

// Propagation is the result returned by an event handler. Returning
// StopPropagation halts dispatch to hits farther from the camera.
type Propagation uint8

const (
	Continue        Propagation = iota // keep dispatching to farther hits
	StopPropagation                    // halt dispatch for this event
)

// Handler is a per-object event callback. The returned Propagation controls
// whether farther hits still receive the event.
type Handler func(Event) Propagation

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Frameloop selects how the scheduler drives rendering.
type Frameloop uint8

const (
	FrameloopAlways Frameloop = iota // render every display refresh
	FrameloopDemand                  // render only after Invalidate
	FrameloopNever                   // render only via explicit Advance
)

// FrameFunc is a per-frame subscriber callback. dt is the elapsed time in
// seconds since the previous tick.
type FrameFunc func(st *State, dt float64)
