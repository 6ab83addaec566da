package aspen

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/aspen3d/aspen/vmath"
)

// TweenGroup animates up to 4 float32 fields on a scene object
// simultaneously. Create one via the convenience constructors (TweenPosition,
// TweenRotation, TweenScale, TweenColor, TweenOpacity) and call Update(dt)
// each frame, typically from a Subscribe callback. The group writes values
// directly and marks the target dirty. If the target is disposed, the group
// stops immediately.
//
// There is no global animation manager; callers drive their own groups. In
// demand mode, invalidate after Update as with any other mutation.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float32
	target Object
	Done   bool
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. If the target object has been disposed, Done is set to true and no
// writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}

	if g.target != nil && g.target.Base().IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = val
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.target != nil {
		g.target.Base().MarkDirty()
	}
}

// TweenPosition creates a TweenGroup that animates obj's local position to
// the given point over the specified duration using the easing function.
func TweenPosition(obj Object, to vmath.Vector3, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := obj.Base()
	g := &TweenGroup{count: 3, target: obj}
	g.tweens[0] = gween.New(b.Position.X, to.X, duration, fn)
	g.tweens[1] = gween.New(b.Position.Y, to.Y, duration, fn)
	g.tweens[2] = gween.New(b.Position.Z, to.Z, duration, fn)
	g.fields[0] = &b.Position.X
	g.fields[1] = &b.Position.Y
	g.fields[2] = &b.Position.Z
	return g
}

// TweenRotation creates a TweenGroup that animates obj's local Euler rotation
// (radians) to the given angles over the specified duration.
func TweenRotation(obj Object, to vmath.Vector3, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := obj.Base()
	g := &TweenGroup{count: 3, target: obj}
	g.tweens[0] = gween.New(b.Rotation.X, to.X, duration, fn)
	g.tweens[1] = gween.New(b.Rotation.Y, to.Y, duration, fn)
	g.tweens[2] = gween.New(b.Rotation.Z, to.Z, duration, fn)
	g.fields[0] = &b.Rotation.X
	g.fields[1] = &b.Rotation.Y
	g.fields[2] = &b.Rotation.Z
	return g
}

// TweenScale creates a TweenGroup that animates obj's local scale to the
// given factors over the specified duration.
func TweenScale(obj Object, to vmath.Vector3, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := obj.Base()
	g := &TweenGroup{count: 3, target: obj}
	g.tweens[0] = gween.New(b.Scale.X, to.X, duration, fn)
	g.tweens[1] = gween.New(b.Scale.Y, to.Y, duration, fn)
	g.tweens[2] = gween.New(b.Scale.Z, to.Z, duration, fn)
	g.fields[0] = &b.Scale.X
	g.fields[1] = &b.Scale.Y
	g.fields[2] = &b.Scale.Z
	return g
}

// TweenColor creates a TweenGroup that animates all three channels of a
// material's color to the target color over the specified duration.
func TweenColor(m *Material, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 3, target: m}
	g.tweens[0] = gween.New(m.Color.R, to.R, duration, fn)
	g.tweens[1] = gween.New(m.Color.G, to.G, duration, fn)
	g.tweens[2] = gween.New(m.Color.B, to.B, duration, fn)
	g.fields[0] = &m.Color.R
	g.fields[1] = &m.Color.G
	g.fields[2] = &m.Color.B
	return g
}

// TweenOpacity creates a TweenGroup that animates a material's opacity to the
// target value over the specified duration.
func TweenOpacity(m *Material, to float32, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: m}
	g.tweens[0] = gween.New(m.Opacity, to, duration, fn)
	g.fields[0] = &m.Opacity
	return g
}
