package aspen

import (
	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/aspen3d/aspen/vmath"
)

// glideAnim holds active glide-to tweens for camera X, Y, and Z.
type glideAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	tweenZ *gween.Tween
	doneX  bool
	doneY  bool
	doneZ  bool
}

// projParams is the cache key for the projection matrix. The matrix is
// rebuilt whenever any of these change, so camera fields can be written
// directly without a dirty call.
type projParams struct {
	fov       float32
	aspect    float32
	near      float32
	far       float32
	zoom      float32
	orthoSize float32
	ortho     bool
}

// Camera projects the scene onto the viewport. One struct covers both
// projection modes; Orthographic selects which parameters apply.
type Camera struct {
	ObjectBase

	// Fov is the vertical field of view in degrees (perspective only).
	Fov float32
	// Near and Far bound the visible depth range.
	Near, Far float32
	// Zoom scales the frustum: >1 zooms in, <1 zooms out.
	Zoom float32
	// Orthographic switches to a parallel projection.
	Orthographic bool
	// OrthoSize is the half-height of the visible area in world units at
	// zoom 1 (orthographic only).
	OrthoSize float32

	aspect float32

	proj      vmath.Matrix4
	projFor   projParams
	projValid bool

	lookTarget *vmath.Vector3

	glideTween *glideAnim
}

// NewPerspectiveCamera creates a perspective camera with a 75 degree field
// of view and a 0.1 to 1000 depth range.
func NewPerspectiveCamera(name string) *Camera {
	c := &Camera{Fov: 75, Near: 0.1, Far: 1000, Zoom: 1, aspect: 1}
	initBase(&c.ObjectBase, c, "perspectiveCamera")
	c.Name = name
	return c
}

// NewOrthographicCamera creates an orthographic camera showing 10 world
// units of height at zoom 1.
func NewOrthographicCamera(name string) *Camera {
	c := &Camera{Near: 0.1, Far: 1000, Zoom: 1, Orthographic: true, OrthoSize: 5, aspect: 1}
	initBase(&c.ObjectBase, c, "orthographicCamera")
	c.Name = name
	return c
}

// SetAspect sets the viewport width/height ratio. Mounts call this on every
// resize; set it manually only when driving a camera standalone.
func (c *Camera) SetAspect(aspect float32) {
	if aspect > 0 {
		c.aspect = aspect
	}
}

// Aspect returns the current width/height ratio.
func (c *Camera) Aspect() float32 { return c.aspect }

// ProjectionMatrix returns the projection for the current parameters,
// recomputing only when a parameter changed since the last call.
func (c *Camera) ProjectionMatrix() vmath.Matrix4 {
	p := projParams{
		fov:       c.Fov,
		aspect:    c.aspect,
		near:      c.Near,
		far:       c.Far,
		zoom:      c.Zoom,
		orthoSize: c.OrthoSize,
		ortho:     c.Orthographic,
	}
	if c.projValid && p == c.projFor {
		return c.proj
	}
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	if c.Orthographic {
		halfH := c.OrthoSize / zoom
		halfW := halfH * c.aspect
		c.proj = vmath.Orthographic(-halfW, halfW, halfH, -halfH, c.Near, c.Far)
	} else {
		// Zoom narrows the frustum the way a telephoto lens would.
		fov := vmath.RadToDeg(2 * math32.Atan(math32.Tan(vmath.DegToRad(c.Fov)/2)/zoom))
		c.proj = vmath.Perspective(fov, c.aspect, c.Near, c.Far)
	}
	c.projFor = p
	c.projValid = true
	return c.proj
}

// LookAt aims the camera at a world-space target. The view matrix tracks
// the target until ClearLookAt, overriding the camera's own rotation.
func (c *Camera) LookAt(target vmath.Vector3) {
	t := target
	c.lookTarget = &t
}

// ClearLookAt releases the look target; the view reverts to the camera's
// transform.
func (c *Camera) ClearLookAt() {
	c.lookTarget = nil
}

// currentWorld returns the camera's world matrix, recomposing in place when
// the camera is used standalone (no parent, so no tree pass refreshes it).
func (c *Camera) currentWorld() vmath.Matrix4 {
	if c.localDirty && c.parent == nil {
		c.local = vmath.Compose(c.Position, vmath.QuatEuler(c.Rotation), c.Scale)
		c.world = c.local
		c.localDirty = false
	}
	return c.world
}

// WorldPosition returns the camera's position in world space.
func (c *Camera) WorldPosition() vmath.Vector3 {
	w := c.currentWorld()
	return vmath.V3(w[12], w[13], w[14])
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() vmath.Matrix4 {
	w := c.currentWorld()
	if c.lookTarget != nil {
		return vmath.LookAt(vmath.V3(w[12], w[13], w[14]), *c.lookTarget, vmath.V3(0, 1, 0))
	}
	inv, ok := w.Inverse()
	if !ok {
		return vmath.Identity()
	}
	return inv
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() vmath.Matrix4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Unproject maps a normalized device coordinate back to world space.
func (c *Camera) Unproject(ndc vmath.Vector3) vmath.Vector3 {
	inv, ok := c.ViewProjection().Inverse()
	if !ok {
		return ndc
	}
	p, _ := ndc.Project(inv)
	return p
}

// ScreenRay builds a world-space picking ray through the given normalized
// device coordinate (x and y in [-1, 1], y up).
func (c *Camera) ScreenRay(ndcX, ndcY float32) vmath.Ray {
	if c.Orthographic {
		origin := c.Unproject(vmath.V3(ndcX, ndcY, (c.Near+c.Far)/(c.Near-c.Far)))
		dir := vmath.V3(0, 0, -1).MulMatrix4Dir(c.currentWorld()).Normal()
		if c.lookTarget != nil {
			dir = c.lookTarget.Sub(c.WorldPosition()).Normal()
		}
		return vmath.Ray{Origin: origin, Dir: dir}
	}
	origin := c.WorldPosition()
	dir := c.Unproject(vmath.V3(ndcX, ndcY, 0.5)).Sub(origin).Normal()
	return vmath.Ray{Origin: origin, Dir: dir}
}

// GlideTo animates the camera position to target over duration seconds.
// A glide already in progress is replaced.
func (c *Camera) GlideTo(target vmath.Vector3, duration float32, easeFn ease.TweenFunc) {
	c.glideTween = &glideAnim{
		tweenX: gween.New(c.Position.X, target.X, duration, easeFn),
		tweenY: gween.New(c.Position.Y, target.Y, duration, easeFn),
		tweenZ: gween.New(c.Position.Z, target.Z, duration, easeFn),
	}
}

// Gliding reports whether a GlideTo animation is in progress.
func (c *Camera) Gliding() bool { return c.glideTween != nil }

// update advances the glide animation. Returns true if the camera moved,
// so the mount can schedule another frame in demand mode.
func (c *Camera) update(dt float32) bool {
	if c.glideTween == nil {
		return false
	}
	g := c.glideTween
	if !g.doneX {
		val, done := g.tweenX.Update(dt)
		c.Position.X = val
		g.doneX = done
	}
	if !g.doneY {
		val, done := g.tweenY.Update(dt)
		c.Position.Y = val
		g.doneY = done
	}
	if !g.doneZ {
		val, done := g.tweenZ.Update(dt)
		c.Position.Z = val
		g.doneZ = done
	}
	if g.doneX && g.doneY && g.doneZ {
		c.glideTween = nil
	}
	c.MarkDirty()
	return true
}
