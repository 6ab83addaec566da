package aspen

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Renderer draws a scene from a camera's point of view. Implementations
// follow the single-threaded tick discipline.
type Renderer interface {
	// SetSize sets the output size in pixels.
	SetSize(w, h int)
	// SetPixelRatio records the scale from logical points to pixels.
	SetPixelRatio(r float64)
	// SetClearColor sets the background used when auto-clear is on.
	SetClearColor(c Color)
	// SetAutoClear controls whether Render clears first. Multi-pass
	// compositing turns this off and clears once itself: the first pass
	// clears, later passes draw on top.
	SetAutoClear(on bool)
	AutoClear() bool
	// SetTarget redirects rendering into an offscreen target; nil restores
	// the surface.
	SetTarget(t *RenderTarget)
	// Render draws one frame.
	Render(scene Object, cam *Camera)
	Dispose()
}

// whitePixel is the shared 1x1 source for untextured triangles, cut from
// the center of a 3x3 so sampling never bleeds the edge
// (no sync.Once; render runs single-threaded).
var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whitePixel = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whitePixel
}

// EbitenRenderer draws the pipeline's output with DrawTriangles. The host
// hands it the frame's screen image; an explicit target overrides that for
// offscreen passes.
type EbitenRenderer struct {
	pipeline

	screen *ebiten.Image
	target *RenderTarget

	w, h       int
	ratio      float64
	clearColor Color
	autoClear  bool

	verts []ebiten.Vertex
	inds  []uint16
}

func NewEbitenRenderer() *EbitenRenderer {
	return &EbitenRenderer{ratio: 1, autoClear: true}
}

func (r *EbitenRenderer) SetSize(w, h int) { r.w, r.h = w, h }

func (r *EbitenRenderer) SetPixelRatio(ratio float64) { r.ratio = ratio }

func (r *EbitenRenderer) SetClearColor(c Color) { r.clearColor = c }

func (r *EbitenRenderer) SetAutoClear(on bool) { r.autoClear = on }

func (r *EbitenRenderer) AutoClear() bool { return r.autoClear }

func (r *EbitenRenderer) SetTarget(t *RenderTarget) { r.target = t }

// Screen returns the frame's screen image. It is only valid inside a frame
// under Run; priority subscribers use it to composite render targets after
// their own Render calls.
func (r *EbitenRenderer) Screen() *ebiten.Image { return r.screen }

// setScreen binds the frame's screen image. The host calls this at the top
// of every draw.
func (r *EbitenRenderer) setScreen(img *ebiten.Image) { r.screen = img }

func (r *EbitenRenderer) dst() *ebiten.Image {
	if r.target != nil {
		return r.target.image()
	}
	return r.screen
}

func (r *EbitenRenderer) Render(scene Object, cam *Camera) {
	dst := r.dst()
	if dst == nil {
		return
	}
	w, h := r.w, r.h
	if w <= 0 || h <= 0 {
		b := dst.Bounds()
		w, h = b.Dx(), b.Dy()
	}
	if r.autoClear {
		cr, cg, cb, ca := r.clearColor.RGBA8()
		dst.Fill(color.RGBA{R: cr, G: cg, B: cb, A: ca})
	}

	tris := r.build(scene, cam, float32(w), float32(h))

	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	var batchTex *Texture
	for i := range tris {
		t := &tris[i]
		if t.wireframe {
			r.flush(dst, batchTex)
			batchTex = nil
			strokeTri(dst, t)
			continue
		}
		if t.tex != batchTex || len(r.verts)+3 > 0xffff {
			r.flush(dst, batchTex)
			batchTex = t.tex
		}
		base := uint16(len(r.verts))
		for k := 0; k < 3; k++ {
			c := t.colors[k]
			sx, sy := t.u[k], t.v[k]
			if t.tex == nil {
				sx, sy = 1, 1
			}
			r.verts = append(r.verts, ebiten.Vertex{
				DstX: t.sx[k],
				DstY: t.sy[k],
				SrcX: sx,
				SrcY: sy,
				// Premultiplied, the DrawTriangles default.
				ColorR: c.R * t.alpha,
				ColorG: c.G * t.alpha,
				ColorB: c.B * t.alpha,
				ColorA: t.alpha,
			})
		}
		r.inds = append(r.inds, base, base+1, base+2)
	}
	r.flush(dst, batchTex)
}

func (r *EbitenRenderer) flush(dst *ebiten.Image, tex *Texture) {
	if len(r.inds) == 0 {
		return
	}
	img := ensureWhitePixel()
	if tex != nil {
		if g := tex.gpuImage(); g != nil {
			img = g
		}
	}
	var op ebiten.DrawTrianglesOptions
	dst.DrawTriangles(r.verts, r.inds, img, &op)
	r.stats.DrawCalls++
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
}

func strokeTri(dst *ebiten.Image, t *renderTri) {
	c := t.colors[0]
	col := color.RGBA{
		R: uint8(c.R * t.alpha * 255),
		G: uint8(c.G * t.alpha * 255),
		B: uint8(c.B * t.alpha * 255),
		A: uint8(t.alpha * 255),
	}
	for k := 0; k < 3; k++ {
		n := (k + 1) % 3
		vector.StrokeLine(dst, t.sx[k], t.sy[k], t.sx[n], t.sy[n], 1, col, true)
	}
}

func (r *EbitenRenderer) Dispose() {
	r.screen = nil
	r.target = nil
	r.verts = nil
	r.inds = nil
}
