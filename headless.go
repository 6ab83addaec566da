package aspen

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gogpu/gg"
)

// SoftRenderer rasterizes the pipeline's output on the CPU. It is the
// default for FixedSurface mounts, so headless programs and tests render
// without a window or GPU, and its frames can be saved as screenshots.
//
// Triangles fill flat, with the three vertex shades averaged; textures
// contribute nothing beyond the material color. SetTarget is accepted but
// ignored: the output lives in Image.
type SoftRenderer struct {
	pipeline

	w, h       int
	ratio      float64
	clearColor Color
	autoClear  bool

	dc *gg.Context
}

func NewSoftRenderer() *SoftRenderer {
	return &SoftRenderer{ratio: 1, autoClear: true}
}

func (r *SoftRenderer) SetSize(w, h int) {
	if w == r.w && h == r.h {
		return
	}
	r.w, r.h = w, h
	r.dc = nil
}

func (r *SoftRenderer) SetPixelRatio(ratio float64) { r.ratio = ratio }

func (r *SoftRenderer) SetClearColor(c Color) { r.clearColor = c }

func (r *SoftRenderer) SetAutoClear(on bool) { r.autoClear = on }

func (r *SoftRenderer) AutoClear() bool { return r.autoClear }

func (r *SoftRenderer) SetTarget(t *RenderTarget) {}

func (r *SoftRenderer) Render(scene Object, cam *Camera) {
	if r.w <= 0 || r.h <= 0 {
		return
	}
	if r.dc == nil {
		r.dc = gg.NewContext(r.w, r.h)
	}
	if r.autoClear {
		c := r.clearColor.Clamp()
		r.dc.SetRGB(float64(c.R), float64(c.G), float64(c.B))
		r.dc.Clear()
	}

	tris := r.build(scene, cam, float32(r.w), float32(r.h))
	for i := range tris {
		t := &tris[i]
		c := Color{
			R: (t.colors[0].R + t.colors[1].R + t.colors[2].R) / 3,
			G: (t.colors[0].G + t.colors[1].G + t.colors[2].G) / 3,
			B: (t.colors[0].B + t.colors[1].B + t.colors[2].B) / 3,
		}.Clamp()
		r.dc.SetRGBA(float64(c.R), float64(c.G), float64(c.B), float64(t.alpha))
		r.dc.MoveTo(float64(t.sx[0]), float64(t.sy[0]))
		r.dc.LineTo(float64(t.sx[1]), float64(t.sy[1]))
		r.dc.LineTo(float64(t.sx[2]), float64(t.sy[2]))
		r.dc.ClosePath()
		if t.wireframe {
			r.dc.SetLineWidth(1)
			r.dc.Stroke()
		} else {
			r.dc.Fill()
		}
	}
}

// Image returns the last rendered frame, or nil before the first Render.
func (r *SoftRenderer) Image() image.Image {
	if r.dc == nil {
		return nil
	}
	return r.dc.Image()
}

// PixelAt samples the last rendered frame in pixel coordinates.
func (r *SoftRenderer) PixelAt(x, y int) (red, green, blue, alpha uint8) {
	img := r.Image()
	if img == nil {
		return 0, 0, 0, 0
	}
	cr, cg, cb, ca := img.At(x, y).RGBA()
	return uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), uint8(ca >> 8)
}

// SavePNG writes the last rendered frame to path.
func (r *SoftRenderer) SavePNG(path string) error {
	img := r.Image()
	if img == nil {
		return fmt.Errorf("aspen: nothing rendered yet")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func (r *SoftRenderer) Dispose() {
	r.dc = nil
}
