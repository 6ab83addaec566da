package aspen

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// RenderTarget is an offscreen render destination. Point a renderer at one
// with SetTarget to render a secondary view, then composite its Image
// however the frame needs.
type RenderTarget struct {
	w, h int
	img  *ebiten.Image
}

// NewRenderTarget creates a standalone target of the given pixel size.
func NewRenderTarget(w, h int) *RenderTarget {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &RenderTarget{w: w, h: h}
}

// Size returns the target's pixel size.
func (t *RenderTarget) Size() (w, h int) { return t.w, t.h }

// Image returns the backing image, allocating on first use.
func (t *RenderTarget) Image() *ebiten.Image { return t.image() }

func (t *RenderTarget) image() *ebiten.Image {
	if t.img == nil {
		t.img = ebiten.NewImageWithOptions(
			image.Rect(0, 0, t.w, t.h),
			&ebiten.NewImageOptions{Unmanaged: true},
		)
	}
	return t.img
}

// Dispose releases the backing image. The target can be reused; the image
// reallocates on next use.
func (t *RenderTarget) Dispose() {
	if t.img != nil {
		t.img.Deallocate()
		t.img = nil
	}
}

// --- Target pool ---

// TargetPool manages reusable render targets keyed by power-of-two
// dimensions. After warmup, Acquire/Release are zero-alloc.
type TargetPool struct {
	buckets map[uint64][]*RenderTarget
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared target with at least (w, h) pixels. Dimensions
// are rounded up to the next power of two.
func (p *TargetPool) Acquire(w, h int) *RenderTarget {
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			t := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			if t.img != nil {
				t.img.Clear()
			}
			return t
		}
	}

	return NewRenderTarget(pw, ph)
}

// Release returns a target to the pool for reuse. The image is cleared on
// the next Acquire, not here.
func (p *TargetPool) Release(t *RenderTarget) {
	if t == nil {
		return
	}
	key := poolKey(t.w, t.h)
	if p.buckets == nil {
		p.buckets = make(map[uint64][]*RenderTarget)
	}
	p.buckets[key] = append(p.buckets[key], t)
}

// Drain disposes every pooled target.
func (p *TargetPool) Drain() {
	for key, stack := range p.buckets {
		for _, t := range stack {
			t.Dispose()
		}
		delete(p.buckets, key)
	}
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
