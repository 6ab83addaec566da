package aspen

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"
)

// Material controls how a mesh's faces are filled. One concrete type covers
// both registry tags: meshBasicMaterial renders unlit, meshLambertMaterial
// shades per face against the scene lights.
type Material struct {
	ObjectBase

	Color      Color
	Opacity    float32
	Wireframe  bool
	DoubleSide bool
	Shaded     bool
	Map        *Texture
}

func newMaterial(name, tag string, shaded bool) *Material {
	m := &Material{Color: ColorWhite, Opacity: 1, Shaded: shaded}
	initBase(&m.ObjectBase, m, tag)
	m.Name = name
	return m
}

// NewBasicMaterial creates an unlit material.
func NewBasicMaterial(name string) *Material {
	return newMaterial(name, "meshBasicMaterial", false)
}

// NewLambertMaterial creates a material shaded per face against the scene
// lights.
func NewLambertMaterial(name string) *Material {
	return newMaterial(name, "meshLambertMaterial", true)
}

func (m *Material) teardown() {
	if m.Map != nil {
		disposeTree(m.Map)
		m.Map = nil
	}
}

// --- Texture ---

// Texture is a decoded image resource. Textures produced by the loader are
// flagged Shared so the cache outlives any single mesh.
type Texture struct {
	ObjectBase

	pixels *image.RGBA
	gpu    *ebiten.Image // uploaded lazily on first textured draw
}

// NewTexture creates a texture from any decoded image, normalizing the
// pixels to RGBA.
func NewTexture(name string, src image.Image) *Texture {
	t := &Texture{}
	initBase(&t.ObjectBase, t, "texture")
	t.Name = name
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		t.pixels = rgba
		return t
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(rgba, rgba.Rect, src, b.Min, xdraw.Src)
	t.pixels = rgba
	return t
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (w, h int) {
	if t.pixels == nil {
		return 0, 0
	}
	return t.pixels.Rect.Dx(), t.pixels.Rect.Dy()
}

// Pixels returns the normalized RGBA pixels. The returned image MUST NOT be
// mutated after the texture has been drawn.
func (t *Texture) Pixels() *image.RGBA { return t.pixels }

// gpuImage returns the uploaded ebiten image, creating it on first use.
func (t *Texture) gpuImage() *ebiten.Image {
	if t.gpu == nil && t.pixels != nil {
		t.gpu = ebiten.NewImageFromImage(t.pixels)
	}
	return t.gpu
}

func (t *Texture) teardown() {
	if t.gpu != nil {
		t.gpu.Deallocate()
		t.gpu = nil
	}
	t.pixels = nil
}
