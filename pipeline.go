package aspen

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/aspen3d/aspen/vmath"
)

// The pipeline turns a scene and camera into screen-space triangles ready
// for a backend: project, cull, shade per vertex, then depth-sort for
// painter's order. Both renderers share it, which keeps picking, the
// window backend, and the software backend agreeing on what is visible.

// renderTri is one projected triangle. Coordinates are in pixels, colors
// are shaded per vertex, z is the NDC depth used for sorting.
type renderTri struct {
	sx, sy    [3]float32
	u, v      [3]float32
	colors    [3]Color
	alpha     float32
	z         float32
	tex       *Texture
	wireframe bool
}

type dirLight struct {
	dir   vmath.Vector3 // surface-to-light, normalized
	color Color         // premultiplied by intensity
}

type pointLightSrc struct {
	pos      vmath.Vector3
	color    Color
	distance float32
	decay    float32
}

type lightEnv struct {
	ambient Color
	dirs    []dirLight
	points  []pointLightSrc
}

// pipeline holds reusable buffers so steady-state frames allocate nothing.
type pipeline struct {
	tris    []renderTri
	sortBuf []renderTri
	lights  lightEnv
	stats   FrameStats
}

// build projects the visible meshes into p.tris, far to near. w and h are
// the target size in pixels.
func (p *pipeline) build(scene Object, cam *Camera, w, h float32) []renderTri {
	p.tris = p.tris[:0]
	p.stats = FrameStats{}
	if scene == nil || cam == nil || w <= 0 || h <= 0 {
		return p.tris
	}
	start := time.Now()
	updateWorldTree(scene, vmath.Identity())
	p.collectLights(scene)
	viewProj := cam.ViewProjection()

	Walk(scene, func(o Object) bool {
		if !o.Base().Visible {
			return false
		}
		if m, ok := o.(*Mesh); ok {
			p.emitMesh(m, viewProj, w, h)
		}
		return true
	})
	p.stats.Triangles = len(p.tris)

	sortStart := time.Now()
	p.sortTris()
	p.stats.Build = sortStart.Sub(start)
	p.stats.Sort = time.Since(sortStart)
	return p.tris
}

func (p *pipeline) collectLights(scene Object) {
	p.lights.ambient = Color{}
	p.lights.dirs = p.lights.dirs[:0]
	p.lights.points = p.lights.points[:0]

	Walk(scene, func(o Object) bool {
		if !o.Base().Visible {
			return false
		}
		switch l := o.(type) {
		case *AmbientLight:
			p.lights.ambient = p.lights.ambient.Add(l.Color.Scale(l.Intensity))
			p.stats.Lights++
		case *DirectionalLight:
			w := l.WorldMatrix()
			dir := vmath.V3(w[12], w[13], w[14]).Normal()
			if dir.LengthSquared() == 0 {
				dir = vmath.V3(0, 1, 0)
			}
			p.lights.dirs = append(p.lights.dirs, dirLight{
				dir:   dir,
				color: l.Color.Scale(l.Intensity),
			})
			p.stats.Lights++
		case *PointLight:
			w := l.WorldMatrix()
			p.lights.points = append(p.lights.points, pointLightSrc{
				pos:      vmath.V3(w[12], w[13], w[14]),
				color:    l.Color.Scale(l.Intensity),
				distance: l.Distance,
				decay:    l.Decay,
			})
			p.stats.Lights++
		}
		return true
	})
}

func (p *pipeline) emitMesh(m *Mesh, viewProj vmath.Matrix4, w, h float32) {
	geo, mat := m.Geometry, m.Material
	if geo == nil || mat == nil || len(geo.Indices) == 0 {
		return
	}
	world := m.WorldMatrix()
	shaded := mat.Shaded
	cull := !mat.DoubleSide

	var texW, texH float32
	if mat.Map != nil {
		tw, th := mat.Map.Size()
		texW, texH = float32(tw), float32(th)
	}

	before := len(p.tris)
	idx := geo.Indices
	pos := geo.Positions
	for i := 0; i+2 < len(idx); i += 3 {
		var tri renderTri
		tri.alpha = mat.Opacity
		tri.tex = mat.Map
		tri.wireframe = mat.Wireframe

		behind := false
		var zsum float32
		var worldPos [3]vmath.Vector3
		for k := 0; k < 3; k++ {
			vi := idx[i+k]
			wp := pos[vi].MulMatrix4(world)
			worldPos[k] = wp
			ndc, pw := wp.Project(viewProj)
			if pw <= vmath.Epsilon {
				behind = true
				break
			}
			tri.sx[k] = (ndc.X + 1) / 2 * w
			tri.sy[k] = (1 - ndc.Y) / 2 * h
			zsum += ndc.Z
			if mat.Map != nil && int(vi) < len(geo.UVs) {
				// UV origin is bottom-left; pixels are top-left.
				tri.u[k] = geo.UVs[vi].X * texW
				tri.v[k] = (1 - geo.UVs[vi].Y) * texH
			}
		}
		if behind {
			p.stats.Culled++
			continue
		}
		tri.z = zsum / 3
		if tri.z < -1 || tri.z > 1 {
			p.stats.Culled++
			continue
		}

		// Screen-space winding: y points down, so front faces come out
		// clockwise, with negative signed area.
		area := (tri.sx[1]-tri.sx[0])*(tri.sy[2]-tri.sy[0]) -
			(tri.sy[1]-tri.sy[0])*(tri.sx[2]-tri.sx[0])
		if area == 0 || (cull && area > 0) {
			p.stats.Culled++
			continue
		}

		if shaded {
			for k := 0; k < 3; k++ {
				vi := idx[i+k]
				var n vmath.Vector3
				if int(vi) < len(geo.Normals) {
					// Assumes uniform scale.
					n = geo.Normals[vi].MulMatrix4Dir(world).Normal()
				}
				tri.colors[k] = p.shadeVertex(mat.Color, worldPos[k], n)
			}
		} else {
			tri.colors[0] = mat.Color
			tri.colors[1] = mat.Color
			tri.colors[2] = mat.Color
		}

		p.tris = append(p.tris, tri)
	}
	if len(p.tris) > before {
		p.stats.Meshes++
	}
}

// shadeVertex evaluates ambient plus Lambert diffuse at one vertex. With
// no lights in the scene a shaded material goes black; that is the cue to
// add one, same as any unlit scene.
func (p *pipeline) shadeVertex(base Color, pos, normal vmath.Vector3) Color {
	light := p.lights.ambient
	for _, d := range p.lights.dirs {
		if ndl := normal.Dot(d.dir); ndl > 0 {
			light = light.Add(d.color.Scale(ndl))
		}
	}
	for _, pl := range p.lights.points {
		toLight := pl.pos.Sub(pos)
		dist := toLight.Length()
		if dist < vmath.Epsilon {
			continue
		}
		if pl.distance > 0 && dist > pl.distance {
			continue
		}
		ndl := normal.Dot(toLight.DivScalar(dist))
		if ndl <= 0 {
			continue
		}
		atten := float32(1)
		if pl.decay > 0 {
			atten = 1 / math32.Pow(dist, pl.decay)
		}
		light = light.Add(pl.color.Scale(ndl * atten))
	}
	return Color{
		R: base.R * light.R,
		G: base.G * light.G,
		B: base.B * light.B,
	}.Clamp()
}

// --- Depth sort ---

// triOrdered returns true if a should sort before or at the same position
// as b: farther first. Using >= keeps equal depths stable.
func triOrdered(a, b renderTri) bool {
	return a.z >= b.z
}

// sortTris orders p.tris far to near using p.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches
// high-water mark.
func (p *pipeline) sortTris() {
	n := len(p.tris)
	if n <= 1 {
		return
	}
	if cap(p.sortBuf) < n {
		p.sortBuf = make([]renderTri, n)
	}
	p.sortBuf = p.sortBuf[:n]

	a := p.tris
	b := p.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeTris(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(p.tris, p.sortBuf)
	}
}

// mergeTris merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeTris(src, dst []renderTri, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if triOrdered(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
