package aspen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aspen3d/aspen/vmath"
)

// Wavefront OBJ import, covering the subset meshes actually use: v, vt, vn
// and f records. Polygons triangulate as fans; negative indices count back
// from the current buffer end. Everything else (groups, materials, smoothing)
// is skipped.

func decodeOBJ(path string) (*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := ParseOBJ(filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	// Cached assets outlive any one mount.
	g.Shared = true
	return g, nil
}

// ParseOBJ reads an OBJ model into a geometry. Each distinct
// position/uv/normal combination becomes one output vertex. Models without
// vn records get normals averaged from their faces.
func ParseOBJ(name string, r io.Reader) (*Geometry, error) {
	g := newGeometry("geometry")
	g.Name = name

	var (
		positions []vmath.Vector3
		uvs       []vmath.Vector2
		normals   []vmath.Vector3
		seen      = map[[3]int]uint32{}
	)

	resolve := func(idx, count int) (int, error) {
		if idx < 0 {
			idx = count + idx
		} else {
			idx--
		}
		if idx < 0 || idx >= count {
			return 0, fmt.Errorf("index %d out of range", idx+1)
		}
		return idx, nil
	}

	// vertex maps one f-record corner ("v", "v/vt", "v//vn", "v/vt/vn") to
	// an output vertex index, deduplicating repeats.
	vertex := func(spec string) (uint32, error) {
		parts := strings.Split(spec, "/")
		key := [3]int{-1, -1, -1}
		for i, part := range parts {
			if i >= 3 {
				break
			}
			if part == "" {
				continue
			}
			raw, err := strconv.Atoi(part)
			if err != nil {
				return 0, fmt.Errorf("bad index %q", part)
			}
			var count int
			switch i {
			case 0:
				count = len(positions)
			case 1:
				count = len(uvs)
			case 2:
				count = len(normals)
			}
			idx, err := resolve(raw, count)
			if err != nil {
				return 0, err
			}
			key[i] = idx
		}
		if key[0] < 0 {
			return 0, fmt.Errorf("corner %q has no position", spec)
		}
		if out, ok := seen[key]; ok {
			return out, nil
		}
		out := uint32(len(g.Positions))
		g.Positions = append(g.Positions, positions[key[0]])
		if key[1] >= 0 {
			g.UVs = append(g.UVs, uvs[key[1]])
		} else {
			g.UVs = append(g.UVs, vmath.Vector2{})
		}
		if key[2] >= 0 {
			g.Normals = append(g.Normals, normals[key[2]])
		} else {
			g.Normals = append(g.Normals, vmath.Vector3{})
		}
		seen[key] = out
		return out, nil
	}

	sawNormal := false
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			p, err := parseFloats3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("parse %s:%d: v: %w", name, line, err)
			}
			positions = append(positions, p)
		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("parse %s:%d: vt needs 2 values", name, line)
			}
			u, err1 := strconv.ParseFloat(fields[1], 32)
			v, err2 := strconv.ParseFloat(fields[2], 32)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("parse %s:%d: bad vt", name, line)
			}
			uvs = append(uvs, vmath.V2(float32(u), float32(v)))
		case "vn":
			n, err := parseFloats3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("parse %s:%d: vn: %w", name, line, err)
			}
			normals = append(normals, n)
			sawNormal = true
		case "f":
			corners := fields[1:]
			if len(corners) < 3 {
				return nil, fmt.Errorf("parse %s:%d: face needs 3 corners", name, line)
			}
			out := make([]uint32, len(corners))
			for i, c := range corners {
				v, err := vertex(c)
				if err != nil {
					return nil, fmt.Errorf("parse %s:%d: %w", name, line, err)
				}
				out[i] = v
			}
			for i := 2; i < len(out); i++ {
				g.Indices = append(g.Indices, out[0], out[i-1], out[i])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if len(g.Indices) == 0 {
		return nil, fmt.Errorf("parse %s: no faces", name)
	}

	if !sawNormal {
		averageNormals(g)
	}
	g.finalize()
	return g, nil
}

func parseFloats3(fields []string) (vmath.Vector3, error) {
	if len(fields) < 3 {
		return vmath.Vector3{}, fmt.Errorf("needs 3 values")
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return vmath.Vector3{}, fmt.Errorf("bad value %q", fields[i])
		}
		out[i] = float32(f)
	}
	return vmath.V3(out[0], out[1], out[2]), nil
}

// averageNormals fills in smooth normals by accumulating each face's normal
// onto its corners.
func averageNormals(g *Geometry) {
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a := g.Positions[g.Indices[i]]
		b := g.Positions[g.Indices[i+1]]
		c := g.Positions[g.Indices[i+2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for k := 0; k < 3; k++ {
			idx := g.Indices[i+k]
			g.Normals[idx] = g.Normals[idx].Add(n)
		}
	}
	for i, n := range g.Normals {
		g.Normals[i] = n.Normal()
	}
}
