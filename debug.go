package aspen

import "time"

// FrameStats reports what the last rendered frame cost. The pipeline
// resets the counters at the top of every build, so a read between frames
// describes the frame just drawn.
type FrameStats struct {
	// Meshes counts meshes that contributed at least one triangle after
	// culling.
	Meshes int
	// Triangles counts triangles handed to the rasterizer.
	Triangles int
	// Culled counts triangles dropped by the near-plane, depth-range,
	// degenerate and backface tests.
	Culled int
	// Lights counts lights collected from the scene, ambient included.
	Lights int
	// DrawCalls counts DrawTriangles batches issued by the window
	// renderer. The software renderer rasterizes on the CPU and leaves
	// this 0.
	DrawCalls int
	// Build is the time spent projecting, culling and shading.
	Build time.Duration
	// Sort is the time spent depth-sorting for painter's order.
	Sort time.Duration
}

// Stats returns the stats of the last frame this renderer built.
func (p *pipeline) Stats() FrameStats { return p.stats }

// Stats reports the renderer's last-frame stats. A custom renderer that
// does not track stats reports the zero value.
func (rt *Root) Stats() FrameStats {
	if s, ok := rt.renderer.(interface{ Stats() FrameStats }); ok {
		return s.Stats()
	}
	return FrameStats{}
}
