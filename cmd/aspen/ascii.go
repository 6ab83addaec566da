package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aspen3d/aspen"
	"github.com/aspen3d/aspen/vmath"
)

var (
	asciiCols  int
	asciiAngle float64
)

// asciiRamp orders glyphs from darkest to brightest.
const asciiRamp = " .:-=+*#%@"

var asciiCmd = &cobra.Command{
	Use:   "ascii",
	Short: "Print a one-shot software render as ASCII art",
	Long: `ascii mounts a scene on a fixed offscreen surface, advances one frame
through the software rasterizer and prints it to stdout by luminance.
No window opens. Terminal cells are about twice as tall as wide, so
each cell averages a 1x2 pixel block.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := mountOptions()
		if err != nil {
			return err
		}

		rows := asciiCols * 2 / 5
		tree := aspen.E("group", nil,
			aspen.E("ambientLight", aspen.Props{"intensity": 0.25}),
			aspen.E("directionalLight", aspen.Props{"position": vmath.V3(3, 4, 6)}),
			aspen.E("mesh", aspen.Props{
				"rotation": vmath.V3(0.9, vmath.DegToRad(float32(asciiAngle)), 0),
			},
				aspen.E("torusGeometry", aspen.Props{"args": []any{1.4, 0.5, 14, 36}}),
				aspen.E("meshLambertMaterial", aspen.Props{"color": aspen.Color{R: 0.9, G: 0.9, B: 0.9}}),
			),
		)

		surface := aspen.NewFixedSurface(asciiCols, rows*2)
		rt, err := aspen.Render(tree, surface, opts...)
		if err != nil {
			return err
		}
		defer rt.Unmount()
		st := rt.State()
		st.Advance(1.0 / 60)

		sr, ok := st.Renderer().(*aspen.SoftRenderer)
		if !ok {
			return fmt.Errorf("surface renderer does not expose pixels")
		}

		// Sample the device-pixel viewport; a pixel ratio above 1 simply
		// yields more characters.
		cols, pixH := st.Viewport()
		rows = pixH / 2

		var b strings.Builder
		b.Grow((cols + 1) * rows)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				b.WriteByte(asciiRamp[rampIndex(
					cellLuminance(sr, x, 2*y),
					cellLuminance(sr, x, 2*y+1),
				)])
			}
			b.WriteByte('\n')
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
		return err
	},
}

// cellLuminance returns the Rec. 709 luminance of one pixel, 0..255.
func cellLuminance(sr *aspen.SoftRenderer, x, y int) float64 {
	r, g, b, _ := sr.PixelAt(x, y)
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

// rampIndex averages two pixel luminances into a glyph index.
func rampIndex(top, bottom float64) int {
	idx := int((top + bottom) / 2 / 256 * float64(len(asciiRamp)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(asciiRamp) {
		idx = len(asciiRamp) - 1
	}
	return idx
}

func init() {
	asciiCmd.Flags().IntVar(&asciiCols, "cols", 100, "output width in characters")
	asciiCmd.Flags().Float64Var(&asciiAngle, "angle", 35, "torus yaw in degrees")
	rootCmd.AddCommand(asciiCmd)
}
