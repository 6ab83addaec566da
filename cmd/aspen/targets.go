package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/aspen3d/aspen"
	"github.com/aspen3d/aspen/vmath"
)

var targetInset int

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Composite an offscreen minimap over the main view",
	Long: `targets renders the scene twice per frame: once from a top-down camera
into an offscreen render target and once from the main camera onto the
screen, then draws the target into the corner. The compositing runs in
a priority subscriber, which suppresses the default render pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := mountOptions()
		if err != nil {
			return err
		}

		tree := aspen.E("group", nil,
			aspen.E("ambientLight", aspen.Props{"intensity": 0.35}),
			aspen.E("directionalLight", aspen.Props{"position": vmath.V3(5, 8, 4), "intensity": 0.9}),
			aspen.E("mesh", aspen.Props{
				"position": vmath.V3(0, -1.2, 0),
				"rotation": vmath.V3(-math.Pi/2, 0, 0),
			},
				aspen.E("planeGeometry", aspen.Props{"args": []any{20, 20}}),
				aspen.E("meshLambertMaterial", aspen.Props{"color": aspen.Color{R: 0.16, G: 0.18, B: 0.22}}),
			),
		)

		surface := aspen.NewWindowSurface()
		rt, err := aspen.Render(tree, surface, opts...)
		if err != nil {
			return err
		}
		st := rt.State()

		cam := st.Camera()
		cam.Position = vmath.V3(0, 5, 13)
		cam.LookAt(vmath.V3(0, 0, 0))
		cam.MarkDirty()

		type orbiter struct {
			mesh   *aspen.Mesh
			radius float32
			speed  float32
			phase  float32
		}
		orbiters := make([]*orbiter, 6)
		for i := range orbiters {
			a := float64(i) / float64(len(orbiters)) * 2 * math.Pi
			mat := aspen.NewLambertMaterial("")
			mat.Color = aspen.Color{
				R: 0.55 + 0.45*float32(math.Sin(a)),
				G: 0.55 + 0.45*float32(math.Sin(a+2.1)),
				B: 0.55 + 0.45*float32(math.Sin(a+4.2)),
			}
			m := aspen.NewMesh("", aspen.NewBoxGeometry(1, 1, 1), mat)
			orbiters[i] = &orbiter{
				mesh:   m,
				radius: 2.5 + float32(i)*0.9,
				speed:  0.9 - float32(i)*0.1,
				phase:  float32(a),
			}
			st.Scene().AddChild(m)
		}

		st.Subscribe(func(st *aspen.State, dt float64) {
			for _, o := range orbiters {
				o.phase += o.speed * float32(dt)
				o.mesh.Position = vmath.V3(
					o.radius*float32(math.Cos(float64(o.phase))),
					0,
					o.radius*float32(math.Sin(float64(o.phase))),
				)
				o.mesh.Rotation.Y = -o.phase
				o.mesh.MarkDirty()
			}
			st.Invalidate()
		}, 0)

		inset := aspen.NewRenderTarget(targetInset, targetInset)
		defer inset.Dispose()

		topCam := aspen.NewPerspectiveCamera("minimap")
		topCam.Position = vmath.V3(0, 22, 0.01)
		topCam.LookAt(vmath.V3(0, 0, 0))
		topCam.SetAspect(1)

		mainBG := aspen.Color{R: 0.07, G: 0.07, B: 0.1}
		insetBG := aspen.Color{R: 0.04, G: 0.1, B: 0.07}
		const margin = 12

		st.Subscribe(func(st *aspen.State, dt float64) {
			r, ok := st.Renderer().(*aspen.EbitenRenderer)
			if !ok {
				st.RenderFrame()
				return
			}
			iw, ih := inset.Size()
			pw, ph := st.Viewport()

			// Offscreen pass first, then the main pass at the restored size.
			r.SetClearColor(insetBG)
			r.SetTarget(inset)
			r.SetSize(iw, ih)
			r.Render(st.Scene(), topCam)
			r.SetTarget(nil)
			r.SetClearColor(mainBG)
			r.SetSize(pw, ph)
			st.RenderFrame()

			if screen := r.Screen(); screen != nil {
				op := &ebiten.DrawImageOptions{}
				op.GeoM.Translate(float64(pw-iw-margin), float64(margin))
				screen.DrawImage(inset.Image(), op)
			}
		}, 1)

		return runWindow(surface, "aspen targets")
	},
}

func init() {
	targetsCmd.Flags().IntVar(&targetInset, "inset", 220, "minimap size in pixels")
	rootCmd.AddCommand(targetsCmd)
}
