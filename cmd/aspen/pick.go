package main

import (
	"github.com/spf13/cobra"

	"github.com/aspen3d/aspen"
	"github.com/aspen3d/aspen/vmath"
)

var pickGrid int

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Hit-test a grid of boxes with the pointer",
	Long: `pick renders a grid of boxes. Hovering tints a box, clicking toggles
its spin, and the scroll wheel dollies the camera. Combine with
--frameloop demand to watch frames stop whenever nothing changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := mountOptions()
		if err != nil {
			return err
		}

		idle := aspen.Color{R: 0.55, G: 0.57, B: 0.64}
		hot := aspen.Color{R: 1, G: 0.62, B: 0.25}
		spinning := map[*aspen.Mesh]bool{}

		tree := aspen.E("group", nil,
			aspen.E("ambientLight", aspen.Props{"intensity": 0.35}),
			aspen.E("directionalLight", aspen.Props{"position": vmath.V3(4, 6, 3)}),
		)
		half := float32(pickGrid-1) / 2
		for r := 0; r < pickGrid; r++ {
			for c := 0; c < pickGrid; c++ {
				tree.Children = append(tree.Children, aspen.E("mesh", aspen.Props{
					"position": vmath.V3((float32(c)-half)*1.6, (float32(r)-half)*1.6, 0),
					"onPointerOver": func(e aspen.Event) aspen.Propagation {
						if m, ok := e.Object().(*aspen.Mesh); ok {
							m.Material.Color = hot
							e.State.Invalidate()
						}
						return aspen.StopPropagation
					},
					"onPointerOut": func(e aspen.Event) aspen.Propagation {
						if m, ok := e.Object().(*aspen.Mesh); ok {
							m.Material.Color = idle
							e.State.Invalidate()
						}
						return aspen.Continue
					},
					"onClick": func(e aspen.Event) aspen.Propagation {
						if m, ok := e.Object().(*aspen.Mesh); ok {
							spinning[m] = !spinning[m]
							e.State.Invalidate()
						}
						return aspen.StopPropagation
					},
					"onWheel": func(e aspen.Event) aspen.Propagation {
						cam := e.State.Camera()
						cam.Position.Z += float32(e.WheelY) * 0.4
						cam.MarkDirty()
						e.State.Invalidate()
						return aspen.Continue
					},
				},
					aspen.E("boxGeometry", aspen.Props{"args": []any{1.1, 1.1, 1.1}}),
					aspen.E("meshLambertMaterial", aspen.Props{"color": idle}),
				))
			}
		}

		surface := aspen.NewWindowSurface()
		rt, err := aspen.Render(tree, surface, opts...)
		if err != nil {
			return err
		}
		st := rt.State()
		st.Camera().Position.Z = 2.2 * float32(pickGrid)
		st.Camera().MarkDirty()

		st.Subscribe(func(st *aspen.State, dt float64) {
			active := false
			for m, on := range spinning {
				if on {
					m.Rotation.Y += float32(dt) * 2.5
					m.MarkDirty()
					active = true
				}
			}
			if active {
				st.Invalidate()
			}
		}, 0)

		return runWindow(surface, "aspen pick")
	},
}

func init() {
	pickCmd.Flags().IntVar(&pickGrid, "grid", 5, "boxes per side")
	rootCmd.AddCommand(pickCmd)
}
