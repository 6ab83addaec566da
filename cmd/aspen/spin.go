package main

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/aspen3d/aspen"
	"github.com/aspen3d/aspen/vmath"
)

var spinCount int

var spinCmd = &cobra.Command{
	Use:   "spin",
	Short: "Render a spinning ring of lit boxes",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := mountOptions()
		if err != nil {
			return err
		}
		surface := aspen.NewWindowSurface()
		rt, err := aspen.Render(aspen.E("group", nil,
			aspen.E("ambientLight", aspen.Props{"intensity": 0.35}),
			aspen.E("directionalLight", aspen.Props{"position": vmath.V3(4, 6, 3)}),
		), surface, opts...)
		if err != nil {
			return err
		}
		st := rt.State()
		st.Camera().Position = vmath.V3(0, 4, 11)
		st.Camera().LookAt(vmath.V3(0, 0, 0))

		ring := aspen.NewGroup("ring")
		st.Scene().AddChild(ring)
		boxes := make([]*aspen.Mesh, spinCount)
		for i := range boxes {
			a := float64(i) / float64(spinCount) * 2 * math.Pi
			m := aspen.NewMesh("box", aspen.NewBoxGeometry(1, 1, 1), aspen.NewLambertMaterial("box"))
			m.Material.Color = aspen.Color{
				R: 0.5 + 0.5*float32(math.Sin(a)),
				G: 0.6,
				B: 0.5 + 0.5*float32(math.Cos(a)),
			}
			m.SetPosition(float32(4*math.Cos(a)), 0, float32(4*math.Sin(a)))
			ring.AddChild(m)
			boxes[i] = m
		}

		st.Subscribe(func(st *aspen.State, dt float64) {
			ring.Rotation.Y += float32(dt) * 0.4
			ring.MarkDirty()
			for _, m := range boxes {
				m.Rotation.X += float32(dt) * 1.3
				m.MarkDirty()
			}
			// Demand mode still animates: each rendered frame requests the next.
			st.Invalidate()
		}, 0)

		return runWindow(surface, "aspen spin")
	},
}

func init() {
	spinCmd.Flags().IntVar(&spinCount, "count", 12, "number of boxes in the ring")
	rootCmd.AddCommand(spinCmd)
}
