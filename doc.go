// Package aspen is a declarative 3D scene runtime for [Ebitengine].
//
// Aspen renders element trees: plain descriptions of meshes, lights, and
// cameras that successive renders diff against a retained scene graph, so
// only what changed is created, updated, or disposed. On top of the graph it
// provides perspective and orthographic cameras, flat and Lambert-shaded
// materials, raycast pointer picking with event bubbling, demand-driven
// frameloops, and asynchronous asset loading.
//
// # Quick start
//
// Describe a scene with [E], mount it with [Render], and hand the window to
// [Run]:
//
//	surface := aspen.NewWindowSurface()
//	_, err := aspen.Render(
//		aspen.E("mesh", aspen.Props{
//			"scale": 2,
//			"onClick": func(e aspen.Event) aspen.Propagation {
//				fmt.Println("clicked", e.Object().Name)
//				return aspen.StopPropagation
//			},
//		},
//			aspen.E("boxGeometry", nil),
//			aspen.E("meshLambertMaterial", aspen.Props{"color": "#2080ff"}),
//		),
//		surface,
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	aspen.Run(surface, aspen.RunConfig{Title: "Aspen", Width: 800, Height: 600})
//
// Calling [Render] again on the same surface reconciles the new tree against
// the old one. [RenderFunc] mounts a build function instead, re-run by
// [State.Refresh] whenever inputs change.
//
// # Elements
//
// [E] takes a registered type tag, a [Props] map, and children. Reserved
// props: "key" names a child so reorders preserve identity, "args" lists
// constructor arguments (a change recreates the object), "attach" assigns
// the object to a field of its parent instead of parenting it, and
// "makeDefault" on a camera makes it the rendering camera. Geometry and
// material elements infer their attach slot from their tag. Everything else
// sets a field through reflection, with dotted paths reaching nested
// objects ("material.color") and on* props installing pointer handlers.
// Register custom tags with [RegisterType].
//
// # Render loop
//
// The mount's [State] ticks once per host frame. By default every tick
// renders; [WithFrameloop] and [FrameloopDemand] switch to rendering only
// after [State.Invalidate], however many times it was called. Subscribers
// registered with [State.Subscribe] run each tick in priority order, and any
// subscriber at a non-zero priority takes over rendering entirely via
// [State.RenderFrame]. Headless code drives the same loop with
// [State.Advance] on a [FixedSurface], reading pixels back from
// [SoftRenderer.Image].
//
// # Assets
//
// [LoadTexture], [LoadGeometry], and [LoadBytes] return typed resource
// slots that fill in the background and refresh the mount on completion.
// [Preload] warms the cache up front; [WatchAssets] reloads files as they
// change on disk.
//
// [Ebitengine]: https://ebitengine.org
package aspen
