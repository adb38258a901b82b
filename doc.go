// Package marquee is a retained-mode 2D/3D scene renderer.
//
// An application describes a tree of drawable nodes (Group, Rect, Polygon,
// Text, Model) with animatable properties. The engine composes transforms
// and opacity down the tree, draws each node through a small set of GPU
// programs, and presents a frame at a steady rate. The GPU is reached
// through the [Device] interface; package ebitengpu implements it on
// [Ebitengine].
//
// # Threads
//
// A [Stage] has two sides. Any goroutine may call its mutators
// ([Stage.NewRect], [Stage.AddChild], [Stage.Set], [Stage.Animate], ...),
// which only append update records to a queue and return immediately. A
// single render goroutine calls [Stage.Advance] once per frame to apply the
// queued records in order and tick animations, then [Renderer.Render] to
// draw. Nodes and properties are touched only on the render goroutine, so
// the queue mutex is the only lock in the core.
//
//	stage := marquee.NewStage(marquee.StageOptions{Fonts: fonts})
//	box := stage.NewRect(80, 40)
//	stage.SetColor(box, marquee.Color{R: 0.3, G: 0.7, B: 1, A: 1})
//	stage.AddChild(stage.Root(), box)
//	stage.Animate(box, marquee.PropRotationZ, marquee.AnimationOptions{
//		To: 360, Duration: 2 * time.Second, Repeat: marquee.RepeatForever,
//	})
//
// Reads from other goroutines go through [Stage.Inspect] or
// [Stage.ReadProperty], which run in the same quiescent window as the
// queue drain.
//
// # Drawing
//
// Traversal is a pre-order walk from the root. Each node saves the
// [RenderContext], applies its local transform (position, then scale and
// rotation about its origin pivot), multiplies its opacity, draws, and
// restores. Groups may clip their children to their rectangle through the
// stencil buffer and may enable depth testing for their subtree.
//
// [Ebitengine]: https://ebitengine.org
package marquee
