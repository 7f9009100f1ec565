// Package trellis is an interactive node-link diagram engine for
// [Ebitengine].
//
// Trellis provides the scene model, viewport math, spatial indexing,
// pointer gesture recognition, batched mutations, and self-monitoring
// rendering that an embedded diagram surface (mind maps, dependency
// graphs, org charts) needs.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	eng := trellis.NewEngine(1280, 720, trellis.DefaultConfig())
//	root := eng.CreateNode(trellis.Node{Text: "Hello"})
//	eng.CreateNode(trellis.Node{Text: "World", X: 200, ParentID: root})
//	trellis.Run(eng, trellis.RunConfig{Title: "My Diagram"})
//
// For full control, implement [ebiten.Game] yourself and call
// [Engine.Update] and [Engine.Draw] directly:
//
//	type Game struct{ eng *trellis.Engine }
//
//	func (g *Game) Update() error         { g.eng.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image)  { g.eng.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// # Scene model
//
// The scene is a forest of [Node] values. A node's ParentID is the
// authoritative edge record; the engine derives one [Connection] per
// parent-child pair and keeps it in sync through reparents and deletes.
// Every mutation goes through the engine ([Engine.CreateNode],
// [Engine.UpdateNode], [Engine.DeleteNode] and the connection equivalents)
// and is coalesced by a mutation batcher before touching the scene.
//
// # Interaction
//
// The engine polls mouse and touch input each update and resolves it into
// gestures: click, double-click, drag, long-press, and right-click context
// menus, with shift/ctrl multi-select. Register callbacks with the On*
// methods ([Engine.OnNodeClick], [Engine.OnCanvasDrag], ...). Synthetic
// input ([Engine.InjectClick], [Engine.InjectDrag]) flows through the same
// state machine, which is how the tests and the scripted [ScriptRunner]
// drive it.
//
// # Rendering and health
//
// Two backends render the scene: a batching renderer that packs everything
// into few DrawTriangles calls, and a simpler immediate-mode fallback. A
// [HealthMonitor] samples FPS, frame time, and heap once a second; when the
// active backend degrades past the configured thresholds the engine rolls
// back to the other one and reports it via [Engine.OnRollback].
//
// Scenes export to PNG, JPEG, or SVG with [Engine.Export], rendered on the
// CPU from scene data.
//
// Trellis also ships viewport and node animation (via [gween]) and ECS
// integration (via the [Donburi] adapter in trellis/ecs).
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package trellis
