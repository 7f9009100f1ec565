package trellis

import (
	"testing"
	"time"
)

// newGestureEngine builds an engine with node a under the screen center
// (400, 300) and node b at screen (600, 300).
func newGestureEngine(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()
	e, clk := newTestEngine()
	t.Cleanup(e.Destroy)
	e.CreateNode(Node{ID: "a", X: 0, Y: 0})
	e.CreateNode(Node{ID: "b", X: 200, Y: 0})
	e.Flush()
	return e, clk
}

// pump consumes every queued injected event, one per update.
func pump(e *Engine, updates int) {
	for i := 0; i < updates; i++ {
		e.Update()
	}
}

// --- Clicks ---

func TestGestureClickSelectsImmediately(t *testing.T) {
	e, _ := newGestureEngine(t)

	clicks := 0
	e.OnNodeClick(func(NodeEvent) { clicks++ })

	e.InjectClick(400, 300)
	pump(e, 2)

	if !e.IsSelected("a") {
		t.Error("selection must apply at release, before the click event")
	}
	if clicks != 0 {
		t.Errorf("clicks = %d, want 0 while the double-click window is open", clicks)
	}
}

func TestGestureSingleClickFiresAfterDelay(t *testing.T) {
	e, clk := newGestureEngine(t)

	var events []NodeEvent
	e.OnNodeClick(func(ev NodeEvent) { events = append(events, ev) })

	e.InjectClick(400, 300)
	pump(e, 2)
	clk.advance(e.config.ClickDelay.Duration)
	e.Update()

	if len(events) != 1 {
		t.Fatalf("clicks = %d, want 1", len(events))
	}
	ev := events[0]
	if ev.NodeID != "a" {
		t.Errorf("NodeID = %q, want a", ev.NodeID)
	}
	assertNear(t, "ScreenX", ev.ScreenX, 400)
	assertNear(t, "WorldX", ev.WorldX, 0)
	assertNear(t, "WorldY", ev.WorldY, 0)
	if ev.Button != MouseButtonLeft || ev.PointerID != 0 {
		t.Errorf("button/pointer = %v/%d, want left/0", ev.Button, ev.PointerID)
	}
}

func TestGestureDoubleClickSuppressesSingle(t *testing.T) {
	e, clk := newGestureEngine(t)

	clicks, doubles := 0, 0
	e.OnNodeClick(func(NodeEvent) { clicks++ })
	e.OnNodeDoubleClick(func(ev NodeEvent) {
		doubles++
		if ev.NodeID != "a" {
			t.Errorf("NodeID = %q, want a", ev.NodeID)
		}
	})

	e.InjectClick(400, 300)
	pump(e, 2)
	clk.advance(100 * time.Millisecond) // still inside the window
	e.InjectClick(400, 300)
	pump(e, 2)

	if doubles != 1 {
		t.Fatalf("doubles = %d, want 1", doubles)
	}
	clk.advance(e.config.ClickDelay.Duration)
	e.Update()
	if clicks != 0 {
		t.Errorf("clicks = %d, the pair must collapse into the double", clicks)
	}
}

func TestGestureSecondTargetFlushesPendingClick(t *testing.T) {
	e, clk := newGestureEngine(t)

	var order []string
	e.OnNodeClick(func(ev NodeEvent) { order = append(order, ev.NodeID) })
	doubles := 0
	e.OnNodeDoubleClick(func(NodeEvent) { doubles++ })

	e.InjectClick(400, 300) // a
	pump(e, 2)
	e.InjectClick(600, 300) // b, within a's window
	pump(e, 2)

	if len(order) != 1 || order[0] != "a" {
		t.Fatalf("order = %v, want [a] (pending a fires when b lands)", order)
	}

	clk.advance(e.config.ClickDelay.Duration)
	e.Update()
	if len(order) != 2 || order[1] != "b" {
		t.Errorf("order = %v, want [a b]", order)
	}
	if doubles != 0 {
		t.Errorf("doubles = %d, want 0 across different targets", doubles)
	}
}

func TestGestureCanvasClickClearsSelection(t *testing.T) {
	e, clk := newGestureEngine(t)

	canvasClicks := 0
	e.OnCanvasClick(func(ev CanvasEvent) {
		canvasClicks++
		assertNear(t, "WorldX", ev.WorldX, -300)
		assertNear(t, "WorldY", ev.WorldY, -200)
	})

	e.SelectNode("a", false)
	e.InjectClick(100, 100)
	pump(e, 2)

	if len(e.Selection()) != 0 {
		t.Errorf("Selection = %v, want [] after canvas tap", e.Selection())
	}
	clk.advance(e.config.ClickDelay.Duration)
	e.Update()
	if canvasClicks != 1 {
		t.Errorf("canvas clicks = %d, want 1", canvasClicks)
	}
}

func TestGestureModifierCanvasClickKeepsSelection(t *testing.T) {
	e, _ := newGestureEngine(t)

	e.SelectNode("a", false)
	e.InjectClickWithModifiers(100, 100, ModCtrl)
	pump(e, 2)

	if got := e.Selection(); len(got) != 1 || got[0] != "a" {
		t.Errorf("Selection = %v, want [a]", got)
	}
}

func TestGestureModifierClicksToggleSelection(t *testing.T) {
	e, _ := newGestureEngine(t)

	e.InjectClickWithModifiers(400, 300, ModCtrl)
	e.InjectClickWithModifiers(600, 300, ModCtrl)
	pump(e, 4)

	if got := e.Selection(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Selection = %v, want [a b]", got)
	}

	e.InjectClickWithModifiers(400, 300, ModCtrl)
	pump(e, 2)
	if got := e.Selection(); len(got) != 1 || got[0] != "b" {
		t.Errorf("Selection = %v, want [b] after toggling a off", got)
	}
}

// --- Context menus ---

func TestGestureRightClickResolvesAtPress(t *testing.T) {
	e, clk := newGestureEngine(t)

	var menus []NodeEvent
	e.OnNodeContextMenu(func(ev NodeEvent) { menus = append(menus, ev) })
	clicks := 0
	e.OnNodeClick(func(NodeEvent) { clicks++ })

	e.InjectRightClick(400, 300)
	e.Update() // press resolves immediately
	if len(menus) != 1 {
		t.Fatalf("menus = %d, want 1 after the press", len(menus))
	}
	if menus[0].NodeID != "a" || menus[0].Button != MouseButtonRight {
		t.Errorf("event = %+v, want node a / right button", menus[0])
	}

	e.Update() // release is inert
	clk.advance(time.Second)
	e.Update()
	if clicks != 0 {
		t.Errorf("clicks = %d, a context menu gesture never clicks", clicks)
	}
	if e.IsSelected("a") {
		t.Error("right-click must not change the selection")
	}
}

func TestGestureCanvasRightClick(t *testing.T) {
	e, _ := newGestureEngine(t)

	menus := 0
	e.OnCanvasContextMenu(func(CanvasEvent) { menus++ })

	e.InjectRightClick(100, 100)
	pump(e, 2)
	if menus != 1 {
		t.Errorf("canvas menus = %d, want 1", menus)
	}
}

func TestGestureTouchLongPress(t *testing.T) {
	e, clk := newGestureEngine(t)

	var menus []NodeEvent
	e.OnNodeContextMenu(func(ev NodeEvent) { menus = append(menus, ev) })
	clicks := 0
	e.OnNodeClick(func(NodeEvent) { clicks++ })

	e.InjectTouchPress(400, 300)
	e.Update()
	clk.advance(e.config.LongPress.Duration)
	e.Update()

	if len(menus) != 1 {
		t.Fatalf("menus = %d, want 1 after the hold", len(menus))
	}
	if menus[0].NodeID != "a" || menus[0].PointerID != 1 {
		t.Errorf("event = %+v, want node a on pointer 1", menus[0])
	}

	e.InjectTouchRelease(400, 300)
	e.Update()
	clk.advance(time.Second)
	e.Update()
	if clicks != 0 {
		t.Errorf("clicks = %d, the consumed press must not click on release", clicks)
	}
}

func TestGestureTouchMoveCancelsLongPress(t *testing.T) {
	e, clk := newGestureEngine(t)

	menus := 0
	e.OnNodeContextMenu(func(NodeEvent) { menus++ })
	ends := 0
	e.OnNodeDragEnd(func(DragEvent) { ends++ })

	e.InjectTouchPress(400, 300)
	e.InjectTouchMove(420, 300) // past the click threshold
	pump(e, 2)
	clk.advance(e.config.LongPress.Duration + time.Second)
	e.Update()

	if menus != 0 {
		t.Errorf("menus = %d, dragging must cancel the long press", menus)
	}
	e.InjectTouchRelease(420, 300)
	e.Update()
	if ends != 1 {
		t.Errorf("drag ends = %d, want 1", ends)
	}
}

func TestGestureMouseHoldNeverLongPresses(t *testing.T) {
	e, clk := newGestureEngine(t)

	menus := 0
	e.OnNodeContextMenu(func(NodeEvent) { menus++ })
	clicks := 0
	e.OnNodeClick(func(NodeEvent) { clicks++ })

	e.InjectPress(400, 300)
	e.Update()
	for i := 0; i < 4; i++ { // hold for 1.2s without moving
		e.InjectMove(400, 300)
		clk.advance(300 * time.Millisecond)
		e.Update()
	}
	if menus != 0 {
		t.Fatalf("menus = %d, the mouse has a right button for this", menus)
	}

	e.InjectRelease(400, 300)
	e.Update()
	clk.advance(e.config.ClickDelay.Duration)
	e.Update()
	if clicks != 1 {
		t.Errorf("clicks = %d, a long stationary hold still clicks", clicks)
	}
}

// --- Drags ---

func TestGestureDragMovesNode(t *testing.T) {
	e, clk := newGestureEngine(t)

	starts, moves, ends := 0, 0, 0
	e.OnNodeDragStart(func(ev DragEvent) {
		starts++
		if ev.NodeID != "a" {
			t.Errorf("NodeID = %q, want a", ev.NodeID)
		}
	})
	e.OnNodeDrag(func(DragEvent) { moves++ })
	e.OnNodeDragEnd(func(DragEvent) { ends++ })
	clicks := 0
	e.OnNodeClick(func(NodeEvent) { clicks++ })

	e.InjectDrag(400, 300, 500, 380, 5)
	pump(e, 5)
	e.Flush()

	n, _ := e.Node("a")
	assertNear(t, "X", n.X, 100)
	assertNear(t, "Y", n.Y, 80)

	if starts != 1 || moves != 3 || ends != 1 {
		t.Errorf("start/move/end = %d/%d/%d, want 1/3/1", starts, moves, ends)
	}
	clk.advance(time.Second)
	e.Update()
	if clicks != 0 {
		t.Errorf("clicks = %d, a drag never clicks", clicks)
	}
}

func TestGestureDragKeepsAbsoluteAnchor(t *testing.T) {
	e, _ := newGestureEngine(t)

	// Every coalesced move is anchored at the press-time position, so the
	// final position depends only on the final pointer position.
	e.InjectDrag(400, 300, 460, 330, 8)
	pump(e, 8)
	e.Flush()

	n, _ := e.Node("a")
	assertNear(t, "X", n.X, 60)
	assertNear(t, "Y", n.Y, 30)
}

func TestGestureDragWithinThresholdStaysClick(t *testing.T) {
	e, clk := newGestureEngine(t)

	starts := 0
	e.OnNodeDragStart(func(DragEvent) { starts++ })
	clicks := 0
	e.OnNodeClick(func(NodeEvent) { clicks++ })

	e.InjectPress(400, 300)
	e.InjectMove(402, 302) // ~2.8px, inside the 4px threshold
	e.InjectRelease(402, 302)
	pump(e, 3)
	clk.advance(e.config.ClickDelay.Duration)
	e.Update()

	if starts != 0 {
		t.Errorf("drag starts = %d, want 0", starts)
	}
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	n, _ := e.Node("a")
	assertNear(t, "X", n.X, 0)
}

func TestGestureCanvasDragPansViewport(t *testing.T) {
	e, _ := newGestureEngine(t)

	starts, moves, ends := 0, 0, 0
	e.OnCanvasDragStart(func(DragEvent) { starts++ })
	e.OnCanvasDrag(func(DragEvent) { moves++ })
	e.OnCanvasDragEnd(func(DragEvent) { ends++ })

	e.SelectNode("a", false)
	e.InjectDrag(100, 100, 40, 70, 4)
	pump(e, 4)

	// Dragging the canvas left/up moves the camera right/down by the same
	// screen distance.
	v := e.Viewport()
	assertNear(t, "X", v.X, 60)
	assertNear(t, "Y", v.Y, 30)

	if starts != 1 || moves != 2 || ends != 1 {
		t.Errorf("start/move/end = %d/%d/%d, want 1/2/1", starts, moves, ends)
	}
	if !e.IsSelected("a") {
		t.Error("canvas drag must not clear the selection")
	}
}

func TestGestureCanvasDragPanDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logger = quietLogger()
	cfg.PanOnCanvasDrag = false
	e := NewEngine(800, 600, cfg)
	clk := newFakeClock()
	e.setClock(clk.Now)
	defer e.Destroy()

	moves := 0
	e.OnCanvasDrag(func(DragEvent) { moves++ })

	e.InjectDrag(100, 100, 40, 70, 4)
	pump(e, 4)

	assertNear(t, "X", e.Viewport().X, 0)
	assertNear(t, "Y", e.Viewport().Y, 0)
	if moves == 0 {
		t.Error("drag events must still fire with panning disabled")
	}
}

func TestGestureNodeDragMoveDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logger = quietLogger()
	cfg.DragMovesNodes = false
	e := NewEngine(800, 600, cfg)
	clk := newFakeClock()
	e.setClock(clk.Now)
	defer e.Destroy()

	e.CreateNode(Node{ID: "a", X: 0, Y: 0})
	e.Flush()

	moves := 0
	e.OnNodeDrag(func(DragEvent) { moves++ })

	e.InjectDrag(400, 300, 500, 380, 5)
	pump(e, 5)
	e.Flush()

	n, _ := e.Node("a")
	assertNear(t, "X", n.X, 0)
	assertNear(t, "Y", n.Y, 0)
	if moves == 0 {
		t.Error("drag events must still fire with node moving disabled")
	}
}

func TestGestureDragDeltasAccumulate(t *testing.T) {
	e, _ := newGestureEngine(t)

	var dx, dy float64
	e.OnNodeDrag(func(ev DragEvent) { dx += ev.WorldDX; dy += ev.WorldDY })
	e.OnNodeDragEnd(func(ev DragEvent) { dx += ev.WorldDX; dy += ev.WorldDY })

	e.InjectDrag(400, 300, 480, 340, 6)
	pump(e, 6)

	// Per-event deltas sum to the full pointer travel.
	assertNear(t, "dx", dx, 80)
	assertNear(t, "dy", dy, 40)
}
