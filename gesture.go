package trellis

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Constants ---

const maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

// --- Per-pointer state ---

type pointerPhase uint8

const (
	phaseIdle     pointerPhase = iota
	phasePressed               // down, within the click threshold
	phaseDragging              // down, threshold exceeded
	phaseConsumed              // gesture already resolved (context menu); inert until release
)

type gesturePointer struct {
	phase  pointerPhase
	button MouseButton
	mods   KeyModifiers
	// screen and world positions at press and at the latest event.
	startSX, startSY float64
	startWX, startWY float64
	lastSX, lastSY   float64
	lastWX, lastWY   float64
	// target is the node id hit at press time, or "" for empty canvas.
	target string
	// nodeStartX, nodeStartY anchor the target node's position at press
	// time; drag moves are applied relative to it.
	nodeStartX, nodeStartY float64
	downAt                 time.Time
}

// pendingClick is a click held back for the double-click window. It fires as
// a single click when the deadline passes without a second same-target click.
type pendingClick struct {
	active           bool
	target           string
	screenX, screenY float64
	worldX, worldY   float64
	button           MouseButton
	mods             KeyModifiers
	pointerID        int
	deadline         time.Time
}

// --- Pointer state machine ---

// processPointer runs the gesture state machine for a single pointer.
// wx, wy are world coordinates, sx, sy the screen coordinates they were
// derived from. Distances against the click threshold are measured on
// screen, so zoom level does not change how far a press may wander and
// still count as a click.
func (e *Engine) processPointer(pointerID int, wx, wy, sx, sy float64, pressed bool, button MouseButton, mods KeyModifiers) {
	if pointerID < 0 || pointerID >= maxPointers {
		return
	}
	ps := &e.pointers[pointerID]

	if pressed && ps.phase == phaseIdle {
		ps.phase = phasePressed
		ps.button = button
		ps.mods = mods
		ps.startSX, ps.startSY = sx, sy
		ps.startWX, ps.startWY = wx, wy
		ps.lastSX, ps.lastSY = sx, sy
		ps.lastWX, ps.lastWY = wx, wy
		ps.target = e.hitTestNode(wx, wy)
		ps.downAt = e.clock()
		if ps.target != "" {
			if n, ok := e.scene.node(ps.target); ok {
				ps.nodeStartX, ps.nodeStartY = n.X, n.Y
			}
		}

		if button == MouseButtonRight {
			// Right press resolves immediately; the release is inert.
			e.emitContextMenu(pointerID, ps.target, sx, sy, wx, wy, button, mods)
			ps.phase = phaseConsumed
		}
		return
	}

	if !pressed && ps.phase != phaseIdle {
		switch ps.phase {
		case phaseDragging:
			e.emitDrag(EventNodeDragEnd, EventCanvasDragEnd, ps, pointerID, wx, wy, sx, sy)
		case phasePressed:
			e.resolveClick(ps, pointerID, wx, wy, sx, sy)
		}
		ps.phase = phaseIdle
		ps.target = ""
		return
	}

	if pressed && ps.phase != phaseIdle {
		if sx != ps.lastSX || sy != ps.lastSY {
			if ps.phase == phasePressed {
				dx := sx - ps.startSX
				dy := sy - ps.startSY
				if math.Sqrt(dx*dx+dy*dy) > e.config.ClickThreshold {
					ps.phase = phaseDragging
					e.emitDragStart(ps, pointerID, wx, wy, sx, sy)
				}
			}
			if ps.phase == phaseDragging {
				e.emitDrag(EventNodeDrag, EventCanvasDrag, ps, pointerID, wx, wy, sx, sy)
			}
		}
		ps.lastSX, ps.lastSY = sx, sy
		ps.lastWX, ps.lastWY = wx, wy
	}
}

// resolveClick handles a press/release pair that stayed inside the click
// threshold. Selection is applied immediately; the click event itself is
// deferred behind the double-click window unless it completes one.
func (e *Engine) resolveClick(ps *gesturePointer, pointerID int, wx, wy, sx, sy float64) {
	now := e.clock()
	e.applyTap(ps.target, ps.mods)

	if e.pending.active && e.pending.target == ps.target && now.Before(e.pending.deadline) {
		e.pending.active = false
		if ps.target != "" {
			fireNodeHandlers(e.handlers.nodeDoubleClick, NodeEvent{
				NodeID:  ps.target,
				ScreenX: sx, ScreenY: sy,
				WorldX: wx, WorldY: wy,
				Button: ps.button, Modifiers: ps.mods, PointerID: pointerID,
			})
		} else {
			fireCanvasHandlers(e.handlers.canvasDoubleClick, CanvasEvent{
				ScreenX: sx, ScreenY: sy,
				WorldX: wx, WorldY: wy,
				Button: ps.button, Modifiers: ps.mods, PointerID: pointerID,
			})
		}
		return
	}

	// A still-pending click on another target fires before the new one
	// starts its window.
	if e.pending.active {
		e.flushPendingClick()
	}
	e.pending = pendingClick{
		active: true,
		target: ps.target,
		screenX: sx, screenY: sy,
		worldX: wx, worldY: wy,
		button:    ps.button,
		mods:      ps.mods,
		pointerID: pointerID,
		deadline:  now.Add(e.config.ClickDelay.Duration),
	}
}

// flushPendingClick emits the deferred single click.
func (e *Engine) flushPendingClick() {
	p := e.pending
	e.pending.active = false
	if p.target != "" {
		fireNodeHandlers(e.handlers.nodeClick, NodeEvent{
			NodeID:  p.target,
			ScreenX: p.screenX, ScreenY: p.screenY,
			WorldX: p.worldX, WorldY: p.worldY,
			Button: p.button, Modifiers: p.mods, PointerID: p.pointerID,
		})
	} else {
		fireCanvasHandlers(e.handlers.canvasClick, CanvasEvent{
			ScreenX: p.screenX, ScreenY: p.screenY,
			WorldX: p.worldX, WorldY: p.worldY,
			Button: p.button, Modifiers: p.mods, PointerID: p.pointerID,
		})
	}
}

// tickGestures advances the time-based parts of the state machine: the
// deferred-click deadline and touch long-presses. Called once per update.
func (e *Engine) tickGestures(now time.Time) {
	if e.pending.active && !now.Before(e.pending.deadline) {
		e.flushPendingClick()
	}

	// Long-press applies to touch pointers only; the mouse has a right
	// button for the same gesture.
	for i := 1; i < maxPointers; i++ {
		ps := &e.pointers[i]
		if ps.phase != phasePressed {
			continue
		}
		if now.Sub(ps.downAt) >= e.config.LongPress.Duration {
			e.emitContextMenu(i, ps.target, ps.lastSX, ps.lastSY, ps.lastWX, ps.lastWY, ps.button, ps.mods)
			ps.phase = phaseConsumed
		}
	}
}

func (e *Engine) emitContextMenu(pointerID int, target string, sx, sy, wx, wy float64, button MouseButton, mods KeyModifiers) {
	if target != "" {
		fireNodeHandlers(e.handlers.nodeContextMenu, NodeEvent{
			NodeID:  target,
			ScreenX: sx, ScreenY: sy,
			WorldX: wx, WorldY: wy,
			Button: button, Modifiers: mods, PointerID: pointerID,
		})
	} else {
		fireCanvasHandlers(e.handlers.canvasContextMenu, CanvasEvent{
			ScreenX: sx, ScreenY: sy,
			WorldX: wx, WorldY: wy,
			Button: button, Modifiers: mods, PointerID: pointerID,
		})
	}
}

func (e *Engine) emitDragStart(ps *gesturePointer, pointerID int, wx, wy, sx, sy float64) {
	ev := DragEvent{
		NodeID:  ps.target,
		ScreenX: sx, ScreenY: sy,
		WorldX: wx, WorldY: wy,
		StartX: ps.startSX, StartY: ps.startSY,
		DeltaX: sx - ps.startSX, DeltaY: sy - ps.startSY,
		WorldDX: wx - ps.startWX, WorldDY: wy - ps.startWY,
		Button: ps.button, Modifiers: ps.mods, PointerID: pointerID,
	}
	if ps.target != "" {
		fireDragHandlers(e.handlers.nodeDragStart, ev)
	} else {
		fireDragHandlers(e.handlers.canvasDragStart, ev)
	}
}

// emitDrag fires a drag move or drag end, choosing the node or canvas event
// list by the gesture's press target. Canvas drags pan the viewport when
// the engine is configured to.
func (e *Engine) emitDrag(nodeEvent, canvasEvent EventType, ps *gesturePointer, pointerID int, wx, wy, sx, sy float64) {
	ev := DragEvent{
		NodeID:  ps.target,
		ScreenX: sx, ScreenY: sy,
		WorldX: wx, WorldY: wy,
		StartX: ps.startSX, StartY: ps.startSY,
		DeltaX: sx - ps.lastSX, DeltaY: sy - ps.lastSY,
		WorldDX: wx - ps.lastWX, WorldDY: wy - ps.lastWY,
		Button: ps.button, Modifiers: ps.mods, PointerID: pointerID,
	}
	if ps.target != "" {
		switch nodeEvent {
		case EventNodeDrag:
			fireDragHandlers(e.handlers.nodeDrag, ev)
		case EventNodeDragEnd:
			fireDragHandlers(e.handlers.nodeDragEnd, ev)
		}
		if e.config.DragMovesNodes {
			e.dragMoveNode(ps, wx, wy)
		}
		return
	}
	switch canvasEvent {
	case EventCanvasDrag:
		fireDragHandlers(e.handlers.canvasDrag, ev)
	case EventCanvasDragEnd:
		fireDragHandlers(e.handlers.canvasDragEnd, ev)
	}
	// Real input releases where it last moved, so the end delta is zero;
	// injected drags carry their final segment on the release.
	if e.config.PanOnCanvasDrag {
		e.viewport.PanBy(-ev.DeltaX, -ev.DeltaY)
	}
}

// dragMoveNode submits the dragged node's new position through the batcher.
// Positions are absolute, anchored at the node's position when the press
// landed, so coalesced or still-pending moves cannot drift.
func (e *Engine) dragMoveNode(ps *gesturePointer, wx, wy float64) {
	nx := ps.nodeStartX + (wx - ps.startWX)
	ny := ps.nodeStartY + (wy - ps.startWY)
	e.UpdateNode(ps.target, NodePatch{X: &nx, Y: &ny})
}

// --- Hit testing ---

// hitTestNode returns the id of the topmost node containing the world
// point, or "" if the point is over empty canvas.
func (e *Engine) hitTestNode(wx, wy float64) string {
	e.hitBuf = e.nodeIndex.Query(Rect{X: wx, Y: wy}, e.hitBuf[:0])

	best := ""
	var bestZ uint64
	for _, id := range e.hitBuf {
		n, ok := e.scene.node(id)
		if !ok {
			continue
		}
		w, h := e.nodeSize(n)
		if !nodeContains(n, w, h, wx, wy) {
			continue
		}
		if best == "" || n.z > bestZ {
			best = id
			bestZ = n.z
		}
	}
	return best
}

// nodeContains tests whether the world point falls inside a node of
// effective size w x h. Ellipse nodes use the inscribed ellipse; other
// shapes use the full bounds.
func nodeContains(n *Node, w, h, wx, wy float64) bool {
	halfW := w / 2
	halfH := h / 2
	dx := wx - n.X
	dy := wy - n.Y
	if n.Style.Shape == ShapeEllipse {
		if halfW <= 0 || halfH <= 0 {
			return false
		}
		nx := dx / halfW
		ny := dy / halfH
		return nx*nx+ny*ny <= 1
	}
	return dx >= -halfW && dx <= halfW && dy >= -halfH && dy <= halfH
}

// --- Hardware input polling ---

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// processInput is called from Engine.Update to feed pointer input through
// the state machine. Injected synthetic events take priority over hardware
// input; while any are queued, real input is ignored.
func (e *Engine) processInput() {
	mods := readModifiers()

	if e.processInjectedInput(mods) {
		return
	}

	e.processMousePointer(mods)
	e.processTouchPointers(mods)
	e.processWheel()
}

// processMousePointer handles mouse input (pointer 0).
func (e *Engine) processMousePointer(mods KeyModifiers) {
	mx, my := ebiten.CursorPosition()
	sx, sy := float64(mx), float64(my)
	wx, wy := e.viewport.ScreenToWorld(sx, sy)

	// If the pointer is already down, keep the button captured at press
	// time so the interaction cannot change buttons midway.
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}

	e.processPointer(0, wx, wy, sx, sy, pressed, button, mods)
}

// processTouchPointers handles touch input (pointers 1-9).
func (e *Engine) processTouchPointers(mods KeyModifiers) {
	touchIDs := ebiten.AppendTouchIDs(e.prevTouchIDs[:0])
	e.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	for _, tid := range touchIDs {
		slot := e.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		sx, sy := float64(tx), float64(ty)
		wx, wy := e.viewport.ScreenToWorld(sx, sy)
		e.processPointer(slot, wx, wy, sx, sy, true, MouseButtonLeft, mods)
	}

	// Release any touch slots that are no longer active.
	for i := 1; i < maxPointers; i++ {
		if e.touchUsed[i] && !activeSlots[i] {
			ps := &e.pointers[i]
			if ps.phase != phaseIdle {
				e.processPointer(i, ps.lastWX, ps.lastWY, ps.lastSX, ps.lastSY, false, MouseButtonLeft, mods)
			}
			e.touchUsed[i] = false
			e.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (e *Engine) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if e.touchUsed[i] && e.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !e.touchUsed[i] {
			e.touchUsed[i] = true
			e.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// processWheel applies wheel input as zoom toward the cursor.
func (e *Engine) processWheel() {
	if !e.config.WheelZoom {
		return
	}
	_, dy := ebiten.Wheel()
	if dy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	e.viewport.ZoomBy(dy*e.config.WheelZoomStep, float64(mx), float64(my))
}
