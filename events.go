package trellis

import "time"

// --- Event contexts ---

// NodeEvent describes a click, double-click, or context-menu gesture that
// resolved on a node.
type NodeEvent struct {
	// NodeID is the node the gesture resolved on.
	NodeID string
	// ScreenX, ScreenY is the pointer position in screen coordinates.
	ScreenX, ScreenY float64
	// WorldX, WorldY is the pointer position in world coordinates.
	WorldX, WorldY float64
	Button         MouseButton
	Modifiers      KeyModifiers
	PointerID      int
}

// DragEvent describes one step of a drag gesture. NodeID is empty when the
// drag began on empty canvas.
type DragEvent struct {
	NodeID           string
	ScreenX, ScreenY float64
	WorldX, WorldY   float64
	// StartX, StartY is the screen position where the pointer went down.
	StartX, StartY float64
	// DeltaX, DeltaY is the screen-space movement since the previous drag
	// event (since the press, for the DragStart event).
	DeltaX, DeltaY float64
	// WorldDX, WorldDY is the same movement converted to world units.
	WorldDX, WorldDY float64
	Button           MouseButton
	Modifiers        KeyModifiers
	PointerID        int
}

// CanvasEvent describes a click, double-click, or context-menu gesture on
// empty canvas.
type CanvasEvent struct {
	ScreenX, ScreenY float64
	WorldX, WorldY   float64
	Button           MouseButton
	Modifiers        KeyModifiers
	PointerID        int
}

// SelectionEvent carries the selection set after a change.
type SelectionEvent struct {
	// Selected holds the selected node ids in selection order.
	Selected []string
}

// RollbackEvent reports an automatic rendering backend swap.
type RollbackEvent struct {
	// From and To name the backend that was abandoned and the one now
	// active.
	From, To string
	// Reason is a human-readable explanation, never empty.
	Reason string
	Time   time.Time
}

// --- Handler registry ---

type nodeHandler struct {
	id uint32
	fn func(NodeEvent)
}

type dragHandler struct {
	id uint32
	fn func(DragEvent)
}

type canvasHandler struct {
	id uint32
	fn func(CanvasEvent)
}

type selectionHandler struct {
	id uint32
	fn func(SelectionEvent)
}

type rollbackHandler struct {
	id uint32
	fn func(RollbackEvent)
}

type handlerRegistry struct {
	nodeClick         []nodeHandler
	nodeDoubleClick   []nodeHandler
	nodeContextMenu   []nodeHandler
	nodeDragStart     []dragHandler
	nodeDrag          []dragHandler
	nodeDragEnd       []dragHandler
	canvasClick       []canvasHandler
	canvasDoubleClick []canvasHandler
	canvasContextMenu []canvasHandler
	canvasDragStart   []dragHandler
	canvasDrag        []dragHandler
	canvasDragEnd     []dragHandler
	selectionChange   []selectionHandler
	rollback          []rollbackHandler
	nextID            uint32
}

// CallbackHandle allows removing a registered engine-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventNodeClick:
		h.reg.nodeClick = removeNodeHandler(h.reg.nodeClick, h.id)
	case EventNodeDoubleClick:
		h.reg.nodeDoubleClick = removeNodeHandler(h.reg.nodeDoubleClick, h.id)
	case EventNodeContextMenu:
		h.reg.nodeContextMenu = removeNodeHandler(h.reg.nodeContextMenu, h.id)
	case EventNodeDragStart:
		h.reg.nodeDragStart = removeDragHandler(h.reg.nodeDragStart, h.id)
	case EventNodeDrag:
		h.reg.nodeDrag = removeDragHandler(h.reg.nodeDrag, h.id)
	case EventNodeDragEnd:
		h.reg.nodeDragEnd = removeDragHandler(h.reg.nodeDragEnd, h.id)
	case EventCanvasClick:
		h.reg.canvasClick = removeCanvasHandler(h.reg.canvasClick, h.id)
	case EventCanvasDoubleClick:
		h.reg.canvasDoubleClick = removeCanvasHandler(h.reg.canvasDoubleClick, h.id)
	case EventCanvasContextMenu:
		h.reg.canvasContextMenu = removeCanvasHandler(h.reg.canvasContextMenu, h.id)
	case EventCanvasDragStart:
		h.reg.canvasDragStart = removeDragHandler(h.reg.canvasDragStart, h.id)
	case EventCanvasDrag:
		h.reg.canvasDrag = removeDragHandler(h.reg.canvasDrag, h.id)
	case EventCanvasDragEnd:
		h.reg.canvasDragEnd = removeDragHandler(h.reg.canvasDragEnd, h.id)
	case EventSelectionChange:
		h.reg.selectionChange = removeSelectionHandler(h.reg.selectionChange, h.id)
	case EventRollback:
		h.reg.rollback = removeRollbackHandler(h.reg.rollback, h.id)
	}
}

func removeNodeHandler(s []nodeHandler, id uint32) []nodeHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = nodeHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeDragHandler(s []dragHandler, id uint32) []dragHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = dragHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeCanvasHandler(s []canvasHandler, id uint32) []canvasHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = canvasHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeSelectionHandler(s []selectionHandler, id uint32) []selectionHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = selectionHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeRollbackHandler(s []rollbackHandler, id uint32) []rollbackHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = rollbackHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// drain drops every registered handler. Used by Destroy.
func (r *handlerRegistry) drain() {
	r.nodeClick = nil
	r.nodeDoubleClick = nil
	r.nodeContextMenu = nil
	r.nodeDragStart = nil
	r.nodeDrag = nil
	r.nodeDragEnd = nil
	r.canvasClick = nil
	r.canvasDoubleClick = nil
	r.canvasContextMenu = nil
	r.canvasDragStart = nil
	r.canvasDrag = nil
	r.canvasDragEnd = nil
	r.selectionChange = nil
	r.rollback = nil
}

func fireNodeHandlers(s []nodeHandler, ctx NodeEvent) {
	for _, h := range s {
		h.fn(ctx)
	}
}

func fireDragHandlers(s []dragHandler, ctx DragEvent) {
	for _, h := range s {
		h.fn(ctx)
	}
}

func fireCanvasHandlers(s []canvasHandler, ctx CanvasEvent) {
	for _, h := range s {
		h.fn(ctx)
	}
}

func fireSelectionHandlers(s []selectionHandler, ctx SelectionEvent) {
	for _, h := range s {
		h.fn(ctx)
	}
}

func fireRollbackHandlers(s []rollbackHandler, ctx RollbackEvent) {
	for _, h := range s {
		h.fn(ctx)
	}
}

// --- Engine-level event registration ---

// OnNodeClick registers a callback for clicks that resolve on a node.
func (e *Engine) OnNodeClick(fn func(NodeEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.nodeClick = append(e.handlers.nodeClick, nodeHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventNodeClick}
}

// OnNodeDoubleClick registers a callback for double-clicks on a node.
func (e *Engine) OnNodeDoubleClick(fn func(NodeEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.nodeDoubleClick = append(e.handlers.nodeDoubleClick, nodeHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventNodeDoubleClick}
}

// OnNodeContextMenu registers a callback for right-clicks and long-presses
// on a node.
func (e *Engine) OnNodeContextMenu(fn func(NodeEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.nodeContextMenu = append(e.handlers.nodeContextMenu, nodeHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventNodeContextMenu}
}

// OnNodeDragStart registers a callback for the start of a node drag.
func (e *Engine) OnNodeDragStart(fn func(DragEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.nodeDragStart = append(e.handlers.nodeDragStart, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventNodeDragStart}
}

// OnNodeDrag registers a callback fired per pointer move during a node drag.
func (e *Engine) OnNodeDrag(fn func(DragEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.nodeDrag = append(e.handlers.nodeDrag, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventNodeDrag}
}

// OnNodeDragEnd registers a callback for the end of a node drag.
func (e *Engine) OnNodeDragEnd(fn func(DragEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.nodeDragEnd = append(e.handlers.nodeDragEnd, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventNodeDragEnd}
}

// OnCanvasClick registers a callback for clicks on empty canvas.
func (e *Engine) OnCanvasClick(fn func(CanvasEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.canvasClick = append(e.handlers.canvasClick, canvasHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventCanvasClick}
}

// OnCanvasDoubleClick registers a callback for double-clicks on empty canvas.
func (e *Engine) OnCanvasDoubleClick(fn func(CanvasEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.canvasDoubleClick = append(e.handlers.canvasDoubleClick, canvasHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventCanvasDoubleClick}
}

// OnCanvasContextMenu registers a callback for right-clicks and long-presses
// on empty canvas.
func (e *Engine) OnCanvasContextMenu(fn func(CanvasEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.canvasContextMenu = append(e.handlers.canvasContextMenu, canvasHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventCanvasContextMenu}
}

// OnCanvasDragStart registers a callback for the start of a canvas drag.
func (e *Engine) OnCanvasDragStart(fn func(DragEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.canvasDragStart = append(e.handlers.canvasDragStart, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventCanvasDragStart}
}

// OnCanvasDrag registers a callback fired per pointer move during a canvas
// drag.
func (e *Engine) OnCanvasDrag(fn func(DragEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.canvasDrag = append(e.handlers.canvasDrag, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventCanvasDrag}
}

// OnCanvasDragEnd registers a callback for the end of a canvas drag.
func (e *Engine) OnCanvasDragEnd(fn func(DragEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.canvasDragEnd = append(e.handlers.canvasDragEnd, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventCanvasDragEnd}
}

// OnSelectionChange registers a callback fired whenever the selection set
// changes.
func (e *Engine) OnSelectionChange(fn func(SelectionEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.selectionChange = append(e.handlers.selectionChange, selectionHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventSelectionChange}
}

// OnRollback registers a callback fired when the engine swaps its rendering
// backend after sustained failures.
func (e *Engine) OnRollback(fn func(RollbackEvent)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.rollback = append(e.handlers.rollback, rollbackHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventRollback}
}
