package ecs

import (
	"github.com/phanxgames/trellis"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// Event types published by Bind. Events are queued; call
// events.ProcessAllEvents (or ProcessEvents per type) each tick to deliver
// them to subscribers.
var (
	// NodeClickEventType carries clicks that resolved on a node.
	NodeClickEventType = events.NewEventType[trellis.NodeEvent]()
	// NodeDoubleClickEventType carries double-clicks on a node.
	NodeDoubleClickEventType = events.NewEventType[trellis.NodeEvent]()
	// NodeContextMenuEventType carries right-clicks and long-presses on a
	// node.
	NodeContextMenuEventType = events.NewEventType[trellis.NodeEvent]()
	// NodeDragEventType carries per-move node drag events.
	NodeDragEventType = events.NewEventType[trellis.DragEvent]()
	// SelectionEventType carries the selection set after each change.
	SelectionEventType = events.NewEventType[trellis.SelectionEvent]()
	// RollbackEventType carries rendering backend rollback notices.
	RollbackEventType = events.NewEventType[trellis.RollbackEvent]()
)

// Bind registers engine callbacks that publish gesture, selection, and
// rollback events into the world. The returned handles unregister them;
// pass them to Unbind when the world goes away before the engine does.
func Bind(world donburi.World, eng *trellis.Engine) []trellis.CallbackHandle {
	return []trellis.CallbackHandle{
		eng.OnNodeClick(func(ev trellis.NodeEvent) {
			NodeClickEventType.Publish(world, ev)
		}),
		eng.OnNodeDoubleClick(func(ev trellis.NodeEvent) {
			NodeDoubleClickEventType.Publish(world, ev)
		}),
		eng.OnNodeContextMenu(func(ev trellis.NodeEvent) {
			NodeContextMenuEventType.Publish(world, ev)
		}),
		eng.OnNodeDrag(func(ev trellis.DragEvent) {
			NodeDragEventType.Publish(world, ev)
		}),
		eng.OnSelectionChange(func(ev trellis.SelectionEvent) {
			SelectionEventType.Publish(world, ev)
		}),
		eng.OnRollback(func(ev trellis.RollbackEvent) {
			RollbackEventType.Publish(world, ev)
		}),
	}
}

// Unbind removes the callbacks a Bind call registered.
func Unbind(handles []trellis.CallbackHandle) {
	for _, h := range handles {
		h.Remove()
	}
}
