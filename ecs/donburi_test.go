package ecs

import (
	"testing"
	"time"

	"github.com/phanxgames/trellis"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func newTestEngine() *trellis.Engine {
	return trellis.NewEngine(640, 480, trellis.DefaultConfig())
}

func TestBindPublishesSelectionEvents(t *testing.T) {
	world := donburi.NewWorld()
	eng := newTestEngine()
	defer eng.Destroy()
	Bind(world, eng)

	var received []trellis.SelectionEvent
	SelectionEventType.Subscribe(world, func(w donburi.World, ev trellis.SelectionEvent) {
		received = append(received, ev)
	})

	id := eng.CreateNode(trellis.Node{Text: "a"})
	eng.Flush()
	eng.SelectNode(id, false)

	// Events are queued until processed.
	SelectionEventType.ProcessEvents(world)

	if len(received) != 1 {
		t.Fatalf("expected 1 selection event, got %d", len(received))
	}
	if len(received[0].Selected) != 1 || received[0].Selected[0] != id {
		t.Errorf("selection event: %+v", received[0])
	}
}

func TestBindPublishesNodeClicks(t *testing.T) {
	world := donburi.NewWorld()
	eng := newTestEngine()
	defer eng.Destroy()
	Bind(world, eng)

	var clicks []trellis.NodeEvent
	NodeClickEventType.Subscribe(world, func(w donburi.World, ev trellis.NodeEvent) {
		clicks = append(clicks, ev)
	})

	// A default-size node at the world origin sits under the screen center.
	id := eng.CreateNode(trellis.Node{Text: "target"})
	eng.Flush()
	eng.InjectClick(320, 240)

	// The single click defers behind the double-click window, so pump
	// updates on the real clock until it lands.
	deadline := time.Now().Add(2 * time.Second)
	for len(clicks) == 0 && time.Now().Before(deadline) {
		eng.Update()
		events.ProcessAllEvents(world)
		time.Sleep(10 * time.Millisecond)
	}

	if len(clicks) != 1 {
		t.Fatalf("expected 1 click event, got %d", len(clicks))
	}
	if clicks[0].NodeID != id {
		t.Errorf("click node = %q, want %q", clicks[0].NodeID, id)
	}
}

func TestBindMultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	eng := newTestEngine()
	defer eng.Destroy()
	Bind(world, eng)

	var count1, count2 int
	SelectionEventType.Subscribe(world, func(w donburi.World, ev trellis.SelectionEvent) {
		count1++
	})
	SelectionEventType.Subscribe(world, func(w donburi.World, ev trellis.SelectionEvent) {
		count2++
	})

	id := eng.CreateNode(trellis.Node{Text: "a"})
	eng.Flush()
	eng.SelectNode(id, false)
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestUnbindStopsDelivery(t *testing.T) {
	world := donburi.NewWorld()
	eng := newTestEngine()
	defer eng.Destroy()
	handles := Bind(world, eng)

	var count int
	SelectionEventType.Subscribe(world, func(w donburi.World, ev trellis.SelectionEvent) {
		count++
	})

	id := eng.CreateNode(trellis.Node{Text: "a"})
	eng.Flush()
	eng.SelectNode(id, false)
	SelectionEventType.ProcessEvents(world)
	if count != 1 {
		t.Fatalf("expected 1 event before Unbind, got %d", count)
	}

	Unbind(handles)
	eng.ClearSelection()
	SelectionEventType.ProcessEvents(world)
	if count != 1 {
		t.Errorf("event delivered after Unbind")
	}
}
