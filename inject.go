package trellis

// syntheticPointerEvent represents a single injected pointer event.
// Screen coordinates are used and converted to world coordinates via the
// viewport, identical to real mouse input.
type syntheticPointerEvent struct {
	pointerID        int
	screenX, screenY float64
	pressed          bool
	button           MouseButton
	mods             KeyModifiers
}

// InjectPress queues a pointer press event at the given screen coordinates
// (left button). The event is consumed on the next update's input pass.
func (e *Engine) InjectPress(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move event at the given screen coordinates
// with the button held down. Use this between InjectPress and InjectRelease
// to simulate a drag.
func (e *Engine) InjectMove(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectRelease queues a pointer release event at the given screen
// coordinates.
func (e *Engine) InjectRelease(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same screen coordinates. Consumes two updates.
func (e *Engine) InjectClick(x, y float64) {
	e.InjectPress(x, y)
	e.InjectRelease(x, y)
}

// InjectClickWithModifiers queues a press/release pair carrying the given
// modifier keys, for scripted multi-select.
func (e *Engine) InjectClickWithModifiers(x, y float64, mods KeyModifiers) {
	e.injectQueue = append(e.injectQueue,
		syntheticPointerEvent{screenX: x, screenY: y, pressed: true, button: MouseButtonLeft, mods: mods},
		syntheticPointerEvent{screenX: x, screenY: y, pressed: false, button: MouseButtonLeft, mods: mods},
	)
}

// InjectRightClick queues a right-button press/release pair, which resolves
// as a context menu gesture.
func (e *Engine) InjectRightClick(x, y float64) {
	e.injectQueue = append(e.injectQueue,
		syntheticPointerEvent{screenX: x, screenY: y, pressed: true, button: MouseButtonRight},
		syntheticPointerEvent{screenX: x, screenY: y, pressed: false, button: MouseButtonRight},
	)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate updates, and
// release at (toX, toY). The total sequence consumes `frames` updates.
// Minimum frames is 2 (press + release).
func (e *Engine) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	e.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		e.InjectMove(x, y)
	}
	e.InjectRelease(toX, toY)
}

// InjectTouchPress queues a touch press (pointer 1) at the given screen
// coordinates. Holding it without moving past the click threshold triggers
// the long-press context menu.
func (e *Engine) InjectTouchPress(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		pointerID: 1,
		screenX:   x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectTouchMove queues a touch move (pointer 1) with the touch held down.
func (e *Engine) InjectTouchMove(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		pointerID: 1,
		screenX:   x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectTouchRelease queues a touch release (pointer 1).
func (e *Engine) InjectTouchRelease(x, y float64) {
	e.injectQueue = append(e.injectQueue, syntheticPointerEvent{
		pointerID: 1,
		screenX:   x, screenY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// processInjectedInput pops one event from the inject queue, converts
// screen to world via the viewport, and feeds it through processPointer.
// Returns true if an event was consumed (real input should be skipped).
func (e *Engine) processInjectedInput(mods KeyModifiers) bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	evt := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]

	if evt.mods != 0 {
		mods = evt.mods
	}
	wx, wy := e.viewport.ScreenToWorld(evt.screenX, evt.screenY)
	e.processPointer(evt.pointerID, wx, wy, evt.screenX, evt.screenY, evt.pressed, evt.button, mods)
	return true
}
