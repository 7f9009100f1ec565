package trellis

// Vec2 is a 2D vector used for positions, offsets, and sizes throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// ContainsRect reports whether other lies entirely inside r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// Expand returns r grown by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}

// Union returns the smallest rectangle covering both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := r.X
	if other.X < minX {
		minX = other.X
	}
	minY := r.Y
	if other.Y < minY {
		minY = other.Y
	}
	maxX := r.X + r.Width
	if ox := other.X + other.Width; ox > maxX {
		maxX = ox
	}
	maxY := r.Y + r.Height
	if oy := other.Y + other.Height; oy > maxY {
		maxY = oy
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default fill (no tint).
var ColorWhite = Color{1, 1, 1, 1}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// multiSelect reports whether the modifier state requests additive selection.
// Ctrl on most platforms, Cmd (Meta) on macOS.
func (m KeyModifiers) multiSelect() bool {
	return m&(ModCtrl|ModMeta) != 0
}

// EventType identifies a kind of engine event.
type EventType uint8

const (
	EventNodeClick         EventType = iota // press then release on a node within the click threshold
	EventNodeDoubleClick                    // second click on the same node within the click delay
	EventNodeDragStart                      // node drag exceeded the click threshold
	EventNodeDrag                           // fires per pointer move while dragging a node
	EventNodeDragEnd                        // pointer released after dragging a node
	EventNodeContextMenu                    // right-click or long-press on a node
	EventCanvasClick                        // click on empty canvas
	EventCanvasDoubleClick                  // double-click on empty canvas
	EventCanvasDragStart                    // drag that began on empty canvas
	EventCanvasDrag                         // fires per pointer move while dragging empty canvas
	EventCanvasDragEnd                      // pointer released after dragging empty canvas
	EventCanvasContextMenu                  // right-click or long-press on empty canvas
	EventSelectionChange                    // selection set changed
	EventRollback                           // active rendering backend was swapped for its fallback
)

// ObjectKind distinguishes the two renderable object types.
type ObjectKind uint8

const (
	KindNode       ObjectKind = iota // a positioned diagram node
	KindConnection                   // a parent→child edge
)

// Shape selects a node outline.
type Shape uint8

const (
	ShapeRoundedRect Shape = iota // rectangle with rounded corners (default)
	ShapeRect                     // sharp-cornered rectangle
	ShapeEllipse                  // ellipse inscribed in the node bounds
)
