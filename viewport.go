package trellis

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// viewAnim holds active tweens for an animated viewport move.
type viewAnim struct {
	tweenX    *gween.Tween
	tweenY    *gween.Tween
	tweenZoom *gween.Tween
	doneX     bool
	doneY     bool
	doneZoom  bool
}

// Viewport is the view into the world: the world-space point the view centers
// on, a zoom factor, and a rotation. It converts between world and screen
// coordinates and reports the world-space rectangle currently visible.
type Viewport struct {
	// X and Y are the world-space position the viewport centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	// Clamped to [MinZoom, MaxZoom] by the mutator methods.
	Zoom float64
	// Rotation is the view rotation in radians (clockwise).
	Rotation float64
	// Screen is the screen-space rectangle the viewport renders into.
	Screen Rect

	// MinZoom and MaxZoom bound the zoom factor.
	MinZoom, MaxZoom float64

	viewMatrix    [6]float64
	invViewMatrix [6]float64
	dirty         bool

	anim *viewAnim
}

// NewViewport creates a Viewport centered on the origin at zoom 1.
func NewViewport(screen Rect, minZoom, maxZoom float64) *Viewport {
	if minZoom <= 0 {
		minZoom = 0.1
	}
	if maxZoom < minZoom {
		maxZoom = minZoom
	}
	return &Viewport{
		Zoom:    1.0,
		Screen:  screen,
		MinZoom: minZoom,
		MaxZoom: maxZoom,
		dirty:   true,
	}
}

// SetScreen updates the screen-space rectangle after a resize.
func (v *Viewport) SetScreen(screen Rect) {
	v.Screen = screen
	v.dirty = true
}

// SetCenter moves the viewport center to the given world position.
// Cancels any in-flight animation.
func (v *Viewport) SetCenter(x, y float64) {
	v.anim = nil
	v.X = x
	v.Y = y
	v.dirty = true
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
// Cancels any in-flight animation.
func (v *Viewport) SetZoom(zoom float64) {
	v.anim = nil
	v.Zoom = v.clampZoom(zoom)
	v.dirty = true
}

// SetRotation sets the view rotation in radians.
func (v *Viewport) SetRotation(rad float64) {
	v.Rotation = rad
	v.dirty = true
}

// Reset restores the identity view: origin center, zoom 1, no rotation.
func (v *Viewport) Reset() {
	v.anim = nil
	v.X = 0
	v.Y = 0
	v.Zoom = 1.0
	v.Rotation = 0
	v.dirty = true
}

// PanBy translates the viewport center by a screen-space delta. The delta is
// divided by the zoom factor so panning covers the same on-screen distance at
// any zoom level. Cancels any in-flight animation.
func (v *Viewport) PanBy(dxScreen, dyScreen float64) {
	v.anim = nil
	cos := math.Cos(v.Rotation)
	sin := math.Sin(v.Rotation)
	v.X += (dxScreen*cos - dyScreen*sin) / v.Zoom
	v.Y += (dxScreen*sin + dyScreen*cos) / v.Zoom
	v.dirty = true
}

// ZoomBy multiplies the zoom factor by (1 + delta), clamped to
// [MinZoom, MaxZoom], while keeping the world point under the given screen
// position fixed on screen (zoom toward the cursor). Cancels any in-flight
// animation.
func (v *Viewport) ZoomBy(delta, screenX, screenY float64) {
	v.anim = nil
	wx, wy := v.ScreenToWorld(screenX, screenY)

	v.Zoom = v.clampZoom(v.Zoom * (1 + delta))
	v.dirty = true

	// Re-project the anchor with the new zoom and shift the center by the
	// drift so the anchor's world point stays under the cursor.
	ax, ay := v.ScreenToWorld(screenX, screenY)
	v.X += wx - ax
	v.Y += wy - ay
	v.dirty = true
}

// AnimateTo eases the viewport to the given center and zoom over duration
// seconds. Progress is driven by the elapsed time passed to update, so the
// animation completes on schedule regardless of frame rate. Any manual
// pan/zoom cancels it.
func (v *Viewport) AnimateTo(x, y, zoom float64, duration float32) {
	zoom = v.clampZoom(zoom)
	if duration <= 0 {
		v.SetCenter(x, y)
		v.Zoom = zoom
		return
	}
	v.anim = &viewAnim{
		tweenX:    gween.New(float32(v.X), float32(x), duration, ease.OutQuad),
		tweenY:    gween.New(float32(v.Y), float32(y), duration, ease.OutQuad),
		tweenZoom: gween.New(float32(v.Zoom), float32(zoom), duration, ease.OutQuad),
	}
}

// FitBounds moves the viewport so the given world rectangle fills the screen
// with padding pixels of margin on every side. A duration > 0 animates the
// move, otherwise it snaps. Rotation is reset.
func (v *Viewport) FitBounds(bounds Rect, padding float64, duration float32) {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}
	availW := v.Screen.Width - 2*padding
	availH := v.Screen.Height - 2*padding
	if availW <= 0 || availH <= 0 {
		return
	}
	zoom := math.Min(availW/bounds.Width, availH/bounds.Height)
	cx := bounds.X + bounds.Width/2
	cy := bounds.Y + bounds.Height/2

	v.Rotation = 0
	if duration <= 0 {
		v.SetCenter(cx, cy)
		v.Zoom = v.clampZoom(zoom)
		v.dirty = true
		return
	}
	v.AnimateTo(cx, cy, zoom, duration)
}

// Animating reports whether an AnimateTo move is still in flight.
func (v *Viewport) Animating() bool {
	return v.anim != nil
}

// update advances any active animation. Called from Engine.Update with the
// elapsed time since the previous tick in seconds.
func (v *Viewport) update(dt float32) {
	prevX, prevY := v.X, v.Y
	prevZoom, prevRot := v.Zoom, v.Rotation

	if v.anim != nil {
		a := v.anim
		if !a.doneX {
			val, done := a.tweenX.Update(dt)
			v.X = float64(val)
			a.doneX = done
		}
		if !a.doneY {
			val, done := a.tweenY.Update(dt)
			v.Y = float64(val)
			a.doneY = done
		}
		if !a.doneZoom {
			val, done := a.tweenZoom.Update(dt)
			v.Zoom = float64(val)
			a.doneZoom = done
		}
		if a.doneX && a.doneY && a.doneZoom {
			v.anim = nil
		}
	}

	if v.Zoom < v.MinZoom || v.Zoom > v.MaxZoom {
		v.Zoom = v.clampZoom(v.Zoom)
	}

	if v.X != prevX || v.Y != prevY || v.Zoom != prevZoom || v.Rotation != prevRot {
		v.dirty = true
	}
}

func (v *Viewport) clampZoom(zoom float64) float64 {
	if zoom < v.MinZoom {
		return v.MinZoom
	}
	if zoom > v.MaxZoom {
		return v.MaxZoom
	}
	return zoom
}

// computeViewMatrix recomputes the cached view matrix if dirty.
//
// viewMatrix = Translate(cx, cy) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
// where cx, cy = screen rect center.
func (v *Viewport) computeViewMatrix() [6]float64 {
	if !v.dirty {
		return v.viewMatrix
	}
	v.dirty = false

	cx := v.Screen.X + v.Screen.Width/2
	cy := v.Screen.Y + v.Screen.Height/2

	cos := math.Cos(-v.Rotation)
	sin := math.Sin(-v.Rotation)
	z := v.Zoom

	// Combined: Translate(cx,cy) * Scale(z) * Rotate(-rot) * Translate(-X,-Y)
	// [a b tx]   [z*cos  -z*sin  cx + z*(-cos*X + sin*Y)]
	// [c d ty] = [z*sin   z*cos  cy + z*(-sin*X - cos*Y)]
	a := z * cos
	b := -z * sin
	cc := z * sin
	d := z * cos
	tx := cx + z*(-cos*v.X+sin*v.Y)
	ty := cy + z*(-sin*v.X-cos*v.Y)

	v.viewMatrix = [6]float64{a, cc, b, d, tx, ty}
	v.invViewMatrix = invertAffine(v.viewMatrix)
	return v.viewMatrix
}

// WorldToScreen converts world coordinates to screen coordinates.
func (v *Viewport) WorldToScreen(wx, wy float64) (sx, sy float64) {
	v.computeViewMatrix()
	sx, sy = transformPoint(v.viewMatrix, wx, wy)
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (v *Viewport) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	v.computeViewMatrix()
	wx, wy = transformPoint(v.invViewMatrix, sx, sy)
	return
}

// ViewMatrix returns the current world-to-screen affine matrix.
func (v *Viewport) ViewMatrix() [6]float64 {
	return v.computeViewMatrix()
}

// VisibleBounds returns the axis-aligned bounding rect of the visible area in
// world space. With rotation the rect covers the rotated view's AABB, so it
// may include corners that are off screen; culling treats it as conservative.
func (v *Viewport) VisibleBounds() Rect {
	v.computeViewMatrix()
	inv := v.invViewMatrix

	vx := v.Screen.X
	vy := v.Screen.Y
	vr := vx + v.Screen.Width
	vb := vy + v.Screen.Height

	// Transform the four screen corners to world space.
	x0, y0 := transformPoint(inv, vx, vy)
	x1, y1 := transformPoint(inv, vr, vy)
	x2, y2 := transformPoint(inv, vr, vb)
	x3, y3 := transformPoint(inv, vx, vb)

	minX := min4(x0, x1, x2, x3)
	minY := min4(y0, y1, y2, y3)
	maxX := max4(x0, x1, x2, x3)
	maxY := max4(y0, y1, y2, y3)

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// MarkDirty forces a recomputation of the view matrix. Call this after
// modifying X/Y/Zoom/Rotation directly rather than through the mutator
// methods.
func (v *Viewport) MarkDirty() {
	v.dirty = true
}
