package trellis

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func testViewport() *Viewport {
	return NewViewport(Rect{X: 0, Y: 0, Width: 800, Height: 600}, 0.1, 4.0)
}

func TestViewportDefaults(t *testing.T) {
	v := testViewport()
	if v.Zoom != 1.0 {
		t.Errorf("Zoom = %f, want 1.0", v.Zoom)
	}
	if v.X != 0 || v.Y != 0 {
		t.Errorf("center = (%f,%f), want (0,0)", v.X, v.Y)
	}
	if v.MinZoom != 0.1 || v.MaxZoom != 4.0 {
		t.Errorf("zoom range = [%f,%f], want [0.1,4.0]", v.MinZoom, v.MaxZoom)
	}
}

func TestViewportIdentityMapsOriginToCenter(t *testing.T) {
	v := testViewport()
	sx, sy := v.WorldToScreen(0, 0)
	assertNear(t, "sx", sx, 400)
	assertNear(t, "sy", sy, 300)
}

func TestViewportCenterTracksWorldPoint(t *testing.T) {
	v := testViewport()
	v.SetCenter(100, 50)
	sx, sy := v.WorldToScreen(100, 50)
	// The point the viewport centers on always lands on the screen center.
	assertNear(t, "sx", sx, 400)
	assertNear(t, "sy", sy, 300)
}

func TestViewportZoomScalesDistances(t *testing.T) {
	v := testViewport()
	v.SetZoom(2.0)
	sx1, _ := v.WorldToScreen(1, 0)
	sx0, _ := v.WorldToScreen(0, 0)
	assertNear(t, "1 world unit at zoom 2", sx1-sx0, 2.0)
}

func TestViewportRotation90(t *testing.T) {
	v := testViewport()
	v.SetRotation(math.Pi / 2)
	sx, sy := v.WorldToScreen(1, 0)
	// Rotate(-π/2) maps (1,0)→(0,-1), then translate to the screen center.
	assertNear(t, "sx", sx, 400)
	assertNear(t, "sy", sy, 299)
}

func TestViewportRoundtrip(t *testing.T) {
	v := testViewport()
	v.SetCenter(42, -17)
	v.SetZoom(1.5)
	v.SetRotation(0.3)

	origWX, origWY := 123.0, -456.0
	sx, sy := v.WorldToScreen(origWX, origWY)
	wx, wy := v.ScreenToWorld(sx, sy)

	if !approxEqual(wx, origWX, 1e-6) || !approxEqual(wy, origWY, 1e-6) {
		t.Errorf("roundtrip: got (%f,%f), want (%f,%f)", wx, wy, origWX, origWY)
	}
}

func TestViewportZoomClamped(t *testing.T) {
	v := testViewport()
	v.SetZoom(100)
	assertNear(t, "zoom above max", v.Zoom, 4.0)
	v.SetZoom(0.001)
	assertNear(t, "zoom below min", v.Zoom, 0.1)
}

func TestViewportVisibleBoundsZoom1(t *testing.T) {
	v := testViewport()
	v.SetCenter(400, 300)
	b := v.VisibleBounds()
	if !approxEqual(b.X, 0, 1e-6) || !approxEqual(b.Y, 0, 1e-6) {
		t.Errorf("VisibleBounds origin = (%f,%f), want (0,0)", b.X, b.Y)
	}
	if !approxEqual(b.Width, 800, 1e-6) || !approxEqual(b.Height, 600, 1e-6) {
		t.Errorf("VisibleBounds size = (%f,%f), want (800,600)", b.Width, b.Height)
	}
}

func TestViewportVisibleBoundsZoom2(t *testing.T) {
	v := testViewport()
	v.SetZoom(2.0)
	b := v.VisibleBounds()
	// Zoom 2 halves the visible area.
	if !approxEqual(b.Width, 400, 1e-6) || !approxEqual(b.Height, 300, 1e-6) {
		t.Errorf("VisibleBounds at zoom 2 = (%f,%f), want (400,300)", b.Width, b.Height)
	}
}

func TestViewportVisibleBoundsRotatedIsConservative(t *testing.T) {
	v := testViewport()
	v.SetRotation(math.Pi / 4)
	b := v.VisibleBounds()
	// The AABB of a rotated view covers at least the unrotated area.
	if b.Width < 800 || b.Height < 600 {
		t.Errorf("rotated VisibleBounds = (%f,%f), want >= (800,600)", b.Width, b.Height)
	}
	// Every screen corner must map inside it.
	for _, corner := range [][2]float64{{0, 0}, {800, 0}, {800, 600}, {0, 600}} {
		wx, wy := v.ScreenToWorld(corner[0], corner[1])
		if !b.Contains(wx, wy) {
			t.Errorf("corner %v → world (%f,%f) outside VisibleBounds %v", corner, wx, wy, b)
		}
	}
}

// --- PanBy ---

func TestPanByScreenDelta(t *testing.T) {
	v := testViewport()
	v.PanBy(100, -50)
	assertNear(t, "X", v.X, 100)
	assertNear(t, "Y", v.Y, -50)
}

func TestPanByDividesByZoom(t *testing.T) {
	v := testViewport()
	v.SetZoom(2.0)
	v.PanBy(100, 0)
	// A 100px screen pan covers 50 world units at zoom 2.
	assertNear(t, "X", v.X, 50)
}

func TestPanByKeepsContentUnderPointer(t *testing.T) {
	v := testViewport()
	v.SetCenter(10, 20)
	v.SetZoom(1.7)
	v.SetRotation(0.4)

	// World point under screen (500, 200) before the pan.
	wx, wy := v.ScreenToWorld(500, 200)
	v.PanBy(60, -30)
	// After panning by (60,-30), the same world point sits 60px left and
	// 30px below its old screen position.
	sx, sy := v.WorldToScreen(wx, wy)
	if !approxEqual(sx, 440, 1e-6) || !approxEqual(sy, 230, 1e-6) {
		t.Errorf("after pan: world point at (%f,%f), want (440,230)", sx, sy)
	}
}

// --- ZoomBy ---

func TestZoomByAnchorsCursor(t *testing.T) {
	v := testViewport()
	wx, wy := v.ScreenToWorld(600, 200)
	v.ZoomBy(0.5, 600, 200)

	assertNear(t, "zoom", v.Zoom, 1.5)
	sx, sy := v.WorldToScreen(wx, wy)
	if !approxEqual(sx, 600, 1e-6) || !approxEqual(sy, 200, 1e-6) {
		t.Errorf("anchor drifted to (%f,%f), want (600,200)", sx, sy)
	}
}

func TestZoomByClampsAtLimits(t *testing.T) {
	v := testViewport()
	v.SetZoom(4.0)
	v.ZoomBy(0.5, 400, 300)
	assertNear(t, "zoom at max", v.Zoom, 4.0)

	v.SetZoom(0.1)
	v.ZoomBy(-0.5, 400, 300)
	assertNear(t, "zoom at min", v.Zoom, 0.1)
}

// --- Animation ---

func TestAnimateToCompletes(t *testing.T) {
	v := testViewport()
	v.AnimateTo(100, 200, 2.0, 1.0)
	if !v.Animating() {
		t.Fatal("Animating() = false right after AnimateTo")
	}

	v.update(0.5)
	if !v.Animating() {
		t.Error("animation finished at half time")
	}

	v.update(1.0) // past the end
	if v.Animating() {
		t.Error("Animating() = true after completion")
	}
	if !approxEqual(v.X, 100, 0.5) || !approxEqual(v.Y, 200, 0.5) {
		t.Errorf("final center = (%f,%f), want ~(100,200)", v.X, v.Y)
	}
	if !approxEqual(v.Zoom, 2.0, 0.01) {
		t.Errorf("final zoom = %f, want ~2.0", v.Zoom)
	}
}

func TestAnimateToZeroDurationSnaps(t *testing.T) {
	v := testViewport()
	v.AnimateTo(50, 60, 3.0, 0)
	if v.Animating() {
		t.Error("zero duration should snap, not animate")
	}
	assertNear(t, "X", v.X, 50)
	assertNear(t, "Y", v.Y, 60)
	assertNear(t, "Zoom", v.Zoom, 3.0)
}

func TestManualMoveCancelsAnimation(t *testing.T) {
	v := testViewport()
	v.AnimateTo(100, 100, 2.0, 1.0)
	v.PanBy(10, 0)
	if v.Animating() {
		t.Error("PanBy did not cancel the animation")
	}
}

// --- FitBounds ---

func TestFitBoundsSnap(t *testing.T) {
	v := testViewport()
	v.SetRotation(0.5)
	v.FitBounds(Rect{X: 0, Y: 0, Width: 400, Height: 300}, 0, 0)

	assertNear(t, "X", v.X, 200)
	assertNear(t, "Y", v.Y, 150)
	// 800/400 and 600/300 both give zoom 2.
	assertNear(t, "Zoom", v.Zoom, 2.0)
	assertNear(t, "Rotation", v.Rotation, 0)
}

func TestFitBoundsPadding(t *testing.T) {
	v := testViewport()
	v.FitBounds(Rect{X: 0, Y: 0, Width: 700, Height: 100}, 50, 0)
	// Width limits: (800-100)/700 = 1.
	assertNear(t, "Zoom", v.Zoom, 1.0)
}

func TestFitBoundsClampsZoom(t *testing.T) {
	v := testViewport()
	v.FitBounds(Rect{X: 0, Y: 0, Width: 10, Height: 10}, 0, 0)
	// A tiny rect would need zoom 60; the max wins.
	assertNear(t, "Zoom", v.Zoom, 4.0)
}

func TestFitBoundsIgnoresDegenerate(t *testing.T) {
	v := testViewport()
	v.SetCenter(7, 8)
	v.FitBounds(Rect{}, 0, 0)
	assertNear(t, "X unchanged", v.X, 7)
	assertNear(t, "Y unchanged", v.Y, 8)
}

func TestSetScreenRecentersProjection(t *testing.T) {
	v := testViewport()
	v.SetScreen(Rect{X: 0, Y: 0, Width: 400, Height: 400})
	sx, sy := v.WorldToScreen(0, 0)
	assertNear(t, "sx", sx, 200)
	assertNear(t, "sy", sy, 200)
}

func TestViewportReset(t *testing.T) {
	v := testViewport()
	v.SetCenter(100, 200)
	v.SetZoom(3.0)
	v.SetRotation(1.0)
	v.AnimateTo(500, 500, 0.5, 1.0)

	v.Reset()
	if v.Animating() {
		t.Error("Reset did not cancel the animation")
	}
	assertNear(t, "X", v.X, 0)
	assertNear(t, "Y", v.Y, 0)
	assertNear(t, "Zoom", v.Zoom, 1.0)
	assertNear(t, "Rotation", v.Rotation, 0)
}
