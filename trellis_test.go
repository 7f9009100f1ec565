package trellis

import (
	"image/color"
	"testing"
)

// --- Rect ---

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}

	if !r.Contains(60, 45) {
		t.Error("interior point rejected")
	}
	if !r.Contains(10, 20) || !r.Contains(110, 70) {
		t.Error("edge points count as inside")
	}
	if r.Contains(9.99, 45) || r.Contains(60, 70.01) {
		t.Error("outside point accepted")
	}
}

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	if !a.Intersects(Rect{X: 50, Y: 50, Width: 100, Height: 100}) {
		t.Error("overlapping rects reported disjoint")
	}
	// Sharing only an edge still intersects.
	if !a.Intersects(Rect{X: 100, Y: 0, Width: 50, Height: 100}) {
		t.Error("edge-adjacent rects reported disjoint")
	}
	if a.Intersects(Rect{X: 100.01, Y: 0, Width: 50, Height: 100}) {
		t.Error("separated rects reported intersecting")
	}
	if !a.Intersects(Rect{X: 25, Y: 25, Width: 50, Height: 50}) {
		t.Error("contained rect reported disjoint")
	}
}

func TestRectContainsRect(t *testing.T) {
	outer := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	if !outer.ContainsRect(Rect{X: 10, Y: 10, Width: 50, Height: 50}) {
		t.Error("inner rect rejected")
	}
	if !outer.ContainsRect(outer) {
		t.Error("a rect contains itself")
	}
	if outer.ContainsRect(Rect{X: 60, Y: 60, Width: 50, Height: 50}) {
		t.Error("overhanging rect accepted")
	}
}

func TestRectExpand(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}.Expand(5)
	assertNear(t, "X", r.X, 5)
	assertNear(t, "Y", r.Y, 15)
	assertNear(t, "Width", r.Width, 110)
	assertNear(t, "Height", r.Height, 60)
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 50, Height: 50}
	b := Rect{X: 100, Y: 25, Width: 20, Height: 50}

	u := a.Union(b)
	assertNear(t, "X", u.X, 0)
	assertNear(t, "Y", u.Y, 0)
	assertNear(t, "Width", u.Width, 120)
	assertNear(t, "Height", u.Height, 75)

	// Union with a contained rect is a no-op.
	v := u.Union(a)
	if v != u {
		t.Errorf("Union with contained rect = %+v, want %+v", v, u)
	}
}

func TestRectCenter(t *testing.T) {
	c := Rect{X: 10, Y: 20, Width: 100, Height: 50}.Center()
	assertNear(t, "X", c.X, 60)
	assertNear(t, "Y", c.Y, 45)
}

// --- Colors ---

func TestColorNRGBA(t *testing.T) {
	got := Color{R: 1, G: 0.5, B: 0, A: 1}.nrgba()
	want := color.NRGBA{R: 255, G: 128, B: 0, A: 255}
	if got != want {
		t.Errorf("nrgba = %+v, want %+v", got, want)
	}

	// Out-of-range components clamp instead of wrapping.
	hot := Color{R: 2, G: -1, B: 0, A: 1}.nrgba()
	if hot.R != 255 || hot.G != 0 {
		t.Errorf("clamped nrgba = %+v, want R=255 G=0", hot)
	}
}

func TestColorUnset(t *testing.T) {
	if !colorUnset(Color{}) {
		t.Error("zero color is unset")
	}
	if colorUnset(Color{A: 1}) || colorUnset(ColorWhite) {
		t.Error("non-zero color reported unset")
	}
}

// --- Modifiers and states ---

func TestKeyModifiersMultiSelect(t *testing.T) {
	if !ModCtrl.multiSelect() || !ModMeta.multiSelect() {
		t.Error("ctrl and meta request additive selection")
	}
	if ModShift.multiSelect() || ModAlt.multiSelect() || KeyModifiers(0).multiSelect() {
		t.Error("shift, alt, and none must not")
	}
	if !(ModShift | ModCtrl).multiSelect() {
		t.Error("combined mask containing ctrl rejected")
	}
}

func TestBackendStateString(t *testing.T) {
	cases := map[BackendState]string{
		BackendHealthy:    "healthy",
		BackendDegraded:   "degraded",
		BackendRolledBack: "rolledback",
		BackendState(99):  "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("String(%d) = %q, want %q", state, got, want)
		}
	}
}

// --- Connection geometry ---

func TestConnControlPointBulgesPerpendicular(t *testing.T) {
	// A horizontal edge bulges straight down (Y grows downward).
	cx, cy := connControlPoint(0, 0, 100, 0)
	assertNear(t, "cx", cx, 50)
	assertNear(t, "cy", cy, 18)

	// Long edges cap the bulge.
	_, far := connControlPoint(0, 0, 1000, 0)
	assertNear(t, "far bulge", far, 48)

	// Degenerate edges collapse to their midpoint.
	mx, my := connControlPoint(5, 5, 5, 5)
	assertNear(t, "mx", mx, 5)
	assertNear(t, "my", my, 5)
}

func TestCornerRadius(t *testing.T) {
	st := NodeStyle{}
	// Default: a quarter of the short side.
	assertNear(t, "default", cornerRadius(&st, 120, 48), 12)

	st.CornerRadius = 100
	// Explicit radii clamp to half the short side.
	assertNear(t, "clamped", cornerRadius(&st, 120, 48), 24)

	st.CornerRadius = 6
	assertNear(t, "explicit", cornerRadius(&st, 120, 48), 6)
}
