package trellis

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- multiplyAffine ---

func TestMultiplyIdentity(t *testing.T) {
	m := [6]float64{2, 0.5, -0.5, 2, 10, 20}
	assertMatrix(t, "I*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*I", multiplyAffine(m, identityTransform), m)
}

func TestMultiplyTranslateScale(t *testing.T) {
	translate := [6]float64{1, 0, 0, 1, 10, 20}
	scale := [6]float64{2, 0, 0, 2, 0, 0}

	// parent*child applies the child first: scale then translate.
	m := multiplyAffine(translate, scale)
	x, y := transformPoint(m, 1, 1)
	assertNear(t, "x", x, 12)
	assertNear(t, "y", y, 22)

	// The other order translates first, then scales the translation too.
	m = multiplyAffine(scale, translate)
	x, y = transformPoint(m, 1, 1)
	assertNear(t, "x", x, 22)
	assertNear(t, "y", y, 42)
}

func TestMultiplyRotation(t *testing.T) {
	cos := math.Cos(math.Pi / 2)
	sin := math.Sin(math.Pi / 2)
	rot := [6]float64{cos, sin, -sin, cos, 0, 0}

	// 90° then another 90° is a 180° rotation.
	m := multiplyAffine(rot, rot)
	x, y := transformPoint(m, 1, 0)
	assertNear(t, "x", x, -1)
	assertNear(t, "y", y, 0)
}

// --- invertAffine ---

func TestInvertRoundtrip(t *testing.T) {
	cos := math.Cos(0.7)
	sin := math.Sin(0.7)
	m := [6]float64{1.5 * cos, 1.5 * sin, -1.5 * sin, 1.5 * cos, 42, -17}

	assertMatrix(t, "m*inv(m)", multiplyAffine(m, invertAffine(m)), identityTransform)
	assertMatrix(t, "inv(m)*m", multiplyAffine(invertAffine(m), m), identityTransform)
}

func TestInvertTranslation(t *testing.T) {
	m := [6]float64{1, 0, 0, 1, 100, 200}
	inv := invertAffine(m)
	x, y := transformPoint(inv, 100, 200)
	assertNear(t, "x", x, 0)
	assertNear(t, "y", y, 0)
}

func TestInvertSingular(t *testing.T) {
	// Zero determinant collapses everything onto a line; the inverse falls
	// back to the identity instead of producing NaNs.
	m := [6]float64{0, 0, 0, 0, 5, 5}
	assertMatrix(t, "inv(singular)", invertAffine(m), identityTransform)
}

// --- transformPoint ---

func TestTransformPoint(t *testing.T) {
	m := [6]float64{2, 0, 0, 3, 10, -5}
	x, y := transformPoint(m, 4, 2)
	assertNear(t, "x", x, 18)
	assertNear(t, "y", y, 1)
}

// --- transformAABB ---

func TestTransformAABBIdentity(t *testing.T) {
	r := transformAABB(identityTransform, Rect{X: 10, Y: 20, Width: 64, Height: 48})
	assertNear(t, "X", r.X, 10)
	assertNear(t, "Y", r.Y, 20)
	assertNear(t, "Width", r.Width, 64)
	assertNear(t, "Height", r.Height, 48)
}

func TestTransformAABBTranslated(t *testing.T) {
	m := [6]float64{1, 0, 0, 1, 100, 200}
	r := transformAABB(m, Rect{X: 0, Y: 0, Width: 32, Height: 32})
	assertNear(t, "X", r.X, 100)
	assertNear(t, "Y", r.Y, 200)
}

func TestTransformAABBRotated(t *testing.T) {
	// A 100x100 rect rotated 45° has an AABB of roughly 141x141.
	cos45 := math.Cos(math.Pi / 4)
	sin45 := math.Sin(math.Pi / 4)
	m := [6]float64{cos45, sin45, -sin45, cos45, 0, 0}
	r := transformAABB(m, Rect{X: 0, Y: 0, Width: 100, Height: 100})

	want := 100 * math.Sqrt(2)
	if math.Abs(r.Width-want) > 0.01 || math.Abs(r.Height-want) > 0.01 {
		t.Errorf("rotated AABB size = (%f,%f), want ~(%f,%f)", r.Width, r.Height, want, want)
	}
}

// --- Benchmarks ---

func BenchmarkMultiplyAffine(b *testing.B) {
	p := [6]float64{0.866, 0.5, -0.5, 0.866, 100, 200}
	c := [6]float64{2, 0, 0, 2, -50, 75}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = multiplyAffine(p, c)
	}
}

func BenchmarkTransformAABB(b *testing.B) {
	m := [6]float64{0.866, 0.5, -0.5, 0.866, 100, 200}
	r := Rect{X: -32, Y: -32, Width: 64, Height: 64}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = transformAABB(m, r)
	}
}
