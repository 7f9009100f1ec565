package trellis

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// VectorRenderer is the fallback backend. It issues one immediate-mode
// vector call per shape with no shared buffers or tessellation state, so a
// fault in one draw cannot poison the rest of the frame. Visuals degrade
// on purpose: rounded corners flatten to rectangles, ellipses become
// inscribed circles, curved connections draw as straight lines, and
// viewport rotation is ignored for node boxes.
type VectorRenderer struct {
	target *ebiten.Image
	view   [6]float64
	zoom   float64
	calls  int
}

// NewVectorRenderer returns the immediate-mode fallback backend.
func NewVectorRenderer() *VectorRenderer {
	return &VectorRenderer{}
}

// Name implements Renderer.
func (r *VectorRenderer) Name() string { return "vector" }

// Begin implements Renderer.
func (r *VectorRenderer) Begin(target *ebiten.Image, view [6]float64) {
	r.target = target
	r.view = view
	r.zoom = math.Hypot(view[0], view[1])
	r.calls = 0
}

// DrawNode implements Renderer.
func (r *VectorRenderer) DrawNode(n *Node, w, h float64, selected bool) error {
	if r.target == nil {
		return nil
	}
	st := effectiveNodeStyle(n)
	cx, cy := transformPoint(r.view, n.X, n.Y)

	strokeClr := st.Stroke
	strokeW := st.StrokeWidth
	if selected {
		strokeClr = selectionColor
		if strokeW < selectionStrokeWidth {
			strokeW = selectionStrokeWidth
		}
	}
	sw := float32(strokeW * r.zoom)

	if st.Shape == ShapeEllipse {
		radius := float32(math.Min(w, h) / 2 * r.zoom)
		vector.DrawFilledCircle(r.target, float32(cx), float32(cy), radius, st.Fill.nrgba(), true)
		vector.StrokeCircle(r.target, float32(cx), float32(cy), radius, sw, strokeClr.nrgba(), true)
	} else {
		bw := float32(w * r.zoom)
		bh := float32(h * r.zoom)
		x := float32(cx) - bw/2
		y := float32(cy) - bh/2
		vector.DrawFilledRect(r.target, x, y, bw, bh, st.Fill.nrgba(), true)
		vector.StrokeRect(r.target, x, y, bw, bh, sw, strokeClr.nrgba(), true)
	}
	r.calls += 2

	if n.Text != "" {
		drawLabel(r.target, n.Text, st.FontSize, st.TextColor, cx, cy, r.zoom)
		r.calls++
	}
	return nil
}

// DrawConnection implements Renderer.
func (r *VectorRenderer) DrawConnection(c *Connection, x1, y1, x2, y2 float64) error {
	if r.target == nil {
		return nil
	}
	st := effectiveConnStyle(c)
	ax, ay := transformPoint(r.view, x1, y1)
	bx, by := transformPoint(r.view, x2, y2)
	vector.StrokeLine(r.target, float32(ax), float32(ay), float32(bx), float32(by),
		float32(st.Width*r.zoom), st.Stroke.nrgba(), true)
	r.calls++
	return nil
}

// End implements Renderer.
func (r *VectorRenderer) End() (int, error) {
	r.target = nil
	return r.calls, nil
}

// Dispose implements Renderer.
func (r *VectorRenderer) Dispose() {}
