package trellis

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- White pixel singleton (no sync.Once, trellis is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Untextured geometry samples its center so vertex colors pass through
// unchanged.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// BatchRenderer is the primary backend. It tessellates every visible
// connection and node into a single vertex stream, transformed to screen
// space on the CPU, and submits the whole frame's geometry with one
// DrawTriangles32 call. Labels follow as one text draw per labeled node.
type BatchRenderer struct {
	target *ebiten.Image
	view   [6]float64
	zoom   float64

	verts []ebiten.Vertex
	inds  []uint32

	labels []labelDraw

	// Geometry scratch, reused across draws and frames.
	outline []Vec2
	curve   []Vec2
}

// labelDraw is a queued node label. Text renders after geometry so no box
// can paint over a neighbor's label.
type labelDraw struct {
	text   string
	size   float64
	clr    Color
	cx, cy float64
}

// NewBatchRenderer returns the batching backend.
func NewBatchRenderer() *BatchRenderer {
	return &BatchRenderer{}
}

// Name implements Renderer.
func (r *BatchRenderer) Name() string { return "batch" }

// Begin implements Renderer.
func (r *BatchRenderer) Begin(target *ebiten.Image, view [6]float64) {
	r.target = target
	r.view = view
	r.zoom = math.Hypot(view[0], view[1])
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	r.labels = r.labels[:0]
}

// DrawNode implements Renderer.
func (r *BatchRenderer) DrawNode(n *Node, w, h float64, selected bool) error {
	st := effectiveNodeStyle(n)
	halfW, halfH := w/2, h/2

	switch st.Shape {
	case ShapeEllipse:
		r.outline = appendEllipse(r.outline[:0], n.X, n.Y, halfW, halfH, ellipseSegments)
	case ShapeRect:
		r.outline = append(r.outline[:0],
			Vec2{X: n.X - halfW, Y: n.Y - halfH},
			Vec2{X: n.X + halfW, Y: n.Y - halfH},
			Vec2{X: n.X + halfW, Y: n.Y + halfH},
			Vec2{X: n.X - halfW, Y: n.Y + halfH},
		)
	default:
		cr := cornerRadius(&st, w, h)
		r.outline = appendRoundedRect(r.outline[:0], n.X, n.Y, halfW, halfH, cr)
	}

	r.fillPolygon(r.outline, st.Fill)

	strokeClr := st.Stroke
	strokeW := st.StrokeWidth
	if selected {
		strokeClr = selectionColor
		if strokeW < selectionStrokeWidth {
			strokeW = selectionStrokeWidth
		}
	}
	r.strokePolygon(r.outline, strokeW, strokeClr)

	if n.Text != "" {
		sx, sy := transformPoint(r.view, n.X, n.Y)
		r.labels = append(r.labels, labelDraw{
			text: n.Text,
			size: st.FontSize,
			clr:  st.TextColor,
			cx:   sx,
			cy:   sy,
		})
	}
	return nil
}

// DrawConnection implements Renderer.
func (r *BatchRenderer) DrawConnection(c *Connection, x1, y1, x2, y2 float64) error {
	st := effectiveConnStyle(c)
	if st.Curved {
		cx, cy := connControlPoint(x1, y1, x2, y2)
		r.curve = appendQuadBezier(r.curve[:0],
			Vec2{X: x1, Y: y1}, Vec2{X: cx, Y: cy}, Vec2{X: x2, Y: y2}, curveSegments)
	} else {
		r.curve = append(r.curve[:0], Vec2{X: x1, Y: y1}, Vec2{X: x2, Y: y2})
	}
	r.strokePolyline(r.curve, st.Width, st.Stroke)
	return nil
}

// End implements Renderer.
func (r *BatchRenderer) End() (int, error) {
	target := r.target
	r.target = nil
	if target == nil {
		return 0, nil
	}

	calls := 0
	if len(r.inds) > 0 {
		var triOp ebiten.DrawTrianglesOptions
		triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		triOp.AntiAlias = true
		target.DrawTriangles32(r.verts, r.inds, ensureWhitePixel(), &triOp)
		calls++
	}
	for _, l := range r.labels {
		drawLabel(target, l.text, l.size, l.clr, l.cx, l.cy, r.zoom)
		calls++
	}
	return calls, nil
}

// Dispose implements Renderer. The white pixel is shared between backends
// and stays allocated.
func (r *BatchRenderer) Dispose() {
	r.verts = nil
	r.inds = nil
	r.labels = nil
	r.outline = nil
	r.curve = nil
}

// --- Tessellation ---

// appendVertex pushes one screen-space vertex carrying a premultiplied
// color, sampling the white pixel's center.
func (r *BatchRenderer) appendVertex(wx, wy float64, cr, cg, cb, ca float32) {
	sx, sy := transformPoint(r.view, wx, wy)
	r.verts = append(r.verts, ebiten.Vertex{
		DstX:   float32(sx),
		DstY:   float32(sy),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: cr,
		ColorG: cg,
		ColorB: cb,
		ColorA: ca,
	})
}

// fillPolygon appends a triangle fan over a convex outline.
func (r *BatchRenderer) fillPolygon(pts []Vec2, clr Color) {
	if len(pts) < 3 {
		return
	}
	cr, cg, cb, ca := premultiply(clr)
	base := uint32(len(r.verts))
	for _, p := range pts {
		r.appendVertex(p.X, p.Y, cr, cg, cb, ca)
	}
	for i := 1; i < len(pts)-1; i++ {
		r.inds = append(r.inds, base, base+uint32(i), base+uint32(i+1))
	}
}

// strokePolygon appends a closed ribbon of the given width centered on the
// outline.
func (r *BatchRenderer) strokePolygon(pts []Vec2, width float64, clr Color) {
	n := len(pts)
	if n < 3 || width <= 0 {
		return
	}
	half := width / 2
	cr, cg, cb, ca := premultiply(clr)
	base := uint32(len(r.verts))

	for i := 0; i < n; i++ {
		prev := pts[(i-1+n)%n]
		next := pts[(i+1)%n]
		nx0, ny0 := perpendicular(prev, pts[i])
		nx1, ny1 := perpendicular(pts[i], next)
		nx, ny := nx0+nx1, ny0+ny1
		ln := math.Sqrt(nx*nx + ny*ny)
		if ln > 1e-10 {
			nx /= ln
			ny /= ln
		} else {
			nx, ny = nx1, ny1
		}
		dot := nx0*nx + ny0*ny
		if dot > 0.1 {
			scale := 1.0 / dot
			if scale > 2.0 {
				scale = 2.0
			}
			nx *= scale
			ny *= scale
		}
		r.appendVertex(pts[i].X+nx*half, pts[i].Y+ny*half, cr, cg, cb, ca)
		r.appendVertex(pts[i].X-nx*half, pts[i].Y-ny*half, cr, cg, cb, ca)
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a := base + uint32(2*i)
		b := base + uint32(2*i+1)
		c := base + uint32(2*j)
		d := base + uint32(2*j+1)
		r.inds = append(r.inds, a, c, b, c, d, b)
	}
}

// strokePolyline appends an open ribbon of the given width along pts:
// 2N vertices, 6(N-1) indices, miter joins at interior points.
func (r *BatchRenderer) strokePolyline(pts []Vec2, width float64, clr Color) {
	n := len(pts)
	if n < 2 || width <= 0 {
		return
	}
	half := width / 2
	cr, cg, cb, ca := premultiply(clr)
	base := uint32(len(r.verts))

	for i := 0; i < n; i++ {
		nx, ny := miterNormal(pts, i)
		r.appendVertex(pts[i].X+nx*half, pts[i].Y+ny*half, cr, cg, cb, ca)
		r.appendVertex(pts[i].X-nx*half, pts[i].Y-ny*half, cr, cg, cb, ca)
	}
	for i := 0; i < n-1; i++ {
		a := base + uint32(2*i)
		b := base + uint32(2*i+1)
		c := base + uint32(2*i+2)
		d := base + uint32(2*i+3)
		r.inds = append(r.inds, a, c, b, c, d, b)
	}
}

// premultiply converts a straight-alpha Color to premultiplied float32
// channels for ebiten.Vertex.
func premultiply(clr Color) (r, g, b, a float32) {
	a = float32(clr.A)
	return float32(clr.R) * a, float32(clr.G) * a, float32(clr.B) * a, a
}
