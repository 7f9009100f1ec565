package trellis

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer is one rendering backend. The engine culls and orders the scene,
// then hands each visible connection and node to the active backend between
// Begin and End. Backends may fail per call or per frame; the engine counts
// failures toward its rollback threshold.
type Renderer interface {
	// Name identifies the backend in logs and rollback events.
	Name() string
	// Begin starts a frame onto target using the world-to-screen view
	// matrix. target may be nil, in which case the frame is a no-op.
	Begin(target *ebiten.Image, view [6]float64)
	// DrawNode draws one node at its effective size, centered on the
	// node's world position.
	DrawNode(n *Node, w, h float64, selected bool) error
	// DrawConnection draws the edge between two node centers, given in
	// world coordinates.
	DrawConnection(c *Connection, x1, y1, x2, y2 float64) error
	// End submits any buffered work and reports the draw calls issued.
	End() (drawCalls int, err error)
	// Dispose releases backend-held resources.
	Dispose()
}

// --- Default palette ---

// Styles with zero-value colors or sizes resolve against these defaults, so
// a bare Node{} renders as a legible light box.
var (
	defaultNodeFill   = Color{R: 0.94, G: 0.96, B: 0.99, A: 1}
	defaultNodeStroke = Color{R: 0.42, G: 0.51, B: 0.65, A: 1}
	defaultTextColor  = Color{R: 0.13, G: 0.16, B: 0.22, A: 1}
	defaultConnStroke = Color{R: 0.58, G: 0.63, B: 0.72, A: 1}
	selectionColor    = Color{R: 0.21, G: 0.53, B: 1, A: 1}
)

const (
	defaultFontSize    = 14.0
	defaultStrokeWidth = 1.5
	defaultConnWidth   = 2.0

	// Stroke width floor for selected nodes, so selection reads even on
	// hairline styles.
	selectionStrokeWidth = 2.5
)

// colorUnset reports whether a style color was left at its zero value.
func colorUnset(c Color) bool {
	return c.R == 0 && c.G == 0 && c.B == 0 && c.A == 0
}

// effectiveNodeStyle resolves a node's style against the default palette.
func effectiveNodeStyle(n *Node) NodeStyle {
	st := n.Style
	if colorUnset(st.Fill) {
		st.Fill = defaultNodeFill
	}
	if colorUnset(st.Stroke) {
		st.Stroke = defaultNodeStroke
	}
	if colorUnset(st.TextColor) {
		st.TextColor = defaultTextColor
	}
	if st.StrokeWidth <= 0 {
		st.StrokeWidth = defaultStrokeWidth
	}
	if st.FontSize <= 0 {
		st.FontSize = defaultFontSize
	}
	return st
}

// effectiveConnStyle resolves a connection's style against the defaults.
func effectiveConnStyle(c *Connection) ConnectionStyle {
	st := c.Style
	if colorUnset(st.Stroke) {
		st.Stroke = defaultConnStroke
	}
	if st.Width <= 0 {
		st.Width = defaultConnWidth
	}
	return st
}

// cornerRadius resolves the rounded-rect radius for a node of size w x h.
// Zero means a quarter of the shorter side; any radius is clamped so the
// corner arcs cannot overlap.
func cornerRadius(st *NodeStyle, w, h float64) float64 {
	short := w
	if h < short {
		short = h
	}
	r := st.CornerRadius
	if r <= 0 {
		r = short / 4
	}
	if r > short/2 {
		r = short / 2
	}
	return r
}

// nrgba converts to 8-bit straight-alpha color for APIs taking color.Color.
func (c Color) nrgba() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
