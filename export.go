package trellis

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrUnknownFormat is returned by Export for an unrecognized format name.
var ErrUnknownFormat = errors.New("trellis: unknown export format")

// ExportOptions selects the output encoding of Engine.Export.
type ExportOptions struct {
	// Format is "png", "jpeg" (or "jpg"), or "svg". Empty selects png.
	Format string
	// Quality is the jpeg quality, 1 to 100. Zero selects 90.
	Quality int
	// Background fills the canvas before drawing. The zero color selects
	// white.
	Background Color
	// Scale multiplies the output resolution. Zero selects 1.
	Scale float64
	// Padding is the margin around the content in world units. Zero
	// selects 40.
	Padding float64
}

// exportFallbackBounds frames an empty scene so exports always produce a
// valid document.
var exportFallbackBounds = Rect{X: -100, Y: -75, Width: 200, Height: 150}

// Export renders the whole scene, not the current viewport, to an encoded
// image or SVG document. Rendering happens on the CPU from scene data; the
// live drawing surface is never read back, so exporting cannot stall the
// frame loop.
func (e *Engine) Export(opts ExportOptions) ([]byte, error) {
	if e.destroyed {
		return nil, ErrDestroyed
	}
	e.batcher.ForceFlush()

	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "png"
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Quality <= 0 {
		opts.Quality = 90
	}
	if opts.Padding <= 0 {
		opts.Padding = 40
	}
	if colorUnset(opts.Background) {
		opts.Background = ColorWhite
	}

	bounds, ok := e.scene.contentBounds(e.nodeSize)
	if !ok {
		bounds = exportFallbackBounds
	}
	bounds = bounds.Expand(opts.Padding)

	switch format {
	case "png", "jpeg", "jpg":
		return e.exportRaster(format, bounds, opts)
	case "svg":
		return e.exportSVG(bounds, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

// exportView builds the world-to-output transform for a framed region.
// Export code transforms coordinates itself rather than leaning on the
// drawing library's matrix stack, so raster and SVG output line up exactly.
func exportView(bounds Rect, scale float64) [6]float64 {
	return [6]float64{scale, 0, 0, scale, -bounds.X * scale, -bounds.Y * scale}
}

func exportPixelSize(bounds Rect, scale float64) (int, int) {
	w := int(math.Ceil(bounds.Width * scale))
	h := int(math.Ceil(bounds.Height * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// --- Raster (gg) ---

func (e *Engine) exportRaster(format string, bounds Rect, opts ExportOptions) ([]byte, error) {
	w, h := exportPixelSize(bounds, opts.Scale)
	view := exportView(bounds, opts.Scale)

	dc := gg.NewContext(w, h)
	bg := opts.Background
	dc.SetRGBA(bg.R, bg.G, bg.B, bg.A)
	dc.Clear()

	fnt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("trellis: parse export font: %w", err)
	}
	// One face per font size, rasterized at output resolution.
	faces := make(map[float64]font.Face)
	faceFor := func(size float64) font.Face {
		px := size * opts.Scale
		if f, ok := faces[px]; ok {
			return f
		}
		f := truetype.NewFace(fnt, &truetype.Options{Size: px})
		faces[px] = f
		return f
	}

	// Connections first, then nodes in draw order, matching the live
	// backends.
	for _, cid := range e.scene.connOrder {
		c, ok := e.scene.conn(cid)
		if !ok {
			continue
		}
		parent, ok1 := e.scene.node(c.ParentID)
		child, ok2 := e.scene.node(c.ChildID)
		if !ok1 || !ok2 {
			continue
		}
		st := effectiveConnStyle(c)
		x1, y1 := transformPoint(view, parent.X, parent.Y)
		x2, y2 := transformPoint(view, child.X, child.Y)

		dc.SetRGBA(st.Stroke.R, st.Stroke.G, st.Stroke.B, st.Stroke.A)
		dc.SetLineWidth(st.Width * opts.Scale)
		dc.MoveTo(x1, y1)
		if st.Curved {
			cpx, cpy := connControlPoint(parent.X, parent.Y, child.X, child.Y)
			cx, cy := transformPoint(view, cpx, cpy)
			dc.QuadraticTo(cx, cy, x2, y2)
		} else {
			dc.LineTo(x2, y2)
		}
		dc.Stroke()
	}

	for _, nid := range e.scene.nodeOrder {
		n, ok := e.scene.node(nid)
		if !ok {
			continue
		}
		nw, nh := e.nodeSize(n)
		st := effectiveNodeStyle(n)
		cx, cy := transformPoint(view, n.X, n.Y)
		bw := nw * opts.Scale
		bh := nh * opts.Scale

		switch st.Shape {
		case ShapeEllipse:
			dc.DrawEllipse(cx, cy, bw/2, bh/2)
		case ShapeRect:
			dc.DrawRectangle(cx-bw/2, cy-bh/2, bw, bh)
		default:
			cr := cornerRadius(&st, nw, nh) * opts.Scale
			dc.DrawRoundedRectangle(cx-bw/2, cy-bh/2, bw, bh, cr)
		}
		dc.SetRGBA(st.Fill.R, st.Fill.G, st.Fill.B, st.Fill.A)
		dc.FillPreserve()
		dc.SetRGBA(st.Stroke.R, st.Stroke.G, st.Stroke.B, st.Stroke.A)
		dc.SetLineWidth(st.StrokeWidth * opts.Scale)
		dc.Stroke()

		if n.Text != "" {
			dc.SetFontFace(faceFor(st.FontSize))
			dc.SetRGBA(st.TextColor.R, st.TextColor.G, st.TextColor.B, st.TextColor.A)
			lines := strings.Split(n.Text, "\n")
			lh := st.FontSize * 1.25 * opts.Scale
			top := cy - lh*float64(len(lines)-1)/2
			for i, line := range lines {
				dc.DrawStringAnchored(line, cx, top+lh*float64(i), 0.5, 0.35)
			}
		}
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := dc.EncodePNG(&buf); err != nil {
			return nil, fmt.Errorf("trellis: encode png: %w", err)
		}
	default:
		if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: opts.Quality}); err != nil {
			return nil, fmt.Errorf("trellis: encode jpeg: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// --- SVG (svgo) ---

func (e *Engine) exportSVG(bounds Rect, opts ExportOptions) ([]byte, error) {
	w, h := exportPixelSize(bounds, opts.Scale)
	view := exportView(bounds, opts.Scale)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h)
	canvas.Rect(0, 0, w, h, "fill:"+svgRGB(opts.Background))

	for _, cid := range e.scene.connOrder {
		c, ok := e.scene.conn(cid)
		if !ok {
			continue
		}
		parent, ok1 := e.scene.node(c.ParentID)
		child, ok2 := e.scene.node(c.ChildID)
		if !ok1 || !ok2 {
			continue
		}
		st := effectiveConnStyle(c)
		x1, y1 := transformPoint(view, parent.X, parent.Y)
		x2, y2 := transformPoint(view, child.X, child.Y)
		style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f",
			svgRGB(st.Stroke), st.Width*opts.Scale)

		if st.Curved {
			cpx, cpy := connControlPoint(parent.X, parent.Y, child.X, child.Y)
			cx, cy := transformPoint(view, cpx, cpy)
			canvas.Path(fmt.Sprintf("M%.1f %.1f Q%.1f %.1f %.1f %.1f", x1, y1, cx, cy, x2, y2), style)
		} else {
			canvas.Line(round(x1), round(y1), round(x2), round(y2), style)
		}
	}

	for _, nid := range e.scene.nodeOrder {
		n, ok := e.scene.node(nid)
		if !ok {
			continue
		}
		nw, nh := e.nodeSize(n)
		st := effectiveNodeStyle(n)
		cx, cy := transformPoint(view, n.X, n.Y)
		bw := nw * opts.Scale
		bh := nh * opts.Scale
		style := fmt.Sprintf("fill:%s;fill-opacity:%.2f;stroke:%s;stroke-width:%.2f",
			svgRGB(st.Fill), clamp01(st.Fill.A), svgRGB(st.Stroke), st.StrokeWidth*opts.Scale)

		switch st.Shape {
		case ShapeEllipse:
			canvas.Ellipse(round(cx), round(cy), round(bw/2), round(bh/2), style)
		case ShapeRect:
			canvas.Rect(round(cx-bw/2), round(cy-bh/2), round(bw), round(bh), style)
		default:
			cr := cornerRadius(&st, nw, nh) * opts.Scale
			canvas.Roundrect(round(cx-bw/2), round(cy-bh/2), round(bw), round(bh),
				round(cr), round(cr), style)
		}

		if n.Text != "" {
			size := st.FontSize * opts.Scale
			textStyle := fmt.Sprintf(
				"font-family:sans-serif;font-size:%.1fpx;fill:%s;text-anchor:middle",
				size, svgRGB(st.TextColor))
			lines := strings.Split(n.Text, "\n")
			lh := size * 1.25
			top := cy - lh*float64(len(lines)-1)/2
			for i, line := range lines {
				// Shift the anchor so the text block centers vertically.
				canvas.Text(round(cx), round(top+lh*float64(i)+size*0.35), line, textStyle)
			}
		}
	}

	canvas.End()
	return buf.Bytes(), nil
}

// svgRGB formats a color for an SVG style attribute. Alpha is carried
// separately via *-opacity properties.
func svgRGB(c Color) string {
	n := c.nrgba()
	return fmt.Sprintf("rgb(%d,%d,%d)", n.R, n.G, n.B)
}

func round(v float64) int {
	return int(math.Round(v))
}
