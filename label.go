package trellis

import (
	"bytes"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// Padding between a node's border and its label, in world units. Auto-sized
// nodes grow to the measured label plus this margin.
const (
	labelPadX = 12.0
	labelPadY = 8.0
)

// --- Face singleton (no sync.Once, trellis is single-threaded) ---

var labelFaceSource *text.GoTextFaceSource

// ensureLabelSource parses the embedded Go Regular face on first use.
func ensureLabelSource() *text.GoTextFaceSource {
	if labelFaceSource == nil {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			// The face is compiled into the binary; failing to parse it
			// is a build defect, not a runtime condition.
			panic(fmt.Sprintf("trellis: parse embedded font: %v", err))
		}
		labelFaceSource = src
	}
	return labelFaceSource
}

// labelFace returns a face for the given pixel size.
func labelFace(size float64) *text.GoTextFace {
	return &text.GoTextFace{
		Source: ensureLabelSource(),
		Size:   size,
	}
}

// labelLineHeight returns the baseline-to-baseline distance for a face.
func labelLineHeight(face *text.GoTextFace) float64 {
	m := face.Metrics()
	return m.HAscent + m.HDescent + m.HLineGap
}

// measureLabel returns the rendered size of s at the given font size.
// Newlines produce multiple lines.
func measureLabel(s string, size float64) (w, h float64) {
	if s == "" {
		return 0, 0
	}
	face := labelFace(size)
	return text.Measure(s, face, labelLineHeight(face))
}

// drawLabel draws s onto dst with its center at screen point (cx, cy),
// scaled by the viewport zoom.
func drawLabel(dst *ebiten.Image, s string, size float64, clr Color, cx, cy, zoom float64) {
	if s == "" || dst == nil {
		return
	}
	face := labelFace(size)
	lh := labelLineHeight(face)
	w, h := text.Measure(s, face, lh)

	op := &text.DrawOptions{}
	op.GeoM.Scale(zoom, zoom)
	op.GeoM.Translate(cx-w/2*zoom, cy-h/2*zoom)
	op.LineSpacing = lh
	op.ColorScale.Scale(float32(clr.R), float32(clr.G), float32(clr.B), float32(clr.A))
	text.Draw(dst, s, face, op)
}
