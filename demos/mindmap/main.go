// Mindmap is an interactive node-link editor. Double-click the canvas to
// plant a root idea, double-click a node to grow a child, drag nodes to
// rearrange, drag the canvas to pan, and scroll to zoom. Right-click prunes
// a node and its whole subtree.
//
// Keys: Tab adds a child to each selected node, Delete removes the
// selection, F frames the whole map, E writes mindmap.png next to the
// binary.
package main

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/trellis"
)

const (
	windowTitle = "Trellis - Mind Map"
	screenW     = 1280
	screenH     = 720
)

// depthFills colors nodes by their distance from a root, cycling when the
// map grows deeper than the palette.
var depthFills = []trellis.Color{
	{R: 0.357, G: 0.475, B: 0.851, A: 1}, // indigo
	{R: 0.290, G: 0.659, B: 0.537, A: 1}, // teal
	{R: 0.851, G: 0.600, B: 0.302, A: 1}, // amber
	{R: 0.788, G: 0.427, B: 0.525, A: 1}, // rose
}

func main() {
	cfg := trellis.DefaultConfig()
	cfg.Background = trellis.Color{R: 0.102, G: 0.110, B: 0.141, A: 1}

	e := trellis.NewEngine(screenW, screenH, cfg)
	seed(e)
	e.Flush()
	e.FitContent(120, 0)

	e.OnNodeDoubleClick(func(ev trellis.NodeEvent) {
		growChild(e, ev.NodeID)
	})
	e.OnCanvasDoubleClick(func(ev trellis.CanvasEvent) {
		e.CreateNode(trellis.Node{
			Text:  "new idea",
			X:     ev.WorldX,
			Y:     ev.WorldY,
			Style: styleFor(0),
		})
	})
	e.OnNodeContextMenu(func(ev trellis.NodeEvent) {
		e.DeleteNode(ev.NodeID)
	})

	err := trellis.Run(e, trellis.RunConfig{
		Title:     windowTitle,
		Width:     screenW,
		Height:    screenH,
		Resizable: true,
		ShowDebug: true,
		OnUpdate: func() error {
			if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
				for _, id := range e.Selection() {
					growChild(e, id)
				}
			}
			if inpututil.IsKeyJustPressed(ebiten.KeyDelete) ||
				inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
				for _, id := range e.Selection() {
					e.DeleteNode(id)
				}
			}
			if inpututil.IsKeyJustPressed(ebiten.KeyF) {
				e.FitContent(120, 0.4)
			}
			if inpututil.IsKeyJustPressed(ebiten.KeyE) {
				exportPNG(e)
			}
			return nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}

// seed builds a small starter map so the canvas is not empty on launch.
func seed(e *trellis.Engine) {
	root := e.CreateNode(trellis.Node{Text: "trellis", Style: styleFor(0)})
	topics := []string{"gestures", "batching", "health", "export"}
	for i, text := range topics {
		angle := float64(i)/float64(len(topics))*2*math.Pi - math.Pi/2
		e.CreateNode(trellis.Node{
			Text:     text,
			X:        math.Cos(angle) * 320,
			Y:        math.Sin(angle) * 220,
			Style:    styleFor(1),
			ParentID: root,
		})
	}
}

// growChild adds a node near its parent, fanned out a little so siblings
// do not pile onto the same spot.
func growChild(e *trellis.Engine, parentID string) {
	parent, ok := e.Node(parentID)
	if !ok {
		return
	}
	angle := rand.Float64() * 2 * math.Pi
	e.CreateNode(trellis.Node{
		Text:     "new idea",
		X:        parent.X + math.Cos(angle)*260,
		Y:        parent.Y + math.Sin(angle)*180,
		Style:    styleFor(depth(e, parentID)+1),
		ParentID: parentID,
	})
}

// depth walks ParentID links up to a root. The map stays shallow enough
// that the linear walk never matters.
func depth(e *trellis.Engine, id string) int {
	d := 0
	for {
		n, ok := e.Node(id)
		if !ok || n.ParentID == "" {
			return d
		}
		id = n.ParentID
		d++
	}
}

func styleFor(depth int) trellis.NodeStyle {
	fill := depthFills[depth%len(depthFills)]
	return trellis.NodeStyle{
		Fill:      fill,
		Stroke:    trellis.Color{R: 0.08, G: 0.08, B: 0.10, A: 1},
		TextColor: trellis.Color{R: 1, G: 1, B: 1, A: 1},
		Shape:     trellis.ShapeRoundedRect,
	}
}

func exportPNG(e *trellis.Engine) {
	data, err := e.Export(trellis.ExportOptions{Format: "png", Scale: 2})
	if err != nil {
		log.Printf("export: %v", err)
		return
	}
	if err := os.WriteFile("mindmap.png", data, 0o644); err != nil {
		log.Printf("export: %v", err)
		return
	}
	fmt.Printf("wrote mindmap.png (%d bytes)\n", len(data))
}
