// Stress spawns a few thousand connected nodes laid out on a spiral and
// keeps waves of them tweening to jittered positions, as a load test for
// the culling, batching, and health sampling paths. A health summary is
// printed every five seconds.
//
// Keys: F frames the whole web, Space pauses the animation waves.
package main

import (
	"fmt"
	"log"
	"math"
	"math/bits"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/trellis"
	"github.com/tanema/gween/ease"
)

const (
	windowTitle = "Trellis - Stress"
	screenW     = 1280
	screenH     = 720

	nodeCount  = 3000
	goldenStep = 2.399963229728653
	waveEvery  = 90  // frames between animation waves
	waveSize   = 250 // nodes per wave
	jitter     = 70.0
)

var ringFills = []trellis.Color{
	{R: 0.357, G: 0.475, B: 0.851, A: 1},
	{R: 0.290, G: 0.659, B: 0.537, A: 1},
	{R: 0.851, G: 0.600, B: 0.302, A: 1},
	{R: 0.788, G: 0.427, B: 0.525, A: 1},
	{R: 0.545, G: 0.416, B: 0.753, A: 1},
}

func main() {
	cfg := trellis.DefaultConfig()
	cfg.Background = trellis.Color{R: 0.06, G: 0.06, B: 0.09, A: 1}
	cfg.BatchSize = 500
	cfg.DefaultNodeWidth = 60
	cfg.DefaultNodeHeight = 28

	e := trellis.NewEngine(screenW, screenH, cfg)

	// Sunflower spiral. Parenting each node to the one at half its index
	// gives a binary fan of connections across the whole web.
	ids := make([]string, nodeCount)
	homeX := make([]float64, nodeCount)
	homeY := make([]float64, nodeCount)
	for i := 0; i < nodeCount; i++ {
		a := float64(i) * goldenStep
		r := 16 * math.Sqrt(float64(i))
		homeX[i] = math.Cos(a) * r
		homeY[i] = math.Sin(a) * r

		n := trellis.Node{
			Text:  fmt.Sprintf("n%d", i),
			X:     homeX[i],
			Y:     homeY[i],
			Style: styleFor(i),
		}
		if i > 0 {
			n.ParentID = ids[i/2]
		}
		ids[i] = e.CreateNode(n)
	}
	e.Flush()
	e.FitContent(100, 0)

	var frame int
	paused := false

	err := trellis.Run(e, trellis.RunConfig{
		Title:     windowTitle,
		Width:     screenW,
		Height:    screenH,
		Resizable: true,
		ShowDebug: true,
		OnUpdate: func() error {
			frame++
			if inpututil.IsKeyJustPressed(ebiten.KeyF) {
				e.FitContent(100, 0.5)
			}
			if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
				paused = !paused
			}

			if !paused && frame%waveEvery == 0 {
				for j := 0; j < waveSize; j++ {
					i := rand.IntN(nodeCount)
					e.AnimateNode(ids[i],
						homeX[i]+(rand.Float64()-0.5)*2*jitter,
						homeY[i]+(rand.Float64()-0.5)*2*jitter,
						1.2, ease.InOutQuad)
				}
			}

			if frame%300 == 0 {
				printReport(e)
			}
			return nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}

// styleFor colors a node by its depth in the parent fan, which for the
// half-index parenting is the bit length of the index.
func styleFor(i int) trellis.NodeStyle {
	return trellis.NodeStyle{
		Fill:      ringFills[bits.Len(uint(i+1))%len(ringFills)],
		Stroke:    trellis.Color{R: 0.04, G: 0.04, B: 0.06, A: 1},
		TextColor: trellis.Color{R: 1, G: 1, B: 1, A: 1},
		FontSize:  11,
		Shape:     trellis.ShapeEllipse,
	}
}

func printReport(e *trellis.Engine) {
	m := e.Metrics()
	if m.Samples == 0 {
		return
	}
	fmt.Printf("fps avg %.1f min %.1f | frame %.2fms | draw calls %.0f | peak mem %.0f MB | %s\n",
		m.AvgFPS, m.MinFPS, m.AvgFrameTimeMs, m.AvgDrawCalls, m.PeakMemoryMB, e.DebugString())
}
