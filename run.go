package trellis

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the window Run opens.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// Resizable lets the user resize the window; the engine's viewport
	// follows.
	Resizable bool
	// ShowDebug prints the engine's one-line status summary in the top
	// left corner.
	ShowDebug bool
	// OnUpdate, when set, runs every tick after the engine updates.
	// Returning an error stops the loop.
	OnUpdate func() error
}

// game adapts an Engine to ebiten.Game.
type game struct {
	engine *Engine
	cfg    RunConfig
	w, h   int
}

func (g *game) Update() error {
	g.engine.Update()
	if g.cfg.OnUpdate != nil {
		return g.cfg.OnUpdate()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.engine.Draw(screen)
	if g.cfg.ShowDebug {
		ebitenutil.DebugPrint(screen, g.engine.DebugString())
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		g.engine.SetScreenSize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// Run opens a window and drives the engine's update/draw loop until the
// window closes. For full control, implement ebiten.Game yourself and call
// Engine.Update and Engine.Draw directly.
func Run(e *Engine, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.Title == "" {
		cfg.Title = "trellis"
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	e.SetScreenSize(cfg.Width, cfg.Height)
	return ebiten.RunGame(&game{engine: e, cfg: cfg, w: cfg.Width, h: cfg.Height})
}
