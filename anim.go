package trellis

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// nodeAnim animates one node's center. Values are written through the
// mutation batcher, never directly, so animated moves coalesce with any
// other pending changes to the same node.
type nodeAnim struct {
	id     string
	tweenX *gween.Tween
	tweenY *gween.Tween
}

// AnimateNode moves a node to (toX, toY) over duration seconds using the
// given easing function (nil selects ease.OutQuad). Starting a new
// animation for a node replaces its in-flight one. duration <= 0 moves the
// node immediately.
func (e *Engine) AnimateNode(id string, toX, toY float64, duration float32, fn ease.TweenFunc) {
	if e.destroyed {
		return
	}
	n, ok := e.scene.node(id)
	if !ok {
		e.log.WithField("id", id).Warn("animate ignored: unknown node")
		return
	}
	if duration <= 0 {
		e.UpdateNode(id, NodePatch{X: &toX, Y: &toY})
		return
	}
	if fn == nil {
		fn = ease.OutQuad
	}
	a := &nodeAnim{
		id:     id,
		tweenX: gween.New(float32(n.X), float32(toX), duration, fn),
		tweenY: gween.New(float32(n.Y), float32(toY), duration, fn),
	}
	for i := range e.anims {
		if e.anims[i].id == id {
			e.anims[i] = a
			return
		}
	}
	e.anims = append(e.anims, a)
}

// AnimatingNodes reports whether any node animation is in flight.
func (e *Engine) AnimatingNodes() bool {
	return len(e.anims) > 0
}

// tickAnimations advances node animations by dt seconds and submits the
// resulting moves. Finished animations, and animations whose node has been
// deleted, are dropped.
func (e *Engine) tickAnimations(dt float32) {
	if len(e.anims) == 0 {
		return
	}
	kept := e.anims[:0]
	for _, a := range e.anims {
		if _, ok := e.scene.node(a.id); !ok {
			continue
		}
		x, doneX := a.tweenX.Update(dt)
		y, doneY := a.tweenY.Update(dt)
		nx := float64(x)
		ny := float64(y)
		e.UpdateNode(a.id, NodePatch{X: &nx, Y: &ny})
		if !doneX || !doneY {
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < len(e.anims); i++ {
		e.anims[i] = nil
	}
	e.anims = kept
}
