package trellis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// scriptStep represents a single action in an interaction script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// interactionScript is the top-level JSON structure for a script.
type interactionScript struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences injected input events and exports across frames,
// for automated interaction testing and demo recordings. Attach one to an
// engine via SetScriptRunner.
//
// Supported actions: "click" and "rightclick" (x, y), "drag" (fromX, fromY,
// toX, toY, frames), "wait" (frames), "flush", and "export" (label = output
// path; the format follows the file extension).
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	err       error
}

// LoadScript parses a JSON interaction script and returns a ScriptRunner
// ready to be attached via SetScriptRunner.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc interactionScript
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// SetScriptRunner attaches a script runner. The runner's step method is
// called from Engine.Update before input processing each frame; passing nil
// detaches the current runner.
func (e *Engine) SetScriptRunner(r *ScriptRunner) {
	e.script = r
}

// Done reports whether every step has executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Err returns the first error a step hit, if any. The runner stops at the
// failing step.
func (r *ScriptRunner) Err() error {
	return r.err
}

// step advances the runner by one frame. Injected input drains fully before
// the next step executes, so a drag's intermediate moves are never skipped.
func (r *ScriptRunner) step(e *Engine) {
	if r.done {
		return
	}
	if len(e.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "click":
		e.InjectClick(st.X, st.Y)
	case "rightclick":
		e.InjectRightClick(st.X, st.Y)
	case "drag":
		frames := st.Frames
		if frames < 2 {
			frames = 2
		}
		e.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "flush":
		e.Flush()
	case "export":
		r.exportTo(e, st.Label)
	default:
		r.err = fmt.Errorf("script: unknown action %q", st.Action)
		r.done = true
		return
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(e.injectQueue) == 0 {
		r.done = true
	}
}

// exportTo renders the scene and writes it to path.
func (r *ScriptRunner) exportTo(e *Engine, path string) {
	if path == "" {
		path = "trellis-export.png"
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	data, err := e.Export(ExportOptions{Format: format})
	if err != nil {
		r.err = err
		r.done = true
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.err = fmt.Errorf("script: write export: %w", err)
		r.done = true
	}
}
