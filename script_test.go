package trellis

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runScript attaches src to a fresh engine holding node "a" under the
// screen center and pumps updates until the runner finishes.
func runScript(t *testing.T, src string) (*Engine, *ScriptRunner) {
	t.Helper()
	e, _ := newTestEngine()
	t.Cleanup(e.Destroy)
	e.CreateNode(Node{ID: "a", X: 0, Y: 0, Text: "hub"})
	e.Flush()

	r, err := LoadScript([]byte(src))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	e.SetScriptRunner(r)
	for i := 0; i < 50 && !r.Done(); i++ {
		e.Update()
	}
	if !r.Done() {
		t.Fatal("script did not finish within 50 updates")
	}
	return e, r
}

func TestLoadScriptRejectsBadJSON(t *testing.T) {
	_, err := LoadScript([]byte("{steps"))
	if err == nil || !strings.Contains(err.Error(), "parse script") {
		t.Errorf("err = %v, want a parse script error", err)
	}
}

func TestLoadScriptRejectsEmpty(t *testing.T) {
	_, err := LoadScript([]byte(`{"steps": []}`))
	if err == nil || !strings.Contains(err.Error(), "no steps") {
		t.Errorf("err = %v, want no steps", err)
	}
}

func TestScriptClickSelectsNode(t *testing.T) {
	e, r := runScript(t, `{"steps": [
		{"action": "click", "x": 400, "y": 300},
		{"action": "wait", "frames": 2},
		{"action": "flush"}
	]}`)

	if err := r.Err(); err != nil {
		t.Fatalf("Err = %v", err)
	}
	if !e.IsSelected("a") {
		t.Error("scripted click did not select the node")
	}
}

func TestScriptDragMovesNode(t *testing.T) {
	e, r := runScript(t, `{"steps": [
		{"action": "drag", "fromX": 400, "fromY": 300, "toX": 460, "toY": 330, "frames": 4},
		{"action": "flush"}
	]}`)

	if err := r.Err(); err != nil {
		t.Fatalf("Err = %v", err)
	}
	n, _ := e.Node("a")
	assertNear(t, "X", n.X, 60)
	assertNear(t, "Y", n.Y, 30)
}

func TestScriptRightClick(t *testing.T) {
	e, _ := newTestEngine()
	t.Cleanup(e.Destroy)
	e.CreateNode(Node{ID: "a", X: 0, Y: 0})
	e.Flush()

	menus := 0
	e.OnNodeContextMenu(func(NodeEvent) { menus++ })

	r, err := LoadScript([]byte(`{"steps": [{"action": "rightclick", "x": 400, "y": 300}]}`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	e.SetScriptRunner(r)
	for i := 0; i < 10 && !r.Done(); i++ {
		e.Update()
	}
	if menus != 1 {
		t.Errorf("menus = %d, want 1", menus)
	}
}

func TestScriptExportWritesFiles(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "out.png")
	svgPath := filepath.Join(dir, "out.svg")

	_, r := runScript(t, `{"steps": [
		{"action": "export", "label": "`+pngPath+`"},
		{"action": "export", "label": "`+svgPath+`"}
	]}`)
	if err := r.Err(); err != nil {
		t.Fatalf("Err = %v", err)
	}

	data, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Error("exported file is not a PNG")
	}

	doc, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(doc), "<svg") {
		t.Error("exported file is not an SVG")
	}
}

func TestScriptExportBadPathStopsRunner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.png")
	_, r := runScript(t, `{"steps": [
		{"action": "export", "label": "`+path+`"},
		{"action": "flush"}
	]}`)

	if r.Err() == nil || !strings.Contains(r.Err().Error(), "write export") {
		t.Errorf("Err = %v, want a write export error", r.Err())
	}
}

func TestScriptUnknownActionStopsRunner(t *testing.T) {
	_, r := runScript(t, `{"steps": [{"action": "teleport"}]}`)

	if r.Err() == nil || !strings.Contains(r.Err().Error(), "unknown action") {
		t.Errorf("Err = %v, want unknown action", r.Err())
	}
	if !r.Done() {
		t.Error("runner must stop at the failing step")
	}
}

func TestScriptDetach(t *testing.T) {
	e, _ := newTestEngine()
	t.Cleanup(e.Destroy)

	r, err := LoadScript([]byte(`{"steps": [{"action": "wait", "frames": 100}]}`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	e.SetScriptRunner(r)
	e.Update()
	e.SetScriptRunner(nil)
	for i := 0; i < 5; i++ {
		e.Update()
	}
	if r.Done() {
		t.Error("detached runner kept stepping")
	}
}
