package trellis

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
)

// ErrDestroyed is returned by operations attempted after Destroy.
var ErrDestroyed = errors.New("trellis: engine destroyed")

// healthWindow is how many recent samples the degradation checks average.
const healthWindow = 5

// BackendState is the render health state machine's position.
type BackendState uint8

const (
	// BackendHealthy means the active backend performs within limits.
	BackendHealthy BackendState = iota
	// BackendDegraded means health checks are failing and the engine is
	// waiting out the rollback delay before re-checking.
	BackendDegraded
	// BackendRolledBack means the engine swapped rendering backends after
	// sustained degradation.
	BackendRolledBack
)

func (s BackendState) String() string {
	switch s {
	case BackendHealthy:
		return "healthy"
	case BackendDegraded:
		return "degraded"
	case BackendRolledBack:
		return "rolledback"
	default:
		return "unknown"
	}
}

// NodeUpdate pairs a node id with its patch for BatchUpdateNodes.
type NodeUpdate struct {
	ID    string
	Patch NodePatch
}

// Engine is a complete interactive diagram: a scene of nodes and
// connections, a viewport, pointer gestures, batched mutations, and a
// self-monitoring render pipeline that can swap to a fallback backend.
//
// Call Update and Draw once per frame from the game loop. Like the rest of
// the package, the engine is single-threaded; every method must be called
// from the loop's goroutine.
type Engine struct {
	config Config
	log    *logrus.Logger

	scene     *Scene
	nodeIndex *SpatialIndex
	viewport  *Viewport
	batcher   *MutationBatcher
	monitor   *HealthMonitor

	handlers handlerRegistry

	// selection set plus its insertion order
	selected map[string]bool
	selOrder []string

	// gesture state
	pointers     [maxPointers]gesturePointer
	pending      pendingClick
	injectQueue  []syntheticPointerEvent
	prevTouchIDs []ebiten.TouchID
	touchUsed    [maxPointers]bool
	touchMap     [maxPointers]ebiten.TouchID
	hitBuf       []string

	// render pipeline
	primary  Renderer
	fallback Renderer
	active   Renderer

	// health state machine
	state      BackendState
	errorCount int
	retries    int
	recheckAt  time.Time

	anims  []*nodeAnim
	script *ScriptRunner

	// per-frame scratch
	cullBuf     []string
	drawNodes   []*Node
	visSet      map[string]bool
	lastVisible int
	lastCalls   int

	clock     func() time.Time
	destroyed bool
}

// NewEngine creates an engine rendering into a screenW x screenH window.
// Zero-valued numeric fields in cfg fall back to their DefaultConfig
// values.
func NewEngine(screenW, screenH int, cfg Config) *Engine {
	cfg.fillDefaults()
	e := &Engine{
		config:   cfg,
		log:      cfg.logger(),
		scene:    newScene(),
		selected: make(map[string]bool),
		visSet:   make(map[string]bool),
		clock:    time.Now,
		state:    BackendHealthy,
	}
	e.nodeIndex = NewSpatialIndex(cfg.WorldBounds, cfg.QuadMaxObjects, cfg.QuadMaxDepth)
	e.viewport = NewViewport(Rect{Width: float64(screenW), Height: float64(screenH)}, cfg.MinZoom, cfg.MaxZoom)
	e.batcher = NewMutationBatcher(cfg.BatchSize, cfg.BatchDelay.Duration, e.applyOp)
	e.monitor = NewHealthMonitor(cfg.SampleWindow, cfg.SampleInterval.Duration)
	e.primary = NewBatchRenderer()
	e.fallback = NewVectorRenderer()
	e.active = e.primary
	return e
}

// setClock replaces the engine's time source, including the batcher's.
// Tests drive gesture deadlines and batch flushes with it.
func (e *Engine) setClock(clock func() time.Time) {
	e.clock = clock
	e.batcher.setClock(clock)
}

// --- Frame loop ---

// Update advances input, gestures, batched mutations, viewport animation,
// and health monitoring by one tick.
func (e *Engine) Update() {
	if e.destroyed {
		return
	}
	dt := 1.0 / float64(ebiten.TPS())
	now := e.clock()

	if e.script != nil {
		e.script.step(e)
	}
	e.processInput()
	e.tickGestures(now)
	e.tickAnimations(float32(dt))
	e.batcher.tick(now)
	e.viewport.update(float32(dt))
	e.monitor.tick(dt, e.scene.NodeCount(), e.lastVisible, now)
	e.evaluateHealth(now)
}

// Draw renders the visible scene with the active backend. A frame that
// fails or panics is abandoned and counted against the backend; enough of
// them in a row degrade the engine.
func (e *Engine) Draw(screen *ebiten.Image) {
	if e.destroyed {
		return
	}
	start := e.clock()
	calls, err := e.drawFrame(screen)
	elapsed := e.clock().Sub(start)

	if err != nil {
		e.errorCount++
		e.log.WithError(err).WithField("backend", e.active.Name()).Warn("draw failed")
	} else if e.errorCount > 0 {
		// Clean frames walk the error count back down, so sporadic
		// failures do not accumulate into a rollback.
		e.errorCount--
	}

	e.lastCalls = calls
	e.monitor.recordFrame(calls, elapsed)
}

func (e *Engine) drawFrame(screen *ebiten.Image) (calls int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("draw panic: %v", r)
		}
	}()

	if screen != nil {
		screen.Fill(e.config.Background.nrgba())
	}

	view := e.viewport.ViewMatrix()
	visible := e.viewport.VisibleBounds().Expand(e.config.CullPadding)
	e.cullBuf = e.nodeIndex.Query(visible, e.cullBuf[:0])

	clear(e.visSet)
	for _, id := range e.cullBuf {
		e.visSet[id] = true
	}
	e.lastVisible = len(e.cullBuf)

	r := e.active
	r.Begin(screen, view)

	var firstErr error

	// Connections draw under nodes. A connection is visible when either
	// endpoint is.
	for _, cid := range e.scene.connOrder {
		c, ok := e.scene.conn(cid)
		if !ok {
			continue
		}
		if !e.visSet[c.ParentID] && !e.visSet[c.ChildID] {
			continue
		}
		parent, ok1 := e.scene.node(c.ParentID)
		child, ok2 := e.scene.node(c.ChildID)
		if !ok1 || !ok2 {
			continue
		}
		if err := r.DrawConnection(c, parent.X, parent.Y, child.X, child.Y); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Nodes draw in creation order, oldest underneath.
	e.drawNodes = e.drawNodes[:0]
	for _, id := range e.cullBuf {
		if n, ok := e.scene.node(id); ok {
			e.drawNodes = append(e.drawNodes, n)
		}
	}
	sort.Slice(e.drawNodes, func(i, j int) bool { return e.drawNodes[i].z < e.drawNodes[j].z })

	for _, n := range e.drawNodes {
		w, h := e.nodeSize(n)
		if err := r.DrawNode(n, w, h, e.selected[n.ID]); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	calls, err = r.End()
	if err == nil {
		err = firstErr
	}
	return calls, err
}

// --- Health state machine ---

// evaluateHealth advances the backend health state machine. A degraded
// engine waits out the rollback delay before re-checking, so one bad
// second cannot trigger a swap.
func (e *Engine) evaluateHealth(now time.Time) {
	switch e.state {
	case BackendDegraded:
		if now.Before(e.recheckAt) {
			return
		}
		reason := e.unhealthyReason()
		if reason == "" {
			e.state = BackendHealthy
			e.log.WithField("backend", e.active.Name()).Info("render health recovered")
			return
		}
		if e.retries >= e.config.MaxRetries {
			e.log.WithField("reason", reason).Warn("still degraded, backend swaps exhausted")
			e.recheckAt = now.Add(e.config.RollbackDelay.Duration)
			return
		}
		e.rollbackBackend(reason, now)
	default:
		if reason := e.unhealthyReason(); reason != "" {
			e.state = BackendDegraded
			e.recheckAt = now.Add(e.config.RollbackDelay.Duration)
			e.log.WithFields(logrus.Fields{
				"backend": e.active.Name(),
				"reason":  reason,
			}).Warn("render health degraded")
		}
	}
}

// unhealthyReason returns why the engine currently fails its health checks,
// or "" when it passes. Draw errors dominate; the statistical checks need
// at least one sample and skip FPS while no frame has been drawn at all.
func (e *Engine) unhealthyReason() string {
	if e.errorCount >= e.config.ErrorThreshold {
		return fmt.Sprintf("%d draw errors (threshold %d)", e.errorCount, e.config.ErrorThreshold)
	}
	if e.monitor.SampleCount() == 0 {
		return ""
	}
	if fps := e.monitor.AverageFPS(healthWindow); fps > 0 && fps < e.config.MinFPS {
		return fmt.Sprintf("average fps %.1f below minimum %.1f", fps, e.config.MinFPS)
	}
	if maxMs := float64(e.config.MaxFrameTime.Duration) / float64(time.Millisecond); maxMs > 0 {
		if ft := e.monitor.AverageFrameTime(healthWindow); ft > maxMs {
			return fmt.Sprintf("average frame time %.1fms above limit %.1fms", ft, maxMs)
		}
	}
	if e.config.MaxMemoryMB > 0 {
		if s, ok := e.monitor.Current(); ok && s.MemoryMB > e.config.MaxMemoryMB {
			return fmt.Sprintf("heap %.0f MiB above limit %.0f MiB", s.MemoryMB, e.config.MaxMemoryMB)
		}
	}
	return ""
}

// rollbackBackend swaps the active renderer for the other one and resets
// the health history so the replacement is judged on its own samples.
func (e *Engine) rollbackBackend(reason string, now time.Time) {
	from := e.active
	to := e.fallback
	if from == e.fallback {
		to = e.primary
	}
	e.active = to
	e.retries++
	e.errorCount = 0
	e.monitor.reset()
	e.state = BackendRolledBack

	e.log.WithFields(logrus.Fields{
		"from":   from.Name(),
		"to":     to.Name(),
		"reason": reason,
	}).Warn("rendering backend rolled back")
	fireRollbackHandlers(e.handlers.rollback, RollbackEvent{
		From:   from.Name(),
		To:     to.Name(),
		Reason: reason,
		Time:   now,
	})
}

// State reports the render health state.
func (e *Engine) State() BackendState {
	return e.state
}

// ActiveBackend names the renderer currently drawing frames.
func (e *Engine) ActiveBackend() string {
	return e.active.Name()
}

// Metrics aggregates the whole health sample history.
func (e *Engine) Metrics() HealthReport {
	return e.monitor.Report()
}

// Health returns the most recent performance sample. ok is false before
// the first sampling interval elapses.
func (e *Engine) Health() (PerformanceSample, bool) {
	return e.monitor.Current()
}

// HealthHistory appends the sample history to buf in chronological order
// and returns it.
func (e *Engine) HealthHistory(buf []PerformanceSample) []PerformanceSample {
	return e.monitor.History(buf)
}

// --- Mutations ---

// CreateNode queues creation of the given node and returns its id,
// generating one when n.ID is empty. The node lands in the scene when the
// current batch flushes.
func (e *Engine) CreateNode(n Node) string {
	if e.destroyed {
		return ""
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	e.batcher.Add(BatchOp{Kind: OpCreate, Target: KindNode, ID: n.ID, Node: &n})
	return n.ID
}

// UpdateNode queues a partial update. The patch is copied, so the caller
// may reuse it.
func (e *Engine) UpdateNode(id string, patch NodePatch) {
	if e.destroyed || id == "" {
		return
	}
	e.batcher.Add(BatchOp{Kind: OpUpdate, Target: KindNode, ID: id, NodePatch: patch.clone()})
}

// BatchUpdateNodes queues many node updates at once.
func (e *Engine) BatchUpdateNodes(updates []NodeUpdate) {
	for i := range updates {
		e.UpdateNode(updates[i].ID, updates[i].Patch)
	}
}

// DeleteNode queues deletion of a node and, transitively, its whole
// subtree. Unknown ids are ignored at apply time.
func (e *Engine) DeleteNode(id string) {
	if e.destroyed || id == "" {
		return
	}
	e.batcher.Add(BatchOp{Kind: OpDelete, Target: KindNode, ID: id})
}

// CreateConnection queues an explicit parent-child edge and returns its id.
// A node's ParentID is the authoritative edge record, so connecting a child
// that already has a parent reparents it.
func (e *Engine) CreateConnection(parentID, childID string, style ConnectionStyle) string {
	if e.destroyed {
		return ""
	}
	c := &Connection{ID: uuid.NewString(), ParentID: parentID, ChildID: childID, Style: style}
	e.batcher.Add(BatchOp{Kind: OpCreate, Target: KindConnection, ID: c.ID, Conn: c})
	return c.ID
}

// UpdateConnection queues a connection style update.
func (e *Engine) UpdateConnection(id string, patch ConnectionPatch) {
	if e.destroyed || id == "" {
		return
	}
	e.batcher.Add(BatchOp{Kind: OpUpdate, Target: KindConnection, ID: id, ConnPatch: patch.clone()})
}

// DeleteConnection queues removal of a connection. The child node detaches
// to a root; it is not deleted.
func (e *Engine) DeleteConnection(id string) {
	if e.destroyed || id == "" {
		return
	}
	e.batcher.Add(BatchOp{Kind: OpDelete, Target: KindConnection, ID: id})
}

// Flush applies every queued mutation immediately instead of waiting for
// the batch window.
func (e *Engine) Flush() {
	if e.destroyed {
		return
	}
	e.batcher.ForceFlush()
}

// --- Mutation application (batcher dispatch) ---

// applyOp is the batcher's dispatch target. It runs inside Flush, so every
// scene and spatial index mutation funnels through here.
func (e *Engine) applyOp(op BatchOp) {
	switch op.Target {
	case KindNode:
		switch op.Kind {
		case OpCreate:
			e.applyNodeCreate(op.Node)
		case OpUpdate:
			e.applyNodeUpdate(op.ID, op.NodePatch)
		case OpDelete:
			e.applyNodeDelete(op.ID)
		}
	case KindConnection:
		switch op.Kind {
		case OpCreate:
			e.applyConnCreate(op.Conn)
		case OpUpdate:
			e.applyConnUpdate(op.ID, op.ConnPatch)
		case OpDelete:
			e.applyConnDelete(op.ID)
		}
	}
}

func (e *Engine) applyNodeCreate(n *Node) {
	if n == nil {
		return
	}
	if _, exists := e.scene.node(n.ID); exists {
		e.log.WithField("id", n.ID).Warn("create ignored: node id already exists")
		return
	}
	if n.ParentID != "" {
		if _, ok := e.scene.node(n.ParentID); !ok {
			e.log.WithFields(logrus.Fields{"id": n.ID, "parent": n.ParentID}).
				Warn("unknown parent, node created as root")
			n.ParentID = ""
		}
	}
	e.scene.addNode(n)
	e.nodeIndex.Insert(n.ID, e.nodeBounds(n))
	if n.ParentID != "" {
		e.addDerivedConnection(n.ParentID, n.ID)
	}
}

// addDerivedConnection materializes the edge record implied by a child's
// ParentID. It writes the scene directly instead of queueing, so the edge
// can never trail the reparent that caused it.
func (e *Engine) addDerivedConnection(parentID, childID string) {
	e.scene.addConn(&Connection{
		ID:       uuid.NewString(),
		ParentID: parentID,
		ChildID:  childID,
		Style:    ConnectionStyle{Curved: true},
	})
}

func (e *Engine) applyNodeUpdate(id string, patch *NodePatch) {
	n, ok := e.scene.node(id)
	if !ok {
		e.log.WithField("id", id).Warn("update ignored: unknown node")
		return
	}
	if patch != nil {
		patch.apply(n)
		if patch.ParentID != nil && *patch.ParentID != n.ParentID {
			e.reparent(n, *patch.ParentID)
		}
	}
	e.nodeIndex.Update(id, e.nodeBounds(n))
}

// reparent rewires a node to a new parent, or to the root set when parentID
// is empty, and re-derives its incoming connection.
func (e *Engine) reparent(n *Node, parentID string) {
	if parentID != "" {
		if _, ok := e.scene.node(parentID); !ok {
			e.log.WithFields(logrus.Fields{"id": n.ID, "parent": parentID}).
				Warn("reparent ignored: unknown parent")
			return
		}
		if parentID == n.ID || e.scene.isAncestor(n.ID, parentID) {
			e.log.WithFields(logrus.Fields{"id": n.ID, "parent": parentID}).
				Warn("reparent ignored: would create a cycle")
			return
		}
	}
	if old := e.scene.connForChild(n.ID); old != "" {
		e.scene.removeConn(old)
	}
	e.scene.setParent(n, parentID)
	if parentID != "" {
		e.addDerivedConnection(parentID, n.ID)
	}
}

// applyNodeDelete removes a node, its whole subtree, and every incident
// connection. Unknown ids are a no-op.
func (e *Engine) applyNodeDelete(id string) {
	if _, ok := e.scene.node(id); !ok {
		return
	}
	doomed := e.scene.collectSubtree(id, make(map[string]bool), nil)
	selChanged := false
	for _, nid := range doomed {
		if cid := e.scene.connForChild(nid); cid != "" {
			e.scene.removeConn(cid)
		}
		e.nodeIndex.Remove(nid)
		e.scene.removeNode(nid)
		if e.selected[nid] {
			delete(e.selected, nid)
			e.selOrder = spliceID(e.selOrder, nid)
			selChanged = true
		}
	}
	if selChanged {
		e.fireSelectionChange()
	}
}

// applyConnCreate validates an explicit connection and reparents the child
// under it. ParentID is authoritative, so a connection create is a reparent
// carrying a caller-chosen connection id and style.
func (e *Engine) applyConnCreate(c *Connection) {
	if c == nil {
		return
	}
	if _, exists := e.scene.conn(c.ID); exists {
		e.log.WithField("id", c.ID).Warn("create ignored: connection id already exists")
		return
	}
	child, ok := e.scene.node(c.ChildID)
	if !ok {
		e.log.WithFields(logrus.Fields{"id": c.ID, "child": c.ChildID}).
			Warn("connection ignored: unknown child")
		return
	}
	if _, ok := e.scene.node(c.ParentID); !ok {
		e.log.WithFields(logrus.Fields{"id": c.ID, "parent": c.ParentID}).
			Warn("connection ignored: unknown parent")
		return
	}
	if c.ParentID == c.ChildID || e.scene.isAncestor(c.ChildID, c.ParentID) {
		e.log.WithFields(logrus.Fields{"parent": c.ParentID, "child": c.ChildID}).
			Warn("connection ignored: would create a cycle")
		return
	}
	if old := e.scene.connForChild(c.ChildID); old != "" {
		e.scene.removeConn(old)
	}
	e.scene.setParent(child, c.ParentID)
	e.scene.addConn(c)
}

func (e *Engine) applyConnUpdate(id string, patch *ConnectionPatch) {
	c, ok := e.scene.conn(id)
	if !ok {
		e.log.WithField("id", id).Warn("update ignored: unknown connection")
		return
	}
	if patch != nil {
		patch.apply(c)
	}
}

// applyConnDelete removes a connection and detaches its child to a root.
func (e *Engine) applyConnDelete(id string) {
	c, ok := e.scene.conn(id)
	if !ok {
		return
	}
	e.scene.removeConn(id)
	if child, ok := e.scene.node(c.ChildID); ok && child.ParentID == c.ParentID {
		e.scene.setParent(child, "")
	}
}

// --- Selection ---

// SelectNode selects the given node. With multi true the id toggles in and
// out of the current set; otherwise it replaces the selection.
func (e *Engine) SelectNode(id string, multi bool) {
	if e.destroyed {
		return
	}
	if _, ok := e.scene.node(id); !ok {
		e.log.WithField("id", id).Warn("select ignored: unknown node")
		return
	}
	if e.applySelection(id, multi) {
		e.fireSelectionChange()
	}
}

// ClearSelection deselects everything.
func (e *Engine) ClearSelection() {
	if e.resetSelection() {
		e.fireSelectionChange()
	}
}

// Selection returns the selected node ids in selection order.
func (e *Engine) Selection() []string {
	out := make([]string, len(e.selOrder))
	copy(out, e.selOrder)
	return out
}

// IsSelected reports whether the node is in the selection set.
func (e *Engine) IsSelected(id string) bool {
	return e.selected[id]
}

// applyTap updates the selection for a resolved click target, before the
// click event fires. Empty-canvas taps clear the selection unless a
// multi-select modifier is held.
func (e *Engine) applyTap(target string, mods KeyModifiers) {
	changed := false
	if target == "" {
		if !mods.multiSelect() {
			changed = e.resetSelection()
		}
	} else {
		changed = e.applySelection(target, mods.multiSelect())
	}
	if changed {
		e.fireSelectionChange()
	}
}

// applySelection folds one selection action into the set and reports
// whether the set changed. Multi-select toggles membership; a plain select
// replaces the set unless the node is already the sole selection.
func (e *Engine) applySelection(id string, multi bool) bool {
	if multi {
		if e.selected[id] {
			delete(e.selected, id)
			e.selOrder = spliceID(e.selOrder, id)
		} else {
			e.selected[id] = true
			e.selOrder = append(e.selOrder, id)
		}
		return true
	}
	if len(e.selOrder) == 1 && e.selected[id] {
		return false
	}
	e.resetSelection()
	e.selected[id] = true
	e.selOrder = append(e.selOrder, id)
	return true
}

// resetSelection empties the set without firing events.
func (e *Engine) resetSelection() bool {
	if len(e.selOrder) == 0 {
		return false
	}
	clear(e.selected)
	e.selOrder = e.selOrder[:0]
	return true
}

func (e *Engine) fireSelectionChange() {
	fireSelectionHandlers(e.handlers.selectionChange, SelectionEvent{Selected: e.Selection()})
}

// --- Geometry ---

// nodeSize resolves a node's effective size: explicit W/H when set,
// otherwise the default size grown to fit the label. Label measurements are
// cached on the node.
func (e *Engine) nodeSize(n *Node) (w, h float64) {
	if n.W > 0 && n.H > 0 {
		return n.W, n.H
	}
	st := effectiveNodeStyle(n)
	if !n.sizeValid || n.sizeText != n.Text || n.sizeFont != st.FontSize {
		n.sizeW, n.sizeH = measureLabel(n.Text, st.FontSize)
		n.sizeText = n.Text
		n.sizeFont = st.FontSize
		n.sizeValid = true
	}
	w = n.sizeW + 2*labelPadX
	h = n.sizeH + 2*labelPadY
	if w < e.config.DefaultNodeWidth {
		w = e.config.DefaultNodeWidth
	}
	if h < e.config.DefaultNodeHeight {
		h = e.config.DefaultNodeHeight
	}
	if n.W > 0 {
		w = n.W
	}
	if n.H > 0 {
		h = n.H
	}
	return w, h
}

// nodeBounds returns the node's world-space AABB for the spatial index.
func (e *Engine) nodeBounds(n *Node) Rect {
	w, h := e.nodeSize(n)
	return Rect{X: n.X - w/2, Y: n.Y - h/2, Width: w, Height: h}
}

// --- Viewport ---

// Viewport returns the engine's viewport for direct camera control.
func (e *Engine) Viewport() *Viewport {
	return e.viewport
}

// SetViewport moves the camera to the given world center and zoom.
func (e *Engine) SetViewport(x, y, zoom float64) {
	e.viewport.SetCenter(x, y)
	e.viewport.SetZoom(zoom)
}

// PanBy shifts the camera by a screen-pixel delta.
func (e *Engine) PanBy(dxScreen, dyScreen float64) {
	e.viewport.PanBy(dxScreen, dyScreen)
}

// ZoomBy scales the zoom by (1+delta), keeping the given screen point
// fixed over its world point.
func (e *Engine) ZoomBy(delta, screenX, screenY float64) {
	e.viewport.ZoomBy(delta, screenX, screenY)
}

// ResetViewport restores the identity camera.
func (e *Engine) ResetViewport() {
	e.viewport.Reset()
}

// SetScreenSize updates the viewport after a window resize.
func (e *Engine) SetScreenSize(w, h int) {
	e.viewport.SetScreen(Rect{Width: float64(w), Height: float64(h)})
}

// FitContent animates the viewport to frame every node with the given
// world-space padding. duration 0 jumps immediately. Empty scenes are left
// alone.
func (e *Engine) FitContent(padding float64, duration float32) {
	bounds, ok := e.scene.contentBounds(e.nodeSize)
	if !ok {
		return
	}
	e.viewport.FitBounds(bounds, padding, duration)
}

// --- Queries ---

// Node returns a copy of the node with the given id.
func (e *Engine) Node(id string) (Node, bool) {
	n, ok := e.scene.node(id)
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Connection returns a copy of the connection with the given id.
func (e *Engine) Connection(id string) (Connection, bool) {
	c, ok := e.scene.conn(id)
	if !ok {
		return Connection{}, false
	}
	return *c, true
}

// ConnectionFor returns a copy of the connection arriving at the given
// child node. ok is false for roots and unknown ids.
func (e *Engine) ConnectionFor(childID string) (Connection, bool) {
	cid := e.scene.connForChild(childID)
	if cid == "" {
		return Connection{}, false
	}
	return e.Connection(cid)
}

// NodeCount returns the number of nodes in the scene.
func (e *Engine) NodeCount() int {
	return e.scene.NodeCount()
}

// ConnectionCount returns the number of connections in the scene.
func (e *Engine) ConnectionCount() int {
	return e.scene.ConnectionCount()
}

// NodeAt returns the id of the topmost node at the given world position,
// or "" when the point is over empty canvas.
func (e *Engine) NodeAt(wx, wy float64) string {
	return e.hitTestNode(wx, wy)
}

// DebugString returns a one-line status summary for overlays.
func (e *Engine) DebugString() string {
	s, _ := e.monitor.Current()
	return fmt.Sprintf("%s/%s nodes=%d visible=%d conns=%d sel=%d fps=%.1f calls=%d",
		e.active.Name(), e.state, e.scene.NodeCount(), e.lastVisible,
		e.scene.ConnectionCount(), len(e.selOrder), s.FPS, e.lastCalls)
}

// --- Teardown ---

// Destroy flushes pending mutations, drops every handler, releases both
// backends, and empties the scene. The engine must not be used afterwards;
// operations on a destroyed engine are no-ops.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.batcher.ForceFlush()
	e.handlers.drain()
	e.pending.active = false
	e.injectQueue = nil
	e.anims = nil
	e.script = nil
	e.primary.Dispose()
	e.fallback.Dispose()
	e.nodeIndex.Clear()
	e.scene = newScene()
	e.resetSelection()
	e.destroyed = true
}

// Destroyed reports whether Destroy has run.
func (e *Engine) Destroyed() bool {
	return e.destroyed
}
