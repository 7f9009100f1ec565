package trellis

// Spatial index defaults.
const (
	defaultMaxObjects = 8
	defaultMaxDepth   = 8
)

// quadEntry is one indexed object: an opaque id and its world-space AABB.
type quadEntry struct {
	id     string
	bounds Rect
}

// quadCell is one cell of the quadtree arena. Cells are addressed by index
// into SpatialIndex.cells; childBase is the index of the first of four
// contiguous children (NW, NE, SW, SE) or -1 for a leaf.
type quadCell struct {
	bounds    Rect
	childBase int32
	depth     int32
	entries   []quadEntry
}

// SpatialIndex is a quadtree over axis-aligned bounding boxes. It answers
// "which objects intersect this rectangle" without walking every object,
// which is what keeps culling and hit-testing cheap on large scenes.
//
// Cells live in a flat arena and reference children by index, so the tree
// itself allocates nothing per query. An object that straddles a cell's
// center lines stays at that cell rather than being duplicated into
// children, so every id appears exactly once. Objects outside the index
// bounds are kept at the root.
type SpatialIndex struct {
	cells      []quadCell
	idToCell   map[string]int32
	maxObjects int
	maxDepth   int
}

// NewSpatialIndex creates an index covering the given world bounds.
// maxObjects is the split threshold per cell and maxDepth the maximum tree
// depth; values <= 0 select the defaults (8 and 8).
func NewSpatialIndex(worldBounds Rect, maxObjects, maxDepth int) *SpatialIndex {
	if maxObjects <= 0 {
		maxObjects = defaultMaxObjects
	}
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	q := &SpatialIndex{
		cells:      make([]quadCell, 1, 64),
		idToCell:   make(map[string]int32),
		maxObjects: maxObjects,
		maxDepth:   maxDepth,
	}
	q.cells[0] = quadCell{bounds: worldBounds, childBase: -1}
	return q
}

// Len returns the number of indexed objects.
func (q *SpatialIndex) Len() int {
	return len(q.idToCell)
}

// Insert adds an object with the given bounds. Inserting an id that is
// already present replaces its bounds.
func (q *SpatialIndex) Insert(id string, bounds Rect) {
	if _, ok := q.idToCell[id]; ok {
		q.Remove(id)
	}
	cell := q.descend(0, bounds)
	q.cells[cell].entries = append(q.cells[cell].entries, quadEntry{id: id, bounds: bounds})
	q.idToCell[id] = cell
	q.maybeSplit(cell)
}

// Remove deletes an object from the index. Returns false if the id is not
// present.
func (q *SpatialIndex) Remove(id string) bool {
	cell, ok := q.idToCell[id]
	if !ok {
		return false
	}
	entries := q.cells[cell].entries
	for i := range entries {
		if entries[i].id == id {
			last := len(entries) - 1
			entries[i] = entries[last]
			entries[last] = quadEntry{}
			q.cells[cell].entries = entries[:last]
			break
		}
	}
	delete(q.idToCell, id)
	return true
}

// Update moves an object to new bounds. Equivalent to Remove + Insert but
// stays in place when the object's cell still covers the new bounds.
func (q *SpatialIndex) Update(id string, bounds Rect) {
	cell, ok := q.idToCell[id]
	if !ok {
		q.Insert(id, bounds)
		return
	}
	c := &q.cells[cell]
	// Fast path: a leaf whose bounds still cover the new rect keeps the
	// entry; only the stored bounds change.
	if c.childBase < 0 && c.bounds.ContainsRect(bounds) {
		for i := range c.entries {
			if c.entries[i].id == id {
				c.entries[i].bounds = bounds
				return
			}
		}
	}
	q.Remove(id)
	q.Insert(id, bounds)
}

// Query appends the ids of all objects whose bounds intersect the given
// rectangle to buf and returns it. Pass a reused buffer to avoid per-call
// allocation.
func (q *SpatialIndex) Query(bounds Rect, buf []string) []string {
	return q.query(0, bounds, buf)
}

func (q *SpatialIndex) query(cell int32, bounds Rect, buf []string) []string {
	c := &q.cells[cell]
	for i := range c.entries {
		if c.entries[i].bounds.Intersects(bounds) {
			buf = append(buf, c.entries[i].id)
		}
	}
	if c.childBase >= 0 {
		base := c.childBase
		for i := int32(0); i < 4; i++ {
			if q.cells[base+i].bounds.Intersects(bounds) {
				buf = q.query(base+i, bounds, buf)
			}
		}
	}
	return buf
}

// All appends every indexed id to buf and returns it.
func (q *SpatialIndex) All(buf []string) []string {
	for id := range q.idToCell {
		buf = append(buf, id)
	}
	return buf
}

// Bounds returns the bounds of an indexed object. Returns false if the id is
// not present.
func (q *SpatialIndex) Bounds(id string) (Rect, bool) {
	cell, ok := q.idToCell[id]
	if !ok {
		return Rect{}, false
	}
	entries := q.cells[cell].entries
	for i := range entries {
		if entries[i].id == id {
			return entries[i].bounds, true
		}
	}
	return Rect{}, false
}

// Clear removes every object and collapses the tree back to a single root
// cell, keeping the allocated arena for reuse.
func (q *SpatialIndex) Clear() {
	root := q.cells[0]
	q.cells = q.cells[:1]
	q.cells[0] = quadCell{bounds: root.bounds, childBase: -1, entries: root.entries[:0]}
	clear(q.idToCell)
}

// descend walks from the given cell to the deepest existing cell whose
// quadrant fully contains bounds. Straddlers stop at the covering cell.
func (q *SpatialIndex) descend(cell int32, bounds Rect) int32 {
	for {
		c := &q.cells[cell]
		if c.childBase < 0 {
			return cell
		}
		child := q.childFor(c, bounds)
		if child < 0 {
			return cell
		}
		cell = child
	}
}

// childFor returns the child cell index fully containing bounds, or -1 if
// bounds straddles the center lines or escapes the cell entirely (objects
// outside the index bounds stay at the root this way).
func (q *SpatialIndex) childFor(c *quadCell, bounds Rect) int32 {
	if !c.bounds.ContainsRect(bounds) {
		return -1
	}
	midX := c.bounds.X + c.bounds.Width/2
	midY := c.bounds.Y + c.bounds.Height/2

	var col, row int32
	switch {
	case bounds.X+bounds.Width <= midX:
		col = 0
	case bounds.X >= midX:
		col = 1
	default:
		return -1
	}
	switch {
	case bounds.Y+bounds.Height <= midY:
		row = 0
	case bounds.Y >= midY:
		row = 1
	default:
		return -1
	}
	return c.childBase + row*2 + col
}

// maybeSplit subdivides a leaf that exceeded maxObjects, pushing entries
// that fit entirely inside a quadrant down into it.
func (q *SpatialIndex) maybeSplit(cell int32) {
	c := &q.cells[cell]
	if c.childBase >= 0 || len(c.entries) <= q.maxObjects || int(c.depth) >= q.maxDepth {
		return
	}

	b := c.bounds
	halfW := b.Width / 2
	halfH := b.Height / 2
	depth := c.depth + 1
	base := int32(len(q.cells))

	q.cells = append(q.cells,
		quadCell{bounds: Rect{X: b.X, Y: b.Y, Width: halfW, Height: halfH}, childBase: -1, depth: depth},
		quadCell{bounds: Rect{X: b.X + halfW, Y: b.Y, Width: halfW, Height: halfH}, childBase: -1, depth: depth},
		quadCell{bounds: Rect{X: b.X, Y: b.Y + halfH, Width: halfW, Height: halfH}, childBase: -1, depth: depth},
		quadCell{bounds: Rect{X: b.X + halfW, Y: b.Y + halfH, Width: halfW, Height: halfH}, childBase: -1, depth: depth},
	)

	// The append may have moved the arena; re-take the pointer.
	c = &q.cells[cell]
	c.childBase = base

	kept := c.entries[:0]
	for _, e := range c.entries {
		child := q.childFor(c, e.bounds)
		if child < 0 {
			kept = append(kept, e)
			continue
		}
		// Descend further in case the child itself could split later; a
		// fresh child is always a leaf, so one hop is enough here.
		q.cells[child].entries = append(q.cells[child].entries, e)
		q.idToCell[e.id] = child
	}
	for i := len(kept); i < len(c.entries); i++ {
		c.entries[i] = quadEntry{}
	}
	c.entries = kept

	// A child may have inherited more than maxObjects straddlers' worth.
	for i := int32(0); i < 4; i++ {
		q.maybeSplit(base + i)
	}
}
