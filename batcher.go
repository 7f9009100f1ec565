package trellis

import "time"

// BatchOpKind identifies what a batched mutation does.
type BatchOpKind uint8

const (
	OpCreate BatchOpKind = iota
	OpUpdate
	OpDelete
)

// BatchOp is one queued mutation. Exactly one payload field matching
// (Kind, Target) is set: Node for node creates, NodePatch for node updates,
// Conn and ConnPatch for the connection equivalents. Deletes carry only the
// id. Ops are transient; they exist only between Add and dispatch.
type BatchOp struct {
	Kind   BatchOpKind
	Target ObjectKind
	ID     string

	Node      *Node
	NodePatch *NodePatch
	Conn      *Connection
	ConnPatch *ConnectionPatch

	// Time is when the op was enqueued.
	Time time.Time
}

// opKey distinguishes pending ops per object. Node and connection ids live
// in separate namespaces.
type opKey struct {
	target ObjectKind
	id     string
}

// batchSlot is the reduced pending state for one object id: an optional
// leading delete followed by at most one merged create or update.
type batchSlot struct {
	del *BatchOp
	op  *BatchOp
}

// MutationBatcher coalesces bursts of mutations so the scene and spatial
// index absorb one pass per frame instead of one per call. Ops queue in
// FIFO order; a full batch flushes immediately and a partial one flushes
// when its deadline passes on the next update tick. Within a flush, ops are
// folded per id: updates merge into a pending create or into each other,
// a delete discards everything queued before it for that id, and updates
// arriving after a pending delete are dropped. First-seen id order is
// preserved, so dispatch cost is proportional to distinct ids touched.
type MutationBatcher struct {
	queue []BatchOp

	batchSize int
	delay     time.Duration

	armed    bool
	deadline time.Time

	apply func(BatchOp)
	clock func() time.Time

	// reduction scratch, reused across flushes
	slots map[opKey]*batchSlot
	order []opKey
}

// NewMutationBatcher creates a batcher dispatching through apply.
// batchSize <= 0 and delay <= 0 select the defaults (50 ops, 16 ms).
func NewMutationBatcher(batchSize int, delay time.Duration, apply func(BatchOp)) *MutationBatcher {
	if batchSize <= 0 {
		batchSize = 50
	}
	if delay <= 0 {
		delay = 16 * time.Millisecond
	}
	return &MutationBatcher{
		batchSize: batchSize,
		delay:     delay,
		apply:     apply,
		clock:     time.Now,
		slots:     make(map[opKey]*batchSlot),
	}
}

// setClock replaces the time source. Tests use this to drive the flush
// deadline deterministically.
func (b *MutationBatcher) setClock(clock func() time.Time) {
	b.clock = clock
}

// Len returns the number of ops waiting to flush.
func (b *MutationBatcher) Len() int {
	return len(b.queue)
}

// Add queues one mutation. Reaching a full batch flushes synchronously;
// otherwise the first op of a batch arms the flush deadline.
func (b *MutationBatcher) Add(op BatchOp) {
	if op.Time.IsZero() {
		op.Time = b.clock()
	}
	b.queue = append(b.queue, op)

	if len(b.queue) >= b.batchSize {
		b.Flush()
		return
	}
	if !b.armed {
		b.armed = true
		b.deadline = b.clock().Add(b.delay)
	}
}

// tick flushes a pending batch whose deadline has passed. Called once per
// update.
func (b *MutationBatcher) tick(now time.Time) {
	if b.armed && !now.Before(b.deadline) {
		b.Flush()
	}
}

// Flush reduces and dispatches up to one batch of queued ops. Ops beyond
// the batch size stay queued with the deadline re-armed.
func (b *MutationBatcher) Flush() {
	n := len(b.queue)
	if n == 0 {
		b.armed = false
		return
	}
	if n > b.batchSize {
		n = b.batchSize
	}

	for i := 0; i < n; i++ {
		b.reduce(&b.queue[i])
	}

	for _, key := range b.order {
		slot := b.slots[key]
		if slot.del != nil {
			b.apply(*slot.del)
		}
		if slot.op != nil {
			b.apply(*slot.op)
		}
	}

	// Drop the dispatched ops and reset the scratch state.
	remaining := copy(b.queue, b.queue[n:])
	for i := remaining; i < len(b.queue); i++ {
		b.queue[i] = BatchOp{}
	}
	b.queue = b.queue[:remaining]
	clear(b.slots)
	b.order = b.order[:0]

	if len(b.queue) > 0 {
		b.armed = true
		b.deadline = b.clock().Add(b.delay)
	} else {
		b.armed = false
	}
}

// ForceFlush synchronously drains every queued op. Used at teardown and
// before export so the rendered scene reflects all submitted mutations.
func (b *MutationBatcher) ForceFlush() {
	for len(b.queue) > 0 {
		b.Flush()
	}
	b.armed = false
}

// reduce folds one op into the per-id slot table.
func (b *MutationBatcher) reduce(op *BatchOp) {
	key := opKey{target: op.Target, id: op.ID}
	slot, ok := b.slots[key]
	if !ok {
		slot = &batchSlot{}
		b.slots[key] = slot
		b.order = append(b.order, key)
	}

	switch op.Kind {
	case OpDelete:
		// The delete stands alone; anything queued before it for this
		// id would be destroyed anyway.
		slot.del = op
		slot.op = nil
	case OpCreate:
		// A later create supersedes any pending create or update, and
		// after a delete it forms a delete-then-recreate pair.
		slot.op = op
	case OpUpdate:
		switch {
		case slot.op == nil && slot.del != nil:
			// Updating an object this batch already deletes: dropped.
		case slot.op == nil:
			slot.op = op
		case slot.op.Kind == OpCreate:
			// Fold the update into the pending create's payload.
			if op.NodePatch != nil && slot.op.Node != nil {
				op.NodePatch.apply(slot.op.Node)
				if op.NodePatch.ParentID != nil {
					slot.op.Node.ParentID = *op.NodePatch.ParentID
				}
			}
			if op.ConnPatch != nil && slot.op.Conn != nil {
				op.ConnPatch.apply(slot.op.Conn)
			}
		case slot.op.Kind == OpUpdate:
			if op.NodePatch != nil && slot.op.NodePatch != nil {
				slot.op.NodePatch.merge(*op.NodePatch)
			}
			if op.ConnPatch != nil && slot.op.ConnPatch != nil {
				slot.op.ConnPatch.merge(*op.ConnPatch)
			}
		}
	}
}
