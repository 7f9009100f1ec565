package trellis

// Scene holds the node and connection records and the indexes derived from
// them. It is pure data: the engine routes every mutation through it and
// keeps the spatial index and event side effects around it.
type Scene struct {
	nodes map[string]*Node
	conns map[string]*Connection

	// nodeOrder and connOrder are creation order, which is also draw
	// order. Deletions splice; ids are never reused.
	nodeOrder []string
	connOrder []string

	// byParent maps a parent node id to its child node ids.
	byParent map[string][]string
	// connByChild maps a child node id to its incoming connection id.
	// A node has at most one parent, so one entry suffices.
	connByChild map[string]string

	nextZ uint64
}

func newScene() *Scene {
	return &Scene{
		nodes:       make(map[string]*Node),
		conns:       make(map[string]*Connection),
		byParent:    make(map[string][]string),
		connByChild: make(map[string]string),
	}
}

// NodeCount returns the number of nodes in the scene.
func (s *Scene) NodeCount() int {
	return len(s.nodes)
}

// ConnectionCount returns the number of connections in the scene.
func (s *Scene) ConnectionCount() int {
	return len(s.conns)
}

func (s *Scene) node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

func (s *Scene) conn(id string) (*Connection, bool) {
	c, ok := s.conns[id]
	return c, ok
}

func (s *Scene) addNode(n *Node) {
	n.z = s.nextZ
	s.nextZ++
	s.nodes[n.ID] = n
	s.nodeOrder = append(s.nodeOrder, n.ID)
	if n.ParentID != "" {
		s.byParent[n.ParentID] = append(s.byParent[n.ParentID], n.ID)
	}
}

// removeNode deletes a single node record. The caller is responsible for
// cascading to descendants and incident connections first.
func (s *Scene) removeNode(id string) {
	n, ok := s.nodes[id]
	if !ok {
		return
	}
	if n.ParentID != "" {
		s.unlinkChild(n.ParentID, id)
	}
	delete(s.nodes, id)
	s.nodeOrder = spliceID(s.nodeOrder, id)
	delete(s.byParent, id)
}

// setParent rewires a node's ParentID and the byParent index. It does not
// touch connections; the engine derives those.
func (s *Scene) setParent(n *Node, parentID string) {
	if n.ParentID == parentID {
		return
	}
	if n.ParentID != "" {
		s.unlinkChild(n.ParentID, n.ID)
	}
	n.ParentID = parentID
	if parentID != "" {
		s.byParent[parentID] = append(s.byParent[parentID], n.ID)
	}
}

func (s *Scene) unlinkChild(parentID, childID string) {
	kids := s.byParent[parentID]
	kids = spliceID(kids, childID)
	if len(kids) == 0 {
		delete(s.byParent, parentID)
	} else {
		s.byParent[parentID] = kids
	}
}

func (s *Scene) addConn(c *Connection) {
	s.conns[c.ID] = c
	s.connOrder = append(s.connOrder, c.ID)
	s.connByChild[c.ChildID] = c.ID
}

func (s *Scene) removeConn(id string) {
	c, ok := s.conns[id]
	if !ok {
		return
	}
	delete(s.conns, id)
	s.connOrder = spliceID(s.connOrder, id)
	if s.connByChild[c.ChildID] == id {
		delete(s.connByChild, c.ChildID)
	}
}

// connForChild returns the id of the connection arriving at the given child
// node, or "" if the node is a root.
func (s *Scene) connForChild(childID string) string {
	return s.connByChild[childID]
}

// childrenOf returns the child node ids of the given parent. The returned
// slice is the live index; callers must not hold it across mutations.
func (s *Scene) childrenOf(parentID string) []string {
	return s.byParent[parentID]
}

// collectSubtree appends id and every descendant node id to buf in
// depth-first order and returns it. The visited set guards traversal
// against parent cycles introduced by malformed external data.
func (s *Scene) collectSubtree(id string, visited map[string]bool, buf []string) []string {
	if visited[id] {
		return buf
	}
	visited[id] = true
	buf = append(buf, id)
	for _, child := range s.byParent[id] {
		buf = s.collectSubtree(child, visited, buf)
	}
	return buf
}

// isAncestor reports whether ancestorID appears on the parent chain of id.
// Walks with a hop cap so a corrupted cycle cannot loop forever.
func (s *Scene) isAncestor(ancestorID, id string) bool {
	hops := len(s.nodes) + 1
	for cur := id; cur != "" && hops > 0; hops-- {
		n, ok := s.nodes[cur]
		if !ok {
			return false
		}
		if n.ParentID == ancestorID {
			return true
		}
		cur = n.ParentID
	}
	return false
}

// contentBounds returns the union of all node AABBs, using sizeOf to resolve
// each node's effective size. Returns false when the scene is empty.
func (s *Scene) contentBounds(sizeOf func(*Node) (w, h float64)) (Rect, bool) {
	first := true
	var out Rect
	for _, id := range s.nodeOrder {
		n := s.nodes[id]
		w, h := sizeOf(n)
		r := Rect{X: n.X - w/2, Y: n.Y - h/2, Width: w, Height: h}
		if first {
			out = r
			first = false
		} else {
			out = out.Union(r)
		}
	}
	return out, !first
}

// spliceID removes the first occurrence of id from ids, preserving order.
func spliceID(ids []string, id string) []string {
	for i := range ids {
		if ids[i] == id {
			copy(ids[i:], ids[i+1:])
			ids[len(ids)-1] = ""
			return ids[:len(ids)-1]
		}
	}
	return ids
}
