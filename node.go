package trellis

// Node is one diagram node: a positioned, styled box of text. Nodes form a
// forest through ParentID; the connection for each parent-child edge is
// derived from it and maintained by the engine.
type Node struct {
	// ID uniquely identifies the node. Left empty at creation, the engine
	// assigns a generated id.
	ID string
	// Text is the node label.
	Text string
	// X and Y are the node center in world space.
	X, Y float64
	// W and H are the node size in world units. Zero means the engine
	// default size, grown to fit the label.
	W, H float64
	// Style controls fill, stroke, text color, font size, and shape.
	Style NodeStyle
	// ParentID is the id of the parent node, or empty for a root. It is
	// the authoritative edge record; connections follow it.
	ParentID string

	// z is the creation sequence number, used for draw order and for
	// picking the topmost node under the pointer.
	z uint64

	// label measurement cache, keyed by text and font size
	sizeText  string
	sizeFont  float64
	sizeW     float64
	sizeH     float64
	sizeValid bool
}

// NodeStyle is the visual style of a node.
type NodeStyle struct {
	Fill        Color   `yaml:"fill"`
	Stroke      Color   `yaml:"stroke"`
	TextColor   Color   `yaml:"text_color"`
	StrokeWidth float64 `yaml:"stroke_width"`
	FontSize    float64 `yaml:"font_size"`
	Shape       Shape   `yaml:"shape"`
	// CornerRadius applies to ShapeRoundedRect. Zero means one quarter of
	// the node's shorter side.
	CornerRadius float64 `yaml:"corner_radius"`
}

// Connection is the rendered edge between a parent and a child node. There
// is exactly one per parent-child pair; connections are created and removed
// as Node.ParentID changes.
type Connection struct {
	ID       string
	ParentID string
	ChildID  string
	Style    ConnectionStyle
}

// ConnectionStyle is the visual style of a connection.
type ConnectionStyle struct {
	Stroke Color   `yaml:"stroke"`
	Width  float64 `yaml:"width"`
	// Curved draws a quadratic bezier between the endpoints instead of a
	// straight segment.
	Curved bool `yaml:"curved"`
}

// NodePatch is a partial node update. Nil fields are left unchanged.
type NodePatch struct {
	Text  *string
	X     *float64
	Y     *float64
	W     *float64
	H     *float64
	Style *NodeStyle
	// ParentID reparents the node; pointing it at the empty string
	// detaches the node to a root.
	ParentID *string
}

// merge folds a later patch into p, field-wise, last write wins.
func (p *NodePatch) merge(next NodePatch) {
	if next.Text != nil {
		p.Text = next.Text
	}
	if next.X != nil {
		p.X = next.X
	}
	if next.Y != nil {
		p.Y = next.Y
	}
	if next.W != nil {
		p.W = next.W
	}
	if next.H != nil {
		p.H = next.H
	}
	if next.Style != nil {
		p.Style = next.Style
	}
	if next.ParentID != nil {
		p.ParentID = next.ParentID
	}
}

// apply writes the patch's set fields onto a node. Reparenting is handled by
// the engine, not here.
func (p *NodePatch) apply(n *Node) {
	if p.Text != nil {
		n.Text = *p.Text
	}
	if p.X != nil {
		n.X = *p.X
	}
	if p.Y != nil {
		n.Y = *p.Y
	}
	if p.W != nil {
		n.W = *p.W
	}
	if p.H != nil {
		n.H = *p.H
	}
	if p.Style != nil {
		n.Style = *p.Style
	}
}

// clone deep-copies the patch so the engine can hold it across the batch
// window while the caller reuses or drops the original.
func (p NodePatch) clone() *NodePatch {
	out := &NodePatch{}
	if p.Text != nil {
		v := *p.Text
		out.Text = &v
	}
	if p.X != nil {
		v := *p.X
		out.X = &v
	}
	if p.Y != nil {
		v := *p.Y
		out.Y = &v
	}
	if p.W != nil {
		v := *p.W
		out.W = &v
	}
	if p.H != nil {
		v := *p.H
		out.H = &v
	}
	if p.Style != nil {
		v := *p.Style
		out.Style = &v
	}
	if p.ParentID != nil {
		v := *p.ParentID
		out.ParentID = &v
	}
	return out
}

// ConnectionPatch is a partial connection update. Nil fields are left
// unchanged.
type ConnectionPatch struct {
	Style *ConnectionStyle
}

func (p *ConnectionPatch) merge(next ConnectionPatch) {
	if next.Style != nil {
		p.Style = next.Style
	}
}

func (p *ConnectionPatch) apply(c *Connection) {
	if p.Style != nil {
		c.Style = *p.Style
	}
}

func (p ConnectionPatch) clone() *ConnectionPatch {
	out := &ConnectionPatch{}
	if p.Style != nil {
		v := *p.Style
		out.Style = &v
	}
	return out
}
