package canvas

import (
	"cmp"
	"slices"

	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/geom"
	"github.com/matzehuels/metricflow/pkg/observability"
)

// Node is a materialized node. The canvas owns it; callers must treat it as
// read-only. The same *Node is returned for an id for as long as it exists.
type Node struct {
	ID     string
	Kind   Kind
	Title  string
	Rows   []string
	Pos    geom.Point
	Size   geom.Size
	Style  ResolvedStyle
	Events map[Gesture]string

	In  []ConnectorID // connectors targeting this node
	Out []ConnectorID // connectors leaving this node
}

// Rect returns the node's bounding box.
func (n *Node) Rect() geom.Rect { return geom.RectAt(n.Pos, n.Size) }

// Degree returns the number of connectors touching the node.
func (n *Node) Degree() int { return len(n.In) + len(n.Out) }

// CreateNode materializes a single node at its explicit coordinates and links
// it from every existing node named in spec.From. Creating an id that already
// exists returns the existing node unchanged.
func (c *Canvas) CreateNode(spec NodeSpec) (*Node, error) {
	if n, ok := c.nodes[spec.ID]; ok {
		return n, nil
	}
	x, y, ok := spec.Position()
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidLayoutInput, "node %q has no explicit x and y", spec.ID)
	}
	n, err := c.materialize(spec, geom.Point{X: x, Y: y})
	if err != nil {
		return nil, err
	}
	c.linkFrom(n.ID, spec.From)
	return n, nil
}

// materialize draws a new node at pos and registers it with empty adjacency.
func (c *Canvas) materialize(spec NodeSpec, pos geom.Point) (*Node, error) {
	if err := errors.ValidateNodeID(spec.ID); err != nil {
		return nil, err
	}
	kind, err := spec.ResolveKind()
	if err != nil {
		return nil, err
	}
	style, err := spec.Style.Resolve(kind)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "node %q", spec.ID)
	}

	n := &Node{
		ID:     spec.ID,
		Kind:   kind,
		Title:  spec.Title,
		Pos:    pos,
		Style:  style,
		Events: make(map[Gesture]string, len(spec.Events)),
	}
	for _, row := range spec.Data {
		n.Rows = append(n.Rows, row.Name)
	}
	for g, name := range spec.Events {
		if !g.Valid() {
			c.logger.Warn("ignoring unknown gesture", "node", spec.ID, "gesture", g)
			continue
		}
		if err := errors.ValidateHandlerName(name); err != nil {
			return nil, err
		}
		n.Events[g] = name
	}

	size, err := c.surface.DrawNode(n.view())
	if err != nil {
		return nil, errors.Wrap(cmp.Or(errors.GetCode(err), errors.ErrCodeInternal), err, "draw node %q", spec.ID)
	}
	n.Size = size

	c.nodes[n.ID] = n
	c.order = append(c.order, n.ID)
	observability.Canvas().OnNodeCreated(string(kind))
	c.logger.Debug("created node", "id", n.ID, "kind", kind, "pos", pos, "size", size)
	return n, nil
}

func (n *Node) view() NodeView {
	v := NodeView{
		ID:    n.ID,
		Kind:  n.Kind,
		Title: n.Title,
		Rows:  n.Rows,
		Pos:   n.Pos,
		Style: n.Style,
	}
	for _, g := range Gestures {
		if _, ok := n.Events[g]; ok {
			v.Events = append(v.Events, g)
		}
	}
	return v
}

func (c *Canvas) linkFrom(id string, sources []string) {
	for _, src := range sources {
		c.CreateLink(src, id)
	}
}

// Exists reports whether a node with id is registered.
func (c *Canvas) Exists(id string) bool {
	_, ok := c.nodes[id]
	return ok
}

// Node returns the node registered under id.
func (c *Canvas) Node(id string) (*Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Nodes returns every node in creation order.
func (c *Canvas) Nodes() []*Node {
	out := make([]*Node, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.nodes[id])
	}
	return out
}

// Len returns the number of registered nodes.
func (c *Canvas) Len() int { return len(c.nodes) }

// RemoveNode deletes a node and every connector touching it. Unknown ids are
// ignored and report false.
func (c *Canvas) RemoveNode(id string) bool {
	n, ok := c.nodes[id]
	if !ok {
		return false
	}
	touching := slices.Concat(n.Out, n.In)
	removed := 0
	for _, cid := range touching {
		if c.removeConnector(cid) {
			removed++
		}
	}
	c.surface.RemoveNode(id)
	delete(c.nodes, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })

	observability.Canvas().OnNodeRemoved(removed)
	c.logger.Debug("removed node", "id", id, "connectors", removed)
	return true
}

// MoveNode places a node at pos and re-routes its connectors.
func (c *Canvas) MoveNode(id string, pos geom.Point) bool {
	if !c.Exists(id) {
		return false
	}
	c.moveTo(id, pos)
	return true
}

// moveTo repositions a node and re-routes its connectors, returning how many
// were re-routed.
func (c *Canvas) moveTo(id string, pos geom.Point) int {
	n := c.nodes[id]
	if n.Pos == pos {
		return 0
	}
	n.Pos = pos
	c.surface.MoveNode(id, pos)
	return c.rerouteNode(n)
}

func (c *Canvas) moveBy(id string, d geom.Point) int {
	return c.moveTo(id, c.nodes[id].Pos.Add(d))
}

// translateAll moves every node by d and re-routes every connector once.
func (c *Canvas) translateAll(d geom.Point) int {
	if d == (geom.Point{}) {
		return 0
	}
	for _, id := range c.order {
		n := c.nodes[id]
		n.Pos = n.Pos.Add(d)
		c.surface.MoveNode(id, n.Pos)
	}
	return c.RedrawConnectors()
}

// HitTest returns the topmost node containing p.
func (c *Canvas) HitTest(p geom.Point) (string, bool) {
	for i := len(c.order) - 1; i >= 0; i-- {
		if c.nodes[c.order[i]].Rect().Contains(p) {
			return c.order[i], true
		}
	}
	return "", false
}

// Bounds returns the smallest rectangle containing every node.
func (c *Canvas) Bounds() geom.Rect {
	if len(c.order) == 0 {
		return geom.Rect{}
	}
	first := c.nodes[c.order[0]].Rect()
	minX, minY, maxX, maxY := first.X, first.Y, first.Right(), first.Bottom()
	for _, id := range c.order[1:] {
		r := c.nodes[id].Rect()
		minX, minY = min(minX, r.X), min(minY, r.Y)
		maxX, maxY = max(maxX, r.Right()), max(maxY, r.Bottom())
	}
	return geom.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
