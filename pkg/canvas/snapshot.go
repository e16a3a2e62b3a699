package canvas

import (
	"github.com/matzehuels/metricflow/pkg/geom"
	"github.com/matzehuels/metricflow/pkg/graph"
)

// Snapshot returns the canvas state in wire format: nodes in creation order,
// edges grouped by source.
func (c *Canvas) Snapshot() graph.Snapshot {
	s := graph.Snapshot{
		Flow:  string(c.opts.Flow),
		Nodes: make([]graph.Node, 0, len(c.order)),
		Edges: make([]graph.Edge, 0, len(c.connectors)),
	}
	for _, n := range c.Nodes() {
		s.Nodes = append(s.Nodes, n.Snapshot())
	}
	for _, conn := range c.Connectors() {
		s.Edges = append(s.Edges, graph.Edge{
			From:  conn.ID.Source,
			To:    conn.ID.Target,
			Side:  string(conn.Route.Side),
			Start: point(conn.Route.Start),
			End:   point(conn.Route.End),
		})
	}
	return s
}

// Snapshot returns the node in wire format.
func (n *Node) Snapshot() graph.Node {
	return graph.Node{
		ID:    n.ID,
		Kind:  string(n.Kind),
		Title: n.Title,
		Rows:  n.Rows,
		X:     n.Pos.X,
		Y:     n.Pos.Y,
		W:     n.Size.W,
		H:     n.Size.H,
	}
}

func point(p geom.Point) graph.Point { return graph.Point{X: p.X, Y: p.Y} }
