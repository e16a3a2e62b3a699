package canvas

import (
	"slices"
	"strings"

	"github.com/matzehuels/metricflow/pkg/geom"
	"github.com/matzehuels/metricflow/pkg/observability"
)

// ConnectorID identifies the connector for an ordered (source, target) pair.
type ConnectorID struct {
	Source string
	Target string
}

// String returns the connector's path element id, line-S-T.
func (id ConnectorID) String() string { return id.element("line-") }

// StartMarkerID is the element id of the marker at the source end.
func (id ConnectorID) StartMarkerID() string { return id.element("pointstart-") }

// EndMarkerID is the element id of the marker at the target end.
func (id ConnectorID) EndMarkerID() string { return id.element("pointend-") }

// element joins prefix and the escaped ids. Escaped ids contain no "-", so
// the separator is unambiguous and distinct pairs never share an element.
func (id ConnectorID) element(prefix string) string {
	return prefix + elementEscaper.Replace(id.Source) + "-" + elementEscaper.Replace(id.Target)
}

// elementEscaper maps "~" to "~0" and "-" to "~1". Ids without either
// character are unchanged.
var elementEscaper = strings.NewReplacer("~", "~0", "-", "~1")

// Connector is a routed, directed edge between two nodes.
type Connector struct {
	ID    ConnectorID
	Route geom.Routed
}

// Connector returns the connector from source to target.
func (c *Canvas) Connector(source, target string) (*Connector, bool) {
	conn, ok := c.connectors[ConnectorID{source, target}]
	return conn, ok
}

// Connectors returns every connector, grouped by source in node creation
// order.
func (c *Canvas) Connectors() []*Connector {
	out := make([]*Connector, 0, len(c.connectors))
	for _, id := range c.order {
		for _, cid := range c.nodes[id].Out {
			out = append(out, c.connectors[cid])
		}
	}
	return out
}

// CreateLink connects source to target. It reports false, without error, when
// either node is unknown or the pair is already connected.
func (c *Canvas) CreateLink(source, target string) bool {
	src, ok := c.nodes[source]
	if !ok {
		c.logger.Debug("skipping link from unknown node", "source", source, "target", target)
		return false
	}
	dst, ok := c.nodes[target]
	if !ok {
		c.logger.Debug("skipping link to unknown node", "source", source, "target", target)
		return false
	}
	id := ConnectorID{source, target}
	if _, ok := c.connectors[id]; ok {
		return false
	}

	conn := &Connector{ID: id}
	c.connectors[id] = conn
	src.Out = append(src.Out, id)
	dst.In = append(dst.In, id)
	c.route(conn)
	return true
}

// RedrawConnectors re-routes every connector once and returns how many it
// touched.
func (c *Canvas) RedrawConnectors() int {
	conns := c.Connectors()
	for _, conn := range conns {
		c.reroute(conn)
	}
	return len(conns)
}

// RerouteNode re-routes every connector touching id.
func (c *Canvas) RerouteNode(id string) int {
	n, ok := c.nodes[id]
	if !ok {
		return 0
	}
	return c.rerouteNode(n)
}

func (c *Canvas) rerouteNode(n *Node) int {
	count := 0
	for _, cid := range slices.Concat(n.Out, n.In) {
		if conn, ok := c.connectors[cid]; ok {
			c.reroute(conn)
			count++
		}
	}
	return count
}

// reroute draws the connector again for the current node positions. The
// surface replaces the previous drawing in place.
func (c *Canvas) reroute(conn *Connector) { c.route(conn) }

func (c *Canvas) route(conn *Connector) {
	src := c.nodes[conn.ID.Source].Rect()
	dst := c.nodes[conn.ID.Target].Rect()

	r := geom.Route(src, dst, c.sides[conn.ID])
	c.sides[conn.ID] = r.Side
	conn.Route = r.Shift(
		geom.Point{X: c.opts.LinkStartOffsetX, Y: c.opts.LinkStartOffsetY},
		geom.Point{X: c.opts.LinkEndOffsetX, Y: c.opts.LinkEndOffsetY},
	)

	c.surface.DrawConnector(ConnectorView{
		ID:    conn.ID,
		Route: conn.Route,
		Color: c.opts.LinkColor,
		Width: c.opts.LinkWidth,
	})
	observability.Canvas().OnConnectorRouted(string(r.Side))
}

// removeConnector deletes a connector from both adjacency lists, the side
// memo and the surface.
func (c *Canvas) removeConnector(id ConnectorID) bool {
	if _, ok := c.connectors[id]; !ok {
		return false
	}
	if src, ok := c.nodes[id.Source]; ok {
		src.Out = slices.DeleteFunc(src.Out, func(x ConnectorID) bool { return x == id })
	}
	if dst, ok := c.nodes[id.Target]; ok {
		dst.In = slices.DeleteFunc(dst.In, func(x ConnectorID) bool { return x == id })
	}
	delete(c.connectors, id)
	delete(c.sides, id)
	c.surface.RemoveConnector(id)
	return true
}
