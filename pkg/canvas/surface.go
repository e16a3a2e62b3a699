package canvas

import "github.com/matzehuels/metricflow/pkg/geom"

// Cursor is the pointer shape a surface shows over a drag target.
type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorMove    Cursor = "move"
)

// NodeView is everything a surface needs to draw a node.
type NodeView struct {
	ID     string
	Kind   Kind
	Title  string
	Rows   []string
	Pos    geom.Point
	Style  ResolvedStyle
	Events []Gesture
}

// ConnectorView is everything a surface needs to draw a connector.
type ConnectorView struct {
	ID    ConnectorID
	Route geom.Routed
	Color string
	Width float64
}

// Surface is the drawing backend of a canvas. A canvas calls it synchronously
// from its own operations and never concurrently.
type Surface interface {
	// DrawNode renders a new node at v.Pos and returns its measured size.
	DrawNode(v NodeView) (geom.Size, error)
	// MoveNode repositions an existing node.
	MoveNode(id string, pos geom.Point)
	// RemoveNode deletes a node's elements.
	RemoveNode(id string)
	// DrawConnector renders a connector, replacing one with the same id.
	DrawConnector(v ConnectorView)
	// RemoveConnector deletes a connector's path and markers.
	RemoveConnector(id ConnectorID)
	// SetCursor changes the cursor over a node, or over the whole canvas
	// when id is empty.
	SetCursor(id string, c Cursor)
}
