package graph

import (
	"fmt"
	"slices"
)

// =============================================================================
// Snapshot - Canvas Serialization
// =============================================================================

// Snapshot is the serialized state of one canvas.
type Snapshot struct {
	ID    string `json:"id,omitempty"`
	Flow  string `json:"flow,omitempty"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a placed node.
type Node struct {
	ID    string   `json:"id"`
	Kind  string   `json:"kind,omitempty"`
	Title string   `json:"title,omitempty"`
	Rows  []string `json:"rows,omitempty"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	W     float64  `json:"w"`
	H     float64  `json:"h"`
}

// DisplayLabel returns the title if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// Point is a coordinate pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a routed connector.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Side  string `json:"side,omitempty"`
	Start Point  `json:"start"`
	End   Point  `json:"end"`
}

// =============================================================================
// Queries
// =============================================================================

// Node returns the node with id.
func (s Snapshot) Node(id string) (Node, bool) {
	i := slices.IndexFunc(s.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return s.Nodes[i], true
}

// Children returns the targets of edges leaving id, in edge order.
func (s Snapshot) Children(id string) []string {
	var out []string
	for _, e := range s.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// Bounds returns the extent of all nodes as min x, min y, max x, max y.
func (s Snapshot) Bounds() (minX, minY, maxX, maxY float64) {
	for i, n := range s.Nodes {
		if i == 0 {
			minX, minY, maxX, maxY = n.X, n.Y, n.X+n.W, n.Y+n.H
			continue
		}
		minX, minY = min(minX, n.X), min(minY, n.Y)
		maxX, maxY = max(maxX, n.X+n.W), max(maxY, n.Y+n.H)
	}
	return minX, minY, maxX, maxY
}

// Validate checks id uniqueness and edge endpoints.
func (s Snapshot) Validate() error {
	seen := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node %q", n.ID)
		}
		seen[n.ID] = true
	}
	for _, e := range s.Edges {
		if !seen[e.From] || !seen[e.To] {
			return fmt.Errorf("edge %s->%s references unknown node", e.From, e.To)
		}
	}
	return nil
}
