// Package canvas implements the metricflow canvas: a registry of rendered
// metric nodes and directed connectors, the layout glue that places node
// trees, and the interaction controller that drags nodes around.
//
// # Overview
//
// A [Canvas] owns all per-canvas state (nodes, adjacency, remembered
// connector sides) and draws through a caller-supplied [Surface]. The svg
// subpackage provides the standard surface.
//
//	surface, _ := svg.New("graph", "800px", "600px", svg.Options{})
//	c, err := canvas.New(surface, canvas.DefaultOptions())
//	if err != nil { ... }
//
//	err = c.CreateNodes(canvas.NodeSpec{
//	    ID: "A", Title: "api", X: canvas.Px(0), Y: canvas.Px(0),
//	    Children: []canvas.NodeSpec{{ID: "B", Title: "db"}, {ID: "C", Title: "cache"}},
//	})
//
// # Store semantics
//
// Every mutation is idempotent where it can be:
//   - [Canvas.CreateNode] returns the existing node for a known id
//   - [Canvas.CreateLink] ignores an existing ordered pair
//   - [Canvas.RemoveNode] ignores unknown ids
//
// Removing a node removes every connector where it is source or target, on
// both adjacency lists and on the surface.
//
// # Errors
//
// Only two errors reach the caller: INVALID_LAYOUT_INPUT when a tree root or
// standalone node lacks coordinates, and INVALID_NODE_KIND when a spec names
// a kind other than metric, circle or rectangle (see pkg/errors). Invalid ids,
// colors and handler names are reported with their own INVALID_* codes.
//
// # Concurrency
//
// A Canvas is not safe for concurrent use. All operations are synchronous;
// callers that feed it from several goroutines must serialize access.
package canvas
