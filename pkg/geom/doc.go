// Package geom provides the geometry primitives and the connector-routing
// heuristic used by the metricflow canvas.
//
// # Routing
//
// [Route] decides which of the four cardinal sides a connector leaves its
// source box from, and computes the anchor points on both boxes:
//
//	r := geom.Route(src, dst, geom.SideUnknown)
//	fmt.Println(r.Side)           // "right"
//	fmt.Println(r.LineStart())    // path start, detached from the border
//	fmt.Println(r.StartMarker())  // position of the start marker circle
//
// Rules are evaluated in a fixed priority order against a 40px horizontal
// tolerance band ([Tolerance]):
//
//  1. target overlaps horizontally and lies below  → [SideDown]
//  2. target overlaps horizontally and lies above  → [SideUp]
//  3. target entirely right, overlapping vertically → [SideRight]
//  4. target entirely left, overlapping vertically  → [SideLeft]
//  5. otherwise the previous side is reused, or [SideRight] when unknown
//
// Rule 5 is the hysteresis hint: callers remember the side per node pair and
// pass it back on every redraw so connectors do not flip while two boxes
// overlap.
package geom
