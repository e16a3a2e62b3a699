// Package layout places the children of a metric tree around their parent.
//
// The engine supports two flows. In [FlowHorizontal] children go to the right
// of their parent and siblings stack vertically; in [FlowVertical] children go
// below and siblings spread horizontally.
//
// # Placement
//
// A single child sits directly next to its parent along the flow axis. Two or
// more children form a sibling column (or row) centered on the parent. The gap
// between siblings decays with depth:
//
//	gap = base / 2^level
//
// where level is the parent's depth (root = 1) and base is the spacing of the
// axis orthogonal to the flow. Siblings are spaced by a fixed stride of
// (largest sibling extent + gap) measured from the anchor established by the
// first child.
//
// # Anchors
//
// The anchor of a sibling group is remembered per level in an [Anchors] map
// scoped to one top-level pass, so a second call for more children of the
// same parent at the same level stays aligned with the first.
//
// # Measure before place
//
// Centering needs the children's sizes. [Engine.Layout] asks its [Measurer]
// to materialize every child (at the parent's position) before placing it.
//
// Subtrees are not checked for collisions with each other.
package layout
