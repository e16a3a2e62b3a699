// Package render groups the export renderers for canvas snapshots.
//
// The live canvas draws itself through [svg]; the packages below render a
// finished [graph.Snapshot] into other formats:
//
//   - [nodelink]: Graphviz DOT with pinned positions, rendered to SVG or PNG
//
//	snap := c.Snapshot()
//	dot := nodelink.ToDOT(snap, nodelink.Options{})
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// [svg]: github.com/matzehuels/metricflow/pkg/canvas/svg
// [graph.Snapshot]: github.com/matzehuels/metricflow/pkg/graph
// [nodelink]: github.com/matzehuels/metricflow/pkg/render/nodelink
package render
