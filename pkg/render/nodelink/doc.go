// Package nodelink exports canvas snapshots as Graphviz node-link diagrams.
//
// # Overview
//
// The canvas computes its own layout, so the generated DOT pins every node at
// the position the canvas placed it ("x,y!") and renders with the neato
// engine, which honors pinned positions. Graphviz then only draws edges and
// shapes; the picture matches the canvas.
//
// # Usage
//
//	dot := nodelink.ToDOT(c.Snapshot(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// A [Renderer] keeps rendered output in a [cache.Cache] keyed by format and
// DOT text, so re-exporting an unchanged canvas skips Graphviz:
//
//	r := nodelink.NewRenderer(cache.NewMemoryCache(0), time.Hour)
//	svg, err := r.Render(ctx, dot, nodelink.FormatSVG)
//
// # Coordinates
//
// Canvas pixels map 1:1 to Graphviz points. The canvas y axis points down and
// Graphviz's points up, so y is flipped against the snapshot's lower bound.
// Node sizes are converted to inches and marked fixedsize.
//
// # Shapes
//
//   - metric: rounded box, title plus data rows when Detailed is set
//   - circle: ellipse
//   - rectangle: box
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
//
// [cache.Cache]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/cache#Cache
package nodelink
