// Package pkg provides the core libraries for MetricFlow canvases.
//
// # Overview
//
// MetricFlow draws trees of metric nodes (method timings, service calls,
// pipeline stages) as boxes joined by directed connectors, and lets users
// drag them around while connectors re-route to the nearest sides. The pkg
// directory is organized into four areas:
//
//  1. Geometry and layout: [geom], [layout]
//  2. The canvas: [canvas], [canvas/svg]
//  3. Input and output: [spec], [graph], [render/nodelink], [cache]
//  4. Serving: [session], [server], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	spec file / method tree / JSON request
//	         ↓
//	    [spec] package (decode YAML, JSON or TOML into node specs)
//	         ↓
//	    [canvas] package (place trees, route connectors, handle drags)
//	         ↓
//	    [canvas/svg] surface (element journal → SVG document + patches)
//	         ↓
//	    SVG / snapshot JSON / Graphviz DOT, SVG, PNG / live WebSocket
//
// # Quick Start
//
//	surf, _ := svg.New("flow", "800px", "600px")
//	c, _ := canvas.New(surf, canvas.DefaultOptions())
//
//	_ = c.CreateNodes(canvas.NodeSpec{
//	    ID: "api", X: canvas.Px(20), Y: canvas.Px(20),
//	    Children: []canvas.NodeSpec{{ID: "db"}, {ID: "cache"}},
//	})
//	os.WriteFile("flow.svg", surf.Bytes(), 0o644)
//
// # Main Packages
//
// [geom] - Points, sizes, rectangles and the connector routing rule that
// picks which sides of two boxes a connector joins.
//
// [layout] - Tree placement: children are laid out in a column (horizontal
// flow) or row (vertical flow) next to their parent, with sibling groups
// anchored per level.
//
// [canvas] - The node and connector store, bulk tree creation, option
// decoding, event handler registry and the drag controller. Drawing goes
// through the [canvas.Surface] interface.
//
// [canvas/svg] - A Surface that keeps an element journal, renders the full
// SVG document and emits patches for live clients.
//
// [spec] - Spec files, metricflow.toml configuration and method call trees.
//
// [graph] - The JSON snapshot of a canvas.
//
// [render/nodelink] - Graphviz export with nodes pinned at canvas positions.
//
// [cache] - Memory, file and null caches for rendered Graphviz output.
//
// [session] - Canvases shared by live clients, with patch fan-out and TTLs.
//
// [server] - HTTP API, HTML page and WebSocket live channel.
//
// [observability] - Hooks for layout, canvas and server events, with a
// Prometheus implementation in [observability/prom].
//
// # Testing
//
//	go test ./...                 # All tests
//	go test ./pkg/canvas/...      # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/geom
// [layout]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/layout
// [canvas]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/canvas
// [canvas/svg]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/canvas/svg
// [canvas.Surface]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/canvas#Surface
// [spec]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/spec
// [graph]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/graph
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/metricflow/pkg/observability/prom
package pkg
