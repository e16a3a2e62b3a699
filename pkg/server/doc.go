// Package server serves live MetricFlow canvases over HTTP.
//
// # Routes
//
//	GET    /                               HTML page hosting the default canvas
//	GET    /metrics                        Prometheus metrics
//	GET    /canvases                       list canvas ids
//	POST   /canvases                       create a canvas from options and nodes
//	GET    /canvases/{id}                  snapshot JSON
//	DELETE /canvases/{id}                  drop a canvas
//	GET    /canvases/{id}/svg              current SVG document
//	GET    /canvases/{id}/graphviz         Graphviz export (?format=svg|png|dot&detailed=1)
//	POST   /canvases/{id}/nodes            create nodes (tree, list or document)
//	GET    /canvases/{id}/nodes/{node}     node JSON, 404 if absent
//	DELETE /canvases/{id}/nodes/{node}     remove a node and its connectors
//	POST   /canvases/{id}/links            create a link {"source","target"}
//	POST   /canvases/{id}/redraw           re-route every connector
//	GET    /canvases/{id}/live             WebSocket: pointer events in, patches out
//
// Request bodies for canvases and nodes accept the same shapes as spec files
// (see [spec.Decode]): a node, a list of nodes, or {"options", "nodes"}.
//
// # Live protocol
//
// Clients send [canvas.Event] values as JSON text messages. The server
// replies with [session.Message] values: a "reset" carrying the whole
// document when the connection opens or the canvas is replaced, then
// "patches" after every change. Events without a target are hit-tested on
// the server.
//
// # Errors
//
// Errors are JSON objects {"error", "code"}. INVALID_* codes map to 400,
// NOT_FOUND and CANVAS_NOT_FOUND to 404, everything else to 500.
//
// [spec.Decode]: github.com/matzehuels/metricflow/pkg/spec
package server
