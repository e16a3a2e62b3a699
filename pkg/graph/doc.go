// Package graph provides the serialization format for canvas snapshots.
//
// This package defines the canonical wire format for a metricflow canvas,
// used for JSON files, API responses and the Graphviz export. It has no
// dependency on the canvas itself; pkg/canvas builds a [Snapshot] from its
// registry with Canvas.Snapshot.
//
// # Snapshot Format
//
// A snapshot lists nodes in creation order with their final geometry, and
// edges grouped by source with the side they were routed on:
//
//	{
//	  "flow": "horizontal",
//	  "nodes": [
//	    {"id": "A", "kind": "metric", "title": "api", "x": 0, "y": 0, "w": 46, "h": 31},
//	    {"id": "B", "kind": "metric", "title": "db", "x": 146, "y": -40, "w": 39, "h": 31}
//	  ],
//	  "edges": [
//	    {"from": "A", "to": "B", "side": "right", "start": {"x": 46, "y": 15.5}, "end": {"x": 146, "y": -24.5}}
//	  ]
//	}
//
// Common operations:
//
//	data, _ := graph.Marshal(snap)          // Snapshot → []byte
//	snap, _ := graph.Unmarshal(data)        // []byte → Snapshot
//	graph.WriteFile(snap, "canvas.json")    // Snapshot → File
//	snap, _ := graph.ReadFile("canvas.json") // File → Snapshot
//
// Decoding validates that every edge references known nodes and that node
// ids are unique.
package graph
