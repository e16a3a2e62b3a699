// Package spec loads node specs, canvas options and the metricflow config
// file from YAML, JSON and TOML.
//
// # Spec Files
//
// A spec file holds either a single node (usually a tree root), a list of
// nodes, or a document with canvas options:
//
//	options:
//	  flow: vertical
//	  link-color: "#336699"
//	nodes:
//	  - id: api
//	    title: GET /users
//	    x: 40
//	    y: 200
//	    data:
//	      - name: avg 12ms
//	    click: showDetails
//	    children:
//	      - id: db
//	        title: {name: SELECT users}
//
// Files are parsed into generic maps first and then decoded into
// [canvas.NodeSpec] with mapstructure. The decoder accepts the loose forms
// older spec files use:
//   - title as a string or as {name: ...}
//   - from as a single id or a list
//   - gesture handlers at the top level of a node or under events
//   - pixel strings ("15px") for numeric style values
//
// # Config File
//
// metricflow.toml carries defaults for the CLI and the server:
//
//	[canvas]
//	flow = "horizontal"
//	node-distance-x = 120
//
//	[server]
//	addr = ":8080"
//	width = "800px"
//	height = "600px"
package spec
