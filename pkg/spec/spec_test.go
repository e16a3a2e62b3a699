package spec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/layout"
)

const yamlDoc = `
options:
  flow: vertical
  link-width: 3px
nodes:
  - id: api
    title: {name: GET /users}
    x: 40
    y: 200
    data:
      - name: avg 12ms
      - max 40ms
    click: showDetails
    events:
      dblclick: zoom
    style:
      title-font-size: 17px
      node-type: metric
    children:
      - id: db
        title: SELECT users
        node-type: circle
      - id: cache
        from: db
  - id: loose
    x: 500
    y: 0
    from: [api, cache]
`

func TestParseYAML(t *testing.T) {
	doc, err := Parse([]byte(yamlDoc), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Options["flow"] != "vertical" {
		t.Errorf("options = %v", doc.Options)
	}
	if len(doc.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(doc.Nodes))
	}

	api := doc.Nodes[0]
	if api.ID != "api" || api.Title != "GET /users" {
		t.Errorf("api = %q %q", api.ID, api.Title)
	}
	if x, y, ok := api.Position(); !ok || x != 40 || y != 200 {
		t.Errorf("position = %g %g %v", x, y, ok)
	}
	if len(api.Data) != 2 || api.Data[0].Name != "avg 12ms" || api.Data[1].Name != "max 40ms" {
		t.Errorf("data = %+v", api.Data)
	}
	if api.Events[canvas.GestureClick] != "showDetails" || api.Events[canvas.GestureDblClick] != "zoom" {
		t.Errorf("events = %v", api.Events)
	}
	if api.Style.TitleFontSize == nil || *api.Style.TitleFontSize != 17 {
		t.Errorf("title-font-size = %v", api.Style.TitleFontSize)
	}
	if len(api.Children) != 2 {
		t.Fatalf("children = %d", len(api.Children))
	}
	if api.Children[0].Kind != canvas.KindCircle {
		t.Errorf("db kind = %q, want circle from node-type", api.Children[0].Kind)
	}
	if from := api.Children[1].From; len(from) != 1 || from[0] != "db" {
		t.Errorf("cache from = %v", from)
	}
	if from := doc.Nodes[1].From; len(from) != 2 {
		t.Errorf("loose from = %v", from)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
		nodes  int
	}{
		{"json list", FormatJSON, `[{"id": "a", "x": 0, "y": 0}, {"id": "b", "x": 1, "y": 1, "from": "a"}]`, 2},
		{"json single", FormatJSON, `{"id": "a", "x": 0, "y": 0, "children": [{"id": "b"}]}`, 1},
		{"yaml empty", FormatYAML, ``, 0},
		{"toml document", FormatTOML, `
[options]
flow = "horizontal"

[[nodes]]
id = "a"
x = 0
y = 0
click = "open"

[[nodes.children]]
id = "b"
title = "child"
`, 1},
		{"toml single", FormatTOML, `
id = "root"
x = 10
y = 10
`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(doc.Nodes) != tt.nodes {
				t.Fatalf("nodes = %d, want %d", len(doc.Nodes), tt.nodes)
			}
		})
	}
}

func TestParseTOMLChildren(t *testing.T) {
	doc, err := Parse([]byte(`
[[nodes]]
id = "a"
x = 0
y = 0
click = "open"

[[nodes.children]]
id = "b"
title = "child"
`), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	a := doc.Nodes[0]
	if a.Events[canvas.GestureClick] != "open" {
		t.Errorf("events = %v", a.Events)
	}
	if len(a.Children) != 1 || a.Children[0].Title != "child" {
		t.Errorf("children = %+v", a.Children)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"bad yaml", FormatYAML, "nodes: [\n"},
		{"bad toml", FormatTOML, "id = "},
		{"scalar", FormatYAML, "42"},
		{"options not a table", FormatYAML, "options: 3"},
		{"wrong field type", FormatJSON, `{"id": "a", "children": 5}`},
		{"unknown format", Format("xml"), "<a/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	for path, want := range map[string]Format{
		"a.yaml": FormatYAML, "a.YML": FormatYAML, "dir/a.json": FormatJSON, "a.toml": FormatTOML,
	} {
		got, err := DetectFormat(path)
		if err != nil || got != want {
			t.Errorf("DetectFormat(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := DetectFormat("a.txt"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("DetectFormat(a.txt) error = %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canvas.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(doc.Nodes) != 2 {
		t.Errorf("nodes = %d", len(doc.Nodes))
	}

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestLoadedSpecsRender(t *testing.T) {
	doc, err := Parse([]byte(yamlDoc), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	opts, err := DefaultConfig().Options(doc.Options)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Flow != layout.FlowVertical || opts.LinkWidth != 3 {
		t.Errorf("options = %+v", opts)
	}

	c, err := canvas.New(nopSurface{}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.CreateNodes(doc.Nodes...); err != nil {
		t.Fatalf("CreateNodes: %v", err)
	}
	for _, pair := range [][2]string{{"api", "db"}, {"api", "cache"}, {"db", "cache"}, {"api", "loose"}, {"cache", "loose"}} {
		if _, ok := c.Connector(pair[0], pair[1]); !ok {
			t.Errorf("%s->%s missing", pair[0], pair[1])
		}
	}
}
