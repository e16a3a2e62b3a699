package svg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/fonts"
	"github.com/matzehuels/metricflow/pkg/geom"
)

// halfEm measures every glyph as half the font size wide and one size tall.
func halfEm(text string, size float64) (fonts.Metrics, error) {
	return fonts.Metrics{Width: float64(len(text)) * size / 2, Height: size}, nil
}

func newSurface(t *testing.T) *Surface {
	t.Helper()
	s, err := New("graph", "400px", "300", WithMeasure(halfEm))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func newCanvas(t *testing.T, mutate func(*canvas.Options)) (*canvas.Canvas, *Surface) {
	t.Helper()
	s := newSurface(t)
	opts := canvas.DefaultOptions()
	if mutate != nil {
		mutate(&opts)
	}
	c, err := canvas.New(s, opts)
	if err != nil {
		t.Fatalf("canvas.New: %v", err)
	}
	return c, s
}

func metricView(id, title string, rows ...string) canvas.NodeView {
	style, _ := canvas.Style{}.Resolve(canvas.KindMetric)
	return canvas.NodeView{ID: id, Kind: canvas.KindMetric, Title: title, Rows: rows, Style: style}
}

func TestNew(t *testing.T) {
	tests := []struct {
		w, h string
		want geom.Size
		ok   bool
	}{
		{"400px", "300px", geom.Size{W: 800, H: 450}, true},
		{"400", "200", geom.Size{W: 800, H: 300}, true},
		{"100%", "100%", geom.Size{W: 200, H: 150}, true},
		{"wide", "300px", geom.Size{}, false},
		{"0", "300px", geom.Size{}, false},
		{"NaN", "300px", geom.Size{}, false},
		{"400px", "Infpx", geom.Size{}, false},
	}
	for _, tt := range tests {
		s, err := New("graph", tt.w, tt.h)
		if (err == nil) != tt.ok {
			t.Errorf("New(%q, %q) error = %v", tt.w, tt.h, err)
			continue
		}
		if tt.ok && s.Size() != tt.want {
			t.Errorf("New(%q, %q) size = %v, want %v", tt.w, tt.h, s.Size(), tt.want)
		}
	}
	if _, err := New("bad id", "1", "1"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad id error = %v", err)
	}
}

func TestDrawNodeMeasure(t *testing.T) {
	s := newSurface(t)

	// title 3*7.5 wide; row 7*6.5 = 45.5 wide sets the width.
	// height: title 15+4, last row 3+13+5; border 2 on each side; 5 slack.
	size, err := s.DrawNode(metricView("A", "api", "avg 2ms"))
	if err != nil {
		t.Fatalf("DrawNode: %v", err)
	}
	if size != (geom.Size{W: 78.5, H: 49}) {
		t.Errorf("metric size = %v, want 78.5x49", size)
	}

	circleStyle, _ := canvas.Style{}.Resolve(canvas.KindCircle)
	size, err = s.DrawNode(canvas.NodeView{ID: "c", Kind: canvas.KindCircle, Title: "x", Style: circleStyle})
	if err != nil {
		t.Fatal(err)
	}
	if size != (geom.Size{W: 59, H: 59}) {
		t.Errorf("circle size = %v, want 59x59", size)
	}

	wide := metricView("w", "api")
	wide.Style.Width = 200
	size, _ = s.DrawNode(wide)
	if size.W != 209 {
		t.Errorf("overridden width = %g, want 209", size.W)
	}

	e, ok := s.Element("A")
	if !ok || e.Layer != LayerNodes || e.Rev != 1 {
		t.Fatalf("element A = %+v %v", e, ok)
	}
	for _, want := range []string{`id="A"`, `translate(0,0)`, `>api</text>`, `>avg 2ms</text>`, `fill="#4a555e"`} {
		if !strings.Contains(e.Markup, want) {
			t.Errorf("markup missing %q:\n%s", want, e.Markup)
		}
	}
}

func TestEscaping(t *testing.T) {
	s := newSurface(t)
	if _, err := s.DrawNode(metricView("A", "<b>&co", "x<y")); err != nil {
		t.Fatal(err)
	}
	e, _ := s.Element("A")
	if strings.Contains(e.Markup, "<b>") || !strings.Contains(e.Markup, "&lt;b&gt;&amp;co") {
		t.Errorf("title not escaped:\n%s", e.Markup)
	}
}

func TestTreeScenario(t *testing.T) {
	c, s := newCanvas(t, nil)
	err := c.CreateNodes(canvas.NodeSpec{
		ID: "A", Title: "A", X: canvas.Px(0), Y: canvas.Px(0),
		Children: []canvas.NodeSpec{{ID: "B", Title: "B"}, {ID: "C", Title: "C"}},
	})
	if err != nil {
		t.Fatalf("CreateNodes: %v", err)
	}

	for _, id := range []string{
		"arrow", "A", "B", "C",
		"line-A-B", "pointstart-A-B", "pointend-A-B",
		"line-A-C", "pointstart-A-C", "pointend-A-C",
	} {
		if _, ok := s.Element(id); !ok {
			t.Errorf("element %s missing", id)
		}
	}

	a, _ := c.Node("A")
	b, _ := c.Node("B")
	cn, _ := c.Node("C")
	if b.Pos.X != a.Rect().Right()+100 || cn.Pos.X != b.Pos.X {
		t.Errorf("children not in one column right of A: A=%v B=%v C=%v", a.Rect(), b.Pos, cn.Pos)
	}
	if b.Rect().CenterY()+cn.Rect().CenterY() != 2*a.Rect().CenterY() {
		t.Errorf("children not centered on A: B=%v C=%v A=%v", b.Rect(), cn.Rect(), a.Rect())
	}

	ab, _ := c.Connector("A", "B")
	path, _ := s.Element("line-A-B")
	want := "M " + num(ab.Route.LineStart().X) + " " + num(ab.Route.LineStart().Y)
	if !strings.Contains(path.Markup, want) || !strings.Contains(path.Markup, `marker-end="url(#arrow)"`) {
		t.Errorf("path markup = %s, want prefix %q", path.Markup, want)
	}
	marker, _ := s.Element("pointend-A-B")
	if !strings.Contains(marker.Markup, `r="3"`) {
		t.Errorf("marker radius should be link width + 1: %s", marker.Markup)
	}
	def, _ := s.Element("arrow")
	if !strings.Contains(def.Markup, "fill:"+canvas.DefaultLinkColor) {
		t.Errorf("arrow marker color: %s", def.Markup)
	}
}

func TestDragScenario(t *testing.T) {
	c, s := newCanvas(t, nil)
	err := c.CreateNodes(canvas.NodeSpec{
		ID: "A", Title: "A", X: canvas.Px(0), Y: canvas.Px(0),
		Children: []canvas.NodeSpec{{ID: "B", Title: "B"}, {ID: "C", Title: "C"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	s.Flush()

	untouched := []string{"A", "C", "line-A-C", "pointstart-A-C", "pointend-A-C"}
	before := map[string]Element{}
	for _, id := range untouched {
		before[id], _ = s.Element(id)
	}
	bRev, _ := s.Element("B")
	abRev, _ := s.Element("line-A-B")

	b, _ := c.Node("B")
	start := b.Rect().Origin()
	ct := c.Controller()
	ct.Handle(canvas.Event{Type: canvas.GestureMouseDown, Target: "B", X: start.X + 1, Y: start.Y + 1})
	ct.Handle(canvas.Event{Type: canvas.GestureMouseMove, X: start.X + 21, Y: start.Y - 9})
	ct.Handle(canvas.Event{Type: canvas.GestureMouseUp})

	if b.Pos != start.Add(geom.Point{X: 20, Y: -10}) {
		t.Errorf("B at %v, want %v", b.Pos, start.Add(geom.Point{X: 20, Y: -10}))
	}
	for _, id := range untouched {
		after, _ := s.Element(id)
		if after.Rev != before[id].Rev || after.Markup != before[id].Markup {
			t.Errorf("%s redrawn: rev %d -> %d", id, before[id].Rev, after.Rev)
		}
	}
	if e, _ := s.Element("B"); e.Rev != bRev.Rev+1 {
		t.Errorf("B rev = %d, want %d", e.Rev, bRev.Rev+1)
	}
	if e, _ := s.Element("line-A-B"); e.Rev != abRev.Rev+1 {
		t.Errorf("line-A-B rev = %d, want %d", e.Rev, abRev.Rev+1)
	}

	patched := map[string]bool{}
	for _, p := range s.Flush() {
		patched[p.ID] = true
	}
	for _, id := range []string{"B", "line-A-B", "pointstart-A-B", "pointend-A-B"} {
		if !patched[id] {
			t.Errorf("no patch for %s", id)
		}
	}
	for _, id := range untouched {
		if patched[id] {
			t.Errorf("unexpected patch for %s", id)
		}
	}
	if s.Cursor("B") != canvas.CursorDefault {
		t.Errorf("cursor = %s", s.Cursor("B"))
	}
}

func TestRemoveNodeElements(t *testing.T) {
	c, s := newCanvas(t, nil)
	a := canvas.NodeSpec{ID: "A", Title: "A", X: canvas.Px(0), Y: canvas.Px(0)}
	b := canvas.NodeSpec{ID: "B", Title: "B", X: canvas.Px(200), Y: canvas.Px(0), From: []string{"A"}}
	if err := c.CreateNodes(a, b); err != nil {
		t.Fatal(err)
	}
	s.Flush()

	c.RemoveNode("B")
	for _, id := range []string{"B", "line-A-B", "pointstart-A-B", "pointend-A-B"} {
		if _, ok := s.Element(id); ok {
			t.Errorf("%s still present", id)
		}
	}
	removed := 0
	for _, p := range s.Flush() {
		if p.Op == OpRemove {
			removed++
		}
	}
	if removed != 4 {
		t.Errorf("remove patches = %d, want 4", removed)
	}
	if got := len(s.Layer(LayerNodes)); got != 1 {
		t.Errorf("nodes layer = %d elements", got)
	}
}

func TestFlushCoalesces(t *testing.T) {
	s := newSurface(t)
	s.DrawNode(metricView("A", "a"))
	s.DrawNode(metricView("B", "b"))
	s.MoveNode("A", geom.Point{X: 5, Y: 5})
	s.MoveNode("A", geom.Point{X: 9, Y: 9})

	got := s.Flush()
	if len(got) != 2 {
		t.Fatalf("patches = %+v", got)
	}
	if got[0].ID != "B" || got[1].ID != "A" || got[1].Rev != 3 {
		t.Errorf("order or rev wrong: %+v", got)
	}
	if !strings.Contains(got[1].Markup, "translate(9,9)") {
		t.Errorf("stale markup: %s", got[1].Markup)
	}
	if s.Flush() != nil {
		t.Error("second Flush not empty")
	}
}

func TestWriteTo(t *testing.T) {
	c, s := newCanvas(t, func(o *canvas.Options) { o.LinkColor = "#ff0000" })
	a := canvas.NodeSpec{ID: "A", Title: "A", X: canvas.Px(0), Y: canvas.Px(0)}
	b := canvas.NodeSpec{ID: "B", Title: "B", X: canvas.Px(0), Y: canvas.Px(200), From: []string{"A"}}
	if err := c.CreateNodes(a, b); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	doc := buf.String()
	for _, want := range []string{
		`id="graph-graph" width="800px" height="450px"`,
		`<marker id="arrow"`,
		`style="fill:#ff0000"`,
		`<g id="relationSvgs">`,
		`id="line-A-B"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}
	if strings.Index(doc, `id="line-A-B"`) > strings.Index(doc, `<g id="A"`) {
		t.Error("links must be painted before nodes")
	}
	if !bytes.Equal(s.Bytes(), buf.Bytes()) {
		t.Error("Bytes() differs from WriteTo")
	}
}

// assertInSync checks that the link layer holds exactly the three elements
// of every registered connector and the node layer exactly the nodes.
func assertInSync(t *testing.T, c *canvas.Canvas, s *Surface) {
	t.Helper()
	want := make(map[string]bool)
	for _, conn := range c.Connectors() {
		for _, id := range []string{conn.ID.String(), conn.ID.StartMarkerID(), conn.ID.EndMarkerID()} {
			if want[id] {
				t.Errorf("connector %v shares element %s with another connector", conn.ID, id)
			}
			want[id] = true
		}
	}
	links := s.Layer(LayerLinks)
	if len(links) != 3*len(c.Connectors()) {
		t.Errorf("link elements = %d, want %d for %d connectors", len(links), 3*len(c.Connectors()), len(c.Connectors()))
	}
	for _, e := range links {
		if !want[e.ID] {
			t.Errorf("stray link element %s", e.ID)
		}
		delete(want, e.ID)
	}
	for id := range want {
		t.Errorf("connector element %s missing", id)
	}

	nodes := s.Layer(LayerNodes)
	if len(nodes) != c.Len() {
		t.Errorf("node elements = %d, want %d", len(nodes), c.Len())
	}
	for _, e := range nodes {
		if !c.Exists(e.ID) {
			t.Errorf("stray node element %s", e.ID)
		}
	}
}

func TestRegistryMatchesElements(t *testing.T) {
	type step struct {
		create []string    // nodes placed at distinct positions
		link   [][2]string // source, target
		remove string
	}
	tests := []struct {
		name  string
		steps []step
	}{
		{"hyphenated ids", []step{
			{create: []string{"a", "b", "c", "a-b", "b-c"}},
			{link: [][2]string{{"a-b", "c"}, {"a", "b-c"}, {"a", "b"}}},
			{remove: "a"},
			{remove: "a-b"},
			{link: [][2]string{{"b", "c"}, {"b-c", "c"}}},
			{remove: "c"},
		}},
		{"escape characters", []step{
			{create: []string{"a-b", "a~1b", "a~b", "c", "b~-c"}},
			{link: [][2]string{{"a-b", "c"}, {"a~1b", "c"}, {"a~b", "c"}, {"c", "b~-c"}}},
			{remove: "a~1b"},
			{remove: "b~-c"},
		}},
		{"ids resembling element ids", []step{
			{create: []string{"x", "y", "line", "x-y", "pointstart", "arrowhead"}},
			{link: [][2]string{{"x", "y"}, {"line", "x-y"}, {"pointstart", "x"}, {"arrowhead", "y"}}},
			{remove: "line"},
			{remove: "x-y"},
			{remove: "arrowhead"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s := newCanvas(t, nil)
			n := 0
			for _, st := range tt.steps {
				for _, id := range st.create {
					n++
					if _, err := c.CreateNode(canvas.NodeSpec{ID: id, X: canvas.Px(float64(n * 150)), Y: canvas.Px(float64(n%3) * 120)}); err != nil {
						t.Fatalf("CreateNode(%q): %v", id, err)
					}
				}
				for _, l := range st.link {
					if !c.CreateLink(l[0], l[1]) {
						t.Fatalf("CreateLink(%q, %q) = false", l[0], l[1])
					}
				}
				if st.remove != "" && !c.RemoveNode(st.remove) {
					t.Fatalf("RemoveNode(%q) = false", st.remove)
				}
				assertInSync(t, c, s)
			}
		})
	}
}

func TestReservedNodeIDs(t *testing.T) {
	c, s := newCanvas(t, nil)
	if _, err := c.CreateNode(canvas.NodeSpec{ID: "x", X: canvas.Px(0), Y: canvas.Px(0)}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.CreateNode(canvas.NodeSpec{ID: "y", X: canvas.Px(300), Y: canvas.Px(0)}); err != nil {
		t.Fatal(err)
	}
	c.CreateLink("x", "y")

	for _, id := range []string{"line-x-y", "pointstart-x-y", "pointend-x-y", "arrow", "arrow-1", "nodes", "relationSvgs", "graph-graph"} {
		_, err := c.CreateNode(canvas.NodeSpec{ID: id, X: canvas.Px(0), Y: canvas.Px(200)})
		if !errors.Is(err, errors.ErrCodeInvalidNodeID) {
			t.Errorf("CreateNode(%q) error = %v, want INVALID_NODE_ID", id, err)
		}
		if c.Exists(id) {
			t.Errorf("reserved id %q registered", id)
		}
	}
	if c.RemoveNode("line-x-y") {
		t.Error("RemoveNode of a reserved id reported a removal")
	}
	if e, ok := s.Element("line-x-y"); !ok || !strings.Contains(e.Markup, "<path") {
		t.Error("connector x->y lost its path element")
	}
	assertInSync(t, c, s)
}

func TestConnectorElementIDsAreDistinct(t *testing.T) {
	pairs := []canvas.ConnectorID{
		{Source: "a-b", Target: "c"},
		{Source: "a", Target: "b-c"},
		{Source: "a~1b", Target: "c"},
		{Source: "a", Target: "b~1c"},
		{Source: "a~", Target: "b"},
	}
	seen := make(map[string]canvas.ConnectorID)
	for _, id := range pairs {
		for _, el := range []string{id.String(), id.StartMarkerID(), id.EndMarkerID()} {
			if prev, ok := seen[el]; ok {
				t.Errorf("%v and %v share element id %s", prev, id, el)
			}
			seen[el] = id
		}
	}
	if got := (canvas.ConnectorID{Source: "a-b", Target: "c"}).String(); got != "line-a~1b-c" {
		t.Errorf("escaped id = %q", got)
	}
}
