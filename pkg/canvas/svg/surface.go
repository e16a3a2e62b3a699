package svg

import (
	"fmt"
	"slices"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/fonts"
	"github.com/matzehuels/metricflow/pkg/geom"
)

// Layer is the group an element is drawn in. Links are drawn below nodes.
type Layer string

const (
	LayerDefs  Layer = "defs"
	LayerLinks Layer = "links"
	LayerNodes Layer = "nodes"
)

// Layers lists the layers in paint order.
var Layers = []Layer{LayerDefs, LayerLinks, LayerNodes}

// Element is one drawn element.
type Element struct {
	ID     string `json:"id"`
	Layer  Layer  `json:"layer"`
	Rev    int    `json:"rev"`
	Markup string `json:"markup"`
}

// Op is the kind of change recorded in a [Patch].
type Op string

const (
	OpUpsert Op = "upsert"
	OpRemove Op = "remove"
	OpCursor Op = "cursor"
)

// Patch is one journaled change.
type Patch struct {
	Op     Op     `json:"op"`
	ID     string `json:"id"`
	Layer  Layer  `json:"layer,omitempty"`
	Rev    int    `json:"rev,omitempty"`
	Markup string `json:"markup,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

// MeasureFunc measures a line of text at a font size in pixels.
type MeasureFunc func(text string, size float64) (fonts.Metrics, error)

// Option configures a Surface.
type Option func(*Surface)

// WithMeasure replaces the font-based text measurement.
func WithMeasure(fn MeasureFunc) Option { return func(s *Surface) { s.measure = fn } }

// WithFontFamily sets the font-family written on text elements.
func WithFontFamily(family string) Option { return func(s *Surface) { s.fontFamily = family } }

// Surface is an SVG drawing surface for one canvas.
type Surface struct {
	id         string
	width      float64
	height     float64
	measure    MeasureFunc
	fontFamily string

	elems   map[string]*Element
	order   map[Layer][]string
	views   map[string]canvas.NodeView
	cursors map[string]canvas.Cursor
	markers []string
	journal []Patch
}

var _ canvas.Surface = (*Surface)(nil)

// New creates a surface for the canvas element id with the given width and
// height attributes ("800px", "600", "100%"). The drawing area is twice as
// wide and one and a half times as tall as the element.
func New(id, width, height string, opts ...Option) (*Surface, error) {
	if err := errors.ValidateNodeID(id); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "canvas id")
	}
	w, err := canvas.ParsePixels(width)
	if err != nil {
		return nil, err
	}
	h, err := canvas.ParsePixels(height)
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "canvas size must be positive, got %sx%s", width, height)
	}

	s := &Surface{
		id:         id,
		width:      w * 2,
		height:     h * 1.5,
		measure:    fonts.Measure,
		fontFamily: fonts.FontFamily,
		elems:      make(map[string]*Element),
		order:      make(map[Layer][]string),
		views:      make(map[string]canvas.NodeView),
		cursors:    make(map[string]canvas.Cursor),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ID returns the canvas element id.
func (s *Surface) ID() string { return s.id }

// Size returns the drawing area.
func (s *Surface) Size() geom.Size { return geom.Size{W: s.width, H: s.height} }

// Element returns a copy of the element with id.
func (s *Surface) Element(id string) (Element, bool) {
	e, ok := s.elems[id]
	if !ok {
		return Element{}, false
	}
	return *e, true
}

// Elements returns every element in paint order: marker definitions, links,
// then nodes.
func (s *Surface) Elements() []Element {
	out := make([]Element, 0, len(s.elems))
	for _, l := range Layers {
		out = append(out, s.Layer(l)...)
	}
	return out
}

// Layer returns the elements of one layer in paint order.
func (s *Surface) Layer(l Layer) []Element {
	out := make([]Element, 0, len(s.order[l]))
	for _, id := range s.order[l] {
		out = append(out, *s.elems[id])
	}
	return out
}

// Flush returns the changes since the last flush and clears the journal.
// Repeated changes to one element collapse into the last one, ordered by
// when that last change happened.
func (s *Surface) Flush() []Patch {
	if len(s.journal) == 0 {
		return nil
	}
	type key struct {
		op bool // cursor patches are kept apart from content patches
		id string
	}
	last := make(map[key]int, len(s.journal))
	for i, p := range s.journal {
		last[key{p.Op == OpCursor, p.ID}] = i
	}
	out := make([]Patch, 0, len(last))
	for i, p := range s.journal {
		if last[key{p.Op == OpCursor, p.ID}] == i {
			out = append(out, p)
		}
	}
	s.journal = s.journal[:0]
	return out
}

// =============================================================================
// canvas.Surface
// =============================================================================

// DrawNode renders a node and returns its measured size. Ids of the
// document's own groups are rejected.
func (s *Surface) DrawNode(v canvas.NodeView) (geom.Size, error) {
	if v.ID == "nodes" || v.ID == "relationSvgs" || v.ID == s.id+"-graph" {
		return geom.Size{}, errors.New(errors.ErrCodeInvalidNodeID, "node id %q is reserved by the document", v.ID)
	}
	box, err := s.layoutNode(v)
	if err != nil {
		return geom.Size{}, err
	}
	s.views[v.ID] = v
	s.upsert(v.ID, LayerNodes, s.nodeMarkup(v, box))
	return box.size(), nil
}

// MoveNode redraws a node at pos.
func (s *Surface) MoveNode(id string, pos geom.Point) {
	v, ok := s.views[id]
	if !ok {
		return
	}
	v.Pos = pos
	s.views[id] = v
	box, err := s.layoutNode(v)
	if err != nil {
		return
	}
	s.upsert(id, LayerNodes, s.nodeMarkup(v, box))
}

// RemoveNode deletes a node element.
func (s *Surface) RemoveNode(id string) {
	delete(s.views, id)
	delete(s.cursors, id)
	s.remove(id)
}

// DrawConnector renders the path and both markers of a connector.
func (s *Surface) DrawConnector(v canvas.ConnectorView) {
	marker := s.marker(v.Color)
	r := v.Route
	ls, le := r.LineStart(), r.LineEnd()
	ms, me := r.StartMarker(), r.EndMarker()

	s.upsert(v.ID.String(), LayerLinks, fmt.Sprintf(
		`<path id="%s" d="M %s %s L %s %s" stroke="%s" stroke-width="%s" fill="none" marker-end="url(#%s)"/>`,
		escape(v.ID.String()), num(ls.X), num(ls.Y), num(le.X), num(le.Y), v.Color, num(v.Width), marker))
	s.upsert(v.ID.StartMarkerID(), LayerLinks, circle(v.ID.StartMarkerID(), ms, v))
	s.upsert(v.ID.EndMarkerID(), LayerLinks, circle(v.ID.EndMarkerID(), me, v))
}

func circle(id string, c geom.Point, v canvas.ConnectorView) string {
	return fmt.Sprintf(`<circle id="%s" cx="%s" cy="%s" r="%s" stroke="%s" stroke-width="%s" fill="none"/>`,
		escape(id), num(c.X), num(c.Y), num(v.Width+1), v.Color, num(v.Width))
}

// RemoveConnector deletes the path and both markers of a connector.
func (s *Surface) RemoveConnector(id canvas.ConnectorID) {
	s.remove(id.String())
	s.remove(id.StartMarkerID())
	s.remove(id.EndMarkerID())
}

// SetCursor records the cursor over a node or, for an empty id, the canvas.
func (s *Surface) SetCursor(id string, c canvas.Cursor) {
	if id != "" {
		if _, ok := s.elems[id]; !ok {
			return
		}
	}
	s.cursors[id] = c
	target := id
	if target == "" {
		target = s.id + "-graph"
	}
	s.journal = append(s.journal, Patch{Op: OpCursor, ID: target, Cursor: string(c)})
}

// Cursor returns the cursor set for a node or, for an empty id, the canvas.
func (s *Surface) Cursor(id string) canvas.Cursor {
	if c, ok := s.cursors[id]; ok {
		return c
	}
	return canvas.CursorDefault
}

// =============================================================================
// Element bookkeeping
// =============================================================================

func (s *Surface) upsert(id string, layer Layer, markup string) {
	e, ok := s.elems[id]
	if !ok {
		e = &Element{ID: id, Layer: layer}
		s.elems[id] = e
		s.order[layer] = append(s.order[layer], id)
	}
	e.Rev++
	e.Markup = markup
	s.journal = append(s.journal, Patch{Op: OpUpsert, ID: id, Layer: layer, Rev: e.Rev, Markup: markup})
}

func (s *Surface) remove(id string) {
	e, ok := s.elems[id]
	if !ok {
		return
	}
	delete(s.elems, id)
	s.order[e.Layer] = slices.DeleteFunc(s.order[e.Layer], func(x string) bool { return x == id })
	s.journal = append(s.journal, Patch{Op: OpRemove, ID: id, Layer: e.Layer})
}

// marker returns the arrowhead marker id for a link color, defining the
// marker the first time a color is used.
func (s *Surface) marker(color string) string {
	i := slices.Index(s.markers, color)
	if i >= 0 {
		return markerID(i)
	}
	s.markers = append(s.markers, color)
	id := markerID(len(s.markers) - 1)
	s.upsert(id, LayerDefs, fmt.Sprintf(
		`<marker id="%s" markerWidth="13" markerHeight="13" refX="6" refY="7" orient="auto"><path d="M2,10 L6,7 L2,4 L2,10" style="fill:%s"/></marker>`,
		id, color))
	return id
}

func markerID(i int) string {
	if i == 0 {
		return "arrow"
	}
	return fmt.Sprintf("arrow-%d", i)
}
