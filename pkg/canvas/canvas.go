package canvas

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/geom"
	"github.com/matzehuels/metricflow/pkg/layout"
	"github.com/matzehuels/metricflow/pkg/observability"
)

// =============================================================================
// Canvas
// =============================================================================

// Canvas is a registry of nodes and connectors drawn onto one [Surface].
type Canvas struct {
	opts      Options
	surface   Surface
	logger    *log.Logger
	transform func(NodeSpec) NodeSpec

	nodes      map[string]*Node
	order      []string
	connectors map[ConnectorID]*Connector
	sides      map[ConnectorID]geom.Side
	handlers   map[string]HandlerFunc

	ctrl *Controller
}

// Option customizes a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger used for debug and warning output.
func WithLogger(l *log.Logger) Option {
	return func(c *Canvas) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSpecTransform installs a function applied to every spec handed to
// [Canvas.CreateNodes], including each child before it is laid out.
func WithSpecTransform(fn func(NodeSpec) NodeSpec) Option {
	return func(c *Canvas) { c.transform = fn }
}

// New creates an empty canvas drawing onto s.
func New(s Surface, opts Options, options ...Option) (*Canvas, error) {
	if s == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "surface is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c := &Canvas{
		opts:       opts,
		surface:    s,
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
		nodes:      make(map[string]*Node),
		connectors: make(map[ConnectorID]*Connector),
		sides:      make(map[ConnectorID]geom.Side),
		handlers:   make(map[string]HandlerFunc),
	}
	for _, o := range options {
		o(c)
	}
	c.ctrl = &Controller{canvas: c}
	return c, nil
}

// Options returns the canvas options.
func (c *Canvas) Options() Options { return c.opts }

// Surface returns the surface the canvas draws on.
func (c *Canvas) Surface() Surface { return c.surface }

// Controller returns the canvas's interaction controller.
func (c *Canvas) Controller() *Controller { return c.ctrl }

// =============================================================================
// Bulk creation and layout
// =============================================================================

// CreateNodes creates each spec in order. Specs with children are laid out as
// trees rooted at the spec; specs without children are created standalone and
// need explicit coordinates. The first error aborts the call, leaving nodes
// created so far in place. With auto-layout on, every connector is re-routed
// at the end.
func (c *Canvas) CreateNodes(specs ...NodeSpec) error {
	for _, s := range specs {
		s = c.apply(s)
		var err error
		if len(s.Children) > 0 {
			err = c.layoutTree(s)
		} else {
			_, err = c.CreateNode(s)
		}
		if err != nil {
			return err
		}
	}
	if c.opts.AutoLayout {
		c.RedrawConnectors()
	}
	return nil
}

func (c *Canvas) apply(s NodeSpec) NodeSpec {
	if c.transform == nil {
		return s
	}
	return c.transform(s)
}

// layoutTree materializes the tree rooted at root, places every descendant
// and links each child to its parent.
func (c *Canvas) layoutTree(root NodeSpec) (err error) {
	start := time.Now()
	flow := string(c.opts.Flow)
	observability.Canvas().OnLayoutStart(root.ID, flow)

	var placed int
	defer func() {
		observability.Canvas().OnLayoutComplete(root.ID, placed, time.Since(start), err)
	}()

	specs := make(map[*layout.Node]NodeSpec)
	var walk []*layout.Node
	tree := c.buildTree(root, specs, &walk)

	if existing, ok := c.nodes[root.ID]; ok && tree.Pos == nil {
		p := existing.Pos
		tree.Pos = &p
	}

	measure := layout.MeasureFunc(func(n *layout.Node, at geom.Point) (geom.Size, error) {
		if existing, ok := c.nodes[n.ID]; ok {
			return existing.Size, nil
		}
		node, err := c.materialize(specs[n], at)
		if err != nil {
			return geom.Size{}, err
		}
		return node.Size, nil
	})

	placements, err := c.opts.engine().Layout(tree, measure)
	if err != nil {
		return err
	}
	placed = len(placements)

	for _, p := range placements[1:] {
		c.moveTo(p.ID, p.Pos)
		c.CreateLink(p.Parent, p.ID)
	}
	for _, n := range walk {
		c.linkFrom(n.ID, specs[n].From)
	}

	c.logger.Debug("laid out tree", "root", root.ID, "nodes", placed, "flow", flow, "took", time.Since(start))
	return nil
}

func (c *Canvas) buildTree(s NodeSpec, specs map[*layout.Node]NodeSpec, walk *[]*layout.Node) *layout.Node {
	n := &layout.Node{ID: s.ID}
	if x, y, ok := s.Position(); ok {
		n.Pos = &geom.Point{X: x, Y: y}
	}
	specs[n] = s
	*walk = append(*walk, n)
	for _, child := range s.Children {
		n.Children = append(n.Children, c.buildTree(c.apply(child), specs, walk))
	}
	return n
}
