package layout

import (
	"math"

	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/geom"
)

// Flow is the direction children are laid out in relative to their parent.
type Flow string

const (
	FlowHorizontal Flow = "horizontal"
	FlowVertical   Flow = "vertical"
)

// Valid reports whether f is a known flow.
func (f Flow) Valid() bool { return f == FlowHorizontal || f == FlowVertical }

// RootLevel is the depth of the node a layout pass starts from.
const RootLevel = 1

// Engine computes child positions for one flow and two base spacings.
type Engine struct {
	Flow     Flow
	SpacingX float64 // distance along x between a parent and its children (horizontal flow)
	SpacingY float64 // distance along y between a parent and its children (vertical flow)
}

// Parent describes the already placed node whose children are being laid out.
type Parent struct {
	ID    string
	Level int
	Rect  geom.Rect
}

// Child is one child to place. Pos is non-nil when the caller fixed the
// child's coordinates; such children keep them but still occupy their slot.
type Child struct {
	ID   string
	Size geom.Size
	Pos  *geom.Point
}

// Placement is the computed position of one node.
type Placement struct {
	ID     string
	Parent string
	Level  int
	Pos    geom.Point
}

// Anchor is the origin of a sibling group: the first slot's position along
// the flow axis and the center line of the first slot across it.
type Anchor struct {
	Parent string
	Origin geom.Point
	Stride float64
}

// Anchors remembers sibling anchors by level for one layout pass.
type Anchors map[int]Anchor

// Gap returns the sibling gap for children of a parent at level.
func (e Engine) Gap(level int) float64 {
	return e.crossSpacing() / math.Pow(2, float64(level))
}

func (e Engine) crossSpacing() float64 {
	if e.Flow == FlowVertical {
		return e.SpacingX
	}
	return e.SpacingY
}

// LayoutChildren places children around p. anchors may be nil when the caller
// does not need alignment across calls.
func (e Engine) LayoutChildren(p Parent, children []Child, anchors Anchors) []Placement {
	if len(children) == 0 {
		return nil
	}

	out := make([]Placement, 0, len(children))
	place := func(c Child, pos geom.Point) {
		if c.Pos != nil {
			pos = *c.Pos
		}
		out = append(out, Placement{ID: c.ID, Parent: p.ID, Level: p.Level + 1, Pos: pos})
	}

	if len(children) == 1 {
		place(children[0], e.single(p.Rect, children[0].Size))
		return out
	}

	a, ok := anchors[p.Level]
	if !ok || a.Parent != p.ID {
		a = e.anchor(p, children)
		if anchors != nil {
			anchors[p.Level] = a
		}
	}
	for i, c := range children {
		place(c, e.slot(a, i, c.Size))
	}
	return out
}

func (e Engine) single(pr geom.Rect, s geom.Size) geom.Point {
	if e.Flow == FlowVertical {
		return geom.Point{X: pr.CenterX() - s.W/2, Y: pr.Bottom() + e.SpacingY}
	}
	return geom.Point{X: pr.Right() + e.SpacingX, Y: pr.Y}
}

func (e Engine) anchor(p Parent, children []Child) Anchor {
	var extent float64
	for _, c := range children {
		if e.Flow == FlowVertical {
			extent = max(extent, c.Size.W)
		} else {
			extent = max(extent, c.Size.H)
		}
	}
	stride := extent + e.Gap(p.Level)
	span := float64(len(children)-1) * stride

	a := Anchor{Parent: p.ID, Stride: stride}
	if e.Flow == FlowVertical {
		a.Origin = geom.Point{X: p.Rect.CenterX() - span/2, Y: p.Rect.Bottom() + e.SpacingY}
	} else {
		a.Origin = geom.Point{X: p.Rect.Right() + e.SpacingX, Y: p.Rect.CenterY() - span/2}
	}
	return a
}

func (e Engine) slot(a Anchor, i int, s geom.Size) geom.Point {
	offset := float64(i) * a.Stride
	if e.Flow == FlowVertical {
		return geom.Point{X: a.Origin.X + offset - s.W/2, Y: a.Origin.Y}
	}
	return geom.Point{X: a.Origin.X, Y: a.Origin.Y + offset - s.H/2}
}

// Node is one node of a tree handed to [Engine.Layout].
type Node struct {
	ID       string
	Pos      *geom.Point
	Children []*Node
}

// Measurer materializes a node at a provisional position and reports its
// measured size. Measuring the same node twice must return the same size.
type Measurer interface {
	Measure(n *Node, at geom.Point) (geom.Size, error)
}

// MeasureFunc adapts a function to [Measurer].
type MeasureFunc func(n *Node, at geom.Point) (geom.Size, error)

func (f MeasureFunc) Measure(n *Node, at geom.Point) (geom.Size, error) { return f(n, at) }

type frame struct {
	node  *Node
	rect  geom.Rect
	level int
}

// Layout walks the tree rooted at root depth-first and returns one placement
// per node, root first. The root must carry an explicit position.
func (e Engine) Layout(root *Node, m Measurer) ([]Placement, error) {
	if root == nil {
		return nil, nil
	}
	if root.Pos == nil {
		return nil, errors.New(errors.ErrCodeInvalidLayoutInput, "node %q has no explicit x and y", root.ID)
	}

	size, err := m.Measure(root, *root.Pos)
	if err != nil {
		return nil, err
	}

	out := []Placement{{ID: root.ID, Level: RootLevel, Pos: *root.Pos}}
	anchors := Anchors{}
	stack := []frame{{node: root, rect: geom.RectAt(*root.Pos, size), level: RootLevel}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(f.node.Children) == 0 {
			continue
		}

		children := make([]Child, len(f.node.Children))
		for i, cn := range f.node.Children {
			at := f.rect.Origin()
			if cn.Pos != nil {
				at = *cn.Pos
			}
			s, err := m.Measure(cn, at)
			if err != nil {
				return nil, err
			}
			children[i] = Child{ID: cn.ID, Size: s, Pos: cn.Pos}
		}

		placed := e.LayoutChildren(Parent{ID: f.node.ID, Level: f.level, Rect: f.rect}, children, anchors)
		out = append(out, placed...)

		for i := len(placed) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				node:  f.node.Children[i],
				rect:  geom.RectAt(placed[i].Pos, children[i].Size),
				level: placed[i].Level,
			})
		}
	}
	return out, nil
}
