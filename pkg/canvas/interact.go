package canvas

import (
	"github.com/matzehuels/metricflow/pkg/geom"
	"github.com/matzehuels/metricflow/pkg/observability"
)

// State is the drag state of a [Controller].
type State int

const (
	StateIdle State = iota
	StateDraggingNode
	StateDraggingCanvas
)

func (s State) String() string {
	switch s {
	case StateDraggingNode:
		return "dragging-node"
	case StateDraggingCanvas:
		return "dragging-canvas"
	}
	return "idle"
}

// Event is a pointer event in canvas coordinates. Target is the id of the
// node under the pointer, or empty for the background.
type Event struct {
	Type   Gesture `json:"type"`
	Target string  `json:"target,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Point returns the event position.
func (e Event) Point() geom.Point { return geom.Point{X: e.X, Y: e.Y} }

// Controller turns pointer events into node and canvas drags.
//
//	idle --mousedown on node--> dragging-node
//	idle --mousedown elsewhere--> dragging-canvas
//	dragging-* --mousemove--> (translate, re-route) same state
//	dragging-* --mouseup--> idle
type Controller struct {
	canvas *Canvas
	state  State
	node   string
	last   geom.Point
}

// State returns the current drag state.
func (ct *Controller) State() State { return ct.state }

// Dragging returns the id of the node being dragged, if any.
func (ct *Controller) Dragging() (string, bool) {
	return ct.node, ct.state == StateDraggingNode
}

// Handle dispatches ev to bound handlers, then feeds it to the drag state
// machine. With dragging disabled only the handlers run. It returns the
// number of connectors re-routed.
func (ct *Controller) Handle(ev Event) int {
	c := ct.canvas
	c.dispatch(ev)
	if !c.opts.DragEnabled {
		return 0
	}

	switch ev.Type {
	case GestureMouseDown:
		ct.last = ev.Point()
		if ev.Target != "" && c.Exists(ev.Target) {
			ct.state, ct.node = StateDraggingNode, ev.Target
		} else {
			ct.state, ct.node = StateDraggingCanvas, ""
		}
		c.surface.SetCursor(ct.node, CursorMove)

	case GestureMouseMove:
		if ct.state == StateIdle {
			return 0
		}
		d := ev.Point().Sub(ct.last)
		ct.last = ev.Point()
		if ct.state == StateDraggingNode {
			if !c.Exists(ct.node) {
				ct.reset()
				return 0
			}
			n := c.moveBy(ct.node, d)
			observability.Canvas().OnDrag("node", n)
			return n
		}
		n := c.translateAll(d)
		observability.Canvas().OnDrag("canvas", n)
		return n

	case GestureMouseUp:
		if ct.state != StateIdle {
			if ct.node == "" || c.Exists(ct.node) {
				c.surface.SetCursor(ct.node, CursorDefault)
			}
		}
		ct.reset()
	}
	return 0
}

func (ct *Controller) reset() {
	ct.state, ct.node = StateIdle, ""
}
