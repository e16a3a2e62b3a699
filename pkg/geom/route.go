package geom

// Routing constants. They are fixed in pixels and are not configurable.
const (
	// Tolerance widens the source box horizontally when testing whether the
	// target sits above or below it.
	Tolerance = 40.0
	// LineOffset detaches the path endpoints from the node borders.
	LineOffset = 8.0
	// MarkerOffset places the endpoint marker circles between border and path.
	MarkerOffset = 4.0
)

// Side is the cardinal direction a connector leaves its source box from.
type Side string

const (
	SideUnknown Side = ""
	SideUp      Side = "up"
	SideDown    Side = "down"
	SideLeft    Side = "left"
	SideRight   Side = "right"
)

// Sides lists the known sides in routing priority order.
var Sides = []Side{SideDown, SideUp, SideRight, SideLeft}

// Valid reports whether s is one of the four cardinal sides.
func (s Side) Valid() bool {
	switch s {
	case SideUp, SideDown, SideLeft, SideRight:
		return true
	}
	return false
}

// unit is the outward direction of the side on the source box.
func (s Side) unit() Point {
	switch s {
	case SideUp:
		return Point{0, -1}
	case SideDown:
		return Point{0, 1}
	case SideLeft:
		return Point{-1, 0}
	default:
		return Point{1, 0}
	}
}

func (s Side) offset(d float64) Point {
	u := s.unit()
	return Point{u.X * d, u.Y * d}
}

// Routed is the outcome of [Route]: the side and the anchor points on the
// source and target borders.
type Routed struct {
	Side  Side
	Start Point
	End   Point
}

// LineStart is where the connector path begins.
func (r Routed) LineStart() Point { return r.Start.Add(r.Side.offset(LineOffset)) }

// LineEnd is where the connector path (and its arrowhead) ends.
func (r Routed) LineEnd() Point { return r.End.Sub(r.Side.offset(LineOffset)) }

// StartMarker is the center of the marker circle at the source end.
func (r Routed) StartMarker() Point { return r.Start.Add(r.Side.offset(MarkerOffset)) }

// EndMarker is the center of the marker circle at the target end.
func (r Routed) EndMarker() Point { return r.End.Sub(r.Side.offset(MarkerOffset)) }

// Shift moves the anchor points by per-link pixel offsets.
func (r Routed) Shift(start, end Point) Routed {
	r.Start = r.Start.Add(start)
	r.End = r.End.Add(end)
	return r
}

// Classify picks the side for a connector from src to dst. prev is returned
// when no directional rule matches; an unknown prev falls back to SideRight.
func Classify(src, dst Rect, prev Side) Side {
	overlapX := dst.Right() > src.X-Tolerance && dst.X < src.Right()+Tolerance
	overlapY := dst.Y < src.Bottom() && dst.Bottom() > src.Y

	switch {
	case overlapX && dst.Y > src.Y:
		return SideDown
	case overlapX && dst.Y < src.Y:
		return SideUp
	case dst.X > src.Right() && overlapY:
		return SideRight
	case dst.Right() < src.X-Tolerance && overlapY:
		return SideLeft
	}
	if prev.Valid() {
		return prev
	}
	return SideRight
}

// Route classifies the pair and computes anchor points for the chosen side.
func Route(src, dst Rect, prev Side) Routed {
	side := Classify(src, dst, prev)
	return Anchor(src, dst, side)
}

// Anchor computes the border anchor points of src and dst for a given side.
func Anchor(src, dst Rect, side Side) Routed {
	r := Routed{Side: side}
	switch side {
	case SideUp:
		r.Start = Point{src.CenterX(), src.Y}
		r.End = Point{dst.CenterX(), dst.Bottom()}
	case SideDown:
		r.Start = Point{src.CenterX(), src.Bottom()}
		r.End = Point{dst.CenterX(), dst.Y}
	case SideLeft:
		r.Start = Point{src.X, src.CenterY()}
		r.End = Point{dst.Right(), dst.CenterY()}
	default:
		r.Side = SideRight
		r.Start = Point{src.Right(), src.CenterY()}
		r.End = Point{dst.X, dst.CenterY()}
	}
	return r
}
