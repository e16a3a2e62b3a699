package canvas

import (
	"github.com/matzehuels/metricflow/pkg/errors"
)

// Kind is the visual kind of a node.
type Kind string

const (
	KindMetric    Kind = "metric"
	KindCircle    Kind = "circle"
	KindRectangle Kind = "rectangle"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindMetric || k == KindCircle || k == KindRectangle
}

// Gesture is a pointer event name that can be bound to a handler.
type Gesture string

const (
	GestureClick       Gesture = "click"
	GestureDblClick    Gesture = "dblclick"
	GestureMouseDown   Gesture = "mousedown"
	GestureMouseEnter  Gesture = "mouseenter"
	GestureMouseLeave  Gesture = "mouseleave"
	GestureMouseMove   Gesture = "mousemove"
	GestureMouseOver   Gesture = "mouseover"
	GestureMouseOut    Gesture = "mouseout"
	GestureMouseUp     Gesture = "mouseup"
	GestureContextMenu Gesture = "contextmenu"
)

// Gestures lists every bindable gesture.
var Gestures = []Gesture{
	GestureClick, GestureDblClick, GestureMouseDown, GestureMouseEnter, GestureMouseLeave,
	GestureMouseMove, GestureMouseOver, GestureMouseOut, GestureMouseUp, GestureContextMenu,
}

// Valid reports whether g is a known gesture.
func (g Gesture) Valid() bool {
	for _, known := range Gestures {
		if g == known {
			return true
		}
	}
	return false
}

// DataRow is one text row of a metric node's body.
type DataRow struct {
	Name string `mapstructure:"name" json:"name" yaml:"name"`
}

// NodeSpec is the caller-supplied description of a node and, optionally, of
// the subtree laid out below it.
type NodeSpec struct {
	ID     string    `mapstructure:"id" json:"id" yaml:"id"`
	Title  string    `mapstructure:"title" json:"title,omitempty" yaml:"title,omitempty"`
	Data   []DataRow `mapstructure:"data" json:"data,omitempty" yaml:"data,omitempty"`
	Kind   Kind      `mapstructure:"kind" json:"kind,omitempty" yaml:"kind,omitempty"`
	X      *float64  `mapstructure:"x" json:"x,omitempty" yaml:"x,omitempty"`
	Y      *float64  `mapstructure:"y" json:"y,omitempty" yaml:"y,omitempty"`
	From   []string  `mapstructure:"from" json:"from,omitempty" yaml:"from,omitempty"`
	Style  Style     `mapstructure:"style" json:"style,omitempty" yaml:"style,omitempty"`

	// Events binds gestures to handler names registered with [Canvas.Handle].
	Events map[Gesture]string `mapstructure:"events" json:"events,omitempty" yaml:"events,omitempty"`

	Children []NodeSpec `mapstructure:"children" json:"children,omitempty" yaml:"children,omitempty"`
}

// Px returns a pointer to v, for filling NodeSpec coordinates.
func Px(v float64) *float64 { return &v }

// Position returns the explicit coordinates, if both are set.
func (s NodeSpec) Position() (x, y float64, ok bool) {
	if s.X == nil || s.Y == nil {
		return 0, 0, false
	}
	return *s.X, *s.Y, true
}

// ResolveKind returns the spec's kind: Kind, then Style.NodeType, then metric.
func (s NodeSpec) ResolveKind() (Kind, error) {
	k := s.Kind
	if k == "" {
		k = s.Style.NodeType
	}
	if k == "" {
		return KindMetric, nil
	}
	if !k.Valid() {
		return "", errors.New(errors.ErrCodeInvalidNodeKind, "node %q: unsupported kind %q", s.ID, k)
	}
	return k, nil
}

// Style holds per-node visual overrides. Zero values mean "use the default".
type Style struct {
	NodeType       Kind     `mapstructure:"node-type" json:"node-type,omitempty" yaml:"node-type,omitempty"`
	Width          *float64 `mapstructure:"node-width" json:"node-width,omitempty" yaml:"node-width,omitempty"`
	Height         *float64 `mapstructure:"node-height" json:"node-height,omitempty" yaml:"node-height,omitempty"`
	BorderColor    string   `mapstructure:"border-color" json:"border-color,omitempty" yaml:"border-color,omitempty"`
	BorderWidth    *float64 `mapstructure:"border-width" json:"border-width,omitempty" yaml:"border-width,omitempty"`
	TitleColor     string   `mapstructure:"title-color" json:"title-color,omitempty" yaml:"title-color,omitempty"`
	TitleFontSize  *float64 `mapstructure:"title-font-size" json:"title-font-size,omitempty" yaml:"title-font-size,omitempty"`
	TitleFontColor string   `mapstructure:"title-font-color" json:"title-font-color,omitempty" yaml:"title-font-color,omitempty"`
	DataColor      string   `mapstructure:"data-color" json:"data-color,omitempty" yaml:"data-color,omitempty"`
	DataFontSize   *float64 `mapstructure:"data-font-size" json:"data-font-size,omitempty" yaml:"data-font-size,omitempty"`
	DataFontColor  string   `mapstructure:"data-font-color" json:"data-font-color,omitempty" yaml:"data-font-color,omitempty"`
}

// ResolvedStyle is a Style with every default filled in. Width and Height are
// zero for metric nodes without overrides; their size comes from their text.
type ResolvedStyle struct {
	Width          float64
	Height         float64
	BorderColor    string
	BorderWidth    float64
	TitleColor     string
	TitleFontSize  float64
	TitleFontColor string
	DataColor      string
	DataFontSize   float64
	DataFontColor  string
}

// Default style values.
const (
	DefaultBorderColor    = "#4a555e"
	DefaultBorderWidth    = 2.0
	DefaultTitleColor     = "#4a555e"
	DefaultTitleFontSize  = 15.0
	DefaultTitleFontColor = "white"
	DefaultDataColor      = "white"
	DefaultDataFontSize   = 13.0
	DefaultDataFontColor  = "black"
)

func defaultSize(k Kind) (w, h float64) {
	switch k {
	case KindCircle:
		return 50, 50
	case KindRectangle:
		return 60, 40
	}
	return 0, 0
}

// Resolve fills defaults for kind k and validates colors.
func (s Style) Resolve(k Kind) (ResolvedStyle, error) {
	r := ResolvedStyle{
		BorderColor:    or(s.BorderColor, DefaultBorderColor),
		BorderWidth:    orf(s.BorderWidth, DefaultBorderWidth),
		TitleColor:     or(s.TitleColor, DefaultTitleColor),
		TitleFontSize:  orf(s.TitleFontSize, DefaultTitleFontSize),
		TitleFontColor: or(s.TitleFontColor, DefaultTitleFontColor),
		DataColor:      or(s.DataColor, DefaultDataColor),
		DataFontSize:   orf(s.DataFontSize, DefaultDataFontSize),
		DataFontColor:  or(s.DataFontColor, DefaultDataFontColor),
	}
	w, h := defaultSize(k)
	r.Width = orf(s.Width, w)
	r.Height = orf(s.Height, h)
	for _, c := range []string{r.BorderColor, r.TitleColor, r.TitleFontColor, r.DataColor, r.DataFontColor} {
		if err := errors.ValidateColor(c); err != nil {
			return ResolvedStyle{}, err
		}
	}
	return r, nil
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orf(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
