package canvas

import (
	"testing"

	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/layout"
)

func TestDecodeOptions(t *testing.T) {
	tests := []struct {
		name  string
		raw   map[string]any
		check func(t *testing.T, o Options)
		code  errors.Code
	}{
		{
			name: "empty keeps defaults",
			raw:  nil,
			check: func(t *testing.T, o Options) {
				if o != DefaultOptions() {
					t.Errorf("got %+v", o)
				}
			},
		},
		{
			name: "pixel strings and weak types",
			raw: map[string]any{
				"link-width":          "4px",
				"node-distance-x":     "150",
				"link-start-offset-y": -3,
				"drag-enabled":        "false",
				"auto-layout":         true,
				"flow":                "vertical",
				"unrecognized":        "ignored",
			},
			check: func(t *testing.T, o Options) {
				if o.LinkWidth != 4 || o.NodeDistanceX != 150 || o.LinkStartOffsetY != -3 {
					t.Errorf("numbers = %g %g %g", o.LinkWidth, o.NodeDistanceX, o.LinkStartOffsetY)
				}
				if o.DragEnabled || !o.AutoLayout || o.Flow != layout.FlowVertical {
					t.Errorf("flags = %v %v %s", o.DragEnabled, o.AutoLayout, o.Flow)
				}
				if o.NodeDistanceY != 100 || o.LinkColor != DefaultLinkColor {
					t.Errorf("omitted keys lost defaults: %+v", o)
				}
			},
		},
		{name: "bad flow", raw: map[string]any{"flow": "radial"}, code: errors.ErrCodeInvalidOptions},
		{name: "bad color", raw: map[string]any{"link-color": "#12345"}, code: errors.ErrCodeInvalidColor},
		{name: "bad width", raw: map[string]any{"link-width": 0}, code: errors.ErrCodeInvalidOptions},
		{name: "unparsable width", raw: map[string]any{"link-width": "wide"}, code: errors.ErrCodeInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := DecodeOptions(tt.raw)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeOptions: %v", err)
			}
			tt.check(t, o)
		})
	}
}

func TestParsePixels(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"15px", 15, true},
		{" 2.5 ", 2.5, true},
		{"100%", 100, true},
		{"-4px", -4, true},
		{"px", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"NaNpx", 0, false},
		{"Inf", 0, false},
		{"-Inf", 0, false},
		{"+Infinity%", 0, false},
		{"1e400", 0, false},
	}
	for _, tt := range tests {
		got, err := ParsePixels(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParsePixels(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePixels(%q) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestResolveKind(t *testing.T) {
	tests := []struct {
		spec NodeSpec
		want Kind
		err  bool
	}{
		{NodeSpec{}, KindMetric, false},
		{NodeSpec{Kind: KindCircle}, KindCircle, false},
		{NodeSpec{Style: Style{NodeType: KindRectangle}}, KindRectangle, false},
		{NodeSpec{Kind: KindCircle, Style: Style{NodeType: KindRectangle}}, KindCircle, false},
		{NodeSpec{Kind: "triangle"}, "", true},
	}
	for _, tt := range tests {
		got, err := tt.spec.ResolveKind()
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ResolveKind(%+v) = %q, %v", tt.spec, got, err)
		}
	}
}
