package canvas

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/layout"
)

// DefaultLinkColor is the connector and arrowhead color used when none is set.
const DefaultLinkColor = "#6c956c"

// Options configures a canvas. Field tags are the recognized option keys.
type Options struct {
	// AutoLayout makes CreateNodes finish with a full connector redraw.
	AutoLayout  bool        `mapstructure:"auto-layout" json:"auto-layout"`
	DragEnabled bool        `mapstructure:"drag-enabled" json:"drag-enabled"`
	Flow        layout.Flow `mapstructure:"flow" json:"flow"`

	LinkStartOffsetX float64 `mapstructure:"link-start-offset-x" json:"link-start-offset-x"`
	LinkStartOffsetY float64 `mapstructure:"link-start-offset-y" json:"link-start-offset-y"`
	LinkEndOffsetX   float64 `mapstructure:"link-end-offset-x" json:"link-end-offset-x"`
	LinkEndOffsetY   float64 `mapstructure:"link-end-offset-y" json:"link-end-offset-y"`
	LinkWidth        float64 `mapstructure:"link-width" json:"link-width"`
	LinkColor        string  `mapstructure:"link-color" json:"link-color"`

	NodeDistanceX float64 `mapstructure:"node-distance-x" json:"node-distance-x"`
	NodeDistanceY float64 `mapstructure:"node-distance-y" json:"node-distance-y"`
}

// DefaultOptions returns the options used for every omitted key.
func DefaultOptions() Options {
	return Options{
		DragEnabled:   true,
		Flow:          layout.FlowHorizontal,
		LinkWidth:     2,
		LinkColor:     DefaultLinkColor,
		NodeDistanceX: 100,
		NodeDistanceY: 100,
	}
}

// DecodeOptions builds Options from a loose key/value map, as read from a
// config file or a JSON request. Omitted keys keep their defaults and
// unrecognized keys are ignored. Pixel strings such as "4px" are accepted for
// numeric options.
func DecodeOptions(raw map[string]any) (Options, error) {
	opts := DefaultOptions()
	if len(raw) == 0 {
		return opts, nil
	}
	if err := Decode(raw, &opts); err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidOptions, err, "decode options")
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks option values.
func (o Options) Validate() error {
	if !o.Flow.Valid() {
		return errors.New(errors.ErrCodeInvalidOptions, "flow must be horizontal or vertical, got %q", o.Flow)
	}
	if err := errors.ValidateColor(o.LinkColor); err != nil {
		return err
	}
	if o.LinkWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "link-width must be positive, got %g", o.LinkWidth)
	}
	if o.NodeDistanceX < 0 || o.NodeDistanceY < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "node distances cannot be negative")
	}
	return nil
}

func (o Options) engine() layout.Engine {
	return layout.Engine{Flow: o.Flow, SpacingX: o.NodeDistanceX, SpacingY: o.NodeDistanceY}
}

// Decode runs the shared mapstructure pipeline used for options and node
// specs: weakly typed input, pixel strings to numbers, single values to
// slices, unknown keys ignored.
func Decode(input any, out any, hooks ...mapstructure.DecodeHookFunc) error {
	all := append([]mapstructure.DecodeHookFunc{PixelHook()}, hooks...)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(all...),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// PixelHook converts strings such as "15px" or "2" into floats.
func PixelHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
			return data, nil
		}
		v, err := ParsePixels(data.(string))
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// ParsePixels parses a CSS-like length ("15px", "100%", "2.5") into a number.
// Units are stripped, not converted.
func ParsePixels(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid length %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "length %q is not finite", s)
	}
	return v, nil
}
