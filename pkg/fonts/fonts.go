// Package fonts provides the font used to measure and render node text.
//
// Node sizes depend on their text, so measurement must match what a browser
// draws closely enough for connectors to land on node borders. The Go Regular
// face from golang.org/x/image is compiled into the binary and used both for
// measurement and as the first entry of the SVG font-family.
package fonts

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontFamily is the CSS font-family written on every text element.
const FontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

// Metrics describes the extent of a line of text.
type Metrics struct {
	Width  float64 // advance width
	Height float64 // ascent plus descent
}

var (
	parsed     *opentype.Font
	parseErr   error
	parseOnce  sync.Once
	facesMu    sync.Mutex
	faceBySize = map[float64]font.Face{}
)

func regular() (*opentype.Font, error) {
	parseOnce.Do(func() {
		parsed, parseErr = opentype.Parse(goregular.TTF)
	})
	return parsed, parseErr
}

// Face returns the Go Regular face at size pixels. Faces are cached per size.
func Face(size float64) (font.Face, error) {
	facesMu.Lock()
	defer facesMu.Unlock()

	if f, ok := faceBySize[size]; ok {
		return f, nil
	}
	fnt, err := regular()
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	faceBySize[size] = f
	return f, nil
}

// Measure returns the width and line height of text at size pixels.
func Measure(text string, size float64) (Metrics, error) {
	f, err := Face(size)
	if err != nil {
		return Metrics{}, err
	}
	facesMu.Lock()
	defer facesMu.Unlock()

	m := f.Metrics()
	return Metrics{
		Width:  fixedToFloat(font.MeasureString(f, text)),
		Height: fixedToFloat(m.Ascent + m.Descent),
	}, nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
