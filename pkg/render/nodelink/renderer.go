package nodelink

import (
	"context"
	"time"

	"github.com/matzehuels/metricflow/pkg/cache"
	"github.com/matzehuels/metricflow/pkg/errors"
)

// Format is a Graphviz output format.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want dot, svg or png)", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	}
	return "text/vnd.graphviz; charset=utf-8"
}

// Renderer renders DOT documents, keeping Graphviz output in a cache keyed
// by format and document.
type Renderer struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRenderer creates a renderer backed by c. A nil cache disables caching.
func NewRenderer(c cache.Cache, ttl time.Duration) *Renderer {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Renderer{cache: c, ttl: ttl}
}

// Render returns dot in format f. FormatDOT returns the input unchanged.
// Cache failures are not fatal; the document is rendered afresh.
func (r *Renderer) Render(ctx context.Context, dot string, f Format) ([]byte, error) {
	if f == FormatDOT {
		return []byte(dot), nil
	}

	key := cache.Key("graphviz", string(f), dot)
	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	var (
		data []byte
		err  error
	)
	switch f {
	case FormatSVG:
		data, err = RenderSVG(ctx, dot)
	case FormatPNG:
		data, err = RenderPNG(ctx, dot)
	default:
		_, err = ParseFormat(string(f))
	}
	if err != nil {
		return nil, err
	}
	_ = r.cache.Set(ctx, key, data, r.ttl)
	return data, nil
}
