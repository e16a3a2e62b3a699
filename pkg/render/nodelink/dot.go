package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/graph"
)

const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Detailed adds data rows to metric node labels. When false only the
	// title is shown.
	Detailed bool
	// LinkColor colors edges. Empty uses black.
	LinkColor string
}

// ToDOT converts a snapshot to Graphviz DOT with every node pinned at its
// canvas position. Render it with [RenderSVG] or [RenderPNG].
func ToDOT(s graph.Snapshot, opts Options) string {
	_, _, _, maxY := s.Bounds()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", strconv.Quote(graphName(s)))
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [fixedsize=true, fontsize=12, style=filled, fillcolor=white];\n")
	if opts.LinkColor != "" {
		fmt.Fprintf(&buf, "  edge [color=%q];\n", opts.LinkColor)
	}
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, maxY, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func graphName(s graph.Snapshot) string {
	if s.ID == "" {
		return "G"
	}
	return s.ID
}

func nodeAttrs(n graph.Node, maxY float64, detailed bool) []string {
	cx := n.X + n.W/2
	cy := maxY - (n.Y + n.H/2)
	attrs := []string{
		fmt.Sprintf("label=%q", label(n, detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(cy)),
		fmt.Sprintf("width=%s", num(n.W/pointsPerInch)),
		fmt.Sprintf("height=%s", num(n.H/pointsPerInch)),
	}
	switch n.Kind {
	case "circle":
		attrs = append(attrs, "shape=ellipse")
	case "rectangle":
		attrs = append(attrs, "shape=box")
	default:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"")
	}
	return attrs
}

func label(n graph.Node, detailed bool) string {
	if !detailed || len(n.Rows) == 0 {
		return n.DisplayLabel()
	}
	return n.DisplayLabel() + "\n" + strings.Join(n.Rows, "\n")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders DOT to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT to PNG with the neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based width/height with the
// viewBox size so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, h := string(match[3]), string(match[4])
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s" viewBox="%s %s %s %s">`,
		w, h, match[1], match[2], w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
