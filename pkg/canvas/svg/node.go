package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/geom"
)

// Box model of a metric node, matching the classic HTML rendering.
const (
	padX        = 12.0 // left and right padding of title and rows
	titlePadY   = 2.0  // top and bottom padding of the title
	rowPadTop   = 3.0
	lastRowPadB = 5.0
	cornerR     = 5.0
	slack       = 5.0 // added to the measured box
	shapeFont   = 9.0 // title size inside circle and rectangle nodes
)

type row struct {
	text string
	y    float64 // top of the row inside the border
	h    float64
	base float64 // text baseline
}

// box is a node's measured geometry in node-local coordinates.
type box struct {
	border float64
	inner  geom.Size // content inside the border
	title  row
	rows   []row
}

func (b box) outer() geom.Size {
	return geom.Size{W: b.inner.W + 2*b.border, H: b.inner.H + 2*b.border}
}

func (b box) size() geom.Size {
	o := b.outer()
	return geom.Size{W: o.W + slack, H: o.H + slack}
}

func (s *Surface) layoutNode(v canvas.NodeView) (box, error) {
	st := v.Style
	b := box{border: st.BorderWidth}

	if v.Kind != canvas.KindMetric {
		m, err := s.measure(v.Title, shapeFont)
		if err != nil {
			return box{}, err
		}
		b.inner = geom.Size{W: st.Width, H: st.Height}
		b.title = row{text: v.Title, h: st.Height, base: st.Height/2 + m.Height/3}
		return b, nil
	}

	tm, err := s.measure(v.Title, st.TitleFontSize)
	if err != nil {
		return box{}, err
	}
	width := tm.Width
	b.title = row{text: v.Title, h: tm.Height + 2*titlePadY, base: titlePadY + tm.Height*0.8}

	y := b.title.h
	for i, text := range v.Rows {
		m, err := s.measure(text, st.DataFontSize)
		if err != nil {
			return box{}, err
		}
		width = max(width, m.Width)
		h := rowPadTop + m.Height
		if i == len(v.Rows)-1 {
			h += lastRowPadB
		}
		b.rows = append(b.rows, row{text: text, y: y, h: h, base: y + rowPadTop + m.Height*0.8})
		y += h
	}
	b.inner = geom.Size{W: width + 2*padX, H: y}

	if st.Width > 0 {
		b.inner.W = st.Width
	}
	if st.Height > 0 {
		b.inner.H = st.Height
	}
	return b, nil
}

func (s *Surface) nodeMarkup(v canvas.NodeView, b box) string {
	st := v.Style
	o := b.outer()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<g id="%s" class="ko-node ko-%s" transform="translate(%s,%s)"`,
		escape(v.ID), v.Kind, num(v.Pos.X), num(v.Pos.Y))
	if len(v.Events) > 0 {
		names := make([]string, len(v.Events))
		for i, g := range v.Events {
			names[i] = string(g)
		}
		fmt.Fprintf(&buf, ` data-events="%s"`, strings.Join(names, " "))
	}
	buf.WriteString(">")

	half := b.border / 2
	switch v.Kind {
	case canvas.KindCircle:
		fmt.Fprintf(&buf, `<ellipse cx="%s" cy="%s" rx="%s" ry="%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
			num(o.W/2), num(o.H/2), num((o.W-b.border)/2), num((o.H-b.border)/2),
			st.TitleColor, st.BorderColor, num(b.border))
		s.centeredText(&buf, b, o, st)

	case canvas.KindRectangle:
		fmt.Fprintf(&buf, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
			num(half), num(half), num(o.W-b.border), num(o.H-b.border), num(cornerR),
			st.TitleColor, st.BorderColor, num(b.border))
		s.centeredText(&buf, b, o, st)

	default:
		fmt.Fprintf(&buf, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s" stroke="%s" stroke-width="%s"/>`,
			num(half), num(half), num(o.W-b.border), num(o.H-b.border), num(cornerR),
			st.DataColor, st.BorderColor, num(b.border))
		fmt.Fprintf(&buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
			num(b.border), num(b.border), num(b.inner.W), num(b.title.h), st.TitleColor)
		s.text(&buf, b.border+padX, b.border+b.title.base, st.TitleFontSize, st.TitleFontColor, "", b.title.text)
		for i, r := range b.rows {
			if i > 0 {
				fmt.Fprintf(&buf, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="gray" stroke-width="1"/>`,
					num(b.border), num(b.border+r.y), num(b.border+b.inner.W), num(b.border+r.y))
			}
			s.text(&buf, b.border+padX, b.border+r.base, st.DataFontSize, st.DataFontColor, "", r.text)
		}
	}
	buf.WriteString("</g>")
	return buf.String()
}

func (s *Surface) centeredText(buf *bytes.Buffer, b box, o geom.Size, st canvas.ResolvedStyle) {
	s.text(buf, o.W/2, b.border+b.title.base, shapeFont, st.TitleFontColor, "middle", b.title.text)
}

func (s *Surface) text(buf *bytes.Buffer, x, y, size float64, color, anchor, content string) {
	if content == "" {
		return
	}
	fmt.Fprintf(buf, `<text x="%s" y="%s" font-family="%s" font-size="%s" fill="%s"`,
		num(x), num(y), escape(s.fontFamily), num(size), color)
	if anchor != "" {
		fmt.Fprintf(buf, ` text-anchor="%s"`, anchor)
	}
	fmt.Fprintf(buf, `>%s</text>`, escape(content))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
