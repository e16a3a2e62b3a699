package svg

import (
	"bytes"
	"fmt"
	"io"
)

// Bytes returns the full SVG document.
func (s *Surface) Bytes() []byte {
	var buf bytes.Buffer
	s.render(&buf)
	return buf.Bytes()
}

// WriteTo writes the full SVG document to w.
func (s *Surface) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	s.render(&buf)
	return buf.WriteTo(w)
}

func (s *Surface) render(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `<svg class="%s-graph ko-back" id="%s-graph" width="%spx" height="%spx" style="cursor:%s" xmlns="http://www.w3.org/2000/svg">`+"\n",
		escape(s.id), escape(s.id), num(s.width), num(s.height), s.Cursor(""))

	buf.WriteString("<defs>\n")
	writeLayer(buf, s.Layer(LayerDefs))
	buf.WriteString("</defs>\n")

	buf.WriteString(`<g id="relationSvgs">` + "\n")
	writeLayer(buf, s.Layer(LayerLinks))
	buf.WriteString("</g>\n")

	buf.WriteString(`<g id="nodes">` + "\n")
	writeLayer(buf, s.Layer(LayerNodes))
	buf.WriteString("</g>\n")

	buf.WriteString("</svg>\n")
}

func writeLayer(buf *bytes.Buffer, elems []Element) {
	for _, e := range elems {
		buf.WriteString("  ")
		buf.WriteString(e.Markup)
		buf.WriteByte('\n')
	}
}
