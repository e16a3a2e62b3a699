package spec

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/errors"
)

// MethodInfo is one node of a method call tree as exported by method-timing
// collectors: a method, its run times in milliseconds, and the methods it
// called.
type MethodInfo struct {
	ID         string       `json:"id" yaml:"id"`
	Name       string       `json:"name" yaml:"name"`
	ClassName  string       `json:"className" yaml:"className"`
	MethodName string       `json:"methodName" yaml:"methodName"`
	MethodType string       `json:"methodType" yaml:"methodType"`
	AvgRunTime float64      `json:"avgRunTime" yaml:"avgRunTime"`
	MaxRunTime float64      `json:"maxRunTime" yaml:"maxRunTime"`
	MinRunTime float64      `json:"minRunTime" yaml:"minRunTime"`
	Children   []MethodInfo `json:"children,omitempty" yaml:"children,omitempty"`
}

// ReadMethodTree decodes a JSON method tree.
func ReadMethodTree(r io.Reader) (MethodInfo, error) {
	var m MethodInfo
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return MethodInfo{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode method tree")
	}
	if m.ID == "" {
		return MethodInfo{}, errors.New(errors.ErrCodeInvalidFormat, "method tree root has no id")
	}
	return m, nil
}

// ThresholdStyle highlights methods at or above a threshold.
type ThresholdStyle struct {
	// Threshold in milliseconds; zero disables highlighting.
	Threshold float64
	// Slow is applied to nodes whose average run time reaches Threshold.
	Slow canvas.Style
}

// MethodTree converts a method call tree into a NodeSpec tree rooted at
// (x, y). Each node shows its name and average, max and min run times.
// Methods reached through several paths appear once; later callers are
// linked to that node through From.
func MethodTree(root MethodInfo, x, y float64, ts ThresholdStyle) canvas.NodeSpec {
	b := treeBuilder{ts: ts, seen: map[string]bool{}, extra: map[string][]string{}}
	spec := b.build(root)
	spec.X, spec.Y = canvas.Px(x), canvas.Px(y)
	b.attach(&spec)
	return spec
}

type treeBuilder struct {
	ts    ThresholdStyle
	seen  map[string]bool
	extra map[string][]string // method id -> additional callers
}

func (b *treeBuilder) build(m MethodInfo) canvas.NodeSpec {
	b.seen[m.ID] = true
	title := m.Name
	if title == "" {
		title = m.ClassName + "." + m.MethodName
	}
	s := canvas.NodeSpec{
		ID:    m.ID,
		Title: title,
		Data: []canvas.DataRow{
			{Name: "avg: " + ms(m.AvgRunTime)},
			{Name: "max: " + ms(m.MaxRunTime)},
			{Name: "min: " + ms(m.MinRunTime)},
		},
	}
	if b.ts.Threshold > 0 && m.AvgRunTime >= b.ts.Threshold {
		s.Style = b.ts.Slow
	}
	for _, child := range m.Children {
		if b.seen[child.ID] {
			b.extra[child.ID] = append(b.extra[child.ID], m.ID)
			continue
		}
		s.Children = append(s.Children, b.build(child))
	}
	return s
}

func (b *treeBuilder) attach(s *canvas.NodeSpec) {
	s.From = append(s.From, b.extra[s.ID]...)
	for i := range s.Children {
		b.attach(&s.Children[i])
	}
}

func ms(v float64) string {
	return fmt.Sprintf("%s ms", strconv.FormatFloat(v, 'f', -1, 64))
}
