package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/metricflow/pkg/errors"
)

func sample() Snapshot {
	return Snapshot{
		ID:   "c1",
		Flow: "horizontal",
		Nodes: []Node{
			{ID: "A", Kind: "metric", Title: "api", X: 0, Y: 0, W: 40, H: 30},
			{ID: "B", Kind: "circle", X: 140, Y: -40, W: 50, H: 50},
			{ID: "C", Kind: "rectangle", X: 140, Y: 40, W: 60, H: 40},
		},
		Edges: []Edge{
			{From: "A", To: "B", Side: "right", Start: Point{40, 15}, End: Point{140, -15}},
			{From: "A", To: "C", Side: "right", Start: Point{40, 15}, End: Point{140, 60}},
		},
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	data, err := Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"side": "right"`) {
		t.Errorf("missing side in output:\n%s", data)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Nodes) != 3 || len(got.Edges) != 2 {
		t.Fatalf("got %d nodes, %d edges", len(got.Nodes), len(got.Edges))
	}
	if got.Nodes[1].ID != "B" || got.Nodes[1].X != 140 {
		t.Errorf("order or geometry lost: %+v", got.Nodes[1])
	}
	if got.Edges[1].End != (Point{140, 60}) {
		t.Errorf("edge end = %+v", got.Edges[1].End)
	}
}

func TestMarshalEmpty(t *testing.T) {
	data, err := Marshal(Snapshot{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"nodes": []`) || !strings.Contains(string(data), `"edges": []`) {
		t.Errorf("empty snapshot should encode empty arrays:\n%s", data)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"nodes": [`},
		{"duplicate", `{"nodes": [{"id": "a"}, {"id": "a"}], "edges": []}`},
		{"empty id", `{"nodes": [{"id": ""}], "edges": []}`},
		{"dangling edge", `{"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "z"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.json")
	if err := WriteFile(sample(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.ID != "c1" || got.Flow != "horizontal" {
		t.Errorf("header = %q %q", got.ID, got.Flow)
	}

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Error(statErr)
	}
}

func TestQueries(t *testing.T) {
	s := sample()
	if n, ok := s.Node("C"); !ok || n.Kind != "rectangle" {
		t.Errorf("Node(C) = %+v %v", n, ok)
	}
	if _, ok := s.Node("Z"); ok {
		t.Error("Node(Z) found")
	}
	if got := s.Children("A"); len(got) != 2 || got[0] != "B" || got[1] != "C" {
		t.Errorf("Children(A) = %v", got)
	}
	minX, minY, maxX, maxY := s.Bounds()
	if minX != 0 || minY != -40 || maxX != 200 || maxY != 80 {
		t.Errorf("Bounds() = %g %g %g %g", minX, minY, maxX, maxY)
	}
	if got := (Node{ID: "x"}).DisplayLabel(); got != "x" {
		t.Errorf("DisplayLabel() = %q", got)
	}
}
