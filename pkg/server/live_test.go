package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/canvas/svg"
	"github.com/matzehuels/metricflow/pkg/graph"
	"github.com/matzehuels/metricflow/pkg/session"
	"github.com/matzehuels/metricflow/pkg/spec"
)

func dialLive(t *testing.T, baseURL, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/canvases/" + id + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) session.Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var m session.Message
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

// readUntil reads messages until one carries an op patch for id.
func readUntil(t *testing.T, conn *websocket.Conn, op svg.Op, id string) session.Message {
	t.Helper()
	for range 10 {
		m := readMessage(t, conn)
		for _, p := range m.Patches {
			if p.Op == op && p.ID == id {
				return m
			}
		}
	}
	t.Fatalf("no patch for %s", id)
	return session.Message{}
}

func liveServer(t *testing.T) (*Server, string) {
	t.Helper()
	s, ts := newTestServer(t)
	doc := spec.Document{Nodes: []canvas.NodeSpec{
		{ID: "A", X: canvas.Px(0), Y: canvas.Px(0)},
		{ID: "B", X: canvas.Px(300), Y: canvas.Px(0), From: []string{"A"}},
		{ID: "C", X: canvas.Px(300), Y: canvas.Px(200), From: []string{"A"}},
	}}
	if err := s.SetDefault(doc); err != nil {
		t.Fatal(err)
	}
	return s, ts.URL
}

func TestLiveDrag(t *testing.T) {
	_, base := liveServer(t)
	conn := dialLive(t, base, DefaultCanvasID)

	hello := readMessage(t, conn)
	if hello.Type != session.MessageReset || !strings.Contains(hello.SVG, `id="line-A-B"`) {
		t.Fatalf("first message = %+v", hello)
	}

	events := []canvas.Event{
		{Type: canvas.GestureMouseDown, Target: "B", X: 310, Y: 10},
		{Type: canvas.GestureMouseMove, X: 320, Y: 30},
		{Type: canvas.GestureMouseUp, X: 320, Y: 30},
	}
	for _, ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			t.Fatal(err)
		}
	}

	m := readUntil(t, conn, svg.OpUpsert, "line-A-B")
	ids := map[string]bool{}
	for _, p := range m.Patches {
		ids[p.ID] = true
	}
	if !ids["B"] || !ids["pointend-A-B"] {
		t.Errorf("drag patches %v missing B or its markers", ids)
	}
	if ids["line-A-C"] {
		t.Error("connector not touching B was redrawn")
	}

	_, data := do(t, http.MethodGet, base+"/canvases/default", "")
	snap, _ := graph.Unmarshal(data)
	b, _ := snap.Node("B")
	if b.X != 310 || b.Y != 20 {
		t.Errorf("B at (%g,%g), want (310,20)", b.X, b.Y)
	}
}

func TestLiveHitTest(t *testing.T) {
	s, base := liveServer(t)
	conn := dialLive(t, base, DefaultCanvasID)
	readMessage(t, conn)

	// No target: the server finds C under the pointer.
	_ = conn.WriteJSON(canvas.Event{Type: canvas.GestureMouseDown, X: 305, Y: 205})
	readUntil(t, conn, svg.OpCursor, "C")

	sess, err := s.Session(t.Context(), DefaultCanvasID)
	if err != nil {
		t.Fatal(err)
	}
	sess.View(func(c *canvas.Canvas, _ *svg.Surface) {
		if id, ok := c.Controller().Dragging(); !ok || id != "C" {
			t.Errorf("dragging %q %v, want C", id, ok)
		}
	})
}

func TestLiveIgnoresBadEvents(t *testing.T) {
	_, base := liveServer(t)
	conn := dialLive(t, base, DefaultCanvasID)
	readMessage(t, conn)

	_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	_ = conn.WriteJSON(canvas.Event{Type: "wiggle"})
	_ = conn.WriteJSON(canvas.Event{Type: canvas.GestureMouseDown, Target: "A", X: 1, Y: 1})

	// The connection survives and still processes events.
	readUntil(t, conn, svg.OpCursor, "A")
}

func TestLiveReset(t *testing.T) {
	s, base := liveServer(t)
	conn := dialLive(t, base, DefaultCanvasID)
	readMessage(t, conn)

	doc := spec.Document{Nodes: []canvas.NodeSpec{{ID: "Z", X: canvas.Px(5), Y: canvas.Px(5)}}}
	if err := s.SetDefault(doc); err != nil {
		t.Fatal(err)
	}
	m := readMessage(t, conn)
	if m.Type != session.MessageReset || !strings.Contains(m.SVG, `id="Z"`) || strings.Contains(m.SVG, `id="A"`) {
		t.Errorf("reset = %+v", m)
	}
}

func TestLiveUnknownCanvas(t *testing.T) {
	_, ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/canvases/missing/live"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %v", resp)
	}
}
