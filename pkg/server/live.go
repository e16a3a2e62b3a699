package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/canvas/svg"
	"github.com/matzehuels/metricflow/pkg/observability"
	"github.com/matzehuels/metricflow/pkg/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		s.logger.Debug("live upgrade failed", "canvas", sess.ID, "err", err)
		return
	}
	defer conn.Close()

	msgs, cancel := sess.Subscribe()
	defer cancel()
	s.logger.Debug("live client connected", "canvas", sess.ID)

	var doc []byte
	sess.View(func(_ *canvas.Canvas, surf *svg.Surface) { doc = surf.Bytes() })
	if err := writeMessage(conn, session.Message{Type: session.MessageReset, SVG: string(doc)}); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.readEvents(r.Context(), conn, sess)
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			s.logger.Debug("live client disconnected", "canvas", sess.ID)
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if err := writeMessage(conn, m); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, m session.Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(m)
}

// readEvents feeds pointer events to the canvas controller until the
// connection fails.
func (s *Server) readEvents(ctx context.Context, conn *websocket.Conn, sess *session.Session) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("live read failed", "canvas", sess.ID, "err", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var ev canvas.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			s.logger.Warn("malformed live event", "canvas", sess.ID, "err", err)
			continue
		}
		if !ev.Type.Valid() {
			s.logger.Warn("ignoring live event", "canvas", sess.ID, "type", ev.Type)
			continue
		}
		observability.HTTP().OnLiveEvent(ctx, string(ev.Type))
		_ = sess.Do(func(c *canvas.Canvas) error {
			if ev.Target == "" {
				ev.Target, _ = c.HitTest(ev.Point())
			}
			c.Controller().Handle(ev)
			return nil
		})
	}
}
