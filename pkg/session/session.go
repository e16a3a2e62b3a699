// Package session keeps live canvases for the server.
//
// A [Session] owns one canvas and the SVG surface it draws on. Canvases are
// single-threaded, so every access goes through the session lock: [Session.Do]
// for mutations and [Session.View] for reads. After each mutation the
// surface journal is flushed and the patches are fanned out to subscribers
// (live WebSocket connections).
//
// # Usage
//
//	sess := session.New(c, surf)
//	store.Set(ctx, sess)
//
//	msgs, cancel := sess.Subscribe()
//	defer cancel()
//
//	err := sess.Do(func(c *canvas.Canvas) error {
//	    return c.CreateNodes(specs...)
//	})
//
// Sessions idle for longer than their TTL are removed by [Store.Cleanup].
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/canvas/svg"
)

// Default durations.
const (
	// DefaultTTL is how long a session survives without being used.
	DefaultTTL = 24 * time.Hour

	// subscriberBuffer is the number of messages queued per subscriber
	// before further messages for it are dropped.
	subscriberBuffer = 64
)

// MessageType distinguishes live messages.
type MessageType string

const (
	// MessagePatches carries incremental element changes.
	MessagePatches MessageType = "patches"
	// MessageReset carries the full document after the canvas was replaced.
	MessageReset MessageType = "reset"
)

// Message is sent to subscribers.
type Message struct {
	Type    MessageType `json:"type"`
	Patches []svg.Patch `json:"patches,omitempty"`
	SVG     string      `json:"svg,omitempty"`
}

// Session is one live canvas.
type Session struct {
	ID        string
	CreatedAt time.Time
	TTL       time.Duration

	mu       sync.Mutex
	canvas   *canvas.Canvas
	surface  *svg.Surface
	lastUsed time.Time
	subs     map[int]chan Message
	nextSub  int
	dropped  int
}

// GenerateID returns a new random session id.
func GenerateID() string {
	return uuid.NewString()
}

// New wraps a canvas and its surface in a session with a fresh id.
func New(c *canvas.Canvas, s *svg.Surface) *Session {
	return NewWithID(GenerateID(), c, s)
}

// NewWithID is like [New] with a caller-chosen id.
func NewWithID(id string, c *canvas.Canvas, s *svg.Surface) *Session {
	now := time.Now()
	s.Flush() // initial drawing is delivered as a document, not patches
	return &Session{
		ID:        id,
		CreatedAt: now,
		TTL:       DefaultTTL,
		canvas:    c,
		surface:   s,
		lastUsed:  now,
		subs:      make(map[int]chan Message),
	}
}

// IsExpired reports whether the session has been idle longer than its TTL.
// A zero TTL never expires.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.TTL > 0 && time.Since(s.lastUsed) > s.TTL
}

// Do runs fn with exclusive access to the canvas, then publishes the
// resulting surface changes. fn's error is returned after publishing, so
// partial changes from a failed call still reach subscribers.
func (s *Session) Do(fn func(c *canvas.Canvas) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	err := fn(s.canvas)
	if patches := s.surface.Flush(); len(patches) > 0 {
		s.publish(Message{Type: MessagePatches, Patches: patches})
	}
	return err
}

// View runs fn with exclusive access for reading. Changes made by fn are
// not published.
func (s *Session) View(fn func(c *canvas.Canvas, surf *svg.Surface)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	fn(s.canvas, s.surface)
}

// Reset swaps in a new canvas and surface and sends subscribers the new
// document.
func (s *Session) Reset(c *canvas.Canvas, surf *svg.Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	surf.Flush()
	s.canvas, s.surface = c, surf
	s.lastUsed = time.Now()
	s.publish(Message{Type: MessageReset, SVG: string(surf.Bytes())})
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel.
func (s *Session) Subscribe() (<-chan Message, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Message, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Subscribers returns the number of registered subscribers.
func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Dropped returns the number of messages dropped for slow subscribers.
func (s *Session) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// publish must be called with s.mu held.
func (s *Session) publish(m Message) {
	for _, ch := range s.subs {
		select {
		case ch <- m:
		default:
			s.dropped++
		}
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. Returns a CANVAS_NOT_FOUND error if the
	// session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing one with the same ID.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all stored sessions.
	List(ctx context.Context) ([]string, error)

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}
