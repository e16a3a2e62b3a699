package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/metricflow/pkg/errors"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	// pinned sessions are never cleaned up.
	pinned map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		pinned:   make(map[string]bool),
	}
}

var _ Store = (*MemoryStore)(nil)

// Get implements [Store].
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	pinned := m.pinned[id]
	m.mu.RUnlock()
	if !ok || (!pinned && s.IsExpired()) {
		return nil, errors.New(errors.ErrCodeCanvasNotFound, "canvas %q not found", id)
	}
	return s, nil
}

// Set implements [Store].
func (m *MemoryStore) Set(_ context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "session has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Pin stores a session that Cleanup never removes.
func (m *MemoryStore) Pin(s *Session) error {
	if err := m.Set(context.Background(), s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pinned[s.ID] = true
	return nil
}

// Delete implements [Store].
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.pinned, id)
	return nil
}

// List implements [Store].
func (m *MemoryStore) List(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Cleanup implements [Store].
func (m *MemoryStore) Cleanup(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if !m.pinned[id] && s.IsExpired() {
			delete(m.sessions, id)
		}
	}
	return nil
}

// RunCleanup calls Cleanup every interval until ctx is done.
func RunCleanup(ctx context.Context, st Store, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = st.Cleanup(ctx)
		}
	}
}
