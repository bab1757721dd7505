package session

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Manager keeps track of the open plot sessions
type Manager struct {
	mu       sync.Mutex
	base     Options
	sessions map[string]*Session
}

// NewManager creates a manager. base supplies the loader, fetcher and blob
// store shared by every session.
func NewManager(base Options) *Manager {
	return &Manager{
		base:     base,
		sessions: make(map[string]*Session),
	}
}

// Open creates and registers a session for a source
func (m *Manager) Open(sourceID int64, hideFlagged bool) *Session {
	opts := m.base
	opts.SourceID = sourceID
	opts.HideFlagged = hideFlagged
	s := New(opts)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Remove forgets a session
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Get returns a registered session
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Live reports whether a session is still registered
func (m *Manager) Live(id string) bool {
	_, ok := m.Get(id)
	return ok
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Serve runs a new session over conn until the browser disconnects or ctx ends
func (m *Manager) Serve(ctx context.Context, conn *websocket.Conn, sourceID int64, hideFlagged bool) error {
	s := m.Open(sourceID, hideFlagged)
	defer m.Remove(s.ID)

	err := s.ServeConn(ctx, conn)
	if err != nil {
		log.Printf("[SessionManager] session %s for source %d ended: %v", s.ID, sourceID, err)
	}
	return err
}
