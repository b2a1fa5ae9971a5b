package assistant

import (
	"sync"
)

// Factory builds a fresh assistant with its own session.
type Factory func() *Assistant

// Hub tracks live assistants by session id for the HTTP API. Sessions are
// in-memory only; a restart starts everyone over.
type Hub struct {
	factory Factory

	mu       sync.Mutex
	sessions map[string]*Assistant
}

// NewHub creates a hub producing assistants from factory.
func NewHub(factory Factory) *Hub {
	return &Hub{
		factory:  factory,
		sessions: make(map[string]*Assistant),
	}
}

// Get returns the assistant for sessionID, or a new one when the id is
// empty or unknown. The second return is the session id to hand back to the
// client.
func (h *Hub) Get(sessionID string) (*Assistant, string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessionID != "" {
		if a, ok := h.sessions[sessionID]; ok {
			return a, sessionID
		}
	}

	a := h.factory()
	h.sessions[a.SessionID()] = a
	return a, a.SessionID()
}

// Drop removes a session.
func (h *Hub) Drop(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
}
