package duel

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the process-wide table of live duel sessions. Sessions are
// inserted on pairing and removed when they reach a terminal state. It only
// guards the maps; session mutation happens under each session's own lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	byPlayer map[uuid.UUID]uuid.UUID // player_id -> session_id
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		byPlayer: make(map[uuid.UUID]uuid.UUID),
	}
}

// Insert registers a freshly paired session.
func (r *Registry) Insert(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sess.ID] = sess
	for _, p := range sess.Players {
		if p != nil {
			r.byPlayer[p.ID] = sess.ID
		}
	}
}

// Remove evicts a session and its player index entries.
func (r *Registry) Remove(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)
	for _, p := range sess.Players {
		if p != nil && r.byPlayer[p.ID] == sessionID {
			delete(r.byPlayer, p.ID)
		}
	}
}

// Get returns the live session with the given id, or nil.
func (r *Registry) Get(sessionID uuid.UUID) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[sessionID]
}

// ByPlayer returns the live session a player participates in, or nil.
func (r *Registry) ByPlayer(playerID uuid.UUID) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.byPlayer[playerID]
	if !ok {
		return nil
	}
	return r.sessions[sessionID]
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
