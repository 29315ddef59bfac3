package registry

import (
	"github.com/renju-online/client-go/internal/game"
)

// Registry tracks every game session this client currently knows about.
// It is owned by the dispatcher goroutine and therefore unlocked: all
// mutation happens from that single writer.
type Registry struct {
	sessions map[string]*game.Session
	focused  string
}

func New() *Registry {
	return &Registry{sessions: make(map[string]*game.Session)}
}

// Open registers a session for gameID, first write wins: reopening an
// already-known game returns the existing session untouched, so a
// reconnect never duplicates state.
func (r *Registry) Open(gameID string, s *game.Session) *game.Session {
	if cur, ok := r.sessions[gameID]; ok {
		return cur
	}
	r.sessions[gameID] = s
	return s
}

func (r *Registry) Get(gameID string) *game.Session {
	return r.sessions[gameID]
}

// Forget drops a session. Forgetting an absent id is a no-op.
func (r *Registry) Forget(gameID string) {
	delete(r.sessions, gameID)
	if r.focused == gameID {
		r.focused = ""
	}
}

// Focus marks gameID as the session presented in detail. At most one
// session is focused; focusing does not forget the others.
func (r *Registry) Focus(gameID string) bool {
	if _, ok := r.sessions[gameID]; !ok {
		return false
	}
	r.focused = gameID
	return true
}

// Focused returns the focused session, or nil when nothing is focused.
func (r *Registry) Focused() *game.Session {
	if r.focused == "" {
		return nil
	}
	return r.sessions[r.focused]
}

func (r *Registry) Len() int { return len(r.sessions) }
