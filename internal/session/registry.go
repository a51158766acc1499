package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"custodia/internal/domain"
	id "custodia/pkg/domain"
)

// Registry hands out one Manager per logical actor. Each session belongs to
// exactly one actor and is never shared across concurrent identities; the
// registry only maps session IDs to managers, it holds no identity state of
// its own.
type Registry struct {
	auth   Authenticator
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[id.SessionID]*Manager
}

// NewRegistry builds a registry that backs every session with auth.
func NewRegistry(auth Authenticator, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		auth:     auth,
		logger:   logger,
		sessions: make(map[id.SessionID]*Manager),
	}
}

// Login creates a fresh session, authenticates into it, and registers it.
// Nothing is registered when authentication fails.
func (r *Registry) Login(ctx context.Context, creds Credentials) (id.SessionID, domain.Identity, error) {
	mgr := NewManager(r.auth, WithLogger(r.logger))
	identity, err := mgr.Login(ctx, creds)
	if err != nil {
		return id.SessionID{}, domain.Identity{}, err
	}

	sessionID := id.NewSessionID()
	r.mu.Lock()
	r.sessions[sessionID] = mgr
	r.mu.Unlock()
	return sessionID, identity, nil
}

// Get returns the manager for a session.
func (r *Registry) Get(sessionID id.SessionID) (*Manager, error) {
	r.mu.RLock()
	mgr, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID.String(), domain.ErrNoActiveSession)
	}
	return mgr, nil
}

// Logout clears and forgets a session. Unknown sessions are a no-op, keeping
// logout idempotent end to end.
func (r *Registry) Logout(sessionID id.SessionID) error {
	r.mu.Lock()
	mgr, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return mgr.Logout()
}
