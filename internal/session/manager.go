// Package session owns the lifecycle of an authenticated identity: login,
// logout, profile replacement, and the derived "is authenticated" state.
// Credential verification is delegated to an Authenticator collaborator;
// this package only decides what a held identity means for the session.
package session

//go:generate mockgen -source=manager.go -destination=mocks/mocks.go -package=mocks Authenticator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"custodia/internal/domain"
)

// Credentials carry what the authenticator needs to verify a login. The
// manager never inspects the secret.
type Credentials struct {
	Email  string
	Secret string
}

// Authenticator verifies credentials and produces the authenticated
// identity. Implementations may block; the manager passes the caller's
// context through.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (domain.Identity, error)
}

// EventType classifies session-change events.
type EventType string

const (
	EventLoggedIn        EventType = "logged_in"
	EventLoggedOut       EventType = "logged_out"
	EventIdentityUpdated EventType = "identity_updated"
)

// Event is delivered to subscribers after a completed session mutation.
type Event struct {
	Type     EventType
	Identity domain.Identity // zero value for EventLoggedOut
}

// Manager holds at most one identity for one logical actor. All methods are
// safe for concurrent use; reads are always consistent with the last
// completed mutation. A nil *Manager fails every operation with
// domain.ErrSessionNotInitialized instead of panicking.
type Manager struct {
	auth   Authenticator
	logger *slog.Logger

	mu            sync.RWMutex
	identity      *domain.Identity
	loginInFlight bool
	subscribers   []func(Event)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a logger for session lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager builds a session manager around an authenticator.
func NewManager(auth Authenticator, opts ...Option) *Manager {
	m := &Manager{auth: auth, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login verifies credentials through the authenticator and, on success,
// atomically replaces the held identity. While a login is in flight the
// session keeps reporting its previous state; a second concurrent Login is
// rejected with domain.ErrLoginInProgress rather than queued, so overlapping
// attempts are an explicit caller decision, never a race. On failure the
// prior state is left untouched.
func (m *Manager) Login(ctx context.Context, creds Credentials) (domain.Identity, error) {
	if m == nil {
		return domain.Identity{}, domain.ErrSessionNotInitialized
	}

	m.mu.Lock()
	if m.loginInFlight {
		m.mu.Unlock()
		return domain.Identity{}, domain.ErrLoginInProgress
	}
	m.loginInFlight = true
	m.mu.Unlock()

	identity, err := m.auth.Authenticate(ctx, creds)

	m.mu.Lock()
	m.loginInFlight = false
	if err != nil {
		m.mu.Unlock()
		return domain.Identity{}, fmt.Errorf("login: %w: %v", domain.ErrAuthenticationFailed, err)
	}
	// Unknown roles are rejected at session creation, never defaulted.
	if verr := identity.Validate(); verr != nil {
		m.mu.Unlock()
		return domain.Identity{}, fmt.Errorf("login produced invalid identity: %w", verr)
	}
	held := identity
	m.identity = &held
	subs := append([]func(Event){}, m.subscribers...)
	m.mu.Unlock()

	m.logger.Info("session established",
		"user_id", identity.ID.String(),
		"role", identity.Role.String(),
	)
	notify(subs, Event{Type: EventLoggedIn, Identity: identity})
	return identity, nil
}

// Logout clears the held identity. Idempotent: calling it with no identity
// held is a no-op, not an error.
func (m *Manager) Logout() error {
	if m == nil {
		return domain.ErrSessionNotInitialized
	}

	m.mu.Lock()
	if m.identity == nil {
		m.mu.Unlock()
		return nil
	}
	cleared := *m.identity
	m.identity = nil
	subs := append([]func(Event){}, m.subscribers...)
	m.mu.Unlock()

	m.logger.Info("session cleared", "user_id", cleared.ID.String())
	notify(subs, Event{Type: EventLoggedOut})
	return nil
}

// UpdateIdentity replaces the currently held identity wholesale. Fails with
// domain.ErrNoActiveSession when nothing is held.
func (m *Manager) UpdateIdentity(identity domain.Identity) error {
	if m == nil {
		return domain.ErrSessionNotInitialized
	}
	if err := identity.Validate(); err != nil {
		return fmt.Errorf("update identity: %w", err)
	}

	m.mu.Lock()
	if m.identity == nil {
		m.mu.Unlock()
		return domain.ErrNoActiveSession
	}
	held := identity
	m.identity = &held
	subs := append([]func(Event){}, m.subscribers...)
	m.mu.Unlock()

	notify(subs, Event{Type: EventIdentityUpdated, Identity: identity})
	return nil
}

// Current returns the held identity, if any.
func (m *Manager) Current() (domain.Identity, bool) {
	if m == nil {
		return domain.Identity{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return domain.Identity{}, false
	}
	return *m.identity, true
}

// IsAuthenticated is true iff an identity is currently held.
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.Current()
	return ok
}

// LoginInProgress reports whether a Login call is currently in flight.
func (m *Manager) LoginInProgress() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loginInFlight
}

// Subscribe registers fn for session-change events. Callbacks run after the
// mutation has committed, outside the manager's lock.
func (m *Manager) Subscribe(fn func(Event)) error {
	if m == nil {
		return domain.ErrSessionNotInitialized
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
	return nil
}

func notify(subs []func(Event), event Event) {
	for _, fn := range subs {
		fn(event)
	}
}
