package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Typed IDs keep user and session identifiers from being mixed up at call
// sites. Parsing enforces the invariant "IDs are valid, non-nil UUIDs" at
// trust boundaries; internal code passes the typed values around.

// UserID identifies an authenticated actor.
type UserID uuid.UUID

// SessionID identifies one logical actor's session.
type SessionID uuid.UUID

// NewUserID returns a fresh random UserID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// NewSessionID returns a fresh random SessionID.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// ParseUserID validates and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseSessionID validates and returns a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	return SessionID(u), err
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, fmt.Errorf("%s is empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", kind, s, err)
	}
	if u == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%s is the nil UUID", kind)
	}
	return u, nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero value.
func (id UserID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id SessionID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether the ID is the zero value.
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
