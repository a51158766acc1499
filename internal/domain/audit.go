package domain

import (
	"fmt"
	"time"

	id "custodia/pkg/domain"
)

// Status is the recorded outcome of one access attempt.
type Status string

const (
	StatusSuccess      Status = "success"
	StatusFailed       Status = "failed"
	StatusUnauthorized Status = "unauthorized"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusSuccess, StatusFailed, StatusUnauthorized:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status: %q", s)
	}
}

// ResourceKind classifies the resource an action targets. The set below is
// what the records system ships with; the type stays open so deployments can
// add kinds without touching this package (the role policy denies unknown
// kinds by default).
type ResourceKind string

const (
	KindCase     ResourceKind = "case"
	KindEvidence ResourceKind = "evidence"
	KindReport   ResourceKind = "report"
	KindSettings ResourceKind = "settings"
)

// Canonical action verbs. Entries carry free-form verbs; these are the ones
// the shipped policy grants.
const (
	ActionViewed     = "Viewed"
	ActionModified   = "Modified"
	ActionDownloaded = "Downloaded"
	ActionGenerated  = "Generated"
)

// ActorUnknown is the sentinel recorded when an attempt is made without an
// authenticated identity.
const ActorUnknown = "unknown"

// EntryID is the store-assigned, monotonically increasing entry identifier.
type EntryID uint64

// Entry is the immutable record of one access/action attempt and its
// outcome. ID and, when zero, Timestamp are assigned by the store at append
// time; everything else is fixed by the access gate. Entries are never
// mutated or deleted after append.
type Entry struct {
	ID           EntryID
	Timestamp    time.Time
	Actor        string    // display name, or ActorUnknown
	ActorID      id.UserID // nil when unauthenticated
	Action       string
	Resource     string
	ResourceKind ResourceKind
	Status       Status
	OriginAddr   string // network origin, opaque to this core
	Details      string
}

// IsSecurityEvent reports whether the entry counts against the compliance
// security-event tally (any non-success outcome).
func (e Entry) IsSecurityEvent() bool {
	return e.Status != StatusSuccess
}
