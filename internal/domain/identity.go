package domain

import (
	"fmt"

	id "custodia/pkg/domain"
)

// Role is the enumerated capability class consulted by the role policy.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleInvestigator      Role = "investigator"
	RoleEvidenceCustodian Role = "evidence_custodian"
	RoleViewer            Role = "viewer"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:             {},
	RoleInvestigator:      {},
	RoleEvidenceCustodian: {},
	RoleViewer:            {},
}

// ParseRole validates a role string. Unknown roles are rejected, never
// defaulted: a session must not come into existence with a made-up
// capability class.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := knownRoles[r]; !ok {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

func (r Role) String() string { return string(r) }

// Identity is an authenticated actor with a role and agency affiliation.
// It is owned by the session manager for the duration of one session and
// never persisted by this core.
type Identity struct {
	ID          id.UserID
	Email       string
	Name        string
	Role        Role
	Agency      string
	BadgeNumber string // optional
}

// Validate enforces the invariants a session-held identity must satisfy.
func (i Identity) Validate() error {
	if i.ID.IsNil() {
		return fmt.Errorf("identity has no id")
	}
	if i.Email == "" {
		return fmt.Errorf("identity has no email")
	}
	if _, err := ParseRole(string(i.Role)); err != nil {
		return err
	}
	return nil
}
