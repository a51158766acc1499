package session

import (
	"context"
	"fmt"
	"strings"

	"custodia/internal/domain"
)

// StaticAuthenticator resolves identities from a fixed directory keyed by
// email. It performs no credential verification beyond requiring a non-empty
// secret; real deployments plug in an SSO or directory-backed Authenticator
// instead. Useful for development and tests.
type StaticAuthenticator struct {
	byEmail map[string]domain.Identity
}

// NewStaticAuthenticator indexes the given identities by lowercased email.
func NewStaticAuthenticator(identities ...domain.Identity) *StaticAuthenticator {
	byEmail := make(map[string]domain.Identity, len(identities))
	for _, identity := range identities {
		byEmail[strings.ToLower(identity.Email)] = identity
	}
	return &StaticAuthenticator{byEmail: byEmail}
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, creds Credentials) (domain.Identity, error) {
	if creds.Secret == "" {
		return domain.Identity{}, fmt.Errorf("empty secret: %w", domain.ErrAuthenticationFailed)
	}
	identity, ok := a.byEmail[strings.ToLower(creds.Email)]
	if !ok {
		return domain.Identity{}, fmt.Errorf("unknown account %q: %w", creds.Email, domain.ErrAuthenticationFailed)
	}
	return identity, nil
}
