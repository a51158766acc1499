package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/domain"
	id "custodia/pkg/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-signing-key", time.Hour)
	userID := id.NewUserID()
	sessionID := id.NewSessionID()

	signed, err := svc.Generate(userID, sessionID, domain.RoleInvestigator)
	require.NoError(t, err)

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, "investigator", claims.Role)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	minter := NewService("key-one", time.Hour)
	verifier := NewService("key-two", time.Hour)

	signed, err := minter.Generate(id.NewUserID(), id.NewSessionID(), domain.RoleViewer)
	require.NoError(t, err)

	_, err = verifier.Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("test-signing-key", -time.Minute)

	signed, err := svc.Generate(id.NewUserID(), id.NewSessionID(), domain.RoleViewer)
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.Error(t, err)
}
