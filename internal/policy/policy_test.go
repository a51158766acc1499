package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"custodia/internal/domain"
)

func TestPermits_FailClosed(t *testing.T) {
	roles := []domain.Role{
		domain.RoleAdmin,
		domain.RoleInvestigator,
		domain.RoleEvidenceCustodian,
		domain.RoleViewer,
		domain.Role("superuser"), // not a real role
		domain.Role(""),
	}
	kinds := []domain.ResourceKind{
		domain.KindCase, domain.KindEvidence, domain.KindReport,
		domain.KindSettings, domain.ResourceKind("warrant"), domain.ResourceKind(""),
	}
	actions := []string{
		domain.ActionViewed, domain.ActionModified, domain.ActionDownloaded,
		domain.ActionGenerated, "Purged", "",
	}

	// Every combination either appears in the grant table or is denied.
	for _, r := range roles {
		for _, k := range kinds {
			for _, a := range actions {
				allowed := Permits(r, k, a)
				_, granted := grants[r][grant{k, a}]
				assert.Equal(t, granted, allowed,
					"role=%s kind=%s action=%s", r, k, a)
			}
		}
	}
}

func TestPermits_ViewerCannotModifyCase(t *testing.T) {
	assert.False(t, Permits(domain.RoleViewer, domain.KindCase, domain.ActionModified))
}

func TestPermits_Grants(t *testing.T) {
	assert.True(t, Permits(domain.RoleAdmin, domain.KindSettings, domain.ActionModified))
	assert.True(t, Permits(domain.RoleInvestigator, domain.KindCase, domain.ActionModified))
	assert.True(t, Permits(domain.RoleEvidenceCustodian, domain.KindEvidence, domain.ActionDownloaded))
	assert.True(t, Permits(domain.RoleViewer, domain.KindReport, domain.ActionViewed))

	assert.False(t, Permits(domain.RoleInvestigator, domain.KindSettings, domain.ActionViewed))
	assert.False(t, Permits(domain.RoleEvidenceCustodian, domain.KindCase, domain.ActionModified))
	assert.False(t, Permits(domain.RoleViewer, domain.KindEvidence, domain.ActionDownloaded))
}
