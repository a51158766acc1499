// Package policy holds the role policy: a pure mapping from
// (role, resource kind, action) to an allow/deny decision.
//
// The table is default-deny. Any combination not explicitly granted below is
// refused, including unknown roles, unknown kinds, and unknown verbs.
// Changing what a role may do means changing this table, never bypassing the
// access gate.
package policy

import "custodia/internal/domain"

type grant struct {
	kind   domain.ResourceKind
	action string
}

var grants = map[domain.Role]map[grant]struct{}{
	domain.RoleAdmin: {
		{domain.KindCase, domain.ActionViewed}:         {},
		{domain.KindCase, domain.ActionModified}:       {},
		{domain.KindCase, domain.ActionDownloaded}:     {},
		{domain.KindEvidence, domain.ActionViewed}:     {},
		{domain.KindEvidence, domain.ActionModified}:   {},
		{domain.KindEvidence, domain.ActionDownloaded}: {},
		{domain.KindReport, domain.ActionViewed}:       {},
		{domain.KindReport, domain.ActionGenerated}:    {},
		{domain.KindReport, domain.ActionDownloaded}:   {},
		{domain.KindSettings, domain.ActionViewed}:     {},
		{domain.KindSettings, domain.ActionModified}:   {},
	},
	domain.RoleInvestigator: {
		{domain.KindCase, domain.ActionViewed}:       {},
		{domain.KindCase, domain.ActionModified}:     {},
		{domain.KindEvidence, domain.ActionViewed}:   {},
		{domain.KindReport, domain.ActionViewed}:     {},
		{domain.KindReport, domain.ActionGenerated}:  {},
		{domain.KindReport, domain.ActionDownloaded}: {},
	},
	domain.RoleEvidenceCustodian: {
		{domain.KindCase, domain.ActionViewed}:         {},
		{domain.KindEvidence, domain.ActionViewed}:     {},
		{domain.KindEvidence, domain.ActionModified}:   {},
		{domain.KindEvidence, domain.ActionDownloaded}: {},
		{domain.KindReport, domain.ActionViewed}:       {},
	},
	domain.RoleViewer: {
		{domain.KindCase, domain.ActionViewed}:     {},
		{domain.KindEvidence, domain.ActionViewed}: {},
		{domain.KindReport, domain.ActionViewed}:   {},
	},
}

// Permits reports whether role may perform action on the given resource
// kind. Pure and deterministic; no side effects, no I/O.
func Permits(role domain.Role, kind domain.ResourceKind, action string) bool {
	g, ok := grants[role]
	if !ok {
		return false
	}
	_, ok = g[grant{kind, action}]
	return ok
}
