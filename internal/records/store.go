// Package records is a minimal resource backend standing in for the real
// records system. The access gate treats these lookups as opaque delegated
// operations; any backend returning (result, error) fits the same slot.
package records

import (
	"context"
	"fmt"
	"sync"

	"custodia/pkg/platform/sentinel"
)

// Case is a case file summary.
type Case struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Evidence is one logged evidence item.
type Evidence struct {
	ID          string `json:"id"`
	CaseID      string `json:"case_id"`
	Description string `json:"description"`
	Document    []byte `json:"-"`
}

// Store holds cases and evidence in memory for development and tests.
type Store struct {
	mu       sync.RWMutex
	cases    map[string]Case
	evidence map[string]Evidence
}

// NewStore constructs an empty records store.
func NewStore() *Store {
	return &Store{
		cases:    make(map[string]Case),
		evidence: make(map[string]Evidence),
	}
}

// Seed loads development fixtures.
func (s *Store) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range []Case{
		{ID: "CASE-2024-001", Title: "Warehouse burglary", Status: "open"},
		{ID: "CASE-2024-002", Title: "Vehicle arson", Status: "open"},
		{ID: "CASE-2024-003", Title: "Narcotics distribution", Status: "sealed"},
	} {
		s.cases[c.ID] = c
	}
	for _, e := range []Evidence{
		{ID: "ITEM-001", CaseID: "CASE-2024-001", Description: "Security camera footage", Document: []byte("binary footage placeholder")},
		{ID: "ITEM-002", CaseID: "CASE-2024-002", Description: "Accelerant residue sample report", Document: []byte("lab report placeholder")},
	} {
		s.evidence[e.ID] = e
	}
}

// FetchCase returns one case record.
func (s *Store) FetchCase(_ context.Context, caseID string) (Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok {
		return Case{}, fmt.Errorf("case %s: %w", caseID, sentinel.ErrNotFound)
	}
	return c, nil
}

// FetchEvidence returns one evidence item with its document.
func (s *Store) FetchEvidence(_ context.Context, itemID string) (Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.evidence[itemID]
	if !ok {
		return Evidence{}, fmt.Errorf("evidence %s: %w", itemID, sentinel.ErrNotFound)
	}
	return e, nil
}
