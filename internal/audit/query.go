package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"custodia/internal/domain"
)

// StatusFilter widens domain.Status with the neutral "all".
type StatusFilter string

const (
	FilterAll          StatusFilter = "all"
	FilterSuccess      StatusFilter = StatusFilter(domain.StatusSuccess)
	FilterFailed       StatusFilter = StatusFilter(domain.StatusFailed)
	FilterUnauthorized StatusFilter = StatusFilter(domain.StatusUnauthorized)
)

// ParseStatusFilter validates a status filter string; empty means "all".
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(s); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterSuccess, FilterFailed, FilterUnauthorized:
		return f, nil
	default:
		return "", fmt.Errorf("unknown status filter: %q", s)
	}
}

// FilterSpec describes one query. It is constructed per call and discarded;
// nothing here is persisted. All predicates combine conjunctively.
type FilterSpec struct {
	// Text is matched case-insensitively as a substring of actor, resource
	// identifier, and action. Empty matches everything; whitespace-only text
	// is matched literally, not trimmed away.
	Text string

	// Status keeps only entries with this outcome; FilterAll (or zero value
	// after ParseStatusFilter) keeps all.
	Status StatusFilter

	// Kind, when non-empty, keeps only entries for that resource kind.
	Kind domain.ResourceKind

	// From/To bound the entry timestamp when non-zero: From is inclusive,
	// To is exclusive.
	From, To time.Time

	// Offset and Limit paginate the filtered sequence. Limit 0 means no cap.
	// Stable across calls only while the store has not mutated in between.
	Offset, Limit int
}

// Engine composes free-text search and structured filters over an audit
// store. It is read-only and may run concurrently with appends.
type Engine struct {
	store Store
}

// NewEngine builds a query engine over store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Query scans the store once and returns the entries matching spec, in the
// store's append order. Zero matches yields an empty slice, not an error.
func (e *Engine) Query(ctx context.Context, spec FilterSpec) ([]domain.Entry, error) {
	entries, err := e.store.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan audit store: %w", err)
	}

	matched := make([]domain.Entry, 0, len(entries))
	for _, entry := range entries {
		if Matches(entry, spec) {
			matched = append(matched, entry)
		}
	}
	return paginate(matched, spec.Offset, spec.Limit), nil
}

// Matches evaluates every predicate of spec against one entry. Exported so
// callers composing their own scans apply exactly the same semantics.
func Matches(entry domain.Entry, spec FilterSpec) bool {
	return textMatches(entry, spec.Text) &&
		statusMatches(entry, spec.Status) &&
		kindMatches(entry, spec.Kind) &&
		timeMatches(entry, spec.From, spec.To)
}

func textMatches(entry domain.Entry, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(entry.Actor), q) ||
		strings.Contains(strings.ToLower(entry.Resource), q) ||
		strings.Contains(strings.ToLower(entry.Action), q)
}

func statusMatches(entry domain.Entry, filter StatusFilter) bool {
	return filter == "" || filter == FilterAll || string(entry.Status) == string(filter)
}

func kindMatches(entry domain.Entry, kind domain.ResourceKind) bool {
	return kind == "" || entry.ResourceKind == kind
}

func timeMatches(entry domain.Entry, from, to time.Time) bool {
	if !from.IsZero() && entry.Timestamp.Before(from) {
		return false
	}
	if !to.IsZero() && !entry.Timestamp.Before(to) {
		return false
	}
	return true
}

func paginate(entries []domain.Entry, offset, limit int) []domain.Entry {
	if offset > 0 {
		if offset >= len(entries) {
			return []domain.Entry{}
		}
		entries = entries[offset:]
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}
