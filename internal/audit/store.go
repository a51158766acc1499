// Package audit holds the append-only access log: the store contract, its
// in-memory implementation, the query/filter engine, and the compliance
// summary. Database-backed stores live in sibling files behind the same
// interface so backends stay interchangeable.
package audit

import (
	"context"

	"custodia/internal/domain"
)

// Store is the append-only audit log contract. There is deliberately no
// update or delete: immutability is enforced by the interface, not by
// convention. Implementations must support concurrent appends without lost
// writes and must hand out unique, monotonically increasing IDs.
type Store interface {
	// Append records the entry, assigning its ID and, when the entry's
	// Timestamp is zero, its timestamp. Well-formed entries are never
	// rejected by business logic; an error here is a storage failure and is
	// fatal to the operation being audited.
	Append(ctx context.Context, entry domain.Entry) (domain.EntryID, error)

	// Scan returns a snapshot of all entries in append order. Each call is a
	// fresh traversal: it never contains a partially written entry and never
	// omits an entry whose append completed before the call.
	Scan(ctx context.Context) ([]domain.Entry, error)
}
