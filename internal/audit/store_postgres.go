package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"custodia/internal/domain"
	id "custodia/pkg/domain"
)

// PostgresStore persists the log in a single append-only table. BIGSERIAL
// gives the unique, insertion-ordered IDs the Store contract requires;
// nothing in this type issues UPDATE or DELETE.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens and pings a postgres connection.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	id            BIGSERIAL PRIMARY KEY,
	ts            TIMESTAMPTZ NOT NULL,
	actor         TEXT NOT NULL,
	actor_id      UUID,
	action        TEXT NOT NULL,
	resource      TEXT NOT NULL,
	resource_kind TEXT NOT NULL,
	status        TEXT NOT NULL,
	origin_addr   TEXT NOT NULL DEFAULT '',
	details       TEXT NOT NULL DEFAULT ''
)`

// EnsureSchema creates the audit table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, entry domain.Entry) (domain.EntryID, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	var actorID any
	if !entry.ActorID.IsNil() {
		actorID = entry.ActorID.String()
	}

	const insert = `
		INSERT INTO audit_entries (ts, actor, actor_id, action, resource, resource_kind, status, origin_addr, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var entryID int64
	err := s.db.QueryRowContext(ctx, insert,
		entry.Timestamp,
		entry.Actor,
		actorID,
		entry.Action,
		entry.Resource,
		string(entry.ResourceKind),
		string(entry.Status),
		entry.OriginAddr,
		entry.Details,
	).Scan(&entryID)
	if err != nil {
		return 0, fmt.Errorf("insert audit entry: %w", err)
	}
	return domain.EntryID(entryID), nil
}

func (s *PostgresStore) Scan(ctx context.Context) ([]domain.Entry, error) {
	const query = `
		SELECT id, ts, actor, actor_id, action, resource, resource_kind, status, origin_addr, details
		FROM audit_entries
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan audit entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		var (
			entry   domain.Entry
			entryID int64
			actorID sql.NullString
		)
		if err := rows.Scan(
			&entryID,
			&entry.Timestamp,
			&entry.Actor,
			&actorID,
			&entry.Action,
			&entry.Resource,
			&entry.ResourceKind,
			&entry.Status,
			&entry.OriginAddr,
			&entry.Details,
		); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		entry.ID = domain.EntryID(entryID)
		if actorID.Valid {
			parsed, err := id.ParseUserID(actorID.String)
			if err != nil {
				return nil, fmt.Errorf("audit row %d actor id: %w", entryID, err)
			}
			entry.ActorID = parsed
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}
	return entries, nil
}
