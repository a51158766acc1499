// Package export renders query results for reporting collaborators. The
// exported set is exactly the sequence passed in; no additional filtering is
// applied downstream of the query engine.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"custodia/internal/domain"
)

var csvHeader = []string{
	"id", "timestamp", "actor", "actor_id", "action",
	"resource", "resource_kind", "status", "origin_addr", "details",
}

// WriteCSV writes entries as CSV, one row per entry in the given order.
func WriteCSV(w io.Writer, entries []domain.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, entry := range entries {
		actorID := ""
		if !entry.ActorID.IsNil() {
			actorID = entry.ActorID.String()
		}
		row := []string{
			strconv.FormatUint(uint64(entry.ID), 10),
			entry.Timestamp.Format(time.RFC3339),
			entry.Actor,
			actorID,
			entry.Action,
			entry.Resource,
			string(entry.ResourceKind),
			string(entry.Status),
			entry.OriginAddr,
			entry.Details,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", entry.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
