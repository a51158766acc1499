package httptransport

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"custodia/internal/audit"
	"custodia/internal/domain"
	"custodia/internal/export"
)

type entryResponse struct {
	ID           uint64    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Actor        string    `json:"actor"`
	ActorID      string    `json:"actor_id,omitempty"`
	Action       string    `json:"action"`
	Resource     string    `json:"resource"`
	ResourceKind string    `json:"resource_kind"`
	Status       string    `json:"status"`
	OriginAddr   string    `json:"origin_addr"`
	Details      string    `json:"details"`
}

func toEntryResponse(entry domain.Entry) entryResponse {
	resp := entryResponse{
		ID:           uint64(entry.ID),
		Timestamp:    entry.Timestamp,
		Actor:        entry.Actor,
		Action:       entry.Action,
		Resource:     entry.Resource,
		ResourceKind: string(entry.ResourceKind),
		Status:       string(entry.Status),
		OriginAddr:   entry.OriginAddr,
		Details:      entry.Details,
	}
	if !entry.ActorID.IsNil() {
		resp.ActorID = entry.ActorID.String()
	}
	return resp
}

// filterSpecFromQuery maps URL query params onto one ephemeral FilterSpec.
func filterSpecFromQuery(r *http.Request) (audit.FilterSpec, error) {
	q := r.URL.Query()
	spec := audit.FilterSpec{Text: q.Get("q")}

	status, err := audit.ParseStatusFilter(q.Get("status"))
	if err != nil {
		return audit.FilterSpec{}, err
	}
	spec.Status = status
	spec.Kind = domain.ResourceKind(q.Get("kind"))

	if raw := q.Get("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.FilterSpec{}, fmt.Errorf("bad from timestamp: %w", err)
		}
		spec.From = ts
	}
	if raw := q.Get("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.FilterSpec{}, fmt.Errorf("bad to timestamp: %w", err)
		}
		spec.To = ts
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return audit.FilterSpec{}, fmt.Errorf("bad offset: %q", raw)
		}
		spec.Offset = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return audit.FilterSpec{}, fmt.Errorf("bad limit: %q", raw)
		}
		spec.Limit = n
	}
	return spec, nil
}

func (h *Handler) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	spec, err := filterSpecFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.engine.Query(r.Context(), spec)
	if err != nil {
		h.logger.Error("audit query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]entryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, toEntryResponse(entry))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": resp})
}

func (h *Handler) handleAuditSummary(w http.ResponseWriter, r *http.Request) {
	spec, err := filterSpecFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.engine.Query(r.Context(), spec)
	if err != nil {
		h.logger.Error("audit query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	summary := audit.Summarize(entries)
	writeJSON(w, http.StatusOK, map[string]int{
		"total":           summary.Total,
		"success_count":   summary.SuccessCount,
		"security_events": summary.SecurityEventCount,
	})
}

func (h *Handler) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	spec, err := filterSpecFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.engine.Query(r.Context(), spec)
	if err != nil {
		h.logger.Error("audit query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="access-logs.csv"`)
	if err := export.WriteCSV(w, entries); err != nil {
		h.logger.Error("audit export failed", "error", err)
	}
}
