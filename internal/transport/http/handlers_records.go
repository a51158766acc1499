package httptransport

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custodia/internal/domain"
	"custodia/internal/gate"
	"custodia/pkg/platform/sentinel"
)

// The records routes demonstrate the gate end to end: every hit runs through
// policy and leaves exactly one audit entry, whatever the outcome.

func (h *Handler) handleViewCase(w http.ResponseWriter, r *http.Request) {
	mgr, _, ok := sessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}
	caseID := chi.URLParam(r, "caseID")

	result, err := h.gate.ForSession(mgr).Do(r.Context(), gate.Request{
		Action:   domain.ActionViewed,
		Resource: caseID,
		Kind:     domain.KindCase,
		Details:  "Accessed case details",
	}, func(ctx context.Context) (any, error) {
		return h.records.FetchCase(ctx, caseID)
	})
	if err != nil {
		writeGateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDownloadEvidence(w http.ResponseWriter, r *http.Request) {
	mgr, _, ok := sessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}
	itemID := chi.URLParam(r, "itemID")

	result, err := h.gate.ForSession(mgr).Do(r.Context(), gate.Request{
		Action:   domain.ActionDownloaded,
		Resource: itemID,
		Kind:     domain.KindEvidence,
		Details:  "Downloaded evidence documentation",
	}, func(ctx context.Context) (any, error) {
		item, err := h.records.FetchEvidence(ctx, itemID)
		if err != nil {
			return nil, err
		}
		return item.Document, nil
	})
	if err != nil {
		writeGateError(w, err)
		return
	}

	document, _ := result.([]byte)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(document)
}

func writeGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, sentinel.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
