package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"custodia/internal/domain"
	"custodia/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Agency      string `json:"agency"`
	BadgeNumber string `json:"badge_number,omitempty"`
}

func toUserResponse(identity domain.Identity) userResponse {
	return userResponse{
		ID:          identity.ID.String(),
		Email:       identity.Email,
		Name:        identity.Name,
		Role:        identity.Role.String(),
		Agency:      identity.Agency,
		BadgeNumber: identity.BadgeNumber,
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	sessionID, identity, err := h.sessions.Login(r.Context(), session.Credentials{
		Email:  req.Email,
		Secret: req.Password,
	})
	if err != nil {
		h.metrics.IncLoginFailure()
		switch {
		case errors.Is(err, domain.ErrLoginInProgress):
			writeError(w, http.StatusConflict, "login already in progress")
		case errors.Is(err, domain.ErrAuthenticationFailed):
			writeError(w, http.StatusUnauthorized, "authentication failed")
		default:
			h.logger.Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	signed, err := h.tokens.Generate(identity.ID, sessionID, identity.Role)
	if err != nil {
		h.logger.Error("token mint failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.IncLogin()
	writeJSON(w, http.StatusOK, loginResponse{
		Token: signed,
		User:  toUserResponse(identity),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, sessionID, ok := sessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}
	if err := h.sessions.Logout(sessionID); err != nil {
		h.logger.Error("logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	mgr, _, ok := sessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}
	identity, authed := mgr.Current()
	if !authed {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(identity))
}
