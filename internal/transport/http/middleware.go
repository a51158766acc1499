package httptransport

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"

	"custodia/internal/session"
	"custodia/internal/token"
	id "custodia/pkg/domain"
	"custodia/pkg/requestcontext"
)

type sessionKey struct{}

// sessionFrom returns the manager the auth middleware resolved for this
// request, if any.
func sessionFrom(ctx context.Context) (*session.Manager, id.SessionID, bool) {
	v, ok := ctx.Value(sessionKey{}).(authedSession)
	return v.mgr, v.sessionID, ok
}

type authedSession struct {
	mgr       *session.Manager
	sessionID id.SessionID
}

// RequestMeta stamps each request with a correlation ID and its network
// origin so gate-written entries carry them.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithRequestID(r.Context(), uuid.NewString())

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ctx = requestcontext.WithClientIP(ctx, host)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession validates the bearer token and loads the matching session
// manager into the request context. Requests without a live session get 401.
func RequireSession(tokens *token.Service, sessions *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			header := r.Header.Get("Authorization")
			if len(header) <= len(bearerPrefix) || header[:len(bearerPrefix)] != bearerPrefix {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := tokens.Validate(header[len(bearerPrefix):])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			sessionID, err := id.ParseSessionID(claims.SessionID)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			mgr, err := sessions.Get(sessionID)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, authedSession{
				mgr:       mgr,
				sessionID: sessionID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
