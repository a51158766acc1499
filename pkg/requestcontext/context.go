// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; the access gate reads the
// client IP into audit entries and the request ID onto its log lines.
// Keeping this package free of net/http lets core packages import only what
// they need.
package requestcontext

import "context"

// Context key types (unexported for encapsulation).
type (
	requestIDKey struct{}
	clientIPKey  struct{}
)

// WithRequestID attaches a correlation ID for this request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation ID, or "" when none was set.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithClientIP attaches the network origin of this request.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the network origin, or "" when none was set.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}
