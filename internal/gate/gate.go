// Package gate is the enforcement chokepoint: every resource-affecting
// operation goes through Do, which consults the role policy and the session
// manager, runs the delegated operation only when permitted, and appends
// exactly one audit entry per invocation no matter the outcome.
package gate

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"custodia/internal/audit"
	"custodia/internal/domain"
	"custodia/internal/platform/metrics"
	"custodia/internal/policy"
	"custodia/internal/session"
	"custodia/pkg/requestcontext"
)

// Operation is a delegated business operation. The gate treats it as opaque:
// its result and error pass through unchanged.
type Operation func(ctx context.Context) (any, error)

// Mirror receives a copy of every appended entry, best-effort. The
// synchronous store append remains the source of truth.
type Mirror interface {
	Enqueue(entry domain.Entry)
}

// Request names the attempt being gated.
type Request struct {
	Action   string
	Resource string
	Kind     domain.ResourceKind
	Details  string // human-readable note recorded on success
}

// Gate wraps operations with policy enforcement and unconditional auditing.
type Gate struct {
	sessions *session.Manager
	store    audit.Store
	mirror   Mirror
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Gate.
type Option func(*Gate)

// WithMirror tees appended entries to a secondary sink.
func WithMirror(m Mirror) Option {
	return func(g *Gate) { g.mirror = m }
}

// WithMetrics enables decision and append counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// WithLogger sets the gate's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

// New builds a gate over the given session manager and audit store.
func New(sessions *session.Manager, store audit.Store, opts ...Option) *Gate {
	g := &Gate{
		sessions: sessions,
		store:    store,
		logger:   slog.Default(),
		tracer:   otel.Tracer("custodia/gate"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ForSession returns a gate bound to a different session manager, sharing
// the store, mirror, and instrumentation. Used by multi-actor surfaces that
// hold one manager per session.
func (g *Gate) ForSession(sessions *session.Manager) *Gate {
	bound := *g
	bound.sessions = sessions
	return &bound
}

// Do enforces policy for req and, when permitted, runs op. Exactly one audit
// entry is appended per invocation:
//
//   - policy deny     -> status unauthorized, ErrAccessDenied returned
//   - op succeeds     -> status success, op's result returned
//   - op fails        -> status failed, op's error returned unchanged
//
// Denials and failures audit first, then signal. A failed audit append is
// fatal to the invocation: the error propagates and any operation result is
// discarded, because a missing audit entry is a compliance violation.
// Caller cancellation is a failure like any other: the entry is still
// written (the append runs detached from the caller's cancellation).
func (g *Gate) Do(ctx context.Context, req Request, op Operation) (any, error) {
	ctx, span := g.tracer.Start(ctx, "gate.Do", trace.WithAttributes(
		attribute.String("action", req.Action),
		attribute.String("resource.kind", string(req.Kind)),
		attribute.String("resource", req.Resource),
	))
	defer span.End()

	entry := domain.Entry{
		Actor:        domain.ActorUnknown,
		Action:       req.Action,
		Resource:     req.Resource,
		ResourceKind: req.Kind,
		OriginAddr:   requestcontext.ClientIP(ctx),
	}

	identity, authenticated := g.sessions.Current()
	if authenticated {
		entry.Actor = identity.Name
		entry.ActorID = identity.ID
	}

	if !authenticated || !policy.Permits(identity.Role, req.Kind, req.Action) {
		entry.Status = domain.StatusUnauthorized
		entry.Details = "access denied by role policy"
		if !authenticated {
			entry.Details = "unauthenticated access attempt blocked"
		}
		if err := g.append(ctx, entry); err != nil {
			span.SetStatus(codes.Error, "audit append failed")
			return nil, err
		}
		g.metrics.IncAccessDecision("denied")
		span.SetAttributes(attribute.String("outcome", "denied"))
		g.logger.Warn("access denied",
			"request_id", requestcontext.RequestID(ctx),
			"actor", entry.Actor,
			"action", req.Action,
			"resource", req.Resource,
		)
		return nil, fmt.Errorf("%s on %s: %w", req.Action, req.Resource, domain.ErrAccessDenied)
	}

	result, opErr := op(ctx)
	if opErr != nil {
		entry.Status = domain.StatusFailed
		entry.Details = opErr.Error()
		if err := g.append(ctx, entry); err != nil {
			span.SetStatus(codes.Error, "audit append failed")
			return nil, err
		}
		g.metrics.IncAccessDecision("failed")
		span.RecordError(opErr)
		span.SetStatus(codes.Error, "operation failed")
		// The delegated error is not interpreted here; it is recorded
		// verbatim above and re-raised unchanged.
		return nil, opErr
	}

	entry.Status = domain.StatusSuccess
	entry.Details = req.Details
	if err := g.append(ctx, entry); err != nil {
		span.SetStatus(codes.Error, "audit append failed")
		return nil, err
	}
	g.metrics.IncAccessDecision("allowed")
	span.SetAttributes(attribute.String("outcome", "allowed"))
	return result, nil
}

// append writes the entry detached from the caller's cancellation so a
// cancelled operation still leaves its audit trail.
func (g *Gate) append(ctx context.Context, entry domain.Entry) error {
	entryID, err := g.store.Append(context.WithoutCancel(ctx), entry)
	if err != nil {
		g.logger.Error("audit append failed",
			"request_id", requestcontext.RequestID(ctx),
			"actor", entry.Actor,
			"action", entry.Action,
			"resource", entry.Resource,
			"error", err,
		)
		return fmt.Errorf("audit append: %w", err)
	}
	entry.ID = entryID
	g.metrics.IncEntryAppended(string(entry.Status))
	if g.mirror != nil {
		g.mirror.Enqueue(entry)
	}
	return nil
}
