// Package publisher records audit entries on behalf of graph mutations.
//
// Logger is fail-open: a failed audit write is logged and counted but never
// returned, so it cannot abort the mutation that produced it. Successful
// writes are forwarded to the event stream.
package publisher

import (
	"context"
	"io"
	"log/slog"

	id "rosterid/pkg/domain"
	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/platform/audit/events"
	"rosterid/pkg/requestcontext"
)

// Logger writes audit entries and publishes them.
type Logger struct {
	store   audit.Store
	events  events.Publisher
	logger  *slog.Logger
	metrics *audit.Metrics
}

// Option configures the Logger.
type Option func(*Logger)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) {
		l.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *audit.Metrics) Option {
	return func(l *Logger) {
		l.metrics = m
	}
}

// WithEvents sets the outward event port. Defaults to events.Nop.
func WithEvents(p events.Publisher) Option {
	return func(l *Logger) {
		if p != nil {
			l.events = p
		}
	}
}

// New creates an audit logger over store.
func New(store audit.Store, opts ...Option) *Logger {
	l := &Logger{
		store:  store,
		events: events.Nop{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record fills in ID, Timestamp and PerformedBy when unset, then appends
// entry. It returns the completed entry and whether it was persisted.
func (l *Logger) Record(ctx context.Context, entry audit.Entry) (audit.Entry, bool) {
	if entry.ID.IsNil() {
		entry.ID = id.NewAuditID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}
	if entry.PerformedBy == "" {
		entry.PerformedBy = requestcontext.Actor(ctx)
	}

	if err := l.store.Append(ctx, entry); err != nil {
		l.metrics.IncWriteFailures()
		l.logger.ErrorContext(ctx, "failed to write audit entry",
			"audit_id", entry.ID.String(),
			"entity_type", string(entry.EntityType),
			"entity_id", entry.EntityID,
			"action", string(entry.Action),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return entry, false
	}

	l.metrics.IncEntriesWritten(entry.Action)
	l.events.Publish(ctx, events.FromEntry(entry))
	return entry, true
}
