// Package service mutates the identity graph.
//
// Every mutation runs inside a single store transaction and is retried with
// bounded backoff when the store reports a concurrent modification. Audit
// entries are collected while the transaction runs and written only after it
// commits; a failed audit write is logged and counted by the audit logger
// and never fails the mutation.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	identitymetrics "rosterid/internal/identity/metrics"
	"rosterid/internal/identity/models"
	"rosterid/internal/identity/store"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/platform/audit/publisher"
	"rosterid/pkg/platform/keylock"
	"rosterid/pkg/platform/retry"
	"rosterid/pkg/platform/sentinel"
)

// AuditRecorder persists audit entries. publisher.Logger satisfies it.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) (audit.Entry, bool)
}

// CandidateStore restores a match candidate when a review decision is rolled back.
type CandidateStore interface {
	Put(ctx context.Context, candidate *models.MatchCandidate) error
}

// Service applies matches and performs merge, split and rollback on the
// identity graph.
type Service struct {
	store      store.Store
	audits     audit.Store
	recorder   AuditRecorder
	candidates CandidateStore
	locker     *keylock.Locker
	retry      retry.Config
	logger     *slog.Logger
	metrics    *identitymetrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditPublisher replaces the default audit logger, which writes
// straight to the audit store without publishing events.
func WithAuditPublisher(recorder AuditRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// WithCandidateStore enables rollback of review decisions.
func WithCandidateStore(candidates CandidateStore) Option {
	return func(s *Service) {
		s.candidates = candidates
	}
}

// WithLocker shares a keyed lock with other writers, typically the resolver.
func WithLocker(locker *keylock.Locker) Option {
	return func(s *Service) {
		if locker != nil {
			s.locker = locker
		}
	}
}

func WithRetry(cfg retry.Config) Option {
	return func(s *Service) {
		s.retry = cfg
	}
}

// New creates the identity service. Both stores are required.
func New(graph store.Store, audits audit.Store, opts ...Option) (*Service, error) {
	if graph == nil {
		return nil, errors.New("identity store is required")
	}
	if audits == nil {
		return nil, errors.New("audit store is required")
	}
	s := &Service{
		store:  graph,
		audits: audits,
		locker: keylock.New(),
		retry:  retry.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.recorder == nil {
		s.recorder = publisher.New(audits, publisher.WithLogger(s.logger))
	}
	return s, nil
}

// changeSet accumulates the audit entries and counters of one transaction
// attempt. It is discarded when the attempt fails.
type changeSet struct {
	entries         []audit.Entry
	created         int
	mappingsWritten []models.MatchMethod
}

func (c *changeSet) record(entityType audit.EntityType, entityID string, action audit.Action, before, after any, reason, group string) error {
	beforeState, err := audit.Snapshot(before)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to snapshot state")
	}
	afterState, err := audit.Snapshot(after)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to snapshot state")
	}
	c.entries = append(c.entries, audit.Entry{
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		BeforeState: beforeState,
		AfterState:  afterState,
		Reason:      reason,
		GroupID:     group,
	})
	return nil
}

type txFunc func(ctx context.Context, tx store.Store, changes *changeSet) error

// mutate runs fn in a transaction under the keyed lock, retrying on
// ErrConflict, then records the committed changes.
func (s *Service) mutate(ctx context.Context, op string, lockKeys []string, fn txFunc) ([]audit.Entry, error) {
	var changes *changeSet
	err := s.locker.Do(ctx, lockKeys, func(ctx context.Context) error {
		return retry.Do(ctx, s.retry, isConflict,
			func(err error, wait time.Duration) {
				s.metrics.IncConflictRetry(op)
				s.logger.DebugContext(ctx, "retrying identity transaction",
					"operation", op,
					"wait", wait,
					"error", err,
				)
			},
			func(ctx context.Context) error {
				changes = &changeSet{}
				return s.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
					return fn(ctx, tx, changes)
				})
			})
	})
	if err != nil {
		err = translate(err)
		s.metrics.ObserveOperation(op, string(dErrors.CodeOf(err)))
		return nil, err
	}

	s.metrics.ObserveOperation(op, "ok")
	for i := 0; i < changes.created; i++ {
		s.metrics.IncIdentitiesCreated()
	}
	for _, method := range changes.mappingsWritten {
		s.metrics.IncMappingsWritten(string(method))
	}

	recorded := make([]audit.Entry, 0, len(changes.entries))
	for _, entry := range changes.entries {
		stored, _ := s.recorder.Record(ctx, entry)
		recorded = append(recorded, stored)
	}
	return recorded, nil
}

func isConflict(err error) bool {
	return errors.Is(err, sentinel.ErrConflict)
}

// translate maps store sentinels to coded errors. Coded errors pass through.
func translate(err error) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "identity or mapping not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "concurrent modification, retries exhausted")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "entity is in the wrong state")
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "candidate has expired")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation aborted")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "identity store failure")
	}
}

// findIdentity loads an identity, naming it in the not-found error. Other
// store errors are returned as is so conflicts stay retryable.
func findIdentity(ctx context.Context, tx store.Store, identityID id.IdentityID) (*models.MasterIdentity, error) {
	identity, err := tx.FindIdentity(ctx, identityID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "identity "+identityID.String()+" not found")
	}
	return identity, err
}

func findActiveIdentity(ctx context.Context, tx store.Store, identityID id.IdentityID) (*models.MasterIdentity, error) {
	identity, err := findIdentity(ctx, tx, identityID)
	if err != nil {
		return nil, err
	}
	if !identity.IsActive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identity "+identityID.String()+" is deleted")
	}
	return identity, nil
}

func findMapping(ctx context.Context, tx store.Store, mappingID id.MappingID) (*models.IdentityMapping, error) {
	m, err := tx.FindMapping(ctx, mappingID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "mapping "+mappingID.String()+" not found")
	}
	return m, err
}

// mappingForRecord returns nil when the record is unmapped.
func mappingForRecord(ctx context.Context, tx store.Store, key models.RecordKey) (*models.IdentityMapping, error) {
	m, err := tx.FindMappingByRecord(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	return m, err
}

// groupOf is the audit grouping of an identity: the league for teams.
func groupOf(identity *models.MasterIdentity) string {
	if identity != nil && identity.Metadata.Team != nil {
		return identity.Metadata.Team.LeagueID
	}
	return ""
}

func identityLockKey(identityID id.IdentityID) string {
	return "identity:" + identityID.String()
}

func recordLockKeys(extra []string, records ...models.RawRecord) []string {
	keys := append([]string(nil), extra...)
	for _, r := range records {
		keys = append(keys, "record:"+r.Key().String())
	}
	return keys
}
