// Package service runs the pending-match review queue: resolution runs
// enqueue candidates, reviewers approve or reject them.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"rosterid/internal/identity/models"
	identityservice "rosterid/internal/identity/service"
	reviewmetrics "rosterid/internal/review/metrics"
	"rosterid/internal/review/store"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/platform/keylock"
	"rosterid/pkg/platform/sentinel"
	"rosterid/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Applier

// Applier binds an approved pair in the identity graph. When the two records
// already belong to different identities the approval merges them first.
type Applier interface {
	ApplyMatch(ctx context.Context, match identityservice.Match) (*identityservice.ApplyResult, error)
	LookupMapping(ctx context.Context, kind id.EntityKind, externalID string, season int) (*identityservice.MappingView, error)
	Merge(ctx context.Context, primaryID, secondaryID id.IdentityID, reason string) (*models.MasterIdentity, error)
}

// Service manages match candidates.
type Service struct {
	candidates store.PendingMatchStore
	applier    Applier
	audit      identityservice.AuditRecorder
	locker     *keylock.Locker
	logger     *slog.Logger
	metrics    *reviewmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *reviewmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates the review service. All collaborators are required.
func New(candidates store.PendingMatchStore, applier Applier, recorder identityservice.AuditRecorder, opts ...Option) (*Service, error) {
	if candidates == nil {
		return nil, errors.New("pending match store is required")
	}
	if applier == nil {
		return nil, errors.New("match applier is required")
	}
	if recorder == nil {
		return nil, errors.New("audit recorder is required")
	}
	s := &Service{
		candidates: candidates,
		applier:    applier,
		audit:      recorder,
		locker:     keylock.New(keylock.WithShards(32)),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Enqueue adds or refreshes a pending candidate. A candidate that was
// already reviewed keeps its decision until it expires, so a rerun does not
// resurface a rejected pair. It reports whether the candidate is new.
func (s *Service) Enqueue(ctx context.Context, candidate *models.MatchCandidate) (bool, error) {
	now := requestcontext.Now(ctx)
	if candidate.IsExpired(now) {
		return false, nil
	}

	queued := false
	err := s.locker.Do(ctx, []string{candidate.ID.String()}, func(ctx context.Context) error {
		existing, err := s.candidates.Get(ctx, candidate.ID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			queued = true
		case err != nil:
			return err
		case existing.IsExpired(now):
			queued = true
		case !existing.IsPending():
			return nil
		default:
			candidate = candidate.Clone()
			candidate.CreatedAt = existing.CreatedAt
		}
		return s.candidates.Put(ctx, candidate)
	})
	if err != nil {
		return false, translate(err)
	}
	if queued {
		s.metrics.IncQueued(string(candidate.Kind))
	}
	return queued, nil
}

// List returns unexpired candidates matching filter.
func (s *Service) List(ctx context.Context, filter store.Filter) ([]*models.MatchCandidate, error) {
	if filter.Kind != "" && !filter.Kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "kind must be player or team")
	}
	filter.Now = requestcontext.Now(ctx)
	candidates, err := s.candidates.List(ctx, filter)
	if err != nil {
		return nil, translate(err)
	}
	return candidates, nil
}

// Get returns one unexpired candidate.
func (s *Service) Get(ctx context.Context, candidateID id.CandidateID) (*models.MatchCandidate, error) {
	c, err := s.candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, translate(err)
	}
	if c.IsExpired(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeNotFound, "candidate has expired")
	}
	return c, nil
}

// Decision is the reviewed candidate and, for approvals, the identity it
// was applied to. MergedFrom names the identity folded into it when the two
// records had been resolved separately.
type Decision struct {
	Candidate  *models.MatchCandidate
	Applied    *identityservice.ApplyResult
	MergedFrom id.IdentityID
}

// Approve applies the pair as a manual match at the candidate's confidence
// and marks the candidate approved.
func (s *Service) Approve(ctx context.Context, candidateID id.CandidateID, reviewer, reason string) (*Decision, error) {
	return s.review(ctx, candidateID, reviewer, reason, models.CandidateStatusApproved)
}

// Reject marks the candidate rejected without touching the identity graph.
func (s *Service) Reject(ctx context.Context, candidateID id.CandidateID, reviewer, reason string) (*Decision, error) {
	return s.review(ctx, candidateID, reviewer, reason, models.CandidateStatusRejected)
}

func (s *Service) review(ctx context.Context, candidateID id.CandidateID, reviewer, reason string, status models.CandidateStatus) (*Decision, error) {
	if reviewer == "" {
		reviewer = requestcontext.Actor(ctx)
	}
	ctx = requestcontext.WithActor(ctx, reviewer)

	var decision *Decision
	err := s.locker.Do(ctx, []string{candidateID.String()}, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		current, err := s.Get(ctx, candidateID)
		if err != nil {
			return err
		}
		if err := current.CanReview(); err != nil {
			return err
		}

		decision = &Decision{}
		if status == models.CandidateStatusApproved {
			if err := s.approve(ctx, current, reason, decision); err != nil {
				return err
			}
		}

		reviewed := current.Clone()
		reviewed.ApplyReview(status, reviewer, reason, now)
		if err := s.candidates.Put(ctx, reviewed); err != nil {
			return translate(err)
		}
		decision.Candidate = reviewed
		s.recordReview(ctx, current, reviewed, reason)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncDecision(string(status))
	s.logger.InfoContext(ctx, "match candidate reviewed",
		"candidate_id", candidateID.String(),
		"status", string(status),
		"reviewer", reviewer,
	)
	return decision, nil
}

// approve binds the pair as a manual match. Records already resolved to two
// identities are merged into the identity of the earlier season first; the
// merge is audited on its own and survives a failed bind.
func (s *Service) approve(ctx context.Context, c *models.MatchCandidate, reason string, decision *Decision) error {
	match := identityservice.Match{
		Left:       c.Left,
		Right:      c.Right,
		Confidence: c.Confidence,
		Method:     models.MethodManual,
		Reason:     reviewReason(reason, "approved match candidate"),
	}
	applied, err := s.applier.ApplyMatch(ctx, match)
	if !errors.Is(err, identityservice.ErrDistinctIdentities) {
		decision.Applied = applied
		return err
	}

	primary, secondary, err := s.mergeOrder(ctx, c)
	if err != nil {
		return err
	}
	if _, err := s.applier.Merge(ctx, primary, secondary, reviewReason(reason, "approved match candidate "+c.ID.String())); err != nil {
		return err
	}
	decision.MergedFrom = secondary
	s.logger.InfoContext(ctx, "merged identities for approved candidate",
		"candidate_id", c.ID.String(),
		"primary_id", primary.String(),
		"secondary_id", secondary.String(),
	)

	decision.Applied, err = s.applier.ApplyMatch(ctx, match)
	return err
}

// mergeOrder returns the identities of the candidate's records, the one
// holding the earlier season first. Equal seasons keep the left record first.
func (s *Service) mergeOrder(ctx context.Context, c *models.MatchCandidate) (id.IdentityID, id.IdentityID, error) {
	first, second := c.Left, c.Right
	if second.Season < first.Season {
		first, second = second, first
	}
	primary, err := s.applier.LookupMapping(ctx, first.Kind, first.ExternalID, first.Season)
	if err != nil {
		return id.IdentityID{}, id.IdentityID{}, err
	}
	secondary, err := s.applier.LookupMapping(ctx, second.Kind, second.ExternalID, second.Season)
	if err != nil {
		return id.IdentityID{}, id.IdentityID{}, err
	}
	return primary.Mapping.IdentityID, secondary.Mapping.IdentityID, nil
}

func (s *Service) recordReview(ctx context.Context, before, after *models.MatchCandidate, reason string) {
	beforeState, err := audit.Snapshot(before)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to snapshot candidate", "error", err)
		return
	}
	afterState, err := audit.Snapshot(after)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to snapshot candidate", "error", err)
		return
	}
	s.audit.Record(ctx, audit.Entry{
		EntityType:  audit.EntityCandidate,
		EntityID:    after.ID.String(),
		Action:      audit.ActionUpdate,
		BeforeState: beforeState,
		AfterState:  afterState,
		Reason:      reviewReason(reason, "candidate "+string(after.Status)),
		PerformedBy: after.ReviewedBy,
		GroupID:     after.Left.LeagueID,
	})
}

func reviewReason(reason, fallback string) string {
	if reason != "" {
		return reason
	}
	return fallback
}

// ExpireStale drops candidates past their retention window.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	removed, err := s.candidates.Expire(ctx, requestcontext.Now(ctx))
	if err != nil {
		return 0, translate(err)
	}
	s.metrics.AddExpired(removed)
	if removed > 0 {
		s.logger.InfoContext(ctx, "expired stale match candidates", "count", removed)
	}
	return removed, nil
}

func translate(err error) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "candidate not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeInternal, "review queue unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "review queue failure")
	}
}
