package models

import (
	"time"

	"rosterid/internal/scoring"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
)

type CandidateStatus string

const (
	CandidateStatusPending  CandidateStatus = "pending"
	CandidateStatusApproved CandidateStatus = "approved"
	CandidateStatusRejected CandidateStatus = "rejected"
)

// MatchCandidate is a scored pair waiting for a human decision.
//
// Invariants:
//   - ID is derived from the unordered record pair, so a rerun addresses the same candidate
//   - Status moves pending -> approved or pending -> rejected, once
//   - ExpiresAt bounds retention; an expired candidate may be dropped and recomputed
type MatchCandidate struct {
	ID           id.CandidateID  `json:"id"`
	Kind         id.EntityKind   `json:"kind"`
	Left         RawRecord       `json:"left"`
	Right        RawRecord       `json:"right"`
	Confidence   float64         `json:"confidence"`
	Action       scoring.Action  `json:"action"`
	Reasons      []string        `json:"reasons"`
	Factors      scoring.Factors `json:"factors"`
	Status       CandidateStatus `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
	ReviewedBy   string          `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
	ReviewReason string          `json:"review_reason,omitempty"`
}

// NewMatchCandidate orders the pair by season so Left is the earlier record.
func NewMatchCandidate(a, b RawRecord, factors scoring.Factors, confidence float64, action scoring.Action, reasons []string, now time.Time, ttl time.Duration) *MatchCandidate {
	left, right := a, b
	if right.Season < left.Season || (right.Season == left.Season && right.ExternalID < left.ExternalID) {
		left, right = right, left
	}
	return &MatchCandidate{
		ID:         id.CandidateIDFor(PairKey(left.Key(), right.Key())),
		Kind:       left.Kind,
		Left:       left,
		Right:      right,
		Confidence: confidence,
		Action:     action,
		Reasons:    append([]string(nil), reasons...),
		Factors:    factors,
		Status:     CandidateStatusPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

func (c *MatchCandidate) IsPending() bool {
	return c.Status == CandidateStatusPending
}

func (c *MatchCandidate) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// CanReview checks that a decision can still be recorded.
func (c *MatchCandidate) CanReview() error {
	if !c.IsPending() {
		return dErrors.New(dErrors.CodeInvariantViolation, "candidate is not pending")
	}
	return nil
}

// ApplyReview records the decision. Call CanReview first.
func (c *MatchCandidate) ApplyReview(status CandidateStatus, reviewer, reason string, now time.Time) {
	c.Status = status
	c.ReviewedBy = reviewer
	c.ReviewedAt = &now
	c.ReviewReason = reason
}

// Reopen puts a reviewed candidate back in the queue.
func (c *MatchCandidate) Reopen() {
	c.Status = CandidateStatusPending
	c.ReviewedBy = ""
	c.ReviewedAt = nil
	c.ReviewReason = ""
}

// Clone returns a copy safe to mutate.
func (c *MatchCandidate) Clone() *MatchCandidate {
	if c == nil {
		return nil
	}
	out := *c
	out.Reasons = append([]string(nil), c.Reasons...)
	if c.ReviewedAt != nil {
		t := *c.ReviewedAt
		out.ReviewedAt = &t
	}
	return &out
}
