// Package httptransport serves the admin HTTP surface: review queue
// decisions, identity lookups, manual merge and split, and audit history.
package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"rosterid/internal/identity/models"
	identityservice "rosterid/internal/identity/service"
	reviewservice "rosterid/internal/review/service"
	reviewstore "rosterid/internal/review/store"
	id "rosterid/pkg/domain"
	audit "rosterid/pkg/platform/audit"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks IdentityService,ReviewService

// IdentityService is the slice of the identity graph the admin surface drives.
type IdentityService interface {
	LookupMapping(ctx context.Context, kind id.EntityKind, externalID string, season int) (*identityservice.MappingView, error)
	LookupExternalID(ctx context.Context, kind id.EntityKind, externalID string) ([]*models.IdentityMapping, error)
	GetIdentity(ctx context.Context, identityID id.IdentityID) (*identityservice.IdentityView, error)
	Merge(ctx context.Context, primaryID, secondaryID id.IdentityID, reason string) (*models.MasterIdentity, error)
	Split(ctx context.Context, identityID id.IdentityID, mappingIDs []id.MappingID, reason string) (*identityservice.SplitResult, error)
	Rollback(ctx context.Context, auditID id.AuditID, reason string) (*audit.Entry, error)
}

// ReviewService is the review queue as seen by reviewers.
type ReviewService interface {
	List(ctx context.Context, filter reviewstore.Filter) ([]*models.MatchCandidate, error)
	Get(ctx context.Context, candidateID id.CandidateID) (*models.MatchCandidate, error)
	Approve(ctx context.Context, candidateID id.CandidateID, reviewer, reason string) (*reviewservice.Decision, error)
	Reject(ctx context.Context, candidateID id.CandidateID, reviewer, reason string) (*reviewservice.Decision, error)
}

// Handler handles the /admin routes.
type Handler struct {
	identities IdentityService
	reviews    ReviewService
	audits     audit.Store
	logger     *slog.Logger
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New creates the admin handler. All collaborators are required.
func New(identities IdentityService, reviews ReviewService, audits audit.Store, opts ...Option) (*Handler, error) {
	if identities == nil {
		return nil, errors.New("identity service is required")
	}
	if reviews == nil {
		return nil, errors.New("review service is required")
	}
	if audits == nil {
		return nil, errors.New("audit store is required")
	}
	h := &Handler{
		identities: identities,
		reviews:    reviews,
		audits:     audits,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register mounts the admin routes on r. Authentication is the caller's job.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/matches", h.handleListMatches)
		r.Get("/matches/{id}", h.handleGetMatch)
		r.Post("/matches/{id}/approve", h.handleApproveMatch)
		r.Post("/matches/{id}/reject", h.handleRejectMatch)

		r.Get("/mappings", h.handleLookupMappings)

		r.Get("/identities/{id}", h.handleGetIdentity)
		r.Post("/identities/{id}/merge", h.handleMerge)
		r.Post("/identities/{id}/split", h.handleSplit)

		r.Get("/audit", h.handleListAudit)
		r.Get("/audit/stats", h.handleAuditStats)
		r.Post("/audit/{id}/rollback", h.handleRollback)
	})
}
