package httptransport

import (
	"context"
	"net/http"

	reviewservice "rosterid/internal/review/service"
	id "rosterid/pkg/domain"
	"rosterid/pkg/platform/httputil"
	"rosterid/pkg/requestcontext"
)

type reviewFunc func(ctx context.Context, candidateID id.CandidateID, reviewer, reason string) (*reviewservice.Decision, error)

func (h *Handler) handleListMatches(w http.ResponseWriter, r *http.Request) {
	filter, err := matchFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	matches, err := h.reviews.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, "list matches", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MatchListResponse{Matches: matches, Count: len(matches)})
}

func (h *Handler) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	candidateID, err := pathCandidateID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	match, err := h.reviews.Get(r.Context(), candidateID)
	if err != nil {
		h.writeError(w, r, "get match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, match)
}

func (h *Handler) handleApproveMatch(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "approve match", h.reviews.Approve)
}

func (h *Handler) handleRejectMatch(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "reject match", h.reviews.Reject)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, op string, decide reviewFunc) {
	ctx := r.Context()
	candidateID, err := pathCandidateID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req ReasonRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	decision, err := decide(ctx, candidateID, requestcontext.Actor(ctx), req.Reason)
	if err != nil {
		h.writeError(w, r, op, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDecisionResponse(decision))
}
