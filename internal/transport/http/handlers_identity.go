package httptransport

import (
	"net/http"
	"strings"

	"rosterid/internal/identity/models"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	"rosterid/pkg/platform/httputil"
)

// handleLookupMappings resolves one season when season is given and lists
// every season of the external id otherwise.
func (h *Handler) handleLookupMappings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, err := queryKind(r, true)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	externalID := strings.TrimSpace(r.URL.Query().Get("external_id"))
	if externalID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "external_id is required"))
		return
	}
	season, err := queryInt(r, "season", 0, 1, 9999)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if season > 0 {
		view, err := h.identities.LookupMapping(ctx, kind, externalID, season)
		if err != nil {
			h.writeError(w, r, "lookup mapping", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, view)
		return
	}

	mappings, err := h.identities.LookupExternalID(ctx, kind, externalID)
	if err != nil {
		h.writeError(w, r, "lookup external id", err)
		return
	}
	if mappings == nil {
		mappings = []*models.IdentityMapping{}
	}
	httputil.WriteJSON(w, http.StatusOK, MappingListResponse{Mappings: mappings, Count: len(mappings)})
}

func (h *Handler) handleGetIdentity(w http.ResponseWriter, r *http.Request) {
	identityID, err := pathIdentityID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view, err := h.identities.GetIdentity(r.Context(), identityID)
	if err != nil {
		h.writeError(w, r, "get identity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleMerge(w http.ResponseWriter, r *http.Request) {
	primaryID, err := pathIdentityID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req MergeRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.SecondaryID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "secondary_id is required"))
		return
	}
	secondaryID, err := id.ParseIdentityID(req.SecondaryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	merged, err := h.identities.Merge(r.Context(), primaryID, secondaryID, req.Reason)
	if err != nil {
		h.writeError(w, r, "merge identities", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, merged)
}

func (h *Handler) handleSplit(w http.ResponseWriter, r *http.Request) {
	identityID, err := pathIdentityID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req SplitRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	mappingIDs, err := req.mappingIDs()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.identities.Split(r.Context(), identityID, mappingIDs, req.Reason)
	if err != nil {
		h.writeError(w, r, "split identity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSplitResponse(res))
}
