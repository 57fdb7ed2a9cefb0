package httptransport

import (
	"log/slog"
	"net/http"

	dErrors "rosterid/pkg/domain-errors"
	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/platform/httputil"
	"rosterid/pkg/requestcontext"
)

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	filter, err := auditFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.audits.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, "list audit entries", dErrors.Wrap(err, dErrors.CodeInternal, "audit store failure"))
		return
	}
	resp := AuditListResponse{Entries: make([]AuditEntryResponse, 0, len(entries)), Count: len(entries)}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toAuditEntryResponse(e))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAuditStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	days, err := queryInt(r, "days", defaultStatDays, 1, maxStatDays)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	summary, err := audit.Stats(ctx, h.audits, days, requestcontext.Now(ctx))
	if err != nil {
		h.writeError(w, r, "audit stats", dErrors.Wrap(err, dErrors.CodeInternal, "audit store failure"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleRollback(w http.ResponseWriter, r *http.Request) {
	auditID, err := pathAuditID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req ReasonRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	entry, err := h.identities.Rollback(r.Context(), auditID, req.Reason)
	if err != nil {
		h.writeError(w, r, "rollback", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toAuditEntryResponse(*entry))
}

// writeError logs failures the caller cannot fix and writes the mapped
// response.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, op+" failed",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"performed_by", requestcontext.Actor(ctx),
	)
	httputil.WriteError(w, err)
}
