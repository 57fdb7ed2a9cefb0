package httptransport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rosterid/internal/identity/models"
	reviewstore "rosterid/internal/review/store"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	audit "rosterid/pkg/platform/audit"
)

const (
	maxBodyBytes    = 1 << 20
	defaultLimit    = 50
	maxLimit        = 500
	defaultStatDays = 7
	maxStatDays     = 365
)

// ReasonRequest carries the free-text reason recorded on audit entries.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

type MergeRequest struct {
	SecondaryID string `json:"secondary_id"`
	Reason      string `json:"reason"`
}

type SplitRequest struct {
	MappingIDs []string `json:"mapping_ids"`
	Reason     string   `json:"reason"`
}

// decodeJSON reads an optional JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid json body")
	}
	return nil
}

func pathCandidateID(r *http.Request) (id.CandidateID, error) {
	return id.ParseCandidateID(chi.URLParam(r, "id"))
}

func pathIdentityID(r *http.Request) (id.IdentityID, error) {
	return id.ParseIdentityID(chi.URLParam(r, "id"))
}

func pathAuditID(r *http.Request) (id.AuditID, error) {
	return id.ParseAuditID(chi.URLParam(r, "id"))
}

func (req SplitRequest) mappingIDs() ([]id.MappingID, error) {
	if len(req.MappingIDs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "mapping_ids is required")
	}
	out := make([]id.MappingID, 0, len(req.MappingIDs))
	for _, raw := range req.MappingIDs {
		mappingID, err := id.ParseMappingID(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, mappingID)
	}
	return out, nil
}

func queryInt(r *http.Request, name string, fallback, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be an integer between %d and %d", name, lo, hi)
	}
	return n, nil
}

func queryKind(r *http.Request, required bool) (id.EntityKind, error) {
	raw := r.URL.Query().Get("kind")
	if raw == "" && !required {
		return "", nil
	}
	kind, err := id.ParseEntityKind(raw)
	if err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "kind must be player or team")
	}
	return kind, nil
}

func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.Newf(dErrors.CodeValidation, "%s must be an RFC 3339 timestamp", name)
	}
	return t, nil
}

func matchFilter(r *http.Request) (reviewstore.Filter, error) {
	kind, err := queryKind(r, false)
	if err != nil {
		return reviewstore.Filter{}, err
	}
	status := models.CandidateStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.CandidateStatusPending
	}
	switch status {
	case models.CandidateStatusPending, models.CandidateStatusApproved, models.CandidateStatusRejected:
	default:
		return reviewstore.Filter{}, dErrors.New(dErrors.CodeValidation, "status must be pending, approved or rejected")
	}
	limit, err := queryInt(r, "limit", defaultLimit, 1, maxLimit)
	if err != nil {
		return reviewstore.Filter{}, err
	}
	return reviewstore.Filter{Kind: kind, Status: status, Limit: limit}, nil
}

func auditFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	f := audit.Filter{
		EntityType:  audit.EntityType(q.Get("entity_type")),
		EntityID:    q.Get("entity_id"),
		PerformedBy: q.Get("performed_by"),
		GroupID:     q.Get("group_id"),
		Action:      audit.Action(strings.ToUpper(q.Get("action"))),
	}
	if f.EntityType != "" && !f.EntityType.IsValid() {
		return audit.Filter{}, dErrors.New(dErrors.CodeValidation, "unknown entity_type")
	}
	if f.Action != "" && !f.Action.IsValid() {
		return audit.Filter{}, dErrors.New(dErrors.CodeValidation, "unknown action")
	}
	var err error
	if f.Since, err = queryTime(r, "since"); err != nil {
		return audit.Filter{}, err
	}
	if f.Until, err = queryTime(r, "until"); err != nil {
		return audit.Filter{}, err
	}
	if f.Limit, err = queryInt(r, "limit", defaultLimit, 1, maxLimit); err != nil {
		return audit.Filter{}, err
	}
	return f, nil
}
