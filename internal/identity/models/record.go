package models

import (
	"fmt"
	"strings"

	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
)

// Stats is a season summary for one record.
type Stats struct {
	GamesPlayed int     `json:"games_played"`
	TotalPoints float64 `json:"total_points"`
}

// PointsPerGame returns 0 for a season with no games.
func (s Stats) PointsPerGame() float64 {
	if s.GamesPlayed <= 0 {
		return 0
	}
	return s.TotalPoints / float64(s.GamesPlayed)
}

// RawRecord is one season-scoped snapshot of a player or team as delivered
// by ingestion. It is never modified after it arrives.
//
// Players carry Position and Team (the real-world affiliation). Teams carry
// OwnerName and LeagueID. DraftPick, OwnershipPct and PositionRank are
// optional and feed the optional scoring factors when both sides have them.
type RawRecord struct {
	Kind        id.EntityKind `json:"kind"`
	ExternalID  string        `json:"external_id"`
	Season      int           `json:"season"`
	DisplayName string        `json:"display_name"`

	Position  string `json:"position,omitempty"`
	Team      string `json:"team,omitempty"`
	OwnerName string `json:"owner_name,omitempty"`
	LeagueID  string `json:"league_id,omitempty"`

	Stats Stats `json:"stats"`

	DraftPick    *int     `json:"draft_pick,omitempty"`
	OwnershipPct *float64 `json:"ownership_pct,omitempty"`
	PositionRank *int     `json:"position_rank,omitempty"`
}

// Validate reports a CodeValidation error for a record that cannot be resolved.
func (r RawRecord) Validate() error {
	switch {
	case !r.Kind.IsValid():
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported kind %q", r.Kind))
	case strings.TrimSpace(r.ExternalID) == "":
		return dErrors.New(dErrors.CodeValidation, "external_id is required")
	case r.Season <= 0:
		return dErrors.New(dErrors.CodeValidation, "season is required")
	case strings.TrimSpace(r.DisplayName) == "":
		return dErrors.New(dErrors.CodeValidation, "display_name is required")
	case r.Stats.GamesPlayed < 0 || r.Stats.TotalPoints < 0:
		return dErrors.New(dErrors.CodeValidation, "stats must not be negative")
	case r.Kind == id.KindTeam && strings.TrimSpace(r.OwnerName) == "":
		return dErrors.New(dErrors.CodeValidation, "owner_name is required for team records")
	case r.DraftPick != nil && *r.DraftPick <= 0:
		return dErrors.New(dErrors.CodeValidation, "draft_pick must be positive")
	case r.OwnershipPct != nil && (*r.OwnershipPct < 0 || *r.OwnershipPct > 100):
		return dErrors.New(dErrors.CodeValidation, "ownership_pct must be within [0,100]")
	case r.PositionRank != nil && *r.PositionRank <= 0:
		return dErrors.New(dErrors.CodeValidation, "position_rank must be positive")
	}
	return nil
}

// Key identifies the record across the system.
func (r RawRecord) Key() RecordKey {
	return RecordKey{Kind: r.Kind, ExternalID: r.ExternalID, Season: r.Season}
}

// RecordKey is the (kind, external id, season) triple a mapping is unique on.
type RecordKey struct {
	Kind       id.EntityKind `json:"kind"`
	ExternalID string        `json:"external_id"`
	Season     int           `json:"season"`
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s|%s|%d", k.Kind, k.ExternalID, k.Season)
}

// PairKey is an order-independent key for two records.
func PairKey(a, b RecordKey) string {
	sa, sb := a.String(), b.String()
	if sb < sa {
		sa, sb = sb, sa
	}
	return sa + "~" + sb
}
