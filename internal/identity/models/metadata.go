package models

import (
	"strings"

	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	pkgstrings "rosterid/pkg/platform/strings"
)

// MetadataSchemaVersion is the current layout of Metadata.
const MetadataSchemaVersion = 1

// Metadata is the structured, versioned payload of a MasterIdentity.
// Exactly one of Player or Team is set, matching the identity's kind.
type Metadata struct {
	SchemaVersion int             `json:"schema_version"`
	Player        *PlayerMetadata `json:"player,omitempty"`
	Team          *TeamMetadata   `json:"team,omitempty"`
}

type PlayerMetadata struct {
	AlternateNames []string `json:"alternate_names,omitempty"`
	Positions      []string `json:"positions,omitempty"`
	Teams          []string `json:"teams,omitempty"`
}

type TeamMetadata struct {
	AlternateNames []string       `json:"alternate_names,omitempty"`
	LeagueID       string         `json:"league_id,omitempty"`
	OwnerHistory   []OwnerSegment `json:"owner_history,omitempty"`
}

// MetadataFromRecord seeds metadata for a new identity.
func MetadataFromRecord(r RawRecord) Metadata {
	m := Metadata{SchemaVersion: MetadataSchemaVersion}
	switch r.Kind {
	case id.KindTeam:
		m.Team = &TeamMetadata{LeagueID: r.LeagueID}
		if owner := strings.TrimSpace(r.OwnerName); owner != "" {
			m.Team.OwnerHistory = ExtendOwnerHistory(nil, owner, r.Season)
		}
	default:
		m.Player = &PlayerMetadata{
			Positions: pkgstrings.DedupeAndTrim([]string{r.Position}),
			Teams:     pkgstrings.DedupeAndTrim([]string{r.Team}),
		}
	}
	return m
}

// Kind reports which payload is set.
func (m Metadata) Kind() id.EntityKind {
	if m.Team != nil {
		return id.KindTeam
	}
	return id.KindPlayer
}

// Validate checks the schema version and payload shape.
func (m Metadata) Validate() error {
	if m.SchemaVersion != MetadataSchemaVersion {
		return dErrors.New(dErrors.CodeInvariantViolation, "unsupported metadata schema version")
	}
	if (m.Player == nil) == (m.Team == nil) {
		return dErrors.New(dErrors.CodeInvariantViolation, "metadata must carry exactly one of player or team")
	}
	if m.Team != nil {
		return ValidateOwnerHistory(m.Team.OwnerHistory)
	}
	return nil
}

// Clone returns a deep copy.
func (m Metadata) Clone() Metadata {
	out := Metadata{SchemaVersion: m.SchemaVersion}
	if m.Player != nil {
		out.Player = &PlayerMetadata{
			AlternateNames: append([]string(nil), m.Player.AlternateNames...),
			Positions:      append([]string(nil), m.Player.Positions...),
			Teams:          append([]string(nil), m.Player.Teams...),
		}
	}
	if m.Team != nil {
		out.Team = &TeamMetadata{
			AlternateNames: append([]string(nil), m.Team.AlternateNames...),
			LeagueID:       m.Team.LeagueID,
			OwnerHistory:   MergeOwnerHistory(m.Team.OwnerHistory, nil),
		}
	}
	return out
}

// AddAlternateName records name unless it matches canonical or is known.
func (m *Metadata) AddAlternateName(name, canonical string) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, strings.TrimSpace(canonical)) {
		return
	}
	switch {
	case m.Player != nil:
		m.Player.AlternateNames = pkgstrings.UnionFold(m.Player.AlternateNames, []string{name})
	case m.Team != nil:
		m.Team.AlternateNames = pkgstrings.UnionFold(m.Team.AlternateNames, []string{name})
	}
}

// MergeMetadata unions secondary into primary. Primary values keep their
// order and spelling. Owner histories are interleaved and coalesced.
func MergeMetadata(primary, secondary Metadata) (Metadata, error) {
	if primary.Kind() != secondary.Kind() {
		return Metadata{}, dErrors.New(dErrors.CodeInvariantViolation, "cannot merge player and team metadata")
	}
	out := primary.Clone()
	if out.SchemaVersion == 0 {
		out.SchemaVersion = MetadataSchemaVersion
	}
	switch {
	case out.Player != nil && secondary.Player != nil:
		out.Player.AlternateNames = pkgstrings.UnionFold(out.Player.AlternateNames, secondary.Player.AlternateNames)
		out.Player.Positions = pkgstrings.UnionFold(out.Player.Positions, secondary.Player.Positions)
		out.Player.Teams = pkgstrings.UnionFold(out.Player.Teams, secondary.Player.Teams)
	case out.Team != nil && secondary.Team != nil:
		out.Team.AlternateNames = pkgstrings.UnionFold(out.Team.AlternateNames, secondary.Team.AlternateNames)
		if out.Team.LeagueID == "" {
			out.Team.LeagueID = secondary.Team.LeagueID
		}
		out.Team.OwnerHistory = MergeOwnerHistory(out.Team.OwnerHistory, secondary.Team.OwnerHistory)
	}
	return out, nil
}
