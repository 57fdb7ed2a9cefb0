package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rosterid/internal/scoring"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
)

func playerRecord(ext string, season int, name string) RawRecord {
	return RawRecord{
		Kind:        id.KindPlayer,
		ExternalID:  ext,
		Season:      season,
		DisplayName: name,
		Position:    "QB",
		Team:        "KC",
		Stats:       Stats{GamesPlayed: 16, TotalPoints: 320},
	}
}

func TestRawRecordValidate(t *testing.T) {
	valid := playerRecord("p1", 2021, "Patrick Mahomes")
	require.NoError(t, valid.Validate())

	neg := -1
	tests := []struct {
		name   string
		mutate func(r *RawRecord)
	}{
		{"missing kind", func(r *RawRecord) { r.Kind = "" }},
		{"missing external id", func(r *RawRecord) { r.ExternalID = " " }},
		{"missing season", func(r *RawRecord) { r.Season = 0 }},
		{"missing name", func(r *RawRecord) { r.DisplayName = "" }},
		{"negative games", func(r *RawRecord) { r.Stats.GamesPlayed = -2 }},
		{"team without owner", func(r *RawRecord) { r.Kind = id.KindTeam; r.OwnerName = "" }},
		{"non-positive draft pick", func(r *RawRecord) { r.DraftPick = &neg }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestPairKeyIsOrderIndependent(t *testing.T) {
	a := playerRecord("p1", 2021, "A").Key()
	b := playerRecord("p9", 2022, "B").Key()
	assert.Equal(t, PairKey(a, b), PairKey(b, a))
	assert.Equal(t, "player|p1|2021", a.String())
}

func TestStatsPointsPerGame(t *testing.T) {
	assert.Equal(t, 20.0, Stats{GamesPlayed: 16, TotalPoints: 320}.PointsPerGame())
	assert.Equal(t, 0.0, Stats{}.PointsPerGame())
}

func TestMergeMetadata(t *testing.T) {
	t.Run("player union keeps primary first", func(t *testing.T) {
		p := MetadataFromRecord(playerRecord("p1", 2020, "Mike Williams"))
		p.AddAlternateName("Mike Williams Jr", "Mike Williams")
		s := Metadata{SchemaVersion: MetadataSchemaVersion, Player: &PlayerMetadata{
			AlternateNames: []string{"mike williams jr", "M. Williams"},
			Positions:      []string{"WR"},
			Teams:          []string{"LAC", "kc"},
		}}

		got, err := MergeMetadata(p, s)
		require.NoError(t, err)
		assert.Equal(t, []string{"Mike Williams Jr", "M. Williams"}, got.Player.AlternateNames)
		assert.Equal(t, []string{"QB", "WR"}, got.Player.Positions)
		assert.Equal(t, []string{"KC", "LAC"}, got.Player.Teams)
		assert.Equal(t, []string{"QB"}, p.Player.Positions, "primary untouched")
	})

	t.Run("team histories interleave", func(t *testing.T) {
		a := Metadata{SchemaVersion: MetadataSchemaVersion, Team: &TeamMetadata{
			LeagueID:     "L1",
			OwnerHistory: []OwnerSegment{{Owner: "Alice", StartSeason: 2018, EndSeason: season(2019)}},
		}}
		b := Metadata{SchemaVersion: MetadataSchemaVersion, Team: &TeamMetadata{
			OwnerHistory: []OwnerSegment{{Owner: "Bob", StartSeason: 2020}},
		}}
		got, err := MergeMetadata(a, b)
		require.NoError(t, err)
		assert.Equal(t, "L1", got.Team.LeagueID)
		assert.Len(t, got.Team.OwnerHistory, 2)
		require.NoError(t, got.Validate())
	})

	t.Run("cross-kind merge refused", func(t *testing.T) {
		p := MetadataFromRecord(playerRecord("p1", 2020, "Mike Williams"))
		team := Metadata{SchemaVersion: MetadataSchemaVersion, Team: &TeamMetadata{}}
		_, err := MergeMetadata(p, team)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestMetadataValidate(t *testing.T) {
	assert.Error(t, Metadata{}.Validate())
	assert.Error(t, Metadata{SchemaVersion: 1}.Validate())
	assert.Error(t, Metadata{SchemaVersion: 1, Player: &PlayerMetadata{}, Team: &TeamMetadata{}}.Validate())
	assert.NoError(t, Metadata{SchemaVersion: 1, Player: &PlayerMetadata{}}.Validate())
}

func TestMasterIdentityLifecycle(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	team := RawRecord{Kind: id.KindTeam, ExternalID: "t1", Season: 2022, DisplayName: "Gridiron Gang", OwnerName: "Alice", LeagueID: "L1"}

	m, err := NewMasterIdentity(id.NewIdentityID(), team, 0.9, now)
	require.NoError(t, err)
	assert.Equal(t, id.KindTeam, m.Metadata.Kind())
	assert.Equal(t, []OwnerSegment{{Owner: "Alice", StartSeason: 2022}}, m.Metadata.Team.OwnerHistory)
	assert.Equal(t, int64(1), m.Version)

	clone := m.Clone()
	require.NoError(t, m.Rename("The Gridiron Gang", 1, now))
	assert.Equal(t, "Gridiron Gang", clone.CanonicalName)
	assert.Equal(t, []string{"Gridiron Gang"}, m.Metadata.Team.AlternateNames)

	require.NoError(t, m.MarkDeleted(now))
	assert.True(t, dErrors.HasCode(m.MarkDeleted(now), dErrors.CodeInvariantViolation))
	m.Restore(now)
	assert.True(t, m.IsActive())
	assert.Nil(t, m.DeletedAt)

	_, err = NewMasterIdentity(id.NewIdentityID(), RawRecord{Kind: id.KindPlayer}, 1, now)
	assert.Error(t, err)
}

func TestMatchCandidate(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	later := playerRecord("p2", 2022, "Pat Mahomes")
	earlier := playerRecord("p1", 2021, "Patrick Mahomes")

	c := NewMatchCandidate(later, earlier, scoring.Factors{NameSimilarity: 0.7}, 0.72, scoring.ActionReview, []string{"Names are similar"}, now, 7*24*time.Hour)
	again := NewMatchCandidate(earlier, later, scoring.Factors{}, 0.1, scoring.ActionReview, nil, now, time.Hour)

	assert.Equal(t, c.ID, again.ID)
	assert.Equal(t, "p1", c.Left.ExternalID)
	assert.True(t, c.IsPending())
	assert.False(t, c.IsExpired(now.Add(6*24*time.Hour)))
	assert.True(t, c.IsExpired(now.Add(7*24*time.Hour)))

	require.NoError(t, c.CanReview())
	c.ApplyReview(CandidateStatusRejected, "ops", "different players", now)
	assert.True(t, dErrors.HasCode(c.CanReview(), dErrors.CodeInvariantViolation))
	c.Reopen()
	assert.True(t, c.IsPending())
	assert.Empty(t, c.ReviewedBy)
}

func TestNewIdentityMapping(t *testing.T) {
	now := time.Now()
	r := playerRecord("p1", 2021, "Patrick Mahomes")

	m, err := NewIdentityMapping(id.NewMappingID(), id.NewIdentityID(), r, 0.93, MethodFuzzy, now)
	require.NoError(t, err)
	assert.Equal(t, r.Key(), m.Record)

	_, err = NewIdentityMapping(id.NewMappingID(), id.IdentityID{}, r, 0.9, MethodFuzzy, now)
	assert.Error(t, err)
	_, err = NewIdentityMapping(id.NewMappingID(), id.NewIdentityID(), r, 1.5, MethodFuzzy, now)
	assert.Error(t, err)
	_, err = NewIdentityMapping(id.NewMappingID(), id.NewIdentityID(), r, 0.5, "guess", now)
	assert.Error(t, err)
}
