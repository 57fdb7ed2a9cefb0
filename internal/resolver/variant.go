package resolver

import (
	"math"
	"strings"

	"rosterid/internal/identity/models"
	"rosterid/internal/scoring"
	"rosterid/internal/similarity"
	id "rosterid/pkg/domain"
)

// Variant is the per-kind part of resolution: how records are blocked and
// which factors a pair of records produces.
type Variant interface {
	Kind() id.EntityKind
	BlockingKeys(r models.RawRecord) []string
	Factors(a, b models.RawRecord) scoring.Factors
}

// rankSpan is the distance in draft or rank slots at which agreement reaches 0.
const rankSpan = 24

// tradeContinuity scores differing affiliations in adjacent seasons.
const tradeContinuity = 0.3

type playerVariant struct{}

func (playerVariant) Kind() id.EntityKind { return id.KindPlayer }

// BlockingKeys returns first initial + surname prefix and first initial +
// surname phonetic code, after nickname and suffix canonicalisation.
// "Pat Mahomes II" and "Patrick Mahomes" share both keys.
func (playerVariant) BlockingKeys(r models.RawRecord) []string {
	tokens := strings.Fields(similarity.Canonical(r.DisplayName))
	if len(tokens) == 0 {
		return nil
	}
	surname := tokens[len(tokens)-1]
	if len(tokens) == 1 {
		return []string{"p:" + prefix(surname, 3)}
	}
	initial := prefix(tokens[0], 1)
	keys := []string{"p:" + initial + ":" + prefix(surname, 3)}
	if code := similarity.Metaphone(surname); code != "" {
		keys = append(keys, "p:"+initial+":~"+code)
	}
	return keys
}

func (playerVariant) Factors(a, b models.RawRecord) scoring.Factors {
	f := scoring.Factors{
		NameSimilarity: similarity.Similarity(a.DisplayName, b.DisplayName),
		PositionMatch:  scoring.PositionCompatibility(a.Position, b.Position),
		TeamContinuity: continuity(a.Team, b.Team, a.Season, b.Season),
		StatSimilarity: statSimilarity(a, b),
	}
	if a.DraftPick != nil && b.DraftPick != nil {
		f.DraftPosition = scoring.Float(rankAgreement(*a.DraftPick, *b.DraftPick))
	}
	if a.OwnershipPct != nil && b.OwnershipPct != nil {
		f.Ownership = scoring.Float(1 - math.Abs(*a.OwnershipPct-*b.OwnershipPct)/100)
	}
	if a.PositionRank != nil && b.PositionRank != nil {
		f.SeasonalPerformance = scoring.Float(rankAgreement(*a.PositionRank, *b.PositionRank))
	}
	return f
}

// teamVariant blocks teams by league. The position factor carries league
// agreement and team continuity carries owner continuity, so a pair from
// different leagues is penalized the way incompatible positions are.
type teamVariant struct{}

func (teamVariant) Kind() id.EntityKind { return id.KindTeam }

func (teamVariant) BlockingKeys(r models.RawRecord) []string {
	if league := strings.TrimSpace(r.LeagueID); league != "" {
		return []string{"t:" + league}
	}
	return []string{"t:-:" + prefix(similarity.Normalize(r.DisplayName), 3)}
}

func (teamVariant) Factors(a, b models.RawRecord) scoring.Factors {
	f := scoring.Factors{
		NameSimilarity: similarity.Similarity(a.DisplayName, b.DisplayName),
		TeamContinuity: continuity(a.OwnerName, b.OwnerName, a.Season, b.Season),
		StatSimilarity: statSimilarity(a, b),
		Ownership:      scoring.Float(similarity.Similarity(a.OwnerName, b.OwnerName)),
	}
	if a.LeagueID != "" && a.LeagueID == b.LeagueID {
		f.PositionMatch = 1
	}
	return f
}

// continuity is 1 for the same affiliation, tradeContinuity for a change
// between adjacent seasons and 0 otherwise.
func continuity(a, b string, seasonA, seasonB int) float64 {
	na, nb := similarity.Normalize(a), similarity.Normalize(b)
	switch {
	case na == "" || nb == "":
		return 0
	case na == nb:
		return 1
	case abs(seasonA-seasonB) == 1:
		return tradeContinuity
	default:
		return 0
	}
}

func statSimilarity(a, b models.RawRecord) float64 {
	return scoring.StatisticalSimilarity(
		scoring.StatLine{GamesPlayed: a.Stats.GamesPlayed, PointsPerGame: a.Stats.PointsPerGame()},
		scoring.StatLine{GamesPlayed: b.Stats.GamesPlayed, PointsPerGame: b.Stats.PointsPerGame()},
	)
}

func rankAgreement(a, b int) float64 {
	return math.Max(0, 1-float64(abs(a-b))/rankSpan)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func variantFor(kind id.EntityKind) Variant {
	if kind == id.KindTeam {
		return teamVariant{}
	}
	return playerVariant{}
}
