package scoring

import (
	"math"
	"strings"
)

const (
	exactNameFloor   = 0.95
	exactNameBonus   = 0.10
	positionPenalty  = 0.8
	corroborateFloor = 0.8
	corroborateBonus = 0.05
)

// Scorer scores factors under a fixed policy.
type Scorer struct {
	policy Policy
}

// New creates a Scorer. Validate the policy first; New does not.
func New(policy Policy) *Scorer {
	return &Scorer{policy: policy}
}

// Policy returns the policy the scorer was built with.
func (s *Scorer) Policy() Policy {
	return s.policy
}

// WeightedScore is the weighted mean of the present factors, renormalized by
// the sum of the weights actually used.
func (s *Scorer) WeightedScore(f Factors) float64 {
	w := s.policy.Weights
	sum := f.NameSimilarity*w.Name +
		f.PositionMatch*w.Position +
		f.TeamContinuity*w.Team +
		f.StatSimilarity*w.Stats
	used := w.Name + w.Position + w.Team + w.Stats

	for _, opt := range []struct {
		v *float64
		w float64
	}{
		{f.DraftPosition, w.Draft},
		{f.Ownership, w.Ownership},
		{f.SeasonalPerformance, w.Seasonal},
	} {
		if opt.v == nil {
			continue
		}
		sum += clamp(*opt.v) * opt.w
		used += opt.w
	}
	if used <= 0 {
		return 0
	}
	return clamp(sum / used)
}

// Score applies, in order, the exact-name bonus, the incompatible-position
// penalty and the name-plus-stats corroboration bonus to WeightedScore.
func (s *Scorer) Score(f Factors) float64 {
	score := s.WeightedScore(f)
	if f.NameSimilarity >= exactNameFloor {
		score = math.Min(1, score+exactNameBonus)
	}
	if f.PositionMatch == 0 {
		score *= positionPenalty
	}
	if f.NameSimilarity >= corroborateFloor && f.StatSimilarity >= corroborateFloor {
		score = math.Min(1, score+corroborateBonus)
	}
	return clamp(score)
}

// DetermineAction maps a score onto the policy's action bands. Each band
// includes its lower bound.
func (s *Scorer) DetermineAction(score float64) Action {
	t := s.policy.Thresholds
	switch {
	case score >= t.AutoApproveHigh:
		return ActionAutoApproveHigh
	case score >= t.AutoApprove:
		return ActionAutoApprove
	case score >= t.Review:
		return ActionReview
	case score >= t.ReviewLow:
		return ActionReviewLow
	default:
		return ActionSkip
	}
}

var defenseUnits = map[string]bool{"D/ST": true, "DST": true, "DEF": true}
var flexEligible = map[string]bool{"RB": true, "WR": true, "TE": true}

// PositionCompatibility scores how plausibly two roster positions describe
// the same player.
func PositionCompatibility(p1, p2 string) float64 {
	a := strings.ToUpper(strings.TrimSpace(p1))
	b := strings.ToUpper(strings.TrimSpace(p2))
	switch {
	case a == "" || b == "":
		return 0
	case a == b:
		return 1
	case defenseUnits[a] && defenseUnits[b]:
		return 1
	case (a == "FLEX" && flexEligible[b]) || (b == "FLEX" && flexEligible[a]):
		return 0.8
	case flexEligible[a] && flexEligible[b]:
		return 0.3
	default:
		return 0
	}
}

// StatLine is the season summary compared by StatisticalSimilarity.
type StatLine struct {
	GamesPlayed   int
	PointsPerGame float64
}

// StatisticalSimilarity blends points-per-game agreement (0.7) with
// games-played agreement (0.3). Two empty seasons agree; one empty season
// against a played one does not.
func StatisticalSimilarity(s1, s2 StatLine) float64 {
	switch {
	case s1.GamesPlayed == 0 && s2.GamesPlayed == 0:
		return 1
	case s1.GamesPlayed == 0 || s2.GamesPlayed == 0:
		return 0
	}
	ppg := 1 - relativeDifference(s1.PointsPerGame, s2.PointsPerGame)
	games := 1 - relativeDifference(float64(s1.GamesPlayed), float64(s2.GamesPlayed))
	return clamp(ppg*0.7 + games*0.3)
}

func relativeDifference(a, b float64) float64 {
	a, b = math.Abs(a), math.Abs(b)
	hi := math.Max(a, b)
	if hi == 0 {
		return 0
	}
	return math.Abs(a-b) / hi
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
