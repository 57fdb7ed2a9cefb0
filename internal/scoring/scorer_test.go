package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "rosterid/pkg/domain-errors"
)

type ScorerSuite struct {
	suite.Suite
	scorer *Scorer
}

func TestScorerSuite(t *testing.T) {
	suite.Run(t, new(ScorerSuite))
}

func (s *ScorerSuite) SetupTest() {
	s.scorer = New(DefaultPolicy())
}

func (s *ScorerSuite) TestScoreBounds() {
	s.Run("all factors at one", func() {
		f := Factors{
			NameSimilarity: 1, PositionMatch: 1, TeamContinuity: 1, StatSimilarity: 1,
			DraftPosition: Float(1), Ownership: Float(1), SeasonalPerformance: Float(1),
		}
		s.InDelta(1.0, s.scorer.Score(f), 1e-9)
	})

	s.Run("all factors at zero", func() {
		f := Factors{DraftPosition: Float(0), Ownership: Float(0), SeasonalPerformance: Float(0)}
		s.Equal(0.0, s.scorer.Score(f))
		s.Equal(0.0, s.scorer.Score(Factors{}))
	})
}

func (s *ScorerSuite) TestWeightedScoreRenormalizes() {
	s.Run("name alone over the required weights", func() {
		got := s.scorer.WeightedScore(Factors{NameSimilarity: 1})
		s.InDelta(0.35/0.85, got, 1e-9)
	})

	s.Run("absent optional factors do not penalize", func() {
		base := Factors{NameSimilarity: 0.9, PositionMatch: 1, TeamContinuity: 1, StatSimilarity: 0.9}
		withPerfectDraft := base
		withPerfectDraft.DraftPosition = Float(1)
		withWeakDraft := base
		withWeakDraft.DraftPosition = Float(0)

		s.Greater(s.scorer.WeightedScore(withPerfectDraft), s.scorer.WeightedScore(base))
		s.Less(s.scorer.WeightedScore(withWeakDraft), s.scorer.WeightedScore(base))
	})

	s.Run("seasonal performance adds weight outside the base set", func() {
		f := Factors{NameSimilarity: 1, SeasonalPerformance: Float(1)}
		s.InDelta((0.35+0.10)/(0.85+0.10), s.scorer.WeightedScore(f), 1e-9)
	})

	s.Run("optional values are clamped", func() {
		f := Factors{NameSimilarity: 1, PositionMatch: 1, TeamContinuity: 1, StatSimilarity: 1, Ownership: Float(7)}
		s.InDelta(1.0, s.scorer.WeightedScore(f), 1e-9)
	})
}

func (s *ScorerSuite) TestAdjustments() {
	s.Run("exact name bonus", func() {
		f := Factors{NameSimilarity: 0.95, PositionMatch: 1, TeamContinuity: 0, StatSimilarity: 0.5}
		base := s.scorer.WeightedScore(f)
		s.InDelta(base+0.1, s.scorer.Score(f), 1e-9)
	})

	s.Run("incompatible position penalty", func() {
		f := Factors{NameSimilarity: 0.7, PositionMatch: 0, TeamContinuity: 1, StatSimilarity: 0.5}
		base := s.scorer.WeightedScore(f)
		s.InDelta(base*0.8, s.scorer.Score(f), 1e-9)
	})

	s.Run("name and stats corroborate", func() {
		f := Factors{NameSimilarity: 0.8, PositionMatch: 1, TeamContinuity: 0.3, StatSimilarity: 0.8}
		base := s.scorer.WeightedScore(f)
		s.InDelta(base+0.05, s.scorer.Score(f), 1e-9)
	})

	s.Run("bonus applies after penalty", func() {
		f := Factors{NameSimilarity: 1, PositionMatch: 0, TeamContinuity: 1, StatSimilarity: 1}
		base := s.scorer.WeightedScore(f)
		want := (base+0.1)*0.8 + 0.05
		s.InDelta(want, s.scorer.Score(f), 1e-9)
	})
}

func (s *ScorerSuite) TestDetermineActionBoundaries() {
	tests := []struct {
		score float64
		want  Action
	}{
		{1.0, ActionAutoApproveHigh},
		{0.95, ActionAutoApproveHigh},
		{0.9499, ActionAutoApprove},
		{0.85, ActionAutoApprove},
		{0.8499, ActionReview},
		{0.70, ActionReview},
		{0.6999, ActionReviewLow},
		{0.50, ActionReviewLow},
		{0.4999, ActionSkip},
		{0, ActionSkip},
	}
	for _, tt := range tests {
		s.Equal(tt.want, s.scorer.DetermineAction(tt.score), "score %v", tt.score)
	}

	s.Run("non-decreasing", func() {
		rank := map[Action]int{ActionSkip: 0, ActionReviewLow: 1, ActionReview: 2, ActionAutoApprove: 3, ActionAutoApproveHigh: 4}
		prev := -1
		for i := 0; i <= 1000; i++ {
			r := rank[s.scorer.DetermineAction(float64(i)/1000)]
			s.GreaterOrEqual(r, prev)
			prev = r
		}
	})
}

func (s *ScorerSuite) TestScenarios() {
	s.Run("auto approve", func() {
		f := Factors{NameSimilarity: 0.9, PositionMatch: 1, TeamContinuity: 1, StatSimilarity: 0.85}
		score := s.scorer.Score(f)
		s.Greater(score, 0.85)
		s.True(s.scorer.DetermineAction(score).IsAuto())
	})

	s.Run("skip", func() {
		f := Factors{NameSimilarity: 0.45, PositionMatch: 1, TeamContinuity: 0, StatSimilarity: 0.3}
		score := s.scorer.Score(f)
		s.Less(score, 0.5)
		s.Equal(ActionSkip, s.scorer.DetermineAction(score))
	})
}

func TestPositionCompatibility(t *testing.T) {
	tests := []struct {
		p1, p2 string
		want   float64
	}{
		{"WR", "WR", 1},
		{"wr", "WR", 1},
		{"FLEX", "RB", 0.8},
		{"TE", "FLEX", 0.8},
		{"FLEX", "QB", 0},
		{"RB", "WR", 0.3},
		{"D/ST", "DEF", 1},
		{"DST", "D/ST", 1},
		{"QB", "K", 0},
		{"", "QB", 0},
		{"QB", "", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PositionCompatibility(tt.p1, tt.p2), "%s/%s", tt.p1, tt.p2)
	}
}

func TestStatisticalSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, StatisticalSimilarity(StatLine{}, StatLine{}))
	assert.Equal(t, 0.0, StatisticalSimilarity(StatLine{}, StatLine{GamesPlayed: 3, PointsPerGame: 10}))
	assert.Equal(t, 1.0, StatisticalSimilarity(
		StatLine{GamesPlayed: 16, PointsPerGame: 20},
		StatLine{GamesPlayed: 16, PointsPerGame: 20},
	))
	// ppg 10 vs 20 -> 0.5 * 0.7; games 8 vs 16 -> 0.5 * 0.3
	assert.InDelta(t, 0.5, StatisticalSimilarity(
		StatLine{GamesPlayed: 8, PointsPerGame: 10},
		StatLine{GamesPlayed: 16, PointsPerGame: 20},
	), 1e-9)
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.Weights.Stats = -0.1
	assert.True(t, dErrors.HasCode(p.Validate(), dErrors.CodeValidation))

	p = DefaultPolicy()
	p.Thresholds.Review = 0.9
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.Thresholds.AutoApproveHigh = 1.2
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.Weights = Weights{Draft: 1}
	assert.Error(t, p.Validate())
}

func TestExplain(t *testing.T) {
	s := New(DefaultPolicy())

	t.Run("strong match", func(t *testing.T) {
		f := Factors{NameSimilarity: 0.97, PositionMatch: 1, TeamContinuity: 1, StatSimilarity: 0.9}
		e := s.Explain(f, s.Score(f))
		assert.Equal(t, "Very High", e.Level)
		assert.Contains(t, e.Strengths, "Names are virtually identical")
		assert.Empty(t, e.Weaknesses)
		assert.Empty(t, e.Suggestions)
	})

	t.Run("weak match escalates suggestions", func(t *testing.T) {
		f := Factors{NameSimilarity: 0.3, PositionMatch: 0, TeamContinuity: 0, StatSimilarity: 0.1, Ownership: Float(0.1)}
		e := s.Explain(f, s.Score(f))
		assert.Equal(t, "Very Low", e.Level)
		assert.Contains(t, e.Weaknesses, "Names are significantly different")
		assert.Contains(t, e.Suggestions, "Check for nickname variations or suffixes")
		assert.Contains(t, e.Suggestions, "Verify trade history")
		assert.Contains(t, e.Suggestions, "Escalate to a league administrator before approving")
	})

	t.Run("trade in adjacent season", func(t *testing.T) {
		f := Factors{NameSimilarity: 0.9, PositionMatch: 1, TeamContinuity: 0.3, StatSimilarity: 0.85}
		e := s.Explain(f, 0.8)
		assert.Equal(t, "High", e.Level)
		assert.Equal(t, []string{"Different team in an adjacent season"}, e.Weaknesses)
		assert.Equal(t, []string{"Verify trade history"}, e.Suggestions)
	})
}

func TestLevelBands(t *testing.T) {
	assert.Equal(t, "Very High", Level(0.9))
	assert.Equal(t, "High", Level(0.75))
	assert.Equal(t, "Medium", Level(0.6))
	assert.Equal(t, "Low", Level(0.4))
	assert.Equal(t, "Very Low", Level(0.39))
}
