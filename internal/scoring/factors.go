// Package scoring combines per-factor similarities into one match confidence.
//
// The scorer is a pure value: construct it once from a Policy and share it
// across goroutines.
package scoring

// Factors are the sub-scores of one pairwise comparison, each in [0,1].
// The four value fields are always present; pointer fields are optional and
// only contribute when set.
type Factors struct {
	NameSimilarity float64 `json:"name_similarity"`
	PositionMatch  float64 `json:"position_match"`
	TeamContinuity float64 `json:"team_continuity"`
	StatSimilarity float64 `json:"stat_similarity"`

	DraftPosition       *float64 `json:"draft_position,omitempty"`
	Ownership           *float64 `json:"ownership,omitempty"`
	SeasonalPerformance *float64 `json:"seasonal_performance,omitempty"`
}

// Float returns a pointer to v for the optional factor fields.
func Float(v float64) *float64 {
	return &v
}

// Action is the recommended handling of a scored pair.
type Action string

const (
	ActionAutoApproveHigh Action = "auto_approve_high"
	ActionAutoApprove     Action = "auto_approve"
	ActionReview          Action = "manual_review"
	ActionReviewLow       Action = "manual_review_low"
	ActionSkip            Action = "skip"
)

// IsAuto reports whether the pair is applied without review.
func (a Action) IsAuto() bool {
	return a == ActionAutoApproveHigh || a == ActionAutoApprove
}

// IsReview reports whether the pair goes to the review queue.
func (a Action) IsReview() bool {
	return a == ActionReview || a == ActionReviewLow
}

func (a Action) String() string {
	return string(a)
}
