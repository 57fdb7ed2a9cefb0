package scoring

// Explanation is a human-readable account of a score for reviewers.
type Explanation struct {
	Score       float64  `json:"score"`
	Level       string   `json:"level"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
	Suggestions []string `json:"suggestions"`
}

// Level returns the qualitative label for a score.
func Level(score float64) string {
	switch {
	case score >= 0.9:
		return "Very High"
	case score >= 0.75:
		return "High"
	case score >= 0.6:
		return "Medium"
	case score >= 0.4:
		return "Low"
	default:
		return "Very Low"
	}
}

// Explain describes which factors support or undermine a match and what a
// reviewer should check. Suggestions grow with the number of weaknesses.
func (s *Scorer) Explain(f Factors, score float64) Explanation {
	e := Explanation{
		Score:       score,
		Level:       Level(score),
		Strengths:   []string{},
		Weaknesses:  []string{},
		Suggestions: []string{},
	}
	suggest := func(msg string) {
		for _, existing := range e.Suggestions {
			if existing == msg {
				return
			}
		}
		e.Suggestions = append(e.Suggestions, msg)
	}

	switch n := f.NameSimilarity; {
	case n >= 0.95:
		e.Strengths = append(e.Strengths, "Names are virtually identical")
	case n >= 0.85:
		e.Strengths = append(e.Strengths, "Names are very similar")
	case n >= 0.7:
		e.Strengths = append(e.Strengths, "Names are similar")
	case n >= 0.5:
		e.Weaknesses = append(e.Weaknesses, "Names differ noticeably")
		suggest("Check for nickname variations or suffixes")
	default:
		e.Weaknesses = append(e.Weaknesses, "Names are significantly different")
		suggest("Check for nickname variations or suffixes")
	}

	switch p := f.PositionMatch; {
	case p >= 1:
		e.Strengths = append(e.Strengths, "Same position")
	case p >= 0.8:
		e.Strengths = append(e.Strengths, "Compatible positions")
	case p > 0:
		e.Weaknesses = append(e.Weaknesses, "Positions only partially compatible")
		suggest("Confirm the position change with roster history")
	default:
		e.Weaknesses = append(e.Weaknesses, "Positions are incompatible")
		suggest("Confirm the position change with roster history")
	}

	switch t := f.TeamContinuity; {
	case t >= 1:
		e.Strengths = append(e.Strengths, "Same team affiliation")
	case t > 0:
		e.Weaknesses = append(e.Weaknesses, "Different team in an adjacent season")
		suggest("Verify trade history")
	default:
		e.Weaknesses = append(e.Weaknesses, "No team continuity")
		suggest("Verify trade history")
	}

	switch st := f.StatSimilarity; {
	case st >= 0.8:
		e.Strengths = append(e.Strengths, "Statistical profiles align")
	case st < 0.4:
		e.Weaknesses = append(e.Weaknesses, "Statistical profiles diverge")
		suggest("Compare game logs for injury-shortened seasons")
	}

	if f.DraftPosition != nil {
		switch d := *f.DraftPosition; {
		case d >= 0.8:
			e.Strengths = append(e.Strengths, "Draft position is consistent")
		case d < 0.4:
			e.Weaknesses = append(e.Weaknesses, "Draft position differs widely")
			suggest("Check draft records for both seasons")
		}
	}
	if f.Ownership != nil {
		switch o := *f.Ownership; {
		case o >= 0.8:
			e.Strengths = append(e.Strengths, "Ownership is consistent")
		case o < 0.4:
			e.Weaknesses = append(e.Weaknesses, "Ownership differs")
			suggest("Confirm any ownership transfer with league records")
		}
	}
	if f.SeasonalPerformance != nil && *f.SeasonalPerformance < 0.4 {
		e.Weaknesses = append(e.Weaknesses, "Season-over-season performance is inconsistent")
	}

	if len(e.Weaknesses) >= 2 {
		suggest("Compare the full season records side by side")
	}
	if len(e.Weaknesses) >= 3 {
		suggest("Escalate to a league administrator before approving")
	}
	return e
}
