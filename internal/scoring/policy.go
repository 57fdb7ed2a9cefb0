package scoring

import (
	"fmt"

	dErrors "rosterid/pkg/domain-errors"
)

// Weights are the relative importance of each factor. Optional factors only
// count when present on the Factors being scored.
type Weights struct {
	Name      float64 `json:"name"`
	Position  float64 `json:"position"`
	Team      float64 `json:"team"`
	Stats     float64 `json:"stats"`
	Draft     float64 `json:"draft"`
	Ownership float64 `json:"ownership"`
	Seasonal  float64 `json:"seasonal"`
}

// Thresholds are the inclusive lower bounds of each action band.
type Thresholds struct {
	AutoApproveHigh float64 `json:"auto_approve_high"`
	AutoApprove     float64 `json:"auto_approve"`
	Review          float64 `json:"manual_review"`
	ReviewLow       float64 `json:"manual_review_low"`
}

// Policy is the tunable part of the scorer.
type Policy struct {
	Weights    Weights    `json:"weights"`
	Thresholds Thresholds `json:"thresholds"`
}

// DefaultPolicy returns the stock weights and action bands.
func DefaultPolicy() Policy {
	return Policy{
		Weights: Weights{
			Name:      0.35,
			Position:  0.15,
			Team:      0.15,
			Stats:     0.20,
			Draft:     0.10,
			Ownership: 0.05,
			Seasonal:  0.10,
		},
		Thresholds: Thresholds{
			AutoApproveHigh: 0.95,
			AutoApprove:     0.85,
			Review:          0.70,
			ReviewLow:       0.50,
		},
	}
}

// Validate rejects negative weights, an all-zero required weight set and
// action bands that are out of range or out of order.
func (p Policy) Validate() error {
	w := p.Weights
	for name, v := range map[string]float64{
		"name": w.Name, "position": w.Position, "team": w.Team, "stats": w.Stats,
		"draft": w.Draft, "ownership": w.Ownership, "seasonal": w.Seasonal,
	} {
		if v < 0 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("weight %s must not be negative", name))
		}
	}
	if w.Name+w.Position+w.Team+w.Stats <= 0 {
		return dErrors.New(dErrors.CodeValidation, "required factor weights must sum above zero")
	}

	t := p.Thresholds
	bands := []float64{t.AutoApproveHigh, t.AutoApprove, t.Review, t.ReviewLow}
	for i, v := range bands {
		if v < 0 || v > 1 {
			return dErrors.New(dErrors.CodeValidation, "action thresholds must be within [0,1]")
		}
		if i > 0 && bands[i-1] < v {
			return dErrors.New(dErrors.CodeValidation, "action thresholds must be non-increasing from auto_approve_high to manual_review_low")
		}
	}
	return nil
}
