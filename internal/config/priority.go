package config

import (
	"fmt"

	"github.com/nicewolf/mstruct/internal/model"
)

// SourceWeights are the S term weights per spec §4.6 step 4.
type SourceWeights struct {
	H4      float64 `yaml:"h4"`
	H1      float64 `yaml:"h1"`
	Session float64 `yaml:"session"`
}

// DefaultSourceWeights returns the weights named explicitly in spec §4.6.
func DefaultSourceWeights() SourceWeights {
	return SourceWeights{H4: 3.0, H1: 2.0, Session: 1.0}
}

// RecencyHorizons bounds the age horizon used by the R term, per source. Age
// is measured in hours of wall-clock time since KeyLevel.Time, not in bars
// of the level's timeframe.
type RecencyHorizons struct {
	H4      float64 `yaml:"h4"`
	H1      float64 `yaml:"h1"`
	Session float64 `yaml:"session"`
}

// DefaultRecencyHorizons is a conservative default: session levels decay
// fastest (same-day relevance), H4 slowest.
func DefaultRecencyHorizons() RecencyHorizons {
	return RecencyHorizons{H4: 60, H1: 24, Session: 12}
}

// PriorityConfig parameterizes the Daily Bias Planner's (C6) scoring and
// banding pipeline.
type PriorityConfig struct {
	// Scoring weights applied to S, R, P, B in spec §4.6 step 4.
	WeightSource     float64 `yaml:"weight_source"`
	WeightRecency    float64 `yaml:"weight_recency"`
	WeightProximity  float64 `yaml:"weight_proximity"`
	WeightConfluence float64 `yaml:"weight_confluence"`

	SourceWeights   SourceWeights   `yaml:"source_weights"`
	RecencyHorizons RecencyHorizons `yaml:"recency_horizons"`

	ProximityLambda float64 `yaml:"proximity_lambda"` // lambda in P = exp(-lambda*ticksAway)

	PriceMergeTicks   float64 `yaml:"price_merge_ticks"`   // banding: merge gaps <= this*tickSize
	MaxBandWidthTicks float64 `yaml:"max_band_width_ticks"` // banding: split if band wider than this*tickSize

	MaxLevelsPerSource int `yaml:"max_levels_per_source"` // cap per source before split/banding, 0 = unbounded
	MaxTargetsPerSide  int `yaml:"max_targets_per_side"`

	// Version stamped into Plan.Rules for the audit trail (spec §4.6).
	PlannerVersion string `yaml:"planner_version"`
}

// DefaultPriorityConfig returns the teacher-style conservative default used
// throughout tests and the demo CLI. Weights are intentionally left
// unnormalized — see DESIGN.md's resolution of Open Question 2.
func DefaultPriorityConfig() PriorityConfig {
	return PriorityConfig{
		WeightSource:       0.4,
		WeightRecency:      0.2,
		WeightProximity:    0.3,
		WeightConfluence:   0.1,
		SourceWeights:      DefaultSourceWeights(),
		RecencyHorizons:    DefaultRecencyHorizons(),
		ProximityLambda:    0.05,
		PriceMergeTicks:    4,
		MaxBandWidthTicks:  12,
		MaxLevelsPerSource: 0,
		MaxTargetsPerSide:  5,
		PlannerVersion:     "bias-planner/1",
	}
}

// Validate rejects negative weights/config (ErrInvalidConfig) per spec §7.
// Weights are not required to sum to 1.0 — see DESIGN.md.
func (c PriorityConfig) Validate() error {
	negatives := map[string]float64{
		"weight_source":         c.WeightSource,
		"weight_recency":        c.WeightRecency,
		"weight_proximity":      c.WeightProximity,
		"weight_confluence":     c.WeightConfluence,
		"source_weights.h4":     c.SourceWeights.H4,
		"source_weights.h1":     c.SourceWeights.H1,
		"source_weights.session": c.SourceWeights.Session,
		"proximity_lambda":      c.ProximityLambda,
		"price_merge_ticks":     c.PriceMergeTicks,
		"max_band_width_ticks":  c.MaxBandWidthTicks,
	}
	for name, v := range negatives {
		if v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", model.ErrInvalidConfig, name, v)
		}
	}
	if c.RecencyHorizons.H4 <= 0 || c.RecencyHorizons.H1 <= 0 || c.RecencyHorizons.Session <= 0 {
		return fmt.Errorf("%w: recency horizons must be positive", model.ErrInvalidConfig)
	}
	if c.MaxLevelsPerSource < 0 {
		return fmt.Errorf("%w: max_levels_per_source must be >= 0", model.ErrInvalidConfig)
	}
	if c.MaxTargetsPerSide < 1 {
		return fmt.Errorf("%w: max_targets_per_side must be >= 1, got %d", model.ErrInvalidConfig, c.MaxTargetsPerSide)
	}
	return nil
}
