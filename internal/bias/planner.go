// Package bias implements C6, the Daily Bias Planner: a deterministic
// six-phase pipeline that turns a pool of key levels into a ranked, capped
// plan of upside/downside targets.
package bias

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/model"
)

// BuildPlan runs the full pipeline: collect & cap, split by side, band by
// proximity, score, sort, and cap per side. It is a pure function of its
// arguments; callers own persistence and status tracking of the result.
func BuildPlan(symbol, dateLocal string, currentRef, tickSize float64, tz string, asOf time.Time, levels []model.KeyLevel, cfg config.PriorityConfig) (*model.Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tickSize <= 0 {
		return nil, fmt.Errorf("%w: tick_size must be positive", model.ErrInvalidConfig)
	}

	capped := capPerSource(levels, cfg.MaxLevelsPerSource)
	up, down := splitBySide(capped, currentRef)

	upTargets, upRules := buildSide(up, model.PlanUp, symbol, currentRef, tickSize, asOf, cfg)
	downTargets, downRules := buildSide(down, model.PlanDown, symbol, currentRef, tickSize, asOf, cfg)

	rules := []string{
		fmt.Sprintf("planner_version=%s", cfg.PlannerVersion),
		fmt.Sprintf("weights=source:%.6f,recency:%.6f,proximity:%.6f,confluence:%.6f",
			cfg.WeightSource, cfg.WeightRecency, cfg.WeightProximity, cfg.WeightConfluence),
	}
	rules = append(rules, upRules...)
	rules = append(rules, downRules...)

	sourceBars := len(levels)
	return &model.Plan{
		ID:          model.NewPlanID(symbol, dateLocal),
		Symbol:      symbol,
		DateLocal:   dateLocal,
		CurrentRef:  currentRef,
		CreatedAt:   asOf,
		UpTargets:   upTargets,
		DownTargets: downTargets,
		Rules:       rules,
		Meta:        model.PlanMeta{Tz: tz, TickSize: tickSize, SourceBars: &sourceBars},
	}, nil
}

// capPerSource groups by Source and keeps at most max most-recent levels per
// group (0 means unbounded). Ties on Time are broken by ID for determinism.
func capPerSource(levels []model.KeyLevel, max int) []model.KeyLevel {
	if max <= 0 {
		return levels
	}
	bySource := map[model.KeyLevelSource][]model.KeyLevel{}
	for _, l := range levels {
		bySource[l.Source] = append(bySource[l.Source], l)
	}
	var out []model.KeyLevel
	for _, group := range bySource {
		sort.Slice(group, func(i, j int) bool {
			if !group[i].Time.Equal(group[j].Time) {
				return group[i].Time.After(group[j].Time)
			}
			return group[i].ID < group[j].ID
		})
		if len(group) > max {
			group = group[:max]
		}
		out = append(out, group...)
	}
	return out
}

// splitBySide separates levels strictly above/below currentRef, dropping any
// exact match (it belongs to neither target side).
func splitBySide(levels []model.KeyLevel, currentRef float64) (up, down []model.KeyLevel) {
	for _, l := range levels {
		switch {
		case l.Price > currentRef:
			up = append(up, l)
		case l.Price < currentRef:
			down = append(down, l)
		}
	}
	return up, down
}

// band is an internal grouping of levels within cfg.PriceMergeTicks of one
// another, prior to scoring.
type band struct {
	levels []model.KeyLevel
}

func (b band) avgPrice() float64 {
	sum := 0.0
	for _, l := range b.levels {
		sum += l.Price
	}
	return sum / float64(len(b.levels))
}

// bandLevels sorts by price and greedily merges adjacent levels within
// mergeTicks*tickSize, then splits any resulting band wider than
// maxBandWidthTicks*tickSize back into singletons (spec §4.6 step 3).
func bandLevels(levels []model.KeyLevel, tickSize, mergeTicks, maxBandWidthTicks float64) []band {
	if len(levels) == 0 {
		return nil
	}
	sorted := make([]model.KeyLevel, len(levels))
	copy(sorted, levels)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Price != sorted[j].Price {
			return sorted[i].Price < sorted[j].Price
		}
		return sorted[i].ID < sorted[j].ID
	})

	mergeGap := mergeTicks * tickSize
	maxWidth := maxBandWidthTicks * tickSize

	var bands []band
	current := band{levels: []model.KeyLevel{sorted[0]}}
	for _, l := range sorted[1:] {
		last := current.levels[len(current.levels)-1]
		if l.Price-last.Price <= mergeGap {
			current.levels = append(current.levels, l)
			continue
		}
		bands = append(bands, current)
		current = band{levels: []model.KeyLevel{l}}
	}
	bands = append(bands, current)

	var out []band
	for _, b := range bands {
		if len(b.levels) <= 1 {
			out = append(out, b)
			continue
		}
		first := b.levels[0]
		last := b.levels[len(b.levels)-1]
		if last.Price-first.Price > maxWidth {
			for _, l := range b.levels {
				out = append(out, band{levels: []model.KeyLevel{l}})
			}
			continue
		}
		out = append(out, b)
	}
	return out
}

func sourceWeight(weights config.SourceWeights, source model.KeyLevelSource) float64 {
	switch source {
	case model.SourceH4:
		return weights.H4
	case model.SourceH1:
		return weights.H1
	case model.SourceSession:
		return weights.Session
	default:
		return 0
	}
}

func recencyHorizon(horizons config.RecencyHorizons, source model.KeyLevelSource) float64 {
	switch source {
	case model.SourceH4:
		return horizons.H4
	case model.SourceH1:
		return horizons.H1
	case model.SourceSession:
		return horizons.Session
	default:
		return 1
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// scoreBand computes S/R/P/B and the combined weighted score for a band, and
// picks the representative constituent (highest source weight, then most
// recent, then smallest ID) whose identity backs the resulting PlanTarget.
func scoreBand(b band, currentRef, tickSize float64, asOf time.Time, cfg config.PriorityConfig) (score float64, rep model.KeyLevel) {
	rep = b.levels[0]
	bestWeight := sourceWeight(cfg.SourceWeights, rep.Source)
	sSum, rSum := 0.0, 0.0
	for _, l := range b.levels {
		w := sourceWeight(cfg.SourceWeights, l.Source)
		sSum += w

		horizon := recencyHorizon(cfg.RecencyHorizons, l.Source)
		ageHours := asOf.Sub(l.Time).Hours()
		r := clamp01(1 - ageHours/horizon)
		rSum += r

		if w > bestWeight ||
			(w == bestWeight && l.Time.After(rep.Time)) ||
			(w == bestWeight && l.Time.Equal(rep.Time) && l.ID < rep.ID) {
			bestWeight = w
			rep = l
		}
	}
	n := float64(len(b.levels))
	s := sSum / n
	r := rSum / n

	ticksAway := math.Abs(b.avgPrice()-currentRef) / tickSize
	p := math.Exp(-cfg.ProximityLambda * ticksAway)

	bonus := 0.0
	if len(b.levels) > 1 {
		bonus = 1
	}

	score = cfg.WeightSource*s + cfg.WeightRecency*r + cfg.WeightProximity*p + cfg.WeightConfluence*bonus
	return score, rep
}

func buildSide(levels []model.KeyLevel, dir model.PlanDirection, symbol string, currentRef, tickSize float64, asOf time.Time, cfg config.PriorityConfig) ([]model.PlanTarget, []string) {
	bands := bandLevels(levels, tickSize, cfg.PriceMergeTicks, cfg.MaxBandWidthTicks)

	type scored struct {
		target  model.PlanTarget
		srcPrio float64
	}
	var scoredTargets []scored
	for _, b := range bands {
		score, rep := scoreBand(b, currentRef, tickSize, asOf, cfg)
		repLevel := rep
		repLevel.Price = b.avgPrice()

		var lb *model.LevelBand
		if len(b.levels) > 1 {
			ids := make([]string, len(b.levels))
			top, bottom := b.levels[0].Price, b.levels[0].Price
			for i, l := range b.levels {
				ids[i] = l.ID
				if l.Price > top {
					top = l.Price
				}
				if l.Price < bottom {
					bottom = l.Price
				}
			}
			lb = &model.LevelBand{Top: top, Bottom: bottom, AvgPrice: b.avgPrice(), Constituents: ids}
		}

		scoredTargets = append(scoredTargets, scored{
			target: model.PlanTarget{
				Level:     repLevel,
				Direction: dir,
				Distance:  math.Abs(repLevel.Price - currentRef),
				Priority:  score,
				Band:      lb,
				Status:    model.StatusPending,
			},
			srcPrio: sourceWeight(cfg.SourceWeights, rep.Source),
		})
	}

	// Total order per spec §4.6 step 5: priority desc, distance asc, source
	// priority desc, level ID asc — the last key only matters once the first
	// three are all tied, making the sort's output bitwise reproducible.
	sort.SliceStable(scoredTargets, func(i, j int) bool {
		a, c := scoredTargets[i], scoredTargets[j]
		if a.target.Priority != c.target.Priority {
			return a.target.Priority > c.target.Priority
		}
		if a.target.Distance != c.target.Distance {
			return a.target.Distance < c.target.Distance
		}
		if a.srcPrio != c.srcPrio {
			return a.srcPrio > c.srcPrio
		}
		return a.target.Level.ID < c.target.Level.ID
	})

	if cfg.MaxTargetsPerSide > 0 && len(scoredTargets) > cfg.MaxTargetsPerSide {
		scoredTargets = scoredTargets[:cfg.MaxTargetsPerSide]
	}

	targets := make([]model.PlanTarget, len(scoredTargets))
	rules := make([]string, 0, len(scoredTargets))
	for i, s := range scoredTargets {
		targets[i] = s.target
		confluence := "single"
		if s.target.Band != nil {
			confluence = fmt.Sprintf("band(%d)", len(s.target.Band.Constituents))
		}
		rules = append(rules, fmt.Sprintf("%s:%s:priority=%.6f:%s", dir, s.target.Level.ID, s.target.Priority, confluence))
	}
	return targets, rules
}

// MarkLevelStatus transitions the named target's status, enforcing the legal
// transition graph; illegal transitions return ErrIllegalStatusTransition.
func MarkLevelStatus(plan *model.Plan, levelID string, next model.PlanTargetStatus) error {
	for i := range plan.UpTargets {
		if plan.UpTargets[i].Level.ID == levelID {
			return transition(&plan.UpTargets[i], next)
		}
	}
	for i := range plan.DownTargets {
		if plan.DownTargets[i].Level.ID == levelID {
			return transition(&plan.DownTargets[i], next)
		}
	}
	return fmt.Errorf("%w: level %q not found in plan %q", model.ErrInvalidConfig, levelID, plan.ID)
}

func transition(target *model.PlanTarget, next model.PlanTargetStatus) error {
	if !target.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", model.ErrIllegalStatusTransition, target.Status, next)
	}
	target.Status = next
	return nil
}

// RulesSummary renders a plan's audit trail as a single newline-joined
// string, convenient for logging.
func RulesSummary(plan *model.Plan) string {
	return strings.Join(plan.Rules, "\n")
}
