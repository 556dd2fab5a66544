// Package equilibrium implements C5, a pure classifier of price relative to
// a swing range's midpoint (premium/discount/equilibrium).
package equilibrium

import (
	"math"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/model"
)

// Classify computes the equilibrium level for currentPrice within rng. It
// returns (nil, false) for degenerate inputs: non-finite values, an inverted
// or zero-width range, or a range narrower than cfg.MinRangeSize. This
// function holds no state and never mutates its arguments.
func Classify(rng model.SwingRange, currentPrice float64, cfg config.EquilibriumConfig) (*model.EquilibriumLevel, bool) {
	if !finite(rng.High) || !finite(rng.Low) || !finite(currentPrice) {
		return nil, false
	}
	if rng.High <= rng.Low {
		return nil, false
	}
	width := rng.High - rng.Low
	if width < cfg.MinRangeSize {
		return nil, false
	}

	eq := bankersRound((rng.High+rng.Low)/2, cfg.Precision)
	distPoints := bankersRound(currentPrice-eq, cfg.Precision)
	distPercent := bankersRound(distPoints/width, cfg.Precision)

	zone := model.ZoneEquilibrium
	switch {
	case distPercent >= cfg.Threshold:
		zone = model.ZonePremium
	case distPercent <= -cfg.Threshold:
		zone = model.ZoneDiscount
	}

	return &model.EquilibriumLevel{
		Range:           rng,
		CurrentPrice:    currentPrice,
		Equilibrium:     eq,
		Zone:            zone,
		DistancePoints:  distPoints,
		DistancePercent: distPercent,
	}, true
}

// Input pairs a range and the price to classify against it, for ClassifyBatch.
type Input struct {
	Range        model.SwingRange
	CurrentPrice float64
}

// ClassifyBatch classifies each input in order, discarding degenerate
// results; the output preserves the relative order of the survivors.
func ClassifyBatch(inputs []Input, cfg config.EquilibriumConfig) []model.EquilibriumLevel {
	out := make([]model.EquilibriumLevel, 0, len(inputs))
	for _, in := range inputs {
		if lvl, ok := Classify(in.Range, in.CurrentPrice, cfg); ok {
			out = append(out, *lvl)
		}
	}
	return out
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// bankersRound rounds x to the given number of decimal places using
// round-half-to-even, matching exchange tick-rounding conventions. The
// standard library's math.Round always rounds half away from zero, so this
// is hand-rolled rather than borrowed from an ecosystem library.
func bankersRound(x float64, precision int) float64 {
	scale := math.Pow10(precision)
	scaled := x * scale
	floor := math.Floor(scaled)
	diff := scaled - floor
	switch {
	case diff < 0.5:
		return floor / scale
	case diff > 0.5:
		return (floor + 1) / scale
	default:
		if math.Mod(floor, 2) == 0 {
			return floor / scale
		}
		return (floor + 1) / scale
	}
}
