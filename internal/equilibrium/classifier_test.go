package equilibrium_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/equilibrium"
	"github.com/nicewolf/mstruct/internal/model"
)

func testRange(high, low float64) model.SwingRange {
	return model.SwingRange{High: high, Low: low, Timestamp: time.Now(), Timeframe: model.HtfH1, Source: model.SwingRangeComputed}
}

func TestClassify_PremiumDiscountEquilibrium(t *testing.T) {
	// Spec §8 scenario 4: a 100-point range, midpoint 4550.
	cfg := config.DefaultEquilibriumConfig()
	rng := testRange(4600, 4500)

	premium, ok := equilibrium.Classify(rng, 4580, cfg)
	require.True(t, ok)
	assert.Equal(t, model.ZonePremium, premium.Zone)
	assert.Equal(t, 4550.0, premium.Equilibrium)

	discount, ok := equilibrium.Classify(rng, 4520, cfg)
	require.True(t, ok)
	assert.Equal(t, model.ZoneDiscount, discount.Zone)

	atMid, ok := equilibrium.Classify(rng, 4550, cfg)
	require.True(t, ok)
	assert.Equal(t, model.ZoneEquilibrium, atMid.Zone)
	assert.Equal(t, 0.0, atMid.DistancePercent)
}

func TestClassify_ThresholdBoundaryInclusive(t *testing.T) {
	cfg := config.EquilibriumConfig{Threshold: 0.02, MinRangeSize: 5, Precision: 6}
	rng := testRange(4600, 4500) // width 100
	// distance of exactly 2 points = 2% of a 100-wide range, at the threshold.
	lvl, ok := equilibrium.Classify(rng, 4552, cfg)
	require.True(t, ok)
	assert.Equal(t, model.ZonePremium, lvl.Zone, "exact threshold boundary classifies as premium")
}

func TestClassify_DegenerateInputsRejected(t *testing.T) {
	cfg := config.DefaultEquilibriumConfig()

	_, ok := equilibrium.Classify(testRange(4600, 4500), math.NaN(), cfg)
	assert.False(t, ok)

	_, ok = equilibrium.Classify(testRange(100, 100), 100, cfg) // zero-width
	assert.False(t, ok)

	_, ok = equilibrium.Classify(testRange(100, 200), 150, cfg) // inverted
	assert.False(t, ok)

	_, ok = equilibrium.Classify(testRange(4503, 4500), 4501, cfg) // narrower than MinRangeSize
	assert.False(t, ok)
}

func TestClassify_Idempotent(t *testing.T) {
	cfg := config.DefaultEquilibriumConfig()
	rng := testRange(4600, 4500)
	a, ok := equilibrium.Classify(rng, 4580, cfg)
	require.True(t, ok)
	b, ok := equilibrium.Classify(rng, 4580, cfg)
	require.True(t, ok)
	assert.Equal(t, *a, *b)
}

func TestClassifyBatch_PreservesOrderDiscardsDegenerate(t *testing.T) {
	cfg := config.DefaultEquilibriumConfig()
	inputs := []equilibrium.Input{
		{Range: testRange(4600, 4500), CurrentPrice: 4580},
		{Range: testRange(100, 200), CurrentPrice: 150}, // degenerate, dropped
		{Range: testRange(4600, 4500), CurrentPrice: 4520},
	}
	out := equilibrium.ClassifyBatch(inputs, cfg)
	require.Len(t, out, 2)
	assert.Equal(t, model.ZonePremium, out[0].Zone)
	assert.Equal(t, model.ZoneDiscount, out[1].Zone)
}

func TestBankersRounding_HalfToEven(t *testing.T) {
	cfg := config.EquilibriumConfig{Threshold: 0.02, MinRangeSize: 1, Precision: 0}
	// midpoint of [1, 3] is 2, no rounding ambiguity; use a range whose
	// midpoint lands exactly on a half-unit to exercise round-half-to-even.
	rng := testRange(5, 2) // midpoint 3.5 -> rounds to 4 (nearest even)
	lvl, ok := equilibrium.Classify(rng, 3.5, cfg)
	require.True(t, ok)
	assert.Equal(t, 4.0, lvl.Equilibrium)
}
