package bias_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicewolf/mstruct/internal/bias"
	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/model"
)

func level(id string, source model.KeyLevelSource, kind model.KeyLevelKind, price float64, t time.Time) model.KeyLevel {
	return model.KeyLevel{ID: id, Symbol: "ES", Kind: kind, Source: source, Price: price, Time: t}
}

func sampleLevels(asOf time.Time) []model.KeyLevel {
	return []model.KeyLevel{
		level("ES:H4_HIGH:1", model.SourceH4, model.KindH4High, 4600, asOf.Add(-2*time.Hour)),
		level("ES:H1_HIGH:1", model.SourceH1, model.KindH1High, 4601, asOf.Add(-1*time.Hour)),
		level("ES:SESSION_HIGH:ASIA:1", model.SourceSession, model.KindSessionHigh, 4700, asOf.Add(-1*time.Hour)),
		level("ES:H4_LOW:1", model.SourceH4, model.KindH4Low, 4500, asOf.Add(-3*time.Hour)),
		level("ES:H1_LOW:1", model.SourceH1, model.KindH1Low, 4450, asOf.Add(-30*time.Minute)),
	}
}

func TestBuildPlan_BandingAndScoring(t *testing.T) {
	// Spec §8 scenario 5: two nearby H4/H1 highs merge into a confluence band
	// and outrank a lone, less source-weighted and farther session high.
	asOf := time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC)
	cfg := config.DefaultPriorityConfig()

	plan, err := bias.BuildPlan("ES", "2024-01-15", 4550, 0.25, "America/Chicago", asOf, sampleLevels(asOf), cfg)
	require.NoError(t, err)

	require.Len(t, plan.UpTargets, 2)
	top := plan.UpTargets[0]
	require.NotNil(t, top.Band)
	assert.True(t, top.Band.IsConfluence())
	assert.ElementsMatch(t, []string{"ES:H4_HIGH:1", "ES:H1_HIGH:1"}, top.Band.Constituents)
	assert.Equal(t, 4600.5, top.Level.Price)

	second := plan.UpTargets[1]
	assert.Nil(t, second.Band)
	assert.Equal(t, "ES:SESSION_HIGH:ASIA:1", second.Level.ID)

	assert.Greater(t, top.Priority, second.Priority, "confluence + higher source weight must outrank a lone session level")

	require.Len(t, plan.DownTargets, 2)
	assert.Equal(t, "ES:H4_LOW:1", plan.DownTargets[0].Level.ID)
	assert.Equal(t, "ES:H1_LOW:1", plan.DownTargets[1].Level.ID)

	assert.Equal(t, model.NewPlanID("ES", "2024-01-15"), plan.ID)
	assert.NotEmpty(t, plan.Rules)
}

func TestBuildPlan_ExactMatchDropped(t *testing.T) {
	asOf := time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC)
	cfg := config.DefaultPriorityConfig()
	levels := []model.KeyLevel{
		level("ES:H4_HIGH:1", model.SourceH4, model.KindH4High, 4550, asOf), // equals currentRef
	}
	plan, err := bias.BuildPlan("ES", "2024-01-15", 4550, 0.25, "America/Chicago", asOf, levels, cfg)
	require.NoError(t, err)
	assert.Empty(t, plan.UpTargets)
	assert.Empty(t, plan.DownTargets)
}

func TestBuildPlan_MaxTargetsPerSideCap(t *testing.T) {
	asOf := time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC)
	cfg := config.DefaultPriorityConfig()
	cfg.MaxTargetsPerSide = 1
	cfg.PriceMergeTicks = 0 // keep every level its own band

	var levels []model.KeyLevel
	for i := 0; i < 5; i++ {
		levels = append(levels, level(
			"ES:H4_HIGH:"+string(rune('a'+i)), model.SourceH4, model.KindH4High,
			4560+float64(i)*10, asOf.Add(-time.Duration(i)*time.Hour)))
	}

	plan, err := bias.BuildPlan("ES", "2024-01-15", 4550, 0.25, "America/Chicago", asOf, levels, cfg)
	require.NoError(t, err)
	assert.Len(t, plan.UpTargets, 1)
}

func TestBuildPlan_DeterministicUnderInputReordering(t *testing.T) {
	asOf := time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC)
	cfg := config.DefaultPriorityConfig()

	levels := sampleLevels(asOf)
	plan1, err := bias.BuildPlan("ES", "2024-01-15", 4550, 0.25, "America/Chicago", asOf, levels, cfg)
	require.NoError(t, err)

	shuffled := make([]model.KeyLevel, len(levels))
	copy(shuffled, levels)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	plan2, err := bias.BuildPlan("ES", "2024-01-15", 4550, 0.25, "America/Chicago", asOf, shuffled, cfg)
	require.NoError(t, err)

	assert.Equal(t, plan1.UpTargets, plan2.UpTargets)
	assert.Equal(t, plan1.DownTargets, plan2.DownTargets)
}

func TestMarkLevelStatus_LegalAndIllegalTransitions(t *testing.T) {
	plan := &model.Plan{
		ID: "ES:2024-01-15",
		UpTargets: []model.PlanTarget{
			{Level: model.KeyLevel{ID: "lvl-1"}, Status: model.StatusPending},
		},
	}

	require.NoError(t, bias.MarkLevelStatus(plan, "lvl-1", model.StatusHit))
	assert.Equal(t, model.StatusHit, plan.UpTargets[0].Status)

	require.NoError(t, bias.MarkLevelStatus(plan, "lvl-1", model.StatusConsumed))
	assert.Equal(t, model.StatusConsumed, plan.UpTargets[0].Status)

	err := bias.MarkLevelStatus(plan, "lvl-1", model.StatusInvalidated)
	assert.ErrorIs(t, err, model.ErrIllegalStatusTransition)
}

func TestMarkLevelStatus_UnknownLevel(t *testing.T) {
	plan := &model.Plan{ID: "ES:2024-01-15"}
	err := bias.MarkLevelStatus(plan, "missing", model.StatusHit)
	assert.Error(t, err)
}
