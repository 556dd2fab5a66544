package runner_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/model"
	"github.com/nicewolf/mstruct/internal/runner"
)

func bar(t time.Time, o, h, l, c, v float64) model.Bar {
	return model.Bar{Timestamp: t, Open: o, High: h, Low: l, Close: c, Volume: v}
}

func barsFor(symbol string, base float64) []model.Bar {
	start, _ := time.Parse(time.RFC3339, "2024-01-15T15:30:00Z")
	var out []model.Bar
	for i := 0; i < 6; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		out = append(out, bar(ts, base, base+10, base-10, base+float64(i), 100))
	}
	return out
}

func symbolConfig(symbol string) runner.SymbolConfig {
	return runner.SymbolConfig{
		Symbol:      symbol,
		DateLocal:   "2024-01-15",
		Timezone:    "America/Chicago",
		Sessions:    config.DefaultUSIndexFutures(symbol, 0.25),
		HtfSwings:   config.DefaultHtfSwingConfig(),
		Bos:         config.DefaultBosConfig(),
		Equilibrium: config.DefaultEquilibriumConfig(),
		Priority:    config.DefaultPriorityConfig(),
		TickSize:    0.25,
	}
}

func TestRun_IndependentSymbolsNoSharedState(t *testing.T) {
	symbols := []runner.SymbolConfig{symbolConfig("ES"), symbolConfig("NQ")}
	data := map[string][]model.Bar{
		"ES": barsFor("ES", 4500),
		"NQ": barsFor("NQ", 15800),
	}

	results, err := runner.Run(context.Background(), symbols, func(symbol string) ([]model.Bar, error) {
		return data[symbol], nil
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	bySymbol := map[string]runner.SymbolResult{}
	for _, r := range results {
		require.NoError(t, r.Err)
		bySymbol[r.Symbol] = r
	}

	assert.Contains(t, bySymbol, "ES")
	assert.Contains(t, bySymbol, "NQ")
	assert.NotEqual(t, bySymbol["ES"].Levels.Levels, bySymbol["NQ"].Levels.Levels, "each symbol must carry independent state")
}

func TestRun_PerSymbolErrorIsolated(t *testing.T) {
	symbols := []runner.SymbolConfig{symbolConfig("ES"), symbolConfig("BAD")}
	data := map[string][]model.Bar{
		"ES": barsFor("ES", 4500),
	}

	results, err := runner.Run(context.Background(), symbols, func(symbol string) ([]model.Bar, error) {
		bars, ok := data[symbol]
		if !ok {
			return nil, assert.AnError
		}
		return bars, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		if r.Symbol == "BAD" {
			assert.Error(t, r.Err)
		} else {
			assert.NoError(t, r.Err)
		}
	}
}

func TestRun_NilBarSourceRejected(t *testing.T) {
	_, err := runner.Run(context.Background(), nil, nil)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}
