// Package runner drives independent per-symbol engine sets (C1-C6)
// concurrently, with no state shared between symbols, mirroring spec §5's
// single-producer-per-instance concurrency model scaled out across symbols.
package runner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nicewolf/mstruct/internal/bias"
	"github.com/nicewolf/mstruct/internal/bos"
	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/equilibrium"
	"github.com/nicewolf/mstruct/internal/model"
	"github.com/nicewolf/mstruct/internal/sessionlevels"
	"github.com/nicewolf/mstruct/internal/swings"
)

// SymbolConfig bundles the per-symbol configuration needed to drive one
// engine set through a trading date.
type SymbolConfig struct {
	Symbol      string
	DateLocal   string
	Timezone    string
	Sessions    config.SymbolSessionsConfig
	HtfSwings   config.HtfSwingConfig
	Bos         config.BosConfig
	Equilibrium config.EquilibriumConfig
	Priority    config.PriorityConfig
	TickSize    float64
}

// SymbolResult is one symbol's output: the session-levels snapshot, the
// confirmed-swing snapshot, any BOS signals emitted, and the resulting daily
// bias plan (nil if insufficient levels were available to build one).
type SymbolResult struct {
	Symbol      string
	Levels      sessionlevels.Snapshot
	Swings      swings.Snapshot
	BosSignals  []model.BosSignal
	Equilibrium *model.EquilibriumLevel
	Plan        *model.Plan
	Err         error
}

// maxConcurrency bounds how many symbols are processed in parallel, the way
// the reference fan-out caps its worker count with a buffered semaphore.
const maxConcurrency = 16

// Run drives one engine set per SymbolConfig against its bar stream,
// independently and concurrently. A per-symbol failure is captured in that
// symbol's SymbolResult.Err rather than aborting the whole run; Run itself
// only returns an error for context cancellation or a programmer error that
// makes the whole batch meaningless (e.g. a nil bar source).
func Run(ctx context.Context, symbols []SymbolConfig, barsOf func(symbol string) ([]model.Bar, error)) ([]SymbolResult, error) {
	if barsOf == nil {
		return nil, fmt.Errorf("%w: bar source function must not be nil", model.ErrInvalidConfig)
	}

	results := make([]SymbolResult, len(symbols))
	sem := make(chan struct{}, maxConcurrency)

	g, gctx := errgroup.WithContext(ctx)
	for i, sc := range symbols {
		i, sc := i, sc
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			bars, err := barsOf(sc.Symbol)
			if err != nil {
				results[i] = SymbolResult{Symbol: sc.Symbol, Err: err}
				return nil
			}
			results[i] = runOne(sc, bars)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runOne(sc SymbolConfig, bars []model.Bar) SymbolResult {
	res := SymbolResult{Symbol: sc.Symbol}

	levelsEngine := sessionlevels.NewEngine(sc.Symbol, sc.Sessions)
	swingDetector := swings.NewDetector(sc.Symbol, sc.HtfSwings)
	bosEngine := bos.NewEngine(sc.Symbol, sc.Bos)

	if err := levelsEngine.StartDate(sc.DateLocal); err != nil {
		res.Err = err
		return res
	}
	if err := swingDetector.StartDate(sc.DateLocal); err != nil {
		res.Err = err
		return res
	}

	var allSignals []model.BosSignal
	for _, bar := range bars {
		if err := levelsEngine.OnBar(bar); err != nil {
			res.Err = err
			return res
		}
		if err := swingDetector.OnBar(model.HtfH1, bar); err != nil {
			res.Err = err
			return res
		}
		if err := swingDetector.OnBar(model.HtfH4, bar); err != nil {
			res.Err = err
			return res
		}
		signals, err := bosEngine.OnBar(bar)
		if err != nil {
			res.Err = err
			return res
		}
		allSignals = append(allSignals, signals...)
	}

	levelsSnap, err := levelsEngine.Snapshot()
	if err != nil {
		res.Err = err
		return res
	}
	swingsSnap, err := swingDetector.Snapshot()
	if err != nil {
		res.Err = err
		return res
	}

	res.Levels = levelsSnap
	res.Swings = swingsSnap
	res.BosSignals = allSignals

	if len(bars) > 0 {
		currentRef := bars[len(bars)-1].Close
		asOf := bars[len(bars)-1].Timestamp

		if dayRange, ok := dayRange(levelsSnap, asOf); ok {
			res.Equilibrium, _ = equilibrium.Classify(dayRange, currentRef, sc.Equilibrium)
		}

		keyLevels := toKeyLevels(sc.Symbol, levelsSnap, swingsSnap)
		if len(keyLevels) > 0 {
			plan, err := bias.BuildPlan(sc.Symbol, sc.DateLocal, currentRef, sc.TickSize, sc.Timezone, asOf, keyLevels, sc.Priority)
			if err != nil {
				res.Err = err
				return res
			}
			res.Plan = plan
		}
	}

	return res
}

// dayRange combines all sessions-with-data into a single high/low range for
// equilibrium classification (C5); ok is false if no session has data yet.
func dayRange(levels sessionlevels.Snapshot, asOf time.Time) (model.SwingRange, bool) {
	var high, low float64
	found := false
	for _, lvl := range levels.Levels {
		if !lvl.HasData() {
			continue
		}
		if !found || lvl.High > high {
			high = lvl.High
		}
		if !found || lvl.Low < low {
			low = lvl.Low
		}
		found = true
	}
	if !found {
		return model.SwingRange{}, false
	}
	return model.SwingRange{High: high, Low: low, Timestamp: asOf, Source: model.SwingRangeComputed}, true
}

// toKeyLevels flattens session and HTF swing snapshots into the KeyLevel
// pool consumed by the Daily Bias Planner.
func toKeyLevels(symbol string, levels sessionlevels.Snapshot, sw swings.Snapshot) []model.KeyLevel {
	var out []model.KeyLevel
	for _, lvl := range levels.Levels {
		if !lvl.HasData() {
			continue
		}
		out = append(out,
			model.KeyLevel{
				ID:     model.NewKeyLevelID(symbol, model.KindSessionHigh, lvl.HighTime, lvl.Session),
				Symbol: symbol, Kind: model.KindSessionHigh, Source: model.SourceSession,
				Price: lvl.High, Time: lvl.HighTime,
			},
			model.KeyLevel{
				ID:     model.NewKeyLevelID(symbol, model.KindSessionLow, lvl.LowTime, lvl.Session),
				Symbol: symbol, Kind: model.KindSessionLow, Source: model.SourceSession,
				Price: lvl.Low, Time: lvl.LowTime,
			},
		)
	}
	for _, p := range sw.H1.SwingHighs {
		out = append(out, swingToKeyLevel(symbol, model.KindH1High, model.SourceH1, p))
	}
	for _, p := range sw.H1.SwingLows {
		out = append(out, swingToKeyLevel(symbol, model.KindH1Low, model.SourceH1, p))
	}
	for _, p := range sw.H4.SwingHighs {
		out = append(out, swingToKeyLevel(symbol, model.KindH4High, model.SourceH4, p))
	}
	for _, p := range sw.H4.SwingLows {
		out = append(out, swingToKeyLevel(symbol, model.KindH4Low, model.SourceH4, p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func swingToKeyLevel(symbol string, kind model.KeyLevelKind, source model.KeyLevelSource, p model.SwingPoint) model.KeyLevel {
	return model.KeyLevel{
		ID:     model.NewKeyLevelID(symbol, kind, p.Timestamp, ""),
		Symbol: symbol, Kind: kind, Source: source,
		Price: p.Price, Time: p.Timestamp,
	}
}
