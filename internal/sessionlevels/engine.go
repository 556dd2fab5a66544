// Package sessionlevels implements C2, the Session Levels Engine: it
// maintains per-session high/low and their first-reached timestamps from a
// live bar stream.
package sessionlevels

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/model"
	"github.com/nicewolf/mstruct/internal/sessionbounds"
)

// Engine owns the per-date session level state for a single symbol. It must
// be driven by one producer; concurrent on_bar calls are undefined behavior
// (spec §5).
type Engine struct {
	symbol string
	cfg    config.SymbolSessionsConfig

	started     bool
	dateLocal   string
	boundaries  []model.SessionBoundary
	levels      map[model.SessionName]model.SessionLevels

	lastAccepted    time.Time
	lastAcceptedSet bool
	lastBar         model.Bar

	metrics model.EngineMetrics
}

// NewEngine constructs a Session Levels Engine for symbol under cfg.
func NewEngine(symbol string, cfg config.SymbolSessionsConfig) *Engine {
	return &Engine{symbol: symbol, cfg: cfg}
}

// StartDate materializes boundaries for dateLocal and resets all per-date
// state, satisfying the model.StreamEngine capability.
func (e *Engine) StartDate(dateLocal string) error {
	boundaries, err := sessionbounds.Materialize(dateLocal, e.cfg)
	if err != nil {
		return err
	}
	e.started = true
	e.dateLocal = dateLocal
	e.boundaries = boundaries
	e.levels = make(map[model.SessionName]model.SessionLevels, len(boundaries))
	for _, b := range boundaries {
		e.levels[b.Name] = model.NewSessionLevels(b.Name)
	}
	e.lastAcceptedSet = false
	e.lastBar = model.Bar{}
	e.metrics = model.EngineMetrics{}
	return nil
}

// OnBar validates and applies bar to whichever session boundary contains its
// timestamp, per the seven-step algorithm in spec §4.2.
func (e *Engine) OnBar(bar model.Bar) error {
	if !e.started {
		return fmt.Errorf("%w", model.ErrNoDateStarted)
	}
	if err := bar.Validate(); err != nil {
		e.metrics.BarsRejected++
		return err
	}

	if e.lastAcceptedSet && bar.Timestamp.Equal(e.lastAccepted) {
		if bar.Equal(e.lastBar) {
			log.Trace().Str("symbol", e.symbol).Time("ts", bar.Timestamp).Msg("idempotent bar replay")
			return nil
		}
		e.metrics.BarsRejected++
		log.Warn().Str("symbol", e.symbol).Time("ts", bar.Timestamp).Msg("duplicate timestamp with different payload")
		return fmt.Errorf("%w: duplicate timestamp %s with different payload", model.ErrOutOfOrderBar, bar.Timestamp)
	}
	if e.lastAcceptedSet && bar.Timestamp.Before(e.lastAccepted) {
		e.metrics.BarsRejected++
		log.Warn().Str("symbol", e.symbol).Time("ts", bar.Timestamp).Time("last_accepted", e.lastAccepted).Msg("out-of-order bar rejected")
		return fmt.Errorf("%w: %s before last accepted %s", model.ErrOutOfOrderBar, bar.Timestamp, e.lastAccepted)
	}

	boundary, ok := e.findBoundary(bar.Timestamp)
	if !ok {
		e.metrics.BarsIgnored++
		log.Debug().Str("symbol", e.symbol).Time("ts", bar.Timestamp).Msg("bar outside all session windows, ignored")
		e.lastAccepted = bar.Timestamp
		e.lastAcceptedSet = true
		e.lastBar = bar
		return nil
	}

	levels := e.levels[boundary.Name]
	hasData := levels.HasData()
	if !hasData || bar.High > levels.High {
		levels.High = bar.High
		levels.HighTime = bar.Timestamp
	} else if bar.High == levels.High && bar.Timestamp.Before(levels.HighTime) {
		// Tie-break: earlier bar wins for HighTime.
		levels.HighTime = bar.Timestamp
	}
	if !hasData || bar.Low < levels.Low {
		levels.Low = bar.Low
		levels.LowTime = bar.Timestamp
	} else if bar.Low == levels.Low && bar.Timestamp.Before(levels.LowTime) {
		levels.LowTime = bar.Timestamp
	}
	e.levels[boundary.Name] = levels

	e.lastAccepted = bar.Timestamp
	e.lastAcceptedSet = true
	e.lastBar = bar
	e.metrics.BarsAccepted++
	return nil
}

func (e *Engine) findBoundary(t time.Time) (model.SessionBoundary, bool) {
	for _, b := range e.boundaries {
		if b.Contains(t) {
			return b, true
		}
	}
	return model.SessionBoundary{}, false
}

// Snapshot is a deep copy of {symbol, boundaries, levels}, levels ordered by
// boundary start.
type Snapshot struct {
	Symbol     string
	Boundaries []model.SessionBoundary
	Levels     []model.SessionLevels
	Metrics    model.EngineMetrics
}

// Snapshot returns the current deep-copied state.
func (e *Engine) Snapshot() (Snapshot, error) {
	if !e.started {
		return Snapshot{}, fmt.Errorf("%w", model.ErrNoDateStarted)
	}
	boundaries := make([]model.SessionBoundary, len(e.boundaries))
	copy(boundaries, e.boundaries)

	levels := make([]model.SessionLevels, 0, len(e.boundaries))
	for _, b := range e.boundaries {
		levels = append(levels, e.levels[b.Name])
	}
	return Snapshot{
		Symbol:     e.symbol,
		Boundaries: boundaries,
		Levels:     levels,
		Metrics:    e.metrics,
	}, nil
}

// EndDate returns the final snapshot and clears all per-date state.
func (e *Engine) EndDate() (Snapshot, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return Snapshot{}, err
	}
	e.started = false
	e.dateLocal = ""
	e.boundaries = nil
	e.levels = nil
	e.lastAcceptedSet = false
	return snap, nil
}
