// Package bos implements C4, the BOS Reversal Engine: it opens time-bounded
// windows anchored to reference pivots and emits confirmed break-of-structure
// signals with confidence scoring.
package bos

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/model"
)

// Engine owns active BOS windows and rolling volume/range statistics for a
// single symbol. Must be driven by one producer (spec §5).
type Engine struct {
	symbol string
	cfg    config.BosConfig

	active []*model.BosWindow // OPEN windows only, oldest first

	volumes []float64 // rolling trailing window, bounded to cfg.VolumeWindow
	ranges  []float64 // trailing bar high-low, same bound

	lastBarTime time.Time

	metrics model.EngineMetrics
}

// NewEngine constructs a BOS Reversal Engine for symbol under cfg.
func NewEngine(symbol string, cfg config.BosConfig) *Engine {
	return &Engine{symbol: symbol, cfg: cfg}
}

// OpenWindow opens a new time-bounded window anchored to referencePivot. An
// invalid pivot (non-finite price or zero timestamp) returns a nil window and
// a nil error: per spec §4.4 this is a defined silent failure, not a
// programmer-error exception.
func (e *Engine) OpenWindow(referencePivot model.SwingPoint, durationMs *time.Duration, direction *model.Direction) (*model.BosWindow, error) {
	if math.IsNaN(referencePivot.Price) || math.IsInf(referencePivot.Price, 0) || referencePivot.Timestamp.IsZero() {
		log.Debug().Str("symbol", e.symbol).Msg("invalid reference pivot, no window opened")
		return nil, nil
	}

	dir := model.DirectionBear
	if referencePivot.Kind == model.SwingLow {
		dir = model.DirectionBull
	}
	if direction != nil {
		dir = *direction
	}

	duration := e.cfg.DefaultDuration
	if durationMs != nil {
		duration = *durationMs
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: window duration must be positive", model.ErrInvalidConfig)
	}

	openedAt := e.lastBarTime
	if openedAt.IsZero() {
		openedAt = referencePivot.Timestamp
	}

	w := &model.BosWindow{
		ID:             uuid.NewString(),
		ReferencePivot: referencePivot,
		Direction:      dir,
		OpenedAt:       openedAt,
		ExpiresAt:      openedAt.Add(duration),
		Status:         model.BosOpen,
	}

	e.active = append(e.active, w)
	e.metrics.WindowsOpened++
	if len(e.active) > e.cfg.MaxWindows {
		evicted := e.active[0]
		evicted.Status = model.BosClosedExpired
		e.active = e.active[1:]
		e.metrics.WindowsExpired++
	}
	return w, nil
}

// OnBar advances rolling statistics, expires stale windows, and evaluates
// triggers, returning any signals emitted this call.
func (e *Engine) OnBar(bar model.Bar) ([]model.BosSignal, error) {
	if err := bar.Validate(); err != nil {
		return nil, err
	}
	e.lastBarTime = bar.Timestamp
	e.pushRollingStats(bar)

	var signals []model.BosSignal
	remaining := e.active[:0]
	for _, w := range e.active {
		if !w.ExpiresAt.After(bar.Timestamp) {
			w.Status = model.BosClosedExpired
			e.metrics.WindowsExpired++
			log.Debug().Str("symbol", e.symbol).Str("window", w.ID).Msg("BOS window expired unconfirmed")
			continue
		}

		triggered := (w.Direction == model.DirectionBear && bar.Low < w.ReferencePivot.Price) ||
			(w.Direction == model.DirectionBull && bar.High > w.ReferencePivot.Price)
		if !triggered {
			remaining = append(remaining, w)
			continue
		}

		strength := e.computeStrength(w, bar)
		confidence := e.computeConfidence(w, bar, strength)
		if confidence < e.cfg.MinConfidence {
			remaining = append(remaining, w) // leave open, do not emit
			log.Debug().Str("symbol", e.symbol).Str("window", w.ID).Float64("confidence", confidence).Msg("sub-threshold BOS trigger, window stays open")
			continue
		}

		w.Status = model.BosClosedTriggered
		e.metrics.WindowsTriggered++
		log.Debug().Str("symbol", e.symbol).Str("window", w.ID).Float64("confidence", confidence).Float64("strength", strength).Msg("BOS signal emitted")
		signals = append(signals, model.BosSignal{
			WindowID:       w.ID,
			ReferencePivot: w.ReferencePivot,
			Direction:      w.Direction,
			TriggerBar:     bar,
			Confidence:     confidence,
			Strength:       strength,
			EmittedAt:      bar.Timestamp,
		})
	}
	e.active = remaining
	return signals, nil
}

func (e *Engine) pushRollingStats(bar model.Bar) {
	e.volumes = append(e.volumes, bar.Volume)
	if len(e.volumes) > e.cfg.VolumeWindow {
		e.volumes = e.volumes[1:]
	}
	e.ranges = append(e.ranges, bar.High-bar.Low)
	if len(e.ranges) > e.cfg.VolumeWindow {
		e.ranges = e.ranges[1:]
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
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

func (e *Engine) normalizedVolume(bar model.Bar) float64 {
	m := mean(e.volumes)
	if m <= 0 {
		return 0
	}
	ratio := bar.Volume / m
	if ratio > 2 {
		ratio = 2
	}
	return ratio / 2
}

func (e *Engine) computeStrength(w *model.BosWindow, bar model.Bar) float64 {
	extreme := bar.Low
	if w.Direction == model.DirectionBull {
		extreme = bar.High
	}
	if w.ReferencePivot.Price == 0 {
		return 0
	}
	breakMagnitude := math.Abs(extreme-w.ReferencePivot.Price) / math.Abs(w.ReferencePivot.Price)
	rangeEstimate := mean(e.ranges)
	if rangeEstimate <= 0 {
		rangeEstimate = bar.High - bar.Low
	}
	normalizedBreak := 0.0
	if rangeEstimate > 0 {
		normalizedBreak = clamp01(breakMagnitude / (rangeEstimate / w.ReferencePivot.Price))
	}
	return clamp01(normalizedBreak*0.6 + e.normalizedVolume(bar)*0.4)
}

func (e *Engine) computeConfidence(w *model.BosWindow, bar model.Bar, strength float64) float64 {
	pivotStrength := clamp01(float64(w.ReferencePivot.Strength) / float64(e.cfg.MaxPivotStrength))
	volumeScore := e.normalizedVolume(bar)

	duration := w.ExpiresAt.Sub(w.OpenedAt)
	elapsed := bar.Timestamp.Sub(w.OpenedAt)
	timingScore := 1.0
	if duration > 0 {
		timingScore = clamp01(1 - float64(elapsed)/float64(duration))
	}

	return clamp01(0.5*pivotStrength + 0.3*volumeScore + 0.2*timingScore)
}

// State is the snapshot returned by State().
type State struct {
	Active  []model.BosWindow
	Metrics model.EngineMetrics
}

// State returns a deep copy of the active windows and performance counters.
func (e *Engine) State() State {
	active := make([]model.BosWindow, len(e.active))
	for i, w := range e.active {
		active[i] = *w
	}
	return State{Active: active, Metrics: e.metrics}
}

// Reset clears all engine state: active windows and rolling statistics.
func (e *Engine) Reset() {
	e.active = nil
	e.volumes = nil
	e.ranges = nil
	e.lastBarTime = time.Time{}
	e.metrics = model.EngineMetrics{}
}
