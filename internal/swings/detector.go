// Package swings implements C3, the HTF Swing Detector: it detects confirmed
// swing highs/lows on H1 and H4 with a lookback/confirm rule and never
// repaints a confirmed swing.
package swings

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/model"
)

// pendingSwing is a not-yet-confirmed candidate. It is tracked per HTF per
// kind (high/low); a new raw candidate only displaces it when strictly more
// extreme, so the engine never discards a stronger unconfirmed candidate in
// favor of a weaker one (see DESIGN.md's resolution of this detail).
type pendingSwing struct {
	point        model.SwingPoint
	forwardSeen  int
	forwardLimit int // L + C bars must pass without invalidation to confirm
}

// htfState is the per-timeframe state: a lookback ring, at most one pending
// high and one pending low, and bounded confirmed deques.
type htfState struct {
	cfg config.SwingConfig

	lookback *barRing // holds the last L bars preceding the bar under test

	pendingHigh *pendingSwing
	pendingLow  *pendingSwing

	confirmedHighs []model.SwingPoint // bounded to K, ascending by timestamp
	confirmedLows  []model.SwingPoint

	barIndex int
	metrics  model.EngineMetrics
}

func newHtfState(cfg config.SwingConfig) *htfState {
	return &htfState{
		cfg:      cfg,
		lookback: newBarRing(cfg.Lookback),
	}
}

// Detector owns per-HTF swing state for a single symbol. Must be driven by
// one producer; concurrent on_bar calls on the same instance are undefined
// behavior (spec §5).
type Detector struct {
	symbol string
	cfg    config.HtfSwingConfig

	started   bool
	dateLocal string

	h1 *htfState
	h4 *htfState
}

// NewDetector constructs an HTF Swing Detector for symbol under cfg.
func NewDetector(symbol string, cfg config.HtfSwingConfig) *Detector {
	return &Detector{
		symbol: symbol,
		cfg:    cfg,
		h1:     newHtfState(cfg.H1),
		h4:     newHtfState(cfg.H4),
	}
}

// StartDate resets per-date state for both timeframes.
func (d *Detector) StartDate(dateLocal string) error {
	d.started = true
	d.dateLocal = dateLocal
	d.h1 = newHtfState(d.cfg.H1)
	d.h4 = newHtfState(d.cfg.H4)
	return nil
}

// EndDate returns the final snapshot and clears all per-date state.
func (d *Detector) EndDate() (Snapshot, error) {
	snap, err := d.Snapshot()
	if err != nil {
		return Snapshot{}, err
	}
	d.started = false
	return snap, nil
}

func (d *Detector) state(htf model.Htf) (*htfState, error) {
	switch htf {
	case model.HtfH1:
		return d.h1, nil
	case model.HtfH4:
		return d.h4, nil
	default:
		return nil, fmt.Errorf("%w: unknown timeframe %q", model.ErrInvalidConfig, htf)
	}
}

// OnBar processes a bar for the given HTF in O(1) amortized time.
func (d *Detector) OnBar(htf model.Htf, bar model.Bar) error {
	if !d.started {
		return fmt.Errorf("%w", model.ErrNoDateStarted)
	}
	if err := bar.Validate(); err != nil {
		return err
	}
	st, err := d.state(htf)
	if err != nil {
		return err
	}

	// 1. Advance any existing pending candidates using this bar.
	advancePending(d.symbol, st, htf, bar)

	// 2. Test whether this bar is itself a new raw candidate against the
	// strict-preceding lookback window. Fewer than L preceding bars at
	// stream start is not a reason to skip the test: comparisons against
	// bars that don't exist yet are vacuously satisfied (spec §8 scenario
	// 1 confirms a swing using only the bars seen so far).
	testNewHighCandidate(st, htf, bar)
	testNewLowCandidate(st, htf, bar)

	st.lookback.Push(bar)
	st.barIndex++
	return nil
}

func forwardLimit(cfg config.SwingConfig) int {
	return cfg.Lookback + cfg.Confirm
}

func advancePending(symbol string, st *htfState, htf model.Htf, bar model.Bar) {
	if st.pendingHigh != nil {
		if bar.High > st.pendingHigh.point.Price {
			log.Trace().Str("symbol", symbol).Str("htf", string(htf)).Float64("price", st.pendingHigh.point.Price).Msg("pending swing high invalidated")
			st.pendingHigh = nil // invalidated, never confirmed
		} else {
			st.pendingHigh.forwardSeen++
			if st.pendingHigh.forwardSeen >= st.pendingHigh.forwardLimit {
				confirmHigh(st, st.pendingHigh.point)
				st.pendingHigh = nil
			}
		}
	}
	if st.pendingLow != nil {
		if bar.Low < st.pendingLow.point.Price {
			log.Trace().Str("symbol", symbol).Str("htf", string(htf)).Float64("price", st.pendingLow.point.Price).Msg("pending swing low invalidated")
			st.pendingLow = nil
		} else {
			st.pendingLow.forwardSeen++
			if st.pendingLow.forwardSeen >= st.pendingLow.forwardLimit {
				confirmLow(st, st.pendingLow.point)
				st.pendingLow = nil
			}
		}
	}
}

func testNewHighCandidate(st *htfState, htf model.Htf, bar model.Bar) {
	for _, p := range st.lookback.Items() {
		if bar.High <= p.High {
			return
		}
	}
	if st.pendingHigh != nil && st.pendingHigh.point.Price >= bar.High {
		return // keep the stronger existing pending candidate
	}
	st.pendingHigh = &pendingSwing{
		point: model.SwingPoint{
			Htf:       htf,
			Kind:      model.SwingHigh,
			Price:     bar.High,
			Timestamp: bar.Timestamp,
			BarIndex:  st.barIndex,
		},
		forwardLimit: forwardLimit(st.cfg),
	}
}

func testNewLowCandidate(st *htfState, htf model.Htf, bar model.Bar) {
	for _, p := range st.lookback.Items() {
		if bar.Low >= p.Low {
			return
		}
	}
	if st.pendingLow != nil && st.pendingLow.point.Price <= bar.Low {
		return
	}
	st.pendingLow = &pendingSwing{
		point: model.SwingPoint{
			Htf:       htf,
			Kind:      model.SwingLow,
			Price:     bar.Low,
			Timestamp: bar.Timestamp,
			BarIndex:  st.barIndex,
		},
		forwardLimit: forwardLimit(st.cfg),
	}
}

func confirmHigh(st *htfState, point model.SwingPoint) {
	point.Strength = forwardLimit(st.cfg)
	st.confirmedHighs = append(st.confirmedHighs, point)
	if len(st.confirmedHighs) > st.cfg.KeepRecent {
		st.confirmedHighs = st.confirmedHighs[1:]
	}
	st.metrics.SwingsConfirmed++
}

func confirmLow(st *htfState, point model.SwingPoint) {
	point.Strength = forwardLimit(st.cfg)
	st.confirmedLows = append(st.confirmedLows, point)
	if len(st.confirmedLows) > st.cfg.KeepRecent {
		st.confirmedLows = st.confirmedLows[1:]
	}
	st.metrics.SwingsConfirmed++
}

// LatestConfirmed returns the most recent confirmed swing of kind on htf, if
// any.
func (d *Detector) LatestConfirmed(htf model.Htf, kind model.SwingKind) (model.SwingPoint, bool) {
	st, err := d.state(htf)
	if err != nil {
		return model.SwingPoint{}, false
	}
	list := st.confirmedHighs
	if kind == model.SwingLow {
		list = st.confirmedLows
	}
	if len(list) == 0 {
		return model.SwingPoint{}, false
	}
	return list[len(list)-1], true
}

// NearestAbove returns the confirmed swing high closest above price, if any.
func (d *Detector) NearestAbove(htf model.Htf, price float64) (model.SwingPoint, bool) {
	st, err := d.state(htf)
	if err != nil {
		return model.SwingPoint{}, false
	}
	var best model.SwingPoint
	found := false
	for _, p := range st.confirmedHighs {
		if p.Price > price && (!found || p.Price < best.Price) {
			best = p
			found = true
		}
	}
	return best, found
}

// NearestBelow returns the confirmed swing low closest below price, if any.
func (d *Detector) NearestBelow(htf model.Htf, price float64) (model.SwingPoint, bool) {
	st, err := d.state(htf)
	if err != nil {
		return model.SwingPoint{}, false
	}
	var best model.SwingPoint
	found := false
	for _, p := range st.confirmedLows {
		if p.Price < price && (!found || p.Price > best.Price) {
			best = p
			found = true
		}
	}
	return best, found
}

// HtfSnapshot is the deep-copied per-timeframe view returned by Snapshot.
type HtfSnapshot struct {
	SwingHighs  []model.SwingPoint
	SwingLows   []model.SwingPoint
	PendingHigh *model.SwingPoint
	PendingLow  *model.SwingPoint
	Metrics     model.EngineMetrics
}

// Snapshot is the deep-copied full detector view.
type Snapshot struct {
	Symbol string
	H1     HtfSnapshot
	H4     HtfSnapshot
}

func snapshotState(st *htfState) HtfSnapshot {
	highs := make([]model.SwingPoint, len(st.confirmedHighs))
	copy(highs, st.confirmedHighs)
	sort.Slice(highs, func(i, j int) bool { return highs[i].Timestamp.Before(highs[j].Timestamp) })

	lows := make([]model.SwingPoint, len(st.confirmedLows))
	copy(lows, st.confirmedLows)
	sort.Slice(lows, func(i, j int) bool { return lows[i].Timestamp.Before(lows[j].Timestamp) })

	snap := HtfSnapshot{SwingHighs: highs, SwingLows: lows, Metrics: st.metrics}
	if st.pendingHigh != nil {
		p := st.pendingHigh.point
		snap.PendingHigh = &p
	}
	if st.pendingLow != nil {
		p := st.pendingLow.point
		snap.PendingLow = &p
	}
	return snap
}

// Snapshot returns a deep copy of the detector's current state.
func (d *Detector) Snapshot() (Snapshot, error) {
	if !d.started {
		return Snapshot{}, fmt.Errorf("%w", model.ErrNoDateStarted)
	}
	return Snapshot{
		Symbol: d.symbol,
		H1:     snapshotState(d.h1),
		H4:     snapshotState(d.h4),
	}, nil
}
