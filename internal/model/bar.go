package model

import (
	"fmt"
	"math"
	"time"
)

// Bar is the only input event type the core consumes: a single OHLCV
// candle already bucketed to its timeframe by an external aggregator.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Equal is field-wise equality, used by C2's idempotent-replay check. No
// epsilon tolerance: upstream duplicates are expected to be bit-identical.
func (b Bar) Equal(o Bar) bool {
	return b.Timestamp.Equal(o.Timestamp) &&
		b.Open == o.Open &&
		b.High == o.High &&
		b.Low == o.Low &&
		b.Close == o.Close &&
		b.Volume == o.Volume
}

// Validate enforces the OHLCV invariants from spec §3: low <= min(open,close)
// <= max(open,close) <= high, non-negative volume, finite values, and a
// non-zero timestamp.
func (b Bar) Validate() error {
	if b.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidBar)
	}
	for name, v := range map[string]float64{
		"open": b.Open, "high": b.High, "low": b.Low, "close": b.Close, "volume": b.Volume,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidBar, name)
		}
	}
	if b.Volume < 0 {
		return fmt.Errorf("%w: negative volume %v", ErrInvalidBar, b.Volume)
	}
	lo := math.Min(b.Open, b.Close)
	hi := math.Max(b.Open, b.Close)
	if !(b.Low <= lo && lo <= hi && hi <= b.High) {
		return fmt.Errorf("%w: OHLC ordering violated (low=%v open=%v close=%v high=%v)",
			ErrInvalidBar, b.Low, b.Open, b.Close, b.High)
	}
	return nil
}
