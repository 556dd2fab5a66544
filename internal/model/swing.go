package model

import "time"

// Htf is a higher timeframe tracked by the swing detector.
type Htf string

const (
	HtfH1 Htf = "H1"
	HtfH4 Htf = "H4"
)

// SwingKind distinguishes a swing high from a swing low.
type SwingKind string

const (
	SwingHigh SwingKind = "HIGH"
	SwingLow  SwingKind = "LOW"
)

// SwingPoint is a confirmed (or, transiently inside the detector, pending)
// local extremum. Immutable once confirmed: the detector never mutates a
// SwingPoint after returning it in a confirmed snapshot.
type SwingPoint struct {
	Htf       Htf
	Kind      SwingKind
	Price     float64
	Timestamp time.Time
	BarIndex  int
	Strength  int // number of confirming bars survived without invalidation
}

// SwingRange is a high/low pair used by the equilibrium classifier and as
// planner input context.
type SwingRange struct {
	High      float64
	Low       float64
	Timestamp time.Time
	Timeframe Htf
	Source    SwingRangeSource
}

// SwingRangeSource records whether a range was computed internally or
// supplied by a caller.
type SwingRangeSource string

const (
	SwingRangeComputed SwingRangeSource = "COMPUTED"
	SwingRangeProvided SwingRangeSource = "PROVIDED"
)
