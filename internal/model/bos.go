package model

import "time"

// Direction is the expected break direction of a BOS window.
type Direction string

const (
	DirectionBull Direction = "BULL"
	DirectionBear Direction = "BEAR"
)

// BosWindowStatus is the lifecycle state of a BosWindow. Transitions only
// ever go OPEN -> CLOSED_TRIGGERED or OPEN -> CLOSED_EXPIRED.
type BosWindowStatus string

const (
	BosOpen            BosWindowStatus = "OPEN"
	BosClosedTriggered BosWindowStatus = "CLOSED_TRIGGERED"
	BosClosedExpired   BosWindowStatus = "CLOSED_EXPIRED"
)

// BosWindow is a time-bounded watch anchored to a reference pivot. Id is not
// one of the contractual identifiers in spec §6, so implementations are free
// to generate it (this one uses a UUID).
type BosWindow struct {
	ID              string
	ReferencePivot  SwingPoint
	Direction       Direction
	OpenedAt        time.Time
	ExpiresAt       time.Time
	Status          BosWindowStatus
}

// BosSignal is emitted exactly once per triggered window and is immutable
// thereafter (non-repainting guarantee).
type BosSignal struct {
	WindowID       string
	ReferencePivot SwingPoint
	Direction      Direction
	TriggerBar     Bar
	Confidence     float64
	Strength       float64
	EmittedAt      time.Time
}
