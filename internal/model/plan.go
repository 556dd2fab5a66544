package model

import (
	"fmt"
	"time"
)

// PlanDirection is the side of a PlanTarget relative to currentRef.
type PlanDirection string

const (
	PlanUp   PlanDirection = "UP"
	PlanDown PlanDirection = "DOWN"
)

// PlanTargetStatus is the runtime lifecycle of a single PlanTarget. Every
// transition other than the two below fails with ErrIllegalStatusTransition:
//
//	PENDING -> HIT -> CONSUMED
//	PENDING -> INVALIDATED
type PlanTargetStatus string

const (
	StatusPending     PlanTargetStatus = "PENDING"
	StatusHit         PlanTargetStatus = "HIT"
	StatusConsumed    PlanTargetStatus = "CONSUMED"
	StatusInvalidated PlanTargetStatus = "INVALIDATED"
)

// CanTransitionTo reports whether the status change is legal per spec §4.6.
func (s PlanTargetStatus) CanTransitionTo(next PlanTargetStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusHit || next == StatusInvalidated
	case StatusHit:
		return next == StatusConsumed
	default:
		return false
	}
}

// PlanTarget is a single ranked price target produced by the Daily Bias
// Planner (C6).
type PlanTarget struct {
	Level     KeyLevel
	Direction PlanDirection
	Distance  float64
	Priority  float64
	Band      *LevelBand
	Status    PlanTargetStatus
}

// Plan is the immutable (except per-target Status) ranked output of C6 for
// one symbol and local trading date.
type Plan struct {
	ID         string
	Symbol     string
	DateLocal  string
	CurrentRef float64
	CreatedAt  time.Time
	UpTargets  []PlanTarget
	DownTargets []PlanTarget
	Rules      []string
	Meta       PlanMeta
}

// PlanMeta carries audit metadata alongside a Plan.
type PlanMeta struct {
	Tz         string
	TickSize   float64
	SourceBars *int
}

// NewPlanID builds the contractual "{symbol}:{YYYY-MM-DD}" identifier.
func NewPlanID(symbol, dateLocal string) string {
	return fmt.Sprintf("%s:%s", symbol, dateLocal)
}
