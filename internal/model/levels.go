package model

import (
	"fmt"
	"math"
	"time"
)

// SessionLevels is the per-session high/low state maintained by C2. High/Low
// are NaN-sentinel until the first in-window bar is accepted.
type SessionLevels struct {
	Session  SessionName
	High     float64
	Low      float64
	HighTime time.Time
	LowTime  time.Time
}

// NewSessionLevels returns the NaN-sentinel zero state for a session.
func NewSessionLevels(session SessionName) SessionLevels {
	return SessionLevels{
		Session: session,
		High:    math.NaN(),
		Low:     math.NaN(),
	}
}

// HasData reports whether any bar has updated this session yet.
func (l SessionLevels) HasData() bool {
	return !math.IsNaN(l.High)
}

// KeyLevelKind enumerates the origin/shape of a KeyLevel.
type KeyLevelKind string

const (
	KindSessionHigh KeyLevelKind = "SESSION_HIGH"
	KindSessionLow  KeyLevelKind = "SESSION_LOW"
	KindH1High      KeyLevelKind = "H1_HIGH"
	KindH1Low       KeyLevelKind = "H1_LOW"
	KindH4High      KeyLevelKind = "H4_HIGH"
	KindH4Low       KeyLevelKind = "H4_LOW"
)

// KeyLevelSource is the engine family a KeyLevel was sourced from.
type KeyLevelSource string

const (
	SourceSession KeyLevelSource = "SESSION"
	SourceH1      KeyLevelSource = "H1"
	SourceH4      KeyLevelSource = "H4"
)

// KeyLevel is a generic price level fed into the Daily Bias Planner (C6).
// Id is part of the external contract (spec §6) and MUST follow the
// "{symbol}:{kind}:{epochMs}" format, with session levels additionally
// embedding the session name.
type KeyLevel struct {
	ID     string
	Symbol string
	Kind   KeyLevelKind
	Source KeyLevelSource
	Price  float64
	Time   time.Time
	Meta   map[string]string
}

// NewKeyLevelID builds the contractual deterministic identifier.
func NewKeyLevelID(symbol string, kind KeyLevelKind, t time.Time, session SessionName) string {
	if kind == KindSessionHigh || kind == KindSessionLow {
		return fmt.Sprintf("%s:%s:%s:%d", symbol, kind, session, t.UnixMilli())
	}
	return fmt.Sprintf("%s:%s:%d", symbol, kind, t.UnixMilli())
}

// LevelBand is a confluence of nearby KeyLevels merged during C6 banding.
type LevelBand struct {
	Top          float64
	Bottom       float64
	AvgPrice     float64
	Constituents []string // KeyLevel IDs
}

// IsConfluence reports whether the band actually merged more than one level.
func (b LevelBand) IsConfluence() bool {
	return len(b.Constituents) > 1
}
