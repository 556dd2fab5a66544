package model

import "time"

// SessionName identifies one of the three tracked trading sessions.
type SessionName string

const (
	SessionAsia   SessionName = "ASIA"
	SessionLondon SessionName = "LONDON"
	SessionNY     SessionName = "NY"
)

// SessionWindow is a local, timezone-relative session definition. End may be
// lexicographically earlier than Start to denote a session crossing local
// midnight (e.g. ASIA 18:00->03:00).
type SessionWindow struct {
	Name   SessionName `yaml:"name"`
	Start  string      `yaml:"start"` // "HH:mm"
	End    string      `yaml:"end"`   // "HH:mm"
	TzIana string      `yaml:"tz_iana"`
}

// CrossesMidnight reports whether End is textually not-after Start, which
// spec §3 defines as the midnight-crossing case.
func (w SessionWindow) CrossesMidnight() bool {
	return w.End <= w.Start
}

// SessionBoundary is a materialized, absolute UTC [Start,End) window for one
// session on one local trading date.
type SessionBoundary struct {
	Name  SessionName
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in [Start,End).
func (b SessionBoundary) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}
