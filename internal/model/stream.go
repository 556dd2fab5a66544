package model

// StreamEngine is the capability set shared by C2 and C3: engines driven by
// start_date -> many on_bar -> end_date. Expressed as an interface rather
// than shared inheritance per DESIGN NOTES §9 ("dynamic dispatch / interface
// families"). Snapshot and EndDate return engine-specific types, so only the
// common entry point is captured here; concrete engines satisfy it
// structurally and callers that only need to (re)start a date can depend on
// this instead of a concrete type.
type StreamEngine interface {
	StartDate(dateLocal string) error
}

// EngineMetrics are the performance counters referenced by spec §4.3 ("bar
// counter, performance counters") and §4.4 ("rolling volume statistics...
// total bars processed and signals emitted") without naming a concrete
// shape. Every engine that tracks counters returns a copy of this struct.
type EngineMetrics struct {
	BarsAccepted     int
	BarsRejected     int
	BarsIgnored      int
	SwingsConfirmed  int
	WindowsOpened    int
	WindowsTriggered int
	WindowsExpired   int
}
