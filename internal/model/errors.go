package model

import "errors"

// Sentinel errors for the strategy core's error taxonomy. Engines wrap these
// with fmt.Errorf("...: %w", Err...) to add context; callers compare with
// errors.Is.
var (
	ErrInvalidConfig          = errors.New("invalid config")
	ErrInvalidDateFormat      = errors.New("invalid date format")
	ErrUnknownTimezone        = errors.New("unknown timezone")
	ErrInvalidTimeFormat      = errors.New("invalid time format")
	ErrEmptyWindows           = errors.New("empty session windows")
	ErrInvalidBar             = errors.New("invalid bar")
	ErrOutOfOrderBar          = errors.New("out of order bar")
	ErrNoDateStarted          = errors.New("no date started")
	ErrIllegalStatusTransition = errors.New("illegal status transition")
	ErrInvalidRange           = errors.New("invalid range")
)
