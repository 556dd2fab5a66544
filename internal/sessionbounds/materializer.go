// Package sessionbounds implements C1, the Session Boundary Materializer:
// it converts per-symbol session windows (local HH:mm + IANA zone) into
// absolute UTC [start,end) boundaries for a given local trading date.
package sessionbounds

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/model"
)

const dateLayout = "2006-01-02"

// Materialize converts cfg's session windows into ordered, non-overlapping
// SessionBoundary values for dateLocal ("YYYY-MM-DD"); overlapping windows
// are rejected with ErrInvalidConfig. DST is resolved by wallTime: a wall
// time inside a spring-forward gap advances to the first instant after the
// gap, and an ambiguous fall-back wall time resolves to its first occurrence.
func Materialize(dateLocal string, cfg config.SymbolSessionsConfig) ([]model.SessionBoundary, error) {
	date, err := time.Parse(dateLayout, dateLocal)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidDateFormat, dateLocal)
	}
	if len(cfg.Windows) == 0 {
		return nil, fmt.Errorf("%w", model.ErrEmptyWindows)
	}

	boundaries := make([]model.SessionBoundary, 0, len(cfg.Windows))
	for _, w := range cfg.Windows {
		loc, err := time.LoadLocation(w.TzIana)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", model.ErrUnknownTimezone, w.TzIana)
		}
		startH, startM, err := parseHHMM(w.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: start %q", model.ErrInvalidTimeFormat, w.Start)
		}
		endH, endM, err := parseHHMM(w.End)
		if err != nil {
			return nil, fmt.Errorf("%w: end %q", model.ErrInvalidTimeFormat, w.End)
		}

		endDate := date
		if w.CrossesMidnight() {
			endDate = date.AddDate(0, 0, 1)
		}

		start := wallTime(date, startH, startM, loc)
		end := wallTime(endDate, endH, endM, loc)

		startUTC := start.UTC()
		endUTC := end.UTC()
		if !startUTC.Before(endUTC) {
			return nil, fmt.Errorf("%w: session %s resolved start %s not before end %s",
				model.ErrInvalidConfig, w.Name, startUTC, endUTC)
		}

		boundaries = append(boundaries, model.SessionBoundary{
			Name:  w.Name,
			Start: startUTC,
			End:   endUTC,
		})
	}

	sort.Slice(boundaries, func(i, j int) bool {
		return boundaries[i].Start.Before(boundaries[j].Start)
	})
	for i := 1; i < len(boundaries); i++ {
		if boundaries[i].Start.Before(boundaries[i-1].End) {
			return nil, fmt.Errorf("%w: sessions %s and %s overlap",
				model.ErrInvalidConfig, boundaries[i-1].Name, boundaries[i].Name)
		}
	}
	return boundaries, nil
}

// wallTime resolves the local wall-clock time h:m on day's date in loc. A
// wall time inside a spring-forward gap resolves to the first instant after
// the gap; a wall time repeated by a fall-back transition resolves to its
// first occurrence.
func wallTime(day time.Time, h, m int, loc *time.Location) time.Time {
	want := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
	t := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc)
	got := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	zoneStart, zoneEnd := t.ZoneBounds()
	switch {
	case got.Before(want): // gap, resolved into the zone before the transition
		return zoneEnd
	case got.After(want): // gap, resolved into the zone after the transition
		return zoneStart
	}
	if !zoneStart.IsZero() {
		_, prevOffset := zoneStart.Add(-time.Second).Zone()
		if earlier := want.Add(-time.Duration(prevOffset) * time.Second); earlier.Before(t) && earlier.Before(zoneStart) {
			return earlier
		}
	}
	return t
}

func parseHHMM(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:mm, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
