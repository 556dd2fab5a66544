package sessionbounds_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/model"
	"github.com/nicewolf/mstruct/internal/sessionbounds"
)

func TestMaterialize_USIndexFuturesDefaults(t *testing.T) {
	cfg := config.DefaultUSIndexFutures("ES", 0.25)

	boundaries, err := sessionbounds.Materialize("2024-01-15", cfg)
	require.NoError(t, err)
	require.Len(t, boundaries, 3)

	// Sorted ascending by start: ASIA opens on the evening of the trading
	// date, so it sorts last, after LONDON and NY.
	for i := 1; i < len(boundaries); i++ {
		assert.True(t, boundaries[i-1].Start.Before(boundaries[i].Start))
	}
	for _, b := range boundaries {
		assert.True(t, b.Start.Before(b.End), "session %s must have start < end", b.Name)
	}
}

func TestMaterialize_MidnightCrossingAsiaSession(t *testing.T) {
	cfg := config.DefaultUSIndexFutures("ES", 0.25)
	boundaries, err := sessionbounds.Materialize("2024-01-15", cfg)
	require.NoError(t, err)

	var asia model.SessionBoundary
	for _, b := range boundaries {
		if b.Name == model.SessionAsia {
			asia = b
		}
	}
	require.NotZero(t, asia.Start)

	// 19:00 Chicago on 2024-01-15 is within ASIA (which opens 18:00).
	loc, _ := time.LoadLocation("America/Chicago")
	insideLocal := time.Date(2024, 1, 15, 19, 0, 0, 0, loc)
	assert.True(t, asia.Contains(insideLocal.UTC()))

	// 19:00 Chicago on 2024-01-14 (the prior day) is not part of this
	// trading date's ASIA boundary.
	priorDayLocal := time.Date(2024, 1, 14, 19, 0, 0, 0, loc)
	assert.False(t, asia.Contains(priorDayLocal.UTC()))
}

func TestMaterialize_DSTSpringForward(t *testing.T) {
	// 2024-03-10 is the US spring-forward date: 02:00 local does not exist.
	cfg := config.SymbolSessionsConfig{
		Symbol:   "ES",
		TickSize: 0.25,
		Windows: []model.SessionWindow{
			{Name: model.SessionNY, Start: "01:30", End: "02:30", TzIana: "America/Chicago"},
		},
	}
	boundaries, err := sessionbounds.Materialize("2024-03-10", cfg)
	require.NoError(t, err)
	require.Len(t, boundaries, 1)
	b := boundaries[0]
	assert.True(t, b.Start.Before(b.End))
	// The gap is one hour; a naive 02:30 normalizes forward, shortening the
	// session rather than producing an earlier-than-start end.
	assert.LessOrEqual(t, b.End.Sub(b.Start), time.Hour)
}

func TestMaterialize_DSTFallBack(t *testing.T) {
	// 2024-11-03 is the US fall-back date: 01:30 local occurs twice.
	cfg := config.SymbolSessionsConfig{
		Symbol:   "ES",
		TickSize: 0.25,
		Windows: []model.SessionWindow{
			{Name: model.SessionNY, Start: "01:00", End: "01:30", TzIana: "America/Chicago"},
		},
	}
	boundaries, err := sessionbounds.Materialize("2024-11-03", cfg)
	require.NoError(t, err)
	require.Len(t, boundaries, 1)
	assert.True(t, boundaries[0].Start.Before(boundaries[0].End))
}

func TestMaterialize_Errors(t *testing.T) {
	cfg := config.DefaultUSIndexFutures("ES", 0.25)

	_, err := sessionbounds.Materialize("01/15/2024", cfg)
	assert.ErrorIs(t, err, model.ErrInvalidDateFormat)

	empty := config.SymbolSessionsConfig{Symbol: "ES", TickSize: 0.25}
	_, err = sessionbounds.Materialize("2024-01-15", empty)
	assert.ErrorIs(t, err, model.ErrEmptyWindows)

	badTz := config.SymbolSessionsConfig{
		Symbol:   "ES",
		TickSize: 0.25,
		Windows: []model.SessionWindow{
			{Name: model.SessionNY, Start: "09:30", End: "16:00", TzIana: "Not/AZone"},
		},
	}
	_, err = sessionbounds.Materialize("2024-01-15", badTz)
	assert.ErrorIs(t, err, model.ErrUnknownTimezone)

	badTime := config.SymbolSessionsConfig{
		Symbol:   "ES",
		TickSize: 0.25,
		Windows: []model.SessionWindow{
			{Name: model.SessionNY, Start: "9:30am", End: "16:00", TzIana: "America/Chicago"},
		},
	}
	_, err = sessionbounds.Materialize("2024-01-15", badTime)
	assert.ErrorIs(t, err, model.ErrInvalidTimeFormat)
}
