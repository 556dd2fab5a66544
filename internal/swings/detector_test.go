package swings_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicewolf/mstruct/internal/config"
	"github.com/nicewolf/mstruct/internal/model"
	"github.com/nicewolf/mstruct/internal/swings"
)

func hourBar(hour int, high, low float64) model.Bar {
	ts := time.Date(2024, 1, 15, hour, 0, 0, 0, time.UTC)
	mid := (high + low) / 2
	return model.Bar{Timestamp: ts, Open: mid, High: high, Low: low, Close: mid, Volume: 100}
}

func TestDetector_PeakConfirmationH1(t *testing.T) {
	// Spec §8 scenario 1's exact 4-bar fixture: no leading bar is prepended,
	// so the lookback ring starts empty and the first bars are tested as
	// candidates against whatever (possibly zero) preceding bars exist.
	cfg := config.HtfSwingConfig{
		H1: config.SwingConfig{Lookback: 2, Confirm: 0, KeepRecent: 10},
		H4: config.SwingConfig{Lookback: 2, Confirm: 0, KeepRecent: 10},
	}
	d := swings.NewDetector("ES", cfg)
	require.NoError(t, d.StartDate("2024-01-15"))

	bars := []model.Bar{
		hourBar(10, 4505, 4505),
		hourBar(11, 4520, 4520),
		hourBar(12, 4518, 4518),
		hourBar(13, 4515, 4515),
	}
	for _, b := range bars {
		require.NoError(t, d.OnBar(model.HtfH1, b))
	}

	snap, err := d.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.H1.SwingHighs, 1)
	assert.Equal(t, 4520.0, snap.H1.SwingHighs[0].Price)
	assert.Equal(t, bars[1].Timestamp, snap.H1.SwingHighs[0].Timestamp)
}

func TestDetector_NonRepaintingOnceConfirmed(t *testing.T) {
	cfg := config.DefaultHtfSwingConfig()
	cfg.H1 = config.SwingConfig{Lookback: 1, Confirm: 1, KeepRecent: 10}
	d := swings.NewDetector("ES", cfg)
	require.NoError(t, d.StartDate("2024-01-15"))

	bars := []model.Bar{
		hourBar(9, 4490, 4480),
		hourBar(10, 4520, 4500), // candidate peak
		hourBar(11, 4510, 4495),
		hourBar(12, 4505, 4490), // confirms (L=1 then C=1 additional)
	}
	for _, b := range bars {
		require.NoError(t, d.OnBar(model.HtfH1, b))
	}
	snap1, err := d.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap1.H1.SwingHighs, 1)
	confirmed := snap1.H1.SwingHighs[0]

	// Feed more bars; the confirmed swing must never change.
	for i := 13; i < 20; i++ {
		require.NoError(t, d.OnBar(model.HtfH1, hourBar(i, 4000+float64(i), 3990+float64(i))))
	}
	snap2, err := d.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap2.H1.SwingHighs, 1)
	assert.Equal(t, confirmed, snap2.H1.SwingHighs[0])
}

func TestDetector_KeepRecentEviction(t *testing.T) {
	cfg := config.HtfSwingConfig{
		H1: config.SwingConfig{Lookback: 1, Confirm: 0, KeepRecent: 2},
		H4: config.DefaultHtfSwingConfig().H4,
	}
	d := swings.NewDetector("ES", cfg)
	require.NoError(t, d.StartDate("2024-01-15"))

	// Three ascending local peaks, each isolated by a dip, to confirm three
	// swing highs in sequence.
	bars := []model.Bar{
		hourBar(0, 100, 90),
		hourBar(1, 110, 95), // peak1
		hourBar(2, 90, 80),  // confirms peak1 (L=1,C=0)
		hourBar(3, 120, 95), // peak2
		hourBar(4, 90, 80),  // confirms peak2
		hourBar(5, 130, 95), // peak3
		hourBar(6, 90, 80),  // confirms peak3
	}
	for _, b := range bars {
		require.NoError(t, d.OnBar(model.HtfH1, b))
	}
	snap, err := d.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.H1.SwingHighs, 2, "ring should retain only the most recent KeepRecent confirmed swings")
	assert.Equal(t, 120.0, snap.H1.SwingHighs[0].Price)
	assert.Equal(t, 130.0, snap.H1.SwingHighs[1].Price)
}

func TestDetector_NearestAboveBelow(t *testing.T) {
	cfg := config.HtfSwingConfig{
		H1: config.SwingConfig{Lookback: 1, Confirm: 0, KeepRecent: 10},
		H4: config.DefaultHtfSwingConfig().H4,
	}
	d := swings.NewDetector("ES", cfg)
	require.NoError(t, d.StartDate("2024-01-15"))

	bars := []model.Bar{
		hourBar(0, 100, 90),
		hourBar(1, 110, 95),
		hourBar(2, 90, 70), // confirms high@110, low candidate 70
		hourBar(3, 95, 80), // confirms low@70
	}
	for _, b := range bars {
		require.NoError(t, d.OnBar(model.HtfH1, b))
	}

	above, ok := d.NearestAbove(model.HtfH1, 50)
	require.True(t, ok)
	assert.Equal(t, 110.0, above.Price)

	below, ok := d.NearestBelow(model.HtfH1, 200)
	require.True(t, ok)
	assert.Equal(t, 90.0, below.Price)
}

func TestDetector_NoDateStarted(t *testing.T) {
	d := swings.NewDetector("ES", config.DefaultHtfSwingConfig())
	err := d.OnBar(model.HtfH1, hourBar(0, 1, 0))
	assert.ErrorIs(t, err, model.ErrNoDateStarted)
}
