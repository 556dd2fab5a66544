package config

import (
	"fmt"

	"github.com/nicewolf/mstruct/internal/model"
)

// SwingConfig configures the HTF Swing Detector (C3) for a single
// higher timeframe.
type SwingConfig struct {
	Lookback   int  `yaml:"lookback"`    // L >= 1
	Confirm    int  `yaml:"confirm"`     // C >= 0
	KeepRecent int  `yaml:"keep_recent"` // K >= 1
	Aggregate  bool `yaml:"aggregate"`
	BaseTf     string `yaml:"base_tf"`
}

// HtfSwingConfig bundles SwingConfig per tracked higher timeframe.
type HtfSwingConfig struct {
	H1 SwingConfig `yaml:"h1"`
	H4 SwingConfig `yaml:"h4"`
}

// DefaultHtfSwingConfig returns conservative defaults: 2-bar lookback with
// immediate confirmation and a 50-swing retention window per HTF.
func DefaultHtfSwingConfig() HtfSwingConfig {
	def := SwingConfig{Lookback: 2, Confirm: 0, KeepRecent: 50}
	return HtfSwingConfig{H1: def, H4: def}
}

// Validate checks the per-HTF bounds named in spec §4.3.
func (c SwingConfig) Validate() error {
	if c.Lookback < 1 {
		return fmt.Errorf("%w: lookback must be >= 1, got %d", model.ErrInvalidConfig, c.Lookback)
	}
	if c.Confirm < 0 {
		return fmt.Errorf("%w: confirm must be >= 0, got %d", model.ErrInvalidConfig, c.Confirm)
	}
	if c.KeepRecent < 1 {
		return fmt.Errorf("%w: keep_recent must be >= 1, got %d", model.ErrInvalidConfig, c.KeepRecent)
	}
	return nil
}

func (c HtfSwingConfig) Validate() error {
	if err := c.H1.Validate(); err != nil {
		return fmt.Errorf("h1: %w", err)
	}
	if err := c.H4.Validate(); err != nil {
		return fmt.Errorf("h4: %w", err)
	}
	return nil
}
