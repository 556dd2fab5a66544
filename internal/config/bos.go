package config

import (
	"fmt"
	"time"

	"github.com/nicewolf/mstruct/internal/model"
)

// BosConfig configures the BOS Reversal Engine (C4).
type BosConfig struct {
	MaxWindows       int           `yaml:"max_windows"`
	DefaultDuration  time.Duration `yaml:"default_duration"`
	MinConfidence    float64       `yaml:"min_confidence"`
	VolumeWindow     int           `yaml:"volume_window"`
	MaxPivotStrength int           `yaml:"max_pivot_strength"` // saturates pivotStrength to 1.0
}

// DefaultBosConfig mirrors the teacher's conservative-default style: small
// bounded buffers, a 4h default window, and a mid-range confidence floor.
func DefaultBosConfig() BosConfig {
	return BosConfig{
		MaxWindows:       32,
		DefaultDuration:  4 * time.Hour,
		MinConfidence:    0.5,
		VolumeWindow:     20,
		MaxPivotStrength: 5,
	}
}

// Validate checks BosConfig bounds.
func (c BosConfig) Validate() error {
	if c.MaxWindows < 1 {
		return fmt.Errorf("%w: max_windows must be >= 1, got %d", model.ErrInvalidConfig, c.MaxWindows)
	}
	if c.DefaultDuration <= 0 {
		return fmt.Errorf("%w: default_duration must be positive", model.ErrInvalidConfig)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence must be in [0,1], got %v", model.ErrInvalidConfig, c.MinConfidence)
	}
	if c.VolumeWindow < 1 {
		return fmt.Errorf("%w: volume_window must be >= 1, got %d", model.ErrInvalidConfig, c.VolumeWindow)
	}
	if c.MaxPivotStrength < 1 {
		return fmt.Errorf("%w: max_pivot_strength must be >= 1, got %d", model.ErrInvalidConfig, c.MaxPivotStrength)
	}
	return nil
}
