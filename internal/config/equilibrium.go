package config

import (
	"fmt"

	"github.com/nicewolf/mstruct/internal/model"
)

// EquilibriumConfig configures the pure C5 classifier.
type EquilibriumConfig struct {
	Threshold    float64 `yaml:"threshold"`
	MinRangeSize float64 `yaml:"min_range_size"`
	Precision    int     `yaml:"precision"`
}

// DefaultEquilibriumConfig matches spec §4.5's stated defaults.
func DefaultEquilibriumConfig() EquilibriumConfig {
	return EquilibriumConfig{Threshold: 0.02, MinRangeSize: 5, Precision: 6}
}

// Validate checks EquilibriumConfig bounds.
func (c EquilibriumConfig) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("%w: threshold must be >= 0, got %v", model.ErrInvalidConfig, c.Threshold)
	}
	if c.MinRangeSize < 0 {
		return fmt.Errorf("%w: min_range_size must be >= 0, got %v", model.ErrInvalidConfig, c.MinRangeSize)
	}
	if c.Precision < 0 {
		return fmt.Errorf("%w: precision must be >= 0, got %d", model.ErrInvalidConfig, c.Precision)
	}
	return nil
}
