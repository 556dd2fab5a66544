package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nicewolf/mstruct/internal/model"
)

// SymbolSessionsConfig is the per-symbol session configuration consumed by
// the Session Boundary Materializer (C1).
type SymbolSessionsConfig struct {
	Symbol   string               `yaml:"symbol"`
	TickSize float64              `yaml:"tick_size"`
	Windows  []model.SessionWindow `yaml:"windows"`
}

// DefaultUSIndexFutures returns the ES/NQ session defaults named in spec §6:
// ASIA 18:00->03:00, LONDON 03:00->09:30, NY 09:30->16:00, all Chicago local.
func DefaultUSIndexFutures(symbol string, tickSize float64) SymbolSessionsConfig {
	const chicago = "America/Chicago"
	return SymbolSessionsConfig{
		Symbol:   symbol,
		TickSize: tickSize,
		Windows: []model.SessionWindow{
			{Name: model.SessionAsia, Start: "18:00", End: "03:00", TzIana: chicago},
			{Name: model.SessionLondon, Start: "03:00", End: "09:30", TzIana: chicago},
			{Name: model.SessionNY, Start: "09:30", End: "16:00", TzIana: chicago},
		},
	}
}

// LoadSymbolSessionsConfig loads and validates a SymbolSessionsConfig from a
// YAML file.
func LoadSymbolSessionsConfig(path string) (*SymbolSessionsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions config: %w", err)
	}
	var cfg SymbolSessionsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sessions config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sessions config: %w", err)
	}
	return &cfg, nil
}

// Validate ensures the configuration has at least one window and a positive
// tick size.
func (c SymbolSessionsConfig) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", model.ErrInvalidConfig)
	}
	if len(c.Windows) == 0 {
		return fmt.Errorf("%w", model.ErrEmptyWindows)
	}
	if c.TickSize <= 0 {
		return fmt.Errorf("%w: tick_size must be positive, got %v", model.ErrInvalidConfig, c.TickSize)
	}
	for _, w := range c.Windows {
		if w.Start == "" || w.End == "" {
			return fmt.Errorf("%w: window %s missing start/end", model.ErrInvalidTimeFormat, w.Name)
		}
		if w.TzIana == "" {
			return fmt.Errorf("%w: window %s missing tz_iana", model.ErrUnknownTimezone, w.Name)
		}
	}
	return nil
}
