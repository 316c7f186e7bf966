package config

import (
	"fmt"

	"go.uber.org/zap"
)

// Log is the logger configuration.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
}

func (c Log) Validate() error {
	if c.Level == "" {
		return nil
	}

	if _, err := zap.ParseAtomicLevel(c.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// Build creates a production logger, or a development one if configured,
// writing to File when set.
func (c Log) Build() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if c.Development {
		cfg = zap.NewDevelopmentConfig()
	}

	if c.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		cfg.Level = level
	}

	if c.File != "" {
		cfg.OutputPaths = []string{c.File}
	}

	return cfg.Build()
}
