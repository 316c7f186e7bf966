package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/hexscriptex/pkg/cosave"
)

// Compression is the configuration for the co-save body compression.
type Compression struct {
	Type   string `yaml:"type"`
	Config CompressionFactory
}

func (c *Compression) UnmarshalYAML(value *yaml.Node) error {
	var rawConfig rawConfig

	err := value.Decode(&rawConfig)
	if err != nil {
		return err
	}

	var config CompressionFactory

	switch rawConfig.Type {
	case "none":
		config = noCompression{}

	case "zstd":
		var factory zstdCompression

		err := decode(rawConfig.Config, &factory)
		if err != nil {
			return err
		}

		config = factory

	default:
		return fmt.Errorf("unknown compression type: %s", rawConfig.Type)
	}

	c.Type = rawConfig.Type
	c.Config = config

	return nil
}

// CompressionFactory creates the co-save writer options for a compression type.
type CompressionFactory interface {
	CreateWriterOptions() ([]cosave.WriterOption, error)
	Validate() error
}

type noCompression struct{}

func (noCompression) CreateWriterOptions() ([]cosave.WriterOption, error) { return nil, nil }

func (noCompression) Validate() error { return nil }

type zstdCompression struct {
	Level string `mapstructure:"level"`
}

func (c zstdCompression) CreateWriterOptions() ([]cosave.WriterOption, error) {
	level, err := cosave.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	return []cosave.WriterOption{cosave.WithCompression(level)}, nil
}

func (c zstdCompression) Validate() error {
	_, err := cosave.ParseLevel(c.Level)

	return err
}
