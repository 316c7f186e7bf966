// Package config loads the runtime configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rawbytedev/hexscriptex/pkg/forms"
)

const (
	// regular plugins take mod indices 0x00 to 0xFD
	maxPlugins      = int(forms.LightModIndex)
	maxLightPlugins = 0x1000
)

// Config collects all configuration options.
type Config struct {
	Log       Log       `yaml:"log"`
	Cosave    Cosave    `yaml:"cosave"`
	LoadOrder LoadOrder `yaml:"loadOrder"`
	Forms     []Form    `yaml:"forms"`
}

type Cosave struct {
	Compression Compression `yaml:"compression"`
}

// LoadOrder lists the active plugins in mod index order.
type LoadOrder struct {
	Plugins []string `yaml:"plugins"`
	Light   []string `yaml:"light"`
}

func (c LoadOrder) Build() forms.LoadOrder {
	return forms.LoadOrder{Plugins: c.Plugins, Light: c.Light}
}

// Form declares a form that exists in the session.
type Form struct {
	ID       uint32 `yaml:"id"`
	EditorID string `yaml:"editorId"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: Log{Level: "info"},
		Cosave: Cosave{
			Compression: Compression{Type: "none", Config: noCompression{}},
		},
	}
}

// Load reads the file at path on top of the defaults and validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}

	if c.Cosave.Compression.Type == "" || c.Cosave.Compression.Config == nil {
		return fmt.Errorf("cosave compression type is required")
	}

	if err := c.Cosave.Compression.Config.Validate(); err != nil {
		return err
	}

	if err := c.LoadOrder.Validate(); err != nil {
		return err
	}

	seen := make(map[uint32]bool, len(c.Forms))
	for _, f := range c.Forms {
		if f.ID == 0 {
			return fmt.Errorf("form %q: id is required", f.EditorID)
		}
		if seen[f.ID] {
			return fmt.Errorf("form %s declared twice", forms.FormID(f.ID))
		}
		seen[f.ID] = true
	}

	return nil
}

func (c LoadOrder) Validate() error {
	if len(c.Plugins) > maxPlugins {
		return fmt.Errorf("too many plugins: %d (max %d)", len(c.Plugins), maxPlugins)
	}

	if len(c.Light) > maxLightPlugins {
		return fmt.Errorf("too many light plugins: %d (max %d)", len(c.Light), maxLightPlugins)
	}

	seen := make(map[string]bool, len(c.Plugins)+len(c.Light))
	for _, name := range append(append([]string{}, c.Plugins...), c.Light...) {
		if name == "" {
			return fmt.Errorf("plugin name is required")
		}
		if seen[name] {
			return fmt.Errorf("plugin %s listed twice", name)
		}
		seen[name] = true
	}

	return nil
}

// FormTable builds the session's form table from the declared forms.
func (c Config) FormTable() (*forms.Table, error) {
	table := forms.NewTable()
	for _, f := range c.Forms {
		if err := table.Add(&forms.Form{ID: forms.FormID(f.ID), EditorID: f.EditorID}); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// rawConfig is a general struct to be used by other config structs to unmarshal yaml config first.
type rawConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}
