// Package config loads engine/evaluation settings from a YAML document
// (SPEC_FULL.md §3 "Configuration"), generalizing the teacher's
// evaluator.Config/interp.Options pattern into a serializable form.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/cadkit/kcl-core/internal/evaluator"
)

// Config is the on-disk shape of a kcl-core configuration file.
type Config struct {
	Units          string `yaml:"units"`
	HighlightEdges bool   `yaml:"highlightEdges"`
	MaxCallDepth   int    `yaml:"maxCallDepth"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{Units: "mm", HighlightEdges: false, MaxCallDepth: 64}
}

// Load reads and parses a YAML configuration file at path.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// EvaluatorSettings adapts Config to the evaluator's Settings shape.
func (c Config) EvaluatorSettings() evaluator.Settings {
	return evaluator.Settings{Units: c.Units, HighlightEdges: c.HighlightEdges, MaxCallDepth: c.MaxCallDepth}
}
