package core

import (
	"fmt"
	"os"

	manifest "github.com/joeydtaylor/steeze-rhttp/pkg/manifest"
	toml "github.com/pelletier/go-toml/v2"
)

// LoadConfig reads and validates the manifest at path.
func LoadConfig(path string) (manifest.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return manifest.Config{}, fmt.Errorf("manifest: %w", err)
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return manifest.Config{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates manifest TOML. Defaults are filled in place.
func ParseConfig(b []byte) (manifest.Config, error) {
	var cfg manifest.Config
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return manifest.Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return manifest.Config{}, err
	}
	return cfg, nil
}
