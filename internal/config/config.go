// Package config loads driver settings from a .ptest.yaml file.
//
// Example:
//
//	format: text        # text | json
//	filter: Fixture     # default substring filter
//	verbose: false
//	trace: true         # capture stacks on failure
//	no_color: false
//	history: .ptest/history.db
//
// Command-line flags override any value set here.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory when no
// path is given.
const DefaultPath = ".ptest.yaml"

// ValidFormats defines the allowed report formats.
var ValidFormats = []string{"text", "json"}

// Config holds driver settings.
type Config struct {
	// Format selects the report format: "text" or "json".
	Format string `yaml:"format"`

	// Filter restricts the run to tests whose name contains it.
	Filter string `yaml:"filter,omitempty"`

	Verbose bool `yaml:"verbose"`
	Trace   bool `yaml:"trace"`
	NoColor bool `yaml:"no_color"`

	// History is the path of the SQLite run-history database. Empty disables
	// recording.
	History string `yaml:"history,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{Format: "text"}
}

// Load reads the config file at path over the defaults.
//
// With an empty path, DefaultPath is tried and a missing file yields the
// defaults. An explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, rejecting unknown keys, and validates the result.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// An empty document leaves the defaults in place.
		if errors.Is(err, io.EOF) {
			return cfg.Validate()
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg.Validate()
}

// Validate checks field values.
func (c Config) Validate() error {
	if !IsValidFormat(c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	return nil
}

// IsValidFormat checks if the format is one of the allowed values.
func IsValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
