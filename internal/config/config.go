// Package config loads interpreter and CLI settings from a YAML file.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no --config flag is given.
const DefaultFile = ".script.yaml"

// Config is the full set of tunables.
type Config struct {
	// MaxDepth bounds nested function and method calls.
	MaxDepth int `yaml:"max_depth"`
	// Color enables ANSI colors in diagnostics and the REPL prompt.
	Color bool `yaml:"color"`
	// Prompt is the REPL prompt.
	Prompt string `yaml:"prompt"`
	// HistoryFile stores REPL history; empty disables it.
	HistoryFile string `yaml:"history_file"`
	// Verbose is the glog verbosity level.
	Verbose int `yaml:"verbose"`
	// LogToStderr sends glog output to stderr instead of files.
	LogToStderr bool `yaml:"logtostderr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxDepth: 1000,
		Color:    true,
		Prompt:   "script> ",
	}
}

// Load reads path over the defaults. A missing file is not an error when optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return Default(), errors.Wrapf(err, "loading config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping the values of keys that are absent, and validates
// the result. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF { // an empty document keeps the defaults
		return errors.Wrap(err, "decoding YAML")
	}
	return cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MaxDepth <= 0 {
		return errors.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.Verbose < 0 {
		return errors.Errorf("verbose must not be negative, got %d", c.Verbose)
	}
	return nil
}
