package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"k4edit/k4"
)

// configEnv names the environment variable consulted when no -config flag
// is given.
const configEnv = "K4EDIT_CONFIG"

const outputAuto = "auto"

type Config struct {
	Verbose         bool   `yaml:"verbose"`
	OutputFormat    string `yaml:"output_format"`
	StrictChecksums bool   `yaml:"strict_checksums"`
	Channel         int    `yaml:"channel"`
}

func defaultConfig() *Config {
	return &Config{OutputFormat: outputAuto, Channel: 1}
}

// loadConfig reads the YAML config at path, falling back to $K4EDIT_CONFIG.
// A missing file yields the defaults.
func loadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(configEnv)
	}
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.OutputFormat != outputAuto {
		if _, err := k4.ParseFormat(c.OutputFormat); err != nil {
			return fmt.Errorf("output_format: %w", err)
		}
	}
	if c.Channel < 1 || c.Channel > 16 {
		return fmt.Errorf("channel must be 1-16, got %d", c.Channel)
	}
	return nil
}

// logger returns the logger handed to the codec.
func (c *Config) logger() *log.Logger {
	if c.Verbose {
		return log.Default()
	}
	return log.New(io.Discard, "", 0)
}

// saveFormat picks the container for a file written to path: its extension
// when known, then output_format, then the format the dump was read from.
func (c *Config) saveFormat(path string, read k4.Format) k4.Format {
	if f, err := k4.FormatFromPath(path); err == nil {
		return f
	}
	if f, err := k4.ParseFormat(c.OutputFormat); err == nil {
		return f
	}
	return read
}
