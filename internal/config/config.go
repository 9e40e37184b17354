// Package config loads server settings from an optional YAML file
// layered over built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen   string  `yaml:"listen"`
	Dev      bool    `yaml:"dev"`
	MaxRooms int     `yaml:"max_rooms"`
	Archive  Archive `yaml:"archive"`
	Log      Log     `yaml:"log"`
	PIDFile  string  `yaml:"pid_file"`
	PIDLock  bool    `yaml:"pid_lock"`
}

type Archive struct {
	Enabled bool   `yaml:"enabled"`
	// DSN defaults to a shared in-memory database; the archive lives
	// and dies with the process.
	DSN string `yaml:"dsn"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

func Default() Config {
	return Config{
		Listen:   "localhost:8080",
		MaxRooms: 100,
		Archive:  Archive{Enabled: true},
		Log:      Log{Level: "info", Format: "console"},
	}
}

// Load returns the defaults overlaid with the YAML file at path, if
// one is given.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	if c.MaxRooms < 1 {
		return fmt.Errorf("config: max_rooms must be positive, got %d", c.MaxRooms)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}
