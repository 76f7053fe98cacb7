package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the relay server configuration, loadable from TOML with flag
// overrides applied afterwards.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
	Fallback FallbackConfig `toml:"fallback"`
	Roster   RosterConfig   `toml:"roster"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	Port        int    `toml:"port"`
	BindAddress string `toml:"bind_address"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// FallbackConfig selects the placeholder policy served while no bridge
// push has landed: "readiness" (deterministic) or "demo" (randomized).
type FallbackConfig struct {
	Mode string `toml:"mode"`
}

// RosterConfig points at an optional roster override file.
type RosterConfig struct {
	Path string `toml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        10000,
			BindAddress: "0.0.0.0",
		},
		Logging:  LoggingConfig{Level: "info"},
		Fallback: FallbackConfig{Mode: "readiness"},
	}
}

// LoadConfig reads TOML from path over the defaults. An empty path returns
// the defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	switch cfg.Fallback.Mode {
	case "readiness", "demo":
	default:
		return nil, fmt.Errorf("invalid fallback mode %q (want readiness or demo)", cfg.Fallback.Mode)
	}
	return cfg, nil
}
