// Package config loads tallypipe's application configuration from an
// optional YAML file and TALLYPIPE_-prefixed environment variables,
// and carries the built-in default pipeline description and whitelist.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the application configuration. All fields are optional;
// CLI flags take precedence over it.
type Config struct {
	Output OutputConfig `koanf:"output"`
	Pipes  PipesConfig  `koanf:"pipes"`
	Log    LogConfig    `koanf:"log"`
}

type OutputConfig struct {
	// Format is one of the registered output formats.
	Format string `koanf:"format"`
	// Path is the output destination; empty means stdout.
	Path string `koanf:"path"`
}

type PipesConfig struct {
	// Path points at a pipeline description JSON document.
	Path string `koanf:"path"`
	// Whitelist points at a newline-delimited identifier list.
	Whitelist string `koanf:"whitelist"`
}

type LogConfig struct {
	// Format is "json" or "text".
	Format string `koanf:"format"`
	// Level is a slog level name.
	Level string `koanf:"level"`
}

// Load reads configuration from path (skipped when empty) and the
// environment, then applies defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("TALLYPIPE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "TALLYPIPE_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = "json"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return &cfg, nil
}
