package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
)

const (
	// EnvPrefix prefixes every environment override, e.g. POLYMER_TIMEOUT.
	EnvPrefix = "POLYMER_"
	// EnvFile names the optional YAML file.
	EnvFile = "POLYMER_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if POLYMER_CONFIG is set
//  3. env (prefix POLYMER_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// POLYMER_QUEUE_SIZE -> queue_size. Underscores are kept to match the
	// koanf tags; POLYMER_CONFIG itself is not a field.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		if s == EnvFile {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Accept = splitList(cfg.Accept)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// splitList flattens comma separated entries, as env vars deliver lists as
// one string.
func splitList(in []string) []string {
	if len(in) == 0 {
		return in
	}
	parts := lo.FlatMap(in, func(s string, _ int) []string { return strings.Split(s, ",") })
	return lo.Compact(lo.Map(parts, func(s string, _ int) string { return strings.TrimSpace(s) }))
}
