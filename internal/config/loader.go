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
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if MATCHPULSE_CONFIG is set
//  3. env (prefix MATCHPULSE_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("MATCHPULSE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys like MATCHPULSE_TICK_PERIOD_MS map to tick_period_ms.
	envProvider := env.Provider("MATCHPULSE_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "matchpulse_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TickPeriodMS <= 0:
		return fmt.Errorf("%w: tick_period_ms must be positive", ErrInvalidConfig)
	case c.RenderDelayMS < 0:
		return fmt.Errorf("%w: render_delay_ms must not be negative", ErrInvalidConfig)
	case c.EventWindowMS <= 0:
		return fmt.Errorf("%w: event_window_ms must be positive", ErrInvalidConfig)
	case c.LedgerKeep <= 0 || c.LedgerMax < c.LedgerKeep:
		return fmt.Errorf("%w: ledger bounds must satisfy 0 < keep <= max", ErrInvalidConfig)
	}
	return nil
}
