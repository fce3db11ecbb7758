package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	DBPath         string `env:"DB_PATH" envDefault:"maple-boss-api.db"`
	RegistrySeed   string `env:"REGISTRY_SEED" envDefault:"boss_registry.yaml"`
	RegistryURL    string `env:"REGISTRY_URL"` // remote registry; empty uses the local store
	PriceSourceURL string `env:"PRICE_SOURCE_URL" envDefault:"https://maplestory.fandom.com/wiki/Boss_Crystal"`
	ResetDay       string `env:"RESET_DAY" envDefault:"Thursday"`
	ResetAt        string `env:"RESET_AT" envDefault:"00:00"` // HH:MM (24h)
	TZ             string `env:"TZ" envDefault:"UTC"`         // IANA TZ, e.g. America/Chicago

	LookupConcurrency int           `env:"LOOKUP_CONCURRENCY" envDefault:"8"`
	HTTPTimeout       time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.LookupConcurrency <= 0 {
		cfg.LookupConcurrency = 1
	}
	if _, err := ParseWeekday(cfg.ResetDay); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts full English day names in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("invalid RESET_DAY %q", s)
	}
	return d, nil
}
