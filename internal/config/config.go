package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"

	"turnaround/internal/engine"
)

// Config is read from the environment.
type Config struct {
	Port                   string `env:"PORT" envDefault:"8080"`
	InstructorPassword     string `env:"TURNAROUND_INSTRUCTOR_PASSWORD"`
	Rounds                 int    `env:"TURNAROUND_ROUNDS" envDefault:"5"`
	OnTimeThresholdMinutes int    `env:"TURNAROUND_ON_TIME_THRESHOLD_MINUTES" envDefault:"45"`
	FinePerMinute          int64  `env:"TURNAROUND_FINE_PER_MINUTE" envDefault:"100"`
	FineSplit              string `env:"TURNAROUND_FINE_SPLIT" envDefault:"split"`
	RiskMode               string `env:"TURNAROUND_RISK_MODE" envDefault:"fixed"`
	Seed                   uint64 `env:"TURNAROUND_SEED" envDefault:"0"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment and checks the game rules it implies.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Rules(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	return ":" + strings.TrimPrefix(port, ":")
}

// Rules converts the configured constants into validated engine rules.
func (c Config) Rules() (engine.Rules, error) {
	rules := engine.DefaultRules()
	rules.Rounds = c.Rounds
	rules.OnTimeThresholdMinutes = c.OnTimeThresholdMinutes
	rules.FinePerMinute = decimal.NewFromInt(c.FinePerMinute)
	rules.FineSplit = engine.ParseFineSplit(c.FineSplit)
	rules.RiskMode = engine.ParseRiskMode(c.RiskMode)
	if err := rules.Validate(); err != nil {
		return engine.Rules{}, err
	}
	return rules, nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
