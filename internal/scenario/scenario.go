package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"turnaround/internal/engine"
)

// Scenario is a scripted game: one set of choices per round plus optional
// rule overrides.
type Scenario struct {
	Name   string       `yaml:"name"`
	Seed   uint64       `yaml:"seed"`
	Rules  Overrides    `yaml:"rules"`
	Rounds []RoundPicks `yaml:"rounds"`
}

// Overrides replaces the configured constants when set.
type Overrides struct {
	Rounds                 *int   `yaml:"rounds"`
	OnTimeThresholdMinutes *int   `yaml:"on_time_threshold_minutes"`
	FinePerMinute          *int64 `yaml:"fine_per_minute"`
	FineSplit              string `yaml:"fine_split"`
	RiskMode               string `yaml:"risk_mode"`
}

// RoundPicks holds each role's choice for one round.
type RoundPicks struct {
	AirportOps     string `yaml:"airport_ops"`
	AirlineControl string `yaml:"airline_control"`
	Maintenance    string `yaml:"maintenance"`
}

// For returns the pick for role.
func (p RoundPicks) For(role engine.Role) string {
	switch role {
	case engine.RoleAirportOps:
		return p.AirportOps
	case engine.RoleAirlineControl:
		return p.AirlineControl
	case engine.RoleMaintenance:
		return p.Maintenance
	}
	return ""
}

var ErrEmpty = errors.New("scenario has no rounds")

// Parse decodes a YAML scenario.
func Parse(data []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Rounds) == 0 {
		return Scenario{}, ErrEmpty
	}
	return s, nil
}

// Load reads and parses a scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Apply layers the overrides on base and validates the result.
func (s Scenario) Apply(base engine.Rules) (engine.Rules, error) {
	rules := base
	o := s.Rules
	if o.Rounds != nil {
		rules.Rounds = *o.Rounds
	}
	if o.OnTimeThresholdMinutes != nil {
		rules.OnTimeThresholdMinutes = *o.OnTimeThresholdMinutes
	}
	if o.FinePerMinute != nil {
		rules.FinePerMinute = decimal.NewFromInt(*o.FinePerMinute)
	}
	if strings.TrimSpace(o.FineSplit) != "" {
		rules.FineSplit = engine.ParseFineSplit(o.FineSplit)
	}
	if strings.TrimSpace(o.RiskMode) != "" {
		rules.RiskMode = engine.ParseRiskMode(o.RiskMode)
	}
	if err := rules.Validate(); err != nil {
		return engine.Rules{}, err
	}
	if len(s.Rounds) > rules.Rounds {
		return engine.Rules{}, fmt.Errorf("%w: scenario lists %d rounds, game has %d", engine.ErrInvalidRules, len(s.Rounds), rules.Rounds)
	}
	return rules, nil
}

// Run plays every listed round against a fresh engine and returns the final state.
func (s Scenario) Run(base engine.Rules, rnd engine.RandomSource) (engine.Snapshot, error) {
	rules, err := s.Apply(base)
	if err != nil {
		return engine.Snapshot{}, err
	}
	if rnd == nil {
		rnd = engine.NewRandomSource(s.Seed)
	}
	e, err := engine.New(rules, rnd)
	if err != nil {
		return engine.Snapshot{}, err
	}
	for i, picks := range s.Rounds {
		round := i + 1
		for _, role := range engine.RoleOrder {
			choice, err := rules.ParseChoice(role, picks.For(role))
			if err != nil {
				return engine.Snapshot{}, fmt.Errorf("round %d: %w", round, err)
			}
			if err := e.SubmitDecision(role, round, choice); err != nil {
				return engine.Snapshot{}, fmt.Errorf("round %d: %w", round, err)
			}
		}
	}
	return e.State(), nil
}
