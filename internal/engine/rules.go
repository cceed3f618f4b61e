package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FineSplit controls how a round's delay fine is charged to the roles.
type FineSplit string

const (
	// FineSplitEqual divides the fine three ways.
	FineSplitEqual FineSplit = "split"
	// FineSplitFull charges the whole fine to every role.
	FineSplitFull FineSplit = "full"
)

// RiskMode selects fixed or ranged risk magnitudes.
type RiskMode string

const (
	RiskFixed  RiskMode = "fixed"
	RiskRanged RiskMode = "ranged"
)

// ParseFineSplit normalizes case and spacing. Unknown values fail Validate.
func ParseFineSplit(value string) FineSplit {
	return FineSplit(normalize(value))
}

// ParseRiskMode normalizes case and spacing. Unknown values fail Validate.
func ParseRiskMode(value string) RiskMode {
	return RiskMode(normalize(value))
}

const (
	DefaultRounds                 = 5
	DefaultOnTimeThresholdMinutes = 45
	DefaultFinePerMinute          = 100
)

// Risk is the randomized modifier attached to an option.
type Risk struct {
	Probability float64
	// Fixed magnitudes.
	ExtraMinutes int
	ExtraCost    decimal.Decimal
	// Inclusive ranges used in RiskRanged mode. A zero range falls back to the fixed value.
	MinMinutes, MaxMinutes int
	MinCost, MaxCost       int64
	HitNote                string
	MissNote               string
}

// Option is one of a role's two decisions with its baseline outcome.
type Option struct {
	Choice  Choice
	Label   string
	Minutes int
	Cost    decimal.Decimal
	Note    string
	Risk    *Risk
}

// Rules configures a game. The zero value is not usable; start from DefaultRules.
type Rules struct {
	Rounds                 int
	OnTimeThresholdMinutes int
	FinePerMinute          decimal.Decimal
	FineSplit              FineSplit
	RiskMode               RiskMode
	Options                map[Role][]Option
	Deck                   []EventCard
}

// DefaultRules returns the classroom defaults.
func DefaultRules() Rules {
	return Rules{
		Rounds:                 DefaultRounds,
		OnTimeThresholdMinutes: DefaultOnTimeThresholdMinutes,
		FinePerMinute:          decimal.NewFromInt(DefaultFinePerMinute),
		FineSplit:              FineSplitEqual,
		RiskMode:               RiskFixed,
		Options:                DefaultOptions(),
		Deck:                   DefaultDeck(),
	}
}

// DefaultOptions returns the option table for the three roles.
func DefaultOptions() map[Role][]Option {
	return map[Role][]Option{
		RoleAirportOps: {
			{
				Choice:  ChoicePrivateGate,
				Label:   "Dedicated/Private Gate",
				Minutes: 10,
				Cost:    decimal.NewFromInt(500),
				Note:    "Private gate, no clash risk",
			},
			{
				Choice:  ChoiceSharedGate,
				Label:   "Shared Gate",
				Minutes: 10,
				Cost:    decimal.Zero,
				Risk: &Risk{
					Probability:  0.5,
					ExtraMinutes: 10,
					MinMinutes:   5,
					MaxMinutes:   20,
					HitNote:      "Gate clash",
					MissNote:     "Shared gate, no clash",
				},
			},
		},
		RoleAirlineControl: {
			{
				Choice:  ChoiceNoBuffer,
				Label:   "No Buffer",
				Minutes: 30,
				Cost:    decimal.Zero,
				Risk: &Risk{
					Probability:  0.4,
					ExtraMinutes: 15,
					MinMinutes:   10,
					MaxMinutes:   20,
					HitNote:      "Late crew",
					MissNote:     "Crew on time",
				},
			},
			{
				Choice:  ChoiceBuffer10,
				Label:   "Buffer 10",
				Minutes: 40,
				Cost:    decimal.Zero,
				Note:    "10 minute crew buffer, no risk",
			},
		},
		RoleMaintenance: {
			{
				Choice:  ChoiceFixNow,
				Label:   "Fix Now",
				Minutes: 20,
				Cost:    decimal.NewFromInt(300),
				Note:    "Fixed before departure",
			},
			{
				Choice:  ChoiceDefer,
				Label:   "Defer (MEL)",
				Minutes: 0,
				Cost:    decimal.Zero,
				Risk: &Risk{
					Probability: 0.4,
					ExtraCost:   decimal.NewFromInt(1000),
					MinCost:     500,
					MaxCost:     1500,
					HitNote:     "Deferral penalty",
					MissNote:    "Deferred under MEL, no penalty",
				},
			},
		},
	}
}

// Option looks up the configured option for role and choice.
func (r Rules) Option(role Role, choice Choice) (Option, bool) {
	for _, opt := range r.Options[role] {
		if opt.Choice == choice {
			return opt, true
		}
	}
	return Option{}, false
}

// Validate checks the rules are playable.
func (r Rules) Validate() error {
	if r.Rounds < 1 {
		return fmt.Errorf("%w: rounds must be positive, got %d", ErrInvalidRules, r.Rounds)
	}
	if r.OnTimeThresholdMinutes < 0 {
		return fmt.Errorf("%w: on-time threshold must not be negative", ErrInvalidRules)
	}
	if r.FinePerMinute.IsNegative() {
		return fmt.Errorf("%w: fine per minute must not be negative", ErrInvalidRules)
	}
	switch r.FineSplit {
	case FineSplitEqual, FineSplitFull:
	default:
		return fmt.Errorf("%w: unknown fine split %q", ErrInvalidRules, r.FineSplit)
	}
	switch r.RiskMode {
	case RiskFixed, RiskRanged:
	default:
		return fmt.Errorf("%w: unknown risk mode %q", ErrInvalidRules, r.RiskMode)
	}
	if len(r.Deck) < r.Rounds {
		return fmt.Errorf("%w: deck has %d cards, need at least %d", ErrInvalidRules, len(r.Deck), r.Rounds)
	}
	for _, card := range r.Deck {
		if card.DelayMinutes < 0 {
			return fmt.Errorf("%w: event %q has negative delay", ErrInvalidRules, card.Description)
		}
	}
	for _, role := range RoleOrder {
		options := r.Options[role]
		if len(options) != 2 {
			return fmt.Errorf("%w: %s needs exactly two options, got %d", ErrInvalidRules, role.Label(), len(options))
		}
		for _, opt := range options {
			if err := opt.validate(); err != nil {
				return fmt.Errorf("%w: %s/%s: %v", ErrInvalidRules, role, opt.Choice, err)
			}
		}
	}
	return nil
}

func (o Option) validate() error {
	if o.Choice == ChoiceUndecided {
		return fmt.Errorf("empty choice id")
	}
	if o.Minutes < 0 || o.Cost.IsNegative() {
		return fmt.Errorf("baseline must not be negative")
	}
	if o.Risk == nil {
		return nil
	}
	if o.Risk.Probability < 0 || o.Risk.Probability > 1 {
		return fmt.Errorf("probability %v out of [0,1]", o.Risk.Probability)
	}
	if o.Risk.ExtraMinutes < 0 || o.Risk.ExtraCost.IsNegative() {
		return fmt.Errorf("risk magnitude must not be negative")
	}
	if o.Risk.MinMinutes < 0 || o.Risk.MaxMinutes < o.Risk.MinMinutes {
		return fmt.Errorf("invalid minute range %d..%d", o.Risk.MinMinutes, o.Risk.MaxMinutes)
	}
	if o.Risk.MinCost < 0 || o.Risk.MaxCost < o.Risk.MinCost {
		return fmt.Errorf("invalid cost range %d..%d", o.Risk.MinCost, o.Risk.MaxCost)
	}
	return nil
}
