package engine

import (
	"fmt"
	"strings"
)

// Role identifies one of the three student desks.
type Role string

const (
	RoleAirportOps     Role = "airport_ops"
	RoleAirlineControl Role = "airline_control"
	RoleMaintenance    Role = "maintenance"
)

// RoleOrder is the fixed timeline order. Airport Operations always goes first.
var RoleOrder = []Role{RoleAirportOps, RoleAirlineControl, RoleMaintenance}

var roleLabels = map[Role]string{
	RoleAirportOps:     "Airport Operations",
	RoleAirlineControl: "Airline Control",
	RoleMaintenance:    "Aircraft Maintenance",
}

// Label returns the display name for the role.
func (r Role) Label() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return string(r)
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// ParseRole accepts the role id or its label in any case.
func ParseRole(value string) (Role, error) {
	key := normalize(value)
	for _, role := range RoleOrder {
		if key == string(role) || key == normalize(role.Label()) {
			return role, nil
		}
	}
	switch key {
	case "ops", "airport", "airport_operations":
		return RoleAirportOps, nil
	case "airline", "control":
		return RoleAirlineControl, nil
	case "mx", "aircraft_maintenance":
		return RoleMaintenance, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, value)
}

// Choice is a decision id. The zero value is the undecided sentinel.
type Choice string

const (
	ChoiceUndecided Choice = ""

	ChoicePrivateGate Choice = "private_gate"
	ChoiceSharedGate  Choice = "shared_gate"
	ChoiceNoBuffer    Choice = "no_buffer"
	ChoiceBuffer10    Choice = "buffer_10"
	ChoiceFixNow      Choice = "fix_now"
	ChoiceDefer       Choice = "defer"
)

var choiceAliases = map[string]Choice{
	"dedicated_gate":         ChoicePrivateGate,
	"dedicated":              ChoicePrivateGate,
	"private":                ChoicePrivateGate,
	"dedicated/private_gate": ChoicePrivateGate,
	"shared":                 ChoiceSharedGate,
	"buffer":                 ChoiceBuffer10,
	"buffer10":               ChoiceBuffer10,
	"defer_mel":              ChoiceDefer,
	"defer_(mel)":            ChoiceDefer,
}

// ParseChoice resolves value against the options configured for role.
func (r Rules) ParseChoice(role Role, value string) (Choice, error) {
	options, ok := r.Options[role]
	if !ok {
		return ChoiceUndecided, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	key := normalize(value)
	if alias, ok := choiceAliases[key]; ok {
		key = string(alias)
	}
	for _, opt := range options {
		if key == string(opt.Choice) || key == normalize(opt.Label) {
			return opt.Choice, nil
		}
	}
	return ChoiceUndecided, fmt.Errorf("%w: %q is not an option for %s", ErrInvalidChoice, value, role.Label())
}

func normalize(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Join(strings.Fields(s), "_")
}
