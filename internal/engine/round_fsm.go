package engine

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Round states. These stay untyped string constants so they convert to
// statekit.StateID without ceremony.
const (
	StateUndecided        = "undecided"
	StatePartiallyDecided = "partially_decided"
	StateDecided          = "decided"
)

const (
	eventDecide   = "decide"
	eventComplete = "complete"
)

// RoundStatus is the progression state of a single round.
type RoundStatus string

const (
	RoundUndecided        RoundStatus = StateUndecided
	RoundPartiallyDecided RoundStatus = StatePartiallyDecided
	RoundDecided          RoundStatus = StateDecided
)

type roundContext struct {
	Round int
}

// roundMachine tracks undecided -> partially_decided -> decided for one round.
// There is no way back; only a game reset replaces the machine.
type roundMachine struct {
	interpreter *statekit.Interpreter[roundContext]
}

func newRoundMachine(round int) (*roundMachine, error) {
	builder := statekit.NewMachine[roundContext]("round-machine").
		WithInitial(statekit.StateID(StateUndecided)).
		WithContext(roundContext{Round: round})

	builder.State(StateUndecided).
		On(eventDecide).Target(StatePartiallyDecided).
		Done()

	builder.State(StatePartiallyDecided).
		On(eventComplete).Target(StateDecided).
		Done()

	builder.State(StateDecided).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build round machine: %w", err)
	}
	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &roundMachine{interpreter: interpreter}, nil
}

func (m *roundMachine) send(event string) error {
	before := m.Status()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.Status() != before {
		return nil
	}
	return fmt.Errorf("event %q not allowed while round is %s", event, before)
}

// Status returns the current round state.
func (m *roundMachine) Status() RoundStatus {
	return RoundStatus(m.interpreter.State().Value)
}
