package engine

import (
	"fmt"
)

// GameState is the single mutable source of truth for one game.
type GameState struct {
	CurrentRound int
	Records      map[Role][]RoundRecord
	Events       []EventCard
	Timelines    []*TimelineBoard
	machines     []*roundMachine
}

// Engine applies decisions to a GameState under a fixed set of rules.
// It is not safe for concurrent use; callers serialize access per game.
type Engine struct {
	rules Rules
	rnd   RandomSource
	state *GameState
}

// New validates rules and deals a fresh game.
func New(rules Rules, rnd RandomSource) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if rnd == nil {
		rnd = NewRandomSource(0)
	}
	e := &Engine{rules: rules, rnd: rnd}
	state, err := e.newState()
	if err != nil {
		return nil, err
	}
	e.state = state
	return e, nil
}

func (e *Engine) newState() (*GameState, error) {
	n := e.rules.Rounds
	state := &GameState{
		CurrentRound: 1,
		Records:      make(map[Role][]RoundRecord, len(RoleOrder)),
		Events:       drawEvents(e.rnd, e.rules.Deck, n),
		Timelines:    make([]*TimelineBoard, n),
		machines:     make([]*roundMachine, n),
	}
	for _, role := range RoleOrder {
		records := make([]RoundRecord, n)
		for i := range records {
			records[i] = newRecord(i + 1)
		}
		state.Records[role] = records
	}
	for i := range state.machines {
		m, err := newRoundMachine(i + 1)
		if err != nil {
			return nil, err
		}
		state.machines[i] = m
	}
	return state, nil
}

// Rules returns the rules the engine was built with.
func (e *Engine) Rules() Rules {
	return e.rules
}

// CurrentRound returns the 1-based active round.
func (e *Engine) CurrentRound() int {
	return e.state.CurrentRound
}

// RoundStatus returns the progression state of round.
func (e *Engine) RoundStatus(round int) (RoundStatus, error) {
	if round < 1 || round > e.rules.Rounds {
		return "", fmt.Errorf("%w: round %d outside 1..%d", ErrRoundNotActive, round, e.rules.Rounds)
	}
	return e.state.machines[round-1].Status(), nil
}

// SubmitDecision records role's choice for round. Only the current round
// accepts decisions and each role decides once per round. Nothing is written
// when an error is returned. When the third role decides, the round's timeline
// and fine are computed and the round pointer advances.
func (e *Engine) SubmitDecision(role Role, round int, choice Choice) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	opt, ok := e.rules.Option(role, choice)
	if !ok {
		return fmt.Errorf("%w: %q is not an option for %s", ErrInvalidChoice, choice, role.Label())
	}
	if round != e.state.CurrentRound {
		return fmt.Errorf("%w: round %d submitted, round %d is active", ErrRoundNotActive, round, e.state.CurrentRound)
	}
	idx := round - 1
	if e.state.Records[role][idx].Decided() {
		return fmt.Errorf("%w: %s already chose %s in round %d", ErrDuplicateSubmission, role.Label(), e.state.Records[role][idx].Choice, round)
	}

	e.state.Records[role][idx] = resolve(round, opt, e.rules.RiskMode, e.rnd)

	machine := e.state.machines[idx]
	if machine.Status() == RoundUndecided {
		if err := machine.send(eventDecide); err != nil {
			return err
		}
	}
	if e.roundComplete(idx) {
		return e.completeRound(round)
	}
	return nil
}

func (e *Engine) roundComplete(idx int) bool {
	for _, role := range RoleOrder {
		if !e.state.Records[role][idx].Decided() {
			return false
		}
	}
	return true
}

// completeRound builds the timeline and charges the fine. It runs at most
// once per round.
func (e *Engine) completeRound(round int) error {
	idx := round - 1
	if e.state.Timelines[idx] != nil {
		return nil
	}
	records := make(map[Role]RoundRecord, len(RoleOrder))
	for _, role := range RoleOrder {
		records[role] = e.state.Records[role][idx]
	}
	board := buildTimeline(round, records, e.state.Events[idx], e.rules)
	shares := fineShares(board.Fine, e.rules.FineSplit)
	for _, role := range RoleOrder {
		e.state.Records[role][idx].FineShare = shares[role]
	}
	e.state.Timelines[idx] = board
	if err := e.state.machines[idx].send(eventComplete); err != nil {
		return err
	}
	e.state.CurrentRound = min(round+1, e.rules.Rounds)
	return nil
}

// AdvanceRound force-moves the pointer to the next round regardless of
// decisions. It stops at the last round.
func (e *Engine) AdvanceRound(authorized bool) error {
	if !authorized {
		return fmt.Errorf("%w: advancing the round needs instructor access", ErrUnauthorized)
	}
	e.state.CurrentRound = min(e.state.CurrentRound+1, e.rules.Rounds)
	return nil
}

// ResetGame discards every decision and redraws the event sequence.
func (e *Engine) ResetGame(authorized bool) error {
	if !authorized {
		return fmt.Errorf("%w: resetting the game needs instructor access", ErrUnauthorized)
	}
	state, err := e.newState()
	if err != nil {
		return err
	}
	e.state = state
	return nil
}

// IsGameOver reports whether the last round has been fully decided.
func (e *Engine) IsGameOver() bool {
	last := e.rules.Rounds
	return e.state.CurrentRound == last && e.state.Timelines[last-1] != nil
}
