package game

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"turnaround/internal/engine"
	"turnaround/pkg/realtime"
)

// Event names published to session subscribers.
const (
	EventDecision = "decision"
	EventRound    = "round"
	EventReset    = "reset"
)

// maxNameLen is counted in characters.
const maxNameLen = 40

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store holds sessions and delegates to realtime.RoomStore for broadcast.
type Store struct {
	r *realtime.RoomStore[*Session]
}

// NewStore creates an empty in-memory session store.
func NewStore() *Store {
	return &Store{r: realtime.NewRoomStore[*Session]()}
}

// CreateSession deals a new game under rules and registers its broadcaster.
func (s *Store) CreateSession(name string, rules engine.Rules, rnd engine.RandomSource) (*Session, error) {
	eng, err := engine.New(rules, rnd)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(strings.ToValidUTF8(name, ""))
	if name == "" {
		name = "Turnaround"
	}
	if runes := []rune(name); len(runes) > maxNameLen {
		name = strings.TrimSpace(string(runes[:maxNameLen]))
	}
	session := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		engine:    eng,
	}
	s.r.Create(session.ID, session)
	return session, nil
}

// GetSession returns a session by ID if it exists.
func (s *Store) GetSession(id string) (*Session, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Sessions returns every session, oldest first.
func (s *Store) Sessions() []*Session {
	rooms := s.r.List()
	out := make([]*Session, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.State)
	}
	return out
}

// DeleteSession drops a session and disconnects its subscribers.
func (s *Store) DeleteSession(id string) error {
	if !s.r.Delete(id) {
		return ErrNotFound
	}
	return nil
}

// Broadcaster returns the SSE broadcaster for a session.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster, bool) {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a session update.
func (s *Store) Publish(id string, name string, round int) {
	s.r.Publish(id, realtime.Event{Name: name, Round: round})
}

// Session is one classroom section playing one game.
type Session struct {
	mu        sync.Mutex
	ID        string
	Name      string
	CreatedAt time.Time
	engine    *engine.Engine
}

// Decide parses role and choice input and submits it for round. It returns
// the round that is active afterwards.
func (s *Session) Decide(role string, round int, choice string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := engine.ParseRole(role)
	if err != nil {
		return 0, err
	}
	c, err := s.engine.Rules().ParseChoice(r, choice)
	if err != nil {
		return 0, err
	}
	if err := s.engine.SubmitDecision(r, round, c); err != nil {
		return 0, err
	}
	return s.engine.CurrentRound(), nil
}

// Advance force-moves to the next round.
func (s *Session) Advance(authorized bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.AdvanceRound(authorized); err != nil {
		return 0, err
	}
	return s.engine.CurrentRound(), nil
}

// Reset clears the game and redraws the event cards.
func (s *Session) Reset(authorized bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ResetGame(authorized)
}

// IsGameOver reports whether the final round is decided.
func (s *Session) IsGameOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.IsGameOver()
}

// Snapshot captures the state needed for rendering.
type Snapshot struct {
	ID        string
	Name      string
	CreatedAt time.Time
	engine.Snapshot
}

// Snapshot returns a consistent view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		Snapshot:  s.engine.State(),
	}
}
