package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// stubSource replays queued values. With empty queues Float64 never triggers
// a risk and IntN deals the deck in order.
type stubSource struct {
	floats []float64
	ints   []int
}

func (s *stubSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	f := s.floats[0]
	s.floats = s.floats[1:]
	return f
}

func (s *stubSource) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		return n - 1
	}
	return v
}

func testDeck() []EventCard {
	return []EventCard{
		{Description: "Fuel truck delayed", DelayMinutes: 8},
		{Description: "Clear skies", DelayMinutes: 0},
		{Description: "Late baggage", DelayMinutes: 5},
		{Description: "Thunderstorm", DelayMinutes: 12},
		{Description: "Runway congestion", DelayMinutes: 7},
	}
}

func newTestEngine(t *testing.T, src RandomSource, mutate func(*Rules)) *Engine {
	t.Helper()
	rules := DefaultRules()
	rules.Deck = testDeck()
	if mutate != nil {
		mutate(&rules)
	}
	e, err := New(rules, src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func submitRound(t *testing.T, e *Engine, round int, ops, airline, mx Choice) {
	t.Helper()
	for _, d := range []struct {
		role   Role
		choice Choice
	}{
		{RoleAirportOps, ops},
		{RoleAirlineControl, airline},
		{RoleMaintenance, mx},
	} {
		if err := e.SubmitDecision(d.role, round, d.choice); err != nil {
			t.Fatalf("SubmitDecision(%s, %d, %s): %v", d.role, round, d.choice, err)
		}
	}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestNew(t *testing.T) {
	e := newTestEngine(t, &stubSource{}, nil)
	snap := e.State()
	if snap.CurrentRound != 1 {
		t.Errorf("CurrentRound %d, want 1", snap.CurrentRound)
	}
	if snap.TotalRounds != DefaultRounds {
		t.Errorf("TotalRounds %d, want %d", snap.TotalRounds, DefaultRounds)
	}
	if len(snap.Rounds) != DefaultRounds {
		t.Fatalf("len(Rounds) %d, want %d", len(snap.Rounds), DefaultRounds)
	}
	for _, round := range snap.Rounds {
		if round.Status != RoundUndecided {
			t.Errorf("round %d status %q, want undecided", round.Number, round.Status)
		}
		if round.Timeline != nil {
			t.Errorf("round %d has a timeline before any decision", round.Number)
		}
		for _, rec := range round.Records {
			if rec.Decided() || rec.DurationMinutes != 0 || !rec.DirectCost.IsZero() || rec.Note != "" {
				t.Errorf("round %d %s not fresh: %+v", round.Number, rec.Role, rec)
			}
		}
	}
	if snap.Rounds[0].Event.DelayMinutes != 8 {
		t.Errorf("round 1 event delay %d, want 8", snap.Rounds[0].Event.DelayMinutes)
	}
	if e.IsGameOver() {
		t.Error("fresh game should not be over")
	}
}

func TestNew_InvalidRules(t *testing.T) {
	rules := DefaultRules()
	rules.Rounds = 0
	if _, err := New(rules, &stubSource{}); !errors.Is(err, ErrInvalidRules) {
		t.Errorf("New with zero rounds: got %v, want ErrInvalidRules", err)
	}
}

func TestEngine_RoundOneScenario(t *testing.T) {
	e := newTestEngine(t, &stubSource{}, nil)
	submitRound(t, e, 1, ChoicePrivateGate, ChoiceBuffer10, ChoiceFixNow)

	snap := e.State()
	round := snap.Rounds[0]
	if round.Status != RoundDecided {
		t.Fatalf("status %q, want decided", round.Status)
	}
	board := round.Timeline
	if board == nil {
		t.Fatal("timeline not built")
	}
	want := []TimelineEntry{
		{Role: RoleAirportOps, StartMinute: 0, EndMinute: 18},
		{Role: RoleAirlineControl, StartMinute: 18, EndMinute: 58},
		{Role: RoleMaintenance, StartMinute: 58, EndMinute: 78},
	}
	if len(board.Entries) != len(want) {
		t.Fatalf("entries %d, want %d", len(board.Entries), len(want))
	}
	for i, entry := range board.Entries {
		if entry != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entry, want[i])
		}
	}
	if board.FinalEndMinute != 78 {
		t.Errorf("FinalEndMinute %d, want 78", board.FinalEndMinute)
	}
	if board.ExcessMinutes != 33 {
		t.Errorf("ExcessMinutes %d, want 33", board.ExcessMinutes)
	}
	if !board.Fine.Equal(dec(3300)) {
		t.Errorf("Fine %s, want 3300", board.Fine)
	}
	if board.OnTime {
		t.Error("78 minutes should not be on time")
	}
	for _, rec := range round.Records {
		if !rec.FineShare.Equal(dec(1100)) {
			t.Errorf("%s fine share %s, want 1100", rec.Role, rec.FineShare)
		}
	}
	if !snap.Team.TotalDirectCost.Equal(dec(800)) {
		t.Errorf("team direct cost %s, want 800", snap.Team.TotalDirectCost)
	}
	if !snap.Team.TotalFines.Equal(dec(3300)) {
		t.Errorf("team fines %s, want 3300", snap.Team.TotalFines)
	}
	if !snap.Team.TotalCost.Equal(dec(4100)) {
		t.Errorf("team total cost %s, want 4100", snap.Team.TotalCost)
	}
	if snap.CurrentRound != 2 {
		t.Errorf("CurrentRound %d, want 2", snap.CurrentRound)
	}
}

func TestEngine_FullChargeFine(t *testing.T) {
	e := newTestEngine(t, &stubSource{}, func(r *Rules) { r.FineSplit = FineSplitFull })
	submitRound(t, e, 1, ChoicePrivateGate, ChoiceBuffer10, ChoiceFixNow)

	snap := e.State()
	for _, rec := range snap.Rounds[0].Records {
		if !rec.FineShare.Equal(dec(3300)) {
			t.Errorf("%s fine share %s, want 3300", rec.Role, rec.FineShare)
		}
	}
	team := snap.Team
	if !team.AssessedFines.Equal(dec(3300)) {
		t.Errorf("assessed fines %s, want 3300", team.AssessedFines)
	}
	if !team.TotalFines.Equal(dec(3 * 3300)) {
		t.Errorf("charged fines %s, want %d", team.TotalFines, 3*3300)
	}
	if !team.TotalCost.Equal(dec(800 + 3*3300)) {
		t.Errorf("team total cost %s, want %d", team.TotalCost, 800+3*3300)
	}
	if !team.TotalDirectCost.Add(team.TotalFines).Equal(team.TotalCost) {
		t.Errorf("team direct %s + fines %s != total %s", team.TotalDirectCost, team.TotalFines, team.TotalCost)
	}
}

func TestEngine_TeamLedgerBalances(t *testing.T) {
	for _, split := range []FineSplit{FineSplitEqual, FineSplitFull} {
		t.Run(string(split), func(t *testing.T) {
			e := newTestEngine(t, &stubSource{}, func(r *Rules) { r.FineSplit = split })
			submitRound(t, e, 1, ChoicePrivateGate, ChoiceBuffer10, ChoiceFixNow)
			submitRound(t, e, 2, ChoicePrivateGate, ChoiceBuffer10, ChoiceFixNow)

			snap := e.State()
			team := snap.Team
			if !team.TotalDirectCost.Add(team.TotalFines).Equal(team.TotalCost) {
				t.Errorf("team direct %s + fines %s != total %s", team.TotalDirectCost, team.TotalFines, team.TotalCost)
			}
			roleFines := decimal.Zero
			for _, kpi := range snap.Roles {
				roleFines = roleFines.Add(kpi.TotalFineShare)
			}
			if !roleFines.Equal(team.TotalFines) {
				t.Errorf("role fine shares %s, team fines %s", roleFines, team.TotalFines)
			}
		})
	}
}

func TestEngine_OnTimeRoundHasNoFine(t *testing.T) {
	// Round 2 of the test deck has no delay; all risks miss.
	e := newTestEngine(t, &stubSource{}, nil)
	submitRound(t, e, 1, ChoicePrivateGate, ChoiceBuffer10, ChoiceFixNow)
	submitRound(t, e, 2, ChoiceSharedGate, ChoiceNoBuffer, ChoiceDefer)

	board := e.State().Rounds[1].Timeline
	if board.FinalEndMinute != 40 {
		t.Fatalf("FinalEndMinute %d, want 40", board.FinalEndMinute)
	}
	if !board.Fine.IsZero() {
		t.Errorf("Fine %s, want 0", board.Fine)
	}
	if !board.OnTime {
		t.Error("round should be on time")
	}
}

func TestEngine_RiskOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		role        Role
		choice      Choice
		roll        float64
		wantMinutes int
		wantCost    int64
		wantNote    string
	}{
		{"private gate", RoleAirportOps, ChoicePrivateGate, 0.0, 10, 500, "Private gate, no clash risk"},
		{"shared gate clash", RoleAirportOps, ChoiceSharedGate, 0.49, 20, 0, "Gate clash: +10 min"},
		{"shared gate at probability misses", RoleAirportOps, ChoiceSharedGate, 0.5, 10, 0, "Shared gate, no clash"},
		{"no buffer late crew", RoleAirlineControl, ChoiceNoBuffer, 0.1, 45, 0, "Late crew: +15 min"},
		{"no buffer on time", RoleAirlineControl, ChoiceNoBuffer, 0.4, 30, 0, "Crew on time"},
		{"buffer 10", RoleAirlineControl, ChoiceBuffer10, 0.0, 40, 0, "10 minute crew buffer, no risk"},
		{"fix now", RoleMaintenance, ChoiceFixNow, 0.0, 20, 300, "Fixed before departure"},
		{"defer penalty", RoleMaintenance, ChoiceDefer, 0.39, 0, 1000, "Deferral penalty: +1000"},
		{"defer clean", RoleMaintenance, ChoiceDefer, 0.8, 0, 0, "Deferred under MEL, no penalty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubSource{}
			e := newTestEngine(t, src, nil)
			src.floats = []float64{tt.roll}
			if err := e.SubmitDecision(tt.role, 1, tt.choice); err != nil {
				t.Fatalf("SubmitDecision: %v", err)
			}
			rec := e.state.Records[tt.role][0]
			if rec.DurationMinutes != tt.wantMinutes {
				t.Errorf("DurationMinutes %d, want %d", rec.DurationMinutes, tt.wantMinutes)
			}
			if !rec.DirectCost.Equal(dec(tt.wantCost)) {
				t.Errorf("DirectCost %s, want %d", rec.DirectCost, tt.wantCost)
			}
			if rec.Note != tt.wantNote {
				t.Errorf("Note %q, want %q", rec.Note, tt.wantNote)
			}
			if !rec.Decided() {
				t.Error("record should be decided")
			}
		})
	}
}

func TestEngine_RangedRisk(t *testing.T) {
	src := &stubSource{}
	e := newTestEngine(t, src, func(r *Rules) { r.RiskMode = RiskRanged })
	// Clash hits and draws offset 7 in 5..20.
	src.floats = []float64{0.1}
	src.ints = []int{7}
	if err := e.SubmitDecision(RoleAirportOps, 1, ChoiceSharedGate); err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}
	if got := e.state.Records[RoleAirportOps][0].DurationMinutes; got != 22 {
		t.Errorf("shared gate minutes %d, want 22", got)
	}
	// Defer penalty draws offset 250 in 500..1500.
	src.floats = []float64{0.1}
	src.ints = []int{250}
	if err := e.SubmitDecision(RoleMaintenance, 1, ChoiceDefer); err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}
	if got := e.state.Records[RoleMaintenance][0].DirectCost; !got.Equal(dec(750)) {
		t.Errorf("defer cost %s, want 750", got)
	}
}

func TestEngine_SubmitDecisionErrors(t *testing.T) {
	tests := []struct {
		name   string
		role   Role
		round  int
		choice Choice
		want   error
	}{
		{"unknown role", Role("pilot"), 1, ChoiceFixNow, ErrInvalidRole},
		{"empty choice", RoleAirportOps, 1, ChoiceUndecided, ErrInvalidChoice},
		{"other role's choice", RoleAirportOps, 1, ChoiceFixNow, ErrInvalidChoice},
		{"future round", RoleAirportOps, 2, ChoicePrivateGate, ErrRoundNotActive},
		{"round zero", RoleAirportOps, 0, ChoicePrivateGate, ErrRoundNotActive},
		{"past last round", RoleAirportOps, 6, ChoicePrivateGate, ErrRoundNotActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, &stubSource{}, nil)
			err := e.SubmitDecision(tt.role, tt.round, tt.choice)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			for _, role := range RoleOrder {
				if e.state.Records[role][0].Decided() {
					t.Errorf("%s decided after rejected submission", role)
				}
			}
			if status, _ := e.RoundStatus(1); status != RoundUndecided {
				t.Errorf("round 1 status %q, want undecided", status)
			}
		})
	}
}

func TestEngine_DuplicateSubmissionRejected(t *testing.T) {
	src := &stubSource{}
	e := newTestEngine(t, src, nil)
	src.floats = []float64{0.1}
	if err := e.SubmitDecision(RoleAirportOps, 1, ChoiceSharedGate); err != nil {
		t.Fatalf("SubmitDecision: %v", err)
	}
	before := e.state.Records[RoleAirportOps][0]

	err := e.SubmitDecision(RoleAirportOps, 1, ChoicePrivateGate)
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("resubmit: got %v, want ErrDuplicateSubmission", err)
	}
	after := e.state.Records[RoleAirportOps][0]
	if after.Choice != before.Choice || after.DurationMinutes != before.DurationMinutes ||
		!after.DirectCost.Equal(before.DirectCost) || after.Note != before.Note {
		t.Errorf("record changed on rejected resubmit: before %+v after %+v", before, after)
	}
}

func TestEngine_PastRoundRejectedAfterCompletion(t *testing.T) {
	e := newTestEngine(t, &stubSource{}, nil)
	submitRound(t, e, 1, ChoicePrivateGate, ChoiceBuffer10, ChoiceFixNow)
	err := e.SubmitDecision(RoleAirportOps, 1, ChoicePrivateGate)
	if !errors.Is(err, ErrRoundNotActive) {
		t.Errorf("got %v, want ErrRoundNotActive", err)
	}
}

func TestEngine_RoundStatusProgression(t *testing.T) {
	e := newTestEngine(t, &stubSource{}, nil)
	steps := []struct {
		role   Role
		choice Choice
		want   RoundStatus
	}{
		{RoleAirportOps, ChoicePrivateGate, RoundPartiallyDecided},
		{RoleAirlineControl, ChoiceBuffer10, RoundPartiallyDecided},
		{RoleMaintenance, ChoiceFixNow, RoundDecided},
	}
	for _, step := range steps {
		if err := e.SubmitDecision(step.role, 1, step.choice); err != nil {
			t.Fatalf("SubmitDecision(%s): %v", step.role, err)
		}
		status, err := e.RoundStatus(1)
		if err != nil {
			t.Fatalf("RoundStatus: %v", err)
		}
		if status != step.want {
			t.Errorf("after %s status %q, want %q", step.role, status, step.want)
		}
	}
	if _, err := e.RoundStatus(9); !errors.Is(err, ErrRoundNotActive) {
		t.Errorf("RoundStatus(9): got %v, want ErrRoundNotActive", err)
	}
}

func TestEngine_TimelineBuiltOnce(t *testing.T) {
	e := newTestEngine(t, &stubSource{}, nil)
	submitRound(t, e, 1, ChoicePrivateGate, ChoiceBuffer10, ChoiceFixNow)
	board := e.state.Timelines[0]

	if err := e.completeRound(1); err != nil {
		t.Fatalf("completeRound again: %v", err)
	}
	if e.state.Timelines[0] != board {
		t.Error("timeline was rebuilt")
	}
	snap := e.State()
	if !snap.Team.TotalFines.Equal(dec(3300)) {
		t.Errorf("fines %s after second completion, want 3300", snap.Team.TotalFines)
	}
	if snap.CurrentRound != 2 {
		t.Errorf("CurrentRound %d, want 2", snap.CurrentRound)
	}
}

func TestEngine_GameOverAfterFinalRound(t *testing.T) {
	e := newTestEngine(t, &stubSource{}, nil)
	for round := 1; round <= DefaultRounds; round++ {
		if e.IsGameOver() {
			t.Fatalf("game over before round %d", round)
		}
		if err := e.SubmitDecision(RoleAirportOps, round, ChoicePrivateGate); err != nil {
			t.Fatal(err)
		}
		if err := e.SubmitDecision(RoleAirlineControl, round, ChoiceBuffer10); err != nil {
			t.Fatal(err)
		}
		if e.IsGameOver() {
			t.Fatalf("game over with round %d partially decided", round)
		}
		if err := e.SubmitDecision(RoleMaintenance, round, ChoiceFixNow); err != nil {
			t.Fatal(err)
		}
	}
	if !e.IsGameOver() {
		t.Fatal("game should be over after the last round")
	}
	snap := e.State()
	if !snap.GameOver {
		t.Error("snapshot GameOver should be true")
	}
	if snap.CurrentRound != DefaultRounds {
		t.Errorf("CurrentRound %d, want %d", snap.CurrentRound, DefaultRounds)
	}
	if snap.Team.CompletedRounds != DefaultRounds {
		t.Errorf("CompletedRounds %d, want %d", snap.Team.CompletedRounds, DefaultRounds)
	}
	if !snap.Team.TotalDirectCost.Equal(dec(5 * 800)) {
		t.Errorf("TotalDirectCost %s, want 4000", snap.Team.TotalDirectCost)
	}
	for _, kpi := range snap.Roles {
		if kpi.Role == RoleAirlineControl && kpi.TotalDelayMinutes != 5*40 {
			t.Errorf("airline delay %d, want 200", kpi.TotalDelayMinutes)
		}
	}
}

func TestEngine_AdvanceRound(t *testing.T) {
	e := newTestEngine(t, &stubSource{}, nil)
	if err := e.AdvanceRound(false); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unauthorized advance: got %v", err)
	}
	if e.CurrentRound() != 1 {
		t.Fatalf("CurrentRound %d after rejected advance, want 1", e.CurrentRound())
	}
	if err := e.SubmitDecision(RoleAirportOps, 1, ChoicePrivateGate); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := e.AdvanceRound(true); err != nil {
			t.Fatalf("AdvanceRound: %v", err)
		}
	}
	if e.CurrentRound() != DefaultRounds {
		t.Errorf("CurrentRound %d, want capped at %d", e.CurrentRound(), DefaultRounds)
	}
	if e.IsGameOver() {
		t.Error("forced advance alone must not end the game")
	}
	snap := e.State()
	if snap.Rounds[0].Status != RoundPartiallyDecided {
		t.Errorf("round 1 status %q, want partially_decided", snap.Rounds[0].Status)
	}
	if snap.Team.CompletedRounds != 0 {
		t.Errorf("CompletedRounds %d, want 0", snap.Team.CompletedRounds)
	}
}

func TestEngine_ResetGame(t *testing.T) {
	e := newTestEngine(t, NewRandomSource(7), func(r *Rules) { r.Deck = DefaultDeck() })
	submitRound(t, e, 1, ChoicePrivateGate, ChoiceBuffer10, ChoiceFixNow)

	if err := e.ResetGame(false); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unauthorized reset: got %v", err)
	}
	if e.CurrentRound() != 2 {
		t.Fatal("rejected reset changed state")
	}

	if err := e.ResetGame(true); err != nil {
		t.Fatalf("ResetGame: %v", err)
	}
	snap := e.State()
	if snap.CurrentRound != 1 {
		t.Errorf("CurrentRound %d, want 1", snap.CurrentRound)
	}
	seen := make(map[string]bool)
	for _, round := range snap.Rounds {
		if round.Status != RoundUndecided || round.Timeline != nil {
			t.Errorf("round %d not cleared", round.Number)
		}
		for _, rec := range round.Records {
			if rec.Choice != ChoiceUndecided || rec.DurationMinutes != 0 || !rec.DirectCost.IsZero() || rec.Note != "" || !rec.FineShare.IsZero() {
				t.Errorf("round %d %s not reset: %+v", round.Number, rec.Role, rec)
			}
		}
		if seen[round.Event.Description] {
			t.Errorf("event %q drawn twice", round.Event.Description)
		}
		seen[round.Event.Description] = true
	}
	if len(seen) != DefaultRounds {
		t.Errorf("drew %d events, want %d", len(seen), DefaultRounds)
	}
	if snap.Team.CompletedRounds != 0 || !snap.Team.TotalCost.IsZero() {
		t.Errorf("team KPIs not cleared: %+v", snap.Team)
	}
}

func TestEngine_TimelineProperties(t *testing.T) {
	choices := map[Role][]Choice{
		RoleAirportOps:     {ChoicePrivateGate, ChoiceSharedGate},
		RoleAirlineControl: {ChoiceNoBuffer, ChoiceBuffer10},
		RoleMaintenance:    {ChoiceFixNow, ChoiceDefer},
	}
	for seed := uint64(1); seed <= 40; seed++ {
		rnd := NewRandomSource(seed)
		rules := DefaultRules()
		if seed%2 == 0 {
			rules.RiskMode = RiskRanged
		}
		e, err := New(rules, rnd)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for round := 1; round <= rules.Rounds; round++ {
			for _, role := range RoleOrder {
				pick := choices[role][rnd.IntN(2)]
				if err := e.SubmitDecision(role, round, pick); err != nil {
					t.Fatalf("seed %d round %d: %v", seed, round, err)
				}
			}
		}
		if !e.IsGameOver() {
			t.Fatalf("seed %d: game not over after all rounds", seed)
		}
		for _, round := range e.State().Rounds {
			board := round.Timeline
			if board.Entries[0].StartMinute != 0 {
				t.Errorf("seed %d round %d: first start %d", seed, round.Number, board.Entries[0].StartMinute)
			}
			for i := 1; i < len(board.Entries); i++ {
				if board.Entries[i].StartMinute != board.Entries[i-1].EndMinute {
					t.Errorf("seed %d round %d: gap between entries %d and %d", seed, round.Number, i-1, i)
				}
			}
			sum := round.Event.DelayMinutes
			shares := decimal.Zero
			for _, rec := range round.Records {
				sum += rec.DurationMinutes
				shares = shares.Add(rec.FineShare)
			}
			if board.FinalEndMinute != sum {
				t.Errorf("seed %d round %d: end %d, want %d", seed, round.Number, board.FinalEndMinute, sum)
			}
			wantFine := decimal.Zero
			if sum > DefaultOnTimeThresholdMinutes {
				wantFine = dec(int64((sum - DefaultOnTimeThresholdMinutes) * DefaultFinePerMinute))
			}
			if !board.Fine.Equal(wantFine) {
				t.Errorf("seed %d round %d: fine %s, want %s", seed, round.Number, board.Fine, wantFine)
			}
			if !shares.Equal(board.Fine) {
				t.Errorf("seed %d round %d: shares sum %s, fine %s", seed, round.Number, shares, board.Fine)
			}
		}
	}
}
