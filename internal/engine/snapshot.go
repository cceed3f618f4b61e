package engine

import "github.com/shopspring/decimal"

// Snapshot is a read-only copy of the game for rendering.
type Snapshot struct {
	CurrentRound           int
	TotalRounds            int
	GameOver               bool
	OnTimeThresholdMinutes int
	FinePerMinute          decimal.Decimal
	FineSplit              FineSplit
	RiskMode               RiskMode
	Rounds                 []RoundSnapshot
	Roles                  []RoleKPI
	Team                   TeamKPI
}

// RoundSnapshot holds one round's records in RoleOrder and its timeline, if decided.
type RoundSnapshot struct {
	Number   int
	Status   RoundStatus
	Event    EventCard
	Records  []RoleRecord
	Timeline *TimelineBoard
}

// RoleRecord pairs a record with its role and the chosen option's label.
type RoleRecord struct {
	Role        Role
	ChoiceLabel string
	RoundRecord
}

// RoleKPI aggregates one role over decided rounds.
type RoleKPI struct {
	Role              Role
	TotalDelayMinutes int
	TotalDirectCost   decimal.Decimal
	TotalFineShare    decimal.Decimal
	TotalCost         decimal.Decimal
}

// TeamKPI aggregates the whole team over decided rounds. TotalFines is what
// the roles were charged, so TotalDirectCost plus TotalFines is TotalCost in
// every split mode. AssessedFines counts each round's fine once.
type TeamKPI struct {
	CompletedRounds    int
	OnTimeRounds       int
	TotalGroundMinutes int
	TotalDirectCost    decimal.Decimal
	TotalFines         decimal.Decimal
	AssessedFines      decimal.Decimal
	TotalCost          decimal.Decimal
}

// State returns a deep copy of the current game.
func (e *Engine) State() Snapshot {
	s := e.state
	snap := Snapshot{
		CurrentRound:           s.CurrentRound,
		TotalRounds:            e.rules.Rounds,
		GameOver:               e.IsGameOver(),
		OnTimeThresholdMinutes: e.rules.OnTimeThresholdMinutes,
		FinePerMinute:          e.rules.FinePerMinute,
		FineSplit:              e.rules.FineSplit,
		RiskMode:               e.rules.RiskMode,
		Rounds:                 make([]RoundSnapshot, e.rules.Rounds),
	}
	for i := range snap.Rounds {
		round := RoundSnapshot{
			Number:  i + 1,
			Status:  s.machines[i].Status(),
			Event:   s.Events[i],
			Records: make([]RoleRecord, 0, len(RoleOrder)),
		}
		for _, role := range RoleOrder {
			rec := RoleRecord{Role: role, RoundRecord: s.Records[role][i]}
			if opt, ok := e.rules.Option(role, rec.Choice); ok && rec.Decided() {
				rec.ChoiceLabel = opt.Label
			}
			round.Records = append(round.Records, rec)
		}
		if board := s.Timelines[i]; board != nil {
			copied := *board
			copied.Entries = append([]TimelineEntry(nil), board.Entries...)
			round.Timeline = &copied
		}
		snap.Rounds[i] = round
	}
	snap.Roles, snap.Team = e.kpis()
	return snap
}

// kpis sums decided rounds only. Rounds left partial by a forced advance do
// not count.
func (e *Engine) kpis() ([]RoleKPI, TeamKPI) {
	s := e.state
	roles := make([]RoleKPI, 0, len(RoleOrder))
	team := TeamKPI{
		TotalDirectCost: decimal.Zero,
		TotalFines:      decimal.Zero,
		AssessedFines:   decimal.Zero,
		TotalCost:       decimal.Zero,
	}
	for _, role := range RoleOrder {
		kpi := RoleKPI{
			Role:            role,
			TotalDirectCost: decimal.Zero,
			TotalFineShare:  decimal.Zero,
			TotalCost:       decimal.Zero,
		}
		for i, board := range s.Timelines {
			if board == nil {
				continue
			}
			rec := s.Records[role][i]
			kpi.TotalDelayMinutes += rec.DurationMinutes
			kpi.TotalDirectCost = kpi.TotalDirectCost.Add(rec.DirectCost)
			kpi.TotalFineShare = kpi.TotalFineShare.Add(rec.FineShare)
		}
		kpi.TotalCost = kpi.TotalDirectCost.Add(kpi.TotalFineShare)
		team.TotalDirectCost = team.TotalDirectCost.Add(kpi.TotalDirectCost)
		team.TotalFines = team.TotalFines.Add(kpi.TotalFineShare)
		team.TotalCost = team.TotalCost.Add(kpi.TotalCost)
		roles = append(roles, kpi)
	}
	for _, board := range s.Timelines {
		if board == nil {
			continue
		}
		team.CompletedRounds++
		if board.OnTime {
			team.OnTimeRounds++
		}
		team.TotalGroundMinutes += board.FinalEndMinute
		team.AssessedFines = team.AssessedFines.Add(board.Fine)
	}
	return roles, team
}
