package handlers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"turnaround/internal/engine"
	"turnaround/internal/game"
	"turnaround/internal/report"
	"turnaround/internal/viewmodel"
)

type sessionSummaryJSON struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	CurrentRound int       `json:"current_round"`
	TotalRounds  int       `json:"total_rounds"`
	GameOver     bool      `json:"game_over"`
}

type sessionJSON struct {
	sessionSummaryJSON
	OnTimeThresholdMinutes int             `json:"on_time_threshold_minutes"`
	FinePerMinute          decimal.Decimal `json:"fine_per_minute"`
	FineSplit              string          `json:"fine_split"`
	RiskMode               string          `json:"risk_mode"`
	Rounds                 []roundJSON     `json:"rounds"`
	Roles                  []roleKPIJSON   `json:"roles"`
	Team                   teamKPIJSON     `json:"team"`
}

type roundJSON struct {
	Number   int           `json:"number"`
	Status   string        `json:"status"`
	Event    *eventJSON    `json:"event,omitempty"`
	Records  []recordJSON  `json:"records"`
	Timeline *timelineJSON `json:"timeline"`
}

type eventJSON struct {
	Description  string `json:"description"`
	DelayMinutes int    `json:"delay_minutes"`
}

type recordJSON struct {
	Role            string          `json:"role"`
	Choice          string          `json:"choice"`
	DurationMinutes int             `json:"duration_minutes"`
	DirectCost      decimal.Decimal `json:"direct_cost"`
	Note            string          `json:"note"`
	FineShare       decimal.Decimal `json:"shared_fine_share"`
}

type timelineJSON struct {
	Entries        []entryJSON     `json:"entries"`
	FinalEndMinute int             `json:"final_end_minute"`
	ExcessMinutes  int             `json:"excess_minutes"`
	Fine           decimal.Decimal `json:"fine"`
	OnTime         bool            `json:"on_time"`
}

type entryJSON struct {
	Role        string `json:"role"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

type roleKPIJSON struct {
	Role              string          `json:"role"`
	TotalDelayMinutes int             `json:"total_delay_minutes"`
	TotalDirectCost   decimal.Decimal `json:"total_direct_cost"`
	TotalFineShare    decimal.Decimal `json:"total_fine_share"`
	TotalCost         decimal.Decimal `json:"total_cost"`
}

type teamKPIJSON struct {
	CompletedRounds    int             `json:"completed_rounds"`
	OnTimeRounds       int             `json:"on_time_rounds"`
	TotalGroundMinutes int             `json:"total_ground_minutes"`
	TotalDirectCost    decimal.Decimal `json:"total_direct_cost"`
	TotalFines         decimal.Decimal `json:"total_fines"`
	AssessedFines      decimal.Decimal `json:"assessed_fines"`
	TotalCost          decimal.Decimal `json:"total_cost"`
}

// eventRevealed hides event cards for rounds the class has not reached.
func eventRevealed(snap game.Snapshot, round engine.RoundSnapshot) bool {
	return round.Number <= snap.CurrentRound || round.Timeline != nil
}

func toSessionJSON(snap game.Snapshot) sessionJSON {
	out := sessionJSON{
		sessionSummaryJSON: sessionSummaryJSON{
			ID:           snap.ID,
			Name:         snap.Name,
			CreatedAt:    snap.CreatedAt,
			CurrentRound: snap.CurrentRound,
			TotalRounds:  snap.TotalRounds,
			GameOver:     snap.GameOver,
		},
		OnTimeThresholdMinutes: snap.OnTimeThresholdMinutes,
		FinePerMinute:          snap.FinePerMinute,
		FineSplit:              string(snap.FineSplit),
		RiskMode:               string(snap.RiskMode),
		Rounds:                 make([]roundJSON, 0, len(snap.Rounds)),
		Roles:                  make([]roleKPIJSON, 0, len(snap.Roles)),
		Team: teamKPIJSON{
			CompletedRounds:    snap.Team.CompletedRounds,
			OnTimeRounds:       snap.Team.OnTimeRounds,
			TotalGroundMinutes: snap.Team.TotalGroundMinutes,
			TotalDirectCost:    snap.Team.TotalDirectCost,
			TotalFines:         snap.Team.TotalFines,
			AssessedFines:      snap.Team.AssessedFines,
			TotalCost:          snap.Team.TotalCost,
		},
	}
	for _, round := range snap.Rounds {
		rj := roundJSON{
			Number:  round.Number,
			Status:  string(round.Status),
			Records: make([]recordJSON, 0, len(round.Records)),
		}
		if eventRevealed(snap, round) {
			rj.Event = &eventJSON{Description: round.Event.Description, DelayMinutes: round.Event.DelayMinutes}
		}
		for _, rec := range round.Records {
			rj.Records = append(rj.Records, recordJSON{
				Role:            string(rec.Role),
				Choice:          string(rec.Choice),
				DurationMinutes: rec.DurationMinutes,
				DirectCost:      rec.DirectCost,
				Note:            rec.Note,
				FineShare:       rec.FineShare,
			})
		}
		if board := round.Timeline; board != nil {
			tj := &timelineJSON{
				FinalEndMinute: board.FinalEndMinute,
				ExcessMinutes:  board.ExcessMinutes,
				Fine:           board.Fine,
				OnTime:         board.OnTime,
			}
			for _, entry := range board.Entries {
				tj.Entries = append(tj.Entries, entryJSON{
					Role:        string(entry.Role),
					StartMinute: entry.StartMinute,
					EndMinute:   entry.EndMinute,
				})
			}
			rj.Timeline = tj
		}
		out.Rounds = append(out.Rounds, rj)
	}
	for _, kpi := range snap.Roles {
		out.Roles = append(out.Roles, roleKPIJSON{
			Role:              string(kpi.Role),
			TotalDelayMinutes: kpi.TotalDelayMinutes,
			TotalDirectCost:   kpi.TotalDirectCost,
			TotalFineShare:    kpi.TotalFineShare,
			TotalCost:         kpi.TotalCost,
		})
	}
	return out
}

func toBoard(snap game.Snapshot) viewmodel.Board {
	f := report.Default
	board := viewmodel.Board{
		SessionID:       snap.ID,
		Name:            snap.Name,
		CurrentRound:    snap.CurrentRound,
		TotalRounds:     snap.TotalRounds,
		GameOver:        snap.GameOver,
		CompletedRounds: snap.Team.CompletedRounds,
		OnTimeRounds:    snap.Team.OnTimeRounds,
		Rounds:          make([]viewmodel.BoardRound, 0, len(snap.Rounds)),
		Roles:           make([]viewmodel.KPIRow, 0, len(snap.Roles)),
	}
	for _, round := range snap.Rounds {
		br := viewmodel.BoardRound{
			Number:  round.Number,
			Status:  string(round.Status),
			Current: round.Number == snap.CurrentRound && !snap.GameOver,
			Decided: round.Timeline != nil,
		}
		if eventRevealed(snap, round) {
			br.Event = fmt.Sprintf("%s (+%d min)", round.Event.Description, round.Event.DelayMinutes)
		}
		for i, rec := range round.Records {
			row := viewmodel.BoardRow{Role: rec.Role.Label()}
			if rec.Decided() {
				row.Choice = rec.ChoiceLabel
				row.DirectCost = f.Money(rec.DirectCost)
				row.Note = rec.Note
			} else {
				row.Choice = "waiting"
			}
			if round.Timeline != nil {
				entry := round.Timeline.Entries[i]
				row.Span = f.Span(entry.StartMinute, entry.EndMinute)
				row.FineShare = f.Money(rec.FineShare)
			}
			br.Rows = append(br.Rows, row)
		}
		if round.Timeline != nil {
			br.GroundTime = f.Minutes(round.Timeline.FinalEndMinute)
			br.Fine = f.Money(round.Timeline.Fine)
			br.OnTime = round.Timeline.OnTime
		}
		board.Rounds = append(board.Rounds, br)
	}
	for _, kpi := range snap.Roles {
		board.Roles = append(board.Roles, viewmodel.KPIRow{
			Label:      kpi.Role.Label(),
			Minutes:    f.Minutes(kpi.TotalDelayMinutes),
			DirectCost: f.Money(kpi.TotalDirectCost),
			Fines:      f.Money(kpi.TotalFineShare),
			Total:      f.Money(kpi.TotalCost),
		})
	}
	board.Team = viewmodel.KPIRow{
		Label:      "Team",
		Minutes:    f.Minutes(snap.Team.TotalGroundMinutes),
		DirectCost: f.Money(snap.Team.TotalDirectCost),
		Fines:      f.Money(snap.Team.TotalFines),
		Total:      f.Money(snap.Team.TotalCost),
	}
	return board
}
