package engine

import "github.com/shopspring/decimal"

// TimelineEntry is one role's span on the turnaround clock.
type TimelineEntry struct {
	Role        Role
	StartMinute int
	EndMinute   int
}

// TimelineBoard is the computed sequential timeline for a decided round.
type TimelineBoard struct {
	Round          int
	Event          EventCard
	Entries        []TimelineEntry
	FinalEndMinute int
	ExcessMinutes  int
	Fine           decimal.Decimal
	OnTime         bool
}

// buildTimeline lays the three records end to end in RoleOrder. The event
// delay is added to the first role's span.
func buildTimeline(round int, records map[Role]RoundRecord, event EventCard, rules Rules) *TimelineBoard {
	board := &TimelineBoard{
		Round:   round,
		Event:   event,
		Entries: make([]TimelineEntry, 0, len(RoleOrder)),
	}
	clock := 0
	for i, role := range RoleOrder {
		span := records[role].DurationMinutes
		if i == 0 {
			span += event.DelayMinutes
		}
		board.Entries = append(board.Entries, TimelineEntry{
			Role:        role,
			StartMinute: clock,
			EndMinute:   clock + span,
		})
		clock += span
	}
	board.FinalEndMinute = clock
	board.ExcessMinutes = max(clock-rules.OnTimeThresholdMinutes, 0)
	board.Fine = rules.FinePerMinute.Mul(decimal.NewFromInt(int64(board.ExcessMinutes)))
	board.OnTime = board.ExcessMinutes == 0
	return board
}

// fineShares distributes fine across RoleOrder. In FineSplitEqual mode each
// share is rounded down to cents and the leftover cents go to the first role,
// so the shares always sum to fine.
func fineShares(fine decimal.Decimal, split FineSplit) map[Role]decimal.Decimal {
	shares := make(map[Role]decimal.Decimal, len(RoleOrder))
	if split == FineSplitFull {
		for _, role := range RoleOrder {
			shares[role] = fine
		}
		return shares
	}
	n := decimal.NewFromInt(int64(len(RoleOrder)))
	each := fine.Div(n).RoundFloor(2)
	remainder := fine.Sub(each.Mul(n))
	for i, role := range RoleOrder {
		share := each
		if i == 0 {
			share = share.Add(remainder)
		}
		shares[role] = share
	}
	return shares
}
