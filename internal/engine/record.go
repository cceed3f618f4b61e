package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RoundRecord is one role's decision for one round.
type RoundRecord struct {
	Round           int
	Choice          Choice
	DurationMinutes int
	DirectCost      decimal.Decimal
	Note            string
	FineShare       decimal.Decimal
}

func newRecord(round int) RoundRecord {
	return RoundRecord{Round: round, DirectCost: decimal.Zero, FineShare: decimal.Zero}
}

// Decided reports whether a decision has been submitted.
func (r RoundRecord) Decided() bool {
	return r.Choice != ChoiceUndecided
}

// TotalCost is the direct cost plus this role's fine share.
func (r RoundRecord) TotalCost() decimal.Decimal {
	return r.DirectCost.Add(r.FineShare)
}

// resolve computes the outcome of opt, rolling its risk once against rnd.
func resolve(round int, opt Option, mode RiskMode, rnd RandomSource) RoundRecord {
	rec := newRecord(round)
	rec.Choice = opt.Choice
	rec.DurationMinutes = opt.Minutes
	rec.DirectCost = opt.Cost
	rec.Note = opt.Note
	if opt.Risk == nil {
		if rec.Note == "" {
			rec.Note = "No risk"
		}
		return rec
	}
	risk := opt.Risk
	if rnd.Float64() >= risk.Probability {
		rec.Note = risk.MissNote
		if rec.Note == "" {
			rec.Note = "Risk avoided"
		}
		return rec
	}
	extraMinutes := risk.ExtraMinutes
	extraCost := risk.ExtraCost
	if mode == RiskRanged {
		if risk.MaxMinutes > 0 {
			extraMinutes = intBetween(rnd, risk.MinMinutes, risk.MaxMinutes)
		}
		if risk.MaxCost > 0 {
			extraCost = decimal.NewFromInt(int64(intBetween(rnd, int(risk.MinCost), int(risk.MaxCost))))
		}
	}
	rec.DurationMinutes += extraMinutes
	rec.DirectCost = rec.DirectCost.Add(extraCost)
	rec.Note = hitNote(risk.HitNote, extraMinutes, extraCost)
	return rec
}

func hitNote(label string, minutes int, cost decimal.Decimal) string {
	if label == "" {
		label = "Risk triggered"
	}
	switch {
	case minutes > 0 && cost.IsPositive():
		return fmt.Sprintf("%s: +%d min, +%s", label, minutes, cost.String())
	case minutes > 0:
		return fmt.Sprintf("%s: +%d min", label, minutes)
	case cost.IsPositive():
		return fmt.Sprintf("%s: +%s", label, cost.String())
	}
	return label
}
