package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"turnaround/internal/engine"
)

// WriteBoard writes a plain-text scoreboard for snap.
func (f Formatter) WriteBoard(w io.Writer, snap engine.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUND\tEVENT\tROLE\tCHOICE\tSPAN\tDIRECT\tFINE SHARE\tNOTE")
	for _, round := range snap.Rounds {
		if round.Timeline == nil {
			fmt.Fprintf(tw, "%d\t-\t-\t%s\t\t\t\t\n", round.Number, round.Status)
			continue
		}
		for i, rec := range round.Records {
			event := ""
			if i == 0 {
				event = fmt.Sprintf("%s (+%d)", round.Event.Description, round.Event.DelayMinutes)
			}
			entry := round.Timeline.Entries[i]
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				round.Number,
				event,
				rec.Role.Label(),
				rec.Choice,
				f.Span(entry.StartMinute, entry.EndMinute),
				f.Money(rec.DirectCost),
				f.Money(rec.FineShare),
				rec.Note,
			)
		}
		fmt.Fprintf(tw, "\t\t\tground time %s\t\t\tfine %s\t\n",
			f.Minutes(round.Timeline.FinalEndMinute), f.Money(round.Timeline.Fine))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nROLE\tMINUTES\tDIRECT\tFINES\tTOTAL")
	for _, kpi := range snap.Roles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			kpi.Role.Label(),
			f.Minutes(kpi.TotalDelayMinutes),
			f.Money(kpi.TotalDirectCost),
			f.Money(kpi.TotalFineShare),
			f.Money(kpi.TotalCost),
		)
	}
	team := snap.Team
	fmt.Fprintf(tw, "Team\t%s\t%s\t%s\t%s\n",
		f.Minutes(team.TotalGroundMinutes),
		f.Money(team.TotalDirectCost),
		f.Money(team.TotalFines),
		f.Money(team.TotalCost),
	)
	fmt.Fprintf(tw, "\nrounds completed %d/%d, on time %d, fines assessed %s\n",
		team.CompletedRounds, snap.TotalRounds, team.OnTimeRounds, f.Money(team.AssessedFines))
	return tw.Flush()
}
