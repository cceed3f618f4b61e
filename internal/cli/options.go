package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"turnaround/internal/config"
	"turnaround/internal/engine"
	"turnaround/internal/report"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List every role's options with baseline and risk",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		rules, err := cfg.Rules()
		if err != nil {
			return err
		}
		f := report.Default
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ROLE\tCHOICE\tLABEL\tMINUTES\tCOST\tRISK")
		for _, role := range engine.RoleOrder {
			for _, opt := range rules.Options[role] {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					role.Label(), opt.Choice, opt.Label,
					f.Minutes(opt.Minutes), f.Money(opt.Cost), describeRisk(f, opt.Risk, rules.RiskMode))
			}
		}
		fmt.Fprintf(tw, "\nthreshold %s, fine %s/min, split %s, risk %s\n",
			f.Minutes(rules.OnTimeThresholdMinutes), f.Money(rules.FinePerMinute), rules.FineSplit, rules.RiskMode)
		return tw.Flush()
	},
}

func describeRisk(f report.Formatter, risk *engine.Risk, mode engine.RiskMode) string {
	if risk == nil {
		return "none"
	}
	pct := int(risk.Probability*100 + 0.5)
	switch {
	case mode == engine.RiskRanged && risk.MaxMinutes > 0:
		return fmt.Sprintf("%d%% %s +%d-%d min", pct, risk.HitNote, risk.MinMinutes, risk.MaxMinutes)
	case mode == engine.RiskRanged && risk.MaxCost > 0:
		return fmt.Sprintf("%d%% %s +%s-%s", pct, risk.HitNote,
			f.Money(decimal.NewFromInt(risk.MinCost)), f.Money(decimal.NewFromInt(risk.MaxCost)))
	case risk.ExtraMinutes > 0:
		return fmt.Sprintf("%d%% %s +%s", pct, risk.HitNote, f.Minutes(risk.ExtraMinutes))
	default:
		return fmt.Sprintf("%d%% %s +%s", pct, risk.HitNote, f.Money(risk.ExtraCost))
	}
}

func init() {
	RootCmd.AddCommand(optionsCmd)
}
