package main

import (
	"fernnog/reading-plan/internal/readingplan"

	"github.com/spf13/cobra"
)

func newScheduleCmd(opts *globalOptions) *cobra.Command {
	var pending bool

	cmd := &cobra.Command{
		Use:   "schedule <plan.json>",
		Short: "Print the dated sessions of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			sessions := readingplan.Sessions(plan)
			if pending {
				unread := sessions[:0]
				for _, s := range sessions {
					if !s.Read {
						unread = append(unread, s)
					}
				}
				sessions = unread
			}
			return render(cmd.OutOrStdout(), sessions, opts.json)
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "only list sessions not yet read")
	return cmd
}

type progressReport struct {
	readingplan.Progress `yaml:",inline"`
	PaceEndDate          string `json:"paceEndDate,omitempty" yaml:"paceEndDate,omitempty"`
}

func newProgressCmd(opts *globalOptions) *cobra.Command {
	var pace float64

	cmd := &cobra.Command{
		Use:   "progress <plan.json>",
		Short: "Summarise progress as of --today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			report := progressReport{Progress: readingplan.Summarize(plan, opts.today)}
			if pace > 0 {
				report.PaceEndDate, _ = readingplan.PaceToTargetEndDate(plan, pace, opts.today)
			}
			return render(cmd.OutOrStdout(), report, opts.json)
		},
	}
	cmd.Flags().Float64Var(&pace, "pace", 0, "also show when the plan would end at this pace")
	return cmd
}
