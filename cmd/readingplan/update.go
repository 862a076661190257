package main

import (
	"errors"
	"fernnog/reading-plan/internal/readingplan"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type readSummary struct {
	Ordinal      int      `json:"ordinal" yaml:"ordinal"`
	Date         string   `json:"date" yaml:"date"`
	ChaptersRead []string `json:"chaptersRead" yaml:"chaptersRead"`
	Completed    bool     `json:"completed" yaml:"completed"`
}

func newReadCmd(opts *globalOptions) *cobra.Command {
	var (
		date string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "read <plan.json>",
		Short: "Mark the current session as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			if missing := readingplan.Drift(plan); len(missing) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d earlier chapters are not in the read log: %s\n",
					len(missing), strings.Join(missing, ", "))
			}
			if date == "" {
				date = opts.today
			}

			outcome, err := readingplan.Apply(plan, readingplan.MarkSessionRead{Date: date})
			if err != nil {
				return err
			}
			if err := writePlan(cmd.OutOrStdout(), targetPath(out, args[0]), outcome.Plan); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), readSummary{
				Ordinal:      plan.CurrentDay,
				Date:         date,
				ChaptersRead: outcome.ChaptersRead,
				Completed:    outcome.Plan.IsCompleted(),
			}, opts.json)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date the session was read (default: --today)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the updated plan here instead of overwriting the input")
	return cmd
}

type recalcSummary struct {
	Kind            string  `json:"kind" yaml:"kind"`
	FromDay         int     `json:"fromDay" yaml:"fromDay"`
	PreviousEndDate string  `json:"previousEndDate" yaml:"previousEndDate"`
	NewEndDate      string  `json:"newEndDate" yaml:"newEndDate"`
	NewPace         float64 `json:"newPace" yaml:"newPace"`
}

func newRecalcCmd(opts *globalOptions) *cobra.Command {
	var (
		target string
		pace   float64
		out    string
	)

	cmd := &cobra.Command{
		Use:   "recalc <plan.json>",
		Short: "Spread the unread chapters over a new end date or pace",
		Long: `Recalculate the unread part of a plan starting on --today.

Give exactly one of --target (a new end date) or --pace (chapters per session).
Sessions already read keep their chapters.`,
		Example: `  readingplan recalc plan.json --target 2025-12-31
  readingplan recalc plan.json --pace 4 --today 2025-03-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var command readingplan.Command
			switch {
			case target != "" && cmd.Flags().Changed("pace"):
				return errors.New("use either --target or --pace, not both")
			case target != "":
				command = readingplan.RecalculateToDate{TargetEndDate: target, Today: opts.today}
			case cmd.Flags().Changed("pace"):
				command = readingplan.RecalculateToPace{Pace: pace, Today: opts.today}
			default:
				return errors.New("one of --target or --pace is required")
			}

			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			outcome, err := readingplan.Apply(plan, command)
			if err != nil {
				return err
			}
			if outcome.Event == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing left to read, plan unchanged")
				return nil
			}
			event := *outcome.Event
			event.RecalculatedAt = time.Now().UTC()
			outcome.Plan.RecalculationHistory = append(outcome.Plan.RecalculationHistory, event)
			if err := writePlan(cmd.OutOrStdout(), targetPath(out, args[0]), outcome.Plan); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), recalcSummary{
				Kind:            string(outcome.Event.Kind),
				FromDay:         outcome.Event.FromDay,
				PreviousEndDate: outcome.Event.PreviousEndDate,
				NewEndDate:      outcome.Event.NewEndDate,
				NewPace:         outcome.Event.NewPace,
			}, opts.json)
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "new end date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&pace, "pace", 0, "chapters per session from today on")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the updated plan here instead of overwriting the input")
	return cmd
}

func targetPath(out, in string) string {
	if out != "" {
		return out
	}
	return in
}
