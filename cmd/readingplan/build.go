package main

import (
	"fernnog/reading-plan/internal/bible"
	"fernnog/reading-plan/internal/readingplan"
	"fmt"

	"github.com/spf13/cobra"
)

func newBuildCmd(opts *globalOptions) *cobra.Command {
	var (
		spec     readingplan.PlanSpec
		method   string
		duration string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a new reading plan",
		Long: `Build a reading plan and write it as JSON.

Chapters come from a range (--from-book/--from-chapter/--to-book/--to-chapter)
or from whole books (--book, repeatable) plus free text (--chapters "Psalms 1-3, Jude").
The number of sessions comes from --per-day, --days or --end-date.`,
		Example: `  readingplan build --from-book Genesis --to-book Exodus --per-day 3 --out plan.json
  readingplan build --book Ruth --book Jonah --days 14 --weekday 1 --weekday 3 --weekday 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.CreationMethod = readingplan.CreationMethod(method)
			if method == "" {
				spec.CreationMethod = readingplan.MethodSelection
				if spec.StartBook != "" {
					spec.CreationMethod = readingplan.MethodInterval
				}
			}
			if spec.CreationMethod == readingplan.MethodInterval {
				if spec.EndBook == "" {
					spec.EndBook = spec.StartBook
				}
				if spec.EndChapter == 0 {
					book, ok := bible.LookupBook(spec.EndBook)
					if !ok {
						return fmt.Errorf("unknown book %q", spec.EndBook)
					}
					spec.EndChapter = book.Chapters
				}
			}

			spec.DurationMethod = readingplan.DurationMethod(duration)
			if duration == "" {
				switch {
				case spec.Days > 0:
					spec.DurationMethod = readingplan.DurationDays
				case spec.EndDate != "":
					spec.DurationMethod = readingplan.DurationEndDate
				default:
					spec.DurationMethod = readingplan.DurationChaptersPerDay
				}
			}

			plan, diagnostics, err := readingplan.BuildPlan(spec, opts.today)
			for _, d := range diagnostics {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", d)
			}
			if err != nil {
				return err
			}
			return writePlan(cmd.OutOrStdout(), out, plan)
		},
	}

	f := cmd.Flags()
	f.StringVar(&spec.Name, "name", "", "plan name")
	f.StringVar(&method, "method", "", "interval or selection (default: inferred from flags)")
	f.StringVar(&spec.StartBook, "from-book", "", "first book of the range")
	f.IntVar(&spec.StartChapter, "from-chapter", 1, "first chapter of the range")
	f.StringVar(&spec.EndBook, "to-book", "", "last book of the range (default: --from-book)")
	f.IntVar(&spec.EndChapter, "to-chapter", 0, "last chapter of the range (default: last chapter of --to-book)")
	f.StringArrayVar(&spec.Books, "book", nil, "whole book to include (repeatable)")
	f.StringVar(&spec.ChapterText, "chapters", "", `free-text chapters, e.g. "Genesis 1-3, Salmos 23"`)
	f.StringVar(&duration, "duration", "", "days, end-date or chapters-per-day (default: inferred from flags)")
	f.IntVar(&spec.ChaptersPerDay, "per-day", 1, "chapters per session")
	f.IntVar(&spec.Days, "days", 0, "calendar days the plan spans")
	f.StringVar(&spec.EndDate, "end-date", "", "last day of the plan (YYYY-MM-DD)")
	f.StringVar(&spec.StartDate, "start", "", "first day of the plan (default: --today)")
	f.IntSliceVar(&spec.AllowedDays, "weekday", nil, "reading weekday, 0=Sunday (repeatable, default: every day)")
	f.StringVarP(&out, "out", "o", "", "write the plan to this file instead of stdout")
	return cmd
}
