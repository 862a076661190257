package main

import (
	"encoding/json"
	"fernnog/reading-plan/internal/calendar"
	"fernnog/reading-plan/internal/domain"
	"fernnog/reading-plan/internal/readingplan"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type globalOptions struct {
	json  bool
	today string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "readingplan",
		Short: "Build and follow Bible reading plans",
		Long: `Build Bible reading plans and keep them on track.

Plans are stored as JSON files. readingplan can:
- build a plan from a chapter range or a list of books
- mark the current session as read
- recalculate the rest of a plan to a new end date or pace
- print the dated schedule and a progress summary`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.today == "" {
				opts.today = calendar.Today(time.Now())
			}
			if !calendar.IsDate(opts.today) {
				return fmt.Errorf("--today must be YYYY-MM-DD, got %q", opts.today)
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of YAML")
	root.PersistentFlags().StringVar(&opts.today, "today", "", "date to treat as today (YYYY-MM-DD, default: current UTC date)")

	root.AddCommand(newBuildCmd(opts))
	root.AddCommand(newReadCmd(opts))
	root.AddCommand(newRecalcCmd(opts))
	root.AddCommand(newScheduleCmd(opts))
	root.AddCommand(newProgressCmd(opts))
	return root
}

// render prints v as YAML, or as indented JSON with --json.
func render(w io.Writer, v any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func loadPlan(path string) (*domain.ReadingPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var plan domain.ReadingPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := readingplan.Validate(&plan); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &plan, nil
}

// writePlan stores the plan as JSON at path, or on w when path is empty.
func writePlan(w io.Writer, path string, plan *domain.ReadingPlan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
