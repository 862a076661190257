// internal/readingplan/commands.go
package readingplan

import (
	"errors"
	"fernnog/reading-plan/internal/calendar"
	"fernnog/reading-plan/internal/domain"
	"fmt"
	"slices"
)

var (
	ErrPlanCompleted  = errors.New("plan is already completed")
	ErrUnknownCommand = errors.New("unknown plan command")
)

// Command is a change a reader can make to a plan. The set is closed: only
// the types in this file implement it.
type Command interface {
	command()
}

// MarkSessionRead records the current session as read on Date.
type MarkSessionRead struct {
	Date string
}

// RecalculateToDate spreads the unread chapters from Today to TargetEndDate.
type RecalculateToDate struct {
	TargetEndDate string
	Today         string
}

// RecalculateToPace spreads the unread chapters from Today at Pace chapters per session.
type RecalculateToPace struct {
	Pace  float64
	Today string
}

func (MarkSessionRead) command()   {}
func (RecalculateToDate) command() {}
func (RecalculateToPace) command() {}

// Outcome is the result of applying a command.
type Outcome struct {
	Plan         *domain.ReadingPlan
	ChaptersRead []string                   // MarkSessionRead only
	NewPace      float64                    // recalculations only
	Event        *domain.RecalculationEvent // nil unless the schedule was recalculated; RecalculatedAt is left zero
}

// Apply runs cmd against plan and returns the new plan value. plan itself is
// never modified.
func Apply(plan *domain.ReadingPlan, cmd Command) (*Outcome, error) {
	switch c := cmd.(type) {
	case MarkSessionRead:
		next, chapters, err := MarkRead(plan, c.Date)
		if err != nil {
			return nil, err
		}
		return &Outcome{Plan: next, ChaptersRead: chapters}, nil
	case RecalculateToDate:
		r, err := RecalculateToTargetDate(plan, c.TargetEndDate, c.Today)
		if err != nil {
			return nil, err
		}
		return recalculationOutcome(plan, r, domain.RecalcTargetDate), nil
	case RecalculateToPace:
		r, err := RecalculateAtPace(plan, c.Pace, c.Today)
		if err != nil {
			return nil, err
		}
		return recalculationOutcome(plan, r, domain.RecalcPace), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

func recalculationOutcome(before *domain.ReadingPlan, r *Recalculation, kind domain.RecalculationKind) *Outcome {
	out := &Outcome{Plan: r.Plan, NewPace: r.NewPace}
	if r.Changed {
		out.Event = &domain.RecalculationEvent{
			Kind:            kind,
			FromDay:         before.CurrentDay,
			PreviousEndDate: before.EndDate,
			NewEndDate:      r.Plan.EndDate,
			NewPace:         r.NewPace,
		}
	}
	return out
}

// MarkRead appends the chapters of the current session to readLog[date] and
// advances currentDay. It returns the new plan and the chapters recorded.
func MarkRead(plan *domain.ReadingPlan, date string) (*domain.ReadingPlan, []string, error) {
	if !calendar.IsDate(date) {
		return nil, nil, fmt.Errorf("%w: bad date %q", ErrInvalidInput, date)
	}
	if plan.IsCompleted() {
		return nil, nil, ErrPlanCompleted
	}

	out := plan.Clone()
	if out.ReadLog == nil {
		out.ReadLog = domain.ReadLog{}
	}
	chapters, _ := out.Plan.Session(out.CurrentDay)
	logged := out.ReadLog[date]
	for _, c := range chapters {
		if !slices.Contains(logged, c) {
			logged = append(logged, c)
		}
	}
	if logged == nil {
		logged = []string{}
	}
	out.ReadLog[date] = logged
	out.CurrentDay++
	return out, slices.Clone(chapters), nil
}
