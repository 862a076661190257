// internal/readingplan/builder.go
package readingplan

import (
	"errors"
	"fernnog/reading-plan/internal/bible"
	"fernnog/reading-plan/internal/calendar"
	"fernnog/reading-plan/internal/domain"
	"fmt"
	"strings"
)

var (
	ErrEmptyPlan    = errors.New("plan has no chapters")
	ErrDuration     = errors.New("invalid plan duration")
	ErrInvalidInput = errors.New("invalid plan input")
)

// CreationMethod selects how the chapter list is resolved.
type CreationMethod string

const (
	// MethodInterval reads a contiguous book/chapter range.
	MethodInterval CreationMethod = "interval"
	// MethodSelection reads whole books plus a free-text chapter list.
	MethodSelection CreationMethod = "selection"
)

// DurationMethod selects how the number of reading sessions is derived.
type DurationMethod string

const (
	DurationDays           DurationMethod = "days"
	DurationEndDate        DurationMethod = "end-date"
	DurationChaptersPerDay DurationMethod = "chapters-per-day"
)

// PlanSpec is everything a reader supplies when creating a plan.
type PlanSpec struct {
	Name           string
	CreationMethod CreationMethod

	// MethodInterval
	StartBook    string
	StartChapter int
	EndBook      string
	EndChapter   int

	// MethodSelection
	Books       []string
	ChapterText string

	DurationMethod DurationMethod
	Days           int    // DurationDays
	EndDate        string // DurationEndDate
	ChaptersPerDay int    // DurationChaptersPerDay

	StartDate   string // empty means today
	AllowedDays []int  // empty means every day
}

// ResolveChapters expands the spec into its ordered chapter list. The second
// result holds diagnostics for input that was skipped.
func ResolveChapters(spec PlanSpec) ([]string, []string, error) {
	switch spec.CreationMethod {
	case MethodInterval:
		chapters, err := bible.ChaptersInRange(spec.StartBook, spec.StartChapter, spec.EndBook, spec.EndChapter)
		return chapters, nil, err
	case MethodSelection:
		var diagnostics []string
		for _, name := range spec.Books {
			if _, ok := bible.LookupBook(name); !ok {
				diagnostics = append(diagnostics, fmt.Sprintf("skipped unknown book %q", name))
			}
		}
		parsed, parseDiagnostics := bible.ParseChapterSpecification(spec.ChapterText)
		diagnostics = append(diagnostics, parseDiagnostics...)
		return bible.MergeChapters(bible.ChaptersForBooks(spec.Books), parsed), diagnostics, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown creation method %q", ErrInvalidInput, spec.CreationMethod)
	}
}

// BuildPlan assembles a new plan from spec. today (YYYY-MM-DD) is used when
// the spec has no start date. The returned diagnostics list skipped input.
func BuildPlan(spec PlanSpec, today string) (*domain.ReadingPlan, []string, error) {
	chapters, diagnostics, err := ResolveChapters(spec)
	if err != nil {
		return nil, diagnostics, err
	}
	if len(chapters) == 0 {
		return nil, diagnostics, ErrEmptyPlan
	}

	allowedDays, err := calendar.NormalizeWeekdays(spec.AllowedDays)
	if err != nil {
		return nil, diagnostics, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	startDate := strings.TrimSpace(spec.StartDate)
	if startDate == "" {
		startDate = today
	}
	if !calendar.IsDate(startDate) {
		return nil, diagnostics, fmt.Errorf("%w: bad start date %q", ErrInvalidInput, startDate)
	}

	sessions, err := sessionCount(spec, len(chapters), startDate, allowedDays)
	if err != nil {
		return nil, diagnostics, err
	}

	schedule := make(domain.Schedule, sessions)
	for ordinal, bucket := range bible.DistributeEvenly(chapters, sessions) {
		schedule.Set(ordinal, bucket)
	}

	plan := &domain.ReadingPlan{
		Name:                 strings.TrimSpace(spec.Name),
		ChaptersList:         chapters,
		TotalChapters:        len(chapters),
		Plan:                 schedule,
		AllowedDays:          allowedDays,
		StartDate:            startDate,
		CurrentDay:           1,
		ReadLog:              domain.ReadLog{},
		RecalculationHistory: []domain.RecalculationEvent{},
	}
	endDate, ok := plan.DateOf(sessions)
	if !ok {
		return nil, diagnostics, fmt.Errorf("%w: last reading day cannot be dated", ErrDuration)
	}
	plan.EndDate = endDate
	return plan, diagnostics, nil
}

func sessionCount(spec PlanSpec, totalChapters int, startDate string, allowedDays []int) (int, error) {
	var sessions int
	switch spec.DurationMethod {
	case DurationChaptersPerDay:
		if spec.ChaptersPerDay <= 0 {
			return 0, fmt.Errorf("%w: chapters per day must be positive", ErrDuration)
		}
		sessions = totalChapters / spec.ChaptersPerDay
		if totalChapters%spec.ChaptersPerDay != 0 {
			sessions++
		}
	case DurationDays:
		if spec.Days <= 0 {
			return 0, fmt.Errorf("%w: number of days must be positive", ErrDuration)
		}
		if spec.Days > calendar.MaxReadingDays {
			return 0, fmt.Errorf("%w: plans may span at most %d days", ErrDuration, calendar.MaxReadingDays)
		}
		endDate, err := calendar.AddDays(startDate, spec.Days-1)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		sessions = calendar.CountReadingDaysBetween(startDate, endDate, allowedDays)
	case DurationEndDate:
		if !calendar.IsDate(spec.EndDate) {
			return 0, fmt.Errorf("%w: bad end date %q", ErrInvalidInput, spec.EndDate)
		}
		if spec.EndDate < startDate {
			return 0, fmt.Errorf("%w: end date %s is before start date %s", ErrDuration, spec.EndDate, startDate)
		}
		sessions = calendar.CountReadingDaysBetween(startDate, spec.EndDate, allowedDays)
	default:
		return 0, fmt.Errorf("%w: unknown duration method %q", ErrInvalidInput, spec.DurationMethod)
	}
	if sessions < 1 {
		return 0, fmt.Errorf("%w: no reading days fall in the chosen period", ErrDuration)
	}
	if sessions > calendar.MaxReadingDays {
		return 0, fmt.Errorf("%w: plans may span at most %d reading days", ErrDuration, calendar.MaxReadingDays)
	}
	return sessions, nil
}
