// internal/readingplan/recalculate.go
package readingplan

import (
	"errors"
	"fernnog/reading-plan/internal/bible"
	"fernnog/reading-plan/internal/calendar"
	"fernnog/reading-plan/internal/domain"
	"fmt"
	"math"
)

// ErrTargetUnreachable means no reading day is left between today and the
// requested end date. Callers should ask for a different target.
var ErrTargetUnreachable = errors.New("target date leaves no reading days")

// Recalculation is the result of redistributing the unread chapters.
type Recalculation struct {
	Plan    *domain.ReadingPlan
	NewPace float64 // chapters per remaining session, 0 for a finished plan
	Changed bool    // false when the plan had nothing left to read
}

// RemainingChapters returns chaptersList minus everything in readLog, in
// the original order.
func RemainingChapters(plan *domain.ReadingPlan) []string {
	read := plan.ReadLog.ReadSet()
	remaining := make([]string, 0, len(plan.ChaptersList))
	for _, c := range plan.ChaptersList {
		if !read[c] {
			remaining = append(remaining, c)
		}
	}
	return remaining
}

// RecalculateToTargetDate spreads the unread chapters over the reading days
// from today to targetEndDate. Sessions before currentDay are kept as they
// are. The input plan is not modified.
func RecalculateToTargetDate(plan *domain.ReadingPlan, targetEndDate, today string) (*Recalculation, error) {
	if plan == nil {
		return nil, Validate(plan)
	}
	// A plan with nothing left to read is returned as is, whatever its currentDay.
	remaining := RemainingChapters(plan)
	if len(remaining) == 0 {
		return &Recalculation{Plan: plan.Clone(), NewPace: 0}, nil
	}

	if err := Validate(plan); err != nil {
		return nil, err
	}
	if !calendar.IsDate(targetEndDate) || !calendar.IsDate(today) {
		return nil, fmt.Errorf("%w: dates must be YYYY-MM-DD", ErrInvalidInput)
	}

	available := calendar.CountReadingDaysBetween(today, targetEndDate, plan.AllowedDays)
	if available < 1 {
		return nil, ErrTargetUnreachable
	}
	if available > calendar.MaxReadingDays {
		return nil, fmt.Errorf("%w: target is more than %d years away", ErrInvalidInput, calendar.MaxYearsAhead)
	}

	out := plan.Clone()
	schedule := make(domain.Schedule, plan.CurrentDay-1+available)
	for o := 1; o < plan.CurrentDay; o++ {
		if chapters, ok := out.Plan.Session(o); ok {
			schedule.Set(o, chapters)
		}
	}
	for i, bucket := range bible.DistributeEvenly(remaining, available) {
		schedule.Set(plan.CurrentDay+i-1, bucket)
	}

	baseDay, baseDate := plan.CurrentDay, today
	out.Plan = schedule
	out.EndDate = targetEndDate
	out.RecalculationBaseDay = &baseDay
	out.RecalculationBaseDate = &baseDate

	return &Recalculation{
		Plan:    out,
		NewPace: float64(len(remaining)) / float64(available),
		Changed: true,
	}, nil
}

// PaceToTargetEndDate returns the date on which the unread chapters would be
// finished reading pace chapters per session from today. It reports false
// for a non-positive pace or an undatable result.
func PaceToTargetEndDate(plan *domain.ReadingPlan, pace float64, today string) (string, bool) {
	if plan == nil || pace <= 0 || math.IsNaN(pace) || math.IsInf(pace, 0) {
		return "", false
	}
	remaining := RemainingChapters(plan)
	if len(remaining) == 0 {
		return plan.EndDate, true
	}
	required := math.Ceil(float64(len(remaining)) / pace)
	if required > calendar.MaxReadingDays {
		return "", false
	}
	return calendar.EffectiveDateForPlanDay(calendar.Anchors{StartDate: today, AllowedDays: plan.AllowedDays}, int(required))
}

// RecalculateAtPace recalculates the plan so the unread chapters are read at
// roughly pace chapters per session starting today.
func RecalculateAtPace(plan *domain.ReadingPlan, pace float64, today string) (*Recalculation, error) {
	if pace <= 0 || math.IsNaN(pace) || math.IsInf(pace, 0) {
		return nil, fmt.Errorf("%w: pace must be positive", ErrInvalidInput)
	}
	if !calendar.IsDate(today) {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidInput, today)
	}
	target, ok := PaceToTargetEndDate(plan, pace, today)
	if !ok {
		return nil, ErrTargetUnreachable
	}
	return RecalculateToTargetDate(plan, target, today)
}
