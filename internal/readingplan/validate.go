// internal/readingplan/validate.go
package readingplan

import (
	"errors"
	"fernnog/reading-plan/internal/calendar"
	"fernnog/reading-plan/internal/domain"
	"fmt"
	"strconv"
)

// ErrInconsistentPlan is returned for stored plans that break the schedule invariants.
var ErrInconsistentPlan = errors.New("inconsistent reading plan")

// Validate checks the structural invariants of a plan: dense 1-based
// ordinals, scheduled chapters drawn from chaptersList, a currentDay no
// further than one past the last session, and well-formed dates and weekdays.
func Validate(plan *domain.ReadingPlan) error {
	if plan == nil {
		return fmt.Errorf("%w: nil plan", ErrInconsistentPlan)
	}
	if !calendar.IsDate(plan.StartDate) {
		return fmt.Errorf("%w: bad start date %q", ErrInconsistentPlan, plan.StartDate)
	}
	if _, err := calendar.NormalizeWeekdays(plan.AllowedDays); err != nil {
		return fmt.Errorf("%w: %v", ErrInconsistentPlan, err)
	}
	if plan.TotalChapters != len(plan.ChaptersList) {
		return fmt.Errorf("%w: totalChapters %d but %d chapters listed", ErrInconsistentPlan, plan.TotalChapters, len(plan.ChaptersList))
	}

	last := plan.LastOrdinal()
	for key := range plan.Plan {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 || strconv.Itoa(n) != key {
			return fmt.Errorf("%w: bad ordinal key %q", ErrInconsistentPlan, key)
		}
	}
	if len(plan.Plan) != last {
		return fmt.Errorf("%w: ordinals are not contiguous from 1 to %d", ErrInconsistentPlan, last)
	}

	scope := make(map[string]bool, len(plan.ChaptersList))
	for _, c := range plan.ChaptersList {
		scope[c] = true
	}
	for key, chapters := range plan.Plan {
		for _, c := range chapters {
			if !scope[c] {
				return fmt.Errorf("%w: day %s schedules %q outside the plan", ErrInconsistentPlan, key, c)
			}
		}
	}

	if plan.CurrentDay < 1 || plan.CurrentDay > last+1 {
		return fmt.Errorf("%w: currentDay %d outside 1..%d", ErrInconsistentPlan, plan.CurrentDay, last+1)
	}
	if (plan.RecalculationBaseDay == nil) != (plan.RecalculationBaseDate == nil) {
		return fmt.Errorf("%w: recalculation markers must be set together", ErrInconsistentPlan)
	}
	return nil
}

// Drift lists chapters scheduled before currentDay that readLog does not
// record as read. A non-empty result means progress and the log disagree.
func Drift(plan *domain.ReadingPlan) []string {
	read := plan.ReadLog.ReadSet()
	var missing []string
	for o := 1; o < plan.CurrentDay; o++ {
		chapters, _ := plan.Plan.Session(o)
		for _, c := range chapters {
			if !read[c] {
				missing = append(missing, c)
			}
		}
	}
	return missing
}
